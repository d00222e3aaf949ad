package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/crediflow/collections-service/internal/auth"
	"github.com/crediflow/collections-service/internal/domain"
	"github.com/crediflow/collections-service/internal/events"
	"github.com/crediflow/collections-service/internal/repository"
	"github.com/crediflow/collections-service/internal/rules"
	"github.com/crediflow/collections-service/internal/workflow"
	"github.com/crediflow/collections-service/pkg/util"
)

// InteractionService orchestrates agent submissions: validation against the
// rule tables, business-rule resolution, transition authorization, and the
// persistence of the interaction record plus its side effects.
type InteractionService struct {
	tables       *rules.Tables
	cases        repository.CaseRepository
	interactions repository.InteractionRepository
	tickets      repository.TicketRepository
	cache        *CaseCache
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// NewInteractionService constructs the orchestrator.
func NewInteractionService(
	tables *rules.Tables,
	cases repository.CaseRepository,
	interactions repository.InteractionRepository,
	tickets repository.TicketRepository,
	cache *CaseCache,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *InteractionService {
	return &InteractionService{
		tables:       tables,
		cases:        cases,
		interactions: interactions,
		tickets:      tickets,
		cache:        cache,
		dispatcher:   dispatcher,
		logger:       logger,
	}
}

// SubmitInput is an agent's interaction submission.
type SubmitInput struct {
	CaseID             string
	CurrentState       string
	Result             string
	Concept            string
	Fields             map[string]any
	ChosenNextState    string
	LastPromiseConcept string
}

// SubmitResult is the full decision trace returned to the caller.
type SubmitResult struct {
	InteractionID      string
	RequiredFields     []string
	NextState          string
	TransitionInfo     map[string]any
	SupervisorTicketID string
	Actions            []domain.Action
	Notes              []string
}

// Submit runs the submission pipeline. Validation failures reject the whole
// submission; nothing is persisted unless every check passes. Persistence is
// sequential (interaction, then case state, then ticket), so a late failure
// can leave the interaction recorded without its side effects; each step
// failure is logged with enough detail to repair by hand.
func (s *InteractionService) Submit(ctx context.Context, principal *auth.Principal, input SubmitInput) (*SubmitResult, error) {
	input.CaseID = strings.TrimSpace(input.CaseID)
	input.CurrentState = strings.TrimSpace(input.CurrentState)
	input.Result = strings.TrimSpace(input.Result)
	if input.CaseID == "" || input.CurrentState == "" || input.Result == "" {
		return nil, util.NewValidationError("caseId, currentState and result are required", nil)
	}
	if !s.tables.KnownState(input.CurrentState) {
		return nil, util.NewValidationError("unknown state", map[string]any{
			"state": input.CurrentState,
			"allow": s.tables.States(),
		})
	}

	kase, err := s.cases.GetByID(ctx, input.CaseID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, caseNotFound(input.CaseID)
		}
		return nil, util.MapError(err)
	}
	if !auth.Authorize(principal, auth.ActionSubmitResult, kase) {
		return nil, util.NewForbidden("case not assigned to caller")
	}

	if check := workflow.ValidateResultAllowed(s.tables, input.CurrentState, input.Result); !check.OK {
		return nil, util.NewConflictCode("RESULT_NOT_ALLOWED", "result not allowed in current state", map[string]any{
			"state":          input.CurrentState,
			"result":         input.Result,
			"allowedResults": check.Allowed,
		})
	}

	fieldsCheck := workflow.RequiredFieldsFor(s.tables, input.Result, input.Concept)
	if !fieldsCheck.OK {
		return nil, util.NewValidationError(fieldsCheck.Message, map[string]any{
			"result":  input.Result,
			"concept": input.Concept,
		})
	}
	if missing := workflow.MissingFields(input.Fields, fieldsCheck.Required); len(missing) > 0 {
		return nil, util.NewValidationError("missing required fields", map[string]any{
			"required": fieldsCheck.Required,
			"missing":  missing,
		})
	}

	resolution := workflow.Resolve(input.Result, input.Concept, input.LastPromiseConcept, input.Fields)

	outcome, err := s.decideTransition(input, resolution)
	if err != nil {
		return nil, err
	}

	interaction := s.buildInteraction(principal.UID, input, resolution, outcome)
	if err := s.interactions.Create(ctx, interaction); err != nil {
		s.logger.Error("interaction persist failed",
			zap.String("caseId", input.CaseID), zap.String("result", input.Result), zap.Error(err))
		return nil, util.MapError(err)
	}

	if outcome.NextState != input.CurrentState {
		if err := s.cases.UpdateState(ctx, input.CaseID, outcome.NextState); err != nil {
			s.logger.Error("case state update failed after interaction persisted",
				zap.String("caseId", input.CaseID),
				zap.String("interactionId", interaction.ID),
				zap.String("nextState", outcome.NextState),
				zap.Error(err))
			return nil, util.MapError(err)
		}
		s.cache.Invalidate(ctx, input.CaseID)
	}

	var ticketID string
	if resolution.SupervisorRequired {
		ticket := &domain.Ticket{
			CaseID:        input.CaseID,
			InteractionID: &interaction.ID,
			Type:          domain.TicketTypeSupervisorValidation,
			Reason:        supervisorReason(resolution.Actions),
			ProposedState: strPtrOrNil(resolution.SuggestedNextState),
			Status:        domain.TicketStatusOpen,
		}
		if err := s.tickets.Create(ctx, ticket); err != nil {
			s.logger.Error("supervisor ticket creation failed after interaction persisted",
				zap.String("caseId", input.CaseID),
				zap.String("interactionId", interaction.ID),
				zap.Error(err))
			return nil, util.MapError(err)
		}
		ticketID = ticket.ID
		s.publish(ctx, events.EventTicketOpened, "ticket", ticketID, "create", principal.UID, map[string]any{
			"caseId":        input.CaseID,
			"interactionId": interaction.ID,
			"proposedState": resolution.SuggestedNextState,
		})
	}

	s.publish(ctx, events.EventInteractionRecorded, "interaction", interaction.ID, "create", principal.UID, map[string]any{
		"caseId":    input.CaseID,
		"result":    input.Result,
		"fromState": input.CurrentState,
		"nextState": outcome.NextState,
	})

	return &SubmitResult{
		InteractionID:      interaction.ID,
		RequiredFields:     fieldsCheck.Required,
		NextState:          outcome.NextState,
		TransitionInfo:     outcome.Info(),
		SupervisorTicketID: ticketID,
		Actions:            resolution.Actions,
		Notes:              resolution.Notes,
	}, nil
}

// decideTransition picks the target state. An explicit chosenNextState wins
// over the resolver suggestion and must be legal; an illegal choice rejects
// the submission, while an illegal suggestion merely blocks the transition.
func (s *InteractionService) decideTransition(input SubmitInput, resolution workflow.Resolution) (workflow.Outcome, error) {
	if chosen := strings.TrimSpace(input.ChosenNextState); chosen != "" {
		check := workflow.CheckTransition(s.tables, input.CurrentState, chosen)
		if !check.OK {
			return workflow.Outcome{}, util.NewConflictCode("TRANSITION_BLOCKED", "transition not allowed", map[string]any{
				"from":        input.CurrentState,
				"to":          chosen,
				"allowedNext": check.Allowed,
			})
		}
		return workflow.Outcome{Kind: workflow.OutcomeChosen, NextState: chosen}, nil
	}

	suggested := resolution.SuggestedNextState
	if suggested == "" || suggested == input.CurrentState {
		return workflow.Outcome{Kind: workflow.OutcomeNoOp, NextState: input.CurrentState}, nil
	}

	check := workflow.CheckTransition(s.tables, input.CurrentState, suggested)
	if !check.OK {
		return workflow.Outcome{
			Kind:        workflow.OutcomeBlocked,
			NextState:   input.CurrentState,
			Proposed:    suggested,
			AllowedNext: check.Allowed,
		}, nil
	}
	if resolution.SupervisorRequired {
		return workflow.Outcome{
			Kind:      workflow.OutcomeDeferred,
			NextState: input.CurrentState,
			Proposed:  suggested,
		}, nil
	}
	return workflow.Outcome{Kind: workflow.OutcomeApplied, NextState: suggested}, nil
}

func (s *InteractionService) buildInteraction(actorID string, input SubmitInput, resolution workflow.Resolution, outcome workflow.Outcome) *domain.Interaction {
	return &domain.Interaction{
		CaseID:             input.CaseID,
		ActorID:            actorID,
		FromState:          input.CurrentState,
		Result:             input.Result,
		Concept:            strPtrOrNil(input.Concept),
		Fields:             input.Fields,
		LastPromiseConcept: strPtrOrNil(input.LastPromiseConcept),
		TransitionInfo:     outcome.Info(),
		SuggestedNextState: strPtrOrNil(resolution.SuggestedNextState),
		SupervisorRequired: resolution.SupervisorRequired,
		Actions:            resolution.Actions,
		Notes:              resolution.Notes,
	}
}

// ListByCase returns a case's interaction log, newest first.
func (s *InteractionService) ListByCase(ctx context.Context, principal *auth.Principal, caseID string, limit int) ([]domain.Interaction, error) {
	kase, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, caseNotFound(caseID)
		}
		return nil, util.MapError(err)
	}
	if !auth.Authorize(principal, auth.ActionReadCase, kase) {
		return nil, util.NewForbidden("case not assigned to caller")
	}
	interactions, err := s.interactions.ListByCase(ctx, caseID, limit)
	if err != nil {
		return nil, util.MapError(err)
	}
	sort.Slice(interactions, func(i, j int) bool {
		return interactions[i].TS.After(interactions[j].TS)
	})
	return interactions, nil
}

func (s *InteractionService) publish(ctx context.Context, eventType events.EventType, entity, entityID, action, actorID string, diff map[string]any) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Diff:      diff,
	}); err != nil && s.logger != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}

// supervisorReason picks the human-readable reason off the ticket directive.
func supervisorReason(actions []domain.Action) string {
	for _, a := range actions {
		if a.Type == domain.ActionCreateSupervisorTicket {
			return a.Reason
		}
	}
	return ""
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
