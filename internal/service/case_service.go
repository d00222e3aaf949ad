package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/crediflow/collections-service/internal/auth"
	"github.com/crediflow/collections-service/internal/domain"
	"github.com/crediflow/collections-service/internal/events"
	"github.com/crediflow/collections-service/internal/repository"
	"github.com/crediflow/collections-service/internal/rules"
	"github.com/crediflow/collections-service/pkg/util"
)

// CaseService owns case CRUD with role gating, ETag preconditions and a
// read-through cache.
type CaseService struct {
	cases      repository.CaseRepository
	tables     *rules.Tables
	cache      *CaseCache
	dispatcher events.Dispatcher
}

// NewCaseService constructs the service.
func NewCaseService(cases repository.CaseRepository, tables *rules.Tables, cache *CaseCache, dispatcher events.Dispatcher) *CaseService {
	return &CaseService{cases: cases, tables: tables, cache: cache, dispatcher: dispatcher}
}

// CaseCreateInput describes a case creation payload.
type CaseCreateInput struct {
	DebtorName *string
	AssignedTo string
	Balance    float64
}

// Create opens a new case in the configured entry state.
func (s *CaseService) Create(ctx context.Context, principal *auth.Principal, input CaseCreateInput) (*domain.Case, error) {
	if !auth.Authorize(principal, auth.ActionCreateCase, nil) {
		return nil, util.NewForbidden("supervisor role required")
	}
	if input.Balance < 0 {
		return nil, util.NewValidationError("balance must be >= 0", nil)
	}
	states := s.tables.States()
	if len(states) == 0 {
		return nil, util.NewInternalError(nil)
	}

	kase := &domain.Case{
		DebtorName: input.DebtorName,
		State:      states[0],
		AssignedTo: strings.TrimSpace(input.AssignedTo),
		Balance:    input.Balance,
		Status:     domain.CaseStatusOpen,
	}
	if err := s.cases.Create(ctx, kase); err != nil {
		return nil, util.MapError(err)
	}
	s.publish(ctx, events.EventCaseCreated, kase.ID, "create", principal.UID, map[string]any{
		"state":      kase.State,
		"assignedTo": kase.AssignedTo,
		"balance":    kase.Balance,
	}, nil)
	return kase, nil
}

// Get fetches a case, enforcing gestor ownership, serving cached reads when
// possible.
func (s *CaseService) Get(ctx context.Context, principal *auth.Principal, id string) (*domain.Case, error) {
	kase := s.cache.Get(ctx, id)
	if kase == nil {
		var err error
		kase, err = s.cases.GetByID(ctx, id)
		if err != nil {
			if err == pgx.ErrNoRows {
				return nil, util.NewNotFound("case", map[string]any{"caseId": id})
			}
			return nil, util.MapError(err)
		}
		s.cache.Set(ctx, kase)
	}
	if !auth.Authorize(principal, auth.ActionReadCase, kase) {
		return nil, util.NewForbidden("case not assigned to caller")
	}
	return kase, nil
}

// List returns cases visible to the caller, newest first. Gestor listings are
// filtered by assignment and sorted in memory.
func (s *CaseService) List(ctx context.Context, principal *auth.Principal, pageSize int) ([]domain.Case, error) {
	filter := repository.CaseFilter{Limit: pageSize}
	if !principal.Elevated() {
		uid := principal.UID
		filter.AssignedTo = &uid
	}
	cases, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	sort.Slice(cases, func(i, j int) bool {
		return cases[i].CreatedAt.After(cases[j].CreatedAt)
	})
	return cases, nil
}

// CasePatch carries the mutable case fields.
type CasePatch struct {
	DebtorName *string
	AssignedTo *string
	Status     *domain.CaseStatus
	State      *string
}

// Patch updates a case under an optional If-Match precondition.
func (s *CaseService) Patch(ctx context.Context, principal *auth.Principal, id, ifMatch string, patch CasePatch) (*domain.Case, error) {
	if !auth.Authorize(principal, auth.ActionUpdateCase, nil) {
		return nil, util.NewForbidden("supervisor role required")
	}
	kase, err := s.cases.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewNotFound("case", map[string]any{"caseId": id})
		}
		return nil, util.MapError(err)
	}

	currentTag := util.ETagFromTime(kase.UpdatedAt)
	if !util.CheckIfMatch(ifMatch, currentTag) {
		return nil, util.NewPreconditionFailed(currentTag)
	}

	diff := map[string]any{}
	if patch.DebtorName != nil {
		kase.DebtorName = patch.DebtorName
		diff["debtorName"] = *patch.DebtorName
	}
	if patch.AssignedTo != nil {
		kase.AssignedTo = strings.TrimSpace(*patch.AssignedTo)
		diff["assignedTo"] = kase.AssignedTo
	}
	if patch.Status != nil {
		kase.Status = *patch.Status
		diff["status"] = kase.Status
	}
	if patch.State != nil {
		if !s.tables.KnownState(*patch.State) {
			return nil, util.NewValidationError("unknown state", map[string]any{
				"state": *patch.State,
				"allow": s.tables.States(),
			})
		}
		kase.State = *patch.State
		diff["state"] = kase.State
	}
	if len(diff) == 0 {
		return nil, util.NewValidationError("no editable fields in payload", nil)
	}

	if err := s.cases.Update(ctx, kase); err != nil {
		return nil, util.MapError(err)
	}
	s.cache.Invalidate(ctx, id)
	s.publish(ctx, events.EventCaseUpdated, id, "update", principal.UID, diff, nil)
	return kase, nil
}

func (s *CaseService) publish(ctx context.Context, eventType events.EventType, entityID, action, actorID string, diff, meta map[string]any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Entity:    "case",
		EntityID:  entityID,
		Action:    action,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Diff:      diff,
		Meta:      meta,
	})
}
