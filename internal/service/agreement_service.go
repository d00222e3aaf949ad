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
	"github.com/crediflow/collections-service/pkg/util"
)

// AgreementService manages installment agreements against cases.
type AgreementService struct {
	agreements repository.AgreementRepository
	cases      repository.CaseRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAgreementService constructs the service.
func NewAgreementService(agreements repository.AgreementRepository, cases repository.CaseRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AgreementService {
	return &AgreementService{agreements: agreements, cases: cases, dispatcher: dispatcher, logger: logger}
}

// AgreementInput describes an agreement creation payload.
type AgreementInput struct {
	CaseID       string
	Amount       float64
	StartDate    time.Time
	Installments int
	Terms        map[string]any
}

// Create registers an active agreement on a case. Gestores may create
// agreements only on cases assigned to them.
func (s *AgreementService) Create(ctx context.Context, principal *auth.Principal, input AgreementInput) (*domain.Agreement, error) {
	input.CaseID = strings.TrimSpace(input.CaseID)
	if input.CaseID == "" {
		return nil, util.NewValidationError("caseId is required", nil)
	}
	if input.Amount <= 0 {
		return nil, util.NewValidationError("amount must be > 0", map[string]any{"amount": input.Amount})
	}
	if input.StartDate.IsZero() {
		return nil, util.NewValidationError("startDate is required", nil)
	}
	if input.Installments < 1 {
		return nil, util.NewValidationError("installments must be >= 1", map[string]any{"installments": input.Installments})
	}

	kase, err := s.cases.GetByID(ctx, input.CaseID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, caseNotFound(input.CaseID)
		}
		return nil, util.MapError(err)
	}
	if !auth.Authorize(principal, auth.ActionCreateAgreement, kase) {
		return nil, util.NewForbidden("case not assigned to caller")
	}

	agreement := &domain.Agreement{
		CaseID:       input.CaseID,
		Amount:       input.Amount,
		StartDate:    input.StartDate,
		Installments: input.Installments,
		Status:       domain.AgreementStatusActive,
		Terms:        input.Terms,
		CreatedBy:    principal.UID,
	}
	if err := s.agreements.Create(ctx, agreement); err != nil {
		return nil, util.MapError(err)
	}
	s.publish(ctx, events.EventAgreementCreated, agreement.ID, "create", principal.UID, map[string]any{
		"caseId":       input.CaseID,
		"amount":       input.Amount,
		"installments": input.Installments,
	})
	return agreement, nil
}

// Get fetches an agreement; gestores may only see agreements on their cases.
func (s *AgreementService) Get(ctx context.Context, principal *auth.Principal, id string) (*domain.Agreement, error) {
	agreement, err := s.agreements.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewNotFound("agreement", map[string]any{"agreementId": id})
		}
		return nil, util.MapError(err)
	}
	if err := s.checkCaseAccess(ctx, principal, agreement.CaseID); err != nil {
		return nil, err
	}
	return agreement, nil
}

// List returns agreements matching the filter, newest first. Gestores must
// scope the listing to one of their own cases.
func (s *AgreementService) List(ctx context.Context, principal *auth.Principal, filter repository.AgreementFilter) ([]domain.Agreement, error) {
	if filter.CaseID != nil {
		if err := s.checkCaseAccess(ctx, principal, *filter.CaseID); err != nil {
			return nil, err
		}
	} else if !principal.Elevated() {
		return nil, util.NewForbidden("caseId filter required for gestor listings")
	}
	agreements, err := s.agreements.List(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	sort.Slice(agreements, func(i, j int) bool {
		return agreements[i].CreatedAt.After(agreements[j].CreatedAt)
	})
	return agreements, nil
}

// Patch updates an agreement's status or terms under an optional If-Match
// precondition. Supervisor or admin only; amount, start date and installments
// never change after creation.
func (s *AgreementService) Patch(ctx context.Context, principal *auth.Principal, id, ifMatch string, patch repository.AgreementPatch) (*domain.Agreement, error) {
	if !auth.Authorize(principal, auth.ActionEditAgreement, nil) {
		return nil, util.NewForbidden("supervisor role required")
	}
	agreement, err := s.agreements.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewNotFound("agreement", map[string]any{"agreementId": id})
		}
		return nil, util.MapError(err)
	}

	currentTag := util.ETagFromTime(agreement.UpdatedAt)
	if !util.CheckIfMatch(ifMatch, currentTag) {
		return nil, util.NewPreconditionFailed(currentTag)
	}
	if patch.Status == nil && patch.Terms == nil {
		return nil, util.NewValidationError("no editable fields in payload", nil)
	}

	updated, err := s.agreements.Patch(ctx, id, patch)
	if err != nil {
		return nil, util.MapError(err)
	}
	s.publish(ctx, events.EventAgreementUpdated, id, "update", principal.UID, map[string]any{
		"caseId": agreement.CaseID,
	})
	return updated, nil
}

func (s *AgreementService) checkCaseAccess(ctx context.Context, principal *auth.Principal, caseID string) error {
	if principal.Elevated() {
		return nil
	}
	kase, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return caseNotFound(caseID)
		}
		return util.MapError(err)
	}
	if !auth.Authorize(principal, auth.ActionReadCase, kase) {
		return util.NewForbidden("case not assigned to caller")
	}
	return nil
}

func (s *AgreementService) publish(ctx context.Context, eventType events.EventType, entityID, action, actorID string, diff map[string]any) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Entity:    "agreement",
		EntityID:  entityID,
		Action:    action,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Diff:      diff,
	}); err != nil && s.logger != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}
