package service

import (
	"context"
	"net/http"
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

// TxBeginner opens database transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LedgerService posts and reverses payments against case balances. Every
// balance mutation runs inside a single transaction with the case row locked.
type LedgerService struct {
	db            TxBeginner
	cases         repository.CaseRepository
	payments      repository.PaymentRepository
	cancellations repository.CancellationRepository
	cache         *CaseCache
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NewLedgerService constructs the service.
func NewLedgerService(
	db TxBeginner,
	cases repository.CaseRepository,
	payments repository.PaymentRepository,
	cancellations repository.CancellationRepository,
	cache *CaseCache,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		db:            db,
		cases:         cases,
		payments:      payments,
		cancellations: cancellations,
		cache:         cache,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// PaymentInput describes a payment to post.
type PaymentInput struct {
	CaseID   string
	Amount   float64
	Method   string
	Date     time.Time
	Note     string
	Metadata map[string]any
}

// PaymentResult reports the outcome of posting a payment.
type PaymentResult struct {
	Payment    *domain.Payment
	NewBalance float64
}

// PostPayment records a payment and decrements the case balance, flooring at
// zero. Overpayments are accepted; the surplus is not tracked.
func (s *LedgerService) PostPayment(ctx context.Context, principal *auth.Principal, input PaymentInput) (*PaymentResult, error) {
	if strings.TrimSpace(input.CaseID) == "" {
		return nil, util.NewValidationError("caseId is required", nil)
	}
	if input.Amount <= 0 {
		return nil, util.NewValidationError("amount must be > 0", map[string]any{"amount": input.Amount})
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	kase, err := s.cases.GetByID(ctx, input.CaseID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, caseNotFound(input.CaseID)
		}
		return nil, util.MapError(err)
	}
	if !auth.Authorize(principal, auth.ActionPostPayment, kase) {
		return nil, util.NewForbidden("case not assigned to caller")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	defer tx.Rollback(ctx)

	locked, err := s.cases.GetForUpdate(ctx, tx, input.CaseID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, caseNotFound(input.CaseID)
		}
		return nil, util.MapError(err)
	}

	newBalance := locked.Balance - input.Amount
	if newBalance < 0 {
		newBalance = 0
	}

	payment := &domain.Payment{
		CaseID:    input.CaseID,
		Amount:    input.Amount,
		Method:    input.Method,
		Date:      input.Date,
		Status:    domain.PaymentStatusPosted,
		Note:      input.Note,
		Metadata:  input.Metadata,
		CreatedBy: principal.UID,
	}
	if err := s.payments.CreateTx(ctx, tx, payment); err != nil {
		return nil, util.MapError(err)
	}
	if err := s.cases.UpdateBalance(ctx, tx, input.CaseID, newBalance); err != nil {
		return nil, util.MapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, util.MapError(err)
	}

	s.cache.Invalidate(ctx, input.CaseID)
	s.publish(ctx, events.EventPaymentPosted, "payment", payment.ID, "create", principal.UID, map[string]any{
		"caseId":     input.CaseID,
		"amount":     input.Amount,
		"newBalance": newBalance,
	})
	return &PaymentResult{Payment: payment, NewBalance: newBalance}, nil
}

// CancellationResult reports the outcome of reversing a payment.
type CancellationResult struct {
	Cancellation *domain.Cancellation
	NewBalance   float64
}

// CancelPayment reverses a posted payment: the cancelled amount is added back
// to the case balance without any cap. Supervisor or admin only.
func (s *LedgerService) CancelPayment(ctx context.Context, principal *auth.Principal, paymentID, reason string) (*CancellationResult, error) {
	if !auth.Authorize(principal, auth.ActionCancelPayment, nil) {
		return nil, util.NewForbidden("supervisor role required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, util.MapError(err)
	}
	defer tx.Rollback(ctx)

	payment, err := s.payments.GetForUpdate(ctx, tx, paymentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewDomainError("PAYMENT_NOT_FOUND", "payment not found", http.StatusNotFound,
				map[string]any{"paymentId": paymentID})
		}
		return nil, util.MapError(err)
	}
	if payment.Status == domain.PaymentStatusCancelled {
		return nil, util.NewConflictCode("ALREADY_CANCELLED", "payment already cancelled",
			map[string]any{"paymentId": paymentID})
	}

	kase, err := s.cases.GetForUpdate(ctx, tx, payment.CaseID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, caseNotFound(payment.CaseID)
		}
		return nil, util.MapError(err)
	}

	newBalance := kase.Balance + payment.Amount

	cancellation := &domain.Cancellation{
		PaymentID: payment.ID,
		CaseID:    payment.CaseID,
		Amount:    payment.Amount,
		Reason:    reason,
		CreatedBy: principal.UID,
	}
	if err := s.cancellations.CreateTx(ctx, tx, cancellation); err != nil {
		return nil, util.MapError(err)
	}
	if err := s.payments.MarkCancelled(ctx, tx, payment.ID); err != nil {
		return nil, util.MapError(err)
	}
	if err := s.cases.UpdateBalance(ctx, tx, payment.CaseID, newBalance); err != nil {
		return nil, util.MapError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, util.MapError(err)
	}

	s.cache.Invalidate(ctx, payment.CaseID)
	s.publish(ctx, events.EventPaymentCancelled, "payment", payment.ID, "cancel", principal.UID, map[string]any{
		"cancellationId": cancellation.ID,
		"caseId":         payment.CaseID,
		"amount":         payment.Amount,
		"newBalance":     newBalance,
		"reason":         reason,
	})
	return &CancellationResult{Cancellation: cancellation, NewBalance: newBalance}, nil
}

// GetPayment fetches a payment; gestores may only see payments on their cases.
func (s *LedgerService) GetPayment(ctx context.Context, principal *auth.Principal, id string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewNotFound("payment", map[string]any{"paymentId": id})
		}
		return nil, util.MapError(err)
	}
	if err := s.checkCaseAccess(ctx, principal, payment.CaseID); err != nil {
		return nil, err
	}
	return payment, nil
}

// ListPayments returns payments matching the filter, newest payment date
// first. Gestores are restricted to payments they created.
func (s *LedgerService) ListPayments(ctx context.Context, principal *auth.Principal, filter repository.PaymentFilter) ([]domain.Payment, error) {
	if !principal.Elevated() {
		uid := principal.UID
		filter.CreatedBy = &uid
	}
	payments, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].Date.After(payments[j].Date)
	})
	return payments, nil
}

// PatchPayment edits the descriptive fields of a posted payment. Cancelled
// payments are immutable. Amount and caseId can never change; reversals go
// through CancelPayment.
func (s *LedgerService) PatchPayment(ctx context.Context, principal *auth.Principal, id, ifMatch string, patch repository.PaymentPatch) (*domain.Payment, error) {
	if !auth.Authorize(principal, auth.ActionEditPayment, nil) {
		return nil, util.NewForbidden("supervisor role required")
	}
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewNotFound("payment", map[string]any{"paymentId": id})
		}
		return nil, util.MapError(err)
	}
	if payment.Status == domain.PaymentStatusCancelled {
		return nil, util.NewConflictCode("IMMUTABLE_STATUS", "cancelled payments cannot be edited",
			map[string]any{"paymentId": id})
	}

	currentTag := util.ETagFromTime(payment.UpdatedAt)
	if !util.CheckIfMatch(ifMatch, currentTag) {
		return nil, util.NewPreconditionFailed(currentTag)
	}

	updated, err := s.payments.Patch(ctx, id, patch)
	if err != nil {
		return nil, util.MapError(err)
	}
	s.publish(ctx, events.EventPaymentUpdated, "payment", id, "update", principal.UID, map[string]any{
		"caseId": payment.CaseID,
	})
	return updated, nil
}

// GetCancellation fetches a cancellation record.
func (s *LedgerService) GetCancellation(ctx context.Context, principal *auth.Principal, id string) (*domain.Cancellation, error) {
	cancellation, err := s.cancellations.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewNotFound("cancellation", map[string]any{"cancellationId": id})
		}
		return nil, util.MapError(err)
	}
	if err := s.checkCaseAccess(ctx, principal, cancellation.CaseID); err != nil {
		return nil, err
	}
	return cancellation, nil
}

// ListCancellations returns cancellations, newest first.
func (s *LedgerService) ListCancellations(ctx context.Context, principal *auth.Principal, filter repository.CancellationFilter) ([]domain.Cancellation, error) {
	if !principal.Elevated() {
		uid := principal.UID
		filter.CreatedBy = &uid
	}
	cancellations, err := s.cancellations.List(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	sort.Slice(cancellations, func(i, j int) bool {
		return cancellations[i].CreatedAt.After(cancellations[j].CreatedAt)
	})
	return cancellations, nil
}

func (s *LedgerService) checkCaseAccess(ctx context.Context, principal *auth.Principal, caseID string) error {
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

func (s *LedgerService) publish(ctx context.Context, eventType events.EventType, entity, entityID, action, actorID string, diff map[string]any) {
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

func caseNotFound(caseID string) error {
	return util.NewDomainError("CASE_NOT_FOUND", "case not found", http.StatusNotFound,
		map[string]any{"caseId": caseID})
}
