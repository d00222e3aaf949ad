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

// TicketService resolves supervisor-validation tickets. Approving applies the
// proposed case state; rejecting closes the ticket and leaves the case alone.
type TicketService struct {
	tickets    repository.TicketRepository
	cases      repository.CaseRepository
	cache      *CaseCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, cases repository.CaseRepository, cache *CaseCache, dispatcher events.Dispatcher, logger *zap.Logger) *TicketService {
	return &TicketService{tickets: tickets, cases: cases, cache: cache, dispatcher: dispatcher, logger: logger}
}

// Get fetches a ticket. Supervisor or admin only.
func (s *TicketService) Get(ctx context.Context, principal *auth.Principal, id string) (*domain.Ticket, error) {
	if !auth.Authorize(principal, auth.ActionResolveTicket, nil) {
		return nil, util.NewForbidden("supervisor role required")
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewNotFound("ticket", map[string]any{"ticketId": id})
		}
		return nil, util.MapError(err)
	}
	return ticket, nil
}

// List returns tickets matching the filter, newest first.
func (s *TicketService) List(ctx context.Context, principal *auth.Principal, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if !auth.Authorize(principal, auth.ActionResolveTicket, nil) {
		return nil, util.NewForbidden("supervisor role required")
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, util.MapError(err)
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
	return tickets, nil
}

// Approve closes an OPEN ticket and applies its proposed state to the case.
func (s *TicketService) Approve(ctx context.Context, principal *auth.Principal, id string) (*domain.Ticket, error) {
	ticket, err := s.loadOpen(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	closed, err := s.tickets.Close(ctx, id, false, nil)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ticketNotOpen(id)
		}
		return nil, util.MapError(err)
	}

	if ticket.ProposedState != nil && *ticket.ProposedState != "" {
		if err := s.cases.UpdateState(ctx, ticket.CaseID, *ticket.ProposedState); err != nil {
			s.logger.Error("proposed state apply failed after ticket closed",
				zap.String("ticketId", id),
				zap.String("caseId", ticket.CaseID),
				zap.String("proposedState", *ticket.ProposedState),
				zap.Error(err))
			return nil, util.MapError(err)
		}
		s.cache.Invalidate(ctx, ticket.CaseID)
	}

	s.publish(ctx, events.EventTicketClosed, id, "approve", principal.UID, map[string]any{
		"caseId":        ticket.CaseID,
		"proposedState": ticket.ProposedState,
		"approved":      true,
	})
	return closed, nil
}

// Reject closes an OPEN ticket discarding its proposal. The case is untouched.
func (s *TicketService) Reject(ctx context.Context, principal *auth.Principal, id, reason string) (*domain.Ticket, error) {
	if _, err := s.loadOpen(ctx, principal, id); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	closed, err := s.tickets.Close(ctx, id, true, reasonPtr)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ticketNotOpen(id)
		}
		return nil, util.MapError(err)
	}

	s.publish(ctx, events.EventTicketClosed, id, "reject", principal.UID, map[string]any{
		"caseId":       closed.CaseID,
		"approved":     false,
		"rejectReason": reason,
	})
	return closed, nil
}

func (s *TicketService) loadOpen(ctx context.Context, principal *auth.Principal, id string) (*domain.Ticket, error) {
	if !auth.Authorize(principal, auth.ActionResolveTicket, nil) {
		return nil, util.NewForbidden("supervisor role required")
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, util.NewNotFound("ticket", map[string]any{"ticketId": id})
		}
		return nil, util.MapError(err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		return nil, ticketNotOpen(id)
	}
	return ticket, nil
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, entityID, action, actorID string, diff map[string]any) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Entity:    "ticket",
		EntityID:  entityID,
		Action:    action,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Diff:      diff,
	}); err != nil && s.logger != nil {
		s.logger.Warn("event publish failed", zap.String("type", string(eventType)), zap.Error(err))
	}
}

func ticketNotOpen(id string) error {
	return util.NewDomainError("TICKET_NOT_OPEN", "ticket is not open", http.StatusBadRequest,
		map[string]any{"ticketId": id})
}
