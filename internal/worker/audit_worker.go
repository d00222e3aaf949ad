package worker

import (
	"context"

	"github.com/crediflow/collections-service/internal/events"
	"github.com/crediflow/collections-service/internal/service"
)

var auditedEvents = []events.EventType{
	events.EventCaseCreated,
	events.EventCaseUpdated,
	events.EventPaymentPosted,
	events.EventPaymentUpdated,
	events.EventPaymentCancelled,
	events.EventAgreementCreated,
	events.EventAgreementUpdated,
	events.EventInteractionRecorded,
	events.EventTicketOpened,
	events.EventTicketClosed,
}

// StartAuditWorker subscribes the audit sink to every domain event. The sink
// is best-effort, so the handler always reports success to the dispatcher.
func StartAuditWorker(dispatcher events.Dispatcher, audit *service.AuditService) {
	if dispatcher == nil || audit == nil {
		return
	}
	handler := func(ctx context.Context, event events.Event) error {
		audit.Record(ctx, service.AuditEntry{
			Entity:   event.Entity,
			EntityID: event.EntityID,
			Action:   event.Action,
			By:       event.ActorID,
			Diff:     event.Diff,
			Meta:     event.Meta,
		})
		return nil
	}
	for _, eventType := range auditedEvents {
		dispatcher.Subscribe(eventType, handler)
	}
}
