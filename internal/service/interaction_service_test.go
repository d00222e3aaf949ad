package service

import (
	"context"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/crediflow/collections-service/internal/domain"
	"github.com/crediflow/collections-service/internal/rules"
	"github.com/crediflow/collections-service/pkg/util"
)

func workflowTables() *rules.Tables {
	return rules.New(
		[]string{"NUEVO", "EN_GESTION", "PROMESA", "TRANSACCION", "CANCELADO", "INCOBRABLE"},
		map[string][]string{
			"NUEVO":       {"EN_GESTION", "PROMESA"},
			"EN_GESTION":  {"PROMESA", "TRANSACCION", "INCOBRABLE"},
			"PROMESA":     {"EN_GESTION", "TRANSACCION", "CANCELADO"},
			"TRANSACCION": {"EN_GESTION", "CANCELADO"},
		},
		map[string][]string{
			"NUEVO":      {"SIN_RESPUESTA", "CONTACTO_EFECTIVO", "NO_RECONOCE_DEUDA"},
			"EN_GESTION": {"SIN_RESPUESTA", "CONTACTO_EFECTIVO", "PROMESA_DE_PAGO", "NO_RECONOCE_DEUDA"},
			"PROMESA":    {"SIN_RESPUESTA", "PROMESA_DE_PAGO", "CONFIRMA_HABER_PAGO", "CONFIRMA_PAGO_DE_CUOTA"},
		},
		map[string]rules.FieldSpec{
			"SIN_RESPUESTA":     {},
			"CONTACTO_EFECTIVO": {Required: []string{"telefonoContacto"}},
			"PROMESA_DE_PAGO": {Variants: map[string][]string{
				"CONTADO":          {"montoPromesa", "fechaPromesa"},
				"ENTREGA_CONVENIO": {"entregaMonto", "entregaFecha", "cuotasTotales", "montoCuota", "segundaCuotaVence"},
				"PAGOS_A_CUENTA":   {"entregaMonto", "entregaFecha", "pagosACuentaTotales", "montoPorPago", "segundaCuotaVence"},
			}},
			"CONFIRMA_HABER_PAGO":    {Required: []string{"montoPagado", "fechaPago", "medioPago"}},
			"CONFIRMA_PAGO_DE_CUOTA": {Required: []string{"montoCuota", "fechaPago"}},
		},
	)
}

func newInteractionFixture(tables *rules.Tables) (*InteractionService, *fakeCaseRepo, *fakeInteractionRepo, *fakeTicketRepo, *fakeDispatcher) {
	cases := newFakeCaseRepo()
	interactions := newFakeInteractionRepo()
	tickets := newFakeTicketRepo()
	dispatcher := &fakeDispatcher{}
	svc := NewInteractionService(tables, cases, interactions, tickets, NewCaseCache(nil), dispatcher, zap.NewNop())
	return svc, cases, interactions, tickets, dispatcher
}

func paymentConfirmationFields() map[string]any {
	return map[string]any{
		"montoPagado": 1500.0,
		"fechaPago":   "2026-03-01",
		"medioPago":   "transferencia",
	}
}

func TestSubmitRejectsDisallowedResult(t *testing.T) {
	svc, cases, interactions, _, _ := newInteractionFixture(workflowTables())
	kase := cases.put(&domain.Case{State: "NUEVO", AssignedTo: "u1", Balance: 1000, Status: domain.CaseStatusOpen})

	_, err := svc.Submit(context.Background(), gestorPrincipal("u1"), SubmitInput{
		CaseID:       kase.ID,
		CurrentState: "NUEVO",
		Result:       "CONFIRMA_HABER_PAGO",
	})
	if err == nil {
		t.Fatal("disallowed result accepted")
	}
	domainErr := util.ToDomainError(err)
	if domainErr.Code != "RESULT_NOT_ALLOWED" || domainErr.HTTPStatus != http.StatusConflict {
		t.Fatalf("got %q/%d, want RESULT_NOT_ALLOWED/409", domainErr.Code, domainErr.HTTPStatus)
	}
	if _, ok := domainErr.Details["allowedResults"]; !ok {
		t.Fatal("details missing allowedResults")
	}
	if len(interactions.interactions) != 0 {
		t.Fatal("rejected submission was persisted")
	}
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	svc, cases, _, _, _ := newInteractionFixture(workflowTables())
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 1000, Status: domain.CaseStatusOpen})

	_, err := svc.Submit(context.Background(), gestorPrincipal("u1"), SubmitInput{
		CaseID:       kase.ID,
		CurrentState: "PROMESA",
		Result:       "CONFIRMA_HABER_PAGO",
		Fields:       map[string]any{"montoPagado": 100.0, "medioPago": "   "},
	})
	if err == nil {
		t.Fatal("incomplete fields accepted")
	}
	domainErr := util.ToDomainError(err)
	if domainErr.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", domainErr.HTTPStatus)
	}
	missing, _ := domainErr.Details["missing"].([]string)
	if len(missing) != 2 {
		t.Fatalf("missing = %v, want fechaPago and medioPago", domainErr.Details["missing"])
	}
}

func TestSubmitPromiseWithoutConceptFails(t *testing.T) {
	svc, cases, _, _, _ := newInteractionFixture(workflowTables())
	kase := cases.put(&domain.Case{State: "EN_GESTION", AssignedTo: "u1", Balance: 1000, Status: domain.CaseStatusOpen})

	_, err := svc.Submit(context.Background(), gestorPrincipal("u1"), SubmitInput{
		CaseID:       kase.ID,
		CurrentState: "EN_GESTION",
		Result:       "PROMESA_DE_PAGO",
		Fields:       map[string]any{"montoPromesa": 500.0, "fechaPromesa": "2026-04-01"},
	})
	if err == nil {
		t.Fatal("variant result without concept accepted")
	}
	if status := util.ToDomainError(err).HTTPStatus; status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestSubmitLumpSumConfirmationDefersToSupervisor(t *testing.T) {
	svc, cases, interactions, tickets, _ := newInteractionFixture(workflowTables())
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 1500, Status: domain.CaseStatusOpen})

	result, err := svc.Submit(context.Background(), gestorPrincipal("u1"), SubmitInput{
		CaseID:             kase.ID,
		CurrentState:       "PROMESA",
		Result:             "CONFIRMA_HABER_PAGO",
		LastPromiseConcept: "CONTADO",
		Fields:             paymentConfirmationFields(),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// The state change waits for supervisor approval.
	if result.NextState != "PROMESA" {
		t.Fatalf("nextState = %q, want PROMESA", result.NextState)
	}
	stored, _ := cases.GetByID(context.Background(), kase.ID)
	if stored.State != "PROMESA" {
		t.Fatalf("case state = %q, want PROMESA", stored.State)
	}

	if result.TransitionInfo["requiresSupervisor"] != true || result.TransitionInfo["proposed"] != "CANCELADO" {
		t.Fatalf("transitionInfo = %v", result.TransitionInfo)
	}

	if result.SupervisorTicketID == "" {
		t.Fatal("no supervisor ticket created")
	}
	ticket, err := tickets.GetByID(context.Background(), result.SupervisorTicketID)
	if err != nil {
		t.Fatalf("ticket lookup: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen || ticket.Type != domain.TicketTypeSupervisorValidation {
		t.Fatalf("ticket = %+v", ticket)
	}
	if ticket.ProposedState == nil || *ticket.ProposedState != "CANCELADO" {
		t.Fatalf("proposedState = %v, want CANCELADO", ticket.ProposedState)
	}
	if ticket.Reason != "Validar pago de cancelacion contado" {
		t.Fatalf("reason = %q", ticket.Reason)
	}

	if len(interactions.interactions) != 1 {
		t.Fatalf("interactions = %d, want 1", len(interactions.interactions))
	}
	logged := interactions.interactions[0]
	if !logged.SupervisorRequired || logged.SuggestedNextState == nil || *logged.SuggestedNextState != "CANCELADO" {
		t.Fatalf("logged interaction = %+v", logged)
	}
}

func TestSubmitAgreementConfirmationAppliesTransition(t *testing.T) {
	svc, cases, _, tickets, _ := newInteractionFixture(workflowTables())
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 1500, Status: domain.CaseStatusOpen})

	fields := map[string]any{
		"montoPagado":       500.0,
		"fechaPago":         "2026-03-01",
		"medioPago":         "transferencia",
		"entregaMonto":      500.0,
		"entregaFecha":      "2026-03-01",
		"cuotasTotales":     6,
		"montoCuota":        200.0,
		"segundaCuotaVence": "2026-04-01",
	}
	result, err := svc.Submit(context.Background(), gestorPrincipal("u1"), SubmitInput{
		CaseID:             kase.ID,
		CurrentState:       "PROMESA",
		Result:             "CONFIRMA_HABER_PAGO",
		LastPromiseConcept: "ENTREGA_CONVENIO",
		Fields:             fields,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.NextState != "TRANSACCION" {
		t.Fatalf("nextState = %q, want TRANSACCION", result.NextState)
	}
	stored, _ := cases.GetByID(context.Background(), kase.ID)
	if stored.State != "TRANSACCION" {
		t.Fatalf("case state = %q, want TRANSACCION", stored.State)
	}
	if result.TransitionInfo["appliedSuggested"] != true {
		t.Fatalf("transitionInfo = %v", result.TransitionInfo)
	}
	if result.SupervisorTicketID != "" || len(tickets.tickets) != 0 {
		t.Fatal("agreement confirmation opened a supervisor ticket")
	}

	var activate *domain.Action
	for i := range result.Actions {
		if result.Actions[i].Type == domain.ActionActivateAgreement {
			activate = &result.Actions[i]
		}
	}
	if activate == nil {
		t.Fatal("missing ACTIVATE_AGREEMENT action")
	}
	if activate.AgreementType != "CONVENIO" {
		t.Fatalf("agreementType = %q", activate.AgreementType)
	}
	if activate.Data["cuotasTotales"] != 6 {
		t.Fatalf("action data = %v", activate.Data)
	}
}

func TestSubmitExplicitChoiceWins(t *testing.T) {
	svc, cases, interactions, _, _ := newInteractionFixture(workflowTables())
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 1500, Status: domain.CaseStatusOpen})

	result, err := svc.Submit(context.Background(), gestorPrincipal("u1"), SubmitInput{
		CaseID:          kase.ID,
		CurrentState:    "PROMESA",
		Result:          "SIN_RESPUESTA",
		ChosenNextState: "EN_GESTION",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.NextState != "EN_GESTION" {
		t.Fatalf("nextState = %q, want EN_GESTION", result.NextState)
	}
	if result.TransitionInfo["chosenByUser"] != true {
		t.Fatalf("transitionInfo = %v", result.TransitionInfo)
	}
	stored, _ := cases.GetByID(context.Background(), kase.ID)
	if stored.State != "EN_GESTION" {
		t.Fatalf("case state = %q, want EN_GESTION", stored.State)
	}
	if len(interactions.interactions) != 1 {
		t.Fatalf("interactions = %d, want 1", len(interactions.interactions))
	}
}

func TestSubmitIllegalExplicitChoiceConflicts(t *testing.T) {
	svc, cases, interactions, _, _ := newInteractionFixture(workflowTables())
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 1500, Status: domain.CaseStatusOpen})

	_, err := svc.Submit(context.Background(), gestorPrincipal("u1"), SubmitInput{
		CaseID:          kase.ID,
		CurrentState:    "PROMESA",
		Result:          "SIN_RESPUESTA",
		ChosenNextState: "INCOBRABLE",
	})
	if err == nil {
		t.Fatal("illegal explicit choice accepted")
	}
	domainErr := util.ToDomainError(err)
	if domainErr.Code != "TRANSITION_BLOCKED" || domainErr.HTTPStatus != http.StatusConflict {
		t.Fatalf("got %q/%d, want TRANSITION_BLOCKED/409", domainErr.Code, domainErr.HTTPStatus)
	}
	if _, ok := domainErr.Details["allowedNext"]; !ok {
		t.Fatal("details missing allowedNext")
	}
	if len(interactions.interactions) != 0 {
		t.Fatal("rejected submission was persisted")
	}
}

func TestSubmitBlockedSuggestionRecordsInteraction(t *testing.T) {
	// Same rules, but PROMESA cannot reach CANCELADO: the lump-sum suggestion
	// is recorded as blocked and the state stays put.
	tables := rules.New(
		[]string{"PROMESA", "TRANSACCION", "CANCELADO"},
		map[string][]string{"PROMESA": {"TRANSACCION"}},
		map[string][]string{"PROMESA": {"CONFIRMA_HABER_PAGO"}},
		map[string]rules.FieldSpec{
			"CONFIRMA_HABER_PAGO": {Required: []string{"montoPagado", "fechaPago", "medioPago"}},
		},
	)
	svc, cases, interactions, tickets, _ := newInteractionFixture(tables)
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 1500, Status: domain.CaseStatusOpen})

	result, err := svc.Submit(context.Background(), gestorPrincipal("u1"), SubmitInput{
		CaseID:             kase.ID,
		CurrentState:       "PROMESA",
		Result:             "CONFIRMA_HABER_PAGO",
		LastPromiseConcept: "CONTADO",
		Fields:             paymentConfirmationFields(),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.NextState != "PROMESA" {
		t.Fatalf("nextState = %q, want PROMESA", result.NextState)
	}
	if result.TransitionInfo["suggestedButBlocked"] != "CANCELADO" {
		t.Fatalf("transitionInfo = %v", result.TransitionInfo)
	}
	if len(interactions.interactions) != 1 {
		t.Fatalf("interactions = %d, want 1", len(interactions.interactions))
	}
	// Blocked suggestions still open the validation ticket; the supervisor
	// resolves the mismatch by hand.
	if len(tickets.tickets) != 1 {
		t.Fatalf("tickets = %d, want 1", len(tickets.tickets))
	}
}

func TestSubmitUnknownStateRejected(t *testing.T) {
	svc, cases, _, _, _ := newInteractionFixture(workflowTables())
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 1500, Status: domain.CaseStatusOpen})

	_, err := svc.Submit(context.Background(), gestorPrincipal("u1"), SubmitInput{
		CaseID:       kase.ID,
		CurrentState: "LIMBO",
		Result:       "SIN_RESPUESTA",
	})
	if err == nil {
		t.Fatal("unknown state accepted")
	}
	if status := util.ToDomainError(err).HTTPStatus; status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestSubmitDeniedForUnassignedGestor(t *testing.T) {
	svc, cases, _, _, _ := newInteractionFixture(workflowTables())
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "owner", Balance: 1500, Status: domain.CaseStatusOpen})

	_, err := svc.Submit(context.Background(), gestorPrincipal("intruder"), SubmitInput{
		CaseID:       kase.ID,
		CurrentState: "PROMESA",
		Result:       "SIN_RESPUESTA",
	})
	if err == nil {
		t.Fatal("expected forbidden")
	}
	if status := util.ToDomainError(err).HTTPStatus; status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
}
