package service

import (
	"context"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/crediflow/collections-service/internal/domain"
	"github.com/crediflow/collections-service/internal/events"
	"github.com/crediflow/collections-service/internal/repository"
	"github.com/crediflow/collections-service/pkg/util"
)

func newLedgerFixture() (*LedgerService, *fakeCaseRepo, *fakePaymentRepo, *fakeCancellationRepo, *fakeDispatcher) {
	cases := newFakeCaseRepo()
	payments := newFakePaymentRepo()
	cancellations := newFakeCancellationRepo()
	dispatcher := &fakeDispatcher{}
	svc := NewLedgerService(&fakeDB{}, cases, payments, cancellations, NewCaseCache(nil), dispatcher, zap.NewNop())
	return svc, cases, payments, cancellations, dispatcher
}

func TestPostPaymentDecrementsBalance(t *testing.T) {
	svc, cases, _, _, dispatcher := newLedgerFixture()
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 1000, Status: domain.CaseStatusOpen})

	result, err := svc.PostPayment(context.Background(), gestorPrincipal("u1"), PaymentInput{
		CaseID: kase.ID,
		Amount: 300,
	})
	if err != nil {
		t.Fatalf("PostPayment: %v", err)
	}
	if result.NewBalance != 700 {
		t.Fatalf("new balance = %v, want 700", result.NewBalance)
	}
	stored, _ := cases.GetByID(context.Background(), kase.ID)
	if stored.Balance != 700 {
		t.Fatalf("stored balance = %v, want 700", stored.Balance)
	}
	if result.Payment.Status != domain.PaymentStatusPosted {
		t.Fatalf("payment status = %q, want posted", result.Payment.Status)
	}
	if got := dispatcher.byType(events.EventPaymentPosted); len(got) != 1 {
		t.Fatalf("payment_posted events = %d, want 1", len(got))
	}
}

func TestPostPaymentFloorsBalanceAtZero(t *testing.T) {
	svc, cases, _, _, _ := newLedgerFixture()
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 100, Status: domain.CaseStatusOpen})

	result, err := svc.PostPayment(context.Background(), gestorPrincipal("u1"), PaymentInput{
		CaseID: kase.ID,
		Amount: 250,
	})
	if err != nil {
		t.Fatalf("PostPayment: %v", err)
	}
	if result.NewBalance != 0 {
		t.Fatalf("new balance = %v, want 0", result.NewBalance)
	}
}

func TestPostPaymentRejectsNonPositiveAmount(t *testing.T) {
	svc, cases, _, _, _ := newLedgerFixture()
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 100, Status: domain.CaseStatusOpen})

	for _, amount := range []float64{0, -5} {
		_, err := svc.PostPayment(context.Background(), gestorPrincipal("u1"), PaymentInput{CaseID: kase.ID, Amount: amount})
		if err == nil {
			t.Fatalf("amount %v accepted, want validation error", amount)
		}
		if code := util.ToDomainError(err).Code; code != "VALIDATION_FAILED" {
			t.Fatalf("amount %v: code = %q, want VALIDATION_FAILED", amount, code)
		}
	}
}

func TestPostPaymentDeniedForUnassignedGestor(t *testing.T) {
	svc, cases, _, _, _ := newLedgerFixture()
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "owner", Balance: 100, Status: domain.CaseStatusOpen})

	_, err := svc.PostPayment(context.Background(), gestorPrincipal("intruder"), PaymentInput{CaseID: kase.ID, Amount: 10})
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	if status := util.ToDomainError(err).HTTPStatus; status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
}

func TestCancelPaymentRestoresBalanceUncapped(t *testing.T) {
	svc, cases, payments, cancellations, _ := newLedgerFixture()
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 0, Status: domain.CaseStatusOpen})
	payment := payments.put(&domain.Payment{CaseID: kase.ID, Amount: 400, Status: domain.PaymentStatusPosted, CreatedBy: "u1"})

	result, err := svc.CancelPayment(context.Background(), supervisorPrincipal("sup"), payment.ID, "error de carga")
	if err != nil {
		t.Fatalf("CancelPayment: %v", err)
	}
	// The add-back is not capped by the original balance.
	if result.NewBalance != 400 {
		t.Fatalf("new balance = %v, want 400", result.NewBalance)
	}
	stored, _ := payments.GetByID(context.Background(), payment.ID)
	if stored.Status != domain.PaymentStatusCancelled {
		t.Fatalf("payment status = %q, want cancelled", stored.Status)
	}
	if result.Cancellation.PaymentID != payment.ID || result.Cancellation.Amount != 400 {
		t.Fatalf("cancellation = %+v", result.Cancellation)
	}
	if len(cancellations.cancellations) != 1 {
		t.Fatalf("cancellation rows = %d, want 1", len(cancellations.cancellations))
	}
}

func TestCancelPaymentTwiceConflicts(t *testing.T) {
	svc, cases, payments, _, _ := newLedgerFixture()
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 100, Status: domain.CaseStatusOpen})
	payment := payments.put(&domain.Payment{CaseID: kase.ID, Amount: 50, Status: domain.PaymentStatusPosted, CreatedBy: "u1"})

	if _, err := svc.CancelPayment(context.Background(), supervisorPrincipal("sup"), payment.ID, ""); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	_, err := svc.CancelPayment(context.Background(), supervisorPrincipal("sup"), payment.ID, "")
	if err == nil {
		t.Fatal("second cancel succeeded, want conflict")
	}
	domainErr := util.ToDomainError(err)
	if domainErr.Code != "ALREADY_CANCELLED" || domainErr.HTTPStatus != http.StatusConflict {
		t.Fatalf("got %q/%d, want ALREADY_CANCELLED/409", domainErr.Code, domainErr.HTTPStatus)
	}

	// The balance moved exactly once.
	stored, _ := cases.GetByID(context.Background(), kase.ID)
	if stored.Balance != 150 {
		t.Fatalf("balance = %v, want 150", stored.Balance)
	}
}

func TestCancelPaymentUnknownPayment(t *testing.T) {
	svc, _, _, _, _ := newLedgerFixture()

	_, err := svc.CancelPayment(context.Background(), supervisorPrincipal("sup"), "missing", "")
	if err == nil {
		t.Fatal("expected PAYMENT_NOT_FOUND")
	}
	domainErr := util.ToDomainError(err)
	if domainErr.Code != "PAYMENT_NOT_FOUND" || domainErr.HTTPStatus != http.StatusNotFound {
		t.Fatalf("got %q/%d, want PAYMENT_NOT_FOUND/404", domainErr.Code, domainErr.HTTPStatus)
	}
}

func TestCancelPaymentRequiresElevatedRole(t *testing.T) {
	svc, cases, payments, _, _ := newLedgerFixture()
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 100, Status: domain.CaseStatusOpen})
	payment := payments.put(&domain.Payment{CaseID: kase.ID, Amount: 50, Status: domain.PaymentStatusPosted, CreatedBy: "u1"})

	_, err := svc.CancelPayment(context.Background(), gestorPrincipal("u1"), payment.ID, "")
	if err == nil {
		t.Fatal("gestor cancelled a payment, want forbidden")
	}
	if status := util.ToDomainError(err).HTTPStatus; status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
}

func TestPatchPaymentImmutableWhenCancelled(t *testing.T) {
	svc, cases, payments, _, _ := newLedgerFixture()
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 100, Status: domain.CaseStatusOpen})
	payment := payments.put(&domain.Payment{CaseID: kase.ID, Amount: 50, Status: domain.PaymentStatusCancelled, CreatedBy: "u1"})

	note := "late note"
	_, err := svc.PatchPayment(context.Background(), supervisorPrincipal("sup"), payment.ID, "", repository.PaymentPatch{Note: &note})
	if err == nil {
		t.Fatal("patched a cancelled payment, want conflict")
	}
	if code := util.ToDomainError(err).Code; code != "IMMUTABLE_STATUS" {
		t.Fatalf("code = %q, want IMMUTABLE_STATUS", code)
	}
}

func TestPatchPaymentChecksIfMatch(t *testing.T) {
	svc, cases, payments, _, _ := newLedgerFixture()
	kase := cases.put(&domain.Case{State: "PROMESA", AssignedTo: "u1", Balance: 100, Status: domain.CaseStatusOpen})
	payment := payments.put(&domain.Payment{CaseID: kase.ID, Amount: 50, Status: domain.PaymentStatusPosted, CreatedBy: "u1"})

	note := "note"
	_, err := svc.PatchPayment(context.Background(), supervisorPrincipal("sup"), payment.ID, `"12345"`, repository.PaymentPatch{Note: &note})
	if err == nil {
		t.Fatal("stale If-Match accepted, want 412")
	}
	if status := util.ToDomainError(err).HTTPStatus; status != http.StatusPreconditionFailed {
		t.Fatalf("status = %d, want 412", status)
	}

	current := util.ETagFromTime(payment.UpdatedAt)
	updated, err := svc.PatchPayment(context.Background(), supervisorPrincipal("sup"), payment.ID, current, repository.PaymentPatch{Note: &note})
	if err != nil {
		t.Fatalf("patch with current tag: %v", err)
	}
	if updated.Note != "note" {
		t.Fatalf("note = %q, want %q", updated.Note, "note")
	}
}
