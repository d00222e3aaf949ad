package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/crediflow/collections-service/internal/auth"
	"github.com/crediflow/collections-service/internal/domain"
	"github.com/crediflow/collections-service/internal/events"
	"github.com/crediflow/collections-service/internal/repository"
)

func gestorPrincipal(uid string) *auth.Principal {
	return &auth.Principal{UID: uid, Role: domain.RoleGestor}
}

func supervisorPrincipal(uid string) *auth.Principal {
	return &auth.Principal{UID: uid, Role: domain.RoleSupervisor}
}

// fakeTx satisfies pgx.Tx via embedding; only Commit and Rollback are real.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	txs []*fakeTx
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	tx := &fakeTx{}
	db.txs = append(db.txs, tx)
	return tx, nil
}

type fakeCaseRepo struct {
	mu    sync.Mutex
	cases map[string]*domain.Case
	seq   int
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{cases: map[string]*domain.Case{}}
}

func (r *fakeCaseRepo) put(c *domain.Case) *domain.Case {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		r.seq++
		c.ID = fmt.Sprintf("case-%d", r.seq)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
		c.UpdatedAt = c.CreatedAt
	}
	r.cases[c.ID] = c
	return c
}

func (r *fakeCaseRepo) Create(_ context.Context, c *domain.Case) error {
	r.put(c)
	return nil
}

func (r *fakeCaseRepo) GetByID(_ context.Context, id string) (*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCaseRepo) List(_ context.Context, filter repository.CaseFilter) ([]domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Case
	for _, c := range r.cases {
		if filter.AssignedTo != nil && c.AssignedTo != *filter.AssignedTo {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCaseRepo) Update(_ context.Context, c *domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.cases[c.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	*stored = *c
	stored.UpdatedAt = time.Now()
	c.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *fakeCaseRepo) UpdateState(_ context.Context, id, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.State = state
	c.UpdatedAt = time.Now()
	return nil
}

func (r *fakeCaseRepo) GetForUpdate(ctx context.Context, _ pgx.Tx, id string) (*domain.Case, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeCaseRepo) UpdateBalance(_ context.Context, _ pgx.Tx, id string, balance float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cases[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.Balance = balance
	c.UpdatedAt = time.Now()
	return nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment
	seq      int
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[string]*domain.Payment{}}
}

func (r *fakePaymentRepo) put(p *domain.Payment) *domain.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		r.seq++
		p.ID = fmt.Sprintf("payment-%d", r.seq)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
		p.UpdatedAt = p.CreatedAt
	}
	r.payments[p.ID] = p
	return p
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepo) List(_ context.Context, filter repository.PaymentFilter) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, p := range r.payments {
		if filter.CaseID != nil && p.CaseID != *filter.CaseID {
			continue
		}
		if filter.CreatedBy != nil && p.CreatedBy != *filter.CreatedBy {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePaymentRepo) Patch(_ context.Context, id string, patch repository.PaymentPatch) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if patch.Method != nil {
		p.Method = *patch.Method
	}
	if patch.Date != nil {
		p.Date = *patch.Date
	}
	if patch.Note != nil {
		p.Note = *patch.Note
	}
	if patch.Metadata != nil {
		p.Metadata = patch.Metadata
	}
	p.UpdatedAt = time.Now()
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepo) CreateTx(_ context.Context, _ pgx.Tx, p *domain.Payment) error {
	r.put(p)
	return nil
}

func (r *fakePaymentRepo) GetForUpdate(ctx context.Context, _ pgx.Tx, id string) (*domain.Payment, error) {
	return r.GetByID(ctx, id)
}

func (r *fakePaymentRepo) MarkCancelled(_ context.Context, _ pgx.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	p.Status = domain.PaymentStatusCancelled
	p.CancelledAt = &now
	p.UpdatedAt = now
	return nil
}

type fakeCancellationRepo struct {
	mu            sync.Mutex
	cancellations map[string]*domain.Cancellation
	seq           int
}

func newFakeCancellationRepo() *fakeCancellationRepo {
	return &fakeCancellationRepo{cancellations: map[string]*domain.Cancellation{}}
}

func (r *fakeCancellationRepo) GetByID(_ context.Context, id string) (*domain.Cancellation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cancellations[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCancellationRepo) List(_ context.Context, filter repository.CancellationFilter) ([]domain.Cancellation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Cancellation
	for _, c := range r.cancellations {
		if filter.CaseID != nil && c.CaseID != *filter.CaseID {
			continue
		}
		if filter.PaymentID != nil && c.PaymentID != *filter.PaymentID {
			continue
		}
		if filter.CreatedBy != nil && c.CreatedBy != *filter.CreatedBy {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCancellationRepo) CreateTx(_ context.Context, _ pgx.Tx, c *domain.Cancellation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	c.ID = fmt.Sprintf("cancellation-%d", r.seq)
	c.CreatedAt = time.Now()
	r.cancellations[c.ID] = c
	return nil
}

type fakeInteractionRepo struct {
	mu           sync.Mutex
	interactions []*domain.Interaction
	seq          int
	failCreate   error
}

func newFakeInteractionRepo() *fakeInteractionRepo {
	return &fakeInteractionRepo{}
}

func (r *fakeInteractionRepo) Create(_ context.Context, in *domain.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	r.seq++
	in.ID = fmt.Sprintf("interaction-%d", r.seq)
	in.TS = time.Now()
	r.interactions = append(r.interactions, in)
	return nil
}

func (r *fakeInteractionRepo) ListByCase(_ context.Context, caseID string, _ int) ([]domain.Interaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Interaction
	for _, in := range r.interactions {
		if in.CaseID == caseID {
			out = append(out, *in)
		}
	}
	return out, nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	seq     int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) put(t *domain.Ticket) *domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		r.seq++
		t.ID = fmt.Sprintf("ticket-%d", r.seq)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	r.tickets[t.ID] = t
	return t
}

func (r *fakeTicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.put(t)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.tickets {
		if filter.CaseID != nil && t.CaseID != *filter.CaseID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTicketRepo) Close(_ context.Context, id string, rejected bool, rejectReason *string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok || t.Status != domain.TicketStatusOpen {
		return nil, pgx.ErrNoRows
	}
	now := time.Now()
	t.Status = domain.TicketStatusClosed
	t.Rejected = rejected
	t.RejectReason = rejectReason
	t.ClosedAt = &now
	copied := *t
	return &copied, nil
}

type fakeDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *fakeDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *fakeDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *fakeDispatcher) byType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
