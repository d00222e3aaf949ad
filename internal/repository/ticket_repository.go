package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediflow/collections-service/internal/domain"
)

// TicketFilter captures supervisor-ticket listing parameters.
type TicketFilter struct {
	CaseID *string
	Status *domain.TicketStatus
	Limit  int
}

// TicketRepository encapsulates supervisor-ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// Close transitions an OPEN ticket to CLOSED. Returns pgx.ErrNoRows when
	// the ticket is absent or already closed, which prevents double-processing.
	Close(ctx context.Context, id string, rejected bool, rejectReason *string) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, case_id, interaction_id, type, reason, proposed_state, status, rejected, reject_reason, created_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (case_id, interaction_id, type, reason, proposed_state, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		t.CaseID,
		t.InteractionID,
		t.Type,
		t.Reason,
		t.ProposedState,
		t.Status,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE 1=1`
	args := []any{}
	if filter.CaseID != nil {
		args = append(args, *filter.CaseID)
		query += placeholderClause(` AND case_id=`, len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += placeholderClause(` AND status=`, len(args))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)
	query += placeholderClause(` LIMIT `, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Close(ctx context.Context, id string, rejected bool, rejectReason *string) (*domain.Ticket, error) {
	const query = `
        UPDATE tickets SET status='CLOSED', closed_at=NOW(), rejected=$1, reject_reason=$2
        WHERE id=$3 AND status='OPEN'
        RETURNING ` + ticketColumns
	return scanTicket(r.pool.QueryRow(ctx, query, rejected, rejectReason, id))
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(
		&t.ID,
		&t.CaseID,
		&t.InteractionID,
		&t.Type,
		&t.Reason,
		&t.ProposedState,
		&t.Status,
		&t.Rejected,
		&t.RejectReason,
		&t.CreatedAt,
		&t.ClosedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
