package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediflow/collections-service/internal/domain"
)

// PaymentFilter captures payment listing parameters.
type PaymentFilter struct {
	CaseID    *string
	CreatedBy *string
	Limit     int
}

// PaymentPatch carries the fields editable on a posted payment.
type PaymentPatch struct {
	Method   *string
	Date     *time.Time
	Note     *string
	Metadata map[string]any
}

// PaymentRepository encapsulates payment persistence. CreateTx, GetForUpdate
// and MarkCancelled participate in ledger transactions.
type PaymentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error)
	Patch(ctx context.Context, id string, patch PaymentPatch) (*domain.Payment, error)

	CreateTx(ctx context.Context, tx pgx.Tx, p *domain.Payment) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Payment, error)
	MarkCancelled(ctx context.Context, tx pgx.Tx, id string) error
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository instantiates the repository.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

const paymentColumns = `id, case_id, amount, method, date, status, note, metadata, created_by, cancelled_at, created_at, updated_at`

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1`
	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE 1=1`
	args := []any{}
	if filter.CaseID != nil {
		args = append(args, *filter.CaseID)
		query += placeholderClause(` AND case_id=`, len(args))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		query += placeholderClause(` AND created_by=`, len(args))
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

	var result []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *paymentRepository) Patch(ctx context.Context, id string, patch PaymentPatch) (*domain.Payment, error) {
	query := `UPDATE payments SET updated_at=NOW()`
	args := []any{}
	if patch.Method != nil {
		args = append(args, *patch.Method)
		query += placeholderClause(`, method=`, len(args))
	}
	if patch.Date != nil {
		args = append(args, *patch.Date)
		query += placeholderClause(`, date=`, len(args))
	}
	if patch.Note != nil {
		args = append(args, *patch.Note)
		query += placeholderClause(`, note=`, len(args))
	}
	if patch.Metadata != nil {
		args = append(args, patch.Metadata)
		query += placeholderClause(`, metadata=`, len(args))
	}
	args = append(args, id)
	query += placeholderClause(` WHERE id=`, len(args))
	query += ` RETURNING ` + paymentColumns

	return scanPayment(r.pool.QueryRow(ctx, query, args...))
}

func (r *paymentRepository) CreateTx(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	const query = `
        INSERT INTO payments (case_id, amount, method, date, status, note, metadata, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`
	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return tx.QueryRow(ctx, query,
		p.CaseID,
		p.Amount,
		p.Method,
		p.Date,
		p.Status,
		p.Note,
		metadata,
		p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *paymentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id=$1 FOR UPDATE`
	return scanPayment(tx.QueryRow(ctx, query, id))
}

func (r *paymentRepository) MarkCancelled(ctx context.Context, tx pgx.Tx, id string) error {
	const query = `
        UPDATE payments SET status='cancelled', cancelled_at=NOW(), updated_at=NOW()
        WHERE id=$1`
	cmd, err := tx.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(
		&p.ID,
		&p.CaseID,
		&p.Amount,
		&p.Method,
		&p.Date,
		&p.Status,
		&p.Note,
		&p.Metadata,
		&p.CreatedBy,
		&p.CancelledAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
