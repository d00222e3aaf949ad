package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediflow/collections-service/internal/domain"
)

// CancellationFilter captures cancellation listing parameters.
type CancellationFilter struct {
	CaseID    *string
	PaymentID *string
	CreatedBy *string
	Limit     int
}

// CancellationRepository persists the append-only reversal records.
type CancellationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Cancellation, error)
	List(ctx context.Context, filter CancellationFilter) ([]domain.Cancellation, error)

	CreateTx(ctx context.Context, tx pgx.Tx, c *domain.Cancellation) error
}

type cancellationRepository struct {
	pool *pgxpool.Pool
}

// NewCancellationRepository instantiates the repository.
func NewCancellationRepository(pool *pgxpool.Pool) CancellationRepository {
	return &cancellationRepository{pool: pool}
}

const cancellationColumns = `id, payment_id, case_id, amount, reason, created_by, created_at`

func (r *cancellationRepository) GetByID(ctx context.Context, id string) (*domain.Cancellation, error) {
	query := `SELECT ` + cancellationColumns + ` FROM cancellations WHERE id=$1`
	return scanCancellation(r.pool.QueryRow(ctx, query, id))
}

func (r *cancellationRepository) List(ctx context.Context, filter CancellationFilter) ([]domain.Cancellation, error) {
	query := `SELECT ` + cancellationColumns + ` FROM cancellations WHERE 1=1`
	args := []any{}
	if filter.CaseID != nil {
		args = append(args, *filter.CaseID)
		query += placeholderClause(` AND case_id=`, len(args))
	}
	if filter.PaymentID != nil {
		args = append(args, *filter.PaymentID)
		query += placeholderClause(` AND payment_id=`, len(args))
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

	var result []domain.Cancellation
	for rows.Next() {
		c, err := scanCancellation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *cancellationRepository) CreateTx(ctx context.Context, tx pgx.Tx, c *domain.Cancellation) error {
	const query = `
        INSERT INTO cancellations (payment_id, case_id, amount, reason, created_by)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	return tx.QueryRow(ctx, query,
		c.PaymentID,
		c.CaseID,
		c.Amount,
		c.Reason,
		c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt)
}

func scanCancellation(row pgx.Row) (*domain.Cancellation, error) {
	var c domain.Cancellation
	if err := row.Scan(
		&c.ID,
		&c.PaymentID,
		&c.CaseID,
		&c.Amount,
		&c.Reason,
		&c.CreatedBy,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
