package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediflow/collections-service/internal/domain"
)

// CaseFilter captures case listing parameters.
type CaseFilter struct {
	AssignedTo *string
	Status     *domain.CaseStatus
	Limit      int
}

// CaseRepository encapsulates case persistence. The tx-scoped methods run
// inside a ledger transaction and lock the case row for the duration.
type CaseRepository interface {
	Create(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	List(ctx context.Context, filter CaseFilter) ([]domain.Case, error)
	Update(ctx context.Context, c *domain.Case) error
	UpdateState(ctx context.Context, id, state string) error

	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Case, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id string, balance float64) error
}

type caseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseRepository instantiates the repository.
func NewCaseRepository(pool *pgxpool.Pool) CaseRepository {
	return &caseRepository{pool: pool}
}

const caseColumns = `id, debtor_name, state, assigned_to, balance, status, created_at, updated_at`

func (r *caseRepository) Create(ctx context.Context, c *domain.Case) error {
	const query = `
        INSERT INTO cases (debtor_name, state, assigned_to, balance, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		c.DebtorName,
		c.State,
		c.AssignedTo,
		c.Balance,
		c.Status,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id=$1`
	return scanCase(r.pool.QueryRow(ctx, query, id))
}

func (r *caseRepository) List(ctx context.Context, filter CaseFilter) ([]domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE 1=1`
	args := []any{}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		query += ` AND assigned_to=$1`
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

	var result []domain.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *caseRepository) Update(ctx context.Context, c *domain.Case) error {
	const query = `
        UPDATE cases SET debtor_name=$1, state=$2, assigned_to=$3, status=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		c.DebtorName,
		c.State,
		c.AssignedTo,
		c.Status,
		c.ID,
	).Scan(&c.UpdatedAt)
}

func (r *caseRepository) UpdateState(ctx context.Context, id, state string) error {
	const query = `UPDATE cases SET state=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, state, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *caseRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id=$1 FOR UPDATE`
	return scanCase(tx.QueryRow(ctx, query, id))
}

func (r *caseRepository) UpdateBalance(ctx context.Context, tx pgx.Tx, id string, balance float64) error {
	const query = `UPDATE cases SET balance=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := tx.Exec(ctx, query, balance, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanCase(row pgx.Row) (*domain.Case, error) {
	var c domain.Case
	if err := row.Scan(
		&c.ID,
		&c.DebtorName,
		&c.State,
		&c.AssignedTo,
		&c.Balance,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
