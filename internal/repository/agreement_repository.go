package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediflow/collections-service/internal/domain"
)

// AgreementFilter captures agreement listing parameters.
type AgreementFilter struct {
	CaseID *string
	Status *domain.AgreementStatus
	Limit  int
}

// AgreementPatch carries the mutable fields of an agreement. Amount,
// start date and installments are write-once and deliberately absent.
type AgreementPatch struct {
	Status *domain.AgreementStatus
	Terms  map[string]any
}

// AgreementRepository encapsulates agreement persistence.
type AgreementRepository interface {
	Create(ctx context.Context, a *domain.Agreement) error
	GetByID(ctx context.Context, id string) (*domain.Agreement, error)
	List(ctx context.Context, filter AgreementFilter) ([]domain.Agreement, error)
	Patch(ctx context.Context, id string, patch AgreementPatch) (*domain.Agreement, error)
}

type agreementRepository struct {
	pool *pgxpool.Pool
}

// NewAgreementRepository instantiates the repository.
func NewAgreementRepository(pool *pgxpool.Pool) AgreementRepository {
	return &agreementRepository{pool: pool}
}

const agreementColumns = `id, case_id, amount, start_date, installments, status, terms, created_by, cancelled_at, completed_at, created_at, updated_at`

func (r *agreementRepository) Create(ctx context.Context, a *domain.Agreement) error {
	const query = `
        INSERT INTO agreements (case_id, amount, start_date, installments, status, terms, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`
	terms := a.Terms
	if terms == nil {
		terms = map[string]any{}
	}
	return r.pool.QueryRow(ctx, query,
		a.CaseID,
		a.Amount,
		a.StartDate,
		a.Installments,
		a.Status,
		terms,
		a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *agreementRepository) GetByID(ctx context.Context, id string) (*domain.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements WHERE id=$1`
	return scanAgreement(r.pool.QueryRow(ctx, query, id))
}

func (r *agreementRepository) List(ctx context.Context, filter AgreementFilter) ([]domain.Agreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM agreements WHERE 1=1`
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

	var result []domain.Agreement
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *agreementRepository) Patch(ctx context.Context, id string, patch AgreementPatch) (*domain.Agreement, error) {
	query := `UPDATE agreements SET updated_at=NOW()`
	args := []any{}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		query += placeholderClause(`, status=`, len(args))
		switch *patch.Status {
		case domain.AgreementStatusCancelled:
			query += `, cancelled_at=NOW()`
		case domain.AgreementStatusCompleted:
			query += `, completed_at=NOW()`
		}
	}
	if patch.Terms != nil {
		args = append(args, patch.Terms)
		query += placeholderClause(`, terms=`, len(args))
	}
	args = append(args, id)
	query += placeholderClause(` WHERE id=`, len(args))
	query += ` RETURNING ` + agreementColumns

	return scanAgreement(r.pool.QueryRow(ctx, query, args...))
}

func scanAgreement(row pgx.Row) (*domain.Agreement, error) {
	var a domain.Agreement
	if err := row.Scan(
		&a.ID,
		&a.CaseID,
		&a.Amount,
		&a.StartDate,
		&a.Installments,
		&a.Status,
		&a.Terms,
		&a.CreatedBy,
		&a.CancelledAt,
		&a.CompletedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
