package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediflow/collections-service/internal/domain"
)

// AuditFilter captures audit-log listing parameters.
type AuditFilter struct {
	Entity   *string
	EntityID *string
	Limit    int
}

// AuditRepository persists best-effort audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, filter AuditFilter) ([]domain.AuditLog, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository instantiates the repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

const auditColumns = `id, entity, entity_id, action, by_uid, diff, meta, at`

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (entity, entity_id, action, by_uid, diff, meta)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, at`
	return r.pool.QueryRow(ctx, query,
		entry.Entity,
		entry.EntityID,
		entry.Action,
		entry.By,
		entry.Diff,
		entry.Meta,
	).Scan(&entry.ID, &entry.At)
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]domain.AuditLog, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE 1=1`
	args := []any{}
	if filter.Entity != nil {
		args = append(args, *filter.Entity)
		query += placeholderClause(` AND entity=`, len(args))
	}
	if filter.EntityID != nil {
		args = append(args, *filter.EntityID)
		query += placeholderClause(` AND entity_id=`, len(args))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 30
	}
	args = append(args, limit)
	query += placeholderClause(` LIMIT `, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLog
	for rows.Next() {
		entry, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func scanAudit(row pgx.Row) (*domain.AuditLog, error) {
	var entry domain.AuditLog
	if err := row.Scan(
		&entry.ID,
		&entry.Entity,
		&entry.EntityID,
		&entry.Action,
		&entry.By,
		&entry.Diff,
		&entry.Meta,
		&entry.At,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}
