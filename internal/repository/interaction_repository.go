package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crediflow/collections-service/internal/domain"
)

// InteractionRepository appends and lists workflow log entries. Interactions
// are never updated or deleted.
type InteractionRepository interface {
	Create(ctx context.Context, in *domain.Interaction) error
	ListByCase(ctx context.Context, caseID string, limit int) ([]domain.Interaction, error)
}

type interactionRepository struct {
	pool *pgxpool.Pool
}

// NewInteractionRepository instantiates the repository.
func NewInteractionRepository(pool *pgxpool.Pool) InteractionRepository {
	return &interactionRepository{pool: pool}
}

const interactionColumns = `id, case_id, actor_id, ts, from_state, result, concept, fields, last_promise_concept, transition_info, suggested_next_state, supervisor_required, actions, notes`

func (r *interactionRepository) Create(ctx context.Context, in *domain.Interaction) error {
	const query = `
        INSERT INTO interactions (case_id, actor_id, from_state, result, concept, fields, last_promise_concept, transition_info, suggested_next_state, supervisor_required, actions, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, ts`
	fields := in.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	actions := in.Actions
	if actions == nil {
		actions = []domain.Action{}
	}
	notes := in.Notes
	if notes == nil {
		notes = []string{}
	}
	return r.pool.QueryRow(ctx, query,
		in.CaseID,
		in.ActorID,
		in.FromState,
		in.Result,
		in.Concept,
		fields,
		in.LastPromiseConcept,
		in.TransitionInfo,
		in.SuggestedNextState,
		in.SupervisorRequired,
		actions,
		notes,
	).Scan(&in.ID, &in.TS)
}

// ListByCase returns up to limit interactions for a case, unordered; callers
// sort by ts in memory (where-only query, no composite index required).
func (r *interactionRepository) ListByCase(ctx context.Context, caseID string, limit int) ([]domain.Interaction, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	query := `SELECT ` + interactionColumns + ` FROM interactions WHERE case_id=$1 LIMIT $2`

	rows, err := r.pool.Query(ctx, query, caseID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Interaction
	for rows.Next() {
		in, err := scanInteraction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *in)
	}
	return result, rows.Err()
}

func scanInteraction(row pgx.Row) (*domain.Interaction, error) {
	var in domain.Interaction
	if err := row.Scan(
		&in.ID,
		&in.CaseID,
		&in.ActorID,
		&in.TS,
		&in.FromState,
		&in.Result,
		&in.Concept,
		&in.Fields,
		&in.LastPromiseConcept,
		&in.TransitionInfo,
		&in.SuggestedNextState,
		&in.SupervisorRequired,
		&in.Actions,
		&in.Notes,
	); err != nil {
		return nil, err
	}
	return &in, nil
}
