package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ferguskeenan/prediction-league/internal/domain/outcome"
	"github.com/ferguskeenan/prediction-league/internal/domain/pick"
	qb "github.com/ferguskeenan/prediction-league/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) Upsert(ctx context.Context, item pick.Pick) error {
	insertModel := pickInsertModel{
		UserID:       item.UserID,
		Round:        item.Round,
		FixtureIndex: item.FixtureIndex,
		Outcome:      string(item.Outcome),
		UpdatedAt:    item.UpdatedAt,
	}

	query, args, err := qb.InsertModel("picks", insertModel, `ON CONFLICT (user_id, round, fixture_index) WHERE deleted_at IS NULL
DO UPDATE SET
    outcome = EXCLUDED.outcome,
    updated_at = EXCLUDED.updated_at,
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert pick query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert pick: %w", err)
	}
	return nil
}

func (r *PickRepository) ListByUserAndRound(ctx context.Context, userID string, round int) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("round", round),
			qb.IsNull("deleted_at"),
		).
		OrderBy("fixture_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picks by user and round query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks by user and round: %w", err)
	}
	return picksFromRows(rows), nil
}

func (r *PickRepository) ListByRound(ctx context.Context, round int) ([]pick.Pick, error) {
	query, args, err := qb.Select("*").From("picks").
		Where(
			qb.Eq("round", round),
			qb.IsNull("deleted_at"),
		).
		OrderBy("user_id", "fixture_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select picks by round query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select picks by round: %w", err)
	}
	return picksFromRows(rows), nil
}

func picksFromRows(rows []pickTableModel) []pick.Pick {
	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pick.Pick{
			UserID:       row.UserID,
			Round:        row.Round,
			FixtureIndex: row.FixtureIndex,
			Outcome:      outcome.Outcome(row.Outcome),
			UpdatedAt:    row.UpdatedAt,
		})
	}
	return out
}
