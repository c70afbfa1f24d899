package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ferguskeenan/prediction-league/internal/domain/result"
	qb "github.com/ferguskeenan/prediction-league/internal/platform/querybuilder"
)

type ResultRepository struct {
	db *sqlx.DB
}

func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Upsert writes a final result. Results are feed-owned and write-once, so a
// conflict keeps the first recorded row.
func (r *ResultRepository) Upsert(ctx context.Context, item result.Result) error {
	var code *string
	if item.Code != "" {
		code = optionalString(item.Code)
	}
	insertModel := resultInsertModel{
		Round:        item.Round,
		FixtureIndex: item.FixtureIndex,
		Code:         code,
		HomeGoals:    item.HomeGoals,
		AwayGoals:    item.AwayGoals,
		RecordedAt:   item.RecordedAt,
	}

	query, args, err := qb.InsertModel("results", insertModel,
		`ON CONFLICT (round, fixture_index) WHERE deleted_at IS NULL DO NOTHING`)
	if err != nil {
		return fmt.Errorf("build upsert result query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

func (r *ResultRepository) ListByRound(ctx context.Context, round int) ([]result.Result, error) {
	query, args, err := qb.Select("*").From("results").
		Where(
			qb.Eq("round", round),
			qb.IsNull("deleted_at"),
		).
		OrderBy("fixture_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select results by round query: %w", err)
	}

	var rows []resultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select results by round: %w", err)
	}

	out := make([]result.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, resultFromRow(row))
	}
	return out, nil
}

func resultFromRow(row resultTableModel) result.Result {
	return result.Result{
		Round:        row.Round,
		FixtureIndex: row.FixtureIndex,
		Code:         row.Code.String,
		HomeGoals:    nullInt64ToIntPtr(row.HomeGoals),
		AwayGoals:    nullInt64ToIntPtr(row.AwayGoals),
		RecordedAt:   row.RecordedAt,
	}
}
