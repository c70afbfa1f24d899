package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	qb "github.com/ferguskeenan/prediction-league/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) ListByRound(ctx context.Context, round int) ([]fixture.Fixture, error) {
	query, args, err := qb.Select("*").From("fixtures").
		Where(
			qb.Eq("round", round),
			qb.IsNull("deleted_at"),
		).
		OrderBy("fixture_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures by round query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures by round: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixtureFromRow(row))
	}
	return out, nil
}

func (r *FixtureRepository) ListRounds(ctx context.Context) ([]int, error) {
	query, args, err := qb.Select("round").From("fixtures").
		Where(qb.IsNull("deleted_at")).
		GroupBy("round").
		OrderBy("round").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select rounds query: %w", err)
	}

	var rounds []int
	if err := r.db.SelectContext(ctx, &rounds, query, args...); err != nil {
		return nil, fmt.Errorf("select rounds: %w", err)
	}
	return rounds, nil
}

// UpsertFixtures stores an admin import, idempotent by (round, fixture_index).
func (r *FixtureRepository) UpsertFixtures(ctx context.Context, items []fixture.Fixture) error {
	for _, item := range items {
		insertModel := fixtureInsertModel{
			Round:        item.Round,
			FixtureIndex: item.Index,
			HomeTeam:     item.HomeTeam,
			AwayTeam:     item.AwayTeam,
			KickoffAt:    optionalTime(item.KickoffAt),
			MatchRefID:   optionalInt64(item.MatchRefID),
		}

		query, args, err := qb.InsertModel("fixtures", insertModel, `ON CONFLICT (round, fixture_index) WHERE deleted_at IS NULL
DO UPDATE SET
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    kickoff_at = EXCLUDED.kickoff_at,
    match_ref_id = EXCLUDED.match_ref_id,
    deleted_at = NULL`)
		if err != nil {
			return fmt.Errorf("build upsert fixture query: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert fixture round=%d index=%d: %w", item.Round, item.Index, err)
		}
	}
	return nil
}

func fixtureFromRow(row fixtureTableModel) fixture.Fixture {
	return fixture.Fixture{
		Round:      row.Round,
		Index:      row.FixtureIndex,
		HomeTeam:   row.HomeTeam,
		AwayTeam:   row.AwayTeam,
		KickoffAt:  nullTimeToTime(row.KickoffAt),
		MatchRefID: nullInt64ToInt64(row.MatchRefID),
	}
}
