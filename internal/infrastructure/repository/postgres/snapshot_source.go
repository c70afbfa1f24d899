package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ferguskeenan/prediction-league/internal/domain/fixture"
	"github.com/ferguskeenan/prediction-league/internal/domain/pick"
	"github.com/ferguskeenan/prediction-league/internal/domain/result"
	"github.com/ferguskeenan/prediction-league/internal/domain/scoring"
	"github.com/ferguskeenan/prediction-league/internal/domain/submission"
	qb "github.com/ferguskeenan/prediction-league/internal/platform/querybuilder"
)

// SnapshotSource reads every scoring input inside one read-only transaction.
// Mixing a fresh pick set with a stale result set skews rankings, so the four
// tables must come from the same point in time.
type SnapshotSource struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSnapshotSource(db *sqlx.DB) *SnapshotSource {
	return &SnapshotSource{db: db, now: time.Now}
}

func (s *SnapshotSource) Load(ctx context.Context) (*scoring.Snapshot, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	snap := &scoring.Snapshot{
		Fixtures:    make(map[int][]fixture.Fixture),
		Results:     make(map[int][]result.Result),
		Picks:       make(map[int][]pick.Pick),
		Submissions: make(map[int][]submission.Submission),
		TakenAt:     s.now().UTC(),
	}

	if err := s.loadFixtures(ctx, tx, snap); err != nil {
		return nil, err
	}
	if err := s.loadResults(ctx, tx, snap); err != nil {
		return nil, err
	}
	if err := s.loadPicks(ctx, tx, snap); err != nil {
		return nil, err
	}
	if err := s.loadSubmissions(ctx, tx, snap); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit snapshot tx: %w", err)
	}
	return snap, nil
}

func (s *SnapshotSource) loadFixtures(ctx context.Context, tx *sqlx.Tx, snap *scoring.Snapshot) error {
	query, args, err := qb.Select("*").From("fixtures").
		Where(qb.IsNull("deleted_at")).
		OrderBy("round", "fixture_index").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build snapshot fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("select snapshot fixtures: %w", err)
	}
	for _, row := range rows {
		item := fixtureFromRow(row)
		snap.Fixtures[item.Round] = append(snap.Fixtures[item.Round], item)
	}
	return nil
}

func (s *SnapshotSource) loadResults(ctx context.Context, tx *sqlx.Tx, snap *scoring.Snapshot) error {
	query, args, err := qb.Select("*").From("results").
		Where(qb.IsNull("deleted_at")).
		OrderBy("round", "fixture_index").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build snapshot results query: %w", err)
	}

	var rows []resultTableModel
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("select snapshot results: %w", err)
	}
	for _, row := range rows {
		item := resultFromRow(row)
		snap.Results[item.Round] = append(snap.Results[item.Round], item)
	}
	return nil
}

func (s *SnapshotSource) loadPicks(ctx context.Context, tx *sqlx.Tx, snap *scoring.Snapshot) error {
	query, args, err := qb.Select("*").From("picks").
		Where(qb.IsNull("deleted_at")).
		OrderBy("round", "user_id", "fixture_index").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build snapshot picks query: %w", err)
	}

	var rows []pickTableModel
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("select snapshot picks: %w", err)
	}
	for _, item := range picksFromRows(rows) {
		snap.Picks[item.Round] = append(snap.Picks[item.Round], item)
	}
	return nil
}

func (s *SnapshotSource) loadSubmissions(ctx context.Context, tx *sqlx.Tx, snap *scoring.Snapshot) error {
	query, args, err := qb.Select("*").From("submissions").
		Where(qb.IsNull("deleted_at")).
		OrderBy("round", "user_id").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build snapshot submissions query: %w", err)
	}

	var rows []submissionTableModel
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("select snapshot submissions: %w", err)
	}
	for _, row := range rows {
		item := submissionFromRow(row)
		snap.Submissions[item.Round] = append(snap.Submissions[item.Round], item)
	}
	return nil
}
