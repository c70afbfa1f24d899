package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ferguskeenan/prediction-league/internal/domain/submission"
	qb "github.com/ferguskeenan/prediction-league/internal/platform/querybuilder"
)

type SubmissionRepository struct {
	db *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func (r *SubmissionRepository) Get(ctx context.Context, userID string, round int) (submission.Submission, bool, error) {
	query, args, err := qb.Select("*").From("submissions").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("round", round),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return submission.Submission{}, false, fmt.Errorf("build get submission query: %w", err)
	}

	var row submissionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return submission.Submission{}, false, nil
		}
		return submission.Submission{}, false, fmt.Errorf("get submission: %w", err)
	}
	return submissionFromRow(row), true, nil
}

func (r *SubmissionRepository) Upsert(ctx context.Context, item submission.Submission) error {
	insertModel := submissionInsertModel{
		UserID:      item.UserID,
		Round:       item.Round,
		SubmittedAt: item.SubmittedAt,
	}

	query, args, err := qb.InsertModel("submissions", insertModel, `ON CONFLICT (user_id, round) WHERE deleted_at IS NULL
DO UPDATE SET
    submitted_at = EXCLUDED.submitted_at,
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert submission query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) Delete(ctx context.Context, userID string, round int) error {
	query, args, err := qb.Update("submissions").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("round", round),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete submission query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) ListByRound(ctx context.Context, round int) ([]submission.Submission, error) {
	query, args, err := qb.Select("*").From("submissions").
		Where(
			qb.Eq("round", round),
			qb.IsNull("deleted_at"),
		).
		OrderBy("user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select submissions by round query: %w", err)
	}

	var rows []submissionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select submissions by round: %w", err)
	}

	out := make([]submission.Submission, 0, len(rows))
	for _, row := range rows {
		out = append(out, submissionFromRow(row))
	}
	return out, nil
}

func submissionFromRow(row submissionTableModel) submission.Submission {
	return submission.Submission{
		UserID:      row.UserID,
		Round:       row.Round,
		SubmittedAt: row.SubmittedAt,
	}
}
