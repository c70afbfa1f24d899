package submission

import "context"

type Repository interface {
	Get(ctx context.Context, userID string, round int) (Submission, bool, error)
	// Upsert is idempotent by (user, round): concurrent devices submitting the
	// same round never create duplicate rows.
	Upsert(ctx context.Context, item Submission) error
	// Delete revokes a submission found inconsistent with the current fixture
	// set. Deleting a missing submission is a no-op.
	Delete(ctx context.Context, userID string, round int) error
	ListByRound(ctx context.Context, round int) ([]Submission, error)
}
