package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ferguskeenan/prediction-league/internal/domain/league"
	qb "github.com/ferguskeenan/prediction-league/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

// Create inserts the league and its owner membership in one transaction.
func (r *LeagueRepository) Create(ctx context.Context, item league.League, owner league.Member) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create league tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	leagueModel := leagueInsertModel{
		PublicID:           item.ID,
		Name:               item.Name,
		OwnerUserID:        item.OwnerUserID,
		InviteCode:         item.InviteCode,
		StartRoundOverride: item.StartRoundOverride,
		CreatedAt:          item.CreatedAt,
	}
	query, args, err := qb.InsertModel("leagues", leagueModel, "")
	if err != nil {
		return fmt.Errorf("build insert league query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert league: %w", err)
	}

	memberModel := leagueMemberInsertModel{
		LeaguePublicID: owner.LeagueID,
		UserID:         owner.UserID,
		JoinedAt:       owner.JoinedAt,
	}
	query, args, err = qb.InsertModel("league_members", memberModel,
		`ON CONFLICT (league_public_id, user_id) WHERE deleted_at IS NULL DO NOTHING`)
	if err != nil {
		return fmt.Errorf("build insert owner membership query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create league tx: %w", err)
	}
	return nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("public_id", leagueID))
}

func (r *LeagueRepository) GetByInviteCode(ctx context.Context, inviteCode string) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("invite_code", inviteCode))
}

func (r *LeagueRepository) getOne(ctx context.Context, cond qb.Condition) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(cond, qb.IsNull("deleted_at")).
		Limit(1).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}
	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) ListByUser(ctx context.Context, userID string) ([]league.League, error) {
	query, args, err := qb.Select("l.*").From("leagues l").
		Where(
			qb.Expr("l.public_id IN (SELECT league_public_id FROM league_members WHERE user_id = ? AND deleted_at IS NULL)", userID),
			qb.IsNull("l.deleted_at"),
		).
		OrderBy("l.created_at", "l.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select leagues by user query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues by user: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}
	return out, nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.Member, error) {
	query, args, err := qb.Select("*").From("league_members").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("joined_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select members query: %w", err)
	}

	var rows []leagueMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select members: %w", err)
	}

	out := make([]league.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.Member{
			LeagueID: row.LeaguePublicID,
			UserID:   row.UserID,
			JoinedAt: row.JoinedAt,
		})
	}
	return out, nil
}

func (r *LeagueRepository) AddMember(ctx context.Context, member league.Member) error {
	insertModel := leagueMemberInsertModel{
		LeaguePublicID: member.LeagueID,
		UserID:         member.UserID,
		JoinedAt:       member.JoinedAt,
	}

	query, args, err := qb.InsertModel("league_members", insertModel,
		`ON CONFLICT (league_public_id, user_id) WHERE deleted_at IS NULL DO NOTHING`)
	if err != nil {
		return fmt.Errorf("build insert membership query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (r *LeagueRepository) IsMember(ctx context.Context, leagueID, userID string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("league_members").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build membership check query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return count > 0, nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:                 row.PublicID,
		Name:               row.Name,
		OwnerUserID:        row.OwnerUserID,
		InviteCode:         row.InviteCode,
		CreatedAt:          row.CreatedAt,
		StartRoundOverride: nullInt64ToIntPtr(row.StartRoundOverride),
	}
}
