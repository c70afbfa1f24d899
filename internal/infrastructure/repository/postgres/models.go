package postgres

import (
	"database/sql"
	"time"
)

type fixtureTableModel struct {
	ID           int64         `db:"id"`
	Round        int           `db:"round"`
	FixtureIndex int           `db:"fixture_index"`
	HomeTeam     string        `db:"home_team"`
	AwayTeam     string        `db:"away_team"`
	KickoffAt    sql.NullTime  `db:"kickoff_at"`
	MatchRefID   sql.NullInt64 `db:"match_ref_id"`
	CreatedAt    time.Time     `db:"created_at"`
	DeletedAt    sql.NullTime  `db:"deleted_at"`
}

type fixtureInsertModel struct {
	Round        int        `db:"round"`
	FixtureIndex int        `db:"fixture_index"`
	HomeTeam     string     `db:"home_team"`
	AwayTeam     string     `db:"away_team"`
	KickoffAt    *time.Time `db:"kickoff_at"`
	MatchRefID   *int64     `db:"match_ref_id"`
}

type pickTableModel struct {
	ID           int64        `db:"id"`
	UserID       string       `db:"user_id"`
	Round        int          `db:"round"`
	FixtureIndex int          `db:"fixture_index"`
	Outcome      string       `db:"outcome"`
	UpdatedAt    time.Time    `db:"updated_at"`
	DeletedAt    sql.NullTime `db:"deleted_at"`
}

type pickInsertModel struct {
	UserID       string    `db:"user_id"`
	Round        int       `db:"round"`
	FixtureIndex int       `db:"fixture_index"`
	Outcome      string    `db:"outcome"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type resultTableModel struct {
	ID           int64          `db:"id"`
	Round        int            `db:"round"`
	FixtureIndex int            `db:"fixture_index"`
	Code         sql.NullString `db:"code"`
	HomeGoals    sql.NullInt64  `db:"home_goals"`
	AwayGoals    sql.NullInt64  `db:"away_goals"`
	RecordedAt   time.Time      `db:"recorded_at"`
	DeletedAt    sql.NullTime   `db:"deleted_at"`
}

type resultInsertModel struct {
	Round        int       `db:"round"`
	FixtureIndex int       `db:"fixture_index"`
	Code         *string   `db:"code"`
	HomeGoals    *int      `db:"home_goals"`
	AwayGoals    *int      `db:"away_goals"`
	RecordedAt   time.Time `db:"recorded_at"`
}

type submissionTableModel struct {
	ID          int64        `db:"id"`
	UserID      string       `db:"user_id"`
	Round       int          `db:"round"`
	SubmittedAt time.Time    `db:"submitted_at"`
	DeletedAt   sql.NullTime `db:"deleted_at"`
}

type submissionInsertModel struct {
	UserID      string    `db:"user_id"`
	Round       int       `db:"round"`
	SubmittedAt time.Time `db:"submitted_at"`
}

type leagueTableModel struct {
	ID                 int64         `db:"id"`
	PublicID           string        `db:"public_id"`
	Name               string        `db:"name"`
	OwnerUserID        string        `db:"owner_user_id"`
	InviteCode         string        `db:"invite_code"`
	StartRoundOverride sql.NullInt64 `db:"start_round_override"`
	CreatedAt          time.Time     `db:"created_at"`
	DeletedAt          sql.NullTime  `db:"deleted_at"`
}

type leagueInsertModel struct {
	PublicID           string    `db:"public_id"`
	Name               string    `db:"name"`
	OwnerUserID        string    `db:"owner_user_id"`
	InviteCode         string    `db:"invite_code"`
	StartRoundOverride *int      `db:"start_round_override"`
	CreatedAt          time.Time `db:"created_at"`
}

type leagueMemberTableModel struct {
	ID             int64        `db:"id"`
	LeaguePublicID string       `db:"league_public_id"`
	UserID         string       `db:"user_id"`
	JoinedAt       time.Time    `db:"joined_at"`
	DeletedAt      sql.NullTime `db:"deleted_at"`
}

type leagueMemberInsertModel struct {
	LeaguePublicID string    `db:"league_public_id"`
	UserID         string    `db:"user_id"`
	JoinedAt       time.Time `db:"joined_at"`
}

type userProfileTableModel struct {
	ID          int64        `db:"id"`
	UserID      string       `db:"user_id"`
	DisplayName string       `db:"display_name"`
	UpdatedAt   time.Time    `db:"updated_at"`
	DeletedAt   sql.NullTime `db:"deleted_at"`
}

type userProfileInsertModel struct {
	UserID      string `db:"user_id"`
	DisplayName string `db:"display_name"`
}
