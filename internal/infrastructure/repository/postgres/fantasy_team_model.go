package postgres

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type fantasyTeamTableModel struct {
	ID            int64           `db:"id"`
	PublicID      string          `db:"public_id"`
	ContestID     string          `db:"contest_public_id"`
	UserID        string          `db:"user_id"`
	DisplayName   string          `db:"display_name"`
	PlayerIDs     pq.StringArray  `db:"player_public_ids"`
	CaptainID     string          `db:"captain_public_id"`
	ViceCaptainID string          `db:"vice_captain_public_id"`
	TotalPoints   decimal.Decimal `db:"total_points"`
	Rank          int             `db:"rank"`
	SubmittedAt   time.Time       `db:"submitted_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	DeletedAt     *time.Time      `db:"deleted_at"`
}

type fantasyTeamInsertModel struct {
	PublicID      string          `db:"public_id"`
	ContestID     string          `db:"contest_public_id"`
	UserID        string          `db:"user_id"`
	DisplayName   string          `db:"display_name"`
	PlayerIDs     pq.StringArray  `db:"player_public_ids"`
	CaptainID     string          `db:"captain_public_id"`
	ViceCaptainID string          `db:"vice_captain_public_id"`
	TotalPoints   decimal.Decimal `db:"total_points"`
	SubmittedAt   time.Time       `db:"submitted_at"`
}
