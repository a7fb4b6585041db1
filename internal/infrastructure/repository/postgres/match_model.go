package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type matchTableModel struct {
	ID          int64          `db:"id"`
	PublicID    string         `db:"public_id"`
	HomeSide    string         `db:"home_side"`
	AwaySide    string         `db:"away_side"`
	Format      string         `db:"format"`
	ScheduledAt time.Time      `db:"scheduled_at"`
	Status      string         `db:"status"`
	Result      sql.NullString `db:"result"`
	PlayerIDs   pq.StringArray `db:"player_public_ids"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	DeletedAt   *time.Time     `db:"deleted_at"`
}

type matchInsertModel struct {
	PublicID    string         `db:"public_id"`
	HomeSide    string         `db:"home_side"`
	AwaySide    string         `db:"away_side"`
	Format      string         `db:"format"`
	ScheduledAt time.Time      `db:"scheduled_at"`
	Status      string         `db:"status"`
	Result      *string        `db:"result"`
	PlayerIDs   pq.StringArray `db:"player_public_ids"`
}
