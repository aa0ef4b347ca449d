package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Package is a paid tier. Price and levelRank are snapshotted into purchase
// and commission records; editing a package never rewrites history.
type Package struct {
	ID            int64           `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Price         decimal.Decimal `db:"price" json:"price"`
	LevelRank     int             `db:"level_rank" json:"level_rank"`
	MaxDailyTasks int             `db:"max_daily_tasks" json:"max_daily_tasks"`
	DurationDays  int             `db:"duration_days" json:"duration_days"`
	Category      string          `db:"category" json:"category"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// Purchase records one package activation; its id keys the commission fan-out
// for that purchase.
type Purchase struct {
	ID        int64           `db:"id" json:"id"`
	AccountID int64           `db:"account_id" json:"account_id"`
	PackageID int64           `db:"package_id" json:"package_id"`
	Price     decimal.Decimal `db:"price" json:"price"`
	LevelRank int             `db:"level_rank" json:"level_rank"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
