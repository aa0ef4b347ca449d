package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	// Active package snapshot
	PackageID          *int64     `db:"package_id" json:"package_id,omitempty"`
	PackageActivatedAt *time.Time `db:"package_activated_at" json:"package_activated_at,omitempty"`
	LevelRank          int        `db:"level_rank" json:"level_rank"`
	LevelName          string     `db:"level_name" json:"level_name"`

	Wallet   Wallet      `json:"wallet"`
	Referral Referral    `json:"referral"`
	Tasks    DailyTasks  `json:"tasks"`
	Cheat    CheatRecord `json:"cheat"`
}

// Wallet holds the account's balance state. Balance never goes below zero and
// TotalEarned only grows.
type Wallet struct {
	Balance        decimal.Decimal `db:"balance" json:"balance"`
	TotalEarned    decimal.Decimal `db:"total_earned" json:"total_earned"`
	TotalWithdrawn decimal.Decimal `db:"total_withdrawn" json:"total_withdrawn"`
}

type Referral struct {
	Code            string          `db:"referral_code" json:"code,omitempty"`
	ReferredBy      *int64          `db:"referred_by" json:"referred_by,omitempty"`
	Approved        bool            `db:"referral_approved" json:"approved"`
	Blocked         bool            `db:"referral_blocked" json:"blocked"`
	Count           int             `db:"referral_count" json:"count"`
	TotalCommission decimal.Decimal `db:"referral_total_commission" json:"total_commission"`
}

// Eligible reports whether commissions may be paid to this upline and whether
// the chain may continue past it.
func (r Referral) Eligible() bool {
	return r.Approved && !r.Blocked
}

type DailyTasks struct {
	CompletedToday   int        `db:"completed_today" json:"completed_today"`
	CompletedTaskIDs []int64    `db:"completed_task_ids" json:"completed_task_ids"`
	LastResetAt      *time.Time `db:"last_reset_at" json:"last_reset_at,omitempty"`
}

// CompletedTask reports whether the task was already completed since the last
// daily reset.
func (d DailyTasks) CompletedTask(taskID int64) bool {
	for _, id := range d.CompletedTaskIDs {
		if id == taskID {
			return true
		}
	}
	return false
}

// NeedsReset reports whether the counters belong to a previous day and should
// be lazily zeroed before use.
func (d DailyTasks) NeedsReset(now time.Time) bool {
	if d.LastResetAt == nil {
		return true
	}
	y1, m1, d1 := d.LastResetAt.Date()
	y2, m2, d2 := now.Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}

type CheatRecord struct {
	Strikes      int        `db:"strikes" json:"strikes"`
	LastStrikeAt *time.Time `db:"last_strike_at" json:"last_strike_at,omitempty"`
	BlockedUntil *time.Time `db:"blocked_until" json:"blocked_until,omitempty"`
}

// Blocked reports whether the account is inside an active cheat block.
func (c CheatRecord) Blocked(now time.Time) bool {
	return c.BlockedUntil != nil && c.BlockedUntil.After(now)
}
