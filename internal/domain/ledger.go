package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeKind classifies a ledger credit
type IncomeKind string

const (
	IncomeTaskReward        IncomeKind = "task_reward"
	IncomeTaskCommission    IncomeKind = "referral_task_commission"
	IncomePackageCommission IncomeKind = "referral_package_commission"
	IncomeDepositCommission IncomeKind = "referral_deposit_commission"
)

// IncomeEntry is one append-only wallet credit. The tuple
// (account_id, event_id, kind, level) is unique in storage; that constraint,
// not application logic, is what makes retried triggers pay at most once.
// Level 0 means "no referral level" (a direct task reward) — stored as 0
// rather than NULL so the uniqueness key always bites.
type IncomeEntry struct {
	ID              int64           `db:"id" json:"id"`
	AccountID       int64           `db:"account_id" json:"account_id"`
	SourceAccountID int64           `db:"source_account_id" json:"source_account_id"`
	EventID         string          `db:"event_id" json:"event_id"`
	Kind            IncomeKind      `db:"kind" json:"kind"`
	Level           int             `db:"level" json:"level,omitempty"`
	BaseAmount      decimal.Decimal `db:"base_amount" json:"base_amount"`
	Percent         decimal.Decimal `db:"percent" json:"percent"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	TaskID          *int64          `db:"task_id" json:"task_id,omitempty"`
	PackageID       *int64          `db:"package_id" json:"package_id,omitempty"`
	Note            string          `db:"note" json:"note,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// CommissionAmount computes a credit amount from a base and a percentage,
// rounded to 2 decimals independently of every other level's rounding.
func CommissionAmount(base, percent decimal.Decimal) decimal.Decimal {
	return base.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
}
