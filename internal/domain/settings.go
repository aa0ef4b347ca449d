package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateTable holds the per-level commission percentages for one basis.
type RateTable struct {
	Level1 decimal.Decimal `json:"level1"`
	Level2 decimal.Decimal `json:"level2"`
	Level3 decimal.Decimal `json:"level3"`
}

// ForLevel returns the percentage for referral level 1-3, zero otherwise.
func (t RateTable) ForLevel(level int) decimal.Decimal {
	switch level {
	case 1:
		return t.Level1
	case 2:
		return t.Level2
	case 3:
		return t.Level3
	default:
		return decimal.Zero
	}
}

// Settings is the single-row platform configuration. Operations load one
// snapshot at their start and never read it again mid-flight.
type Settings struct {
	ID int64 `db:"id" json:"-"`

	// purchase and deposit commissions share one table; task commissions
	// have their own.
	ReferralCommission RateTable `json:"referral_commission"`
	TaskCommission     RateTable `json:"task_commission"`

	TasksDisabled       bool       `db:"tasks_disabled" json:"tasks_disabled"`
	Offday              bool       `db:"offday" json:"offday"`
	WithdrawalsDisabled bool       `db:"withdrawals_disabled" json:"withdrawals_disabled"`
	LastResetAt         *time.Time `db:"last_reset_at" json:"last_reset_at,omitempty"`

	USDTAddress string `db:"usdt_address" json:"usdt_address,omitempty"`
	BTCAddress  string `db:"btc_address" json:"btc_address,omitempty"`
	LTCAddress  string `db:"ltc_address" json:"ltc_address,omitempty"`
}

// DefaultReferralRates is the purchase/deposit-basis table: 10/5/2.
func DefaultReferralRates() RateTable {
	return RateTable{
		Level1: decimal.NewFromInt(10),
		Level2: decimal.NewFromInt(5),
		Level3: decimal.NewFromInt(2),
	}
}

// DefaultTaskRates is the task-basis table: 10/5/3.
func DefaultTaskRates() RateTable {
	return RateTable{
		Level1: decimal.NewFromInt(10),
		Level2: decimal.NewFromInt(5),
		Level3: decimal.NewFromInt(3),
	}
}
