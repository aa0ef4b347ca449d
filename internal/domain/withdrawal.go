package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalStatus represents withdrawal processing status
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusApproved  WithdrawalStatus = "approved"
	WithdrawalStatusPaid      WithdrawalStatus = "paid"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
	WithdrawalStatusCancelled WithdrawalStatus = "cancelled"
	WithdrawalStatusFailed    WithdrawalStatus = "failed"
)

// Terminal reports whether the status admits no further transition.
func (s WithdrawalStatus) Terminal() bool {
	switch s {
	case WithdrawalStatusPaid, WithdrawalStatusRejected, WithdrawalStatusCancelled:
		return true
	}
	return false
}

// Withdrawal is a two-phase payout: the full requested amount is debited from
// the wallet at request time (escrow) and the record settles later by an
// administrative action. Rejection and cancellation do not restore the
// escrowed balance.
type Withdrawal struct {
	ID              int64            `db:"id" json:"id"`
	Reference       string           `db:"reference" json:"reference"`
	AccountID       int64            `db:"account_id" json:"account_id"`
	RequestedAmount decimal.Decimal  `db:"requested_amount" json:"requested_amount"`
	FeePercent      decimal.Decimal  `db:"fee_percent" json:"fee_percent"`
	FeeAmount       decimal.Decimal  `db:"fee_amount" json:"fee_amount"`
	FinalAmount     decimal.Decimal  `db:"final_amount" json:"final_amount"`
	WalletAddress   string           `db:"wallet_address" json:"wallet_address"`
	Status          WithdrawalStatus `db:"status" json:"status"`
	Note            string           `db:"note" json:"note,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	ProcessedAt     *time.Time       `db:"processed_at" json:"processed_at,omitempty"`
}

// WithdrawalFee splits a requested amount into fee and net payout, each
// rounded to 2 decimals.
func WithdrawalFee(requested, feePercent decimal.Decimal) (fee, final decimal.Decimal) {
	fee = requested.Mul(feePercent).Div(decimal.NewFromInt(100)).Round(2)
	final = requested.Sub(fee).Round(2)
	return fee, final
}
