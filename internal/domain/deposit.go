package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositStatus represents deposit processing status
type DepositStatus string

const (
	DepositStatusPending   DepositStatus = "pending"
	DepositStatusCompleted DepositStatus = "completed"
	DepositStatusRejected  DepositStatus = "rejected"
)

// Deposit is a user-submitted top-up awaiting administrative review.
// pending is the only non-terminal status.
type Deposit struct {
	ID          int64           `db:"id" json:"id"`
	Reference   string          `db:"reference" json:"reference"`
	AccountID   int64           `db:"account_id" json:"account_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Currency    string          `db:"currency" json:"currency"`
	TxHash      string          `db:"tx_hash" json:"tx_hash"`
	ReceiptPath string          `db:"receipt_path" json:"receipt_path,omitempty"`
	Status      DepositStatus   `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}
