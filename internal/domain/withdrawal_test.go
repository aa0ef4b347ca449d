package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestWithdrawalFee(t *testing.T) {
	tests := []struct {
		requested string
		fee       string
		final     string
	}{
		{"10", "1", "9"},
		{"30", "3", "27"},
		{"100", "10", "90"},
		{"1000", "100", "900"},
	}

	ten := decimal.NewFromInt(10)
	for _, tt := range tests {
		fee, final := WithdrawalFee(decimal.RequireFromString(tt.requested), ten)
		if !fee.Equal(decimal.RequireFromString(tt.fee)) {
			t.Errorf("fee(%s) = %s, want %s", tt.requested, fee, tt.fee)
		}
		if !final.Equal(decimal.RequireFromString(tt.final)) {
			t.Errorf("final(%s) = %s, want %s", tt.requested, final, tt.final)
		}
		if !fee.Add(final).Equal(decimal.RequireFromString(tt.requested)) {
			t.Errorf("fee + final must equal requested for %s", tt.requested)
		}
	}
}

func TestWithdrawalStatusTerminal(t *testing.T) {
	terminal := map[WithdrawalStatus]bool{
		WithdrawalStatusPending:   false,
		WithdrawalStatusApproved:  false,
		WithdrawalStatusPaid:      true,
		WithdrawalStatusRejected:  true,
		WithdrawalStatusCancelled: true,
		WithdrawalStatusFailed:    false,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}
