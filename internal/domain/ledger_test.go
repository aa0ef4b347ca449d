package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCommissionAmount(t *testing.T) {
	tests := []struct {
		base    string
		percent string
		want    string
	}{
		{"100", "10", "10"},
		{"100", "5", "5"},
		{"100", "2", "2"},
		{"0.01", "10", "0"},       // rounds below a cent
		{"0.05", "10", "0.01"},    // half-up at the cent
		{"33.33", "3", "1"},
		{"250", "2", "5"},
	}

	for _, tt := range tests {
		base := decimal.RequireFromString(tt.base)
		percent := decimal.RequireFromString(tt.percent)
		got := CommissionAmount(base, percent)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("CommissionAmount(%s, %s%%) = %s, want %s", tt.base, tt.percent, got, tt.want)
		}
	}
}

// Each level rounds independently; the payouts do not have to sum to a
// rounded total of the combined rate.
func TestCommissionAmount_IndependentRounding(t *testing.T) {
	base := decimal.RequireFromString("0.07")
	l1 := CommissionAmount(base, decimal.NewFromInt(10))
	l2 := CommissionAmount(base, decimal.NewFromInt(5))
	l3 := CommissionAmount(base, decimal.NewFromInt(2))

	if !l1.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("level 1 = %s", l1)
	}
	if !l2.IsZero() {
		t.Errorf("level 2 = %s, want 0", l2)
	}
	if !l3.IsZero() {
		t.Errorf("level 3 = %s, want 0", l3)
	}
}

func TestRateTableForLevel(t *testing.T) {
	rates := DefaultTaskRates()
	for level, want := range map[int]int64{1: 10, 2: 5, 3: 3} {
		if got := rates.ForLevel(level); !got.Equal(decimal.NewFromInt(want)) {
			t.Errorf("ForLevel(%d) = %s, want %d", level, got, want)
		}
	}
	if !rates.ForLevel(0).IsZero() || !rates.ForLevel(4).IsZero() {
		t.Error("out-of-range levels must pay zero")
	}

	deposit := DefaultReferralRates()
	if got := deposit.ForLevel(3); !got.Equal(decimal.NewFromInt(2)) {
		t.Errorf("deposit level 3 = %s, want 2", got)
	}
}
