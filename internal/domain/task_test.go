package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRewardForRank(t *testing.T) {
	task := &Task{
		Reward:       decimal.RequireFromString("0.50"),
		Level1Reward: decimal.NewFromInt(1),
		Level2Reward: decimal.NewFromInt(2),
		Level3Reward: decimal.NewFromInt(3),
	}

	tests := []struct {
		rank int
		want string
	}{
		{1, "1"},
		{2, "2"},
		{3, "3"},
		{0, "0.50"},
		{4, "0.50"},
	}
	for _, tt := range tests {
		if got := task.RewardForRank(tt.rank); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("RewardForRank(%d) = %s, want %s", tt.rank, got, tt.want)
		}
	}
}

func TestRequiredSeconds(t *testing.T) {
	tests := []struct {
		watchSeconds int
		want         int
	}{
		{0, 10},
		{5, 10},
		{10, 10},
		{45, 45},
	}
	for _, tt := range tests {
		task := &Task{WatchSeconds: tt.watchSeconds}
		if got := task.RequiredSeconds(); got != tt.want {
			t.Errorf("WatchSeconds=%d: RequiredSeconds() = %d, want %d", tt.watchSeconds, got, tt.want)
		}
	}
}
