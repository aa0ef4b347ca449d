package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Task struct {
	ID           int64           `db:"id" json:"id"`
	Title        string          `db:"title" json:"title"`
	Reward       decimal.Decimal `db:"reward" json:"reward"`
	Level1Reward decimal.Decimal `db:"level1_reward" json:"level1_reward"`
	Level2Reward decimal.Decimal `db:"level2_reward" json:"level2_reward"`
	Level3Reward decimal.Decimal `db:"level3_reward" json:"level3_reward"`
	MinLevelRank int             `db:"min_level_rank" json:"min_level_rank"`
	WatchSeconds int             `db:"watch_seconds" json:"watch_seconds"`
	Provider     string          `db:"provider" json:"provider"`
	VideoURL     string          `db:"video_url" json:"video_url"`
	IsActive     bool            `db:"is_active" json:"is_active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// RewardForRank returns the reward paid to an account of the given level rank.
// Ranks 1-3 use the per-level override; anything else falls back to the
// task's default reward.
func (t *Task) RewardForRank(rank int) decimal.Decimal {
	switch rank {
	case 1:
		return t.Level1Reward
	case 2:
		return t.Level2Reward
	case 3:
		return t.Level3Reward
	default:
		return t.Reward
	}
}

// RequiredSeconds is the minimum viewing time for one session, never below 10s.
func (t *Task) RequiredSeconds() int {
	if t.WatchSeconds < 10 {
		return 10
	}
	return t.WatchSeconds
}
