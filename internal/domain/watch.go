package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// WatchStatus represents watch session state
type WatchStatus string

const (
	WatchStatusActive    WatchStatus = "active"
	WatchStatusCompleted WatchStatus = "completed"
	WatchStatusExpired   WatchStatus = "expired"
)

// Completion attempts are rejected with one of these; the session stays active
// so the viewer can retry once it legitimately qualifies.
var (
	ErrWatchNotActive = errors.New("watch session not active")
	ErrHeartbeatStale = errors.New("heartbeat stale")
	ErrWatchTooShort  = errors.New("required watch time not reached")
	ErrWatchOwnership = errors.New("watch session does not match caller")
)

// HeartbeatWindow is the longest gap between the last heartbeat and a
// completion attempt before the session is treated as abandoned.
const HeartbeatWindow = 6 * time.Second

// WatchSession is one timed viewing attempt. active -> completed/expired are
// the only transitions; terminal states never change again.
type WatchSession struct {
	ID               int64           `db:"id" json:"id"`
	AccountID        int64           `db:"account_id" json:"account_id"`
	TaskID           int64           `db:"task_id" json:"task_id"`
	Status           WatchStatus     `db:"status" json:"status"`
	RequiredSeconds  int             `db:"required_seconds" json:"required_seconds"`
	CanCompleteAt    time.Time       `db:"can_complete_at" json:"can_complete_at"`
	StartedAt        time.Time       `db:"started_at" json:"started_at"`
	WatchedSeconds   int             `db:"watched_seconds" json:"watched_seconds"`
	HeartbeatCount   int             `db:"heartbeat_count" json:"heartbeat_count"`
	LastHeartbeatAt  *time.Time      `db:"last_heartbeat_at" json:"last_heartbeat_at,omitempty"`
	VisibilityBreaks int             `db:"visibility_breaks" json:"visibility_breaks"`
	Suspicious       bool            `db:"suspicious" json:"suspicious"`
	CompletedAt      *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	RewardEarned     decimal.Decimal `db:"reward_earned" json:"reward_earned"`
	UserAgent        string          `db:"user_agent" json:"-"`
	IP               string          `db:"ip" json:"-"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// CompletionCheck runs the anti-cheat gate for a completion attempt at `now`
// by `accountID` for `taskID`. A nil error means the session qualifies.
// ErrHeartbeatStale and ErrWatchTooShort also mean the session must be marked
// suspicious and a strike recorded; the session itself stays active.
func (w *WatchSession) CompletionCheck(accountID, taskID int64, now time.Time) error {
	if w.AccountID != accountID || w.TaskID != taskID {
		return ErrWatchOwnership
	}
	if w.Status != WatchStatusActive {
		return ErrWatchNotActive
	}
	last := time.Time{}
	if w.LastHeartbeatAt != nil {
		last = *w.LastHeartbeatAt
	}
	if now.Sub(last) > HeartbeatWindow {
		return ErrHeartbeatStale
	}
	if now.Before(w.CanCompleteAt) {
		return ErrWatchTooShort
	}
	return nil
}

// FinalWatchedSeconds is the value persisted at completion: never below the
// required time even if some heartbeats were lost.
func (w *WatchSession) FinalWatchedSeconds() int {
	if w.WatchedSeconds < w.RequiredSeconds {
		return w.RequiredSeconds
	}
	return w.WatchedSeconds
}
