package domain

import (
	"errors"
	"testing"
	"time"
)

func activeSession(now time.Time) *WatchSession {
	hb := now.Add(-2 * time.Second)
	return &WatchSession{
		ID:              1,
		AccountID:       10,
		TaskID:          20,
		Status:          WatchStatusActive,
		RequiredSeconds: 30,
		StartedAt:       now.Add(-40 * time.Second),
		CanCompleteAt:   now.Add(-10 * time.Second),
		WatchedSeconds:  40,
		LastHeartbeatAt: &hb,
	}
}

func TestCompletionCheck_OK(t *testing.T) {
	now := time.Now()
	w := activeSession(now)
	if err := w.CompletionCheck(10, 20, now); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}

func TestCompletionCheck_Ownership(t *testing.T) {
	now := time.Now()
	w := activeSession(now)

	if err := w.CompletionCheck(11, 20, now); !errors.Is(err, ErrWatchOwnership) {
		t.Fatalf("wrong account: got %v", err)
	}
	if err := w.CompletionCheck(10, 21, now); !errors.Is(err, ErrWatchOwnership) {
		t.Fatalf("wrong task: got %v", err)
	}
}

func TestCompletionCheck_NotActive(t *testing.T) {
	now := time.Now()
	for _, status := range []WatchStatus{WatchStatusCompleted, WatchStatusExpired} {
		w := activeSession(now)
		w.Status = status
		if err := w.CompletionCheck(10, 20, now); !errors.Is(err, ErrWatchNotActive) {
			t.Fatalf("status %s: got %v", status, err)
		}
	}
}

func TestCompletionCheck_HeartbeatBoundary(t *testing.T) {
	now := time.Now()

	// exactly at the window edge still passes
	w := activeSession(now)
	edge := now.Add(-HeartbeatWindow)
	w.LastHeartbeatAt = &edge
	if err := w.CompletionCheck(10, 20, now); err != nil {
		t.Fatalf("at window edge: got %v", err)
	}

	// one tick past the edge fails
	w = activeSession(now)
	past := now.Add(-HeartbeatWindow - time.Millisecond)
	w.LastHeartbeatAt = &past
	if err := w.CompletionCheck(10, 20, now); !errors.Is(err, ErrHeartbeatStale) {
		t.Fatalf("past window edge: got %v", err)
	}
}

func TestCompletionCheck_NoHeartbeat(t *testing.T) {
	now := time.Now()
	w := activeSession(now)
	w.LastHeartbeatAt = nil
	if err := w.CompletionCheck(10, 20, now); !errors.Is(err, ErrHeartbeatStale) {
		t.Fatalf("nil heartbeat: got %v", err)
	}
}

func TestCompletionCheck_TooShort(t *testing.T) {
	now := time.Now()
	w := activeSession(now)
	w.CanCompleteAt = now.Add(time.Second)
	if err := w.CompletionCheck(10, 20, now); !errors.Is(err, ErrWatchTooShort) {
		t.Fatalf("before can_complete_at: got %v", err)
	}

	// exactly at can_complete_at passes
	w.CanCompleteAt = now
	if err := w.CompletionCheck(10, 20, now); err != nil {
		t.Fatalf("at can_complete_at: got %v", err)
	}
}

func TestFinalWatchedSeconds(t *testing.T) {
	w := &WatchSession{RequiredSeconds: 30, WatchedSeconds: 25}
	if got := w.FinalWatchedSeconds(); got != 30 {
		t.Fatalf("lost heartbeats should round up to required: got %d", got)
	}

	w.WatchedSeconds = 45
	if got := w.FinalWatchedSeconds(); got != 45 {
		t.Fatalf("overwatch should keep actual: got %d", got)
	}
}
