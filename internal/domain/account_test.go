package domain

import (
	"testing"
	"time"
)

func TestDailyTasksNeedsReset(t *testing.T) {
	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	var d DailyTasks
	if !d.NeedsReset(now) {
		t.Error("never-reset counters need a reset")
	}

	sameDay := time.Date(2026, 8, 29, 0, 0, 1, 0, time.UTC)
	d.LastResetAt = &sameDay
	if d.NeedsReset(now) {
		t.Error("same calendar day must not reset")
	}

	yesterday := time.Date(2026, 8, 28, 23, 59, 59, 0, time.UTC)
	d.LastResetAt = &yesterday
	if !d.NeedsReset(now) {
		t.Error("previous day must reset, even one second before midnight")
	}
}

func TestDailyTasksCompletedTask(t *testing.T) {
	d := DailyTasks{CompletedTaskIDs: []int64{3, 7}}
	if !d.CompletedTask(7) {
		t.Error("expected task 7 completed")
	}
	if d.CompletedTask(5) {
		t.Error("task 5 was not completed")
	}
}

func TestCheatRecordBlocked(t *testing.T) {
	now := time.Now()

	var c CheatRecord
	if c.Blocked(now) {
		t.Error("no block set")
	}

	future := now.Add(time.Hour)
	c.BlockedUntil = &future
	if !c.Blocked(now) {
		t.Error("active block must report blocked")
	}

	past := now.Add(-time.Minute)
	c.BlockedUntil = &past
	if c.Blocked(now) {
		t.Error("expired block must not report blocked")
	}
}

func TestReferralEligible(t *testing.T) {
	tests := []struct {
		approved, blocked, want bool
	}{
		{true, false, true},
		{false, false, false},
		{true, true, false},
		{false, true, false},
	}
	for _, tt := range tests {
		r := Referral{Approved: tt.approved, Blocked: tt.blocked}
		if got := r.Eligible(); got != tt.want {
			t.Errorf("approved=%v blocked=%v: Eligible() = %v, want %v",
				tt.approved, tt.blocked, got, tt.want)
		}
	}
}
