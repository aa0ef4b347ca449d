package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AdminService provides platform statistics and reporting for operators.
type AdminService struct {
	db *pgxpool.Pool
}

func NewAdminService(db *pgxpool.Pool) *AdminService {
	return &AdminService{db: db}
}

// Stats represents platform-wide statistics.
type Stats struct {
	TotalAccounts      int64           `json:"total_accounts"`
	ActiveToday        int64           `json:"active_today"` // started at least one watch session
	BlockedAccounts    int64           `json:"blocked_accounts"`
	SessionsTotal      int64           `json:"sessions_total"`
	SessionsToday      int64           `json:"sessions_today"`
	CompletedTotal     int64           `json:"completed_total"`
	SuspiciousTotal    int64           `json:"suspicious_total"`
	PendingDeposits    int64           `json:"pending_deposits"`
	PendingWithdrawals int64           `json:"pending_withdrawals"`
	TotalBalance       decimal.Decimal `json:"total_balance"` // sum of all account balances
	TotalDeposited     decimal.Decimal `json:"total_deposited"`
	TotalWithdrawn     decimal.Decimal `json:"total_withdrawn"`
	RewardsPaidTotal   decimal.Decimal `json:"rewards_paid_total"`
	RewardsPaidToday   decimal.Decimal `json:"rewards_paid_today"`
	CommissionsPaid    decimal.Decimal `json:"commissions_paid"`
}

// GetStats returns platform statistics. Individual query failures leave
// the corresponding field at its zero value rather than failing the whole
// report.
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	today := time.Now().Truncate(24 * time.Hour)

	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&stats.TotalAccounts)

	_ = s.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT account_id) FROM watch_sessions WHERE started_at >= $1
	`, today).Scan(&stats.ActiveToday)

	_ = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM accounts WHERE blocked_until IS NOT NULL AND blocked_until > NOW()
	`).Scan(&stats.BlockedAccounts)

	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM watch_sessions`).Scan(&stats.SessionsTotal)

	_ = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM watch_sessions WHERE started_at >= $1
	`, today).Scan(&stats.SessionsToday)

	_ = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM watch_sessions WHERE status = 'completed'
	`).Scan(&stats.CompletedTotal)

	_ = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM watch_sessions WHERE suspicious
	`).Scan(&stats.SuspiciousTotal)

	_ = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM deposits WHERE status = 'pending'
	`).Scan(&stats.PendingDeposits)

	_ = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM withdrawals WHERE status IN ('pending', 'approved')
	`).Scan(&stats.PendingWithdrawals)

	_ = s.db.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM accounts`).Scan(&stats.TotalBalance)

	_ = s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM deposits WHERE status = 'completed'
	`).Scan(&stats.TotalDeposited)

	_ = s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(final_amount), 0) FROM withdrawals WHERE status = 'paid'
	`).Scan(&stats.TotalWithdrawn)

	_ = s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM income_entries WHERE kind = 'task_reward'
	`).Scan(&stats.RewardsPaidTotal)

	_ = s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM income_entries WHERE kind = 'task_reward' AND created_at >= $1
	`, today).Scan(&stats.RewardsPaidToday)

	_ = s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM income_entries WHERE level > 0
	`).Scan(&stats.CommissionsPaid)

	return stats, nil
}

// TaskAnalytics aggregates watch sessions per task.
type TaskAnalytics struct {
	TaskID      int64           `json:"task_id"`
	Title       string          `json:"title"`
	Sessions    int64           `json:"sessions"`
	Completed   int64           `json:"completed"`
	Suspicious  int64           `json:"suspicious"`
	RewardsPaid decimal.Decimal `json:"rewards_paid"`
}

// WatchAnalytics returns per-task session aggregates, busiest tasks first.
func (s *AdminService) WatchAnalytics(ctx context.Context) ([]TaskAnalytics, error) {
	rows, err := s.db.Query(ctx, `
		SELECT t.id, t.title,
		       COUNT(w.id),
		       COUNT(w.id) FILTER (WHERE w.status = 'completed'),
		       COUNT(w.id) FILTER (WHERE w.suspicious),
		       COALESCE(SUM(w.reward_earned) FILTER (WHERE w.status = 'completed'), 0)
		FROM tasks t
		LEFT JOIN watch_sessions w ON w.task_id = t.id
		GROUP BY t.id, t.title
		ORDER BY COUNT(w.id) DESC, t.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TaskAnalytics
	for rows.Next() {
		var a TaskAnalytics
		if err := rows.Scan(&a.TaskID, &a.Title, &a.Sessions, &a.Completed, &a.Suspicious, &a.RewardsPaid); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// LeaderboardEntry is one row of the commission leaderboard.
type LeaderboardEntry struct {
	AccountID       int64           `json:"account_id"`
	Email           string          `json:"email"`
	ReferralCount   int             `json:"referral_count"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

// CommissionLeaderboard returns the top commission earners.
func (s *AdminService) CommissionLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, email, referral_count, referral_total_commission
		FROM accounts
		WHERE referral_total_commission > 0
		ORDER BY referral_total_commission DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.AccountID, &e.Email, &e.ReferralCount, &e.TotalCommission); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
