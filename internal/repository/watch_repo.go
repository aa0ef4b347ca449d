package repository

import (
	"context"
	"errors"

	"reward_platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type WatchRepository struct {
	db *pgxpool.Pool
}

func NewWatchRepository(db *pgxpool.Pool) *WatchRepository {
	return &WatchRepository{db: db}
}

const watchColumns = `id, account_id, task_id, status, required_seconds, can_complete_at,
	started_at, watched_seconds, heartbeat_count, last_heartbeat_at,
	visibility_breaks, suspicious, completed_at, reward_earned, user_agent, ip, created_at`

// Create opens a new session after expiring any session the account still has
// active for the same task. At most one active session per (account, task).
func (r *WatchRepository) Create(ctx context.Context, w *domain.WatchSession) error {
	_, err := r.db.Exec(ctx, `
		UPDATE watch_sessions SET status = 'expired'
		WHERE account_id = $1 AND task_id = $2 AND status = 'active'
	`, w.AccountID, w.TaskID)
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO watch_sessions
			(account_id, task_id, status, required_seconds, can_complete_at, started_at, user_agent, ip)
		VALUES ($1, $2, 'active', $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, w.AccountID, w.TaskID, w.RequiredSeconds, w.CanCompleteAt, w.StartedAt, w.UserAgent, w.IP).
		Scan(&w.ID, &w.CreatedAt)
}

// Heartbeat advances the session clock in one statement. The status filter in
// the WHERE clause makes a heartbeat against a finished session a clean miss
// instead of a lost update.
func (r *WatchRepository) Heartbeat(ctx context.Context, id, accountID int64, visible bool) (*domain.WatchSession, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE watch_sessions
		SET watched_seconds = watched_seconds + 1,
		    heartbeat_count = heartbeat_count + 1,
		    last_heartbeat_at = now(),
		    visibility_breaks = visibility_breaks + CASE WHEN $3 THEN 0 ELSE 1 END,
		    suspicious = suspicious OR NOT $3
		WHERE id = $1 AND account_id = $2 AND status = 'active'
		RETURNING `+watchColumns,
		id, accountID, visible)
	return scanWatchRow(row)
}

func (r *WatchRepository) GetByID(ctx context.Context, id int64) (*domain.WatchSession, error) {
	row := r.db.QueryRow(ctx, `SELECT `+watchColumns+` FROM watch_sessions WHERE id = $1`, id)
	return scanWatchRow(row)
}

// GetForUpdateTx locks the session so only one completion can settle it.
func (r *WatchRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.WatchSession, error) {
	row := tx.QueryRow(ctx, `SELECT `+watchColumns+` FROM watch_sessions WHERE id = $1 FOR UPDATE`, id)
	return scanWatchRow(row)
}

// CompleteTx settles the session. The status filter guards the
// active -> completed transition even if the caller raced.
func (r *WatchRepository) CompleteTx(ctx context.Context, tx pgx.Tx, w *domain.WatchSession) error {
	tag, err := tx.Exec(ctx, `
		UPDATE watch_sessions
		SET status = 'completed', completed_at = now(),
		    watched_seconds = $2, reward_earned = $3
		WHERE id = $1 AND status = 'active'
	`, w.ID, w.FinalWatchedSeconds(), w.RewardEarned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWatchNotActive
	}
	return nil
}

// MarkSuspicious flags the session on the pool so the flag survives a rolled
// back completion attempt.
func (r *WatchRepository) MarkSuspicious(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE watch_sessions SET suspicious = TRUE WHERE id = $1`, id)
	return err
}

// ListByAccount returns the account's sessions, newest first.
func (r *WatchRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]domain.WatchSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+watchColumns+` FROM watch_sessions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.WatchSession
	for rows.Next() {
		w, err := scanWatch(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *w)
	}
	return sessions, rows.Err()
}

// AccountTotals aggregates an account's completed sessions.
func (r *WatchRepository) AccountTotals(ctx context.Context, accountID int64) (completed int64, totalEarned decimal.Decimal, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(reward_earned), 0)
		FROM watch_sessions
		WHERE account_id = $1 AND status = 'completed'
	`, accountID).Scan(&completed, &totalEarned)
	return completed, totalEarned, err
}

// ListSuspicious feeds the admin forensics view.
func (r *WatchRepository) ListSuspicious(ctx context.Context, limit int) ([]domain.WatchSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+watchColumns+` FROM watch_sessions
		WHERE suspicious
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.WatchSession
	for rows.Next() {
		w, err := scanWatch(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *w)
	}
	return sessions, rows.Err()
}

func scanWatchRow(row pgx.Row) (*domain.WatchSession, error) {
	w, err := scanWatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

func scanWatch(row pgx.Row) (*domain.WatchSession, error) {
	var w domain.WatchSession
	if err := row.Scan(
		&w.ID, &w.AccountID, &w.TaskID, &w.Status, &w.RequiredSeconds, &w.CanCompleteAt,
		&w.StartedAt, &w.WatchedSeconds, &w.HeartbeatCount, &w.LastHeartbeatAt,
		&w.VisibilityBreaks, &w.Suspicious, &w.CompletedAt, &w.RewardEarned,
		&w.UserAgent, &w.IP, &w.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &w, nil
}
