package repository

import (
	"context"
	"errors"
	"time"

	"reward_platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WithdrawalRepository struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepository(db *pgxpool.Pool) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

const withdrawalColumns = `id, reference, account_id, requested_amount, fee_percent, fee_amount,
	final_amount, wallet_address, status, note, created_at, processed_at`

// CreateTx records the request inside the escrow-debit transaction.
func (r *WithdrawalRepository) CreateTx(ctx context.Context, tx pgx.Tx, w *domain.Withdrawal) error {
	return tx.QueryRow(ctx, `
		INSERT INTO withdrawals
			(reference, account_id, requested_amount, fee_percent, fee_amount, final_amount, wallet_address, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
		RETURNING id, created_at
	`, w.Reference, w.AccountID, w.RequestedAmount, w.FeePercent, w.FeeAmount, w.FinalAmount, w.WalletAddress).
		Scan(&w.ID, &w.CreatedAt)
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	row := r.db.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id)
	return scanWithdrawalRow(row)
}

func (r *WithdrawalRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Withdrawal, error) {
	row := tx.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, id)
	return scanWithdrawalRow(row)
}

// TransitionTx moves a withdrawal between statuses; the `from` filter enforces
// the state machine at the storage layer.
func (r *WithdrawalRepository) TransitionTx(ctx context.Context, tx pgx.Tx, id int64, from []domain.WithdrawalStatus, to domain.WithdrawalStatus, note string, at time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE withdrawals
		SET status = $2, note = CASE WHEN $3 = '' THEN note ELSE $3 END, processed_at = $4
		WHERE id = $1 AND status = ANY($5)
	`, id, to, note, at, statusStrings(from))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CancelTx is user-initiated and only valid while pending.
func (r *WithdrawalRepository) CancelTx(ctx context.Context, tx pgx.Tx, id, accountID int64, at time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE withdrawals SET status = 'cancelled', processed_at = $3
		WHERE id = $1 AND account_id = $2 AND status = 'pending'
	`, id, accountID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *WithdrawalRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithdrawals(rows)
}

func (r *WithdrawalRepository) ListByStatus(ctx context.Context, status domain.WithdrawalStatus) ([]domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals
		WHERE status = $1
		ORDER BY created_at ASC
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWithdrawals(rows)
}

func statusStrings(statuses []domain.WithdrawalStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func scanWithdrawalRow(row pgx.Row) (*domain.Withdrawal, error) {
	w, err := scanWithdrawal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	if err := row.Scan(
		&w.ID, &w.Reference, &w.AccountID, &w.RequestedAmount, &w.FeePercent, &w.FeeAmount,
		&w.FinalAmount, &w.WalletAddress, &w.Status, &w.Note, &w.CreatedAt, &w.ProcessedAt,
	); err != nil {
		return nil, err
	}
	return &w, nil
}

func scanWithdrawals(rows pgx.Rows) ([]domain.Withdrawal, error) {
	var withdrawals []domain.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, *w)
	}
	return withdrawals, rows.Err()
}
