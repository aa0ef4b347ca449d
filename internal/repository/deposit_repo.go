package repository

import (
	"context"
	"errors"
	"time"

	"reward_platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DepositRepository struct {
	db *pgxpool.Pool
}

func NewDepositRepository(db *pgxpool.Pool) *DepositRepository {
	return &DepositRepository{db: db}
}

const depositColumns = `id, reference, account_id, amount, currency, tx_hash, receipt_path, status, created_at, processed_at`

func (r *DepositRepository) Create(ctx context.Context, d *domain.Deposit) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO deposits (reference, account_id, amount, currency, tx_hash, receipt_path, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending')
		RETURNING id, created_at
	`, d.Reference, d.AccountID, d.Amount, d.Currency, d.TxHash, d.ReceiptPath).Scan(&d.ID, &d.CreatedAt)
}

func (r *DepositRepository) GetByID(ctx context.Context, id int64) (*domain.Deposit, error) {
	row := r.db.QueryRow(ctx, `SELECT `+depositColumns+` FROM deposits WHERE id = $1`, id)
	return scanDepositRow(row)
}

// GetForUpdateTx locks the deposit for settlement.
func (r *DepositRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Deposit, error) {
	row := tx.QueryRow(ctx, `SELECT `+depositColumns+` FROM deposits WHERE id = $1 FOR UPDATE`, id)
	return scanDepositRow(row)
}

// SettleTx moves a pending deposit to its terminal status. The status filter
// makes a second approval of the same deposit a no-op error, not a double pay.
func (r *DepositRepository) SettleTx(ctx context.Context, tx pgx.Tx, id int64, status domain.DepositStatus, at time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE deposits SET status = $2, processed_at = $3
		WHERE id = $1 AND status = 'pending'
	`, id, status, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *DepositRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]domain.Deposit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+depositColumns+` FROM deposits
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDeposits(rows)
}

func (r *DepositRepository) ListPending(ctx context.Context) ([]domain.Deposit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+depositColumns+` FROM deposits
		WHERE status = 'pending'
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDeposits(rows)
}

func scanDepositRow(row pgx.Row) (*domain.Deposit, error) {
	d, err := scanDeposit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

func scanDeposit(row pgx.Row) (*domain.Deposit, error) {
	var d domain.Deposit
	if err := row.Scan(
		&d.ID, &d.Reference, &d.AccountID, &d.Amount, &d.Currency,
		&d.TxHash, &d.ReceiptPath, &d.Status, &d.CreatedAt, &d.ProcessedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDeposits(rows pgx.Rows) ([]domain.Deposit, error) {
	var deposits []domain.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, *d)
	}
	return deposits, rows.Err()
}
