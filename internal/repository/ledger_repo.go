package repository

import (
	"context"

	"reward_platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// InsertTx appends one credit entry. Returns false when the same
// (account, event, kind, level) tuple was already recorded; the caller must
// then skip the wallet credit too. Duplicates are absorbed by ON CONFLICT
// instead of a unique-violation error so the surrounding transaction survives.
func (r *LedgerRepository) InsertTx(ctx context.Context, tx pgx.Tx, e *domain.IncomeEntry) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO income_entries
			(account_id, source_account_id, event_id, kind, level, base_amount, percent, amount, task_id, package_id, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT ON CONSTRAINT income_entries_event_key DO NOTHING
	`, e.AccountID, e.SourceAccountID, e.EventID, e.Kind, e.Level,
		e.BaseAmount, e.Percent, e.Amount, e.TaskID, e.PackageID, e.Note)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListByAccount returns the account's credit history, newest first.
func (r *LedgerRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]domain.IncomeEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, source_account_id, event_id, kind, level,
		       base_amount, percent, amount, task_id, package_id, note, created_at
		FROM income_entries
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.IncomeEntry
	for rows.Next() {
		var e domain.IncomeEntry
		if err := rows.Scan(
			&e.ID, &e.AccountID, &e.SourceAccountID, &e.EventID, &e.Kind, &e.Level,
			&e.BaseAmount, &e.Percent, &e.Amount, &e.TaskID, &e.PackageID, &e.Note, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SumByKind aggregates lifetime income per kind for the earnings report.
func (r *LedgerRepository) SumByKind(ctx context.Context, accountID int64) (map[domain.IncomeKind]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT kind, COALESCE(SUM(amount), 0)
		FROM income_entries
		WHERE account_id = $1
		GROUP BY kind
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[domain.IncomeKind]decimal.Decimal)
	for rows.Next() {
		var kind domain.IncomeKind
		var total decimal.Decimal
		if err := rows.Scan(&kind, &total); err != nil {
			return nil, err
		}
		sums[kind] = total
	}
	return sums, rows.Err()
}

// SumCommissionFrom returns total commission earned from a specific downline
// account, for the per-referral breakdown.
func (r *LedgerRepository) SumCommissionFrom(ctx context.Context, accountID, sourceID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM income_entries
		WHERE account_id = $1 AND source_account_id = $2 AND level > 0
	`, accountID, sourceID).Scan(&total)
	return total, err
}
