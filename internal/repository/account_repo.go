package repository

import (
	"context"
	"errors"
	"time"

	"reward_platform/internal/domain"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrEmailTaken        = errors.New("email already registered")
	ErrReferralCodeTaken = errors.New("referral code already taken")
)

const accountColumns = `id, email, password_hash, role, created_at,
	package_id, package_activated_at, level_rank, level_name,
	balance, total_earned, total_withdrawn,
	COALESCE(referral_code, ''), referred_by, referral_approved, referral_blocked,
	referral_count, referral_total_commission,
	completed_today, completed_task_ids, last_reset_at,
	strikes, last_strike_at, blocked_until`

type AccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash, role, referral_code, referred_by)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING id, created_at
	`, a.Email, a.PasswordHash, a.Role, a.Referral.Code, a.Referral.ReferredBy).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if pgErr.ConstraintName == "accounts_referral_code_key" {
				return ErrReferralCodeTaken
			}
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

func (r *AccountRepository) GetByReferralCode(ctx context.Context, code string) (*domain.Account, error) {
	row := r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE referral_code = $1`, code)
	return scanAccount(row)
}

// GetForUpdateTx locks the account row for the rest of the transaction.
func (r *AccountRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Account, error) {
	row := tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id)
	return scanAccount(row)
}

// UplineLink is the slice of account state needed to walk the referral chain.
type UplineLink struct {
	ID         int64
	ReferredBy *int64
	Approved   bool
	Blocked    bool
}

func (u UplineLink) Eligible() bool { return u.Approved && !u.Blocked }

// GetUplineLink reads the minimal referral state of one account.
func (r *AccountRepository) GetUplineLink(ctx context.Context, id int64) (*UplineLink, error) {
	var u UplineLink
	err := r.db.QueryRow(ctx, `
		SELECT id, referred_by, referral_approved, referral_blocked
		FROM accounts WHERE id = $1
	`, id).Scan(&u.ID, &u.ReferredBy, &u.Approved, &u.Blocked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// CreditTx adds earned funds: balance and total_earned move together.
func (r *AccountRepository) CreditTx(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `
		UPDATE accounts
		SET balance = balance + $1, total_earned = total_earned + $1
		WHERE id = $2
		RETURNING balance
	`, amount, id).Scan(&balance)
	return balance, err
}

// CreditBalanceTx adds funds without touching total_earned, for deposits.
func (r *AccountRepository) CreditBalanceTx(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `
		UPDATE accounts SET balance = balance + $1 WHERE id = $2 RETURNING balance
	`, amount, id).Scan(&balance)
	return balance, err
}

// DebitTx removes funds; the balance check happens in SQL so a concurrent
// debit cannot drive the balance negative.
func (r *AccountRepository) DebitTx(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `
		UPDATE accounts
		SET balance = balance - $1
		WHERE id = $2 AND balance >= $1
		RETURNING balance
	`, amount, id).Scan(&balance)
	return balance, err
}

// AddCommissionTx tracks lifetime commission alongside the credit.
func (r *AccountRepository) AddCommissionTx(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		UPDATE accounts SET referral_total_commission = referral_total_commission + $1 WHERE id = $2
	`, amount, id)
	return err
}

// AddTotalWithdrawnTx is recorded when a withdrawal reaches paid.
func (r *AccountRepository) AddTotalWithdrawnTx(ctx context.Context, tx pgx.Tx, id int64, amount decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		UPDATE accounts SET total_withdrawn = total_withdrawn + $1 WHERE id = $2
	`, amount, id)
	return err
}

// SetPackageTx activates a purchased package on the account.
func (r *AccountRepository) SetPackageTx(ctx context.Context, tx pgx.Tx, id, packageID int64, levelRank int, levelName string, at time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE accounts
		SET package_id = $2, package_activated_at = $3, level_rank = $4, level_name = $5
		WHERE id = $1
	`, id, packageID, at, levelRank, levelName)
	return err
}

// RecordTaskCompletionTx bumps the daily counter and remembers the task id.
func (r *AccountRepository) RecordTaskCompletionTx(ctx context.Context, tx pgx.Tx, id, taskID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE accounts
		SET completed_today = completed_today + 1,
		    completed_task_ids = array_append(completed_task_ids, $2)
		WHERE id = $1
	`, id, taskID)
	return err
}

// ResetDailyTx zeroes one account's daily counters.
func (r *AccountRepository) ResetDailyTx(ctx context.Context, tx pgx.Tx, id int64, at time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE accounts
		SET completed_today = 0, completed_task_ids = '{}', last_reset_at = $2
		WHERE id = $1
	`, id, at)
	return err
}

// ResetDaily is the lazy, single-account variant used on first touch of a
// new day.
func (r *AccountRepository) ResetDaily(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET completed_today = 0, completed_task_ids = '{}', last_reset_at = $2
		WHERE id = $1
	`, id, at)
	return err
}

// ResetDailyAll zeroes every account whose counters belong to a previous day.
// Safe to run repeatedly: the date filter makes the second run a no-op.
func (r *AccountRepository) ResetDailyAll(ctx context.Context, at time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET completed_today = 0, completed_task_ids = '{}', last_reset_at = $1
		WHERE last_reset_at IS NULL OR last_reset_at::date < $1::date
	`, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// AddStrike increments the cheat counter and, from the limit onward, applies
// the block. The counter keeps counting past the limit, so every further
// strike re-blocks immediately. Runs on the pool, not inside the completion
// transaction, so a rejected completion still leaves its strike.
func (r *AccountRepository) AddStrike(ctx context.Context, id int64, limit, blockMinutes int, now time.Time) (strikes int, blockedUntil *time.Time, err error) {
	err = r.db.QueryRow(ctx, `
		UPDATE accounts
		SET strikes = strikes + 1,
		    last_strike_at = $4,
		    blocked_until = CASE WHEN strikes + 1 >= $2 THEN $4::timestamptz + make_interval(mins => $3) ELSE blocked_until END
		WHERE id = $1
		RETURNING strikes, blocked_until
	`, id, limit, blockMinutes, now).Scan(&strikes, &blockedUntil)
	return strikes, blockedUntil, err
}

// IncrementReferralCount is called once when a referred account registers.
func (r *AccountRepository) IncrementReferralCount(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE accounts SET referral_count = referral_count + 1 WHERE id = $1`, id)
	return err
}

// SetReferralFlags is the admin lever over chain eligibility.
func (r *AccountRepository) SetReferralFlags(ctx context.Context, id int64, approved, blocked bool) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts SET referral_approved = $2, referral_blocked = $3 WHERE id = $1
	`, id, approved, blocked)
	return err
}

// CountReferralLevels sizes each level of the downline tree.
func (r *AccountRepository) CountReferralLevels(ctx context.Context, id int64) (l1, l2, l3 int64, err error) {
	err = r.db.QueryRow(ctx, `
		WITH level1 AS (SELECT id FROM accounts WHERE referred_by = $1),
		     level2 AS (SELECT id FROM accounts WHERE referred_by IN (SELECT id FROM level1)),
		     level3 AS (SELECT id FROM accounts WHERE referred_by IN (SELECT id FROM level2))
		SELECT (SELECT COUNT(*) FROM level1),
		       (SELECT COUNT(*) FROM level2),
		       (SELECT COUNT(*) FROM level3)
	`, id).Scan(&l1, &l2, &l3)
	return l1, l2, l3, err
}

// ListReferrals returns the accounts directly referred by the given one.
func (r *AccountRepository) ListReferrals(ctx context.Context, id int64, limit int) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE referred_by = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccountValues(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	a, err := scanAccountValues(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func scanAccountValues(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt,
		&a.PackageID, &a.PackageActivatedAt, &a.LevelRank, &a.LevelName,
		&a.Wallet.Balance, &a.Wallet.TotalEarned, &a.Wallet.TotalWithdrawn,
		&a.Referral.Code, &a.Referral.ReferredBy, &a.Referral.Approved, &a.Referral.Blocked,
		&a.Referral.Count, &a.Referral.TotalCommission,
		&a.Tasks.CompletedToday, &a.Tasks.CompletedTaskIDs, &a.Tasks.LastResetAt,
		&a.Cheat.Strikes, &a.Cheat.LastStrikeAt, &a.Cheat.BlockedUntil,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
