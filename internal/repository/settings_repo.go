package repository

import (
	"context"
	"time"

	"reward_platform/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	db *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

const settingsColumns = `id, ref_level1, ref_level2, ref_level3,
	task_level1, task_level2, task_level3,
	tasks_disabled, offday, withdrawals_disabled, last_reset_at,
	usdt_address, btc_address, ltc_address`

// Get returns the single settings row, creating it with defaults on first use.
func (r *SettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO settings (id) VALUES (1) ON CONFLICT (id) DO NOTHING
	`); err != nil {
		return nil, err
	}

	var s domain.Settings
	err := r.db.QueryRow(ctx, `SELECT `+settingsColumns+` FROM settings WHERE id = 1`).Scan(
		&s.ID,
		&s.ReferralCommission.Level1, &s.ReferralCommission.Level2, &s.ReferralCommission.Level3,
		&s.TaskCommission.Level1, &s.TaskCommission.Level2, &s.TaskCommission.Level3,
		&s.TasksDisabled, &s.Offday, &s.WithdrawalsDisabled, &s.LastResetAt,
		&s.USDTAddress, &s.BTCAddress, &s.LTCAddress,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) Update(ctx context.Context, s *domain.Settings) error {
	_, err := r.db.Exec(ctx, `
		UPDATE settings
		SET ref_level1 = $1, ref_level2 = $2, ref_level3 = $3,
		    task_level1 = $4, task_level2 = $5, task_level3 = $6,
		    tasks_disabled = $7, offday = $8, withdrawals_disabled = $9,
		    usdt_address = $10, btc_address = $11, ltc_address = $12
		WHERE id = 1
	`,
		s.ReferralCommission.Level1, s.ReferralCommission.Level2, s.ReferralCommission.Level3,
		s.TaskCommission.Level1, s.TaskCommission.Level2, s.TaskCommission.Level3,
		s.TasksDisabled, s.Offday, s.WithdrawalsDisabled,
		s.USDTAddress, s.BTCAddress, s.LTCAddress,
	)
	return err
}

// MarkReset stamps the global daily reset time.
func (r *SettingsRepository) MarkReset(ctx context.Context, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE settings SET last_reset_at = $1 WHERE id = 1`, at)
	return err
}
