package service

import (
	"context"
	"time"

	"reward_platform/internal/logger"
	"reward_platform/internal/repository"
)

// ResetService zeroes daily task counters. The scheduled run and the lazy
// per-account reset are both idempotent: the date filter makes a repeated run
// on the same day a no-op.
type ResetService struct {
	accountRepo  *repository.AccountRepository
	settingsRepo *repository.SettingsRepository
}

func NewResetService(accountRepo *repository.AccountRepository, settingsRepo *repository.SettingsRepository) *ResetService {
	return &ResetService{accountRepo: accountRepo, settingsRepo: settingsRepo}
}

// RunDaily resets every stale account and stamps the global reset time.
func (s *ResetService) RunDaily(ctx context.Context) error {
	now := time.Now()

	affected, err := s.accountRepo.ResetDailyAll(ctx, now)
	if err != nil {
		return err
	}
	if err := s.settingsRepo.MarkReset(ctx, now); err != nil {
		return err
	}

	logger.Info("daily reset completed", "accounts_reset", affected)
	return nil
}
