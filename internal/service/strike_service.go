package service

import (
	"context"
	"time"

	"reward_platform/internal/logger"
	"reward_platform/internal/repository"
)

// StrikeService records anti-cheat strikes. Strikes are written on the pool,
// outside any surrounding transaction, so a rejected completion attempt keeps
// its strike even though the attempt itself rolled back.
type StrikeService struct {
	accountRepo  *repository.AccountRepository
	limit        int
	blockMinutes int
}

func NewStrikeService(accountRepo *repository.AccountRepository, limit, blockMinutes int) *StrikeService {
	return &StrikeService{
		accountRepo:  accountRepo,
		limit:        limit,
		blockMinutes: blockMinutes,
	}
}

// Record adds one strike; from the limit onward every strike blocks the
// account anew.
func (s *StrikeService) Record(ctx context.Context, accountID int64, reason string) {
	strikes, blockedUntil, err := s.accountRepo.AddStrike(ctx, accountID, s.limit, s.blockMinutes, time.Now())
	if err != nil {
		logger.Error("failed to record strike", "account_id", accountID, "error", err)
		return
	}

	if strikes >= s.limit && blockedUntil != nil && blockedUntil.After(time.Now()) {
		logger.Warn("account blocked for cheating",
			"account_id", accountID, "reason", reason, "blocked_until", *blockedUntil)
		return
	}
	logger.Warn("strike recorded", "account_id", accountID, "reason", reason, "strikes", strikes)
}
