package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reward_platform/internal/domain"
	"reward_platform/internal/logger"
	"reward_platform/internal/repository"
	"reward_platform/internal/ws"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// WatchService owns the watch-session lifecycle: start, heartbeat, complete.
type WatchService struct {
	db           *pgxpool.Pool
	accountRepo  *repository.AccountRepository
	taskRepo     *repository.TaskRepository
	packageRepo  *repository.PackageRepository
	watchRepo    *repository.WatchRepository
	ledgerRepo   *repository.LedgerRepository
	settingsRepo *repository.SettingsRepository
	referrals    *ReferralService
	strikes      *StrikeService
	hub          *ws.Hub
}

func NewWatchService(
	db *pgxpool.Pool,
	accountRepo *repository.AccountRepository,
	taskRepo *repository.TaskRepository,
	packageRepo *repository.PackageRepository,
	watchRepo *repository.WatchRepository,
	ledgerRepo *repository.LedgerRepository,
	settingsRepo *repository.SettingsRepository,
	referrals *ReferralService,
	strikes *StrikeService,
	hub *ws.Hub,
) *WatchService {
	return &WatchService{
		db:           db,
		accountRepo:  accountRepo,
		taskRepo:     taskRepo,
		packageRepo:  packageRepo,
		watchRepo:    watchRepo,
		ledgerRepo:   ledgerRepo,
		settingsRepo: settingsRepo,
		referrals:    referrals,
		strikes:      strikes,
		hub:          hub,
	}
}

// StartWatch opens a viewing session if the account is allowed to earn from
// the task right now. All gates are read from a single settings snapshot.
func (s *WatchService) StartWatch(ctx context.Context, accountID, taskID int64, userAgent, ip string) (*domain.WatchSession, error) {
	now := time.Now()

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings.TasksDisabled {
		return nil, ErrTasksDisabled
	}
	if settings.Offday {
		return nil, ErrOffday
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.Cheat.Blocked(now) {
		return nil, ErrAccountBlocked
	}
	if account.PackageID == nil {
		return nil, ErrPackageRequired
	}

	if account.Tasks.NeedsReset(now) {
		if err := s.accountRepo.ResetDaily(ctx, accountID, now); err != nil {
			return nil, err
		}
		account.Tasks = domain.DailyTasks{LastResetAt: &now}
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || !task.IsActive {
		return nil, ErrTaskNotFound
	}
	if task.MinLevelRank > account.LevelRank {
		return nil, ErrTaskLevelLocked
	}
	if account.Tasks.CompletedTask(taskID) {
		return nil, ErrTaskAlreadyCompleted
	}

	if _, err := s.checkDailyLimit(ctx, account); err != nil {
		return nil, err
	}

	required := task.RequiredSeconds()
	session := &domain.WatchSession{
		AccountID:       accountID,
		TaskID:          taskID,
		Status:          domain.WatchStatusActive,
		RequiredSeconds: required,
		StartedAt:       now,
		CanCompleteAt:   now.Add(time.Duration(required) * time.Second),
		UserAgent:       userAgent,
		IP:              ip,
	}
	if err := s.watchRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	logger.Debug("watch session started", "account_id", accountID, "task_id", taskID, "session_id", session.ID)
	return session, nil
}

// Heartbeat advances the session by one second. Returns ErrWatchNotActive
// once the session is completed or expired.
func (s *WatchService) Heartbeat(ctx context.Context, accountID, sessionID int64, visible bool) (*domain.WatchSession, error) {
	session, err := s.watchRepo.Heartbeat(ctx, sessionID, accountID, visible)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrWatchNotActive
	}
	return session, nil
}

// CompleteResult is returned from a successful completion.
type CompleteResult struct {
	Session        *domain.WatchSession `json:"session"`
	Reward         decimal.Decimal      `json:"reward"`
	NewBalance     decimal.Decimal      `json:"new_balance"`
	CompletedToday int                  `json:"completed_today"`
	MaxDailyTasks  int                  `json:"max_daily_tasks"`
	Strikes        int                  `json:"strikes"`
}

// Complete settles an active session: anti-cheat gate, direct reward, daily
// counters and the referral fan-out, all in one transaction. Every failed
// gate records a strike outside the transaction, so the strike sticks
// whatever else happens; stale or too-short attempts additionally flag the
// session suspicious.
func (s *WatchService) Complete(ctx context.Context, accountID, sessionID, taskID int64) (*CompleteResult, error) {
	now := time.Now()

	session, err := s.watchRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		s.strikes.Record(ctx, accountID, domain.ErrWatchNotActive.Error())
		return nil, domain.ErrWatchNotActive
	}
	if err := session.CompletionCheck(accountID, taskID, now); err != nil {
		s.punishFailedAttempt(ctx, accountID, session, err)
		return nil, err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if settings.TasksDisabled {
		return nil, ErrTasksDisabled
	}
	if settings.Offday {
		return nil, ErrOffday
	}

	task, err := s.taskRepo.GetByID(ctx, session.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	chain, err := s.referrals.UplineChain(ctx, accountID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err = s.watchRepo.GetForUpdateTx(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrWatchNotActive
	}
	if err := session.CompletionCheck(accountID, taskID, now); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetForUpdateTx(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if account.Cheat.Blocked(now) {
		return nil, ErrAccountBlocked
	}

	if account.Tasks.NeedsReset(now) {
		if err := s.accountRepo.ResetDailyTx(ctx, tx, accountID, now); err != nil {
			return nil, err
		}
		account.Tasks = domain.DailyTasks{LastResetAt: &now}
	}
	if account.Tasks.CompletedTask(session.TaskID) {
		return nil, ErrTaskAlreadyCompleted
	}
	maxDailyTasks, err := s.checkDailyLimit(ctx, account)
	if err != nil {
		return nil, err
	}

	reward := task.RewardForRank(account.LevelRank)
	session.RewardEarned = reward
	if err := s.watchRepo.CompleteTx(ctx, tx, session); err != nil {
		return nil, err
	}

	eventID := fmt.Sprintf("watch:%d", session.ID)
	inserted, err := s.ledgerRepo.InsertTx(ctx, tx, &domain.IncomeEntry{
		AccountID:       accountID,
		SourceAccountID: accountID,
		EventID:         eventID,
		Kind:            domain.IncomeTaskReward,
		BaseAmount:      reward,
		Amount:          reward,
		TaskID:          &session.TaskID,
	})
	if err != nil {
		return nil, err
	}

	newBalance := account.Wallet.Balance
	if inserted {
		newBalance, err = s.accountRepo.CreditTx(ctx, tx, accountID, reward)
		if err != nil {
			return nil, err
		}
	}
	if err := s.accountRepo.RecordTaskCompletionTx(ctx, tx, accountID, session.TaskID); err != nil {
		return nil, err
	}

	if _, err := s.referrals.DistributeTx(ctx, tx, chain, CommissionSpec{
		SourceID: accountID,
		EventID:  eventID,
		Kind:     domain.IncomeTaskCommission,
		Base:     reward,
		Rates:    settings.TaskCommission,
		TaskID:   &session.TaskID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.hub.Publish(accountID, ws.Event{Type: "task_completed", Payload: map[string]any{
		"task_id": session.TaskID,
		"reward":  reward,
		"balance": newBalance,
	}})

	logger.Info("watch session completed",
		"account_id", accountID, "session_id", session.ID, "reward", reward)

	return &CompleteResult{
		Session:        session,
		Reward:         reward,
		NewBalance:     newBalance,
		CompletedToday: account.Tasks.CompletedToday + 1,
		MaxDailyTasks:  maxDailyTasks,
		Strikes:        account.Cheat.Strikes,
	}, nil
}

// punishFailedAttempt records a strike against the caller for any rejected
// completion. Stale and too-short attempts also flag the session; ownership
// and not-active failures do not, since the session itself may be fine.
func (s *WatchService) punishFailedAttempt(ctx context.Context, accountID int64, session *domain.WatchSession, cause error) {
	if errors.Is(cause, domain.ErrHeartbeatStale) || errors.Is(cause, domain.ErrWatchTooShort) {
		if err := s.watchRepo.MarkSuspicious(ctx, session.ID); err != nil {
			logger.Error("failed to flag session", "session_id", session.ID, "error", err)
		}
	}
	s.strikes.Record(ctx, accountID, cause.Error())
}

func (s *WatchService) checkDailyLimit(ctx context.Context, account *domain.Account) (int, error) {
	if account.PackageID == nil {
		return 0, ErrPackageRequired
	}
	pkg, err := s.packageRepo.GetByID(ctx, *account.PackageID)
	if err != nil {
		return 0, err
	}
	if pkg == nil {
		return 0, ErrPackageRequired
	}
	if pkg.MaxDailyTasks > 0 && account.Tasks.CompletedToday >= pkg.MaxDailyTasks {
		return pkg.MaxDailyTasks, ErrDailyLimitReached
	}
	return pkg.MaxDailyTasks, nil
}
