package service

import (
	"context"
	"time"

	"reward_platform/internal/domain"
	"reward_platform/internal/repository"

	"github.com/shopspring/decimal"
)

// TaskService serves the task catalog view for one account.
type TaskService struct {
	accountRepo  *repository.AccountRepository
	taskRepo     *repository.TaskRepository
	packageRepo  *repository.PackageRepository
	settingsRepo *repository.SettingsRepository
}

func NewTaskService(
	accountRepo *repository.AccountRepository,
	taskRepo *repository.TaskRepository,
	packageRepo *repository.PackageRepository,
	settingsRepo *repository.SettingsRepository,
) *TaskService {
	return &TaskService{
		accountRepo:  accountRepo,
		taskRepo:     taskRepo,
		packageRepo:  packageRepo,
		settingsRepo: settingsRepo,
	}
}

// TaskView is one catalog row with per-account availability.
type TaskView struct {
	Task      domain.Task     `json:"task"`
	Reward    decimal.Decimal `json:"reward"`
	Completed bool            `json:"completed"`
}

// TaskListing is the catalog plus the account's daily budget.
type TaskListing struct {
	Tasks          []TaskView `json:"tasks"`
	CompletedToday int        `json:"completed_today"`
	DailyLimit     int        `json:"daily_limit"`
	TasksDisabled  bool       `json:"tasks_disabled"`
	Offday         bool       `json:"offday"`
}

// List returns the tasks visible to the account, resetting stale daily
// counters on first touch of a new day.
func (s *TaskService) List(ctx context.Context, accountID int64) (*TaskListing, error) {
	now := time.Now()

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	if account.Tasks.NeedsReset(now) {
		if err := s.accountRepo.ResetDaily(ctx, accountID, now); err != nil {
			return nil, err
		}
		account.Tasks = domain.DailyTasks{LastResetAt: &now}
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListActive(ctx, account.LevelRank)
	if err != nil {
		return nil, err
	}

	dailyLimit := 0
	if account.PackageID != nil {
		pkg, err := s.packageRepo.GetByID(ctx, *account.PackageID)
		if err != nil {
			return nil, err
		}
		if pkg != nil {
			dailyLimit = pkg.MaxDailyTasks
		}
	}

	listing := &TaskListing{
		Tasks:          make([]TaskView, 0, len(tasks)),
		CompletedToday: account.Tasks.CompletedToday,
		DailyLimit:     dailyLimit,
		TasksDisabled:  settings.TasksDisabled,
		Offday:         settings.Offday,
	}
	for _, t := range tasks {
		listing.Tasks = append(listing.Tasks, TaskView{
			Task:      t,
			Reward:    t.RewardForRank(account.LevelRank),
			Completed: account.Tasks.CompletedTask(t.ID),
		})
	}
	return listing, nil
}
