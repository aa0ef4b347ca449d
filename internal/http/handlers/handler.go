package handlers

import (
	"reward_platform/internal/config"
	"reward_platform/internal/repository"
	"reward_platform/internal/service"
	"reward_platform/internal/ws"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB  *pgxpool.Pool
	Hub *ws.Hub

	AccountRepo    *repository.AccountRepository
	TaskRepo       *repository.TaskRepository
	PackageRepo    *repository.PackageRepository
	WatchRepo      *repository.WatchRepository
	LedgerRepo     *repository.LedgerRepository
	DepositRepo    *repository.DepositRepository
	WithdrawalRepo *repository.WithdrawalRepository
	SettingsRepo   *repository.SettingsRepository

	AuthService     *service.AuthService
	TaskService     *service.TaskService
	WatchService    *service.WatchService
	PackageService  *service.PackageService
	WalletService   *service.WalletService
	ReferralService *service.ReferralService
	ResetService    *service.ResetService
	AdminService    *service.AdminService
}

func NewHandler(db *pgxpool.Pool, hub *ws.Hub, cfg *config.Config) *Handler {
	accountRepo := repository.NewAccountRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	watchRepo := repository.NewWatchRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	depositRepo := repository.NewDepositRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	referrals := service.NewReferralService(accountRepo, ledgerRepo)
	strikes := service.NewStrikeService(accountRepo, cfg.StrikeLimit, cfg.BlockMinutes)

	return &Handler{
		DB:             db,
		Hub:            hub,
		AccountRepo:    accountRepo,
		TaskRepo:       taskRepo,
		PackageRepo:    packageRepo,
		WatchRepo:      watchRepo,
		LedgerRepo:     ledgerRepo,
		DepositRepo:    depositRepo,
		WithdrawalRepo: withdrawalRepo,
		SettingsRepo:   settingsRepo,

		AuthService: service.NewAuthService(accountRepo),
		TaskService: service.NewTaskService(accountRepo, taskRepo, packageRepo, settingsRepo),
		WatchService: service.NewWatchService(
			db, accountRepo, taskRepo, packageRepo, watchRepo, ledgerRepo, settingsRepo, referrals, strikes, hub),
		PackageService: service.NewPackageService(
			db, accountRepo, packageRepo, purchaseRepo, settingsRepo, referrals, hub),
		WalletService: service.NewWalletService(
			db, accountRepo, depositRepo, withdrawalRepo, ledgerRepo, settingsRepo, referrals, hub,
			cfg.FeePercent, cfg.AllowedAmounts, cfg.MinAddressLength),
		ReferralService: referrals,
		ResetService:    service.NewResetService(accountRepo, settingsRepo),
		AdminService:    service.NewAdminService(db),
	}
}

func getAccountID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	val, ok := c.Get("account_id")
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
