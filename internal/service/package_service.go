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

// PackageService sells packages and triggers the purchase fan-out.
type PackageService struct {
	db           *pgxpool.Pool
	accountRepo  *repository.AccountRepository
	packageRepo  *repository.PackageRepository
	purchaseRepo *repository.PurchaseRepository
	settingsRepo *repository.SettingsRepository
	referrals    *ReferralService
	hub          *ws.Hub
}

func NewPackageService(
	db *pgxpool.Pool,
	accountRepo *repository.AccountRepository,
	packageRepo *repository.PackageRepository,
	purchaseRepo *repository.PurchaseRepository,
	settingsRepo *repository.SettingsRepository,
	referrals *ReferralService,
	hub *ws.Hub,
) *PackageService {
	return &PackageService{
		db:           db,
		accountRepo:  accountRepo,
		packageRepo:  packageRepo,
		purchaseRepo: purchaseRepo,
		settingsRepo: settingsRepo,
		referrals:    referrals,
		hub:          hub,
	}
}

func (s *PackageService) List(ctx context.Context) ([]domain.Package, error) {
	return s.packageRepo.ListActive(ctx)
}

// Purchase debits the package price, activates it on the account and pays the
// upline in one transaction. The package's price and rank are snapshotted
// into the purchase record; later package edits never touch it.
func (s *PackageService) Purchase(ctx context.Context, accountID, packageID int64) (*domain.Purchase, decimal.Decimal, error) {
	pkg, err := s.packageRepo.GetByID(ctx, packageID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if pkg == nil || !pkg.IsActive {
		return nil, decimal.Zero, ErrPackageNotFound
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}

	chain, err := s.referrals.UplineChain(ctx, accountID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	account, err := s.accountRepo.GetForUpdateTx(ctx, tx, accountID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if account == nil {
		return nil, decimal.Zero, ErrAccountNotFound
	}

	newBalance, err := s.accountRepo.DebitTx(ctx, tx, accountID, pkg.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, decimal.Zero, ErrInsufficientFunds
		}
		return nil, decimal.Zero, err
	}

	purchase := &domain.Purchase{
		AccountID: accountID,
		PackageID: pkg.ID,
		Price:     pkg.Price,
		LevelRank: pkg.LevelRank,
	}
	if err := s.purchaseRepo.CreateTx(ctx, tx, purchase); err != nil {
		return nil, decimal.Zero, err
	}

	if err := s.accountRepo.SetPackageTx(ctx, tx, accountID, pkg.ID, pkg.LevelRank, pkg.Name, time.Now()); err != nil {
		return nil, decimal.Zero, err
	}

	if _, err := s.referrals.DistributeTx(ctx, tx, chain, CommissionSpec{
		SourceID:  accountID,
		EventID:   fmt.Sprintf("purchase:%d", purchase.ID),
		Kind:      domain.IncomePackageCommission,
		Base:      pkg.Price,
		Rates:     settings.ReferralCommission,
		PackageID: &pkg.ID,
	}); err != nil {
		return nil, decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, decimal.Zero, err
	}

	s.hub.Publish(accountID, ws.Event{Type: "package_activated", Payload: map[string]any{
		"package_id": pkg.ID,
		"level_rank": pkg.LevelRank,
		"balance":    newBalance,
	}})

	logger.Info("package purchased",
		"account_id", accountID, "package_id", pkg.ID, "price", pkg.Price,
		"previous_rank", account.LevelRank, "new_rank", pkg.LevelRank)

	return purchase, newBalance, nil
}
