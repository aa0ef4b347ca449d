package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reward_platform/internal/domain"
	"reward_platform/internal/logger"
	"reward_platform/internal/repository"
	"reward_platform/internal/ws"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// WalletService owns deposits and the withdrawal escrow lifecycle.
//
// Withdrawals are two-phase: the full requested amount leaves the balance the
// moment the request is accepted, and only an admin decision settles the
// record. Rejected and cancelled withdrawals do NOT restore the escrowed
// amount.
type WalletService struct {
	db             *pgxpool.Pool
	accountRepo    *repository.AccountRepository
	depositRepo    *repository.DepositRepository
	withdrawalRepo *repository.WithdrawalRepository
	ledgerRepo     *repository.LedgerRepository
	settingsRepo   *repository.SettingsRepository
	referrals      *ReferralService
	hub            *ws.Hub

	feePercent       decimal.Decimal
	allowedAmounts   map[int64]bool
	minAddressLength int
}

func NewWalletService(
	db *pgxpool.Pool,
	accountRepo *repository.AccountRepository,
	depositRepo *repository.DepositRepository,
	withdrawalRepo *repository.WithdrawalRepository,
	ledgerRepo *repository.LedgerRepository,
	settingsRepo *repository.SettingsRepository,
	referrals *ReferralService,
	hub *ws.Hub,
	feePercent int,
	allowedAmounts []int64,
	minAddressLength int,
) *WalletService {
	allowed := make(map[int64]bool, len(allowedAmounts))
	for _, a := range allowedAmounts {
		allowed[a] = true
	}
	return &WalletService{
		db:               db,
		accountRepo:      accountRepo,
		depositRepo:      depositRepo,
		withdrawalRepo:   withdrawalRepo,
		ledgerRepo:       ledgerRepo,
		settingsRepo:     settingsRepo,
		referrals:        referrals,
		hub:              hub,
		feePercent:       decimal.NewFromInt(int64(feePercent)),
		allowedAmounts:   allowed,
		minAddressLength: minAddressLength,
	}
}

// SubmitDeposit records a pending top-up claim for admin review. Nothing is
// credited yet.
func (s *WalletService) SubmitDeposit(ctx context.Context, accountID int64, amount decimal.Decimal, currency, txHash, receiptPath string) (*domain.Deposit, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USDT"
	}

	deposit := &domain.Deposit{
		Reference:   uuid.NewString(),
		AccountID:   accountID,
		Amount:      amount.Round(2),
		Currency:    currency,
		TxHash:      strings.TrimSpace(txHash),
		ReceiptPath: receiptPath,
		Status:      domain.DepositStatusPending,
	}
	if err := s.depositRepo.Create(ctx, deposit); err != nil {
		return nil, err
	}

	logger.Info("deposit submitted", "account_id", accountID, "deposit_id", deposit.ID, "amount", deposit.Amount)
	return deposit, nil
}

// ApproveDeposit credits the depositor and pays the upline, atomically with
// moving the deposit to completed. Approving twice credits once: the status
// filter stops the second settle and the ledger key stops duplicate
// commissions regardless.
func (s *WalletService) ApproveDeposit(ctx context.Context, depositID int64) (*domain.Deposit, error) {
	now := time.Now()

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	deposit, err := s.depositRepo.GetByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit == nil {
		return nil, ErrDepositNotFound
	}

	chain, err := s.referrals.UplineChain(ctx, deposit.AccountID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	deposit, err = s.depositRepo.GetForUpdateTx(ctx, tx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit == nil {
		return nil, ErrDepositNotFound
	}
	if deposit.Status != domain.DepositStatusPending {
		return nil, ErrAlreadyProcessed
	}

	if err := s.depositRepo.SettleTx(ctx, tx, depositID, domain.DepositStatusCompleted, now); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyProcessed
		}
		return nil, err
	}

	balance, err := s.accountRepo.CreditBalanceTx(ctx, tx, deposit.AccountID, deposit.Amount)
	if err != nil {
		return nil, err
	}

	if _, err := s.referrals.DistributeTx(ctx, tx, chain, CommissionSpec{
		SourceID: deposit.AccountID,
		EventID:  fmt.Sprintf("deposit:%d", deposit.ID),
		Kind:     domain.IncomeDepositCommission,
		Base:     deposit.Amount,
		Rates:    settings.ReferralCommission,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	deposit.Status = domain.DepositStatusCompleted
	deposit.ProcessedAt = &now

	s.hub.Publish(deposit.AccountID, ws.Event{Type: "deposit_approved", Payload: map[string]any{
		"deposit_id": deposit.ID,
		"amount":     deposit.Amount,
		"balance":    balance,
	}})

	logger.Info("deposit approved", "deposit_id", deposit.ID, "account_id", deposit.AccountID, "amount", deposit.Amount)
	return deposit, nil
}

// RejectDeposit closes the claim without crediting anything.
func (s *WalletService) RejectDeposit(ctx context.Context, depositID int64) (*domain.Deposit, error) {
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	deposit, err := s.depositRepo.GetForUpdateTx(ctx, tx, depositID)
	if err != nil {
		return nil, err
	}
	if deposit == nil {
		return nil, ErrDepositNotFound
	}
	if deposit.Status != domain.DepositStatusPending {
		return nil, ErrAlreadyProcessed
	}

	if err := s.depositRepo.SettleTx(ctx, tx, depositID, domain.DepositStatusRejected, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	deposit.Status = domain.DepositStatusRejected
	deposit.ProcessedAt = &now

	s.hub.Publish(deposit.AccountID, ws.Event{Type: "deposit_rejected", Payload: map[string]any{
		"deposit_id": deposit.ID,
	}})
	return deposit, nil
}

// RequestWithdrawal validates the request and escrows the full amount: the
// balance drops by the requested amount immediately, before any admin sees it.
func (s *WalletService) RequestWithdrawal(ctx context.Context, accountID int64, amount decimal.Decimal, address string) (*domain.Withdrawal, decimal.Decimal, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if settings.WithdrawalsDisabled {
		return nil, decimal.Zero, ErrWithdrawalsDisabled
	}

	if !amount.IsPositive() || !amount.Equal(amount.Truncate(0)) || !s.allowedAmounts[amount.IntPart()] {
		return nil, decimal.Zero, ErrAmountNotAllowed
	}
	address = strings.TrimSpace(address)
	if len(address) < s.minAddressLength {
		return nil, decimal.Zero, ErrAddressTooShort
	}

	fee, final := domain.WithdrawalFee(amount, s.feePercent)

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
	if account.Cheat.Blocked(time.Now()) {
		return nil, decimal.Zero, ErrAccountBlocked
	}

	newBalance, err := s.accountRepo.DebitTx(ctx, tx, accountID, amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, decimal.Zero, ErrInsufficientFunds
		}
		return nil, decimal.Zero, err
	}

	withdrawal := &domain.Withdrawal{
		Reference:       uuid.NewString(),
		AccountID:       accountID,
		RequestedAmount: amount,
		FeePercent:      s.feePercent,
		FeeAmount:       fee,
		FinalAmount:     final,
		WalletAddress:   address,
		Status:          domain.WithdrawalStatusPending,
	}
	if err := s.withdrawalRepo.CreateTx(ctx, tx, withdrawal); err != nil {
		return nil, decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, decimal.Zero, err
	}

	logger.Info("withdrawal requested",
		"account_id", accountID, "withdrawal_id", withdrawal.ID,
		"requested", amount, "final", final)

	return withdrawal, newBalance, nil
}

// ApproveWithdrawal moves pending to approved. Money already left the wallet.
func (s *WalletService) ApproveWithdrawal(ctx context.Context, withdrawalID int64, note string) error {
	return s.transition(ctx, withdrawalID,
		[]domain.WithdrawalStatus{domain.WithdrawalStatusPending},
		domain.WithdrawalStatusApproved, note, "withdrawal_approved")
}

// MarkWithdrawalPaid finalizes the payout and books the net amount into
// total_withdrawn.
func (s *WalletService) MarkWithdrawalPaid(ctx context.Context, withdrawalID int64, note string) error {
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	w, err := s.withdrawalRepo.GetForUpdateTx(ctx, tx, withdrawalID)
	if err != nil {
		return err
	}
	if w == nil {
		return ErrWithdrawalNotFound
	}
	if w.Status.Terminal() {
		return ErrAlreadyProcessed
	}

	err = s.withdrawalRepo.TransitionTx(ctx, tx, withdrawalID,
		[]domain.WithdrawalStatus{domain.WithdrawalStatusPending, domain.WithdrawalStatusApproved},
		domain.WithdrawalStatusPaid, note, now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAlreadyProcessed
		}
		return err
	}

	if err := s.accountRepo.AddTotalWithdrawnTx(ctx, tx, w.AccountID, w.FinalAmount); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.hub.Publish(w.AccountID, ws.Event{Type: "withdrawal_paid", Payload: map[string]any{
		"withdrawal_id": w.ID,
		"final_amount":  w.FinalAmount,
	}})

	logger.Info("withdrawal paid", "withdrawal_id", w.ID, "account_id", w.AccountID, "final", w.FinalAmount)
	return nil
}

// RejectWithdrawal closes the request. The escrowed amount is not returned;
// admins compensate out of band when warranted.
func (s *WalletService) RejectWithdrawal(ctx context.Context, withdrawalID int64, note string) error {
	return s.transition(ctx, withdrawalID,
		[]domain.WithdrawalStatus{domain.WithdrawalStatusPending, domain.WithdrawalStatusApproved},
		domain.WithdrawalStatusRejected, note, "withdrawal_rejected")
}

// CancelWithdrawal is the user's own escape hatch, valid only while pending.
// Like rejection it does not restore the escrowed amount.
func (s *WalletService) CancelWithdrawal(ctx context.Context, withdrawalID, accountID int64) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.withdrawalRepo.CancelTx(ctx, tx, withdrawalID, accountID, time.Now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAlreadyProcessed
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	logger.Info("withdrawal cancelled", "withdrawal_id", withdrawalID, "account_id", accountID)
	return nil
}

func (s *WalletService) transition(ctx context.Context, withdrawalID int64, from []domain.WithdrawalStatus, to domain.WithdrawalStatus, note, event string) error {
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	w, err := s.withdrawalRepo.GetForUpdateTx(ctx, tx, withdrawalID)
	if err != nil {
		return err
	}
	if w == nil {
		return ErrWithdrawalNotFound
	}

	err = s.withdrawalRepo.TransitionTx(ctx, tx, withdrawalID, from, to, note, now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAlreadyProcessed
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.hub.Publish(w.AccountID, ws.Event{Type: event, Payload: map[string]any{
		"withdrawal_id": w.ID,
	}})
	return nil
}

// History bundles the account's money movements for the wallet screen.
type History struct {
	Deposits    []domain.Deposit     `json:"deposits"`
	Withdrawals []domain.Withdrawal  `json:"withdrawals"`
	Income      []domain.IncomeEntry `json:"income"`
}

func (s *WalletService) History(ctx context.Context, accountID int64, limit int) (*History, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	deposits, err := s.depositRepo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, err
	}
	withdrawals, err := s.withdrawalRepo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, err
	}
	income, err := s.ledgerRepo.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, err
	}

	return &History{Deposits: deposits, Withdrawals: withdrawals, Income: income}, nil
}
