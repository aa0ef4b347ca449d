package integration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"reward_platform/internal/domain"
	"reward_platform/internal/repository"
	"reward_platform/internal/service"
)

func applyMigrationsToPool(t *testing.T, dbp *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := dbp.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func connectTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	dbp, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(dbp.Close)
	applyMigrationsToPool(t, dbp)
	return dbp
}

func createTestAccount(t *testing.T, repo *repository.AccountRepository, email string, referredBy *int64) *domain.Account {
	t.Helper()
	a := &domain.Account{
		Email:        email,
		PasswordHash: "x",
		Role:         "user",
	}
	a.Referral.Code = fmt.Sprintf("T%d", time.Now().UnixNano()%1e9)
	a.Referral.ReferredBy = referredBy
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("create account %s: %v", email, err)
	}
	return a
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@test.local", prefix, time.Now().UnixNano())
}

// A repeated insert of the same (account, event, kind, level) tuple must be
// absorbed, and the wallet credited exactly once.
func TestLedgerIdempotentCredit(t *testing.T) {
	dbp := connectTestDB(t)
	ctx := context.Background()

	accountRepo := repository.NewAccountRepository(dbp)
	ledgerRepo := repository.NewLedgerRepository(dbp)

	account := createTestAccount(t, accountRepo, uniqueEmail("ledger"), nil)

	credit := func() bool {
		tx, err := dbp.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		inserted, err := ledgerRepo.InsertTx(ctx, tx, &domain.IncomeEntry{
			AccountID:       account.ID,
			SourceAccountID: account.ID,
			EventID:         fmt.Sprintf("watch:%d", account.ID),
			Kind:            domain.IncomeTaskReward,
			BaseAmount:      decimal.NewFromInt(2),
			Amount:          decimal.NewFromInt(2),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if inserted {
			if _, err := accountRepo.CreditTx(ctx, tx, account.ID, decimal.NewFromInt(2)); err != nil {
				t.Fatalf("credit: %v", err)
			}
		}
		if err := tx.Commit(ctx); err != nil {
			t.Fatalf("commit: %v", err)
		}
		return inserted
	}

	if !credit() {
		t.Fatal("first insert should land")
	}
	if credit() {
		t.Fatal("second insert with same key should be absorbed")
	}

	got, err := accountRepo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.Wallet.Balance.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("balance = %s, want 2 (paid exactly once)", got.Wallet.Balance)
	}
	if !got.Wallet.TotalEarned.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("total_earned = %s, want 2", got.Wallet.TotalEarned)
	}
}

// The chain walk stops at the first unapproved or blocked upline; eligible
// accounts above the break get nothing.
func TestUplineChainHaltsAtIneligible(t *testing.T) {
	dbp := connectTestDB(t)
	ctx := context.Background()

	accountRepo := repository.NewAccountRepository(dbp)
	ledgerRepo := repository.NewLedgerRepository(dbp)
	referrals := service.NewReferralService(accountRepo, ledgerRepo)

	// l3 <- l2 <- l1 <- source, with l2 blocked
	l3 := createTestAccount(t, accountRepo, uniqueEmail("l3"), nil)
	l2 := createTestAccount(t, accountRepo, uniqueEmail("l2"), &l3.ID)
	l1 := createTestAccount(t, accountRepo, uniqueEmail("l1"), &l2.ID)
	source := createTestAccount(t, accountRepo, uniqueEmail("src"), &l1.ID)

	if err := accountRepo.SetReferralFlags(ctx, l2.ID, true, true); err != nil {
		t.Fatalf("block l2: %v", err)
	}

	chain, err := referrals.UplineChain(ctx, source.ID)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(chain) != 1 {
		t.Fatalf("chain length = %d, want 1 (halt at blocked level 2)", len(chain))
	}
	if chain[0].ID != l1.ID {
		t.Fatalf("chain[0] = %d, want %d", chain[0].ID, l1.ID)
	}
}

// Full fan-out: three eligible uplines paid 10/5/2 of the deposit, recorded
// per level, idempotent across a replay.
func TestDistributeDepositCommissions(t *testing.T) {
	dbp := connectTestDB(t)
	ctx := context.Background()

	accountRepo := repository.NewAccountRepository(dbp)
	ledgerRepo := repository.NewLedgerRepository(dbp)
	referrals := service.NewReferralService(accountRepo, ledgerRepo)

	l3 := createTestAccount(t, accountRepo, uniqueEmail("d3"), nil)
	l2 := createTestAccount(t, accountRepo, uniqueEmail("d2"), &l3.ID)
	l1 := createTestAccount(t, accountRepo, uniqueEmail("d1"), &l2.ID)
	source := createTestAccount(t, accountRepo, uniqueEmail("dsrc"), &l1.ID)

	chain, err := referrals.UplineChain(ctx, source.ID)
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("chain length = %d, want 3", len(chain))
	}

	spec := service.CommissionSpec{
		SourceID: source.ID,
		EventID:  fmt.Sprintf("deposit:%d", source.ID),
		Kind:     domain.IncomeDepositCommission,
		Base:     decimal.NewFromInt(100),
		Rates:    domain.DefaultReferralRates(),
	}

	distribute := func() decimal.Decimal {
		tx, err := dbp.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()
		total, err := referrals.DistributeTx(ctx, tx, chain, spec)
		if err != nil {
			t.Fatalf("distribute: %v", err)
		}
		if err := tx.Commit(ctx); err != nil {
			t.Fatalf("commit: %v", err)
		}
		return total
	}

	if total := distribute(); !total.Equal(decimal.NewFromInt(17)) {
		t.Fatalf("first run paid %s, want 17", total)
	}
	if total := distribute(); !total.IsZero() {
		t.Fatalf("replay paid %s, want 0", total)
	}

	for i, want := range []int64{10, 5, 2} {
		upline := chain[i]
		got, err := accountRepo.GetByID(ctx, upline.ID)
		if err != nil {
			t.Fatalf("reload: %v", err)
		}
		if !got.Wallet.Balance.Equal(decimal.NewFromInt(want)) {
			t.Fatalf("level %d balance = %s, want %d", i+1, got.Wallet.Balance, want)
		}
		if !got.Referral.TotalCommission.Equal(decimal.NewFromInt(want)) {
			t.Fatalf("level %d commission = %s, want %d", i+1, got.Referral.TotalCommission, want)
		}
	}
}

// The full requested amount leaves the balance at request time, and rejection
// does not put it back.
func TestWithdrawalEscrowNoRefund(t *testing.T) {
	dbp := connectTestDB(t)
	ctx := context.Background()

	accountRepo := repository.NewAccountRepository(dbp)
	depositRepo := repository.NewDepositRepository(dbp)
	withdrawalRepo := repository.NewWithdrawalRepository(dbp)
	ledgerRepo := repository.NewLedgerRepository(dbp)
	settingsRepo := repository.NewSettingsRepository(dbp)
	referrals := service.NewReferralService(accountRepo, ledgerRepo)

	wallet := service.NewWalletService(dbp, accountRepo, depositRepo, withdrawalRepo,
		ledgerRepo, settingsRepo, referrals, nil,
		10, []int64{10, 30, 50, 100}, 10)

	account := createTestAccount(t, accountRepo, uniqueEmail("escrow"), nil)

	// fund the account
	tx, err := dbp.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := accountRepo.CreditBalanceTx(ctx, tx, account.ID, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	w, balance, err := wallet.RequestWithdrawal(ctx, account.ID, decimal.NewFromInt(30), "TTestAddr123456")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("post-escrow balance = %s, want 70", balance)
	}
	if !w.FeeAmount.Equal(decimal.NewFromInt(3)) || !w.FinalAmount.Equal(decimal.NewFromInt(27)) {
		t.Fatalf("fee/final = %s/%s, want 3/27", w.FeeAmount, w.FinalAmount)
	}

	if err := wallet.RejectWithdrawal(ctx, w.ID, "bad address"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	got, err := accountRepo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.Wallet.Balance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("balance after rejection = %s, want 70 (no refund)", got.Wallet.Balance)
	}

	// a settled withdrawal admits no further transitions
	if err := wallet.MarkWithdrawalPaid(ctx, w.ID, ""); err == nil {
		t.Fatal("paid after rejected should fail")
	}

	// disallowed amount is rejected up front
	if _, _, err := wallet.RequestWithdrawal(ctx, account.ID, decimal.NewFromInt(25), "TTestAddr123456"); err == nil {
		t.Fatal("amount 25 is not in the allow list")
	}
}

// Every rejected completion attempt costs the caller a strike, including
// ownership mismatches and completions against missing sessions. Only stale
// and too-short attempts flag the session itself.
func TestCompletionFailureStrikes(t *testing.T) {
	dbp := connectTestDB(t)
	ctx := context.Background()

	accountRepo := repository.NewAccountRepository(dbp)
	taskRepo := repository.NewTaskRepository(dbp)
	packageRepo := repository.NewPackageRepository(dbp)
	watchRepo := repository.NewWatchRepository(dbp)
	ledgerRepo := repository.NewLedgerRepository(dbp)
	settingsRepo := repository.NewSettingsRepository(dbp)
	referrals := service.NewReferralService(accountRepo, ledgerRepo)
	strikes := service.NewStrikeService(accountRepo, 5, 60)

	watch := service.NewWatchService(dbp, accountRepo, taskRepo, packageRepo,
		watchRepo, ledgerRepo, settingsRepo, referrals, strikes, nil)

	account := createTestAccount(t, accountRepo, uniqueEmail("strike"), nil)
	task := &domain.Task{Title: "clip", WatchSeconds: 15, IsActive: true}
	if err := taskRepo.Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	now := time.Now()
	session := &domain.WatchSession{
		AccountID:       account.ID,
		TaskID:          task.ID,
		RequiredSeconds: 15,
		StartedAt:       now,
		CanCompleteAt:   now.Add(15 * time.Second),
	}
	if err := watchRepo.Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	// wrong task id
	if _, err := watch.Complete(ctx, account.ID, session.ID, task.ID+1); !errors.Is(err, domain.ErrWatchOwnership) {
		t.Fatalf("complete with wrong task: %v, want ErrWatchOwnership", err)
	}
	// no such session
	if _, err := watch.Complete(ctx, account.ID, session.ID+1000000, task.ID); !errors.Is(err, domain.ErrWatchNotActive) {
		t.Fatalf("complete missing session: %v, want ErrWatchNotActive", err)
	}

	got, err := accountRepo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Cheat.Strikes != 2 {
		t.Fatalf("strikes = %d, want 2 (one per failed attempt)", got.Cheat.Strikes)
	}

	reloaded, err := watchRepo.GetByID(ctx, session.ID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if reloaded.Suspicious {
		t.Fatal("ownership failure must not flag the session")
	}
}

// A heartbeat reporting the viewing surface hidden flags the session; later
// visible heartbeats do not clear the flag.
func TestHeartbeatHiddenFlagsSession(t *testing.T) {
	dbp := connectTestDB(t)
	ctx := context.Background()

	accountRepo := repository.NewAccountRepository(dbp)
	taskRepo := repository.NewTaskRepository(dbp)
	watchRepo := repository.NewWatchRepository(dbp)

	account := createTestAccount(t, accountRepo, uniqueEmail("hidden"), nil)
	task := &domain.Task{Title: "clip", WatchSeconds: 15, IsActive: true}
	if err := taskRepo.Create(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	now := time.Now()
	session := &domain.WatchSession{
		AccountID:       account.ID,
		TaskID:          task.ID,
		RequiredSeconds: 15,
		StartedAt:       now,
		CanCompleteAt:   now.Add(15 * time.Second),
	}
	if err := watchRepo.Create(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := watchRepo.Heartbeat(ctx, session.ID, account.ID, false)
	if err != nil {
		t.Fatalf("hidden heartbeat: %v", err)
	}
	if !got.Suspicious || got.VisibilityBreaks != 1 {
		t.Fatalf("after hidden heartbeat suspicious=%v breaks=%d, want true/1", got.Suspicious, got.VisibilityBreaks)
	}

	got, err = watchRepo.Heartbeat(ctx, session.ID, account.ID, true)
	if err != nil {
		t.Fatalf("visible heartbeat: %v", err)
	}
	if !got.Suspicious {
		t.Fatal("visible heartbeat cleared the suspicious flag")
	}
}

// Hitting the strike limit blocks the account for the block window, the
// counter keeps counting past the limit, and the block gate releases once
// the window expires.
func TestStrikeAutoBlock(t *testing.T) {
	dbp := connectTestDB(t)
	ctx := context.Background()

	accountRepo := repository.NewAccountRepository(dbp)
	taskRepo := repository.NewTaskRepository(dbp)
	packageRepo := repository.NewPackageRepository(dbp)
	watchRepo := repository.NewWatchRepository(dbp)
	ledgerRepo := repository.NewLedgerRepository(dbp)
	settingsRepo := repository.NewSettingsRepository(dbp)
	referrals := service.NewReferralService(accountRepo, ledgerRepo)

	const limit, blockMinutes = 3, 30
	strikes := service.NewStrikeService(accountRepo, limit, blockMinutes)
	watch := service.NewWatchService(dbp, accountRepo, taskRepo, packageRepo,
		watchRepo, ledgerRepo, settingsRepo, referrals, strikes, nil)

	account := createTestAccount(t, accountRepo, uniqueEmail("block"), nil)

	for i := 0; i < limit-1; i++ {
		strikes.Record(ctx, account.ID, "test violation")
	}
	got, err := accountRepo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Cheat.Blocked(time.Now()) {
		t.Fatalf("blocked after %d strikes, limit is %d", limit-1, limit)
	}

	strikes.Record(ctx, account.ID, "test violation")
	got, err = accountRepo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.Cheat.Blocked(time.Now()) {
		t.Fatal("not blocked at the strike limit")
	}
	if got.Cheat.Strikes != limit {
		t.Fatalf("strikes = %d, want %d (counter keeps counting)", got.Cheat.Strikes, limit)
	}
	wantUntil := time.Now().Add(blockMinutes * time.Minute)
	if got.Cheat.BlockedUntil == nil || got.Cheat.BlockedUntil.Before(wantUntil.Add(-time.Minute)) ||
		got.Cheat.BlockedUntil.After(wantUntil.Add(time.Minute)) {
		t.Fatalf("blocked_until = %v, want about %v", got.Cheat.BlockedUntil, wantUntil)
	}

	// past the limit every strike counts and re-blocks
	strikes.Record(ctx, account.ID, "test violation")
	got, err = accountRepo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Cheat.Strikes != limit+1 {
		t.Fatalf("strikes = %d, want %d", got.Cheat.Strikes, limit+1)
	}
	if !got.Cheat.Blocked(time.Now()) {
		t.Fatal("strike past the limit did not re-block")
	}

	if _, err := watch.StartWatch(ctx, account.ID, 1, "ua", "ip"); !errors.Is(err, service.ErrAccountBlocked) {
		t.Fatalf("start while blocked: %v, want ErrAccountBlocked", err)
	}

	// expire the block; the gate must release (the next failure is the
	// missing package, not the block)
	if _, err := dbp.Exec(ctx, `UPDATE accounts SET blocked_until = now() - interval '1 minute' WHERE id = $1`, account.ID); err != nil {
		t.Fatalf("expire block: %v", err)
	}
	if _, err := watch.StartWatch(ctx, account.ID, 1, "ua", "ip"); !errors.Is(err, service.ErrPackageRequired) {
		t.Fatalf("start after expiry: %v, want ErrPackageRequired", err)
	}
}

// Level counts follow referred_by three levels down across siblings.
func TestReferralLevelCounts(t *testing.T) {
	dbp := connectTestDB(t)
	ctx := context.Background()

	accountRepo := repository.NewAccountRepository(dbp)

	root := createTestAccount(t, accountRepo, uniqueEmail("tree"), nil)
	c1a := createTestAccount(t, accountRepo, uniqueEmail("c1a"), &root.ID)
	createTestAccount(t, accountRepo, uniqueEmail("c1b"), &root.ID)
	c2 := createTestAccount(t, accountRepo, uniqueEmail("c2"), &c1a.ID)
	createTestAccount(t, accountRepo, uniqueEmail("c3"), &c2.ID)

	l1, l2, l3, err := accountRepo.CountReferralLevels(ctx, root.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if l1 != 2 || l2 != 1 || l3 != 1 {
		t.Fatalf("levels = %d/%d/%d, want 2/1/1", l1, l2, l3)
	}
}

// Repeated daily resets on the same day are no-ops.
func TestDailyResetIdempotent(t *testing.T) {
	dbp := connectTestDB(t)
	ctx := context.Background()

	accountRepo := repository.NewAccountRepository(dbp)
	settingsRepo := repository.NewSettingsRepository(dbp)
	reset := service.NewResetService(accountRepo, settingsRepo)

	account := createTestAccount(t, accountRepo, uniqueEmail("reset"), nil)

	// age the counters to yesterday
	yesterday := time.Now().Add(-24 * time.Hour)
	if _, err := dbp.Exec(ctx, `
		UPDATE accounts SET completed_today = 3, completed_task_ids = '{1,2,3}', last_reset_at = $2
		WHERE id = $1
	`, account.ID, yesterday); err != nil {
		t.Fatalf("age: %v", err)
	}

	if err := reset.RunDaily(ctx); err != nil {
		t.Fatalf("first reset: %v", err)
	}

	got, err := accountRepo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Tasks.CompletedToday != 0 || len(got.Tasks.CompletedTaskIDs) != 0 {
		t.Fatalf("counters not reset: %+v", got.Tasks)
	}

	// touch today's counters, then rerun; they must survive
	if _, err := dbp.Exec(ctx, `UPDATE accounts SET completed_today = 1 WHERE id = $1`, account.ID); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if err := reset.RunDaily(ctx); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	got, err = accountRepo.GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Tasks.CompletedToday != 1 {
		t.Fatalf("same-day rerun clobbered counters: %d", got.Tasks.CompletedToday)
	}
}
