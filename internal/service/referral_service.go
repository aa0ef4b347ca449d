package service

import (
	"context"
	"strings"

	"reward_platform/internal/domain"
	"reward_platform/internal/logger"
	"reward_platform/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ReferralOverview is the account's own referral dashboard.
type ReferralOverview struct {
	Code            string          `json:"code"`
	Count           int             `json:"count"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	LevelCounts     [3]int64        `json:"level_counts"`
	Downline        []DownlineEntry `json:"downline"`
}

type DownlineEntry struct {
	AccountID  int64           `json:"account_id"`
	Email      string          `json:"email"`
	LevelName  string          `json:"level_name"`
	JoinedAt   string          `json:"joined_at"`
	Commission decimal.Decimal `json:"commission"`
}

// maxReferralDepth bounds the upline walk; nothing past level 3 is ever paid.
const maxReferralDepth = 3

// ReferralService resolves upline chains and pays commissions.
type ReferralService struct {
	accountRepo *repository.AccountRepository
	ledgerRepo  *repository.LedgerRepository
}

func NewReferralService(accountRepo *repository.AccountRepository, ledgerRepo *repository.LedgerRepository) *ReferralService {
	return &ReferralService{accountRepo: accountRepo, ledgerRepo: ledgerRepo}
}

// Overview returns the referral code, direct downline and per-referral
// commission totals.
func (s *ReferralService) Overview(ctx context.Context, accountID int64) (*ReferralOverview, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	referrals, err := s.accountRepo.ListReferrals(ctx, accountID, 100)
	if err != nil {
		return nil, err
	}
	l1, l2, l3, err := s.accountRepo.CountReferralLevels(ctx, accountID)
	if err != nil {
		return nil, err
	}

	overview := &ReferralOverview{
		Code:            account.Referral.Code,
		Count:           account.Referral.Count,
		TotalCommission: account.Referral.TotalCommission,
		LevelCounts:     [3]int64{l1, l2, l3},
		Downline:        make([]DownlineEntry, 0, len(referrals)),
	}
	for _, ref := range referrals {
		commission, err := s.ledgerRepo.SumCommissionFrom(ctx, accountID, ref.ID)
		if err != nil {
			return nil, err
		}
		overview.Downline = append(overview.Downline, DownlineEntry{
			AccountID:  ref.ID,
			Email:      maskEmail(ref.Email),
			LevelName:  ref.LevelName,
			JoinedAt:   ref.CreatedAt.Format("2006-01-02"),
			Commission: commission,
		})
	}
	return overview, nil
}

func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 2 {
		return email
	}
	return email[:2] + "***" + email[at:]
}

// UplineChain walks at most three referrers up from the source account.
// The walk halts at the first ineligible (unapproved or blocked) link: that
// link and everything above it get nothing, even if a higher level would
// itself be eligible. A loop in the referral graph terminates via the
// visited set.
func (s *ReferralService) UplineChain(ctx context.Context, sourceID int64) ([]repository.UplineLink, error) {
	var chain []repository.UplineLink
	visited := map[int64]bool{sourceID: true}

	current, err := s.accountRepo.GetUplineLink(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	for level := 1; level <= maxReferralDepth; level++ {
		if current == nil || current.ReferredBy == nil {
			break
		}
		parentID := *current.ReferredBy
		if visited[parentID] {
			break
		}
		visited[parentID] = true

		parent, err := s.accountRepo.GetUplineLink(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil || !parent.Eligible() {
			break
		}
		chain = append(chain, *parent)
		current = parent
	}
	return chain, nil
}

// CommissionSpec describes one fan-out: which event, which rate table and
// which basis amount.
type CommissionSpec struct {
	SourceID  int64
	EventID   string
	Kind      domain.IncomeKind
	Base      decimal.Decimal
	Rates     domain.RateTable
	TaskID    *int64
	PackageID *int64
}

// DistributeTx credits each chain member inside the caller's transaction.
// Per-level idempotency comes from the ledger insert: a level already paid
// for this event is skipped without failing the others.
func (s *ReferralService) DistributeTx(ctx context.Context, tx pgx.Tx, chain []repository.UplineLink, spec CommissionSpec) (decimal.Decimal, error) {
	total := decimal.Zero

	for i, link := range chain {
		level := i + 1
		percent := spec.Rates.ForLevel(level)
		amount := domain.CommissionAmount(spec.Base, percent)
		if !amount.IsPositive() {
			continue
		}

		inserted, err := s.ledgerRepo.InsertTx(ctx, tx, &domain.IncomeEntry{
			AccountID:       link.ID,
			SourceAccountID: spec.SourceID,
			EventID:         spec.EventID,
			Kind:            spec.Kind,
			Level:           level,
			BaseAmount:      spec.Base,
			Percent:         percent,
			Amount:          amount,
			TaskID:          spec.TaskID,
			PackageID:       spec.PackageID,
		})
		if err != nil {
			return total, err
		}
		if !inserted {
			logger.Debug("commission already paid", "event_id", spec.EventID, "level", level)
			continue
		}

		if _, err := s.accountRepo.CreditTx(ctx, tx, link.ID, amount); err != nil {
			return total, err
		}
		if err := s.accountRepo.AddCommissionTx(ctx, tx, link.ID, amount); err != nil {
			return total, err
		}
		total = total.Add(amount)
	}
	return total, nil
}
