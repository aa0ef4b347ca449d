package service

import (
	"context"
	"errors"
	"strings"

	"reward_platform/internal/domain"
	"reward_platform/internal/logger"
	"reward_platform/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and login
type AuthService struct {
	accountRepo *repository.AccountRepository
}

func NewAuthService(accountRepo *repository.AccountRepository) *AuthService {
	return &AuthService{accountRepo: accountRepo}
}

// Register creates an account, optionally attached to a referrer by code.
// The referral attachment is permanent.
func (s *AuthService) Register(ctx context.Context, email, password, referralCode string) (*domain.Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 6 {
		return nil, "", ErrInvalidCredentials
	}

	var referredBy *int64
	if referralCode != "" {
		referrer, err := s.accountRepo.GetByReferralCode(ctx, strings.TrimSpace(referralCode))
		if err != nil {
			return nil, "", err
		}
		if referrer == nil {
			return nil, "", ErrInvalidReferralCode
		}
		referredBy = &referrer.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	account := &domain.Account{
		Email:        email,
		PasswordHash: string(hash),
		Role:         "user",
	}
	account.Referral.Code = newReferralCode()
	account.Referral.ReferredBy = referredBy

	if err := s.accountRepo.Create(ctx, account); err != nil {
		// referral code collisions are rare; retry once with a fresh code
		if errors.Is(err, repository.ErrReferralCodeTaken) {
			account.Referral.Code = newReferralCode()
			err = s.accountRepo.Create(ctx, account)
		}
		if err != nil {
			return nil, "", err
		}
	}

	if referredBy != nil {
		if err := s.accountRepo.IncrementReferralCount(ctx, *referredBy); err != nil {
			logger.Error("failed to bump referral count", "referrer_id", *referredBy, "error", err)
		}
	}

	token, err := GenerateJWT(account.ID, account.Role)
	if err != nil {
		return nil, "", err
	}

	logger.Info("account registered", "account_id", account.ID, "referred", referredBy != nil)
	return account, token, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, string, error) {
	account, err := s.accountRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", err
	}
	if account == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateJWT(account.ID, account.Role)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

func newReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
