package service

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAmount      = errors.New("invalid amount")

	ErrAccountBlocked       = errors.New("account temporarily blocked")
	ErrTasksDisabled        = errors.New("tasks are disabled")
	ErrOffday               = errors.New("no tasks on an off day")
	ErrPackageRequired      = errors.New("active package required")
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskLevelLocked      = errors.New("task requires a higher level")
	ErrTaskAlreadyCompleted = errors.New("task already completed today")
	ErrDailyLimitReached    = errors.New("daily task limit reached")

	ErrPackageNotFound = errors.New("package not found")

	ErrDepositNotFound     = errors.New("deposit not found")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrWithdrawalsDisabled = errors.New("withdrawals are disabled")
	ErrAmountNotAllowed    = errors.New("withdrawal amount not allowed")
	ErrAddressTooShort     = errors.New("wallet address too short")
	ErrAlreadyProcessed    = errors.New("record already processed")

	ErrInvalidReferralCode = errors.New("invalid referral code")
)
