package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"reward_platform/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) GetProfile(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}

	account, err := h.AccountRepo.GetByID(c.Request.Context(), accountID)
	if err != nil || account == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	sums, err := h.LedgerRepo.SumByKind(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load earnings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account, "earnings_by_kind": sums})
}

type depositRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Currency    string          `json:"currency"`
	TxHash      string          `json:"tx_hash" binding:"required"`
	ReceiptPath string          `json:"receipt_path"`
}

func (h *Handler) SubmitDeposit(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}

	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and tx_hash required"})
		return
	}

	deposit, err := h.WalletService.SubmitDeposit(c.Request.Context(), accountID,
		req.Amount, req.Currency, req.TxHash, req.ReceiptPath)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit deposit"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"deposit": deposit})
}

type withdrawalRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Address string          `json:"address" binding:"required"`
}

func (h *Handler) RequestWithdrawal(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}

	var req withdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and address required"})
		return
	}

	withdrawal, balance, err := h.WalletService.RequestWithdrawal(c.Request.Context(), accountID, req.Amount, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawalsDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": "withdrawals are disabled"})
		case errors.Is(err, service.ErrAmountNotAllowed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "withdrawal amount not allowed"})
		case errors.Is(err, service.ErrAddressTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": "wallet address too short"})
		case errors.Is(err, service.ErrInsufficientFunds):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient balance"})
		case errors.Is(err, service.ErrAccountBlocked):
			c.JSON(http.StatusForbidden, gin.H{"error": "account temporarily blocked"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to request withdrawal"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"withdrawal": withdrawal, "balance": balance})
}

func (h *Handler) CancelWithdrawal(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}

	withdrawalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}

	if err := h.WalletService.CancelWithdrawal(c.Request.Context(), withdrawalID, accountID); err != nil {
		if errors.Is(err, service.ErrAlreadyProcessed) {
			c.JSON(http.StatusConflict, gin.H{"error": "withdrawal is no longer pending"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel withdrawal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (h *Handler) GetHistory(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	history, err := h.WalletService.History(c.Request.Context(), accountID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, history)
}
