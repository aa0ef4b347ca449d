package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"reward_platform/internal/domain"
	"reward_platform/internal/http/middleware"
	"reward_platform/internal/service"

	"github.com/gin-gonic/gin"
)

// --- deposits ---

func (h *Handler) AdminListPendingDeposits(c *gin.Context) {
	deposits, err := h.DepositRepo.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load deposits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposits": deposits})
}

func (h *Handler) AdminApproveDeposit(c *gin.Context) {
	depositID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deposit id"})
		return
	}

	deposit, err := h.WalletService.ApproveDeposit(c.Request.Context(), depositID)
	if err != nil {
		respondAdminError(c, err)
		return
	}

	middleware.CommissionsPaid.WithLabelValues(string(domain.IncomeDepositCommission)).Inc()
	c.JSON(http.StatusOK, gin.H{"deposit": deposit})
}

func (h *Handler) AdminRejectDeposit(c *gin.Context) {
	depositID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deposit id"})
		return
	}

	deposit, err := h.WalletService.RejectDeposit(c.Request.Context(), depositID)
	if err != nil {
		respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deposit": deposit})
}

// --- withdrawals ---

func (h *Handler) AdminListWithdrawals(c *gin.Context) {
	status := domain.WithdrawalStatus(c.DefaultQuery("status", "pending"))
	withdrawals, err := h.WithdrawalRepo.ListByStatus(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load withdrawals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": withdrawals})
}

type adminNoteRequest struct {
	Note string `json:"note"`
}

func (h *Handler) AdminApproveWithdrawal(c *gin.Context) {
	h.adminWithdrawalAction(c, h.WalletService.ApproveWithdrawal)
}

func (h *Handler) AdminMarkWithdrawalPaid(c *gin.Context) {
	h.adminWithdrawalAction(c, h.WalletService.MarkWithdrawalPaid)
}

func (h *Handler) AdminRejectWithdrawal(c *gin.Context) {
	h.adminWithdrawalAction(c, h.WalletService.RejectWithdrawal)
}

func (h *Handler) adminWithdrawalAction(c *gin.Context, action func(ctx context.Context, id int64, note string) error) {
	withdrawalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid withdrawal id"})
		return
	}

	var req adminNoteRequest
	_ = c.ShouldBindJSON(&req)

	if err := action(c.Request.Context(), withdrawalID, req.Note); err != nil {
		respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- catalog ---

func (h *Handler) AdminCreateTask(c *gin.Context) {
	var task domain.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task"})
		return
	}
	if err := h.TaskRepo.Create(c.Request.Context(), &task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

func (h *Handler) AdminUpdateTask(c *gin.Context) {
	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var task domain.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task"})
		return
	}
	task.ID = taskID

	if err := h.TaskRepo.Update(c.Request.Context(), &task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *Handler) AdminCreatePackage(c *gin.Context) {
	var pkg domain.Package
	if err := c.ShouldBindJSON(&pkg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package"})
		return
	}
	if err := h.PackageRepo.Create(c.Request.Context(), &pkg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create package"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"package": pkg})
}

func (h *Handler) AdminUpdatePackage(c *gin.Context) {
	packageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package id"})
		return
	}

	var pkg domain.Package
	if err := c.ShouldBindJSON(&pkg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package"})
		return
	}
	pkg.ID = packageID

	if err := h.PackageRepo.Update(c.Request.Context(), &pkg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update package"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"package": pkg})
}

// --- settings ---

func (h *Handler) AdminGetSettings(c *gin.Context) {
	settings, err := h.SettingsRepo.Get(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *Handler) AdminUpdateSettings(c *gin.Context) {
	var settings domain.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings"})
		return
	}
	if err := h.SettingsRepo.Update(c.Request.Context(), &settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// --- moderation ---

type referralFlagsRequest struct {
	Approved bool `json:"approved"`
	Blocked  bool `json:"blocked"`
}

func (h *Handler) AdminSetReferralFlags(c *gin.Context) {
	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	var req referralFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "approved and blocked required"})
		return
	}

	if err := h.AccountRepo.SetReferralFlags(c.Request.Context(), accountID, req.Approved, req.Blocked); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update flags"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) AdminListSuspiciousSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	sessions, err := h.WatchRepo.ListSuspicious(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sessions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// --- reporting ---

func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.AdminService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) AdminWatchAnalytics(c *gin.Context) {
	analytics, err := h.AdminService.WatchAnalytics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": analytics})
}

func (h *Handler) AdminCommissionLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	entries, err := h.AdminService.CommissionLeaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

func (h *Handler) AdminRunDailyReset(c *gin.Context) {
	if err := h.ResetService.RunDaily(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func respondAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDepositNotFound), errors.Is(err, service.ErrWithdrawalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, service.ErrAlreadyProcessed):
		c.JSON(http.StatusConflict, gin.H{"error": "record already processed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
