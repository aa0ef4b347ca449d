package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"reward_platform/internal/domain"
	"reward_platform/internal/http/middleware"
	"reward_platform/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetTasks(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}

	listing, err := h.TaskService.List(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load tasks"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *Handler) StartWatch(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}

	taskID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	session, err := h.WatchService.StartWatch(c.Request.Context(), accountID, taskID,
		c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		respondWatchError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

type heartbeatRequest struct {
	Visible *bool `json:"visible"`
}

func (h *Handler) Heartbeat(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}

	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	var req heartbeatRequest
	_ = c.ShouldBindJSON(&req)
	visible := req.Visible == nil || *req.Visible

	session, err := h.WatchService.Heartbeat(c.Request.Context(), accountID, sessionID, visible)
	if err != nil {
		if errors.Is(err, domain.ErrWatchNotActive) {
			c.JSON(http.StatusConflict, gin.H{"error": "session not active"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "heartbeat failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"watched_seconds": session.WatchedSeconds,
		"required":        session.RequiredSeconds,
		"can_complete_at": session.CanCompleteAt,
	})
}

type completeRequest struct {
	TaskID int64 `json:"task_id" binding:"required"`
}

func (h *Handler) CompleteWatch(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}

	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}

	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task_id required"})
		return
	}

	result, err := h.WatchService.Complete(c.Request.Context(), accountID, sessionID, req.TaskID)
	if err != nil {
		respondWatchError(c, err)
		return
	}

	middleware.TaskCompletions.Inc()
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetWatchHistory(c *gin.Context) {
	accountID, ok := getAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account not found"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	sessions, err := h.WatchRepo.ListByAccount(c.Request.Context(), accountID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	completed, totalEarned, err := h.WatchRepo.AccountTotals(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions":        sessions,
		"total_completed": completed,
		"total_earned":    totalEarned,
	})
}

func respondWatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrWatchNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": "session not active"})
	case errors.Is(err, domain.ErrWatchOwnership):
		c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
	case errors.Is(err, domain.ErrHeartbeatStale):
		middleware.CheatStrikes.Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "heartbeat stale, watch the video continuously"})
	case errors.Is(err, domain.ErrWatchTooShort):
		middleware.CheatStrikes.Inc()
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "required watch time not reached"})
	case errors.Is(err, service.ErrAccountBlocked):
		c.JSON(http.StatusForbidden, gin.H{"error": "account temporarily blocked"})
	case errors.Is(err, service.ErrTasksDisabled), errors.Is(err, service.ErrOffday):
		c.JSON(http.StatusForbidden, gin.H{"error": "tasks are currently unavailable"})
	case errors.Is(err, service.ErrPackageRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": "active package required"})
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, service.ErrTaskLevelLocked):
		c.JSON(http.StatusForbidden, gin.H{"error": "task requires a higher level"})
	case errors.Is(err, service.ErrTaskAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "task already completed today"})
	case errors.Is(err, service.ErrDailyLimitReached):
		c.JSON(http.StatusConflict, gin.H{"error": "daily task limit reached"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
