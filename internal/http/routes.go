package http

import (
	"time"

	"reward_platform/internal/config"
	"reward_platform/internal/http/handlers"
	"reward_platform/internal/http/middleware"
	"reward_platform/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, hub *ws.Hub, cfg *config.Config, version string) *handlers.Handler {
	h := handlers.NewHandler(db, hub, cfg)
	healthHandler := handlers.NewHealthHandler(db, version)

	rateWindow := time.Duration(cfg.RateWindow) * time.Second

	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	api := r.Group("/api")
	api.Use(middleware.RedisRateLimit(cfg.RateLimit, rateWindow))

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	api.GET("/ws", h.WSEvents)

	auth := api.Group("")
	auth.Use(middleware.JWT())
	{
		auth.GET("/me", h.GetProfile)
		auth.GET("/history", h.GetHistory)

		auth.GET("/tasks", h.GetTasks)
		auth.POST("/tasks/:id/watch", h.StartWatch)
		auth.POST("/watch/:id/heartbeat", h.Heartbeat)
		auth.POST("/watch/:id/complete", h.CompleteWatch)
		auth.GET("/watch/history", h.GetWatchHistory)

		auth.GET("/packages", h.GetPackages)
		auth.POST("/packages/:id/purchase", h.PurchasePackage)

		auth.POST("/deposits", h.SubmitDeposit)
		auth.POST("/withdrawals", h.RequestWithdrawal)
		auth.POST("/withdrawals/:id/cancel", h.CancelWithdrawal)

		auth.GET("/referrals", h.GetReferralOverview)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(), middleware.AdminOnly())
	{
		admin.GET("/deposits", h.AdminListPendingDeposits)
		admin.POST("/deposits/:id/approve", h.AdminApproveDeposit)
		admin.POST("/deposits/:id/reject", h.AdminRejectDeposit)

		admin.GET("/withdrawals", h.AdminListWithdrawals)
		admin.POST("/withdrawals/:id/approve", h.AdminApproveWithdrawal)
		admin.POST("/withdrawals/:id/paid", h.AdminMarkWithdrawalPaid)
		admin.POST("/withdrawals/:id/reject", h.AdminRejectWithdrawal)

		admin.POST("/tasks", h.AdminCreateTask)
		admin.PUT("/tasks/:id", h.AdminUpdateTask)
		admin.POST("/packages", h.AdminCreatePackage)
		admin.PUT("/packages/:id", h.AdminUpdatePackage)

		admin.GET("/settings", h.AdminGetSettings)
		admin.PUT("/settings", h.AdminUpdateSettings)

		admin.PUT("/accounts/:id/referral-flags", h.AdminSetReferralFlags)
		admin.GET("/watch/suspicious", h.AdminListSuspiciousSessions)
		admin.GET("/watch/analytics", h.AdminWatchAnalytics)
		admin.GET("/stats", h.AdminStats)
		admin.GET("/leaderboard", h.AdminCommissionLeaderboard)
		admin.POST("/reset/daily", h.AdminRunDailyReset)
	}

	return h
}
