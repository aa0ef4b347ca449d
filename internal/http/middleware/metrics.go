package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RLRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_requests_total",
			Help: "Total requests seen by the rate limiter",
		},
		[]string{"endpoint"},
	)
	RLBlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limiter_blocked_total",
			Help: "Total requests blocked by the rate limiter",
		},
		[]string{"endpoint"},
	)
	TaskCompletions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "task_completions_total",
			Help: "Total watch sessions completed with a payout",
		},
	)
	CheatStrikes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cheat_strikes_total",
			Help: "Total anti-cheat strikes recorded",
		},
	)
	CommissionsPaid = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_commissions_total",
			Help: "Referral commission credits by trigger kind",
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(RLRequests)
	prometheus.MustRegister(RLBlocked)
	prometheus.MustRegister(TaskCompletions)
	prometheus.MustRegister(CheatStrikes)
	prometheus.MustRegister(CommissionsPaid)
}
