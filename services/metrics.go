package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	verificationVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_verdicts_total",
			Help: "Classifier verdicts by outcome",
		},
		[]string{"verdict"},
	)
	leaderboardSyncs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_syncs_total",
			Help: "Leaderboard snapshot fetches by result",
		},
		[]string{"result"},
	)
)

// InitMetrics registers the engine metrics. Call this from main.go
func InitMetrics() {
	prometheus.MustRegister(verificationVerdicts)
	prometheus.MustRegister(leaderboardSyncs)
}
