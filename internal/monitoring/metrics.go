package monitoring

import "github.com/prometheus/client_golang/prometheus"

var (
	StakesPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stakes_placed_total",
			Help: "Total stakes placed",
		},
	)

	Resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_resolutions_total",
			Help: "Total session resolutions by outcome",
		},
		[]string{"outcome"},
	)

	RewardsClaimed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rewards_claimed_total",
			Help: "Total reward claims paid out",
		},
	)

	BankrollBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bankroll_balance",
			Help: "Current bankroll vault balance",
		},
	)
)

func Init() {
	prometheus.MustRegister(StakesPlaced)
	prometheus.MustRegister(Resolutions)
	prometheus.MustRegister(RewardsClaimed)
	prometheus.MustRegister(BankrollBalance)
}
