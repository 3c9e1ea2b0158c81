package metrics

import (
	"trading-journal-api/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(subscriptionsTotal, trialsExpiredTotal)
}

var (
	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "subscriptions_total",
			Help: "Current number of subscription rows by tier.",
		},
		[]string{"tier"},
	)

	trialsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trials_expired_total",
			Help: "Total number of trials downgraded by the expiry worker.",
		},
	)
)

func SetSubscriptionsTotal(counts map[model.Tier]int) {
	for _, tier := range []model.Tier{model.TierFree, model.TierPro, model.TierMax} {
		subscriptionsTotal.WithLabelValues(string(tier)).Set(float64(counts[tier]))
	}
}

func IncTrialsExpired(count int) {
	trialsExpiredTotal.Add(float64(count))
}
