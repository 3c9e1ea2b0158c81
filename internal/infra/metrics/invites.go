package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(redemptionsTotal, inviteCodesCreatedTotal)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_redemptions_total",
			Help: "Redemption attempts by outcome (success/invalid_code/code_inactive/code_expired/max_uses_reached/already_redeemed/rate_limited/error).",
		},
		[]string{"outcome"},
	)

	inviteCodesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invite_codes_created_total",
			Help: "Invite codes created, by granted tier.",
		},
		[]string{"tier"},
	)
)

func IncRedemption(outcome string) {
	redemptionsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncInviteCodeCreated(tier string) {
	inviteCodesCreatedTotal.WithLabelValues(norm(tier)).Inc()
}
