package rewardrequest

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeSettled  = "settled"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var (
	submissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reward_request_submissions_total",
		Help: "Reward request submissions by outcome.",
	}, []string{"outcome"})

	claims = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reward_request_claims_total",
		Help: "Recorded reward requests by resulting status.",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(submissions, claims)
}
