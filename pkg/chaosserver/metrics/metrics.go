package metrics

import (
	"strconv"
	"time"

	gh "github.com/google/go-github/v45/github"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apitype "github.com/openchaos/chaosboard/pkg/apis/api"
)

const (
	openPullRequestsMetricName   = "chaosboard_open_pull_requests"
	leaderboardVotesMetricName   = "chaosboard_leaderboard_votes"
	secondsUntilMergeMetricName  = "chaosboard_seconds_until_merge"
	rateLimitRemainingMetricName = "chaosboard_github_rate_limit_remaining"
)

var (
	openPullRequestsMetric = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: openPullRequestsMetricName,
		Help: "Number of open pull requests by state (total, mergeable, checks_passing).",
	}, []string{"state"})
	leaderboardVotesMetric = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: leaderboardVotesMetricName,
		Help: "Net votes of each pull request on the merge leaderboard, by rank.",
	}, []string{"rank", "number"})
	voteDistributionMetric = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "chaosboard_votes",
		Help: "Distribution of net votes across open pull requests (total, median, p90).",
	}, []string{"stat"})
	secondsUntilMergeMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: secondsUntilMergeMetricName,
		Help: "Seconds remaining until the next daily merge.",
	})
	rateLimitRemainingMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: rateLimitRemainingMetricName,
		Help: "Core API requests left in the current GitHub rate limit window.",
	})
	lastRefreshMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chaosboard_last_refresh_timestamp_seconds",
		Help: "Unix time of the last successful leaderboard refresh.",
	})
	refreshesMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chaosboard_refreshes_total",
		Help: "Leaderboard refreshes by result.",
	}, []string{"result"})
)

// RecordLeaderboard publishes the state of a freshly computed leaderboard.
func RecordLeaderboard(organized apitype.OrganizedPRs, schedule apitype.MergeSchedule) {
	summary := organized.Summary
	openPullRequestsMetric.WithLabelValues("total").Set(float64(summary.OpenPullRequests))
	openPullRequestsMetric.WithLabelValues("mergeable").Set(float64(summary.Mergeable))
	openPullRequestsMetric.WithLabelValues("checks_passing").Set(float64(summary.ChecksPassing))

	voteDistributionMetric.WithLabelValues("total").Set(float64(summary.TotalVotes))
	voteDistributionMetric.WithLabelValues("median").Set(summary.MedianVotes)
	voteDistributionMetric.WithLabelValues("p90").Set(summary.NinetiethPctVotes)

	// ranks shift between refreshes, drop series for pull requests that left the board
	leaderboardVotesMetric.Reset()
	for i, pr := range organized.TopByVotes {
		leaderboardVotesMetric.WithLabelValues(strconv.Itoa(i+1), strconv.Itoa(pr.Number)).Set(float64(pr.Votes))
	}

	secondsUntilMergeMetric.Set(float64(schedule.SecondsRemaining))
	if !organized.GeneratedAt.IsZero() {
		lastRefreshMetric.Set(float64(organized.GeneratedAt.Unix()))
	} else {
		lastRefreshMetric.Set(float64(time.Now().Unix()))
	}
}

func RecordRateLimit(rate *gh.Rate) {
	if rate == nil {
		return
	}
	rateLimitRemainingMetric.Set(float64(rate.Remaining))
}

func RecordRefresh(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	refreshesMetric.WithLabelValues(result).Inc()
}
