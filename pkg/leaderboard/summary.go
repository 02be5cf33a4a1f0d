package leaderboard

import (
	"github.com/montanaflynn/stats"
	log "github.com/sirupsen/logrus"

	"github.com/openchaos/chaosboard/pkg/apis/api"
)

// Summarize computes aggregate figures over all open pull requests.
func Summarize(prs []api.PullRequest) api.Summary {
	summary := api.Summary{OpenPullRequests: len(prs)}
	if len(prs) == 0 {
		return summary
	}

	votes := make(stats.Float64Data, 0, len(prs))
	for _, pr := range prs {
		summary.TotalVotes += pr.Votes
		if pr.IsMergeable {
			summary.Mergeable++
		}
		if pr.ChecksPassed {
			summary.ChecksPassing++
		}
		votes = append(votes, float64(pr.Votes))
	}

	var err error
	if summary.MedianVotes, err = votes.Median(); err != nil {
		log.WithError(err).Warn("could not compute median votes")
	}
	if summary.NinetiethPctVotes, err = votes.Percentile(90); err != nil {
		log.WithError(err).Warn("could not compute 90th percentile votes")
	}
	return summary
}
