package leaderboard

import (
	"context"
	"time"

	"github.com/openchaos/chaosboard/pkg/apis/api"
)

// DefaultMergeHourUTC is the hour of day the winning pull request gets merged.
const DefaultMergeHourUTC = 19

// NextMergeAt returns the first merge slot strictly after now. A slot that is exactly now has
// already passed.
func NextMergeAt(now time.Time, mergeHourUTC int) time.Time {
	now = now.UTC()
	target := time.Date(now.Year(), now.Month(), now.Day(), mergeHourUTC, 0, 0, 0, time.UTC)
	if !now.Before(target) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

// MergeCandidate returns the pull request that would be merged from a top-by-votes view:
// the first one without conflicts. Pending or failing checks don't disqualify it.
func MergeCandidate(topByVotes []api.PullRequest) *api.PullRequest {
	for i := range topByVotes {
		if topByVotes[i].IsMergeable {
			candidate := topByVotes[i]
			return &candidate
		}
	}
	return nil
}

// BuildSchedule describes the next merge slot relative to now for the given organized views.
func BuildSchedule(organized api.OrganizedPRs, now time.Time, mergeHourUTC int) api.MergeSchedule {
	next := NextMergeAt(now, mergeHourUTC)
	return api.MergeSchedule{
		NextMergeAt:      next,
		SecondsRemaining: int64(next.Sub(now) / time.Second),
		Candidate:        MergeCandidate(organized.TopByVotes),
	}
}

// GetMergeSchedule fetches the current rankings and reports who is in line for the next merge.
func (l *Leaderboard) GetMergeSchedule(ctx context.Context) (api.MergeSchedule, error) {
	organized, err := l.GetOrganizedPRs(ctx)
	if err != nil {
		return api.MergeSchedule{}, err
	}
	return BuildSchedule(organized, l.now(), l.opts.MergeHourUTC), nil
}

func (l *Leaderboard) MergeHourUTC() int {
	return l.opts.MergeHourUTC
}
