package leaderboard

import (
	"context"
	"testing"
	"time"

	gh "github.com/google/go-github/v45/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openchaos/chaosboard/pkg/apis/api"
	"github.com/openchaos/chaosboard/pkg/github"
)

func TestNextMergeAt(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "morning merges today",
			now:  time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC),
			want: time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly at the slot rolls over",
			now:  time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 2, 19, 0, 0, 0, time.UTC),
		},
		{
			name: "evening merges tomorrow across month end",
			now:  time.Date(2025, 2, 28, 21, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC),
		},
		{
			name: "non UTC input",
			now:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("UTC-8", -8*60*60)),
			want: time.Date(2025, 3, 2, 19, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextMergeAt(tt.now, DefaultMergeHourUTC))
		})
	}
}

func TestMergeCandidate(t *testing.T) {
	assert.Nil(t, MergeCandidate(nil))
	assert.Nil(t, MergeCandidate([]api.PullRequest{{Number: 1, IsMergeable: false}}))

	top := []api.PullRequest{
		{Number: 1, IsMergeable: true, ChecksPassed: false},
		{Number: 2, IsMergeable: true, ChecksPassed: true},
	}
	candidate := MergeCandidate(top)
	require.NotNil(t, candidate)
	assert.Equal(t, 1, candidate.Number, "pending checks still merge")

	candidate.Title = "changed"
	assert.Empty(t, top[0].Title)
}

func TestGetMergeSchedule(t *testing.T) {
	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	up := &fakeUpstream{
		open: []*gh.PullRequest{openPR(5, "a", now.Add(-time.Hour)), openPR(6, "b", now.Add(-2*time.Hour))},
		reactions: map[int][]github.Reaction{
			5: votes(now, 9, 0, time.Hour),
			6: votes(now, 2, 0, time.Hour),
		},
		details: map[int]github.PullRequestDetail{
			5: {Mergeable: false},
			6: {Mergeable: true},
		},
	}

	schedule, err := newTestLeaderboard(up, now).GetMergeSchedule(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC), schedule.NextMergeAt)
	assert.Equal(t, int64(3600), schedule.SecondsRemaining)
	require.NotNil(t, schedule.Candidate)
	assert.Equal(t, 6, schedule.Candidate.Number)
}
