package signals

import (
	"testing"
	"time"

	gh "github.com/google/go-github/v45/github"
	"github.com/stretchr/testify/assert"

	"github.com/openchaos/chaosboard/pkg/apis/api"
	"github.com/openchaos/chaosboard/pkg/github"
	"github.com/openchaos/chaosboard/pkg/scoring"
)

func TestCountVotes(t *testing.T) {
	now := time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	reactions := []github.Reaction{
		{Content: "+1", CreatedAt: now.Add(-1 * day)},
		{Content: "+1", CreatedAt: now.Add(-6 * day)},
		{Content: "+1", CreatedAt: now.Add(-8 * day)},
		{Content: "-1", CreatedAt: now.Add(-2 * day)},
		{Content: "-1", CreatedAt: now.Add(-30 * day)},
		{Content: "+1"},
		{Content: "heart", CreatedAt: now},
		{Content: "rocket", CreatedAt: now},
		{Content: "+1", CreatedAt: now.Add(-7 * day)},
	}

	votes := CountVotes(reactions, now, DefaultRisingWindow)
	assert.Equal(t, Tally{Upvotes: 5, Downvotes: 2}, votes.All)
	assert.Equal(t, 3, votes.All.Net())
	assert.Equal(t, Tally{Upvotes: 3, Downvotes: 1}, votes.Recent, "8 day old and undated reactions are not recent, exactly 7 days is")
	assert.Equal(t, 2, votes.Recent.Net())
}

func TestCountVotesEmpty(t *testing.T) {
	assert.Equal(t, Votes{}, CountVotes(nil, time.Now(), DefaultRisingWindow))
}

func TestNormalize(t *testing.T) {
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	pr := &gh.PullRequest{
		Number:    gh.Int(12),
		Title:     gh.String("replace the footer with a marquee"),
		HTMLURL:   gh.String("https://github.com/skridlevsky/openchaos/pull/12"),
		User:      &gh.User{Login: gh.String("webmaster")},
		CreatedAt: &created,
		Comments:  gh.Int(1),
	}
	votes := Votes{All: Tally{Upvotes: 7, Downvotes: 3}, Recent: Tally{Upvotes: 2, Downvotes: 1}}

	got := Normalize(pr, Enrichment{
		Votes:        votes,
		Detail:       github.PullRequestDetail{Mergeable: false, Comments: 9},
		ChecksPassed: true,
	})

	assert.Equal(t, api.PullRequest{
		Number:       12,
		Title:        "replace the footer with a marquee",
		Author:       "webmaster",
		URL:          "https://github.com/skridlevsky/openchaos/pull/12",
		CreatedAt:    created,
		Votes:        4,
		Upvotes:      7,
		Downvotes:    3,
		Comments:     9,
		IsMergeable:  false,
		ChecksPassed: true,
		Status:       api.MergeStatusConflicts,
		HotScore:     scoring.HotScore(4, created),
		RisingScore:  1,
	}, got)
	assert.Equal(t, got.Upvotes-got.Downvotes, got.Votes)
}

func TestNormalizeDegradedDetailFallsBackToListingComments(t *testing.T) {
	pr := &gh.PullRequest{Number: gh.Int(3), Comments: gh.Int(2), ReviewComments: gh.Int(1)}
	got := Normalize(pr, Enrichment{Detail: github.PullRequestDetail{Mergeable: true, Degraded: true}, ChecksPassed: true})
	assert.Equal(t, 3, got.Comments)
	assert.True(t, got.IsMergeable)

	bare := Normalize(&gh.PullRequest{Number: gh.Int(4)}, Enrichment{Detail: github.PullRequestDetail{Mergeable: true, Degraded: true}})
	assert.Equal(t, 0, bare.Comments)
	assert.Equal(t, "", bare.Author)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, api.MergeStatusReady, Status(true, true))
	assert.Equal(t, api.MergeStatusChecksPending, Status(true, false))
	assert.Equal(t, api.MergeStatusConflicts, Status(false, true))
	assert.Equal(t, api.MergeStatusConflictsChecksFailed, Status(false, false))
}
