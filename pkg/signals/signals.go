// Package signals turns raw GitHub payloads into vote tallies and normalized pull request records.
package signals

import (
	"time"

	gh "github.com/google/go-github/v45/github"

	"github.com/openchaos/chaosboard/pkg/apis/api"
	"github.com/openchaos/chaosboard/pkg/github"
	"github.com/openchaos/chaosboard/pkg/scoring"
)

// DefaultRisingWindow is how far back reactions count towards the rising score.
const DefaultRisingWindow = 7 * 24 * time.Hour

// Tally counts votes. Reactions other than +1 and -1 are ignored.
type Tally struct {
	Upvotes   int
	Downvotes int
}

// Net is upvotes minus downvotes.
func (t Tally) Net() int {
	return t.Upvotes - t.Downvotes
}

// Votes holds the full-history tally and the tally restricted to the rising window.
type Votes struct {
	All    Tally
	Recent Tally
}

// CountVotes tallies reactions over their full history and over the window ending at now.
// A reaction with no creation time never counts as recent.
func CountVotes(reactions []github.Reaction, now time.Time, window time.Duration) Votes {
	var votes Votes
	cutoff := now.Add(-window)
	for _, r := range reactions {
		up, down := r.IsUpvote(), r.IsDownvote()
		if !up && !down {
			continue
		}
		recent := !r.CreatedAt.IsZero() && !r.CreatedAt.Before(cutoff)
		if up {
			votes.All.Upvotes++
			if recent {
				votes.Recent.Upvotes++
			}
		} else {
			votes.All.Downvotes++
			if recent {
				votes.Recent.Downvotes++
			}
		}
	}
	return votes
}

// Enrichment is everything learned about a pull request beyond its listing payload.
type Enrichment struct {
	Votes        Votes
	Detail       github.PullRequestDetail
	ChecksPassed bool
}

// Normalize builds the scored record for one open pull request.
func Normalize(pr *gh.PullRequest, e Enrichment) api.PullRequest {
	comments := e.Detail.Comments
	if e.Detail.Degraded {
		// the listing payload usually omits comment counts, in which case this is 0
		comments = github.CommentCount(pr)
	}

	createdAt := pr.GetCreatedAt()
	votes := e.Votes.All.Net()
	return api.PullRequest{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Author:       pr.GetUser().GetLogin(),
		URL:          pr.GetHTMLURL(),
		CreatedAt:    createdAt,
		Votes:        votes,
		Upvotes:      e.Votes.All.Upvotes,
		Downvotes:    e.Votes.All.Downvotes,
		Comments:     comments,
		IsMergeable:  e.Detail.Mergeable,
		ChecksPassed: e.ChecksPassed,
		Status:       Status(e.Detail.Mergeable, e.ChecksPassed),
		HotScore:     scoring.HotScore(votes, createdAt),
		RisingScore:  scoring.RisingScore(e.Votes.Recent.Upvotes, e.Votes.Recent.Downvotes),
	}
}

// Status summarizes merge eligibility. Failing checks alone don't block the daily merge,
// conflicts do.
func Status(mergeable, checksPassed bool) api.MergeStatus {
	switch {
	case mergeable && checksPassed:
		return api.MergeStatusReady
	case mergeable:
		return api.MergeStatusChecksPending
	case checksPassed:
		return api.MergeStatusConflicts
	default:
		return api.MergeStatusConflictsChecksFailed
	}
}
