package leaderboard

import (
	"cmp"
	"slices"

	"github.com/openchaos/chaosboard/pkg/apis/api"
)

// DefaultViewSize caps every ranked view.
const DefaultViewSize = 10

// compareFunc orders a before b when it returns a negative number.
type compareFunc func(a, b api.PullRequest) int

// byKeys chains comparisons, falling through to the next key on ties. Number is always the
// last key so no two distinct pull requests ever compare equal.
func byKeys(keys ...compareFunc) compareFunc {
	return func(a, b api.PullRequest) int {
		for _, k := range keys {
			if c := k(a, b); c != 0 {
				return c
			}
		}
		return cmp.Compare(b.Number, a.Number)
	}
}

func mergeableFirst(a, b api.PullRequest) int {
	switch {
	case a.IsMergeable == b.IsMergeable:
		return 0
	case a.IsMergeable:
		return -1
	default:
		return 1
	}
}

func votesDesc(a, b api.PullRequest) int {
	return cmp.Compare(b.Votes, a.Votes)
}

func newestFirst(a, b api.PullRequest) int {
	return b.CreatedAt.Compare(a.CreatedAt)
}

func risingDesc(a, b api.PullRequest) int {
	return cmp.Compare(b.RisingScore, a.RisingScore)
}

func commentsDesc(a, b api.PullRequest) int {
	return cmp.Compare(b.Comments, a.Comments)
}

func controversyDesc(a, b api.PullRequest) int {
	return cmp.Compare(Controversy(b), Controversy(a))
}

var (
	topByVotesOrder    = byKeys(mergeableFirst, votesDesc, newestFirst)
	risingOrder        = byKeys(risingDesc, newestFirst)
	newestOrder        = byKeys(newestFirst)
	discussedOrder     = byKeys(commentsDesc, newestFirst)
	controversialOrder = byKeys(controversyDesc, newestFirst)
)

// Controversy measures how evenly split the votes are: min(upvotes, downvotes).
func Controversy(pr api.PullRequest) int {
	return min(pr.Upvotes, pr.Downvotes)
}

func isControversial(pr api.PullRequest) bool {
	return pr.Upvotes > 0 && pr.Downvotes > 0
}

// ranked returns a sorted copy of prs, keeping only those accepted by keep, capped at limit.
func ranked(prs []api.PullRequest, order compareFunc, keep func(api.PullRequest) bool, limit int) []api.PullRequest {
	out := make([]api.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if keep == nil || keep(pr) {
			out = append(out, pr)
		}
	}
	slices.SortStableFunc(out, order)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RankByVotes orders every pull request the way the merge leaderboard does: conflicts last,
// then most votes, then newest.
func RankByVotes(prs []api.PullRequest) []api.PullRequest {
	return ranked(prs, topByVotesOrder, nil, 0)
}

// Organize derives every ranked view from one set of open pull requests. The input is not
// modified and no view shares a backing array with another.
func Organize(prs []api.PullRequest, limit int) api.OrganizedPRs {
	if limit <= 0 {
		limit = DefaultViewSize
	}
	return api.OrganizedPRs{
		TopByVotes:    ranked(prs, topByVotesOrder, nil, limit),
		Rising:        ranked(prs, risingOrder, nil, limit),
		Newest:        ranked(prs, newestOrder, nil, limit),
		Discussed:     ranked(prs, discussedOrder, nil, limit),
		Controversial: ranked(prs, controversialOrder, isControversial, limit),
		Summary:       Summarize(prs),
	}
}
