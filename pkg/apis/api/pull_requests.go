// Package api contains the types served by the leaderboard API.
package api

import "time"

// MergeStatus describes whether a pull request would be merged if it won the daily slot.
type MergeStatus string

const (
	MergeStatusReady                 MergeStatus = "ready"
	MergeStatusChecksPending         MergeStatus = "checks_pending"
	MergeStatusConflicts             MergeStatus = "conflicts"
	MergeStatusConflictsChecksFailed MergeStatus = "conflicts_checks_failed"
)

// PullRequest is a normalized, scored open pull request. It is recomputed wholesale
// on every fetch cycle and never mutated afterwards.
type PullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`

	// Votes is always Upvotes - Downvotes.
	Votes     int `json:"votes"`
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Comments  int `json:"comments"`

	IsMergeable  bool        `json:"is_mergeable"`
	ChecksPassed bool        `json:"checks_passed"`
	Status       MergeStatus `json:"status"`

	HotScore    float64 `json:"hot_score"`
	RisingScore int     `json:"rising_score"`
}

// MergedPullRequest is a closed pull request that was merged, used for the hall of past winners.
type MergedPullRequest struct {
	Number   int       `json:"number"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	URL      string    `json:"url"`
	MergedAt time.Time `json:"merged_at"`
}

// OrganizedPRs holds the ranked views derived from a single fetch of the open pull requests.
type OrganizedPRs struct {
	TopByVotes    []PullRequest `json:"top_by_votes"`
	Rising        []PullRequest `json:"rising"`
	Newest        []PullRequest `json:"newest"`
	Discussed     []PullRequest `json:"discussed"`
	Controversial []PullRequest `json:"controversial"`

	Summary     Summary   `json:"summary"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Summary contains aggregate figures over every open pull request, not just the capped views.
type Summary struct {
	OpenPullRequests  int     `json:"open_pull_requests"`
	Mergeable         int     `json:"mergeable"`
	ChecksPassing     int     `json:"checks_passing"`
	TotalVotes        int     `json:"total_votes"`
	MedianVotes       float64 `json:"median_votes"`
	NinetiethPctVotes float64 `json:"p90_votes"`
}

// MergeSchedule describes the next daily merge slot and the pull request currently in line for it.
type MergeSchedule struct {
	NextMergeAt      time.Time    `json:"next_merge_at"`
	SecondsRemaining int64        `json:"seconds_remaining"`
	Candidate        *PullRequest `json:"candidate,omitempty"`
}

// Health reports upstream quota as seen by the server.
type Health struct {
	Repository         string     `json:"repository"`
	RateLimit          int        `json:"rate_limit"`
	RateLimitRemaining int        `json:"rate_limit_remaining"`
	RateLimitResetsAt  *time.Time `json:"rate_limit_resets_at,omitempty"`
	RateLimited        bool       `json:"rate_limited"`
}
