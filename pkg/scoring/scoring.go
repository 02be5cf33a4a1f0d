// Package scoring computes the derived ranking signals for open pull requests.
package scoring

import (
	"math"
	"time"
)

// DecaySeconds is the linear recency term's divisor. A pull request created this many seconds
// later gains one order of magnitude of vote-equivalence, roughly 12.5 hours.
const DecaySeconds = 45000

// ReferenceEpoch only keeps the recency term small; it carries no other meaning.
var ReferenceEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// HotScore blends log-scaled votes with a linear bonus for recency. Net votes below one count
// as one.
func HotScore(votes int, createdAt time.Time) float64 {
	voteScore := math.Log10(float64(max(votes, 1)) + 1)
	ageSeconds := float64(createdAt.Unix() - ReferenceEpoch.Unix())
	return voteScore + ageSeconds/DecaySeconds
}

// RisingScore is the net vote count over reactions inside the rising window.
func RisingScore(upvotes, downvotes int) int {
	return upvotes - downvotes
}
