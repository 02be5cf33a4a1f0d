package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHotScore(t *testing.T) {
	assert.InDelta(t, math.Log10(2), HotScore(0, ReferenceEpoch), 1e-9)
	assert.InDelta(t, math.Log10(2), HotScore(1, ReferenceEpoch), 1e-9)
	assert.InDelta(t, math.Log10(2), HotScore(-5, ReferenceEpoch), 1e-9, "negative net votes floor at one")
	assert.InDelta(t, math.Log10(11)+1, HotScore(10, ReferenceEpoch.Add(DecaySeconds*time.Second)), 1e-9)
}

func TestHotScoreIsMonotonicInVotes(t *testing.T) {
	created := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	prev := HotScore(1, created)
	for votes := 2; votes <= 1000; votes++ {
		score := HotScore(votes, created)
		assert.Greater(t, score, prev, "votes=%d", votes)
		prev = score
	}
}

func TestHotScoreIsMonotonicInRecency(t *testing.T) {
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	prev := HotScore(5, created)
	for i := 1; i <= 48; i++ {
		score := HotScore(5, created.Add(time.Duration(i)*time.Hour))
		assert.Greater(t, score, prev)
		prev = score
	}
}

func TestHotScoreDecay(t *testing.T) {
	// an older pull request needs roughly ten times the votes to match one created 12.5 hours later
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(DecaySeconds * time.Second)
	assert.InDelta(t, HotScore(9, newer), HotScore(99, older), 1e-9)
}

func TestRisingScore(t *testing.T) {
	assert.Equal(t, 3, RisingScore(5, 2))
	assert.Equal(t, -2, RisingScore(0, 2))
	assert.Equal(t, 0, RisingScore(0, 0))
}
