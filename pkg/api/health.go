package api

import (
	"context"
	"net/http"

	gh "github.com/google/go-github/v45/github"

	apitype "github.com/openchaos/chaosboard/pkg/apis/api"
	"github.com/openchaos/chaosboard/pkg/github"
)

// RateLimiter reports the upstream API quota.
type RateLimiter interface {
	CoreRateLimit(ctx context.Context) (*gh.Rate, error)
}

// PrintHealth reports the repository being mirrored and how much upstream quota is left.
// The server is healthy even when GitHub is not; rate limiting is reported, not failed on.
func PrintHealth(w http.ResponseWriter, req *http.Request, repo github.Repo, rl RateLimiter) {
	health := apitype.Health{Repository: repo.String()}

	rate, err := rl.CoreRateLimit(req.Context())
	switch {
	case err != nil:
		health.RateLimited = github.IsRateLimited(err)
	case rate != nil:
		health.RateLimit = rate.Limit
		health.RateLimitRemaining = rate.Remaining
		if !rate.Reset.IsZero() {
			reset := rate.Reset.Time.UTC()
			health.RateLimitResetsAt = &reset
		}
		health.RateLimited = rate.Remaining == 0
	}

	RespondWithJSON(http.StatusOK, w, health)
}
