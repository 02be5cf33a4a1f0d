package chaosserver

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/openchaos/chaosboard/pkg/api"
	"github.com/openchaos/chaosboard/pkg/apis/cache"
	"github.com/openchaos/chaosboard/pkg/chaosserver/metrics"
	"github.com/openchaos/chaosboard/pkg/leaderboard"
	"github.com/openchaos/chaosboard/pkg/util"
)

// DefaultRefreshInterval is how often the leaderboard is recomputed in the background.
const DefaultRefreshInterval = 5 * time.Minute

// Refresher keeps the cached leaderboard warm and the gauges current. Failed refreshes
// slow the loop down so a rate limited upstream gets room to recover.
type Refresher struct {
	leaderboard Leaderboard
	rateLimiter api.RateLimiter
	cache       cache.Cache
	revalidate  time.Duration
	interval    time.Duration
	now         func() time.Time
}

func NewRefresher(lb Leaderboard, rateLimiter api.RateLimiter, cacheClient cache.Cache, revalidate, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{
		leaderboard: lb,
		rateLimiter: rateLimiter,
		cache:       cacheClient,
		revalidate:  revalidate,
		interval:    interval,
		now:         time.Now,
	}
}

func (r *Refresher) Run(ctx context.Context) {
	pacer := util.NewRateLimiter(r.interval)
	defer pacer.Close()

	for {
		err := r.Refresh(ctx)
		pacer.UpdateRate(err != nil)
		if err != nil {
			log.WithField("next", pacer.Interval()).Info("backing off leaderboard refresh")
		}
		if !pacer.Tick(ctx) {
			log.Info("leaderboard refresher stopped")
			return
		}
	}
}

// Refresh recomputes the leaderboard once, stores it for the API and updates metrics.
func (r *Refresher) Refresh(ctx context.Context) error {
	logger := log.WithField("refresh", uuid.New().String())

	if r.rateLimiter != nil {
		rate, err := r.rateLimiter.CoreRateLimit(ctx)
		if err != nil {
			logger.WithError(err).Warn("could not read GitHub rate limit")
		} else {
			metrics.RecordRateLimit(rate)
		}
	}

	organized, err := api.PrimeOrganizedPullRequests(ctx, r.leaderboard, r.cache, r.revalidate)
	metrics.RecordRefresh(err)
	if err != nil {
		logger.WithError(err).Error("error refreshing leaderboard")
		return err
	}

	schedule := leaderboard.BuildSchedule(organized, r.now(), r.leaderboard.MergeHourUTC())
	metrics.RecordLeaderboard(organized, schedule)

	entry := logger.WithField("open", organized.Summary.OpenPullRequests)
	if schedule.Candidate != nil {
		entry = entry.WithField("candidate", schedule.Candidate.Number)
	}
	entry.Info("refreshed leaderboard")
	return nil
}
