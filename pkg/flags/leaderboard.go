package flags

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/openchaos/chaosboard/pkg/leaderboard"
	"github.com/openchaos/chaosboard/pkg/signals"
)

// LeaderboardFlags controls how pull requests are enriched and ranked.
type LeaderboardFlags struct {
	ViewSize          int
	EnrichConcurrency int
	RisingWindow      time.Duration
	MergeHourUTC      int
	ExcludeAuthors    []string
}

func NewLeaderboardFlags() *LeaderboardFlags {
	return &LeaderboardFlags{
		ViewSize:          leaderboard.DefaultViewSize,
		EnrichConcurrency: leaderboard.DefaultConcurrency,
		RisingWindow:      signals.DefaultRisingWindow,
		MergeHourUTC:      leaderboard.DefaultMergeHourUTC,
	}
}

func (f *LeaderboardFlags) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&f.ViewSize, "view-size", f.ViewSize, "Number of pull requests in each ranked view")
	fs.IntVar(&f.EnrichConcurrency, "enrich-concurrency", f.EnrichConcurrency, "How many pull requests are looked up at once")
	fs.DurationVar(&f.RisingWindow, "rising-window", f.RisingWindow, "Votes cast within this window count towards the rising score")
	fs.IntVar(&f.MergeHourUTC, "merge-hour-utc", f.MergeHourUTC, "Hour of the day (UTC) the winning pull request is merged")
	fs.StringSliceVar(&f.ExcludeAuthors, "exclude-author", f.ExcludeAuthors, "Logins whose merged pull requests are left out of the winners list, in addition to the repository owner")
}

func (f *LeaderboardFlags) Validate() error {
	if f.ViewSize <= 0 {
		return errors.New("--view-size must be positive")
	}
	if f.EnrichConcurrency <= 0 {
		return errors.New("--enrich-concurrency must be positive")
	}
	if f.RisingWindow <= 0 {
		return errors.New("--rising-window must be positive")
	}
	if f.MergeHourUTC < 0 || f.MergeHourUTC > 23 {
		return errors.Errorf("--merge-hour-utc must be between 0 and 23, got %d", f.MergeHourUTC)
	}
	return nil
}

func (f *LeaderboardFlags) GetOptions() leaderboard.Options {
	return leaderboard.Options{
		ViewSize:       f.ViewSize,
		Concurrency:    f.EnrichConcurrency,
		RisingWindow:   f.RisingWindow,
		MergeHourUTC:   f.MergeHourUTC,
		ExcludeAuthors: f.ExcludeAuthors,
	}
}
