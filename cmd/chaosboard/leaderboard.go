package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/openchaos/chaosboard/pkg/apis/cache"
	"github.com/openchaos/chaosboard/pkg/flags"
	"github.com/openchaos/chaosboard/pkg/github"
	"github.com/openchaos/chaosboard/pkg/leaderboard"
)

// CommonFlags are shared by every command that talks to GitHub.
type CommonFlags struct {
	GitHubFlags      *flags.GitHubFlags
	CacheFlags       *flags.CacheFlags
	LeaderboardFlags *flags.LeaderboardFlags
}

func NewCommonFlags() *CommonFlags {
	return &CommonFlags{
		GitHubFlags:      flags.NewGitHubFlags(),
		CacheFlags:       flags.NewCacheFlags(),
		LeaderboardFlags: flags.NewLeaderboardFlags(),
	}
}

func (f *CommonFlags) BindFlags(fs *pflag.FlagSet) {
	f.GitHubFlags.BindFlags(fs)
	f.CacheFlags.BindFlags(fs)
	f.LeaderboardFlags.BindFlags(fs)
}

func (f *CommonFlags) Validate() error {
	if err := f.GitHubFlags.Validate(); err != nil {
		return err
	}
	if err := f.CacheFlags.Validate(); err != nil {
		return err
	}
	return f.LeaderboardFlags.Validate()
}

// leaderboardDeps is everything a command needs once flags are parsed.
type leaderboardDeps struct {
	leaderboard *leaderboard.Leaderboard
	client      *github.Client
	cache       cache.Cache
}

func (f *CommonFlags) build(ctx context.Context) (*leaderboardDeps, error) {
	if err := f.Validate(); err != nil {
		return nil, errors.WithMessage(err, "error validating options")
	}

	repo, err := f.GitHubFlags.GetRepo()
	if err != nil {
		return nil, err
	}

	cacheClient, err := f.CacheFlags.GetCacheClient()
	if err != nil {
		return nil, errors.WithMessage(err, "couldn't get cache client")
	}

	client, err := f.GitHubFlags.GetClient(ctx, cacheClient, f.CacheFlags.Revalidate)
	if err != nil {
		return nil, errors.WithMessage(err, "couldn't get GitHub client")
	}

	return &leaderboardDeps{
		leaderboard: leaderboard.New(client, repo, f.LeaderboardFlags.GetOptions()),
		client:      client,
		cache:       cacheClient,
	}, nil
}
