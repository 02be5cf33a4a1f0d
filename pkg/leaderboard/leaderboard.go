// Package leaderboard fetches the open pull requests of a repository, scores them and
// arranges them into the ranked views shown on the dashboard.
package leaderboard

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v45/github"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/openchaos/chaosboard/pkg/apis/api"
	"github.com/openchaos/chaosboard/pkg/github"
	"github.com/openchaos/chaosboard/pkg/signals"
)

// DefaultConcurrency bounds how many pull requests are enriched at once.
const DefaultConcurrency = 10

// Upstream is the subset of the GitHub client the leaderboard needs. Per pull request
// lookups never fail; they fall back to optimistic defaults on their own.
type Upstream interface {
	ListOpenPullRequests(ctx context.Context, repo github.Repo) ([]*gh.PullRequest, error)
	ListReactions(ctx context.Context, repo github.Repo, number int) []github.Reaction
	GetPullRequestDetail(ctx context.Context, repo github.Repo, number int) github.PullRequestDetail
	ChecksPassed(ctx context.Context, repo github.Repo, sha string) bool
	ListClosedPullRequests(ctx context.Context, repo github.Repo) ([]*gh.PullRequest, error)
}

type Options struct {
	ViewSize     int
	Concurrency  int
	RisingWindow time.Duration
	MergeHourUTC int
	// ExcludeAuthors are logins, besides the repository owner, whose merged pull requests are not listed.
	ExcludeAuthors []string
}

type Leaderboard struct {
	upstream Upstream
	repo     github.Repo
	opts     Options
	now      func() time.Time
}

func New(upstream Upstream, repo github.Repo, opts Options) *Leaderboard {
	if opts.ViewSize <= 0 {
		opts.ViewSize = DefaultViewSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.RisingWindow <= 0 {
		opts.RisingWindow = signals.DefaultRisingWindow
	}
	if opts.MergeHourUTC < 0 || opts.MergeHourUTC > 23 {
		opts.MergeHourUTC = DefaultMergeHourUTC
	}
	return &Leaderboard{
		upstream: upstream,
		repo:     repo,
		opts:     opts,
		now:      time.Now,
	}
}

func (l *Leaderboard) Repo() github.Repo {
	return l.repo
}

// GetOpenPRs returns every open pull request, enriched and scored, in merge leaderboard order.
func (l *Leaderboard) GetOpenPRs(ctx context.Context) ([]api.PullRequest, error) {
	prs, err := l.fetchOpenPRs(ctx)
	if err != nil {
		return nil, err
	}
	return RankByVotes(prs), nil
}

// GetOrganizedPRs returns the ranked views. If the open pull request listing fails nothing is
// returned, a half computed ranking is never served.
func (l *Leaderboard) GetOrganizedPRs(ctx context.Context) (api.OrganizedPRs, error) {
	prs, err := l.fetchOpenPRs(ctx)
	if err != nil {
		return api.OrganizedPRs{}, err
	}
	organized := Organize(prs, l.opts.ViewSize)
	organized.GeneratedAt = l.now().UTC()
	return organized, nil
}

func (l *Leaderboard) fetchOpenPRs(ctx context.Context) ([]api.PullRequest, error) {
	logger := log.WithField("repo", l.repo.String()).WithField("cycle", uuid.New().String())
	start := time.Now()

	raw, err := l.upstream.ListOpenPullRequests(ctx, l.repo)
	if err != nil {
		logger.WithError(err).Error("error listing open pull requests")
		return nil, errors.WithMessage(err, "could not list open pull requests")
	}

	prs := l.enrich(ctx, dedupe(raw, logger))
	logger.WithField("count", len(prs)).
		WithField("elapsed", time.Since(start)).
		Info("aggregated open pull requests")
	return prs, nil
}

// dedupe drops listing entries without a number or with one already seen. GitHub can return
// the same pull request on two pages when the list shifts between requests.
func dedupe(raw []*gh.PullRequest, logger *log.Entry) []*gh.PullRequest {
	seen := sets.New[int]()
	out := make([]*gh.PullRequest, 0, len(raw))
	for _, pr := range raw {
		if pr == nil || pr.Number == nil {
			continue
		}
		if seen.Has(pr.GetNumber()) {
			logger.WithField("number", pr.GetNumber()).Debug("skipping duplicate pull request in listing")
			continue
		}
		seen.Insert(pr.GetNumber())
		out = append(out, pr)
	}
	return out
}

// enrich looks up votes, merge state and checks for every pull request. Different pull
// requests are independent so they are fetched concurrently; results keep listing order.
func (l *Leaderboard) enrich(ctx context.Context, raw []*gh.PullRequest) []api.PullRequest {
	now := l.now()
	out := make([]api.PullRequest, len(raw))
	sem := make(chan struct{}, l.opts.Concurrency)
	wg := sync.WaitGroup{}

	for i, pr := range raw {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() {
				<-sem
				wg.Done()
			}()
			reactions := l.upstream.ListReactions(ctx, l.repo, pr.GetNumber())
			out[i] = signals.Normalize(pr, signals.Enrichment{
				Votes:        signals.CountVotes(reactions, now, l.opts.RisingWindow),
				Detail:       l.upstream.GetPullRequestDetail(ctx, l.repo, pr.GetNumber()),
				ChecksPassed: l.upstream.ChecksPassed(ctx, l.repo, pr.GetHead().GetSHA()),
			})
		}()
	}
	wg.Wait()
	return out
}

// excludedAuthors holds lowercased logins whose pull requests never appear as merged winners.
func (l *Leaderboard) excludedAuthors() sets.Set[string] {
	excluded := sets.New(strings.ToLower(l.repo.Owner))
	for _, login := range l.opts.ExcludeAuthors {
		if login = strings.TrimSpace(login); login != "" {
			excluded.Insert(strings.ToLower(login))
		}
	}
	return excluded
}

// GetMergedPRs returns recently merged pull requests, newest merge first. Pull requests
// authored by the repository owner are maintenance and never listed.
func (l *Leaderboard) GetMergedPRs(ctx context.Context) ([]api.MergedPullRequest, error) {
	closed, err := l.upstream.ListClosedPullRequests(ctx, l.repo)
	if err != nil {
		log.WithError(err).WithField("repo", l.repo.String()).Error("error listing closed pull requests")
		return nil, errors.WithMessage(err, "could not list merged pull requests")
	}

	excluded := l.excludedAuthors()
	merged := make([]api.MergedPullRequest, 0, len(closed))
	for _, pr := range closed {
		if pr == nil || pr.MergedAt == nil {
			continue
		}
		author := pr.GetUser().GetLogin()
		if excluded.Has(strings.ToLower(author)) {
			continue
		}
		merged = append(merged, api.MergedPullRequest{
			Number:   pr.GetNumber(),
			Title:    pr.GetTitle(),
			Author:   author,
			URL:      pr.GetHTMLURL(),
			MergedAt: pr.GetMergedAt(),
		})
	}

	// the listing is sorted by last update, which need not match merge order
	slices.SortStableFunc(merged, func(a, b api.MergedPullRequest) int {
		if c := b.MergedAt.Compare(a.MergedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.Number, a.Number)
	})
	return merged, nil
}
