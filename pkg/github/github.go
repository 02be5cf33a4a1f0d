package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	gh "github.com/google/go-github/v45/github"
	ghauth "github.com/jferrl/go-githubauth"
	log "github.com/sirupsen/logrus"
	"github.com/tcnksm/go-gitconfig"
	"golang.org/x/oauth2"

	"github.com/openchaos/chaosboard/pkg/apis/cache"
	chaoscache "github.com/openchaos/chaosboard/pkg/cache"
)

const (
	// GitHub returns at most this many items per page; a shorter page is the last one.
	pageSize = 100
	// the hall of past winners only looks at the most recently updated closed pull requests
	closedPageSize = 20

	defaultRequestTimeout = 30 * time.Second
	rateLimitThreshold    = 100

	mediaTypeReactionsPreview = "application/vnd.github.squirrel-girl-preview+json"

	reactionPlusOne  = "+1"
	reactionMinusOne = "-1"

	checkStatusCompleted   = "completed"
	checkConclusionSuccess = "success"
)

const (
	endpointOpenPulls   = "open_pulls"
	endpointReactions   = "reactions"
	endpointPullDetail  = "pull_detail"
	endpointCheckRuns   = "check_runs"
	endpointClosedPulls = "closed_pulls"
	endpointRateLimit   = "rate_limit"

	degradedFieldReactions = "reactions"
	degradedFieldMergeable = "mergeable"
	degradedFieldChecks    = "checks"
)

// Reaction is a single emoji reaction on an issue or pull request.
type Reaction struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// IsUpvote reports whether the reaction counts as a vote for the pull request.
func (r Reaction) IsUpvote() bool {
	return r.Content == reactionPlusOne
}

// IsDownvote reports whether the reaction counts as a vote against the pull request.
func (r Reaction) IsDownvote() bool {
	return r.Content == reactionMinusOne
}

// PullRequestDetail is the part of the single pull request resource the leaderboard needs.
type PullRequestDetail struct {
	Mergeable bool
	Comments  int
	// Degraded is set when the detail could not be fetched and the values are defaults.
	Degraded bool
}

type Options struct {
	// APIURL overrides the public GitHub API endpoint, e.g. for GitHub Enterprise.
	APIURL string
	// Timeout bounds every HTTP call made by the client.
	Timeout time.Duration

	AppID             int64
	AppInstallationID int64

	Cache      cache.Cache
	Revalidate time.Duration
}

// requestKey identifies a single upstream call for caching.
type requestKey struct {
	Endpoint string
	Repo     string
	Number   int    `json:",omitempty"`
	SHA      string `json:",omitempty"`
	Page     int    `json:",omitempty"`
}

type Client struct {
	cache      cache.Cache
	revalidate time.Duration

	openPRsFetch        func(ctx context.Context, repo Repo, page int) ([]*gh.PullRequest, error)
	reactionsFetch      func(ctx context.Context, repo Repo, number, page int) ([]Reaction, error)
	prFetch             func(ctx context.Context, repo Repo, number int) (*gh.PullRequest, error)
	checkRunsFetch      func(ctx context.Context, repo Repo, sha string) (*gh.ListCheckRunsResults, error)
	closedPRsFetch      func(ctx context.Context, repo Repo) ([]*gh.PullRequest, error)
	gitHubCoreRateFetch func(ctx context.Context) (*gh.Rate, error)
}

func New(ctx context.Context, opts Options) (*Client, error) {
	httpClient := newGHAuthClient(ctx, opts.AppID, opts.AppInstallationID)
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = opts.Timeout
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultRequestTimeout
	}

	ghc := gh.NewClient(httpClient)
	if opts.APIURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(opts.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", opts.APIURL, err)
		}
		ghc.BaseURL = baseURL
	}

	client := &Client{
		cache:      opts.Cache,
		revalidate: opts.Revalidate,
	}

	client.openPRsFetch = func(ctx context.Context, repo Repo, page int) ([]*gh.PullRequest, error) {
		prs, _, err := ghc.PullRequests.List(ctx, repo.Owner, repo.Name, &gh.PullRequestListOptions{
			State:       "open",
			ListOptions: gh.ListOptions{Page: page, PerPage: pageSize},
		})
		return prs, err
	}

	client.reactionsFetch = func(ctx context.Context, repo Repo, number, page int) ([]Reaction, error) {
		// go-github's Reaction type doesn't carry created_at, which the rising window needs
		u := fmt.Sprintf("repos/%v/%v/issues/%d/reactions?per_page=%d&page=%d", repo.Owner, repo.Name, number, pageSize, page)
		req, err := ghc.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", mediaTypeReactionsPreview)

		var reactions []Reaction
		if _, err := ghc.Do(ctx, req, &reactions); err != nil {
			return nil, err
		}
		return reactions, nil
	}

	client.prFetch = func(ctx context.Context, repo Repo, number int) (*gh.PullRequest, error) {
		pr, _, err := ghc.PullRequests.Get(ctx, repo.Owner, repo.Name, number)
		return pr, err
	}

	client.checkRunsFetch = func(ctx context.Context, repo Repo, sha string) (*gh.ListCheckRunsResults, error) {
		res, _, err := ghc.Checks.ListCheckRunsForRef(ctx, repo.Owner, repo.Name, sha, &gh.ListCheckRunsOptions{
			ListOptions: gh.ListOptions{PerPage: pageSize},
		})
		return res, err
	}

	client.closedPRsFetch = func(ctx context.Context, repo Repo) ([]*gh.PullRequest, error) {
		prs, _, err := ghc.PullRequests.List(ctx, repo.Owner, repo.Name, &gh.PullRequestListOptions{
			State:       "closed",
			Sort:        "updated",
			Direction:   "desc",
			ListOptions: gh.ListOptions{PerPage: closedPageSize},
		})
		return prs, err
	}

	client.gitHubCoreRateFetch = func(ctx context.Context) (*gh.Rate, error) {
		rateLimits, _, err := ghc.RateLimits(ctx)
		if err != nil {
			return nil, err
		}
		if rateLimits == nil {
			return nil, nil
		}
		return rateLimits.Core, nil
	}

	return client, nil
}

func newGHAuthClient(ctx context.Context, appID, installationID int64) *http.Client {
	if tokenSource := newAppTokenSource(appID); tokenSource != nil && installationID != 0 {
		installationTokenSource := ghauth.NewInstallationTokenSource(installationID, tokenSource, ghauth.WithContext(ctx))
		log.Infof("using GitHub App credentials for installation %d", installationID)
		return oauth2.NewClient(ctx, installationTokenSource)
	}

	// no app creds, try to use a personal access token
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		log.Infof("No GitHub token environment variable, checking git config")
		var err error
		token, err = gitconfig.GithubToken()
		if err != nil {
			log.WithError(err).Debug("unable to retrieve GitHub token from git config")
		}
	}
	if token != "" {
		log.Infof("using GitHub access token")
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		return oauth2.NewClient(ctx, ts)
	}

	log.Warningf("using unauthenticated GitHub client, requests will be rate-limited")
	return nil
}

func newAppTokenSource(appID int64) oauth2.TokenSource {
	if appID == 0 {
		return nil
	}
	privateKey := os.Getenv("GITHUB_APP_CLIENT_KEY")
	if privateKey == "" {
		log.Warn("missing GITHUB_APP_CLIENT_KEY, will not authenticate as GitHub App")
		return nil
	}
	appTokenSource, err := ghauth.NewApplicationTokenSource(appID, []byte(privateKey))
	if err != nil {
		log.Errorf("Error creating application token source: %s", err)
		return nil
	}
	return appTokenSource
}

type forceRefreshKey struct{}

// WithForceRefresh marks ctx so upstream calls made with it skip cached responses. Fresh
// responses are still stored for later callers.
func WithForceRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, forceRefreshKey{}, true)
}

func isForceRefresh(ctx context.Context) bool {
	force, _ := ctx.Value(forceRefreshKey{}).(bool)
	return force
}

// fetch runs one upstream call through the revalidation cache. Only successful responses are
// cached, so a failed call is retried on the next cycle.
func fetch[T any](ctx context.Context, c *Client, key requestKey, fn func() (T, error)) (T, error) {
	var zero T
	opts := cache.RequestOptions{ForceRefresh: isForceRefresh(ctx), Revalidate: c.revalidate}
	return chaoscache.GetDataFromCacheOrGenerate(c.cache, opts, key, func() (T, error) {
		v, err := fn()
		err = classify(err)
		recordRequest(key.Endpoint, err)
		return v, err
	}, zero)
}

// ListOpenPullRequests returns every open pull request in the repository. Any failure aborts
// the listing, no partial result is returned.
func (c *Client) ListOpenPullRequests(ctx context.Context, repo Repo) ([]*gh.PullRequest, error) {
	var all []*gh.PullRequest
	for page := 1; ; page++ {
		prs, err := fetch(ctx, c, requestKey{Endpoint: endpointOpenPulls, Repo: repo.String(), Page: page}, func() ([]*gh.PullRequest, error) {
			return c.openPRsFetch(ctx, repo, page)
		})
		if err != nil {
			return nil, err
		}

		all = append(all, prs...)
		if len(prs) < pageSize {
			return all, nil
		}
	}
}

// ListReactions returns all reactions on a pull request. A failed page ends the listing with
// whatever was collected so far; one broken pull request must not take down the leaderboard.
func (c *Client) ListReactions(ctx context.Context, repo Repo, number int) []Reaction {
	var all []Reaction
	for page := 1; ; page++ {
		reactions, err := fetch(ctx, c, requestKey{Endpoint: endpointReactions, Repo: repo.String(), Number: number, Page: page}, func() ([]Reaction, error) {
			return c.reactionsFetch(ctx, repo, number, page)
		})
		if err != nil {
			log.WithError(err).
				WithField("repo", repo.String()).
				WithField("number", number).
				WithField("page", page).
				Warn("failed to fetch reactions, using what we have")
			degradedFieldsMetric.WithLabelValues(degradedFieldReactions).Inc()
			return all
		}

		all = append(all, reactions...)
		if len(reactions) < pageSize {
			return all
		}
	}
}

// GetPullRequestDetail fetches merge computability and discussion size for a pull request.
// GitHub computes mergeability lazily and reports null until it has, which we treat as
// mergeable, as we do any failure. The next cycle picks up the real value.
func (c *Client) GetPullRequestDetail(ctx context.Context, repo Repo, number int) PullRequestDetail {
	pr, err := fetch(ctx, c, requestKey{Endpoint: endpointPullDetail, Repo: repo.String(), Number: number}, func() (*gh.PullRequest, error) {
		return c.prFetch(ctx, repo, number)
	})
	if err != nil || pr == nil {
		log.WithError(err).
			WithField("repo", repo.String()).
			WithField("number", number).
			Warn("failed to fetch pull request detail, assuming mergeable")
		degradedFieldsMetric.WithLabelValues(degradedFieldMergeable).Inc()
		return PullRequestDetail{Mergeable: true, Degraded: true}
	}

	detail := PullRequestDetail{
		Mergeable: true,
		Comments:  CommentCount(pr),
	}
	if pr.Mergeable != nil {
		detail.Mergeable = *pr.Mergeable
	}
	return detail
}

// ChecksPassed reports whether every check run on sha completed successfully. A commit with
// no check runs passes, and so does one whose check runs cannot be fetched.
func (c *Client) ChecksPassed(ctx context.Context, repo Repo, sha string) bool {
	if sha == "" {
		return true
	}

	res, err := fetch(ctx, c, requestKey{Endpoint: endpointCheckRuns, Repo: repo.String(), SHA: sha}, func() (*gh.ListCheckRunsResults, error) {
		return c.checkRunsFetch(ctx, repo, sha)
	})
	if err != nil || res == nil {
		log.WithError(err).
			WithField("repo", repo.String()).
			WithField("sha", sha).
			Warn("failed to fetch check runs, assuming passed")
		degradedFieldsMetric.WithLabelValues(degradedFieldChecks).Inc()
		return true
	}

	if res.GetTotal() == 0 {
		return true
	}
	for _, run := range res.CheckRuns {
		if run.GetStatus() != checkStatusCompleted || run.GetConclusion() != checkConclusionSuccess {
			return false
		}
	}
	return true
}

// ListClosedPullRequests returns the most recently updated closed pull requests, merged or not.
func (c *Client) ListClosedPullRequests(ctx context.Context, repo Repo) ([]*gh.PullRequest, error) {
	return fetch(ctx, c, requestKey{Endpoint: endpointClosedPulls, Repo: repo.String()}, func() ([]*gh.PullRequest, error) {
		return c.closedPRsFetch(ctx, repo)
	})
}

// CoreRateLimit returns the current core API quota. It is never cached.
func (c *Client) CoreRateLimit(ctx context.Context) (*gh.Rate, error) {
	rate, err := c.gitHubCoreRateFetch(ctx)
	err = classify(err)
	recordRequest(endpointRateLimit, err)
	return rate, err
}

// IsNearRateLimit reports whether fewer than rateLimitThreshold core requests remain.
func (c *Client) IsNearRateLimit(ctx context.Context) bool {
	rate, err := c.CoreRateLimit(ctx)
	if err != nil || rate == nil {
		// presume we are rate limited if we can't even get the rate limit
		return true
	}

	log.Debugf("GitHub Limit:%d, Remaining:%d", rate.Limit, rate.Remaining)
	return rate.Remaining < rateLimitThreshold
}

// CommentCount returns the total discussion size of a pull request payload, 0 when absent.
func CommentCount(pr *gh.PullRequest) int {
	return pr.GetComments() + pr.GetReviewComments()
}
