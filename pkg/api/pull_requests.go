package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	apitype "github.com/openchaos/chaosboard/pkg/apis/api"
	"github.com/openchaos/chaosboard/pkg/apis/cache"
	"github.com/openchaos/chaosboard/pkg/github"
	"github.com/openchaos/chaosboard/pkg/leaderboard"
	"github.com/openchaos/chaosboard/pkg/util/param"
)

// Leaderboard is what the pull request handlers read from.
type Leaderboard interface {
	Repo() github.Repo
	MergeHourUTC() int
	GetOrganizedPRs(ctx context.Context) (apitype.OrganizedPRs, error)
	GetOpenPRs(ctx context.Context) ([]apitype.PullRequest, error)
	GetMergedPRs(ctx context.Context) ([]apitype.MergedPullRequest, error)
}

// reportKey identifies a cached API response.
type reportKey struct {
	Report string
	Repo   string
}

// requestContext propagates forceRefresh to the upstream calls made for the request.
func requestContext(req *http.Request, opts cache.RequestOptions) context.Context {
	if opts.ForceRefresh {
		return github.WithForceRefresh(req.Context())
	}
	return req.Context()
}

func requestOptions(req *http.Request, revalidate time.Duration) cache.RequestOptions {
	return cache.RequestOptions{
		ForceRefresh: param.ReadBool(req, "forceRefresh"),
		Revalidate:   revalidate,
	}
}

func organizedPRs(ctx context.Context, opts cache.RequestOptions, lb Leaderboard, c cache.Cache) (apitype.OrganizedPRs, error) {
	return getReportFromCacheOrGenerate(c, opts,
		reportKey{Report: "organized", Repo: lb.Repo().String()},
		func() (apitype.OrganizedPRs, error) {
			return lb.GetOrganizedPRs(ctx)
		}, apitype.OrganizedPRs{})
}

// PrimeOrganizedPullRequests recomputes the ranked views and stores them under the key
// the organized and schedule endpoints read, so requests are answered from cache.
func PrimeOrganizedPullRequests(ctx context.Context, lb Leaderboard, c cache.Cache, revalidate time.Duration) (apitype.OrganizedPRs, error) {
	return organizedPRs(github.WithForceRefresh(ctx), cache.RequestOptions{ForceRefresh: true, Revalidate: revalidate}, lb, c)
}

// PrintOrganizedPullRequests responds with the ranked views of the open pull requests.
func PrintOrganizedPullRequests(w http.ResponseWriter, req *http.Request, lb Leaderboard, c cache.Cache, revalidate time.Duration) {
	opts := requestOptions(req, revalidate)
	organized, err := organizedPRs(requestContext(req, opts), opts, lb, c)
	if err != nil {
		failureResponse(w, err)
		return
	}
	RespondWithJSON(http.StatusOK, w, organized)
}

// PrintOpenPullRequests responds with every open pull request in leaderboard order,
// optionally capped by the limit parameter.
func PrintOpenPullRequests(w http.ResponseWriter, req *http.Request, lb Leaderboard, c cache.Cache, revalidate time.Duration) {
	opts := requestOptions(req, revalidate)
	prs, err := getReportFromCacheOrGenerate(c, opts,
		reportKey{Report: "open", Repo: lb.Repo().String()},
		func() ([]apitype.PullRequest, error) {
			return lb.GetOpenPRs(requestContext(req, opts))
		}, nil)
	if err != nil {
		failureResponse(w, err)
		return
	}

	if limit := param.ReadInt(req, "limit", 0); limit > 0 && len(prs) > limit {
		prs = prs[:limit]
	}
	if prs == nil {
		prs = []apitype.PullRequest{}
	}
	RespondWithJSON(http.StatusOK, w, prs)
}

// PrintMergedPullRequests responds with the hall of past winners.
func PrintMergedPullRequests(w http.ResponseWriter, req *http.Request, lb Leaderboard, c cache.Cache, revalidate time.Duration) {
	opts := requestOptions(req, revalidate)
	merged, err := getReportFromCacheOrGenerate(c, opts,
		reportKey{Report: "merged", Repo: lb.Repo().String()},
		func() ([]apitype.MergedPullRequest, error) {
			return lb.GetMergedPRs(requestContext(req, opts))
		}, nil)
	if err != nil {
		failureResponse(w, err)
		return
	}
	if merged == nil {
		merged = []apitype.MergedPullRequest{}
	}
	RespondWithJSON(http.StatusOK, w, merged)
}

// PrintMergeSchedule responds with the next merge slot and the pull request in line for it.
// The countdown is computed per request, only the rankings come from cache.
func PrintMergeSchedule(w http.ResponseWriter, req *http.Request, lb Leaderboard, c cache.Cache, revalidate time.Duration) {
	opts := requestOptions(req, revalidate)
	organized, err := organizedPRs(requestContext(req, opts), opts, lb, c)
	if err != nil {
		failureResponse(w, err)
		return
	}
	RespondWithJSON(http.StatusOK, w, leaderboard.BuildSchedule(organized, time.Now(), lb.MergeHourUTC()))
}

func failureResponse(w http.ResponseWriter, err error) {
	code := http.StatusBadGateway
	message := "Failed to fetch pull requests from GitHub, try again shortly."
	if github.IsRateLimited(err) {
		code = http.StatusServiceUnavailable
		message = "Rate limited by GitHub API, try again shortly."
	}
	log.WithError(err).Warn("serving upstream failure")
	RespondWithJSON(code, w, map[string]interface{}{
		"code":            code,
		"message":         message,
		"upstream_status": github.StatusCode(err),
	})
}
