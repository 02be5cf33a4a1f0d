package chaosserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	gh "github.com/google/go-github/v45/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apitype "github.com/openchaos/chaosboard/pkg/apis/api"
	"github.com/openchaos/chaosboard/pkg/github"
)

type fakeLeaderboard struct {
	mu        sync.Mutex
	organized apitype.OrganizedPRs
	err       error
	calls     int
}

func (f *fakeLeaderboard) Repo() github.Repo {
	return github.Repo{Owner: "skridlevsky", Name: "openchaos"}
}

func (f *fakeLeaderboard) MergeHourUTC() int {
	return 19
}

func (f *fakeLeaderboard) GetOrganizedPRs(ctx context.Context) (apitype.OrganizedPRs, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.organized, f.err
}

func (f *fakeLeaderboard) GetOpenPRs(ctx context.Context) ([]apitype.PullRequest, error) {
	return f.organized.TopByVotes, f.err
}

func (f *fakeLeaderboard) GetMergedPRs(ctx context.Context) ([]apitype.MergedPullRequest, error) {
	return []apitype.MergedPullRequest{{Number: 1, Author: "alice"}}, f.err
}

func (f *fakeLeaderboard) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRateLimiter struct{}

func (fakeRateLimiter) CoreRateLimit(ctx context.Context) (*gh.Rate, error) {
	return &gh.Rate{Limit: 5000, Remaining: 4000}, nil
}

type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{items: map[string][]byte{}}
}

func (m *mapCache) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.items[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("miss")
}

func (m *mapCache) Set(key string, content []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = content
	return nil
}

func sampleLeaderboard() *fakeLeaderboard {
	return &fakeLeaderboard{organized: apitype.OrganizedPRs{
		TopByVotes: []apitype.PullRequest{{Number: 4, Votes: 3, IsMergeable: true}},
		Summary:    apitype.Summary{OpenPullRequests: 1, Mergeable: 1},
	}}
}

func TestServerRoutes(t *testing.T) {
	s := NewServer(":0", sampleLeaderboard(), fakeRateLimiter{}, nil, time.Minute)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	tests := []struct {
		path     string
		wantCode int
		check    func(t *testing.T, body []byte)
	}{
		{
			path:     "/api/pull_requests/organized",
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got apitype.OrganizedPRs
				require.NoError(t, json.Unmarshal(body, &got))
				require.Len(t, got.TopByVotes, 1)
				assert.Equal(t, 4, got.TopByVotes[0].Number)
			},
		},
		{
			path:     "/api/pull_requests/open",
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got []apitype.PullRequest
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Len(t, got, 1)
			},
		},
		{
			path:     "/api/pull_requests/merged",
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got []apitype.MergedPullRequest
				require.NoError(t, json.Unmarshal(body, &got))
				require.Len(t, got, 1)
				assert.Equal(t, "alice", got[0].Author)
			},
		},
		{
			path:     "/api/schedule",
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got apitype.MergeSchedule
				require.NoError(t, json.Unmarshal(body, &got))
				require.NotNil(t, got.Candidate)
				assert.Equal(t, 4, got.Candidate.Number)
			},
		},
		{
			path:     "/api/health",
			wantCode: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var got apitype.Health
				require.NoError(t, json.Unmarshal(body, &got))
				assert.Equal(t, "skridlevsky/openchaos", got.Repository)
				assert.Equal(t, 4000, got.RateLimitRemaining)
			},
		},
		{
			path:     "/api/unknown",
			wantCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.check == nil {
				return
			}
			var body json.RawMessage
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			tt.check(t, body)
		})
	}
}

func TestServerRejectsWrites(t *testing.T) {
	s := NewServer(":0", sampleLeaderboard(), fakeRateLimiter{}, nil, time.Minute)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/pull_requests/organized", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServerRateLimitedUpstream(t *testing.T) {
	lb := sampleLeaderboard()
	lb.err = &github.RateLimitedError{}
	s := NewServer(":0", lb, fakeRateLimiter{}, nil, time.Minute)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/pull_requests/organized")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
