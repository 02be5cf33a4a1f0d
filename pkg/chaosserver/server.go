package chaosserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	httpmetrics "github.com/slok/go-http-metrics/metrics"
	metricsprom "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	middlewarestd "github.com/slok/go-http-metrics/middleware/std"

	"github.com/openchaos/chaosboard/pkg/api"
	"github.com/openchaos/chaosboard/pkg/apis/cache"
)

// httpMetricsRecorder registers the request metrics with the default registry exactly once,
// however many servers the process builds.
var httpMetricsRecorder = sync.OnceValue(func() httpmetrics.Recorder {
	return metricsprom.NewRecorder(metricsprom.Config{Prefix: "chaosboard"})
})

// Leaderboard is the aggregation engine the server exposes.
type Leaderboard interface {
	api.Leaderboard
}

func NewServer(
	listenAddr string,
	lb Leaderboard,
	rateLimiter api.RateLimiter,
	cacheClient cache.Cache,
	revalidate time.Duration,
) *Server {
	return &Server{
		listenAddr:  listenAddr,
		leaderboard: lb,
		rateLimiter: rateLimiter,
		cache:       cacheClient,
		revalidate:  revalidate,
	}
}

type Server struct {
	listenAddr  string
	leaderboard Leaderboard
	rateLimiter api.RateLimiter
	cache       cache.Cache
	revalidate  time.Duration
	httpServer  *http.Server
}

func (s *Server) jsonOrganizedPullRequests(w http.ResponseWriter, req *http.Request) {
	api.PrintOrganizedPullRequests(w, req, s.leaderboard, s.cache, s.revalidate)
}

func (s *Server) jsonOpenPullRequests(w http.ResponseWriter, req *http.Request) {
	api.PrintOpenPullRequests(w, req, s.leaderboard, s.cache, s.revalidate)
}

func (s *Server) jsonMergedPullRequests(w http.ResponseWriter, req *http.Request) {
	api.PrintMergedPullRequests(w, req, s.leaderboard, s.cache, s.revalidate)
}

func (s *Server) jsonMergeSchedule(w http.ResponseWriter, req *http.Request) {
	api.PrintMergeSchedule(w, req, s.leaderboard, s.cache, s.revalidate)
}

func (s *Server) jsonHealth(w http.ResponseWriter, req *http.Request) {
	api.PrintHealth(w, req, s.leaderboard.Repo(), s.rateLimiter)
}

// Handler returns the API routes wrapped in request metrics.
func (s *Server) Handler() http.Handler {
	// Use private ServeMux to prevent tests from stomping on http.DefaultServeMux
	serveMux := http.NewServeMux()

	serveMux.HandleFunc("GET /api/pull_requests/organized", s.jsonOrganizedPullRequests)
	serveMux.HandleFunc("GET /api/pull_requests/open", s.jsonOpenPullRequests)
	serveMux.HandleFunc("GET /api/pull_requests/merged", s.jsonMergedPullRequests)
	serveMux.HandleFunc("GET /api/schedule", s.jsonMergeSchedule)
	serveMux.HandleFunc("GET /api/health", s.jsonHealth)

	mdlw := middleware.New(middleware.Config{
		Recorder: httpMetricsRecorder(),
	})
	return middlewarestd.Handler("", mdlw, serveMux)
}

func (s *Server) Serve() {
	// Store a pointer to the HTTP server for later retrieval.
	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("Serving leaderboard for %s on %s", s.leaderboard.Repo(), s.listenAddr)

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.WithError(err).Fatal("Server exited")
	}
}

// Shutdown stops a server started with Serve.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) GetHTTPServer() *http.Server {
	return s.httpServer
}
