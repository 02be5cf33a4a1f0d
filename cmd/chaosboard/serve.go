package main

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openchaos/chaosboard/pkg/chaosserver"
	"github.com/openchaos/chaosboard/pkg/flags"
)

type ServerFlags struct {
	*CommonFlags
	APIFlags *flags.APIFlags
}

func NewServerFlags() *ServerFlags {
	return &ServerFlags{
		CommonFlags: NewCommonFlags(),
		APIFlags:    flags.NewAPIFlags(),
	}
}

func (f *ServerFlags) BindFlags(flagSet *pflag.FlagSet) {
	f.CommonFlags.BindFlags(flagSet)
	f.APIFlags.BindFlags(flagSet)
}

func NewServeCommand() *cobra.Command {
	f := NewServerFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pull request leaderboard API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			deps, err := f.build(ctx)
			if err != nil {
				return err
			}
			if f.APIFlags.RefreshInterval < 0 {
				return errors.New("--refresh-interval must not be negative")
			}

			server := chaosserver.NewServer(
				f.APIFlags.ListenAddr,
				deps.leaderboard,
				deps.client,
				deps.cache,
				f.CacheFlags.Revalidate,
			)

			if f.APIFlags.RefreshInterval > 0 {
				refresher := chaosserver.NewRefresher(deps.leaderboard, deps.client, deps.cache,
					f.CacheFlags.Revalidate, f.APIFlags.RefreshInterval)
				go refresher.Run(ctx)
			}

			if f.APIFlags.MetricsAddr != "" {
				go serveMetrics(f.APIFlags.MetricsAddr)
			}

			server.Serve()
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}

// serveMetrics serves our metrics endpoint for prometheus to scrape.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := metricsServer.ListenAndServe(); err != nil {
		log.WithError(err).Fatal("metrics server exited")
	}
}
