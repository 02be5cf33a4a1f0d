package main

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openchaos/chaosboard/pkg/chaosserver"
)

type DaemonFlags struct {
	*CommonFlags

	RefreshInterval time.Duration
	MetricsAddr     string
}

func NewDaemonFlags() *DaemonFlags {
	return &DaemonFlags{
		CommonFlags:     NewCommonFlags(),
		RefreshInterval: chaosserver.DefaultRefreshInterval,
		MetricsAddr:     ":2112",
	}
}

func (f *DaemonFlags) BindFlags(fs *pflag.FlagSet) {
	f.CommonFlags.BindFlags(fs)
	fs.DurationVar(&f.RefreshInterval, "refresh-interval", f.RefreshInterval, "How often the leaderboard is recomputed")
	fs.StringVar(&f.MetricsAddr, "listen-metrics", f.MetricsAddr, "The address to serve prometheus metrics on, empty to disable (default :2112)")
}

// NewDaemonCommand keeps a shared redis cache warm for API replicas started with
// --refresh-interval=0.
func NewDaemonCommand() *cobra.Command {
	f := NewDaemonFlags()

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Recompute the leaderboard on an interval and publish metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := f.build(context.Background())
			if err != nil {
				return err
			}
			if deps.cache == nil {
				log.Warn("no --redis-url given, refreshed rankings will only be visible as metrics")
			}

			if f.MetricsAddr != "" {
				go serveMetrics(f.MetricsAddr)
			}

			processes := []chaosserver.DaemonProcess{
				chaosserver.NewRefresher(deps.leaderboard, deps.client, deps.cache, f.CacheFlags.Revalidate, f.RefreshInterval),
			}
			chaosserver.NewDaemonServer(processes).Serve()
			return nil
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}
