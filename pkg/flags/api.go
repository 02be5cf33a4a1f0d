package flags

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/openchaos/chaosboard/pkg/chaosserver"
)

// APIFlags holds configuration information for the chaosboard API server.
type APIFlags struct {
	ListenAddr      string
	MetricsAddr     string
	RefreshInterval time.Duration
}

func NewAPIFlags() *APIFlags {
	return &APIFlags{
		ListenAddr:      ":8080",
		MetricsAddr:     ":2112",
		RefreshInterval: chaosserver.DefaultRefreshInterval,
	}
}

func (f *APIFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ListenAddr, "listen", f.ListenAddr, "The address to serve the API on (default :8080)")
	fs.StringVar(&f.MetricsAddr, "listen-metrics", f.MetricsAddr, "The address to serve prometheus metrics on, empty to disable (default :2112)")
	fs.DurationVar(&f.RefreshInterval, "refresh-interval", f.RefreshInterval, "How often the leaderboard is recomputed in the background, 0 to disable")
}
