package flags

import (
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/openchaos/chaosboard/pkg/apis/cache"
	"github.com/openchaos/chaosboard/pkg/cache/compressed"
	"github.com/openchaos/chaosboard/pkg/cache/redis"
)

// CacheFlags holds caching configuration information for chaosboard.
type CacheFlags struct {
	RedisURL   string
	Compress   bool
	Revalidate time.Duration
}

func NewCacheFlags() *CacheFlags {
	return &CacheFlags{
		Revalidate: cache.DefaultRevalidate,
	}
}

func (f *CacheFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.RedisURL,
		"redis-url",
		os.Getenv("REDIS_URL"),
		"Redis URL for caching")
	fs.BoolVar(&f.Compress, "cache-compress", f.Compress, "Gzip values before storing them in redis")
	fs.DurationVar(&f.Revalidate, "cache-revalidate", f.Revalidate, "How long GitHub responses and rankings are served from cache")
}

func (f *CacheFlags) Validate() error {
	if f.Revalidate <= 0 {
		return errors.New("--cache-revalidate must be positive")
	}
	return nil
}

// GetCacheClient returns nil, and no error, when no redis URL is configured.
func (f *CacheFlags) GetCacheClient() (cache.Cache, error) {
	if f.RedisURL == "" {
		return nil, nil
	}

	redisCache, err := redis.NewRedisCache(f.RedisURL)
	if err != nil {
		return nil, errors.WithMessage(err, "invalid --redis-url")
	}
	if err := redisCache.Ping(); err != nil {
		return nil, errors.WithMessage(err, "couldn't reach redis")
	}
	log.Info("caching GitHub responses in redis")

	if !f.Compress {
		return redisCache, nil
	}
	return compressed.NewCompressedCache(redisCache)
}
