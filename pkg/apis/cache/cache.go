package cache

import "time"

// DefaultRevalidate is how long upstream data may be served from cache before it is fetched again.
const DefaultRevalidate = 300 * time.Second

type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, content []byte, duration time.Duration) error
}

// RequestOptions carries the caching intent of a single request.
type RequestOptions struct {
	ForceRefresh bool
	// Revalidate is the freshness window for anything stored on behalf of this request.
	Revalidate time.Duration
}

func (o RequestOptions) TTL() time.Duration {
	if o.Revalidate > 0 {
		return o.Revalidate
	}
	return DefaultRevalidate
}
