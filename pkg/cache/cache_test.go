package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicache "github.com/openchaos/chaosboard/pkg/apis/cache"
)

type mapCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mapCache) Get(key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("miss")
}

func (m *mapCache) Set(key string, content []byte, duration time.Duration) error {
	m.data[key] = content
	m.ttls[key] = duration
	return nil
}

type requestKey struct {
	Endpoint string
	Page     int
}

func TestGetDataFromCacheOrGenerate(t *testing.T) {
	c := newMapCache()
	calls := 0
	gen := func() ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	}
	key := requestKey{Endpoint: "pulls", Page: 1}

	got, err := GetDataFromCacheOrGenerate(c, apicache.RequestOptions{}, key, gen, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	got, err = GetDataFromCacheOrGenerate(c, apicache.RequestOptions{}, key, gen, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 1, calls, "second lookup should be served from cache")

	for _, ttl := range c.ttls {
		assert.Equal(t, apicache.DefaultRevalidate, ttl)
	}

	_, err = GetDataFromCacheOrGenerate(c, apicache.RequestOptions{ForceRefresh: true}, key, gen, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "force refresh bypasses the cache")
}

func TestGetDataFromCacheOrGenerateDoesNotCacheFailures(t *testing.T) {
	c := newMapCache()
	gen := func() (string, error) {
		return "", fmt.Errorf("upstream down")
	}

	_, err := GetDataFromCacheOrGenerate(c, apicache.RequestOptions{Revalidate: time.Minute}, "key", gen, "")
	assert.Error(t, err)
	assert.Empty(t, c.data)
}

func TestGetDataFromCacheOrGenerateNilCache(t *testing.T) {
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := GetDataFromCacheOrGenerate[int](nil, apicache.RequestOptions{}, "key", func() (int, error) {
			calls++
			return 1, nil
		}, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestGetDataFromCacheOrGenerateRejectsBadKeys(t *testing.T) {
	type private struct{ page int }
	gen := func() (int, error) { return 0, nil }

	assert.Panics(t, func() {
		_, _ = GetDataFromCacheOrGenerate(newMapCache(), apicache.RequestOptions{}, private{page: 1}, gen, 0)
	})
	assert.Panics(t, func() {
		_, _ = GetDataFromCacheOrGenerate(newMapCache(), apicache.RequestOptions{}, "", gen, 0)
	})
}
