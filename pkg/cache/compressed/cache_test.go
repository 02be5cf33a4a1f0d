package compressed

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type PseudoCache struct {
	cache map[string][]byte
}

func (c *PseudoCache) Get(key string) ([]byte, error) {
	v, ok := c.cache[key]
	if !ok {
		return nil, fmt.Errorf("cache miss for %s", key)
	}
	return v, nil
}

func (c *PseudoCache) Set(key string, content []byte, duration time.Duration) error {
	c.cache[key] = content
	return nil
}

const payload = `[{"number":12,"title":"add a guestbook","user":{"login":"someone"}},{"number":13,"title":"add a guestbook","user":{"login":"someone-else"}}]`

func TestCompressedCacheRoundTrip(t *testing.T) {
	backing := &PseudoCache{cache: make(map[string][]byte)}
	c, err := NewCompressedCache(backing)
	require.NoError(t, err)

	require.NoError(t, c.Set("open-prs", []byte(payload), time.Minute))

	stored, ok := backing.cache[cachePrefix+"open-prs"]
	require.True(t, ok, "value should be stored under the prefixed key")
	assert.NotEqual(t, []byte(payload), stored)

	got, err := c.Get("open-prs")
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))
}

func TestCompressedCacheEmptyValueIsNotStored(t *testing.T) {
	backing := &PseudoCache{cache: make(map[string][]byte)}
	c, err := NewCompressedCache(backing)
	require.NoError(t, err)

	require.NoError(t, c.Set("empty", nil, time.Minute))
	assert.Empty(t, backing.cache)
}

func TestCompressedCacheRejectsCorruptEntries(t *testing.T) {
	backing := &PseudoCache{cache: make(map[string][]byte)}
	c, err := NewCompressedCache(backing)
	require.NoError(t, err)

	backing.cache[cachePrefix+"short"] = []byte("tiny")
	_, err = c.Get("short")
	assert.Error(t, err)

	require.NoError(t, c.Set("tampered", []byte(payload), time.Minute))
	stored := backing.cache[cachePrefix+"tampered"]
	stored[len(stored)-1] ^= 0xff
	_, err = c.Get("tampered")
	assert.Error(t, err)
}

func TestNewCompressedCacheRequiresBacking(t *testing.T) {
	_, err := NewCompressedCache(nil)
	assert.Error(t, err)
}
