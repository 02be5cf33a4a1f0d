package compressed

import (
	"bytes"
	"compress/gzip"

	log "github.com/sirupsen/logrus"

	// simple checksum usage for validation
	"crypto/md5" // nolint:gosec
	"fmt"
	"time"

	"github.com/openchaos/chaosboard/pkg/apis/cache"
)

const (
	cachePrefix  = "cc:"
	checksumSize = md5.Size
)

// Cache gzips values before handing them to the wrapped cache. Pull request listings are
// repetitive JSON and shrink well.
type Cache struct {
	Cache cache.Cache
}

func NewCompressedCache(c cache.Cache) (*Cache, error) {
	if c == nil {
		return nil, fmt.Errorf("compressed cache requires a backing cache")
	}
	return &Cache{
		Cache: c,
	}, nil
}

func (c Cache) Get(key string) ([]byte, error) {
	b, err := c.Cache.Get(cachePrefix + key)
	if err != nil {
		return nil, err
	}

	dataLen := len(b)
	if dataLen < checksumSize {
		return nil, fmt.Errorf("invalid cache item length")
	}

	// checksum trails the payload
	data := b[:dataLen-checksumSize]
	var checksum [checksumSize]byte
	copy(checksum[:], b[dataLen-checksumSize:])
	return uncompress(data, checksum)
}

func (c Cache) Set(key string, content []byte, duration time.Duration) error {
	startLen := len(content)
	if startLen <= 0 {
		log.Warningf("Key: %s data size is 0", key)
		return nil
	}

	data, checksum, err := compress(content)
	if err != nil {
		return err
	}
	data = append(data, checksum[:]...)

	log.WithFields(log.Fields{
		"key":    key,
		"before": startLen,
		"after":  len(data),
	}).Debug("compressed cache entry")

	return c.Cache.Set(cachePrefix+key, data, duration)
}

func compress(value []byte) ([]byte, [checksumSize]byte, error) {
	var buf bytes.Buffer
	sum := md5.Sum(value) // nolint:gosec

	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(value); err != nil {
		return nil, sum, err
	}
	if err := zw.Close(); err != nil {
		return nil, sum, err
	}
	return buf.Bytes(), sum, nil
}

func uncompress(value []byte, vSum [checksumSize]byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(value))
	if err != nil {
		return nil, err
	}

	var uncompressed bytes.Buffer
	if _, err = uncompressed.ReadFrom(zr); err != nil {
		return nil, err
	}
	if err := zr.Close(); err != nil {
		return nil, err
	}

	ret := uncompressed.Bytes()
	if md5.Sum(ret) != vSum { // nolint:gosec
		return nil, fmt.Errorf("check sum validation did not match")
	}

	return ret, nil
}
