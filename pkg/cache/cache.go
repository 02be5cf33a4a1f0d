// Package cache holds helpers shared by the cache implementations.
package cache

import (
	"encoding/json"
	"fmt"
	"reflect"

	log "github.com/sirupsen/logrus"

	"github.com/openchaos/chaosboard/pkg/apis/cache"
)

// GetDataFromCacheOrGenerate returns the cached value for cacheKey when one exists, otherwise it
// calls generateFn and stores a successful result for the request's revalidation window.
// Failed generations are never cached. A nil cache simply calls generateFn.
func GetDataFromCacheOrGenerate[T any](c cache.Cache, cacheOptions cache.RequestOptions, cacheKey interface{}, generateFn func() (T, error), defaultVal T) (T, error) {
	// an uncacheable key is a programming error, panic so it gets detected in testing
	if isStructWithNoPublicFields(cacheKey) {
		panic(fmt.Sprintf("you cannot use struct %s with no exported fields as a cache key", reflect.TypeOf(cacheKey)))
	} else if cacheKey == "" {
		panic(fmt.Sprintf("you cannot use empty string as a cache key for %s", reflect.TypeOf(defaultVal)))
	} else if cacheKey == nil {
		panic(fmt.Sprintf("cache key is nil for %s", reflect.TypeOf(defaultVal)))
	}

	if c == nil {
		return generateFn()
	}

	jsonCacheKey, err := json.Marshal(cacheKey)
	if err != nil {
		return defaultVal, err
	}

	if !cacheOptions.ForceRefresh {
		if res, err := c.Get(string(jsonCacheKey)); err == nil {
			log.WithFields(log.Fields{
				"key":  string(jsonCacheKey),
				"type": reflect.TypeOf(defaultVal).String(),
			}).Debugf("cache hit")
			var cr T
			if err := json.Unmarshal(res, &cr); err != nil {
				return defaultVal, err
			}
			return cr, nil
		}
		log.Debugf("cache miss for cache key: %s", string(jsonCacheKey))
	}

	result, err := generateFn()
	if err != nil {
		return result, err
	}

	cr, err := json.Marshal(result)
	if err != nil {
		log.WithError(err).Warningf("couldn't marshal item for cache")
		return result, nil
	}
	if err := c.Set(string(jsonCacheKey), cr, cacheOptions.TTL()); err != nil {
		log.WithError(err).Warningf("couldn't persist new item to cache")
	} else {
		log.Debugf("cache set for cache key: %s", string(jsonCacheKey))
	}
	return result, nil
}

// isStructWithNoPublicFields checks if the given interface is a struct with no public fields.
func isStructWithNoPublicFields(v interface{}) bool {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < val.NumField(); i++ {
		if val.Type().Field(i).IsExported() {
			return false
		}
	}
	return true
}
