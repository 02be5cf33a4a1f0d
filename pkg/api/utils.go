package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/openchaos/chaosboard/pkg/apis/cache"
	chaoscache "github.com/openchaos/chaosboard/pkg/cache"
)

// getReportFromCacheOrGenerate attempts to find a cached response otherwise generates a new one.
func getReportFromCacheOrGenerate[T any](c cache.Cache, cacheOptions cache.RequestOptions, cacheKey interface{}, generateFn func() (T, error), defaultVal T) (T, error) {
	return chaoscache.GetDataFromCacheOrGenerate(c, cacheOptions, cacheKey, generateFn, defaultVal)
}

// RespondWithJSON writes data as the JSON body of a response with the given status code.
func RespondWithJSON(statusCode int, w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("could not write JSON response")
	}
}
