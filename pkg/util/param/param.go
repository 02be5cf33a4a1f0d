package param

import (
	"net/http"
	"regexp"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// when requesting a param, also validate it against a regexp to ensure it is what we expect
var boolRegexp = regexp.MustCompile(`^(true|false|1|0)$`)
var numRegexp = regexp.MustCompile(`^[\d]+$`)
var paramRegexp = map[string]*regexp.Regexp{
	"forceRefresh": boolRegexp,
	"limit":        numRegexp,
}

// SafeRead returns the value of a query parameter only if it matches the expected format.
func SafeRead(req *http.Request, name string) string {
	re, ok := paramRegexp[name]
	if !ok {
		log.Fatalf("code BUG: request for unknown param %s", name) // revive:disable-line:deep-exit
	}
	value := req.URL.Query().Get(name)
	if value == "" || re.MatchString(value) {
		return value
	}
	log.Warnf("invalid value for %s param: %q", name, value)
	return ""
}

// ReadBool returns a validated boolean query parameter, false when absent or invalid.
func ReadBool(req *http.Request, name string) bool {
	b, err := strconv.ParseBool(SafeRead(req, name))
	return err == nil && b
}

// ReadInt returns a validated non-negative integer query parameter, or def when absent or invalid.
func ReadInt(req *http.Request, name string, def int) int {
	v := SafeRead(req, name)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
