package github

import (
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v45/github"
)

// RateLimitedError is returned when GitHub answers a listing call with 403.
type RateLimitedError struct {
	Err error
}

func (e *RateLimitedError) Error() string {
	return "rate limited by GitHub API"
}

func (e *RateLimitedError) Unwrap() error {
	return e.Err
}

// UpstreamError is returned for any other failed listing call. StatusCode is zero when no
// response was received at all (timeouts, connection errors).
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("GitHub API error: %v", e.Err)
	}
	return fmt.Sprintf("GitHub API error: %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err, or anything it wraps, is a RateLimitedError.
func IsRateLimited(err error) bool {
	var rle *RateLimitedError
	return errors.As(err, &rle)
}

// StatusCode returns the upstream HTTP status carried by err, or 0 if there is none.
func StatusCode(err error) int {
	var rle *RateLimitedError
	if errors.As(err, &rle) {
		return http.StatusForbidden
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return responseStatus(err)
}

// classify turns a go-github error into one of our typed errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var rle *RateLimitedError
	var ue *UpstreamError
	if errors.As(err, &rle) || errors.As(err, &ue) {
		return err
	}

	code := responseStatus(err)
	if code == http.StatusForbidden {
		return &RateLimitedError{Err: err}
	}
	return &UpstreamError{StatusCode: code, Err: err}
}

func responseStatus(err error) int {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return abuseErr.Response.StatusCode
	}
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return respErr.Response.StatusCode
	}
	return 0
}
