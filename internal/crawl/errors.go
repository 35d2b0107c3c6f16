// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"errors"
	"strings"
)

// Errors returned by Crawl. Callers match them with errors.Is.
var (
	// ErrTransientNetwork means a page could not be fetched after all
	// permitted attempts.
	ErrTransientNetwork = errors.New("transient network error")

	// ErrRateLimitExceeded means the provider reported quota exhaustion.
	// It is never retried; records gathered so far are kept in the Result.
	ErrRateLimitExceeded = errors.New("provider rate limit exceeded")

	// ErrMalformedResponse means the provider answered with a body that
	// cannot be used. On the first page no output is produced.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrRequestRejected means the provider refused the request, typically
	// an invalid credential or author identifier.
	ErrRequestRejected = errors.New("request rejected by provider")
)

// quotaMarkers are lowercase fragments of provider error messages that
// signal the account's request allowance is used up.
var quotaMarkers = []string{
	"run out of searches",
	"monthly limit",
	"rate limit",
	"searches per month",
}

// noResultsMarker is the provider message for a page past the last article.
const noResultsMarker = "hasn't returned any results"

// IsQuotaMessage reports whether a provider error message signals quota
// exhaustion.
func IsQuotaMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, m := range quotaMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// IsRateLimited reports whether err is, or wraps, ErrRateLimitExceeded.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded)
}

// IsRetryable reports whether err is a transient failure a later run
// could succeed on without operator action.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientNetwork)
}

// ErrorClass names the failure class of a crawl error for diagnostics.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRateLimitExceeded):
		return "rate_limit_exceeded"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrRequestRejected):
		return "request_rejected"
	case errors.Is(err, ErrTransientNetwork):
		return "transient_network"
	default:
		return "unknown"
	}
}
