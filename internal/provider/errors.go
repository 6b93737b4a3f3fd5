package provider

import (
	"context"
	"errors"
	"fmt"
)

// Provider failure kinds. Every provider error wraps exactly one of these so
// callers can classify failures without knowing which provider produced them.
var (
	ErrMissingCredential = errors.New("provider credential not configured")
	ErrTimeout           = errors.New("provider call timed out")
	ErrRequestFailure    = errors.New("provider request failed")
	ErrUpstream          = errors.New("provider returned an upstream error")
	ErrNoMatch           = errors.New("no matching result")
	ErrUnparseable       = errors.New("provider response did not match expected format")
)

// Kind maps an error to its taxonomy label for context error entries and
// metrics. Unrecognized errors report as "RequestFailure".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "MissingCredential"
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	case errors.Is(err, ErrUpstream):
		return "UpstreamError"
	case errors.Is(err, ErrNoMatch):
		return "NoMatch"
	case errors.Is(err, ErrUnparseable):
		return "Unparseable"
	default:
		return "RequestFailure"
	}
}

// Upstreamf wraps ErrUpstream with an HTTP status for non-2xx responses.
func Upstreamf(source string, status int) error {
	return fmt.Errorf("%w: %s returned status %d", ErrUpstream, source, status)
}
