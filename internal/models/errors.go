package models

import "errors"

// Failure taxonomy shared across the fetcher, scorer, store and delivery
// layers. Per-item failures wrap one of these so callers can decide between
// skip, retry and abort without string matching.
var (
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrMalformedResponse = errors.New("malformed response")
	ErrDeliveryFailed    = errors.New("delivery failed")
	ErrStoreUnavailable  = errors.New("store unavailable")
)
