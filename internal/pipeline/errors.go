package pipeline

import "errors"

// Sentinel errors (spec §7 "Error taxonomy"). ExtractionFailed is not part
// of this set: a missing body is never a thrown error, it surfaces as a
// well-formed Result carrying the configured error message.
var (
	ErrInvalidURL    = errors.New("pipeline: invalid url")
	ErrPolicyBlocked = errors.New("pipeline: blocked by url or mime policy")
	ErrFetchFailed   = errors.New("pipeline: fetch failed")
)
