package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Stream selection failures. All deterministic: the same catalog and
	// request fail identically on every attempt.
	ErrFormatNotFound    = errors.New("requested format not found in catalog")
	ErrVideoUnavailable  = errors.New("no video stream available for requested container")
	ErrNoAudioAvailable  = errors.New("no audio stream available to merge")
	ErrUnsupportedStream = errors.New("stream has neither audio nor video")

	// Pipeline failures. Fetch and merge errors may be transient (network
	// blips, flaky executables) and are reasonable to retry.
	ErrFetchFailed   = errors.New("stream fetch failed")
	ErrMergeFailed   = errors.New("merge failed")
	ErrPublishFailed = errors.New("publish failed")
)
