package chat

import "errors"

var (
	// ErrInvalidRequest is returned for malformed turn lists. Reported before streaming starts.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrAugmentationFailed is logged and swallowed: the request continues without domain data.
	ErrAugmentationFailed = errors.New("augmentation failed")
	// ErrModelUnavailable means the provider rejected the request before any fragment arrived.
	ErrModelUnavailable = errors.New("model unavailable")
)
