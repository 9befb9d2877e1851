package entities

import "errors"

// ErrEmptyName is returned when a drug name is blank after trimming.
// It is a client input error and is never retried.
var ErrEmptyName = errors.New("drug name must not be empty")

// Provider failures. These never leave the narrative synthesizer: every one
// of them is turned into a fallback narrative.
var (
	ErrProviderUnavailable       = errors.New("text generation provider unavailable")
	ErrProviderTimeout           = errors.New("text generation provider timed out")
	ErrProviderMalformedResponse = errors.New("text generation provider returned a malformed response")
)
