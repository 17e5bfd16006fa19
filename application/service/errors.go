package service

import "errors"

// Service errors mapped to API responses by the transport layer.
var (
	// ErrNoCredentials indicates a request carried neither a bearer token nor an API key.
	ErrNoCredentials = errors.New("simdex: missing credentials")
	// ErrUnknownAPIKey indicates the supplied API key is not on record.
	ErrUnknownAPIKey = errors.New("simdex: unknown api key")
	// ErrInvalidCredentials indicates a failed email/password login.
	ErrInvalidCredentials = errors.New("simdex: invalid email or password")
	// ErrValidation indicates a malformed or incomplete request body.
	ErrValidation = errors.New("simdex: invalid request")
	// ErrRateLimited indicates the caller exhausted its per-minute quota.
	ErrRateLimited = errors.New("simdex: rate limit exceeded")
)
