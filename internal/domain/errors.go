package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerUnreachable indicates the search API could not be reached
	ErrServerUnreachable = errors.New("search server is unreachable")

	// ErrAuthFailed indicates the API credential was rejected
	ErrAuthFailed = errors.New("api credential is invalid")

	// ErrRateLimited indicates the API refused the request due to rate limits
	ErrRateLimited = errors.New("api rate limit exceeded")

	// ErrMissingCredential indicates no API credential is stored
	ErrMissingCredential = errors.New("api credential not found")

	// ErrUserExists indicates an account with that username already exists
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound indicates no account with that username exists
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials indicates a failed password check at login
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrEncodeFailed indicates image bytes could not be re-encoded for storage
	ErrEncodeFailed = errors.New("image could not be encoded")
)
