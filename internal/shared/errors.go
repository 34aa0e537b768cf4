package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")

	// API and service errors
	//
	// ErrTransientService marks rate-limit and 5xx-class failures that are
	// safe to retry. Everything else coming back from a catalog API is
	// treated as permanent and propagated.
	ErrTransientService = fmt.Errorf("transient service failure")
	ErrFetchExhausted   = fmt.Errorf("transient retries exhausted")
	ErrAPIRequest       = fmt.Errorf("API request failed")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Snapshot validation errors
	ErrMissingVersion     = fmt.Errorf("snapshot missing version field")
	ErrUnsupportedVersion = fmt.Errorf("snapshot version newer than supported")
	ErrMissingPlaylists   = fmt.Errorf("snapshot missing playlists field")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// IsTransient reports whether err is a retryable service failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientService)
}
