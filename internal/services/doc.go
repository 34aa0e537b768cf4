// Package services defines the [SourceSession] and [DestinationSession]
// interfaces and implements them for Spotify and Tidal.
//
// # Sessions
//
// A source session reads a library; a destination session reads, searches
// and writes one. The engine only sees the interfaces, so either side can
// be swapped for another catalog.
//
// # Spotify Implementation
//
// [SpotifySession] uses OAuth2 for authentication with automatic token
// refresh via [oauth2.Config.Client]. All collection endpoints are assembled
// through the fetcher package, sharing one rate limiter and retry policy.
//
// # Tidal Implementation
//
// [TidalSession] authenticates with a pre-established bearer token taken
// from the config file (obtained via `stx auth tidal`). Writes use the
// urlencoded form bodies the Tidal v1 API expects.
//
// # Error Handling
//
// Non-2xx responses are classified before they reach the retry policy:
//   - 401/403 wrap [shared.ErrAuthFailed] and abort the run
//   - 429 and 5xx wrap [shared.ErrTransientService] and are retried
//   - anything else wraps [shared.ErrAPIRequest]
//
// Transport-level failures are treated as transient.
//
// # API Mappings
//
// Both services convert provider JSON into the models package's
// service-agnostic types: Spotify responses become Source* values with ISRC
// from external_ids; Tidal responses become destination candidates with
// durations widened to [time.Duration].
package services
