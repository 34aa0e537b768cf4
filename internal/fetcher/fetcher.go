// Package fetcher assembles complete collections from paginated,
// rate-limited catalog endpoints.
//
// It knows nothing about tracks or matching; it is a resilient list-assembly
// primitive reused for playlists, tracks, albums and artists. Pages are
// requested one at a time on the calling goroutine, paced by an optional
// [rate.Limiter], and transient failures (rate limits, 5xx) are retried with
// exponential backoff before the whole fetch is abandoned.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/stx/internal/shared"
	"golang.org/x/time/rate"
)

// Page is one chunk of a paginated collection. Done signals that the service
// reported no further pages after this one.
type Page[T any] struct {
	Items []T
	Done  bool
}

// PageFunc fetches the page starting at offset. Implementations translate
// offset into whatever the service expects (an offset parameter, a cursor
// they track internally) and must wrap rate-limit and 5xx failures in
// [shared.ErrTransientService] so the retry policy applies to them and only
// them.
type PageFunc[T any] func(ctx context.Context, offset int) (Page[T], error)

// Options tunes retry, pacing and ordering behavior for a fetch.
type Options struct {
	// Limiter paces page requests. Nil means no pacing.
	Limiter *rate.Limiter

	// MaxRetries bounds retries of a single failing page. Zero means the
	// default of 5.
	MaxRetries int

	// BaseDelay is the first backoff delay; it doubles on each retry.
	// Zero means the default of 500ms.
	BaseDelay time.Duration

	// NewestFirst marks endpoints whose natural order is most-recent-first
	// (favorites, saved albums). The assembled result is reversed so the
	// output is always chronological, oldest first.
	NewestFirst bool
}

const (
	defaultMaxRetries = 5
	defaultBaseDelay  = 500 * time.Millisecond
)

// All repeatedly invokes fn until the service reports no further pages and
// returns the assembled collection.
//
// A transient page failure is retried in place with exponential backoff;
// when retries are exhausted the error wraps [shared.ErrFetchExhausted]
// rather than silently truncating the collection. Permanent failures are
// returned immediately.
func All[T any](ctx context.Context, fn PageFunc[T], opts Options) ([]T, error) {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	baseDelay := opts.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}

	var items []T

	for {
		if opts.Limiter != nil {
			if err := opts.Limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limiter interrupted: %w", err)
			}
		}

		page, err := fetchPage(ctx, fn, len(items), maxRetries, baseDelay)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Items...)

		if page.Done || len(page.Items) == 0 {
			break
		}
	}

	if opts.NewestFirst {
		reverse(items)
	}

	return items, nil
}

// fetchPage fetches a single page, retrying transient failures with
// exponential backoff until maxRetries is exceeded.
func fetchPage[T any](ctx context.Context, fn PageFunc[T], offset, maxRetries int, baseDelay time.Duration) (Page[T], error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return Page[T]{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		page, err := fn(ctx, offset)
		if err == nil {
			return page, nil
		}
		if !shared.IsTransient(err) {
			return Page[T]{}, err
		}
		lastErr = err
	}

	return Page[T]{}, fmt.Errorf("%w: page at offset %d failed after %d retries: %v",
		shared.ErrFetchExhausted, offset, maxRetries, lastErr)
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
