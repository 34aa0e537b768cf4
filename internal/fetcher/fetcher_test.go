package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/stx/internal/shared"
)

// pagedSource serves a fixed collection in pages of the given size and
// counts how often each offset is requested.
type pagedSource struct {
	items    []int
	pageSize int
	calls    map[int]int
	failures map[int]int // offset -> remaining transient failures
	err      error       // non-transient error returned for any failing offset
}

func newPagedSource(items []int, pageSize int) *pagedSource {
	return &pagedSource{
		items:    items,
		pageSize: pageSize,
		calls:    map[int]int{},
		failures: map[int]int{},
	}
}

func (s *pagedSource) fetch(ctx context.Context, offset int) (Page[int], error) {
	s.calls[offset]++

	if s.failures[offset] > 0 {
		s.failures[offset]--
		if s.err != nil {
			return Page[int]{}, s.err
		}
		return Page[int]{}, fmt.Errorf("%w: status 429", shared.ErrTransientService)
	}

	end := offset + s.pageSize
	if end > len(s.items) {
		end = len(s.items)
	}

	return Page[int]{
		Items: s.items[offset:end],
		Done:  end >= len(s.items),
	}, nil
}

func TestAll(t *testing.T) {
	ctx := context.Background()
	fast := Options{BaseDelay: time.Millisecond}

	t.Run("Assembles All Pages In Order", func(t *testing.T) {
		src := newPagedSource([]int{1, 2, 3, 4, 5}, 2)

		got, err := All(ctx, src.fetch, fast)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := []int{1, 2, 3, 4, 5}
		if len(got) != len(want) {
			t.Fatalf("expected %d items, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("item %d: expected %d, got %d", i, want[i], got[i])
			}
		}
	})

	t.Run("Empty Collection", func(t *testing.T) {
		src := newPagedSource(nil, 10)

		got, err := All(ctx, src.fetch, fast)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty result, got %v", got)
		}
	})

	t.Run("Newest First Reverses Output", func(t *testing.T) {
		// Service returns most-recent-first; the caller wants an append log.
		src := newPagedSource([]int{30, 20, 10}, 2)

		got, err := All(ctx, src.fetch, Options{BaseDelay: time.Millisecond, NewestFirst: true})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := []int{10, 20, 30}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	})

	t.Run("Retries Transient Failure Then Succeeds", func(t *testing.T) {
		src := newPagedSource([]int{1, 2, 3}, 2)
		src.failures[2] = 2 // second page fails twice before succeeding

		got, err := All(ctx, src.fetch, Options{MaxRetries: 3, BaseDelay: time.Millisecond})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(got) != 3 {
			t.Errorf("expected full collection, got %v", got)
		}
		if src.calls[2] != 3 {
			t.Errorf("expected 3 attempts at offset 2, got %d", src.calls[2])
		}
	})

	t.Run("Exhausted Retries Surface ErrFetchExhausted", func(t *testing.T) {
		src := newPagedSource([]int{1, 2, 3}, 2)
		src.failures[0] = 100

		_, err := All(ctx, src.fetch, Options{MaxRetries: 2, BaseDelay: time.Millisecond})
		if !errors.Is(err, shared.ErrFetchExhausted) {
			t.Fatalf("expected ErrFetchExhausted, got %v", err)
		}
		if src.calls[0] != 3 {
			t.Errorf("expected initial attempt plus 2 retries, got %d calls", src.calls[0])
		}
	})

	t.Run("Permanent Failure Not Retried", func(t *testing.T) {
		src := newPagedSource([]int{1, 2, 3}, 2)
		src.failures[0] = 1
		src.err = fmt.Errorf("%w: bad token", shared.ErrAuthFailed)

		_, err := All(ctx, src.fetch, Options{MaxRetries: 5, BaseDelay: time.Millisecond})
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Fatalf("expected auth error, got %v", err)
		}
		if src.calls[0] != 1 {
			t.Errorf("expected a single attempt, got %d", src.calls[0])
		}
	})

	t.Run("Context Cancellation During Backoff", func(t *testing.T) {
		src := newPagedSource([]int{1, 2, 3}, 2)
		src.failures[0] = 100

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := All(cancelled, src.fetch, Options{MaxRetries: 5, BaseDelay: time.Hour})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context error, got %v", err)
		}
	})
}
