package matching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/stx/internal/models"
	"github.com/desertthunder/stx/internal/normalize"
)

// DefaultTolerance matches the reference behavior of accepting tracks whose
// lengths differ by up to two seconds.
const DefaultTolerance = 2 * time.Second

const defaultSearchLimit = 10

// Searcher is the slice of the destination session the matcher needs:
// kind-restricted catalog search returning candidates in relevance order.
type Searcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)
	SearchAlbums(ctx context.Context, query string, limit int) ([]models.Album, error)
	SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error)
}

// Matcher resolves source entities to destination ids, probing the shared
// [Cache] before searching and recording hits back into it.
type Matcher struct {
	search    Searcher
	cache     *Cache
	tolerance time.Duration
	limit     int
	logger    *log.Logger
}

// NewMatcher creates a Matcher sharing the given cache. A zero tolerance
// falls back to [DefaultTolerance].
func NewMatcher(search Searcher, cache *Cache, tolerance time.Duration, logger *log.Logger) *Matcher {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Matcher{
		search:    search,
		cache:     cache,
		tolerance: tolerance,
		limit:     defaultSearchLimit,
		logger:    logger,
	}
}

// Tolerance returns the duration tolerance the matcher accepts.
func (m *Matcher) Tolerance() time.Duration {
	return m.tolerance
}

// FindTrack returns the destination id for a source track, or found=false
// when no candidate qualifies. The error is non-nil only when the search
// call itself failed; a clean no-match is not an error.
func (m *Matcher) FindTrack(ctx context.Context, track models.SourceTrack) (string, bool, error) {
	if id, ok := m.cache.Get(track.ID); ok {
		return id, true, nil
	}

	query := trackQuery(track)
	candidates, err := m.search.SearchTracks(ctx, query, m.limit)
	if err != nil {
		return "", false, fmt.Errorf("track search %q: %w", query, err)
	}

	for _, cand := range candidates {
		if trackEquivalent(track, cand, m.tolerance) {
			m.cache.Put(track.ID, cand.ID)
			return cand.ID, true, nil
		}
	}

	m.logger.Debug("no track match", "name", track.Name, "artist", track.PrimaryArtist(), "candidates", len(candidates))
	return "", false, nil
}

// FindAlbum returns the destination id for a saved album, or found=false.
func (m *Matcher) FindAlbum(ctx context.Context, album models.SourceAlbum) (string, bool, error) {
	if id, ok := m.cache.Get(album.ID); ok {
		return id, true, nil
	}

	query := albumQuery(album)
	candidates, err := m.search.SearchAlbums(ctx, query, m.limit)
	if err != nil {
		return "", false, fmt.Errorf("album search %q: %w", query, err)
	}

	for _, cand := range candidates {
		if albumEquivalent(album, cand) {
			m.cache.Put(album.ID, cand.ID)
			return cand.ID, true, nil
		}
	}

	m.logger.Debug("no album match", "name", album.Name, "artist", album.PrimaryArtist())
	return "", false, nil
}

// FindArtist returns the destination id for a followed artist, or found=false.
func (m *Matcher) FindArtist(ctx context.Context, artist models.SourceArtist) (string, bool, error) {
	if id, ok := m.cache.Get(artist.ID); ok {
		return id, true, nil
	}

	query := normalize.Simplify(artist.Name)
	candidates, err := m.search.SearchArtists(ctx, query, m.limit)
	if err != nil {
		return "", false, fmt.Errorf("artist search %q: %w", query, err)
	}

	for _, cand := range candidates {
		if normalize.Equivalent(artist.Name, cand.Name) {
			m.cache.Put(artist.ID, cand.ID)
			return cand.ID, true, nil
		}
	}

	m.logger.Debug("no artist match", "name", artist.Name)
	return "", false, nil
}

// trackQuery builds the search query: simplified track name plus the
// primary artist's simplified name.
func trackQuery(track models.SourceTrack) string {
	parts := []string{normalize.Simplify(track.Name)}
	if artist := track.PrimaryArtist(); artist != "" {
		parts = append(parts, normalize.Simplify(artist))
	}
	return strings.Join(parts, " ")
}

func albumQuery(album models.SourceAlbum) string {
	parts := []string{normalize.Simplify(album.Name)}
	if artist := album.PrimaryArtist(); artist != "" {
		parts = append(parts, normalize.Simplify(artist))
	}
	return strings.Join(parts, " ")
}

// trackEquivalent implements the track acceptance rule. A shared ISRC
// accepts immediately regardless of names or durations. Differing ISRCs do
// not reject: the same recording carries different codes across remasters
// and regional releases, so the name/duration/artist rule still applies.
func trackEquivalent(src models.SourceTrack, cand models.Track, tolerance time.Duration) bool {
	if src.ExternalIDs.ISRC != "" && cand.ISRC != "" && strings.EqualFold(src.ExternalIDs.ISRC, cand.ISRC) {
		return true
	}

	if !normalize.Equivalent(src.Name, cand.Name) {
		return false
	}

	diff := src.Duration() - cand.Duration
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		return false
	}

	return artistOverlap(src.Artists, cand.Artists)
}

// albumEquivalent requires name and primary-artist agreement.
func albumEquivalent(src models.SourceAlbum, cand models.Album) bool {
	if !normalize.Equivalent(src.Name, cand.Name) {
		return false
	}

	srcArtist := src.PrimaryArtist()
	if srcArtist == "" || len(cand.Artists) == 0 {
		return srcArtist == "" && len(cand.Artists) == 0
	}
	return normalize.Equivalent(srcArtist, cand.Artists[0])
}

// artistOverlap reports whether any source artist name is equivalent to any
// candidate artist name.
func artistOverlap(src []models.ArtistRef, cand []string) bool {
	for _, s := range src {
		for _, c := range cand {
			if normalize.Equivalent(s.Name, c) {
				return true
			}
		}
	}
	return false
}
