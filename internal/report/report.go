// package report records entities that could not be matched during a run
// and renders run summaries (plain text)
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Kind names a miss log. Each kind appends to its own file.
type Kind string

const (
	KindTrack  Kind = "track"
	KindAlbum  Kind = "album"
	KindArtist Kind = "artist"
)

// Entry is one entity that had no acceptable destination candidate.
type Entry struct {
	Kind   Kind
	Artist string
	Name   string
}

// Line renders the entry the way it appears in the miss log.
func (e Entry) Line() string {
	if e.Artist == "" {
		return e.Name
	}
	return fmt.Sprintf("%s - %s", e.Artist, e.Name)
}

func fileName(kind Kind) string {
	return string(kind) + "s_not_found.txt"
}

// Set collects misses for one run, appending each to a per-kind log file
// under dir as it arrives. A Set with an empty dir records in memory only.
type Set struct {
	dir     string
	mu      sync.Mutex
	entries []Entry
	files   map[Kind]*os.File
}

// NewSet creates a miss collector writing under dir. The directory is
// created on the first miss, so a clean run leaves nothing behind.
func NewSet(dir string) *Set {
	return &Set{dir: dir, files: make(map[Kind]*os.File)}
}

// Miss records one unmatched entity and appends its line to the kind's log.
func (s *Set) Miss(kind Kind, artist, name string) error {
	entry := Entry{Kind: kind, Artist: artist, Name: name}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)

	if s.dir == "" {
		return nil
	}

	f, err := s.file(kind)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f, entry.Line()); err != nil {
		return fmt.Errorf("failed to append to %s: %w", fileName(kind), err)
	}
	return nil
}

func (s *Set) file(kind Kind) (*os.File, error) {
	if f, ok := s.files[kind]; ok {
		return f, nil
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(s.dir, fileName(kind))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	s.files[kind] = f
	return f, nil
}

// Entries returns every miss recorded so far, in order.
func (s *Set) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Count returns the number of misses of one kind.
func (s *Set) Count(kind Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Close closes every open log file.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for kind, f := range s.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.files, kind)
	}
	return firstErr
}

// Totals summarizes a run for display.
type Totals struct {
	PlaylistsSynced int
	TracksAdded     int
	TracksSkipped   int
	TracksMissed    int
	AlbumsAdded     int
	AlbumsMissed    int
	ArtistsAdded    int
	ArtistsMissed   int
}

// RenderSummary converts run totals to plain text for terminal display.
func RenderSummary(totals Totals) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlists synced: %d\n", totals.PlaylistsSynced))
	buf.WriteString(fmt.Sprintf("Tracks: %d added, %d already present, %d not found\n",
		totals.TracksAdded, totals.TracksSkipped, totals.TracksMissed))

	if totals.AlbumsAdded > 0 || totals.AlbumsMissed > 0 {
		buf.WriteString(fmt.Sprintf("Albums: %d added, %d not found\n",
			totals.AlbumsAdded, totals.AlbumsMissed))
	}
	if totals.ArtistsAdded > 0 || totals.ArtistsMissed > 0 {
		buf.WriteString(fmt.Sprintf("Artists: %d added, %d not found\n",
			totals.ArtistsAdded, totals.ArtistsMissed))
	}

	return buf.Bytes()
}

// RenderMisses converts recorded misses to plain text, grouped by kind.
func RenderMisses(entries []Entry) []byte {
	var buf bytes.Buffer

	for _, kind := range []Kind{KindTrack, KindAlbum, KindArtist} {
		wrote := false
		for _, e := range entries {
			if e.Kind != kind {
				continue
			}
			if !wrote {
				buf.WriteString(fmt.Sprintf("%ss not found:\n", kind))
				wrote = true
			}
			buf.WriteString(fmt.Sprintf("  %s\n", e.Line()))
		}
		if wrote {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes()
}
