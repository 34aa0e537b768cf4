package models

import "time"

// ArtistRef is a name-only reference to an artist as it appears on a track
// or album. Source catalogs embed these in order of billing; the first entry
// is the primary artist.
type ArtistRef struct {
	Name string `json:"name"`
}

// AlbumRef is the album context carried on a track.
type AlbumRef struct {
	Name    string      `json:"name"`
	Artists []ArtistRef `json:"artists"`
}

// ExternalIDs holds catalog-level identifiers attached to a track.
// ISRC is the only one used for matching; it identifies a recording across
// services more reliably than any text comparison.
type ExternalIDs struct {
	ISRC string `json:"isrc,omitempty"`
}

// SourceTrack is a track fetched from the source catalog, reduced to the
// fields that matter for matching. Immutable once fetched; identity is ID.
type SourceTrack struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	DurationMS  int         `json:"duration_ms"`
	TrackNumber int         `json:"track_number"`
	ExternalIDs ExternalIDs `json:"external_ids"`
	Artists     []ArtistRef `json:"artists"`
	Album       AlbumRef    `json:"album"`
}

// PrimaryArtist returns the first-billed artist name, or "" when unknown.
func (t SourceTrack) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// Duration returns the track length rounded down to whole seconds.
func (t SourceTrack) Duration() time.Duration {
	return time.Duration(t.DurationMS) * time.Millisecond
}

// SourceAlbum is an album saved in the source library.
type SourceAlbum struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Artists []ArtistRef `json:"artists"`
}

// PrimaryArtist returns the first-billed artist name, or "" when unknown.
func (a SourceAlbum) PrimaryArtist() string {
	if len(a.Artists) == 0 {
		return ""
	}
	return a.Artists[0].Name
}

// SourceArtist is an artist followed in the source library.
type SourceArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SourcePlaylist is a playlist fetched from the source catalog.
// Track order is significant and preserved end-to-end.
type SourcePlaylist struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Tracks      []SourceTrack `json:"tracks"`
}

// Track is a candidate entity in the destination catalog.
type Track struct {
	ID       string
	Name     string
	Artists  []string
	Duration time.Duration
	ISRC     string
}

// Album is a candidate album in the destination catalog.
type Album struct {
	ID      string
	Name    string
	Artists []string
}

// Artist is a candidate artist in the destination catalog.
type Artist struct {
	ID   string
	Name string
}

// Playlist is a handle on a destination playlist.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackCount  int
}

// SnapshotVersion is the newest snapshot format this build reads and writes.
//
// Version 1 carried playlists and favorites only; version 2 added saved
// albums and followed artists. Readers accept any version up to this one and
// must refuse anything newer.
const SnapshotVersion = 2

// Snapshot is a versioned, service-agnostic copy of a source library.
// It never contains destination identifiers, so the same file can be
// imported into any destination service.
type Snapshot struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	SourceUser string           `json:"source_user"`
	Playlists  []SourcePlaylist `json:"playlists"`
	Favorites  []SourceTrack    `json:"favorites"`
	Albums     []SourceAlbum    `json:"albums"`
	Artists    []SourceArtist   `json:"artists"`
}

// TrackCount returns the total number of tracks across playlists and favorites.
func (s *Snapshot) TrackCount() int {
	total := len(s.Favorites)
	for _, pl := range s.Playlists {
		total += len(pl.Tracks)
	}
	return total
}
