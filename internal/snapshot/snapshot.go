// Package snapshot reads and writes versioned library snapshot files.
//
// A snapshot is a pretty-printed JSON document describing a source library
// in service-agnostic terms. Files written by older builds remain readable;
// files written by newer builds are refused rather than misread.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/desertthunder/stx/internal/models"
	"github.com/desertthunder/stx/internal/shared"
)

// raw mirrors models.Snapshot with pointer fields so absent keys are
// distinguishable from zero values during validation.
type raw struct {
	Version    *int                     `json:"version"`
	ExportedAt time.Time                `json:"exported_at"`
	SourceUser string                   `json:"source_user"`
	Playlists  *[]models.SourcePlaylist `json:"playlists"`
	Favorites  []models.SourceTrack     `json:"favorites"`
	Albums     []models.SourceAlbum     `json:"albums"`
	Artists    []models.SourceArtist    `json:"artists"`
}

// Write encodes the snapshot as indented JSON. Nil collections are
// normalized to empty slices so every key round-trips as present.
func Write(w io.Writer, snap models.Snapshot) error {
	if snap.Version == 0 {
		snap.Version = models.SnapshotVersion
	}
	if snap.Playlists == nil {
		snap.Playlists = []models.SourcePlaylist{}
	}
	if snap.Favorites == nil {
		snap.Favorites = []models.SourceTrack{}
	}
	if snap.Albums == nil {
		snap.Albums = []models.SourceAlbum{}
	}
	if snap.Artists == nil {
		snap.Artists = []models.SourceArtist{}
	}

	data, err := shared.MarshalJSON(snap, true)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Read decodes and validates a snapshot document. It rejects documents with
// no version field, a version newer than this build understands, or no
// playlists collection. Version 1 files decode with empty albums and artists.
func Read(r io.Reader) (models.Snapshot, error) {
	var doc raw
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return models.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}

	if doc.Version == nil {
		return models.Snapshot{}, shared.ErrMissingVersion
	}
	if *doc.Version > models.SnapshotVersion {
		return models.Snapshot{}, fmt.Errorf("%w: file version %d, newest supported %d",
			shared.ErrUnsupportedVersion, *doc.Version, models.SnapshotVersion)
	}
	if doc.Playlists == nil {
		return models.Snapshot{}, shared.ErrMissingPlaylists
	}

	snap := models.Snapshot{
		Version:    *doc.Version,
		ExportedAt: doc.ExportedAt,
		SourceUser: doc.SourceUser,
		Playlists:  *doc.Playlists,
		Favorites:  doc.Favorites,
		Albums:     doc.Albums,
		Artists:    doc.Artists,
	}
	if snap.Favorites == nil {
		snap.Favorites = []models.SourceTrack{}
	}
	if snap.Albums == nil {
		snap.Albums = []models.SourceAlbum{}
	}
	if snap.Artists == nil {
		snap.Artists = []models.SourceArtist{}
	}
	return snap, nil
}
