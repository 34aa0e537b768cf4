package snapshot

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/stx/internal/models"
	"github.com/desertthunder/stx/internal/shared"
)

func sampleSnapshot() models.Snapshot {
	return models.Snapshot{
		Version:    models.SnapshotVersion,
		ExportedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		SourceUser: "listener",
		Playlists: []models.SourcePlaylist{
			{
				ID:   "pl1",
				Name: "Road Trip",
				Tracks: []models.SourceTrack{
					{ID: "t1", Name: "Song A", DurationMS: 180000, Artists: []models.ArtistRef{{Name: "Artist"}}},
				},
			},
		},
		Favorites: []models.SourceTrack{
			{ID: "t2", Name: "Song B", DurationMS: 200000, Artists: []models.ArtistRef{{Name: "Artist"}}},
		},
		Albums:  []models.SourceAlbum{{ID: "a1", Name: "Album", Artists: []models.ArtistRef{{Name: "Artist"}}}},
		Artists: []models.SourceArtist{{ID: "ar1", Name: "Artist"}},
	}
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleSnapshot()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	want := sampleSnapshot()
	if got.Version != want.Version || got.SourceUser != want.SourceUser {
		t.Errorf("header mismatch: got %+v", got)
	}
	if len(got.Playlists) != 1 || got.Playlists[0].Name != "Road Trip" {
		t.Errorf("playlists mismatch: %+v", got.Playlists)
	}
	if len(got.Playlists[0].Tracks) != 1 || got.Playlists[0].Tracks[0].ID != "t1" {
		t.Errorf("tracks mismatch: %+v", got.Playlists[0].Tracks)
	}
	if len(got.Favorites) != 1 || len(got.Albums) != 1 || len(got.Artists) != 1 {
		t.Errorf("collection counts mismatch: %+v", got)
	}
	if !got.ExportedAt.Equal(want.ExportedAt) {
		t.Errorf("exported_at mismatch: %v", got.ExportedAt)
	}
}

func TestWriteNormalizesNilCollections(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, models.Snapshot{SourceUser: "listener"}); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out := buf.String()
	for _, key := range []string{`"playlists": []`, `"favorites": []`, `"albums": []`, `"artists": []`} {
		if !strings.Contains(out, key) {
			t.Errorf("expected %s in output:\n%s", key, out)
		}
	}
	if !strings.Contains(out, `"version": 2`) {
		t.Errorf("expected current version in output:\n%s", out)
	}
}

func TestRead(t *testing.T) {
	t.Run("Missing Version", func(t *testing.T) {
		_, err := Read(strings.NewReader(`{"playlists": []}`))
		if !errors.Is(err, shared.ErrMissingVersion) {
			t.Errorf("expected ErrMissingVersion, got %v", err)
		}
	})

	t.Run("Newer Version Refused", func(t *testing.T) {
		_, err := Read(strings.NewReader(`{"version": 99, "playlists": []}`))
		if !errors.Is(err, shared.ErrUnsupportedVersion) {
			t.Errorf("expected ErrUnsupportedVersion, got %v", err)
		}
	})

	t.Run("Missing Playlists", func(t *testing.T) {
		_, err := Read(strings.NewReader(`{"version": 2}`))
		if !errors.Is(err, shared.ErrMissingPlaylists) {
			t.Errorf("expected ErrMissingPlaylists, got %v", err)
		}
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		_, err := Read(strings.NewReader(`{"version": `))
		if err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("Version One Defaults", func(t *testing.T) {
		doc := `{"version": 1, "source_user": "listener", "playlists": [], "favorites": []}`
		snap, err := Read(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if snap.Version != 1 {
			t.Errorf("expected version 1, got %d", snap.Version)
		}
		if snap.Albums == nil || snap.Artists == nil {
			t.Error("expected empty albums and artists, got nil")
		}
		if len(snap.Albums) != 0 || len(snap.Artists) != 0 {
			t.Errorf("expected empty collections, got %+v", snap)
		}
	})
}
