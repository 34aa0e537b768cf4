package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	helpers "github.com/desertthunder/stx/internal/testing"
)

func TestSet(t *testing.T) {
	t.Run("Appends Lines Per Kind", func(t *testing.T) {
		dir := t.TempDir()
		s := NewSet(dir)
		defer s.Close()

		if err := s.Miss(KindTrack, "Artist", "Song A"); err != nil {
			t.Fatalf("miss failed: %v", err)
		}
		if err := s.Miss(KindTrack, "Artist", "Song B"); err != nil {
			t.Fatalf("miss failed: %v", err)
		}
		if err := s.Miss(KindArtist, "", "Nobody"); err != nil {
			t.Fatalf("miss failed: %v", err)
		}

		trackLog := helpers.MustReadFile(t, filepath.Join(dir, "tracks_not_found.txt"))
		if trackLog != "Artist - Song A\nArtist - Song B\n" {
			t.Errorf("unexpected track log:\n%s", trackLog)
		}

		artistLog := helpers.MustReadFile(t, filepath.Join(dir, "artists_not_found.txt"))
		if artistLog != "Nobody\n" {
			t.Errorf("unexpected artist log:\n%s", artistLog)
		}

		if _, err := os.Stat(filepath.Join(dir, "albums_not_found.txt")); !os.IsNotExist(err) {
			t.Error("expected no album log without album misses")
		}
	})

	t.Run("Clean Run Leaves No Files", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "reports")
		s := NewSet(dir)
		defer s.Close()

		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Error("expected report directory to not exist before first miss")
		}
	})

	t.Run("Memory Only Without Dir", func(t *testing.T) {
		s := NewSet("")
		defer s.Close()

		if err := s.Miss(KindAlbum, "Artist", "Album"); err != nil {
			t.Fatalf("miss failed: %v", err)
		}
		if s.Count(KindAlbum) != 1 {
			t.Errorf("expected 1 album miss, got %d", s.Count(KindAlbum))
		}
	})

	t.Run("Entries Preserve Order", func(t *testing.T) {
		s := NewSet("")
		defer s.Close()

		s.Miss(KindTrack, "A", "First")
		s.Miss(KindAlbum, "B", "Second")
		s.Miss(KindTrack, "C", "Third")

		entries := s.Entries()
		if len(entries) != 3 || entries[0].Name != "First" || entries[2].Name != "Third" {
			t.Errorf("unexpected entries %+v", entries)
		}
	})
}

func TestRenderSummary(t *testing.T) {
	t.Run("Tracks Only", func(t *testing.T) {
		out := string(RenderSummary(Totals{PlaylistsSynced: 2, TracksAdded: 10, TracksSkipped: 5, TracksMissed: 1}))
		if !strings.Contains(out, "Playlists synced: 2") {
			t.Errorf("missing playlist count:\n%s", out)
		}
		if !strings.Contains(out, "10 added, 5 already present, 1 not found") {
			t.Errorf("missing track counts:\n%s", out)
		}
		if strings.Contains(out, "Albums") || strings.Contains(out, "Artists") {
			t.Errorf("expected album and artist lines omitted:\n%s", out)
		}
	})

	t.Run("With Albums And Artists", func(t *testing.T) {
		out := string(RenderSummary(Totals{AlbumsAdded: 3, ArtistsMissed: 2}))
		if !strings.Contains(out, "Albums: 3 added, 0 not found") {
			t.Errorf("missing album line:\n%s", out)
		}
		if !strings.Contains(out, "Artists: 0 added, 2 not found") {
			t.Errorf("missing artist line:\n%s", out)
		}
	})
}

func TestRenderMisses(t *testing.T) {
	entries := []Entry{
		{Kind: KindArtist, Name: "Nobody"},
		{Kind: KindTrack, Artist: "Artist", Name: "Song A"},
	}

	out := string(RenderMisses(entries))
	if !strings.Contains(out, "tracks not found:\n  Artist - Song A") {
		t.Errorf("missing track section:\n%s", out)
	}
	if !strings.Contains(out, "artists not found:\n  Nobody") {
		t.Errorf("missing artist section:\n%s", out)
	}

	if len(RenderMisses(nil)) != 0 {
		t.Error("expected empty output for no misses")
	}
}
