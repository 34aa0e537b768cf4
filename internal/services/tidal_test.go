package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/stx/internal/shared"
	helpers "github.com/desertthunder/stx/internal/testing"
)

func testTidal(t *testing.T, transport http.RoundTripper) *TidalSession {
	t.Helper()
	srv, err := NewTidalSession(testConfig())
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	srv.httpClient = &http.Client{Transport: transport}
	return srv
}

func TestTidalSession(t *testing.T) {
	t.Run("NewTidalSession", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewTidalSession(testConfig())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.countryCode != "US" {
				t.Errorf("expected default country code US, got %q", srv.countryCode)
			}
		})

		t.Run("Missing Access Token", func(t *testing.T) {
			cfg := testConfig()
			cfg.Credentials.Tidal.AccessToken = ""

			_, err := NewTidalSession(cfg)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing User ID", func(t *testing.T) {
			cfg := testConfig()
			cfg.Credentials.Tidal.UserID = ""

			_, err := NewTidalSession(cfg)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Configured Country Code", func(t *testing.T) {
			cfg := testConfig()
			cfg.Credentials.Tidal.CountryCode = "NO"

			srv, err := NewTidalSession(cfg)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.countryCode != "NO" {
				t.Errorf("expected country code NO, got %q", srv.countryCode)
			}
		})
	})

	t.Run("Request Shape", func(t *testing.T) {
		var captured *http.Request
		srv := testTidal(t, helpers.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			captured = req
			return helpers.JSONResponse(200, `{"items": [], "limit": 100, "offset": 0, "totalNumberOfItems": 0}`), nil
		}))

		if _, err := srv.Playlists(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if captured.URL.Query().Get("countryCode") != "US" {
			t.Errorf("expected countryCode query param, got %q", captured.URL.RawQuery)
		}
		if got := captured.Header.Get("Authorization"); got != "Bearer test_token" {
			t.Errorf("expected bearer auth header, got %q", got)
		}
		if captured.URL.Path != "/v1/users/12345/playlists" {
			t.Errorf("unexpected path %q", captured.URL.Path)
		}
	})

	t.Run("Playlists", func(t *testing.T) {
		t.Run("Paginates To Completion", func(t *testing.T) {
			calls := 0
			srv := testTidal(t, helpers.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				calls++
				if req.URL.Query().Get("offset") == "0" {
					return helpers.JSONResponse(200, `{
						"items": [{"uuid": "pl_1", "title": "Road Trip", "numberOfTracks": 12}],
						"limit": 1, "offset": 0, "totalNumberOfItems": 2
					}`), nil
				}
				return helpers.JSONResponse(200, `{
					"items": [{"uuid": "pl_2", "title": "Focus", "numberOfTracks": 30}],
					"limit": 1, "offset": 1, "totalNumberOfItems": 2
				}`), nil
			}))

			playlists, err := srv.Playlists(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if calls != 2 {
				t.Errorf("expected 2 page fetches, got %d", calls)
			}
			if len(playlists) != 2 || playlists[0].ID != "pl_1" || playlists[1].Name != "Focus" {
				t.Errorf("unexpected playlists %+v", playlists)
			}
			if playlists[0].TrackCount != 12 {
				t.Errorf("expected track count 12, got %d", playlists[0].TrackCount)
			}
		})

		t.Run("Auth Failure", func(t *testing.T) {
			srv := testTidal(t, helpers.NewMockRoundTripper(helpers.JSONResponse(401, `{}`), nil))

			_, err := srv.Playlists(context.Background())
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Errorf("expected ErrAuthFailed, got %v", err)
			}
		})
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		var captured *http.Request
		var body string
		srv := testTidal(t, helpers.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			captured = req
			raw, _ := io.ReadAll(req.Body)
			body = string(raw)
			return helpers.JSONResponse(200, `{"uuid": "new_uuid", "title": "Road Trip"}`), nil
		}))

		created, err := srv.CreatePlaylist(context.Background(), "Road Trip", "summer songs")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if created.ID != "new_uuid" {
			t.Errorf("expected created playlist id new_uuid, got %q", created.ID)
		}
		if captured.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", captured.Method)
		}
		if got := captured.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("expected form content type, got %q", got)
		}
		if body != "description=summer+songs&title=Road+Trip" {
			t.Errorf("unexpected form body %q", body)
		}
	})

	t.Run("PlaylistTracks", func(t *testing.T) {
		srv := testTidal(t, helpers.NewMockRoundTripper(helpers.JSONResponse(200, `{
			"items": [{
				"id": 77001,
				"title": "Song A",
				"duration": 215,
				"isrc": "USRC17607839",
				"artists": [{"id": 9, "name": "Some Artist"}]
			}],
			"limit": 100, "offset": 0, "totalNumberOfItems": 1
		}`), nil))

		tracks, err := srv.PlaylistTracks(context.Background(), "pl_1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(tracks))
		}
		track := tracks[0]
		if track.ID != "77001" {
			t.Errorf("expected numeric id as string, got %q", track.ID)
		}
		if track.Duration != 215*time.Second {
			t.Errorf("expected duration 215s, got %v", track.Duration)
		}
		if track.ISRC != "USRC17607839" || track.Artists[0] != "Some Artist" {
			t.Errorf("unexpected track %+v", track)
		}
	})

	t.Run("AddPlaylistTracks", func(t *testing.T) {
		t.Run("Appends In Order", func(t *testing.T) {
			var body string
			srv := testTidal(t, helpers.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				raw, _ := io.ReadAll(req.Body)
				body = string(raw)
				return helpers.JSONResponse(200, `{}`), nil
			}))

			if err := srv.AddPlaylistTracks(context.Background(), "pl_1", []string{"1", "2", "3"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if body != "toIndex=-1&trackIds=1%2C2%2C3" {
				t.Errorf("unexpected form body %q", body)
			}
		})

		t.Run("Empty Batch Skips Request", func(t *testing.T) {
			calls := 0
			srv := testTidal(t, helpers.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				calls++
				return helpers.JSONResponse(200, `{}`), nil
			}))

			if err := srv.AddPlaylistTracks(context.Background(), "pl_1", nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if calls != 0 {
				t.Errorf("expected no requests, got %d", calls)
			}
		})
	})

	t.Run("Favorites", func(t *testing.T) {
		t.Run("Unwraps Items", func(t *testing.T) {
			srv := testTidal(t, helpers.NewMockRoundTripper(helpers.JSONResponse(200, `{
				"items": [
					{"created": "2024-01-01T00:00:00Z", "item": {"id": 101, "title": "Song A", "duration": 200, "artists": [{"id": 1, "name": "Some Artist"}]}},
					{"created": "2024-02-01T00:00:00Z", "item": {"id": 102, "title": "Song B", "duration": 180, "artists": [{"id": 2, "name": "Other Artist"}]}}
				],
				"limit": 100, "offset": 0, "totalNumberOfItems": 2
			}`), nil))

			tracks, err := srv.FavoriteTracks(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 2 || tracks[0].ID != "101" || tracks[1].Name != "Song B" {
				t.Errorf("unexpected tracks %+v", tracks)
			}
		})

		t.Run("Add Favorite Album", func(t *testing.T) {
			var captured *http.Request
			var body string
			srv := testTidal(t, helpers.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				captured = req
				raw, _ := io.ReadAll(req.Body)
				body = string(raw)
				return helpers.JSONResponse(200, `{}`), nil
			}))

			if err := srv.AddFavoriteAlbum(context.Background(), "5005"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if captured.URL.Path != "/v1/users/12345/favorites/albums" {
				t.Errorf("unexpected path %q", captured.URL.Path)
			}
			if body != "albumIds=5005" {
				t.Errorf("unexpected form body %q", body)
			}
		})
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("Escapes Query", func(t *testing.T) {
			var captured *http.Request
			srv := testTidal(t, helpers.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
				captured = req
				return helpers.JSONResponse(200, `{"items": [{"id": 42, "title": "Song A", "duration": 200, "artists": [{"id": 1, "name": "Some Artist"}]}]}`), nil
			}))

			tracks, err := srv.SearchTracks(context.Background(), "Song A Some Artist", 10)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if captured.URL.Path != "/v1/search/tracks" {
				t.Errorf("unexpected path %q", captured.URL.Path)
			}
			if got := captured.URL.Query().Get("query"); got != "Song A Some Artist" {
				t.Errorf("unexpected query %q", got)
			}
			if len(tracks) != 1 || tracks[0].ID != "42" {
				t.Errorf("unexpected results %+v", tracks)
			}
		})

		t.Run("Search Artists", func(t *testing.T) {
			srv := testTidal(t, helpers.NewMockRoundTripper(helpers.JSONResponse(200, `{
				"items": [{"id": 9, "name": "Some Artist"}]
			}`), nil))

			artists, err := srv.SearchArtists(context.Background(), "Some Artist", 5)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(artists) != 1 || artists[0].ID != "9" || artists[0].Name != "Some Artist" {
				t.Errorf("unexpected results %+v", artists)
			}
		})

		t.Run("Rate Limited Service", func(t *testing.T) {
			srv := testTidal(t, helpers.NewMockRoundTripper(helpers.JSONResponse(429, `{}`), nil))

			_, err := srv.SearchTracks(context.Background(), "Song A", 10)
			if !errors.Is(err, shared.ErrTransientService) {
				t.Errorf("expected ErrTransientService, got %v", err)
			}
		})
	})
}
