package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/desertthunder/stx/internal/shared"
	helpers "github.com/desertthunder/stx/internal/testing"
)

func testConfig() *shared.Config {
	cfg := shared.DefaultConfig()
	cfg.Credentials.Spotify.ClientID = "test_client_id"
	cfg.Credentials.Spotify.ClientSecret = "test_client_secret"
	cfg.Credentials.Spotify.RedirectURI = "http://localhost:9999/callback"
	cfg.Credentials.Tidal.AccessToken = "test_token"
	cfg.Credentials.Tidal.UserID = "12345"
	cfg.Sync.RateLimit = 0
	cfg.Sync.MaxRetries = 1
	cfg.Sync.BackoffMS = 1
	return cfg
}

func authedSpotify(t *testing.T, transport http.RoundTripper) *SpotifySession {
	t.Helper()
	srv, err := NewSpotifySession(testConfig())
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := srv.Authenticate(context.Background(), map[string]string{"access_token": "tok"}); err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	srv.httpClient = &http.Client{Transport: transport}
	return srv
}

func TestSpotifySession(t *testing.T) {
	t.Run("NewSpotifySession", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifySession(testConfig())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv == nil {
				t.Fatal("expected session to be created")
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			cfg := testConfig()
			cfg.Credentials.Spotify.ClientID = ""

			_, err := NewSpotifySession(cfg)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			cfg := testConfig()
			cfg.Credentials.Spotify.RedirectURI = ""

			srv, err := NewSpotifySession(cfg)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.config.RedirectURL != "http://localhost:8080/callback" {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("AuthURL", func(t *testing.T) {
		srv, err := NewSpotifySession(testConfig())
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		authURL := srv.AuthURL("test_state")
		if !strings.Contains(authURL, "accounts.spotify.com") {
			t.Error("auth URL should contain Spotify domain")
		}
		if !strings.Contains(authURL, "test_client_id") {
			t.Error("auth URL should contain client_id")
		}
		if !strings.Contains(authURL, "test_state") {
			t.Error("auth URL should contain state")
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		srv, err := NewSpotifySession(testConfig())
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		t.Run("With Access Token", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{"access_token": "tok"})
			if err != nil {
				t.Errorf("expected no error with access token, got %v", err)
			}
			if srv.Token() == nil {
				t.Error("expected token to be set")
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			err := srv.Authenticate(context.Background(), map[string]string{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("Unauthenticated Request", func(t *testing.T) {
		srv, err := NewSpotifySession(testConfig())
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		_, err = srv.CurrentUser(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("CurrentUser", func(t *testing.T) {
		srv := authedSpotify(t, helpers.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/v1/me" {
				t.Errorf("unexpected path %s", req.URL.Path)
			}
			if got := req.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("unexpected auth header %q", got)
			}
			return helpers.JSONResponse(200, `{"id": "listener", "display_name": "Listener"}`), nil
		}))

		id, err := srv.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "listener" {
			t.Errorf("expected listener, got %q", id)
		}
	})

	t.Run("Status Classification", func(t *testing.T) {
		tests := []struct {
			name   string
			status int
			want   error
		}{
			{"Unauthorized", 401, shared.ErrAuthFailed},
			{"Forbidden", 403, shared.ErrAuthFailed},
			{"Rate Limited", 429, shared.ErrTransientService},
			{"Server Error", 503, shared.ErrTransientService},
			{"Not Found", 404, shared.ErrAPIRequest},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				srv := authedSpotify(t, helpers.NewMockRoundTripper(helpers.JSONResponse(tc.status, `{}`), nil))

				_, err := srv.CurrentUser(context.Background())
				if !errors.Is(err, tc.want) {
					t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
				}
			})
		}
	})

	t.Run("SavedTracks Reversed To Chronological", func(t *testing.T) {
		srv := authedSpotify(t, helpers.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			return helpers.JSONResponse(200, `{
				"items": [
					{"track": {"id": "newest", "name": "Newest", "duration_ms": 1000}},
					{"track": {"id": "oldest", "name": "Oldest", "duration_ms": 1000}}
				],
				"next": null
			}`), nil
		}))

		tracks, err := srv.SavedTracks(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}
		if tracks[0].ID != "oldest" || tracks[1].ID != "newest" {
			t.Errorf("expected chronological order, got %s then %s", tracks[0].ID, tracks[1].ID)
		}
	})

	t.Run("Playlists With Tracks", func(t *testing.T) {
		srv := authedSpotify(t, helpers.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			switch {
			case req.URL.Path == "/v1/me/playlists":
				return helpers.JSONResponse(200, `{
					"items": [{"id": "pl1", "name": "Road Trip", "description": "mix", "tracks": {"total": 2}}],
					"next": null
				}`), nil
			case req.URL.Path == "/v1/playlists/pl1/tracks":
				return helpers.JSONResponse(200, `{
					"items": [
						{"track": {"id": "t1", "name": "Song A", "duration_ms": 180000,
							"external_ids": {"isrc": "USX1"}, "artists": [{"id": "a1", "name": "Artist"}]}},
						{"track": null},
						{"track": {"id": "", "name": "Local File", "is_local": true}}
					],
					"next": null
				}`), nil
			default:
				t.Errorf("unexpected path %s", req.URL.Path)
				return helpers.JSONResponse(404, `{}`), nil
			}
		}))

		playlists, err := srv.Playlists(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlists) != 1 {
			t.Fatalf("expected 1 playlist, got %d", len(playlists))
		}

		pl := playlists[0]
		if pl.Name != "Road Trip" || pl.ID != "pl1" {
			t.Errorf("unexpected playlist %+v", pl)
		}
		if len(pl.Tracks) != 1 {
			t.Fatalf("expected unplayable items dropped, got %d tracks", len(pl.Tracks))
		}
		if pl.Tracks[0].ExternalIDs.ISRC != "USX1" || pl.Tracks[0].PrimaryArtist() != "Artist" {
			t.Errorf("unexpected track %+v", pl.Tracks[0])
		}
	})

	t.Run("FollowedArtists Cursor Pagination", func(t *testing.T) {
		calls := 0
		srv := authedSpotify(t, helpers.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				if req.URL.Query().Get("after") != "" {
					t.Errorf("first page should have no cursor, got %q", req.URL.Query().Get("after"))
				}
				return helpers.JSONResponse(200, `{"artists": {
					"items": [{"id": "ar1", "name": "First"}],
					"cursors": {"after": "cursor1"}
				}}`), nil
			}
			if got := req.URL.Query().Get("after"); got != "cursor1" {
				t.Errorf("expected cursor1, got %q", got)
			}
			return helpers.JSONResponse(200, `{"artists": {
				"items": [{"id": "ar2", "name": "Second"}],
				"cursors": {"after": ""}
			}}`), nil
		}))

		artists, err := srv.FollowedArtists(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(artists) != 2 || artists[0].ID != "ar1" || artists[1].ID != "ar2" {
			t.Errorf("unexpected artists %+v", artists)
		}
		if calls != 2 {
			t.Errorf("expected 2 page fetches, got %d", calls)
		}
	})

	t.Run("Transient Page Failure Retried", func(t *testing.T) {
		calls := 0
		srv := authedSpotify(t, helpers.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return helpers.JSONResponse(503, `{}`), nil
			}
			return helpers.JSONResponse(200, `{"items": [], "next": null}`), nil
		}))

		if _, err := srv.SavedTracks(context.Background()); err != nil {
			t.Fatalf("expected retry to recover, got %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 calls, got %d", calls)
		}
	})
}
