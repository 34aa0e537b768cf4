// Spotify implementation of [SourceSession]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/stx/internal/fetcher"
	"github.com/desertthunder/stx/internal/models"
	"github.com/desertthunder/stx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	spotifyPageLimit = 50
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
}

type spotifyExternalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Artists     []SpotifyArtist    `json:"artists"`
	Album       SpotifyAlbum       `json:"album"`
	DurationMS  int                `json:"duration_ms"`
	TrackNumber int                `json:"track_number"`
	ExternalIDs spotifyExternalIDs `json:"external_ids"`
	IsLocal     bool               `json:"is_local"`
}

type spotifyTrackRef struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a playlist object as it appears in lists.
type SpotifySimplePlaylist struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Tracks      spotifyTrackRef `json:"tracks"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifySavedTrack represents a track saved in the user's library.
type SpotifySavedTrack struct {
	AddedAt string       `json:"added_at"`
	Track   SpotifyTrack `json:"track"`
}

// SpotifySavedAlbum represents an album saved in the user's library.
type SpotifySavedAlbum struct {
	AddedAt string       `json:"added_at"`
	Album   SpotifyAlbum `json:"album"`
}

type spotifyPage[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

type spotifyCursorPage struct {
	Items   []SpotifyArtist `json:"items"`
	Cursors struct {
		After string `json:"after"`
	} `json:"cursors"`
}

// SpotifySession implements [SourceSession] against the Spotify Web API.
// Uses [oauth2] for authentication.
type SpotifySession struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	fetchOpts  fetcher.Options
}

// NewSpotifySession creates a Spotify session from configured credentials.
// The session is unauthenticated until Authenticate succeeds.
func NewSpotifySession(cfg *shared.Config) (*SpotifySession, error) {
	creds := cfg.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"playlist-read-private",
			"playlist-read-collaborative",
			"user-library-read",
			"user-follow-read",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifySession{
		config:     config,
		httpClient: http.DefaultClient,
		fetchOpts:  fetchOptions(cfg.Sync),
	}, nil
}

// fetchOptions builds pagination options from the sync settings.
func fetchOptions(sync shared.SyncConfig) fetcher.Options {
	opts := fetcher.Options{
		MaxRetries: sync.MaxRetries,
		BaseDelay:  time.Duration(sync.BackoffMS) * time.Millisecond,
	}
	if sync.RateLimit > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(sync.RateLimit), 1)
	}
	return opts
}

// Authenticate establishes the session token. Expects either an
// "access_token" or an "auth_code" in credentials.
func (s *SpotifySession) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{AccessToken: accessToken}
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("failed to exchange auth code: %w", err)
		}
		s.token = token
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	return fmt.Errorf("%w: access_token or auth_code", shared.ErrMissingCredentials)
}

// AuthenticateToken establishes the session from a previously saved token.
// Tokens carrying a refresh token are renewed transparently by the client.
func (s *SpotifySession) AuthenticateToken(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: saved token", shared.ErrMissingCredentials)
	}
	s.token = token
	s.httpClient = s.config.Client(ctx, token)
	return nil
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifySession) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Token returns the current session token, or nil before authentication.
func (s *SpotifySession) Token() *oauth2.Token {
	return s.token
}

// OAuthConfig exposes the underlying [oauth2.Config] for the callback server.
func (s *SpotifySession) OAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated GET against the Spotify API and
// decodes the JSON response into result.
func (s *SpotifySession) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.token == nil {
		return shared.ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spotifyBaseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus("spotify", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CurrentUser retrieves the authenticated user's ID.
func (s *SpotifySession) CurrentUser(ctx context.Context) (string, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, "/me", &user); err != nil {
		return "", err
	}
	return user.ID, nil
}

// Playlists retrieves the user's playlists with their tracks loaded, in
// library order.
func (s *SpotifySession) Playlists(ctx context.Context) ([]models.SourcePlaylist, error) {
	simple, err := fetcher.All(ctx, func(ctx context.Context, offset int) (fetcher.Page[SpotifySimplePlaylist], error) {
		var page spotifyPage[SpotifySimplePlaylist]
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", spotifyPageLimit, offset)
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return fetcher.Page[SpotifySimplePlaylist]{}, err
		}
		return fetcher.Page[SpotifySimplePlaylist]{Items: page.Items, Done: page.Next == nil}, nil
	}, s.fetchOpts)
	if err != nil {
		return nil, fmt.Errorf("fetching playlists: %w", err)
	}

	playlists := make([]models.SourcePlaylist, 0, len(simple))
	for _, sp := range simple {
		tracks, err := s.playlistTracks(ctx, sp.ID)
		if err != nil {
			return nil, fmt.Errorf("fetching tracks for playlist %q: %w", sp.Name, err)
		}
		playlists = append(playlists, models.SourcePlaylist{
			ID:          sp.ID,
			Name:        sp.Name,
			Description: sp.Description,
			Tracks:      tracks,
		})
	}

	return playlists, nil
}

// playlistTracks retrieves a playlist's tracks in playlist order. Local
// files and unavailable tracks come back without an ID and are dropped.
func (s *SpotifySession) playlistTracks(ctx context.Context, playlistID string) ([]models.SourceTrack, error) {
	items, err := fetcher.All(ctx, func(ctx context.Context, offset int) (fetcher.Page[SpotifyPlaylistTrack], error) {
		var page spotifyPage[SpotifyPlaylistTrack]
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, spotifyPageLimit, offset)
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return fetcher.Page[SpotifyPlaylistTrack]{}, err
		}
		return fetcher.Page[SpotifyPlaylistTrack]{Items: page.Items, Done: page.Next == nil}, nil
	}, s.fetchOpts)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.SourceTrack, 0, len(items))
	for _, item := range items {
		if item.Track == nil || item.Track.ID == "" || item.Track.IsLocal {
			continue
		}
		tracks = append(tracks, toSourceTrack(*item.Track))
	}
	return tracks, nil
}

// SavedTracks retrieves the user's favorite tracks. Spotify lists them
// most recent first; the result is reversed to chronological order.
func (s *SpotifySession) SavedTracks(ctx context.Context) ([]models.SourceTrack, error) {
	opts := s.fetchOpts
	opts.NewestFirst = true

	items, err := fetcher.All(ctx, func(ctx context.Context, offset int) (fetcher.Page[SpotifySavedTrack], error) {
		var page spotifyPage[SpotifySavedTrack]
		endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", spotifyPageLimit, offset)
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return fetcher.Page[SpotifySavedTrack]{}, err
		}
		return fetcher.Page[SpotifySavedTrack]{Items: page.Items, Done: page.Next == nil}, nil
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("fetching saved tracks: %w", err)
	}

	tracks := make([]models.SourceTrack, 0, len(items))
	for _, item := range items {
		if item.Track.ID == "" {
			continue
		}
		tracks = append(tracks, toSourceTrack(item.Track))
	}
	return tracks, nil
}

// SavedAlbums retrieves the user's saved albums in chronological order.
func (s *SpotifySession) SavedAlbums(ctx context.Context) ([]models.SourceAlbum, error) {
	opts := s.fetchOpts
	opts.NewestFirst = true

	items, err := fetcher.All(ctx, func(ctx context.Context, offset int) (fetcher.Page[SpotifySavedAlbum], error) {
		var page spotifyPage[SpotifySavedAlbum]
		endpoint := fmt.Sprintf("/me/albums?limit=%d&offset=%d", spotifyPageLimit, offset)
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return fetcher.Page[SpotifySavedAlbum]{}, err
		}
		return fetcher.Page[SpotifySavedAlbum]{Items: page.Items, Done: page.Next == nil}, nil
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("fetching saved albums: %w", err)
	}

	albums := make([]models.SourceAlbum, 0, len(items))
	for _, item := range items {
		albums = append(albums, models.SourceAlbum{
			ID:      item.Album.ID,
			Name:    item.Album.Name,
			Artists: toArtistRefs(item.Album.Artists),
		})
	}
	return albums, nil
}

// FollowedArtists retrieves the artists the user follows. The endpoint is
// cursor-paginated, so the page function tracks the cursor itself.
func (s *SpotifySession) FollowedArtists(ctx context.Context) ([]models.SourceArtist, error) {
	after := ""

	items, err := fetcher.All(ctx, func(ctx context.Context, _ int) (fetcher.Page[SpotifyArtist], error) {
		endpoint := fmt.Sprintf("/me/following?type=artist&limit=%d", spotifyPageLimit)
		if after != "" {
			endpoint += "&after=" + url.QueryEscape(after)
		}

		var page struct {
			Artists spotifyCursorPage `json:"artists"`
		}
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return fetcher.Page[SpotifyArtist]{}, err
		}

		after = page.Artists.Cursors.After
		return fetcher.Page[SpotifyArtist]{Items: page.Artists.Items, Done: after == ""}, nil
	}, s.fetchOpts)
	if err != nil {
		return nil, fmt.Errorf("fetching followed artists: %w", err)
	}

	artists := make([]models.SourceArtist, 0, len(items))
	for _, item := range items {
		artists = append(artists, models.SourceArtist{ID: item.ID, Name: item.Name})
	}
	return artists, nil
}

func toSourceTrack(t SpotifyTrack) models.SourceTrack {
	return models.SourceTrack{
		ID:          t.ID,
		Name:        t.Name,
		DurationMS:  t.DurationMS,
		TrackNumber: t.TrackNumber,
		ExternalIDs: models.ExternalIDs{ISRC: t.ExternalIDs.ISRC},
		Artists:     toArtistRefs(t.Artists),
		Album: models.AlbumRef{
			Name:    t.Album.Name,
			Artists: toArtistRefs(t.Album.Artists),
		},
	}
}

func toArtistRefs(artists []SpotifyArtist) []models.ArtistRef {
	refs := make([]models.ArtistRef, 0, len(artists))
	for _, a := range artists {
		refs = append(refs, models.ArtistRef{Name: a.Name})
	}
	return refs
}
