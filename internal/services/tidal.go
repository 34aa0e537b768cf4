// Tidal implementation of [DestinationSession]
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/stx/internal/fetcher"
	"github.com/desertthunder/stx/internal/models"
	"github.com/desertthunder/stx/internal/shared"
)

const (
	tidalBaseURL   = "https://api.tidal.com/v1"
	tidalPageLimit = 100
)

// TidalArtist represents an artist in Tidal responses.
type TidalArtist struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

type tidalAlbumRef struct {
	ID    json.Number `json:"id"`
	Title string      `json:"title"`
}

// TidalTrack represents a track in Tidal responses.
type TidalTrack struct {
	ID       json.Number   `json:"id"`
	Title    string        `json:"title"`
	Duration int           `json:"duration"` // seconds
	ISRC     string        `json:"isrc"`
	Artists  []TidalArtist `json:"artists"`
	Album    tidalAlbumRef `json:"album"`
}

// TidalAlbum represents an album in Tidal responses.
type TidalAlbum struct {
	ID      json.Number   `json:"id"`
	Title   string        `json:"title"`
	Artists []TidalArtist `json:"artists"`
}

// TidalPlaylist represents a playlist in Tidal responses.
type TidalPlaylist struct {
	UUID           string `json:"uuid"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	NumberOfTracks int    `json:"numberOfTracks"`
}

type tidalPage[T any] struct {
	Items              []T `json:"items"`
	Limit              int `json:"limit"`
	Offset             int `json:"offset"`
	TotalNumberOfItems int `json:"totalNumberOfItems"`
}

// tidalFavorite wraps favorites endpoints' items, which nest the entity
// under an "item" key alongside its creation date.
type tidalFavorite[T any] struct {
	Created string `json:"created"`
	Item    T      `json:"item"`
}

// TidalSession implements [DestinationSession] against the Tidal API using
// a pre-established bearer token.
type TidalSession struct {
	token       string
	userID      string
	countryCode string
	httpClient  *http.Client
	fetchOpts   fetcher.Options
}

// NewTidalSession creates a Tidal session from configured credentials.
func NewTidalSession(cfg *shared.Config) (*TidalSession, error) {
	creds := cfg.Credentials.Tidal
	if creds.AccessToken == "" || creds.UserID == "" {
		return nil, fmt.Errorf("%w: tidal access_token and user_id", shared.ErrMissingCredentials)
	}

	countryCode := creds.CountryCode
	if countryCode == "" {
		countryCode = "US"
	}

	return &TidalSession{
		token:       creds.AccessToken,
		userID:      creds.UserID,
		countryCode: countryCode,
		httpClient:  http.DefaultClient,
		fetchOpts:   fetchOptions(cfg.Sync),
	}, nil
}

// doRequest performs an authenticated request against the Tidal API.
// Non-nil form bodies are sent urlencoded; the JSON response is decoded
// into result when result is non-nil.
func (t *TidalSession) doRequest(ctx context.Context, method, endpoint string, form url.Values, result any) error {
	apiURL := tidalBaseURL + endpoint
	if strings.Contains(apiURL, "?") {
		apiURL += "&countryCode=" + t.countryCode
	} else {
		apiURL += "?countryCode=" + t.countryCode
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+t.token)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus("tidal", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Playlists retrieves the user's playlists.
func (t *TidalSession) Playlists(ctx context.Context) ([]models.Playlist, error) {
	items, err := fetcher.All(ctx, func(ctx context.Context, offset int) (fetcher.Page[TidalPlaylist], error) {
		var page tidalPage[TidalPlaylist]
		endpoint := fmt.Sprintf("/users/%s/playlists?limit=%d&offset=%d", t.userID, tidalPageLimit, offset)
		if err := t.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return fetcher.Page[TidalPlaylist]{}, err
		}
		done := page.Offset+len(page.Items) >= page.TotalNumberOfItems
		return fetcher.Page[TidalPlaylist]{Items: page.Items, Done: done}, nil
	}, t.fetchOpts)
	if err != nil {
		return nil, fmt.Errorf("fetching playlists: %w", err)
	}

	playlists := make([]models.Playlist, 0, len(items))
	for _, tp := range items {
		playlists = append(playlists, models.Playlist{
			ID:          tp.UUID,
			Name:        tp.Title,
			Description: tp.Description,
			TrackCount:  tp.NumberOfTracks,
		})
	}
	return playlists, nil
}

// CreatePlaylist creates an empty playlist and returns its handle.
func (t *TidalSession) CreatePlaylist(ctx context.Context, name, description string) (models.Playlist, error) {
	form := url.Values{}
	form.Set("title", name)
	form.Set("description", description)

	var created TidalPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", t.userID)
	if err := t.doRequest(ctx, http.MethodPost, endpoint, form, &created); err != nil {
		return models.Playlist{}, fmt.Errorf("creating playlist %q: %w", name, err)
	}

	return models.Playlist{
		ID:          created.UUID,
		Name:        created.Title,
		Description: created.Description,
	}, nil
}

// PlaylistTracks retrieves a playlist's tracks in playlist order.
func (t *TidalSession) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	items, err := fetcher.All(ctx, func(ctx context.Context, offset int) (fetcher.Page[TidalTrack], error) {
		var page tidalPage[TidalTrack]
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, tidalPageLimit, offset)
		if err := t.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return fetcher.Page[TidalTrack]{}, err
		}
		done := page.Offset+len(page.Items) >= page.TotalNumberOfItems
		return fetcher.Page[TidalTrack]{Items: page.Items, Done: done}, nil
	}, t.fetchOpts)
	if err != nil {
		return nil, fmt.Errorf("fetching playlist tracks: %w", err)
	}

	tracks := make([]models.Track, 0, len(items))
	for _, tt := range items {
		tracks = append(tracks, toTrack(tt))
	}
	return tracks, nil
}

// ClearPlaylist removes every track from a playlist.
func (t *TidalSession) ClearPlaylist(ctx context.Context, playlistID string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	if err := t.doRequest(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("clearing playlist: %w", err)
	}
	return nil
}

// AddPlaylistTracks appends tracks to the end of a playlist in order.
func (t *TidalSession) AddPlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	form := url.Values{}
	form.Set("trackIds", strings.Join(trackIDs, ","))
	form.Set("toIndex", "-1")

	endpoint := fmt.Sprintf("/playlists/%s/tracks", playlistID)
	if err := t.doRequest(ctx, http.MethodPost, endpoint, form, nil); err != nil {
		return fmt.Errorf("adding %d tracks to playlist: %w", len(trackIDs), err)
	}
	return nil
}

// FavoriteTracks retrieves the user's favorite tracks.
func (t *TidalSession) FavoriteTracks(ctx context.Context) ([]models.Track, error) {
	items, err := fetchFavorites[TidalTrack](ctx, t, "tracks")
	if err != nil {
		return nil, fmt.Errorf("fetching favorite tracks: %w", err)
	}

	tracks := make([]models.Track, 0, len(items))
	for _, tt := range items {
		tracks = append(tracks, toTrack(tt))
	}
	return tracks, nil
}

// AddFavoriteTrack adds one track to the user's favorites.
func (t *TidalSession) AddFavoriteTrack(ctx context.Context, trackID string) error {
	return t.addFavorite(ctx, "tracks", "trackIds", trackID)
}

// FavoriteAlbums retrieves the user's favorite albums.
func (t *TidalSession) FavoriteAlbums(ctx context.Context) ([]models.Album, error) {
	items, err := fetchFavorites[TidalAlbum](ctx, t, "albums")
	if err != nil {
		return nil, fmt.Errorf("fetching favorite albums: %w", err)
	}

	albums := make([]models.Album, 0, len(items))
	for _, ta := range items {
		albums = append(albums, models.Album{
			ID:      ta.ID.String(),
			Name:    ta.Title,
			Artists: artistNames(ta.Artists),
		})
	}
	return albums, nil
}

// AddFavoriteAlbum adds one album to the user's favorites.
func (t *TidalSession) AddFavoriteAlbum(ctx context.Context, albumID string) error {
	return t.addFavorite(ctx, "albums", "albumIds", albumID)
}

// FavoriteArtists retrieves the artists the user follows.
func (t *TidalSession) FavoriteArtists(ctx context.Context) ([]models.Artist, error) {
	items, err := fetchFavorites[TidalArtist](ctx, t, "artists")
	if err != nil {
		return nil, fmt.Errorf("fetching favorite artists: %w", err)
	}

	artists := make([]models.Artist, 0, len(items))
	for _, ta := range items {
		artists = append(artists, models.Artist{ID: ta.ID.String(), Name: ta.Name})
	}
	return artists, nil
}

// AddFavoriteArtist follows one artist.
func (t *TidalSession) AddFavoriteArtist(ctx context.Context, artistID string) error {
	return t.addFavorite(ctx, "artists", "artistIds", artistID)
}

// fetchFavorites assembles one of the favorites collections. Methods can't
// take type parameters, so this is a package-level function over the session.
func fetchFavorites[T any](ctx context.Context, t *TidalSession, kind string) ([]T, error) {
	return fetcher.All(ctx, func(ctx context.Context, offset int) (fetcher.Page[T], error) {
		var page tidalPage[tidalFavorite[T]]
		endpoint := fmt.Sprintf("/users/%s/favorites/%s?limit=%d&offset=%d&order=DATE&orderDirection=ASC",
			t.userID, kind, tidalPageLimit, offset)
		if err := t.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return fetcher.Page[T]{}, err
		}

		items := make([]T, 0, len(page.Items))
		for _, fav := range page.Items {
			items = append(items, fav.Item)
		}
		done := page.Offset+len(page.Items) >= page.TotalNumberOfItems
		return fetcher.Page[T]{Items: items, Done: done}, nil
	}, t.fetchOpts)
}

func (t *TidalSession) addFavorite(ctx context.Context, kind, field, id string) error {
	form := url.Values{}
	form.Set(field, id)

	endpoint := fmt.Sprintf("/users/%s/favorites/%s", t.userID, kind)
	if err := t.doRequest(ctx, http.MethodPost, endpoint, form, nil); err != nil {
		return fmt.Errorf("adding favorite %s %s: %w", strings.TrimSuffix(kind, "s"), id, err)
	}
	return nil
}

// SearchTracks retrieves track candidates for a free-text query.
func (t *TidalSession) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	var result struct {
		Items []TidalTrack `json:"items"`
	}
	if err := t.search(ctx, "tracks", query, limit, &result); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(result.Items))
	for _, tt := range result.Items {
		tracks = append(tracks, toTrack(tt))
	}
	return tracks, nil
}

// SearchAlbums retrieves album candidates for a free-text query.
func (t *TidalSession) SearchAlbums(ctx context.Context, query string, limit int) ([]models.Album, error) {
	var result struct {
		Items []TidalAlbum `json:"items"`
	}
	if err := t.search(ctx, "albums", query, limit, &result); err != nil {
		return nil, err
	}

	albums := make([]models.Album, 0, len(result.Items))
	for _, ta := range result.Items {
		albums = append(albums, models.Album{
			ID:      ta.ID.String(),
			Name:    ta.Title,
			Artists: artistNames(ta.Artists),
		})
	}
	return albums, nil
}

// SearchArtists retrieves artist candidates for a free-text query.
func (t *TidalSession) SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error) {
	var result struct {
		Items []TidalArtist `json:"items"`
	}
	if err := t.search(ctx, "artists", query, limit, &result); err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(result.Items))
	for _, ta := range result.Items {
		artists = append(artists, models.Artist{ID: ta.ID.String(), Name: ta.Name})
	}
	return artists, nil
}

func (t *TidalSession) search(ctx context.Context, kind, query string, limit int, result any) error {
	if t.fetchOpts.Limiter != nil {
		if err := t.fetchOpts.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter interrupted: %w", err)
		}
	}

	endpoint := fmt.Sprintf("/search/%s?query=%s&limit=%d", kind, url.QueryEscape(query), limit)
	if err := t.doRequest(ctx, http.MethodGet, endpoint, nil, result); err != nil {
		return fmt.Errorf("searching %s for %q: %w", kind, query, err)
	}
	return nil
}

func toTrack(tt TidalTrack) models.Track {
	return models.Track{
		ID:       tt.ID.String(),
		Name:     tt.Title,
		Artists:  artistNames(tt.Artists),
		Duration: time.Duration(tt.Duration) * time.Second,
		ISRC:     tt.ISRC,
	}
}

func artistNames(artists []TidalArtist) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}
