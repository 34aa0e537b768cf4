// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/stx/internal/models"
)

// MockSource is a configurable test double for a source session. Unset
// function fields return empty collections.
type MockSource struct {
	CurrentUserFunc     func(ctx context.Context) (string, error)
	PlaylistsFunc       func(ctx context.Context) ([]models.SourcePlaylist, error)
	SavedTracksFunc     func(ctx context.Context) ([]models.SourceTrack, error)
	SavedAlbumsFunc     func(ctx context.Context) ([]models.SourceAlbum, error)
	FollowedArtistsFunc func(ctx context.Context) ([]models.SourceArtist, error)
}

func (m *MockSource) CurrentUser(ctx context.Context) (string, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	return "mock_user", nil
}

func (m *MockSource) Playlists(ctx context.Context) ([]models.SourcePlaylist, error) {
	if m.PlaylistsFunc != nil {
		return m.PlaylistsFunc(ctx)
	}
	return []models.SourcePlaylist{}, nil
}

func (m *MockSource) SavedTracks(ctx context.Context) ([]models.SourceTrack, error) {
	if m.SavedTracksFunc != nil {
		return m.SavedTracksFunc(ctx)
	}
	return []models.SourceTrack{}, nil
}

func (m *MockSource) SavedAlbums(ctx context.Context) ([]models.SourceAlbum, error) {
	if m.SavedAlbumsFunc != nil {
		return m.SavedAlbumsFunc(ctx)
	}
	return []models.SourceAlbum{}, nil
}

func (m *MockSource) FollowedArtists(ctx context.Context) ([]models.SourceArtist, error) {
	if m.FollowedArtistsFunc != nil {
		return m.FollowedArtistsFunc(ctx)
	}
	return []models.SourceArtist{}, nil
}

// MockDestination is a configurable test double for a destination session.
// It records every write call so tests can assert call counts and order.
type MockDestination struct {
	PlaylistsFunc       func(ctx context.Context) ([]models.Playlist, error)
	PlaylistTracksFunc  func(ctx context.Context, playlistID string) ([]models.Track, error)
	FavoriteTracksFunc  func(ctx context.Context) ([]models.Track, error)
	FavoriteAlbumsFunc  func(ctx context.Context) ([]models.Album, error)
	FavoriteArtistsFunc func(ctx context.Context) ([]models.Artist, error)
	SearchTracksFunc    func(ctx context.Context, query string, limit int) ([]models.Track, error)
	SearchAlbumsFunc    func(ctx context.Context, query string, limit int) ([]models.Album, error)
	SearchArtistsFunc   func(ctx context.Context, query string, limit int) ([]models.Artist, error)

	AddTracksErr        error
	AddFavTrackErrFunc  func(trackID string) error
	AddFavAlbumErrFunc  func(albumID string) error
	AddFavArtistErrFunc func(artistID string) error

	Created         []models.Playlist
	Cleared         []string
	Appended        map[string][][]string
	AddedFavTracks  []string
	AddedFavAlbums  []string
	AddedFavArtists []string
}

func (m *MockDestination) Playlists(ctx context.Context) ([]models.Playlist, error) {
	if m.PlaylistsFunc != nil {
		return m.PlaylistsFunc(ctx)
	}
	return []models.Playlist{}, nil
}

func (m *MockDestination) CreatePlaylist(ctx context.Context, name, description string) (models.Playlist, error) {
	pl := models.Playlist{ID: "created_" + name, Name: name, Description: description}
	m.Created = append(m.Created, pl)
	return pl, nil
}

func (m *MockDestination) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if m.PlaylistTracksFunc != nil {
		return m.PlaylistTracksFunc(ctx, playlistID)
	}
	return []models.Track{}, nil
}

func (m *MockDestination) ClearPlaylist(ctx context.Context, playlistID string) error {
	m.Cleared = append(m.Cleared, playlistID)
	return nil
}

func (m *MockDestination) AddPlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if m.AddTracksErr != nil {
		return m.AddTracksErr
	}
	if m.Appended == nil {
		m.Appended = make(map[string][][]string)
	}
	m.Appended[playlistID] = append(m.Appended[playlistID], trackIDs)
	return nil
}

func (m *MockDestination) FavoriteTracks(ctx context.Context) ([]models.Track, error) {
	if m.FavoriteTracksFunc != nil {
		return m.FavoriteTracksFunc(ctx)
	}
	return []models.Track{}, nil
}

func (m *MockDestination) AddFavoriteTrack(ctx context.Context, trackID string) error {
	if m.AddFavTrackErrFunc != nil {
		if err := m.AddFavTrackErrFunc(trackID); err != nil {
			return err
		}
	}
	m.AddedFavTracks = append(m.AddedFavTracks, trackID)
	return nil
}

func (m *MockDestination) FavoriteAlbums(ctx context.Context) ([]models.Album, error) {
	if m.FavoriteAlbumsFunc != nil {
		return m.FavoriteAlbumsFunc(ctx)
	}
	return []models.Album{}, nil
}

func (m *MockDestination) AddFavoriteAlbum(ctx context.Context, albumID string) error {
	if m.AddFavAlbumErrFunc != nil {
		if err := m.AddFavAlbumErrFunc(albumID); err != nil {
			return err
		}
	}
	m.AddedFavAlbums = append(m.AddedFavAlbums, albumID)
	return nil
}

func (m *MockDestination) FavoriteArtists(ctx context.Context) ([]models.Artist, error) {
	if m.FavoriteArtistsFunc != nil {
		return m.FavoriteArtistsFunc(ctx)
	}
	return []models.Artist{}, nil
}

func (m *MockDestination) AddFavoriteArtist(ctx context.Context, artistID string) error {
	if m.AddFavArtistErrFunc != nil {
		if err := m.AddFavArtistErrFunc(artistID); err != nil {
			return err
		}
	}
	m.AddedFavArtists = append(m.AddedFavArtists, artistID)
	return nil
}

func (m *MockDestination) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if m.SearchTracksFunc != nil {
		return m.SearchTracksFunc(ctx, query, limit)
	}
	return []models.Track{}, nil
}

func (m *MockDestination) SearchAlbums(ctx context.Context, query string, limit int) ([]models.Album, error) {
	if m.SearchAlbumsFunc != nil {
		return m.SearchAlbumsFunc(ctx, query, limit)
	}
	return []models.Album{}, nil
}

func (m *MockDestination) SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error) {
	if m.SearchArtistsFunc != nil {
		return m.SearchArtistsFunc(ctx, query, limit)
	}
	return []models.Artist{}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// RoundTripFunc adapts a function to http.RoundTripper so tests can vary
// responses per request.
type RoundTripFunc func(req *http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// JSONResponse builds an *http.Response carrying a JSON body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
