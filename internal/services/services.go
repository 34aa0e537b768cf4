// package services defines session interfaces for the source and destination
// catalogs and their HTTP implementations
//
// Spotify (source), Tidal (destination)
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/stx/internal/matching"
	"github.com/desertthunder/stx/internal/models"
	"github.com/desertthunder/stx/internal/shared"
)

// SourceSession reads an authenticated user's library from the source
// catalog. Collections come back fully assembled: playlists carry their
// tracks in playlist order, and the library lists are chronological,
// oldest first.
type SourceSession interface {
	// CurrentUser returns the authenticated user's ID.
	CurrentUser(ctx context.Context) (string, error)

	// Playlists retrieves the user's playlists with their tracks loaded.
	Playlists(ctx context.Context) ([]models.SourcePlaylist, error)

	// SavedTracks retrieves the user's favorite tracks, oldest first.
	SavedTracks(ctx context.Context) ([]models.SourceTrack, error)

	// SavedAlbums retrieves the user's saved albums, oldest first.
	SavedAlbums(ctx context.Context) ([]models.SourceAlbum, error)

	// FollowedArtists retrieves the artists the user follows.
	FollowedArtists(ctx context.Context) ([]models.SourceArtist, error)
}

// DestinationSession reads and writes an authenticated user's library in the
// destination catalog. It doubles as the candidate searcher for matching.
type DestinationSession interface {
	matching.Searcher

	// Playlists retrieves the user's playlists.
	Playlists(ctx context.Context) ([]models.Playlist, error)

	// CreatePlaylist creates an empty playlist and returns its handle.
	CreatePlaylist(ctx context.Context, name, description string) (models.Playlist, error)

	// PlaylistTracks retrieves a playlist's tracks in playlist order.
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// ClearPlaylist removes every track from a playlist.
	ClearPlaylist(ctx context.Context, playlistID string) error

	// AddPlaylistTracks appends tracks to the end of a playlist in order.
	AddPlaylistTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// FavoriteTracks retrieves the user's favorite tracks.
	FavoriteTracks(ctx context.Context) ([]models.Track, error)

	// AddFavoriteTrack adds one track to the user's favorites.
	AddFavoriteTrack(ctx context.Context, trackID string) error

	// FavoriteAlbums retrieves the user's favorite albums.
	FavoriteAlbums(ctx context.Context) ([]models.Album, error)

	// AddFavoriteAlbum adds one album to the user's favorites.
	AddFavoriteAlbum(ctx context.Context, albumID string) error

	// FavoriteArtists retrieves the artists the user follows.
	FavoriteArtists(ctx context.Context) ([]models.Artist, error)

	// AddFavoriteArtist follows one artist.
	AddFavoriteArtist(ctx context.Context, artistID string) error
}

// classifyStatus maps a non-2xx status to the error family the retry policy
// understands. Rate limits and server errors are transient; auth failures
// and everything else are permanent.
func classifyStatus(service string, status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s returned status %d", shared.ErrAuthFailed, service, status)
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: %s returned status %d", shared.ErrTransientService, service, status)
	default:
		return fmt.Errorf("%w: %s returned status %d", shared.ErrAPIRequest, service, status)
	}
}
