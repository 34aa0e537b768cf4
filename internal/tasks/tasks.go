// package tasks implements library transfer operations between catalogs.
//
// The core abstraction is Engine, which orchestrates export, import and live
// sync runs. Operations emit progress updates via channels for non-blocking
// status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/stx/internal/matching"
	"github.com/desertthunder/stx/internal/models"
	"github.com/desertthunder/stx/internal/report"
	"github.com/desertthunder/stx/internal/services"
	"github.com/desertthunder/stx/internal/shared"
)

// RunResult aggregates counts from an import or sync run.
type RunResult struct {
	PlaylistsSynced int
	TracksAdded     int
	TracksSkipped   int
	TracksMissed    int
	AlbumsAdded     int
	AlbumsMissed    int
	ArtistsAdded    int
	ArtistsMissed   int
}

// Totals converts the result for summary rendering.
func (r RunResult) Totals() report.Totals {
	return report.Totals{
		PlaylistsSynced: r.PlaylistsSynced,
		TracksAdded:     r.TracksAdded,
		TracksSkipped:   r.TracksSkipped,
		TracksMissed:    r.TracksMissed,
		AlbumsAdded:     r.AlbumsAdded,
		AlbumsMissed:    r.AlbumsMissed,
		ArtistsAdded:    r.ArtistsAdded,
		ArtistsMissed:   r.ArtistsMissed,
	}
}

// SyncOptions selects which parts of a library an import or sync run covers.
// An empty PlaylistNames means every playlist.
type SyncOptions struct {
	PlaylistNames []string
	SkipFavorites bool
	SkipAlbums    bool
	SkipArtists   bool
}

// includesPlaylist reports whether the run covers the named playlist.
func (o SyncOptions) includesPlaylist(name string) bool {
	if len(o.PlaylistNames) == 0 {
		return true
	}
	for _, n := range o.PlaylistNames {
		if n == name {
			return true
		}
	}
	return false
}

// Engine orchestrates transfer runs. One Engine serves one run: the match
// cache and result counters are scoped to it.
type Engine struct {
	source  services.SourceSession
	dest    services.DestinationSession
	cache   *matching.Cache
	matcher *matching.Matcher
	reports *report.Set
	logger  *log.Logger
	result  RunResult
}

// NewEngine creates an Engine over the given sessions. The destination
// session doubles as the candidate searcher.
func NewEngine(source services.SourceSession, dest services.DestinationSession, reports *report.Set, tolerance time.Duration, logger *log.Logger) *Engine {
	cache := matching.NewCache()
	return &Engine{
		source:  source,
		dest:    dest,
		cache:   cache,
		matcher: matching.NewMatcher(dest, cache, tolerance, logger),
		reports: reports,
		logger:  logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Export reads the source library into a snapshot. Nothing is written to
// the destination.
func (e *Engine) Export(ctx context.Context, skipFavorites bool, progress chan<- ProgressUpdate) (*models.Snapshot, error) {
	user, err := e.source.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}

	e.sendProgress(progress, fetchUpdate(FetchPlaylists, 1, 4, "playlists"))
	playlists, err := e.source.Playlists(ctx)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		e.sendProgress(progress, fetchedPlaylistUpdate(i+1, len(playlists), &playlists[i]))
	}

	var favorites []models.SourceTrack
	if !skipFavorites {
		e.sendProgress(progress, fetchUpdate(FetchFavorites, 2, 4, "favorite tracks"))
		favorites, err = e.source.SavedTracks(ctx)
		if err != nil {
			return nil, err
		}
	}

	e.sendProgress(progress, fetchUpdate(FetchAlbums, 3, 4, "saved albums"))
	albums, err := e.source.SavedAlbums(ctx)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchUpdate(FetchArtists, 4, 4, "followed artists"))
	artists, err := e.source.FollowedArtists(ctx)
	if err != nil {
		return nil, err
	}

	snap := &models.Snapshot{
		Version:    models.SnapshotVersion,
		ExportedAt: time.Now().UTC(),
		SourceUser: user,
		Playlists:  playlists,
		Favorites:  favorites,
		Albums:     albums,
		Artists:    artists,
	}

	e.sendProgress(progress, snapshotUpdate(snap))
	return snap, nil
}

// ImportSnapshot reconciles the destination library against a snapshot.
func (e *Engine) ImportSnapshot(ctx context.Context, snap *models.Snapshot, opts SyncOptions, progress chan<- ProgressUpdate) (*RunResult, error) {
	e.result = RunResult{}

	destPlaylists, err := e.dest.Playlists(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching destination playlists: %w", err)
	}

	destByName := make(map[string]models.Playlist, len(destPlaylists))
	for _, pl := range destPlaylists {
		destByName[pl.Name] = pl
	}

	selected := make([]models.SourcePlaylist, 0, len(snap.Playlists))
	for _, pl := range snap.Playlists {
		if opts.includesPlaylist(pl.Name) {
			selected = append(selected, pl)
		}
	}

	for i, pl := range selected {
		e.sendProgress(progress, syncPlaylistUpdate(i+1, len(selected), pl.Name))
		if err := e.syncPlaylist(ctx, pl, destByName, progress); err != nil {
			if errors.Is(err, shared.ErrAuthFailed) || ctx.Err() != nil {
				return nil, fmt.Errorf("syncing playlist %q: %w", pl.Name, err)
			}
			e.logger.Warn("playlist sync failed, continuing", "playlist", pl.Name, "error", err)
		}
	}

	if !opts.SkipFavorites && len(snap.Favorites) > 0 {
		if err := e.syncFavoriteTracks(ctx, snap.Favorites, progress); err != nil {
			return nil, err
		}
	}

	if !opts.SkipAlbums && len(snap.Albums) > 0 {
		if err := e.syncAlbums(ctx, snap.Albums, progress); err != nil {
			return nil, err
		}
	}

	if !opts.SkipArtists && len(snap.Artists) > 0 {
		if err := e.syncArtists(ctx, snap.Artists, progress); err != nil {
			return nil, err
		}
	}

	result := e.result
	return &result, nil
}

// Run performs a live source → destination sync without an intermediate
// snapshot file.
func (e *Engine) Run(ctx context.Context, opts SyncOptions, progress chan<- ProgressUpdate) (*RunResult, error) {
	snap, err := e.Export(ctx, opts.SkipFavorites, progress)
	if err != nil {
		return nil, err
	}
	return e.ImportSnapshot(ctx, snap, opts, progress)
}
