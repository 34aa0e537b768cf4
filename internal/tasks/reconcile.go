package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/stx/internal/models"
	"github.com/desertthunder/stx/internal/report"
	"github.com/desertthunder/stx/internal/shared"
)

// matchTracks resolves source tracks to destination track IDs in order,
// recording a miss for every track with no acceptable candidate. Search
// failures count as misses for that track; auth failures abort the run.
func (e *Engine) matchTracks(ctx context.Context, tracks []models.SourceTrack, progress chan<- ProgressUpdate) ([]string, error) {
	ids := make([]string, 0, len(tracks))
	total := len(tracks)

	for i, track := range tracks {
		e.sendProgress(progress, matchTrackUpdate(i+1, total, &track))

		id, found, err := e.matcher.FindTrack(ctx, track)
		if err != nil {
			if errors.Is(err, shared.ErrAuthFailed) || ctx.Err() != nil {
				return nil, err
			}
			e.logger.Warn("track search failed", "track", track.Name, "error", err)
			found = false
		}

		if !found {
			if err := e.reports.Miss(report.KindTrack, track.PrimaryArtist(), track.Name); err != nil {
				e.logger.Warn("failed to record miss", "error", err)
			}
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// syncPlaylist brings one destination playlist in line with its source
// counterpart while minimizing destructive writes:
//
//   - identical contents leave the playlist untouched
//   - a destination list that is a prefix of the wanted list only gets the
//     missing suffix appended
//   - anything else clears the playlist and rewrites it in full
//
// A source playlist whose tracks all fail to match is skipped entirely, so
// a bad matching day never empties an existing destination playlist.
func (e *Engine) syncPlaylist(ctx context.Context, src models.SourcePlaylist, destByName map[string]models.Playlist, progress chan<- ProgressUpdate) error {
	pl, exists := destByName[src.Name]

	var current []models.Track
	if exists {
		var err error
		current, err = e.dest.PlaylistTracks(ctx, pl.ID)
		if err != nil {
			// A destructive rewrite based on an unknown current state is
			// worse than a stale playlist.
			e.logger.Warn("could not read destination playlist, skipping", "playlist", src.Name, "error", err)
			return nil
		}
		// Tracks already placed here pair directly against the source list,
		// so a repeat sync resolves them without a single search.
		e.cache.Populate(src.Tracks, current, e.matcher.Tolerance())
	}

	wanted, err := e.matchTracks(ctx, src.Tracks, progress)
	if err != nil {
		return err
	}
	missed := len(src.Tracks) - len(wanted)
	e.result.TracksMissed += missed

	if len(wanted) == 0 {
		e.logger.Warn("no tracks matched, leaving playlist untouched", "playlist", src.Name)
		return nil
	}

	if !exists {
		created, err := e.dest.CreatePlaylist(ctx, src.Name, src.Description)
		if err != nil {
			return fmt.Errorf("creating playlist %q: %w", src.Name, err)
		}
		if err := e.dest.AddPlaylistTracks(ctx, created.ID, wanted); err != nil {
			return err
		}
		destByName[src.Name] = created
		e.result.TracksAdded += len(wanted)
		e.result.PlaylistsSynced++
		return nil
	}

	currentIDs := make([]string, len(current))
	for i, tr := range current {
		currentIDs[i] = tr.ID
	}

	switch {
	case equalIDs(currentIDs, wanted):
		e.result.TracksSkipped += len(wanted)
	case isPrefix(currentIDs, wanted):
		suffix := wanted[len(currentIDs):]
		if err := e.dest.AddPlaylistTracks(ctx, pl.ID, suffix); err != nil {
			return err
		}
		e.result.TracksAdded += len(suffix)
		e.result.TracksSkipped += len(currentIDs)
	default:
		if err := e.dest.ClearPlaylist(ctx, pl.ID); err != nil {
			return fmt.Errorf("clearing playlist %q: %w", src.Name, err)
		}
		if err := e.dest.AddPlaylistTracks(ctx, pl.ID, wanted); err != nil {
			return err
		}
		e.result.TracksAdded += len(wanted)
	}

	e.result.PlaylistsSynced++
	return nil
}

// syncFavoriteTracks adds every matched favorite the destination doesn't
// already have. Favorites are additive: nothing is ever removed.
func (e *Engine) syncFavoriteTracks(ctx context.Context, favorites []models.SourceTrack, progress chan<- ProgressUpdate) error {
	e.sendProgress(progress, syncCollectionUpdate(SyncFavorites, 1, 1, "favorite tracks"))

	existing, err := e.dest.FavoriteTracks(ctx)
	if err != nil {
		e.logger.Warn("could not read destination favorites, assuming empty", "error", err)
		existing = nil
	}

	e.cache.Populate(favorites, existing, e.matcher.Tolerance())

	have := make(map[string]bool, len(existing))
	for _, tr := range existing {
		have[tr.ID] = true
	}

	wanted, err := e.matchTracks(ctx, favorites, progress)
	if err != nil {
		return err
	}
	e.result.TracksMissed += len(favorites) - len(wanted)

	for _, id := range wanted {
		if have[id] {
			e.result.TracksSkipped++
			continue
		}
		if err := e.dest.AddFavoriteTrack(ctx, id); err != nil {
			e.logger.Warn("failed to add favorite track", "id", id, "error", err)
			continue
		}
		have[id] = true
		e.result.TracksAdded++
	}

	return nil
}

// syncAlbums follows the same additive shape as favorites.
func (e *Engine) syncAlbums(ctx context.Context, albums []models.SourceAlbum, progress chan<- ProgressUpdate) error {
	e.sendProgress(progress, syncCollectionUpdate(SyncAlbums, 1, 1, "albums"))

	existing, err := e.dest.FavoriteAlbums(ctx)
	if err != nil {
		e.logger.Warn("could not read destination albums, assuming empty", "error", err)
		existing = nil
	}

	have := make(map[string]bool, len(existing))
	for _, al := range existing {
		have[al.ID] = true
	}

	for _, album := range albums {
		id, found, err := e.matcher.FindAlbum(ctx, album)
		if err != nil {
			if errors.Is(err, shared.ErrAuthFailed) {
				return err
			}
			e.logger.Warn("album search failed", "album", album.Name, "error", err)
			found = false
		}

		if !found {
			e.result.AlbumsMissed++
			if err := e.reports.Miss(report.KindAlbum, album.PrimaryArtist(), album.Name); err != nil {
				e.logger.Warn("failed to record miss", "error", err)
			}
			continue
		}
		if have[id] {
			continue
		}
		if err := e.dest.AddFavoriteAlbum(ctx, id); err != nil {
			e.logger.Warn("failed to add album", "id", id, "error", err)
			continue
		}
		have[id] = true
		e.result.AlbumsAdded++
	}

	return nil
}

// syncArtists follows the same additive shape as favorites.
func (e *Engine) syncArtists(ctx context.Context, artists []models.SourceArtist, progress chan<- ProgressUpdate) error {
	e.sendProgress(progress, syncCollectionUpdate(SyncArtists, 1, 1, "artists"))

	existing, err := e.dest.FavoriteArtists(ctx)
	if err != nil {
		e.logger.Warn("could not read destination artists, assuming empty", "error", err)
		existing = nil
	}

	have := make(map[string]bool, len(existing))
	for _, ar := range existing {
		have[ar.ID] = true
	}

	for _, artist := range artists {
		id, found, err := e.matcher.FindArtist(ctx, artist)
		if err != nil {
			if errors.Is(err, shared.ErrAuthFailed) {
				return err
			}
			e.logger.Warn("artist search failed", "artist", artist.Name, "error", err)
			found = false
		}

		if !found {
			e.result.ArtistsMissed++
			if err := e.reports.Miss(report.KindArtist, "", artist.Name); err != nil {
				e.logger.Warn("failed to record miss", "error", err)
			}
			continue
		}
		if have[id] {
			continue
		}
		if err := e.dest.AddFavoriteArtist(ctx, id); err != nil {
			e.logger.Warn("failed to follow artist", "id", id, "error", err)
			continue
		}
		have[id] = true
		e.result.ArtistsAdded++
	}

	return nil
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isPrefix reports whether a is a proper or equal prefix of b.
func isPrefix(a, b []string) bool {
	if len(a) > len(b) {
		return false
	}
	return equalIDs(a, b[:len(a)])
}
