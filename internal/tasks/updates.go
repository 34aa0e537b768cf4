package tasks

import (
	"fmt"

	"github.com/desertthunder/stx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylists Phase = iota
	FetchFavorites
	FetchAlbums
	FetchArtists
	WriteSnapshot
	SyncPlaylist
	MatchTracks
	SyncFavorites
	SyncAlbums
	SyncArtists
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchFavorites:
		return "fetch_favorites"
	case FetchAlbums:
		return "fetch_albums"
	case FetchArtists:
		return "fetch_artists"
	case WriteSnapshot:
		return "write_snapshot"
	case SyncPlaylist:
		return "sync_playlist"
	case MatchTracks:
		return "match_tracks"
	case SyncFavorites:
		return "sync_favorites"
	case SyncAlbums:
		return "sync_albums"
	case SyncArtists:
		return "sync_artists"
	default:
		return ""
	}
}

func fetchUpdate(phase Phase, step, total int, what string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching %s from Spotify...", what),
	}
}

func fetchedPlaylistUpdate(step, total int, pl *models.SourcePlaylist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%d tracks)", step, total, pl.Name, len(pl.Tracks)),
		Data:    pl,
	}
}

func snapshotUpdate(snap *models.Snapshot) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteSnapshot,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Snapshot ready: %d playlists, %d tracks", len(snap.Playlists), snap.TrackCount()),
		Data:    snap,
	}
}

func syncPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Syncing playlist: %s", step, total, name),
	}
}

func matchTrackUpdate(step, total int, track *models.SourceTrack) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, track.PrimaryArtist(), track.Name),
	}
}

func syncCollectionUpdate(phase Phase, step, total int, what string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Syncing %s to Tidal...", what),
	}
}
