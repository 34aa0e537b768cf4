package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/stx/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
)

// playlistItem wraps [models.SourcePlaylist] to implement [list.Item].
type playlistItem struct {
	playlist models.SourcePlaylist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", len(i.playlist.Tracks))
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

// trackItem wraps [models.SourceTrack] to implement [list.Item].
type trackItem struct {
	track models.SourceTrack
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	desc := i.track.PrimaryArtist()
	dur := time.Duration(i.track.DurationMS) * time.Millisecond
	stamp := fmt.Sprintf("%d:%02d", int(dur.Minutes()), int(dur.Seconds())%60)
	if desc == "" {
		return stamp
	}
	return fmt.Sprintf("%s • %s", desc, stamp)
}
