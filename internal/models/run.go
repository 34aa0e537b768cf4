package models

import "time"

// RunKind distinguishes the three transfer operations in run history.
type RunKind string

const (
	RunExport RunKind = "export"
	RunImport RunKind = "import"
	RunSync   RunKind = "sync"
)

// Run is one recorded transfer run.
type Run struct {
	ID              string
	Sequence        int
	Kind            RunKind
	SourceUser      string
	PlaylistsSynced int
	TracksAdded     int
	TracksSkipped   int
	TracksMissed    int
	AlbumsAdded     int
	AlbumsMissed    int
	ArtistsAdded    int
	ArtistsMissed   int
	StartedAt       time.Time
	FinishedAt      time.Time // zero until the run completes
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Finished reports whether the run completed.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// RunMiss is one entity that could not be matched during a run.
type RunMiss struct {
	ID        string
	RunID     string
	Kind      string
	Artist    string
	Name      string
	CreatedAt time.Time
}
