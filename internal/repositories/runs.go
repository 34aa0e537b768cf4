package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/stx/internal/models"
	"github.com/desertthunder/stx/internal/shared"
)

// RunRepository persists transfer runs and their unmatched entities.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run with generated ID and sequence. StartedAt
// defaults to now when unset.
func (r *RunRepository) Create(run *models.Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	run.ID = shared.GenerateID()
	run.Sequence = sequence
	if run.StartedAt.IsZero() {
		run.StartedAt = now
	}
	run.CreatedAt = now
	run.UpdatedAt = now

	query := `
		INSERT INTO runs (id, sequence, kind, source_user, playlists_synced,
			tracks_added, tracks_skipped, tracks_missed,
			albums_added, albums_missed, artists_added, artists_missed,
			started_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID,
		run.Sequence,
		string(run.Kind),
		run.SourceUser,
		run.PlaylistsSynced,
		run.TracksAdded,
		run.TracksSkipped,
		run.TracksMissed,
		run.AlbumsAdded,
		run.AlbumsMissed,
		run.ArtistsAdded,
		run.ArtistsMissed,
		run.StartedAt,
		run.CreatedAt,
		run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Finish records the run's final counts and completion time.
func (r *RunRepository) Finish(run *models.Run) error {
	now := time.Now()
	run.FinishedAt = now
	run.UpdatedAt = now

	query := `
		UPDATE runs
		SET source_user = ?, playlists_synced = ?,
			tracks_added = ?, tracks_skipped = ?, tracks_missed = ?,
			albums_added = ?, albums_missed = ?,
			artists_added = ?, artists_missed = ?,
			finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.SourceUser,
		run.PlaylistsSynced,
		run.TracksAdded,
		run.TracksSkipped,
		run.TracksMissed,
		run.AlbumsAdded,
		run.AlbumsMissed,
		run.ArtistsAdded,
		run.ArtistsMissed,
		run.FinishedAt,
		run.UpdatedAt,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found or already deleted: %s", run.ID)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs.
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `
		SELECT id, sequence, kind, source_user, playlists_synced,
			tracks_added, tracks_skipped, tracks_missed,
			albums_added, albums_missed, artists_added, artists_missed,
			started_at, finished_at, created_at, updated_at
		FROM runs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// List retrieves the most recent runs, newest first. A limit of zero or
// less means no limit.
func (r *RunRepository) List(limit int) ([]*models.Run, error) {
	query := `
		SELECT id, sequence, kind, source_user, playlists_synced,
			tracks_added, tracks_skipped, tracks_missed,
			albums_added, albums_missed, artists_added, artists_missed,
			started_at, finished_at, created_at, updated_at
		FROM runs
		WHERE deleted_at IS NULL
		ORDER BY sequence DESC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// AddMiss records one unmatched entity against a run.
func (r *RunRepository) AddMiss(runID, kind, artist, name string) error {
	query := `
		INSERT INTO misses (id, run_id, kind, artist, name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, shared.GenerateID(), runID, kind, artist, name, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert miss: %w", err)
	}
	return nil
}

// Misses retrieves a run's unmatched entities in insertion order.
func (r *RunRepository) Misses(runID string) ([]models.RunMiss, error) {
	query := `
		SELECT id, run_id, kind, artist, name, created_at
		FROM misses
		WHERE run_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query misses: %w", err)
	}
	defer rows.Close()

	var misses []models.RunMiss
	for rows.Next() {
		var m models.RunMiss
		if err := rows.Scan(&m.ID, &m.RunID, &m.Kind, &m.Artist, &m.Name, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan miss: %w", err)
		}
		misses = append(misses, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return misses, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *RunRepository) scanOne(row *sql.Row) (*models.Run, error) {
	run, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	return run, err
}

func (r *RunRepository) scanRow(row scannable) (*models.Run, error) {
	var run models.Run
	var kind string
	var finishedAt sql.NullTime

	err := row.Scan(
		&run.ID,
		&run.Sequence,
		&kind,
		&run.SourceUser,
		&run.PlaylistsSynced,
		&run.TracksAdded,
		&run.TracksSkipped,
		&run.TracksMissed,
		&run.AlbumsAdded,
		&run.AlbumsMissed,
		&run.ArtistsAdded,
		&run.ArtistsMissed,
		&run.StartedAt,
		&finishedAt,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Kind = models.RunKind(kind)
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}

	return &run, nil
}
