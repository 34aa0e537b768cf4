package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/stx/internal/report"
	"github.com/desertthunder/stx/internal/repositories"
	"github.com/desertthunder/stx/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList lists recorded runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)
	runs, err := repo.List(int(limit))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if useJSON {
		return r.writeJSON(runs, pretty)
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet. Run 'stx sync' first.\n")
	}

	r.writePlain("Found %d runs:\n\n", len(runs))
	for _, run := range runs {
		r.writePlain("%d. [%s] %s\n", run.Sequence, run.Kind, run.ID)
		r.writePlain("   Started: %s", run.StartedAt.Local().Format(time.RFC822))
		if run.SourceUser != "" {
			r.writePlain(" (user %s)", run.SourceUser)
		}
		r.writePlain("\n")

		if !run.Finished() {
			r.writePlain("   Did not finish\n\n")
			continue
		}

		r.writePlain("   Playlists: %d, Tracks: %d added / %d present / %d missed\n",
			run.PlaylistsSynced, run.TracksAdded, run.TracksSkipped, run.TracksMissed)
		if run.AlbumsAdded > 0 || run.AlbumsMissed > 0 || run.ArtistsAdded > 0 || run.ArtistsMissed > 0 {
			r.writePlain("   Albums: %d added / %d missed, Artists: %d added / %d missed\n",
				run.AlbumsAdded, run.AlbumsMissed, run.ArtistsAdded, run.ArtistsMissed)
		}
		r.writePlain("\n")
	}

	return nil
}

// HistoryMisses shows the entities a run could not match, grouped by kind.
func (r *Runner) HistoryMisses(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	runID := cmd.String("run-id")

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)
	if _, err := repo.Get(runID); err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	misses, err := repo.Misses(runID)
	if err != nil {
		return fmt.Errorf("failed to load misses: %w", err)
	}

	if len(misses) == 0 {
		return r.writePlain("Everything in run %s was matched.\n", runID)
	}

	entries := make([]report.Entry, 0, len(misses))
	for _, m := range misses {
		entries = append(entries, report.Entry{Kind: report.Kind(m.Kind), Artist: m.Artist, Name: m.Name})
	}

	r.output.Write(report.RenderMisses(entries))
	return nil
}
