package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/stx/internal/models"
	"github.com/desertthunder/stx/internal/report"
	"github.com/desertthunder/stx/internal/repositories"
	"github.com/desertthunder/stx/internal/shared"
	"github.com/desertthunder/stx/internal/snapshot"
	"github.com/desertthunder/stx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export fetches the Spotify library and writes it to a snapshot file.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	outputPath := cmd.String("output")
	skipFavorites := cmd.Bool("skip-favorites")

	reports := report.NewSet("")
	engine, err := r.newEngine(config, reports)
	if err != nil {
		return err
	}

	repo, run, closeDB := r.beginRun(config, models.RunExport)
	defer closeDB()

	r.logger.Info("starting export", "output", outputPath)
	r.writePlain("Exporting Spotify library...\n\n")

	progressCh := r.progressPrinter()
	snap, err := engine.Export(ctx, skipFavorites, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	if err := snapshot.Write(f, *snap); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if run != nil {
		run.SourceUser = snap.SourceUser
		r.finishRun(repo, run, nil, reports)
	}

	r.writePlainln("✓ Export complete")
	r.writePlain("Playlists: %d\n", len(snap.Playlists))
	r.writePlain("Favorites: %d\n", len(snap.Favorites))
	r.writePlain("Albums: %d\n", len(snap.Albums))
	r.writePlain("Artists: %d\n", len(snap.Artists))
	r.writePlain("Snapshot written to %s (%d tracks)\n", outputPath, snap.TrackCount())

	return nil
}

// Import replays a snapshot file into the Tidal account.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	inputPath := cmd.String("input")
	opts := syncOptions(cmd)

	if err := r.requireDest(); err != nil {
		return err
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot file: %w", err)
	}
	snap, err := snapshot.Read(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	reports := report.NewSet(config.Report.Dir)
	defer reports.Close()

	engine, err := r.newEngine(config, reports)
	if err != nil {
		return err
	}

	repo, run, closeDB := r.beginRun(config, models.RunImport)
	defer closeDB()
	if run != nil {
		run.SourceUser = snap.SourceUser
	}

	r.logger.Info("starting import", "input", inputPath, "playlists", len(snap.Playlists))
	r.writePlain("Importing snapshot into Tidal...\n")

	progressCh := r.progressPrinter()
	result, err := engine.ImportSnapshot(ctx, &snap, opts, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	r.finishRun(repo, run, result, reports)
	r.printSummary(result, reports)

	return nil
}

// Sync runs export and import back to back against the live services.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	opts := syncOptions(cmd)

	if err := r.requireDest(); err != nil {
		return err
	}

	reports := report.NewSet(config.Report.Dir)
	defer reports.Close()

	engine, err := r.newEngine(config, reports)
	if err != nil {
		return err
	}

	repo, run, closeDB := r.beginRun(config, models.RunSync)
	defer closeDB()

	r.logger.Info("starting sync")
	r.writePlain("Syncing Spotify library to Tidal...\n\n")

	progressCh := r.progressPrinter()
	result, err := engine.Run(ctx, opts, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	r.finishRun(repo, run, result, reports)
	r.printSummary(result, reports)

	return nil
}

// syncOptions reads the shared playlist and skip flags.
func syncOptions(cmd *cli.Command) tasks.SyncOptions {
	return tasks.SyncOptions{
		PlaylistNames: cmd.StringSlice("playlist"),
		SkipFavorites: cmd.Bool("skip-favorites"),
		SkipAlbums:    cmd.Bool("skip-albums"),
		SkipArtists:   cmd.Bool("skip-artists"),
	}
}

// progressPrinter consumes engine progress updates and renders them to the
// runner's output until the returned channel is closed.
func (r *Runner) progressPrinter() chan tasks.ProgressUpdate {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPlaylists, tasks.FetchFavorites, tasks.FetchAlbums, tasks.FetchArtists:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.WriteSnapshot:
				r.writePlain("💾 %s\n", update.Message)
			case tasks.SyncPlaylist:
				r.writePlain("\n📝 %s\n", update.Message)
			case tasks.MatchTracks:
				r.writePlain("   %s\n", update.Message)
			case tasks.SyncFavorites, tasks.SyncAlbums, tasks.SyncArtists:
				r.writePlain("\n🔁 %s\n", update.Message)
			}
		}
	}()
	return progressCh
}

// printSummary renders the run totals and any recorded misses.
func (r *Runner) printSummary(result *tasks.RunResult, reports *report.Set) {
	r.writePlain("\n")
	r.writePlainHeader("Sync Complete!")
	r.output.Write(report.RenderSummary(result.Totals()))

	if entries := reports.Entries(); len(entries) > 0 {
		r.writePlain("\n")
		r.output.Write(report.RenderMisses(entries))
	}
}

// beginRun opens the history database and records the start of a run.
// History is best effort: when the database is unavailable the run proceeds
// without it and the returned repository is nil.
func (r *Runner) beginRun(config *shared.Config, kind models.RunKind) (*repositories.RunRepository, *models.Run, func()) {
	noop := func() {}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		r.logger.Warn("run history unavailable", "error", err)
		return nil, nil, noop
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	repo := repositories.NewRunRepository(db)
	run := &models.Run{Kind: kind, StartedAt: time.Now().UTC()}
	if err := repo.Create(run); err != nil {
		r.logger.Warn("failed to record run, have you run 'stx setup'?", "error", err)
		db.Close()
		return nil, nil, noop
	}

	return repo, run, func() { db.Close() }
}

// finishRun stores the final counts and the per-entity misses for a run.
func (r *Runner) finishRun(repo *repositories.RunRepository, run *models.Run, result *tasks.RunResult, reports *report.Set) {
	if repo == nil || run == nil {
		return
	}

	if result != nil {
		run.PlaylistsSynced = result.PlaylistsSynced
		run.TracksAdded = result.TracksAdded
		run.TracksSkipped = result.TracksSkipped
		run.TracksMissed = result.TracksMissed
		run.AlbumsAdded = result.AlbumsAdded
		run.AlbumsMissed = result.AlbumsMissed
		run.ArtistsAdded = result.ArtistsAdded
		run.ArtistsMissed = result.ArtistsMissed
	}

	if err := repo.Finish(run); err != nil {
		r.logger.Warn("failed to finish run record", "error", err)
		return
	}

	for _, entry := range reports.Entries() {
		if err := repo.AddMiss(run.ID, string(entry.Kind), entry.Artist, entry.Name); err != nil {
			r.logger.Warn("failed to record miss", "error", err)
			return
		}
	}
}
