// Command stx copies a Spotify library (playlists, favorites, saved albums
// and followed artists) to a Tidal account.
package main

import (
	"context"
	"os"

	"github.com/desertthunder/stx/internal/services"
	"github.com/desertthunder/stx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var source services.SourceSession
	var dest services.DestinationSession

	if srv, err := services.NewSpotifySession(config); err == nil {
		if token := config.Credentials.Spotify.Token(); token != nil {
			if err := srv.AuthenticateToken(context.Background(), token); err != nil {
				logger.Warnf("failed to restore spotify session %v", err)
			}
		}
		source = srv
	}

	if srv, err := services.NewTidalSession(config); err == nil {
		dest = srv
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Source: source,
		Dest:   dest,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "stx",
		Usage:    "Sync a Spotify library to Tidal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
