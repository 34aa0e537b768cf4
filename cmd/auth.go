package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/stx/internal/server"
	"github.com/desertthunder/stx/internal/services"
	"github.com/desertthunder/stx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthSpotify performs the OAuth2 authorization flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// saves the exchanged tokens back to the config file.
func (r *Runner) AuthSpotify(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config := r.loadConfig(cmd)

	srv, err := services.NewSpotifySession(config)
	if err != nil {
		return fmt.Errorf("%w: set spotify client_id and client_secret in %s", err, configPath)
	}

	state := shared.GenerateID()
	handler := server.NewCallbackHandler(srv.OAuthConfig(), state)
	callbackSrv, err := server.NewCallbackServer(srv.OAuthConfig().RedirectURL, handler)
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}

	authURL := srv.AuthURL(state)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	result, err := callbackSrv.Wait(ctx, 2*time.Minute)
	if err != nil {
		return err
	}
	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return fmt.Errorf("no token received")
	}

	if err := config.Credentials.Spotify.Update(result.Token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if err := srv.AuthenticateToken(ctx, result.Token); err != nil {
		return fmt.Errorf("failed to authenticate with new token: %w", err)
	}
	r.source = srv
	r.config = config

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", configPath)
	r.writePlain("You can now use: stx export\n")

	return nil
}

// AuthTidal saves Tidal credentials from a pasted token or a browser's
// "Copy as cURL" command, verifying them with one API call.
func (r *Runner) AuthTidal(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	config := r.loadConfig(cmd)

	token := cmd.String("token")
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if token == "" && curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: one of --token, --curl or --curl-file", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	if token == "" {
		var headers *shared.CurlHeaders
		var err error

		if curlFile != "" {
			headers, err = shared.ParseCurlFile(curlFile)
		} else {
			headers, err = shared.ParseCurlCommand([]byte(curlCmd))
		}
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}

		if token, err = headers.BearerToken(); err != nil {
			return fmt.Errorf("no bearer token in cURL headers: %w", err)
		}
	}

	config.Credentials.Tidal.AccessToken = token
	if userID := cmd.String("user-id"); userID != "" {
		config.Credentials.Tidal.UserID = userID
	}
	if countryCode := cmd.String("country-code"); countryCode != "" {
		config.Credentials.Tidal.CountryCode = countryCode
	}

	if config.Credentials.Tidal.UserID == "" {
		return fmt.Errorf("%w: --user-id is required until one is saved in config", shared.ErrMissingArgument)
	}

	srv, err := services.NewTidalSession(config)
	if err != nil {
		return err
	}

	r.logger.Info("verifying tidal credentials")
	if _, err := srv.Playlists(ctx); err != nil {
		return fmt.Errorf("tidal credentials rejected: %w", err)
	}

	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.dest = srv
	r.config = config

	r.writePlainln("✓ Tidal credentials verified")
	r.writePlain("✓ Saved to %s\n", configPath)

	return nil
}
