// package server runs the loopback HTTP server that receives the OAuth2
// authorization callback during `stx auth spotify`
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CallbackServer serves the OAuth callback on the redirect URI's host
// until one authorization result arrives.
type CallbackServer struct {
	handler *CallbackHandler
	srv     *http.Server
}

// NewCallbackServer creates a server for the given redirect URI. The URI's
// host and path determine where the server listens and which route the
// handler answers.
func NewCallbackServer(redirectURI string, handler *CallbackHandler) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}

	path := u.Path
	if path == "" {
		path = "/callback"
	}

	mux := http.NewServeMux()
	mux.Handle(path, handler)

	return &CallbackServer{
		handler: handler,
		srv:     &http.Server{Addr: u.Host, Handler: mux},
	}, nil
}

// Wait serves until the callback delivers a result, the context is
// canceled, or the timeout elapses. The server is shut down before Wait
// returns.
func (c *CallbackServer) Wait(ctx context.Context, timeout time.Duration) (OAuthResult, error) {
	errChan := make(chan error, 1)
	go func() {
		if err := c.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		c.srv.Shutdown(shutdownCtx)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-c.handler.Result():
		return result, nil
	case err := <-errChan:
		return OAuthResult{}, fmt.Errorf("callback server failed: %w", err)
	case <-timer.C:
		return OAuthResult{}, fmt.Errorf("timed out waiting for authorization after %s", timeout)
	case <-ctx.Done():
		return OAuthResult{}, ctx.Err()
	}
}
