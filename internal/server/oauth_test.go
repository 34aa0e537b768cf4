package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func newTestHandler() *CallbackHandler {
	config := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: "http://localhost:0/token"},
	}
	return NewCallbackHandler(config, "expected_state")
}

func TestCallbackHandler(t *testing.T) {
	t.Run("Invalid State", func(t *testing.T) {
		h := newTestHandler()

		req := httptest.NewRequest("GET", "/callback?state=wrong&code=abc", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-h.Result()
		if result.Error() == nil {
			t.Error("expected state validation error")
		}
	})

	t.Run("Provider Error", func(t *testing.T) {
		h := newTestHandler()

		req := httptest.NewRequest("GET", "/callback?state=expected_state&error=access_denied&error_description=denied", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}

		result := <-h.Result()
		if result.Error() == nil {
			t.Error("expected authorization error")
		}
	})

	t.Run("Second Callback Rejected", func(t *testing.T) {
		h := newTestHandler()

		first := httptest.NewRequest("GET", "/callback?state=wrong", nil)
		h.ServeHTTP(httptest.NewRecorder(), first)

		second := httptest.NewRequest("GET", "/callback?state=wrong", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, second)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for repeated callback, got %d", rec.Code)
		}
	})
}

func TestNewCallbackServer(t *testing.T) {
	t.Run("Invalid Redirect URI", func(t *testing.T) {
		_, err := NewCallbackServer("://not-a-uri", newTestHandler())
		if err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("Defaults Callback Path", func(t *testing.T) {
		srv, err := NewCallbackServer("http://localhost:9123", newTestHandler())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srv.srv.Addr != "localhost:9123" {
			t.Errorf("unexpected addr %s", srv.srv.Addr)
		}
	})
}
