package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCurl = `curl 'https://listen.tidal.com/v1/users/1234/playlists' \
  -H 'accept: application/json' \
  -H 'authorization: Bearer abc123token' \
  -H 'x-tidal-token: webtoken' \
  -b 'sessionId=xyz'`

func TestParseCurlCommand(t *testing.T) {
	t.Run("Extracts Headers", func(t *testing.T) {
		parsed, err := ParseCurlCommand([]byte(sampleCurl))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if parsed.Headers["accept"] != "application/json" {
			t.Errorf("expected accept header, got %v", parsed.Headers)
		}
		if parsed.Headers["x-tidal-token"] != "webtoken" {
			t.Errorf("expected x-tidal-token header, got %v", parsed.Headers)
		}
		if parsed.Cookie != "sessionId=xyz" {
			t.Errorf("expected cookie, got %q", parsed.Cookie)
		}
	})

	t.Run("Cookie From Header", func(t *testing.T) {
		cmd := `curl 'https://example.com' -H 'cookie: a=b' -H 'accept: */*'`
		parsed, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if parsed.Cookie != "a=b" {
			t.Errorf("expected cookie a=b, got %q", parsed.Cookie)
		}
	})

	t.Run("No Headers", func(t *testing.T) {
		if _, err := ParseCurlCommand([]byte("curl 'https://example.com'")); err == nil {
			t.Error("expected error for command without headers")
		}
	})

	t.Run("Continuation Lines", func(t *testing.T) {
		parsed, err := ParseCurlCommand([]byte(sampleCurl))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(parsed.Headers) != 3 {
			t.Errorf("expected 3 headers, got %d", len(parsed.Headers))
		}
	})
}

func TestParseCurlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.sh")
	if err := os.WriteFile(path, []byte(sampleCurl), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	parsed, err := ParseCurlFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(parsed.Headers) == 0 {
		t.Error("expected headers to be parsed")
	}

	t.Run("Missing File", func(t *testing.T) {
		if _, err := ParseCurlFile(filepath.Join(t.TempDir(), "nope.sh")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestBearerToken(t *testing.T) {
	t.Run("Present", func(t *testing.T) {
		parsed, err := ParseCurlCommand([]byte(sampleCurl))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		token, err := parsed.BearerToken()
		if err != nil {
			t.Fatalf("expected token, got %v", err)
		}
		if token != "abc123token" {
			t.Errorf("expected abc123token, got %q", token)
		}
	})

	t.Run("Missing Authorization", func(t *testing.T) {
		parsed := &CurlHeaders{Headers: map[string]string{"accept": "*/*"}}
		if _, err := parsed.BearerToken(); err == nil {
			t.Error("expected error for missing authorization header")
		}
	})

	t.Run("Not Bearer", func(t *testing.T) {
		parsed := &CurlHeaders{Headers: map[string]string{"authorization": "Basic dXNlcg=="}}
		if _, err := parsed.BearerToken(); err == nil || !strings.Contains(err.Error(), "bearer") {
			t.Errorf("expected bearer error, got %v", err)
		}
	})
}
