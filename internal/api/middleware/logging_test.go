package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func serveLogged(t *testing.T, path string) string {
	t.Helper()

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return buf.String()
}

func TestLoggerRecordsRequestFields(t *testing.T) {
	line := serveLogged(t, "/messages")

	for _, field := range []string{`"method":"GET"`, `"path":"/messages"`, `"status":200`, `"bytes":2`} {
		if !strings.Contains(line, field) {
			t.Fatalf("log line missing %s: %q", field, line)
		}
	}
}

func TestLoggerSkipsOperationalEndpoints(t *testing.T) {
	for _, path := range []string{"/health", "/metrics"} {
		if line := serveLogged(t, path); line != "" {
			t.Fatalf("expected no log line for %s, got %q", path, line)
		}
	}
}
