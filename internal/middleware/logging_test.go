package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func loggedRequest(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	wrapped := RequestLogger(logger)(handler)
	req := httptest.NewRequest("GET", "/categories/2024-01-01", nil)
	req.RemoteAddr = "10.0.0.1:4312"
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	return buf.String()
}

func TestRequestLoggerFields(t *testing.T) {
	out := loggedRequest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	for _, want := range []string{
		"level=INFO",
		"method=GET",
		"path=/categories/2024-01-01",
		"status=200",
		"bytes=2",
		"remote=10.0.0.1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
	if strings.Contains(out, "slow=true") {
		t.Errorf("fast request marked slow: %s", out)
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	out := loggedRequest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "status=404") {
		t.Errorf("client error not logged at warn: %s", out)
	}

	out = loggedRequest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "status=500") {
		t.Errorf("server error not logged at error: %s", out)
	}
}

func TestRequestLoggerFlagsSlowRequests(t *testing.T) {
	out := loggedRequest(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(slowRequestThreshold + 50*time.Millisecond)
	})
	if !strings.Contains(out, "slow=true") {
		t.Errorf("slow request not flagged: %s", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("slow request not logged at warn: %s", out)
	}
}

func TestResponseRecorderUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := &responseRecorder{ResponseWriter: rec}
	if wrapped.Unwrap() != rec {
		t.Error("Unwrap must return the underlying writer")
	}
}
