package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

func TestRequestLogger(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	handler := middleware.RequestID(requestLogger(logrus.NewEntry(logger))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/missing" {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte("ok")) //nolint:errcheck
		}),
	))

	tests := []struct {
		path   string
		status int
		level  logrus.Level
	}{
		{"/health", http.StatusOK, logrus.InfoLevel},
		{"/missing", http.StatusNotFound, logrus.WarnLevel},
	}
	for _, tt := range tests {
		hook.Reset()
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))

		entry := hook.LastEntry()
		if entry == nil {
			t.Fatalf("%s: no log entry", tt.path)
		}
		if entry.Level != tt.level {
			t.Errorf("%s level: got %v, want %v", tt.path, entry.Level, tt.level)
		}
		if entry.Data["status"] != tt.status {
			t.Errorf("%s status: got %v, want %d", tt.path, entry.Data["status"], tt.status)
		}
		if entry.Data["path"] != tt.path || entry.Data["method"] != "GET" {
			t.Errorf("%s: got %v %v", tt.path, entry.Data["method"], entry.Data["path"])
		}
		if id, _ := entry.Data["request_id"].(string); id == "" {
			t.Errorf("%s: missing request_id", tt.path)
		}
	}
}

func TestRequestLogger_ServerError(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	handler := requestLogger(logrus.NewEntry(logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusInternalServerError, "boom")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/v1/games", nil))

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("expected an error-level entry, got %v", entry)
	}
	if bytes, _ := entry.Data["bytes"].(int); bytes == 0 {
		t.Error("bytes written not recorded")
	}
}
