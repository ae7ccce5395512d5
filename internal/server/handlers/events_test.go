package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"callbook/internal/store"
)

func TestEventsStream(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "customers.jsonl"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	mustAdd(t, s, "Ann Hill", "111", store.TypeNew)
	h := NewEventsHandler(s)

	ctx, cancel := context.WithCancel(context.Background())
	r := httptest.NewRequest(http.MethodGet, "/api/events?fullName=ann", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.Stream(w, r)
		close(done)
	}()

	// The initial snapshot is emitted at subscribe time; a mutation pushes
	// another. Give the handler a moment to drain both.
	time.Sleep(50 * time.Millisecond)
	mustAdd(t, s, "ann lowe", "222", store.TypeNew)
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := w.Body.String()
	if got := strings.Count(body, "event: snapshot"); got < 2 {
		t.Errorf("snapshot events = %d, want at least 2:\n%s", got, body)
	}
	if !strings.Contains(body, "Ann Hill") || !strings.Contains(body, "ann lowe") {
		t.Errorf("body missing filtered rows:\n%s", body)
	}
}

func TestEventsStreamRejectsBadQuery(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "customers.jsonl"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	h := NewEventsHandler(s)

	w := httptest.NewRecorder()
	h.Stream(w, httptest.NewRequest(http.MethodGet, "/api/events?dir=sideways", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
