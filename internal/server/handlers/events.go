// Live collection stream over Server-Sent Events.

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"callbook/internal/server/dto"
	"callbook/internal/store"
	"callbook/internal/view"
)

// EventsHandler streams the derived view over SSE. Each connection owns a
// view.Model fed by a store subscription: the filtered, sorted rows are
// pushed on connect and after every committed mutation. Store errors are
// surfaced as error events while the last good snapshot stays on screen.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

// Stream handles GET /api/events. The same query parameters as the list
// endpoint select the criteria and sort directive for this connection.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, dto.Internal("Streaming not supported"))
		return
	}

	req := dto.ListCustomersRequest{
		ID:                 r.URL.Query().Get("id"),
		FullName:           r.URL.Query().Get("fullName"),
		Phone:              r.URL.Query().Get("phone"),
		Note:               r.URL.Query().Get("note"),
		CustomSearchField1: r.URL.Query().Get("customSearchField1"),
		Type:               r.URL.Query().Get("type"),
		LastCall:           r.URL.Query().Get("lastCall"),
		NextCall:           r.URL.Query().Get("nextCall"),
		SortBy:             r.URL.Query().Get("sortBy"),
		Dir:                r.URL.Query().Get("dir"),
	}
	if err := req.Validate(); err != nil {
		WriteError(w, err)
		return
	}
	criteria, directive, err := listRequestToQuery(&req)
	if err != nil {
		WriteError(w, err)
		return
	}

	model := view.NewModel()
	model.SetCriteria(criteria)
	model.SetDirective(directive)

	// Buffered with one slot: a pending signal already covers any number
	// of coalesced snapshot updates, Rows() always reads the latest.
	updates := make(chan struct{}, 1)
	errs := make(chan error, 1)
	cancel := h.store.Subscribe(func(customers []store.Customer) {
		model.SetSnapshot(customers)
		select {
		case updates <- struct{}{}:
		default:
		}
	}, func(err error) {
		model.SetError(err)
		select {
		case errs <- err:
		default:
		}
	})
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			rows := model.Rows()
			data, err := json.Marshal(customersToDTO(rows))
			if err != nil {
				slog.ErrorContext(ctx, "Failed to marshal snapshot event", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data)
			flusher.Flush()
		case err := <-errs:
			fmt.Fprintf(w, "event: error\ndata: %q\n\n", err.Error())
			flusher.Flush()
		}
	}
}
