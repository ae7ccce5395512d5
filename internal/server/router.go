// Package server implements the HTTP server and routing logic.
package server

import (
	"embed"
	"io"
	"io/fs"
	"net/http"

	"callbook/frontend"
	"callbook/internal/server/handlers"
	"callbook/internal/server/ratelimit"
)

// NewRouter creates and configures the HTTP router.
// Serves API endpoints at /api/* and the embedded web UI at /.
func NewRouter(svc *handlers.Services, cfg *handlers.Config, limiter *ratelimit.Limiter) http.Handler {
	mux := &http.ServeMux{}
	ch := handlers.NewCustomerHandler(svc.Store)
	th := handlers.NewTransferHandler(svc.Store, cfg.MaxRequestBodyBytes)
	eh := handlers.NewEventsHandler(svc.Store)
	hh := handlers.NewHealthHandler(cfg, svc.Git)
	sh := handlers.NewSchemaHandler()

	// Health check
	mux.Handle("GET /api/health", Wrap(hh.Health, cfg))

	// Customer endpoints
	mux.Handle("GET /api/customers", Wrap(ch.ListCustomers, cfg))
	mux.Handle("POST /api/customers", Wrap(ch.CreateCustomer, cfg))
	mux.Handle("PUT /api/customers/{id}", Wrap(ch.UpdateCustomer, cfg))
	mux.Handle("DELETE /api/customers/{id}", Wrap(ch.DeleteCustomer, cfg))

	// Export/import endpoints (raw: file download and upload)
	mux.HandleFunc("GET /api/customers/export", th.Export)
	mux.HandleFunc("POST /api/customers/import", th.Import)

	// Live collection stream
	mux.HandleFunc("GET /api/events", eh.Stream)

	// Record schema, documents the export file contract
	mux.Handle("GET /api/schema", Wrap(sh.Schema, cfg))

	// Serve embedded frontend with SPA fallback
	mux.Handle("/", NewEmbeddedSPAHandler(frontend.Files))

	var h http.Handler = mux
	h = GitCommit(svc.Git)(h)
	h = RateLimit(limiter)(h)
	return RequestLogger(h)
}

// EmbeddedSPAHandler serves an embedded single-page application with fallback to index.html.
type EmbeddedSPAHandler struct {
	fs embed.FS
}

// NewEmbeddedSPAHandler creates a handler for the embedded frontend.
func NewEmbeddedSPAHandler(f embed.FS) *EmbeddedSPAHandler {
	return &EmbeddedSPAHandler{fs: f}
}

// ServeHTTP implements http.Handler for embedded SPA routing.
func (h *EmbeddedSPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Try to serve the exact file from dist/
	path := "dist" + r.URL.Path
	f, err := h.fs.Open(path)
	if err == nil {
		_ = f.Close()
		fsys, _ := fs.Sub(h.fs, "dist")
		fileServer := http.FileServer(http.FS(fsys))
		// Set cache headers for static assets with extensions
		if containsDot(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		fileServer.ServeHTTP(w, r)
		return
	}

	// File not found, fall back to index.html for SPA routing
	indexFile, err := h.fs.Open("dist/index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer func() { _ = indexFile.Close() }()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = io.Copy(w, indexFile)
}

// containsDot checks if a path contains a dot (file extension).
func containsDot(path string) bool {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return false
		}
		if path[i] == '.' {
			return true
		}
	}
	return false
}
