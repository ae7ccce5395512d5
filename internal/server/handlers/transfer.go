// Export/import endpoints for the customer collection.

package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"callbook/internal/server/dto"
	"callbook/internal/store"
	"callbook/internal/transfer"
)

// TransferHandler serves export downloads and import uploads.
type TransferHandler struct {
	store   *store.Store
	maxBody int64
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(s *store.Store, maxBodyBytes int64) *TransferHandler {
	return &TransferHandler{store: s, maxBody: maxBodyBytes}
}

// Export serves the full collection as a downloadable JSON file with a
// fixed name. The snapshot comes from one store read.
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := transfer.Encode(h.store.All())
	if err != nil {
		WriteError(w, dto.InternalWithError("Failed to encode export", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+transfer.Filename+`"`)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write export", "err", err)
	}
}

// Import parses the uploaded JSON text and, after explicit confirmation,
// atomically replaces the collection. Any parse or validation error aborts
// before the store is mutated.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		WriteError(w, dto.ConfirmationRequired("import"))
		return
	}
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	body, err := io.ReadAll(r.Body)
	if err2 := r.Body.Close(); err == nil {
		err = err2
	}
	if err != nil {
		WriteError(w, dto.BadRequest("Failed to read import file"))
		return
	}

	customers, err := transfer.Decode(body)
	if err != nil {
		WriteError(w, dto.ImportFailed(err))
		return
	}
	if err := h.store.ReplaceAll(customers); err != nil {
		WriteError(w, storeError("Failed to replace collection", err))
		return
	}

	writeJSON(w, &dto.ImportCustomersResponse{Imported: len(customers)})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}
