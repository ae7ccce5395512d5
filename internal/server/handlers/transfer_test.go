package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"callbook/internal/server/dto"
	"callbook/internal/store"
	"callbook/internal/transfer"
)

func setupTransferHandler(t *testing.T) (*TransferHandler, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "customers.jsonl"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return NewTransferHandler(s, 1<<20), s
}

func TestExport(t *testing.T) {
	h, s := setupTransferHandler(t)
	mustAdd(t, s, "Ann", "111", store.TypeNew)

	w := httptest.NewRecorder()
	h.Export(w, httptest.NewRequest(http.MethodGet, "/api/customers/export", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, transfer.Filename) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	customers, err := transfer.Decode(w.Body.Bytes())
	if err != nil {
		t.Fatalf("export is not a valid import file: %v", err)
	}
	if len(customers) != 1 || customers[0].FullName != "Ann" {
		t.Errorf("exported = %+v", customers)
	}
}

func TestExportEmptyCollection(t *testing.T) {
	h, _ := setupTransferHandler(t)

	w := httptest.NewRecorder()
	h.Export(w, httptest.NewRequest(http.MethodGet, "/api/customers/export", nil))

	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %q, want empty array", got)
	}
}

func TestImport(t *testing.T) {
	valid := `[{"id":5,"fullName":"Ann","phone":"111","type":"NEW"},{"fullName":"Bob","phone":"222","type":"FULL"}]`

	t.Run("requires confirmation", func(t *testing.T) {
		h, s := setupTransferHandler(t)
		mustAdd(t, s, "Old", "000", store.TypeNew)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/customers/import", strings.NewReader(valid))
		h.Import(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
		assertErrorCode(t, w, dto.ErrorCodeConfirmationRequired)
		if s.Len() != 1 {
			t.Error("unconfirmed import mutated the store")
		}
	})

	t.Run("replaces the collection", func(t *testing.T) {
		h, s := setupTransferHandler(t)
		mustAdd(t, s, "Old", "000", store.TypeNew)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/customers/import?confirm=true", strings.NewReader(valid))
		h.Import(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body)
		}
		var resp dto.ImportCustomersResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response: %v", err)
		}
		if resp.Imported != 2 || s.Len() != 2 {
			t.Errorf("imported=%d len=%d, want 2", resp.Imported, s.Len())
		}
		if _, ok := s.Get(5); !ok {
			t.Error("provided ID 5 not preserved")
		}
		if _, ok := s.Get(1); ok {
			t.Error("pre-import record survived")
		}
	})

	t.Run("invalid file leaves store untouched", func(t *testing.T) {
		h, s := setupTransferHandler(t)
		mustAdd(t, s, "Old", "000", store.TypeNew)

		w := httptest.NewRecorder()
		bad := `[{"fullName":"Ann","phone":"111","type":"NEW","shoeSize":42}]`
		r := httptest.NewRequest(http.MethodPost, "/api/customers/import?confirm=true", strings.NewReader(bad))
		h.Import(w, r)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
		assertErrorCode(t, w, dto.ErrorCodeImportFailed)
		if s.Len() != 1 {
			t.Error("failed import mutated the store")
		}
		if _, ok := s.Get(1); !ok {
			t.Error("original record lost")
		}
	})
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, want dto.ErrorCode) {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad error body %q: %v", w.Body, err)
	}
	if resp.Error.Code != want {
		t.Errorf("error code = %s, want %s", resp.Error.Code, want)
	}
}
