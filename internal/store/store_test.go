package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setupStore creates a store in the test's temp directory.
func setupStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.jsonl")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s, path
}

func TestOpenWritesHeader(t *testing.T) {
	_, path := setupStore(t)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	first, _, _ := strings.Cut(string(data), "\n")
	if !strings.Contains(first, `"customers"`) || !strings.Contains(first, `"version":1`) {
		t.Errorf("header line = %q", first)
	}
}

func TestOpenVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "customers.jsonl")
	if err := os.WriteFile(path, []byte(`{"collection":"customers","version":99}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrVersionMismatch) {
		t.Errorf("Open() err = %v, want ErrVersionMismatch", err)
	}
}

func TestAdd(t *testing.T) {
	s, path := setupStore(t)

	t.Run("assigns sequential IDs", func(t *testing.T) {
		a, err := s.Add(Customer{FullName: "Ann", Phone: "111", Type: TypeNew})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		b, err := s.Add(Customer{FullName: "Bob", Phone: "222", Type: TypeBusy})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if a.ID != 1 || b.ID != 2 {
			t.Errorf("IDs = %d, %d, want 1, 2", a.ID, b.ID)
		}
	})

	t.Run("rejects invalid record", func(t *testing.T) {
		if _, err := s.Add(Customer{Phone: "333", Type: TypeNew}); !errors.Is(err, ErrFullNameRequired) {
			t.Errorf("Add() err = %v, want ErrFullNameRequired", err)
		}
		if s.Len() != 2 {
			t.Errorf("Len() = %d after failed add, want 2", s.Len())
		}
	})

	t.Run("persists across reopen", func(t *testing.T) {
		reopened, err := Open(path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if reopened.Len() != 2 {
			t.Errorf("Len() = %d after reopen, want 2", reopened.Len())
		}
		c, err := reopened.Add(Customer{FullName: "Cid", Phone: "333", Type: TypeYes})
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if c.ID != 3 {
			t.Errorf("ID after reopen = %d, want 3", c.ID)
		}
	})
}

func TestGetReturnsClone(t *testing.T) {
	s, _ := setupStore(t)
	when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	added, err := s.Add(Customer{FullName: "Ann", Phone: "111", Type: TypeNew, LastCall: &when})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	got, ok := s.Get(added.ID)
	if !ok {
		t.Fatal("Get() did not find the record")
	}
	got.FullName = "Modified"
	*got.LastCall = got.LastCall.AddDate(1, 0, 0)

	again, _ := s.Get(added.ID)
	if again.FullName != "Ann" || !again.LastCall.Equal(when) {
		t.Error("Get() returned a reference instead of a clone")
	}
}

func TestUpdate(t *testing.T) {
	s, _ := setupStore(t)
	added, err := s.Add(Customer{FullName: "Ann", Phone: "111", Note: "old", Type: TypeNew})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	t.Run("replaces all fields", func(t *testing.T) {
		// The edit path allows clearing name and phone.
		if err := s.Update(added.ID, Customer{Type: TypeYes}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		got, _ := s.Get(added.ID)
		if got.FullName != "" || got.Phone != "" || got.Note != "" || got.Type != TypeYes {
			t.Errorf("after update: %+v", got)
		}
	})

	t.Run("keeps the ID", func(t *testing.T) {
		got, ok := s.Get(added.ID)
		if !ok || got.ID != added.ID {
			t.Errorf("Get(%d) ok=%v id=%d", added.ID, ok, got.ID)
		}
	})

	t.Run("rejects bad type", func(t *testing.T) {
		if err := s.Update(added.ID, Customer{Type: "NOPE"}); !errors.Is(err, ErrInvalidType) {
			t.Errorf("Update() err = %v, want ErrInvalidType", err)
		}
	})

	t.Run("unknown ID", func(t *testing.T) {
		if err := s.Update(999, Customer{Type: TypeNew}); !errors.Is(err, ErrNotFound) {
			t.Errorf("Update() err = %v, want ErrNotFound", err)
		}
	})
}

func TestDelete(t *testing.T) {
	s, _ := setupStore(t)
	a, _ := s.Add(Customer{FullName: "Ann", Phone: "111", Type: TypeNew})
	b, _ := s.Add(Customer{FullName: "Bob", Phone: "222", Type: TypeNew})

	if err := s.Delete(a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := s.Get(a.ID); ok {
		t.Error("deleted record still present")
	}
	if _, ok := s.Get(b.ID); !ok {
		t.Error("unrelated record vanished")
	}
	if err := s.Delete(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() err = %v, want ErrNotFound", err)
	}
}

func TestBulkAdd(t *testing.T) {
	t.Run("preserves and assigns IDs", func(t *testing.T) {
		s, _ := setupStore(t)
		batch := []Customer{
			{ID: 7, FullName: "Ann", Phone: "111", Type: TypeNew},
			{FullName: "Bob", Phone: "222", Type: TypeNew},
		}
		if err := s.BulkAdd(batch); err != nil {
			t.Fatalf("BulkAdd failed: %v", err)
		}
		if _, ok := s.Get(7); !ok {
			t.Error("provided ID 7 not preserved")
		}
		if _, ok := s.Get(8); !ok {
			t.Error("zero ID not assigned after the max")
		}
	})

	t.Run("duplicate ID fails whole batch", func(t *testing.T) {
		s, _ := setupStore(t)
		a, _ := s.Add(Customer{FullName: "Ann", Phone: "111", Type: TypeNew})
		batch := []Customer{
			{FullName: "Bob", Phone: "222", Type: TypeNew},
			{ID: a.ID, FullName: "Imp", Phone: "333", Type: TypeNew},
		}
		if err := s.BulkAdd(batch); !errors.Is(err, ErrDuplicateID) {
			t.Fatalf("BulkAdd() err = %v, want ErrDuplicateID", err)
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d after failed batch, want 1", s.Len())
		}
	})
}

func TestReplaceAll(t *testing.T) {
	s, _ := setupStore(t)
	s.Add(Customer{FullName: "Old", Phone: "000", Type: TypeNew})

	var notifications int
	cancel := s.Subscribe(func([]Customer) { notifications++ }, nil)
	defer cancel()
	notifications = 0 // Drop the subscribe-time emission.

	batch := []Customer{
		{ID: 5, FullName: "Ann", Phone: "111", Type: TypeNew},
		{FullName: "Bob", Phone: "222", Type: TypeNew},
	}
	if err := s.ReplaceAll(batch); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if _, ok := s.Get(1); ok {
		t.Error("pre-import record survived ReplaceAll")
	}
	if notifications != 1 {
		t.Errorf("notifications = %d, want 1 for the whole import", notifications)
	}
}

func TestSubscribe(t *testing.T) {
	s, _ := setupStore(t)
	s.Add(Customer{FullName: "Ann", Phone: "111", Type: TypeNew})

	var got [][]Customer
	cancel := s.Subscribe(func(customers []Customer) {
		got = append(got, customers)
	}, nil)

	t.Run("emits current collection on subscribe", func(t *testing.T) {
		if len(got) != 1 || len(got[0]) != 1 {
			t.Fatalf("emissions = %d, want initial snapshot with 1 row", len(got))
		}
	})

	t.Run("emits after each mutation", func(t *testing.T) {
		s.Add(Customer{FullName: "Bob", Phone: "222", Type: TypeNew})
		if len(got) != 2 || len(got[1]) != 2 {
			t.Fatalf("emissions = %d after add", len(got))
		}
	})

	t.Run("stops after cancel", func(t *testing.T) {
		cancel()
		s.Add(Customer{FullName: "Cid", Phone: "333", Type: TypeNew})
		if len(got) != 2 {
			t.Errorf("emissions = %d after cancel, want 2", len(got))
		}
	})
}
