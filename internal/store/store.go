// Package store implements the embedded customer record store.
//
// # Overview
//
// The store keeps all customers in a single JSONL file with full in-memory
// caching for fast reads. Line 1 is a schema header carrying the collection
// name and version (fixed at open; there is no migration logic), subsequent
// lines are one JSON customer each. The store is safe for concurrent use.
//
// # Subscriptions
//
// Every committed mutation re-emits the full cloned collection to all
// registered listeners, making derived views simple "last value received"
// caches. Storage errors from background reloads are pushed to the error
// listeners instead of being dropped.
package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SchemaVersion is the only table file version this build accepts.
const SchemaVersion = 1

// collection is the fixed record collection name, set at process start.
const collection = "customers"

// header is the first line of the table file.
type header struct {
	Collection string `json:"collection"`
	Version    int    `json:"version"`
}

// Listener receives the full collection after every committed mutation.
type Listener func(customers []Customer)

// ErrListener receives storage errors that occur outside a caller's
// mutation, such as a failed reload after an external file change.
type ErrListener func(err error)

type subscriber struct {
	onNext Listener
	onErr  ErrListener
}

// Store handles storage and in-memory caching for the customer table.
type Store struct {
	path string

	mu     sync.RWMutex
	rows   []Customer
	nextID uint64

	subMu   sync.Mutex
	nextSub int
	subs    map[int]subscriber

	// Unix nanoseconds of the last write performed by this process, used
	// to tell our own fsnotify events apart from external edits.
	lastSelfWrite atomic.Int64
}

// Open creates the table file if needed and loads all data from it.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	s := &Store{
		path: path,
		subs: map[int]subscriber{},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.rows = []Customer{}
			s.nextID = 1
			return s.persistLocked()
		}
		return fmt.Errorf("failed to open table file %s: %w", s.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read table file %s: %w", s.path, err)
		}
		// Empty file: treat as a fresh table.
		s.rows = []Customer{}
		s.nextID = 1
		return nil
	}
	var h header
	if err := json.Unmarshal(scanner.Bytes(), &h); err != nil {
		return fmt.Errorf("failed to parse table header in %s: %w", s.path, err)
	}
	if h.Collection != collection || h.Version != SchemaVersion {
		return fmt.Errorf("%w: %s v%d", ErrVersionMismatch, h.Collection, h.Version)
	}

	var rows []Customer
	var maxID uint64
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row Customer
		if err := json.Unmarshal(line, &row); err != nil {
			return fmt.Errorf("failed to unmarshal row in %s: %w", s.path, err)
		}
		if row.ID > maxID {
			maxID = row.ID
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read table file %s: %w", s.path, err)
	}

	s.rows = rows
	s.nextID = maxID + 1
	return nil
}

// persistLocked rewrites the whole table file. Callers must hold mu.
func (s *Store) persistLocked() error {
	s.lastSelfWrite.Store(time.Now().UnixNano())
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	writer := bufio.NewWriter(f)
	hdr, err := json.Marshal(header{Collection: collection, Version: SchemaVersion})
	if err != nil {
		return fmt.Errorf("failed to marshal table header: %w", err)
	}
	if _, err := writer.Write(hdr); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	for i := range s.rows {
		data, err := json.Marshal(&s.rows[i])
		if err != nil {
			return fmt.Errorf("failed to marshal row: %w", err)
		}
		if _, err := writer.Write(data); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write newline: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

// Len returns the number of customers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// All returns clones of all customers in store order.
func (s *Store) All() []Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []Customer {
	out := make([]Customer, len(s.rows))
	for i := range s.rows {
		out[i] = s.rows[i].Clone()
	}
	return out
}

// Get returns a clone of the customer with the given ID.
func (s *Store) Get(id uint64) (Customer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.rows {
		if s.rows[i].ID == id {
			return s.rows[i].Clone(), true
		}
	}
	return Customer{}, false
}

// Add validates and persists a new customer, assigning the next free ID.
// Returns the stored customer including its ID.
func (s *Store) Add(c Customer) (Customer, error) {
	if err := c.Validate(); err != nil {
		return Customer{}, err
	}
	s.mu.Lock()
	c.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, c.Clone())
	if err := s.persistLocked(); err != nil {
		// Roll back the in-memory append so the cache mirrors disk.
		s.rows = s.rows[:len(s.rows)-1]
		s.nextID--
		s.mu.Unlock()
		return Customer{}, err
	}
	s.mu.Unlock()
	s.notify()
	return c, nil
}

// Update replaces all fields of the customer with the given ID. Unlike Add,
// it does not re-validate fullName/phone; only the type is checked.
func (s *Store) Update(id uint64, c Customer) error {
	if err := c.ValidateType(); err != nil {
		return err
	}
	s.mu.Lock()
	idx := -1
	for i := range s.rows {
		if s.rows[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	prev := s.rows[idx]
	c.ID = id
	s.rows[idx] = c.Clone()
	if err := s.persistLocked(); err != nil {
		s.rows[idx] = prev
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// Delete removes the customer with the given ID.
func (s *Store) Delete(id uint64) error {
	s.mu.Lock()
	idx := -1
	for i := range s.rows {
		if s.rows[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	prev := s.rows
	s.rows = append(append([]Customer{}, s.rows[:idx]...), s.rows[idx+1:]...)
	if err := s.persistLocked(); err != nil {
		s.rows = prev
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// Clear removes all customers.
func (s *Store) Clear() error {
	s.mu.Lock()
	prev := s.rows
	s.rows = []Customer{}
	if err := s.persistLocked(); err != nil {
		s.rows = prev
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// BulkAdd inserts customers in one write and one notification. Provided IDs
// are preserved; zero IDs get the next free one. A repeated ID fails the
// whole batch without mutating the store.
func (s *Store) BulkAdd(customers []Customer) error {
	for i := range customers {
		if err := customers[i].ValidateType(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	prev := s.rows
	prevNext := s.nextID
	if err := s.bulkAddLocked(customers); err != nil {
		s.rows = prev
		s.nextID = prevNext
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) bulkAddLocked(customers []Customer) error {
	seen := make(map[uint64]struct{}, len(s.rows)+len(customers))
	for i := range s.rows {
		seen[s.rows[i].ID] = struct{}{}
	}
	rows := append(append([]Customer{}, s.rows...), make([]Customer, 0, len(customers))...)
	for i := range customers {
		c := customers[i].Clone()
		if c.ID == 0 {
			c.ID = s.nextID
			s.nextID++
		} else if c.ID >= s.nextID {
			s.nextID = c.ID + 1
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateID, c.ID)
		}
		seen[c.ID] = struct{}{}
		rows = append(rows, c)
	}
	s.rows = rows
	return s.persistLocked()
}

// ReplaceAll atomically clears the table and bulk-inserts the given
// customers: one file rewrite, one notification. Used by import.
func (s *Store) ReplaceAll(customers []Customer) error {
	for i := range customers {
		if err := customers[i].ValidateType(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	prev := s.rows
	prevNext := s.nextID
	s.rows = []Customer{}
	s.nextID = 1
	if err := s.bulkAddLocked(customers); err != nil {
		s.rows = prev
		s.nextID = prevNext
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// Subscribe registers a listener pair. onNext is invoked synchronously with
// the current collection right away, then again after every committed
// mutation. onErr may be nil. The returned function cancels the
// subscription.
func (s *Store) Subscribe(onNext Listener, onErr ErrListener) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = subscriber{onNext: onNext, onErr: onErr}
	s.subMu.Unlock()

	if onNext != nil {
		onNext(s.All())
	}
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	snapshot := s.All()
	for _, sub := range s.subscribers() {
		if sub.onNext != nil {
			sub.onNext(snapshot)
		}
	}
}

func (s *Store) notifyErr(err error) {
	for _, sub := range s.subscribers() {
		if sub.onErr != nil {
			sub.onErr(err)
		}
	}
}

func (s *Store) subscribers() []subscriber {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	out := make([]subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	return out
}

// selfWriteWindow is how long after one of our own writes fsnotify events
// on the table file are ignored.
const selfWriteWindow = 500 * time.Millisecond

// Watch reloads the table and re-emits the collection when the backing file
// is modified by another process (e.g. a manual edit). Events caused by the
// store's own writes are filtered out. Runs until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Name != s.path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}
				if time.Since(time.Unix(0, s.lastSelfWrite.Load())) < selfWriteWindow {
					continue
				}
				slog.InfoContext(ctx, "Table file changed externally, reloading", "path", s.path)
				if err := s.load(); err != nil {
					slog.ErrorContext(ctx, "Failed to reload table file", "path", s.path, "err", err)
					s.notifyErr(err)
					continue
				}
				s.notify()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching table file", "err", err)
				s.notifyErr(err)
			}
		}
	}()
	return nil
}
