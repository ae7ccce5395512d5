package view

import (
	"sync"

	"callbook/internal/store"
)

// Model holds the last-received snapshot plus the current criteria and sort
// directive, and derives the displayed rows on demand. It is intended to be
// fed by a store subscription: SetSnapshot as the onNext listener, SetError
// as the onErr listener. Safe for concurrent use.
type Model struct {
	mu        sync.Mutex
	snapshot  []store.Customer
	criteria  Criteria
	directive Directive
	lastErr   error
}

// NewModel returns an empty model: no snapshot, no filters, store order.
func NewModel() *Model {
	return &Model{}
}

// SetSnapshot replaces the cached snapshot wholesale.
func (m *Model) SetSnapshot(customers []store.Customer) {
	m.mu.Lock()
	m.snapshot = customers
	m.mu.Unlock()
}

// SetError records a store error. The snapshot keeps its last good value.
func (m *Model) SetError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

// Err returns the most recent store error, if any.
func (m *Model) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// SetCriteria replaces the search criteria.
func (m *Model) SetCriteria(c Criteria) {
	m.mu.Lock()
	m.criteria = c
	m.mu.Unlock()
}

// SetDirective replaces the sort directive.
func (m *Model) SetDirective(d Directive) {
	m.mu.Lock()
	m.directive = d
	m.mu.Unlock()
}

// Directive returns the current sort directive.
func (m *Model) Directive() Directive {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.directive
}

// ToggleSort selects the sort column: picking the current column flips the
// direction, picking a new one resets to ascending.
func (m *Model) ToggleSort(f Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.directive.Field == f {
		if m.directive.Direction == Ascending {
			m.directive.Direction = Descending
		} else {
			m.directive.Direction = Ascending
		}
		return
	}
	m.directive = Directive{Field: f, Direction: Ascending}
}

// Rows derives the filtered, sorted sequence from the current state.
func (m *Model) Rows() []store.Customer {
	m.mu.Lock()
	snapshot := m.snapshot
	criteria := m.criteria
	directive := m.directive
	m.mu.Unlock()
	return Query(snapshot, criteria, directive)
}
