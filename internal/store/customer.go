package store

import (
	"errors"
	"fmt"
	"time"
)

// Type classifies a customer's current standing. The set is closed: the
// store rejects any value outside of it.
type Type string

const (
	// TypeNew marks a freshly added customer with no contact attempt yet.
	TypeNew Type = "NEW"
	// TypeBusy marks a customer whose line was busy on the last attempt.
	TypeBusy Type = "BUSY"
	// TypeYes marks a customer who agreed.
	TypeYes Type = "YES"
	// TypeNo marks a customer who declined.
	TypeNo Type = "NO"
	// TypeTrial marks a customer on a trial.
	TypeTrial Type = "TRIAL"
	// TypeTest marks a test entry.
	TypeTest Type = "TEST"
	// TypeFull marks a customer with a full subscription.
	TypeFull Type = "FULL"
	// TypeNA marks a customer that could not be reached.
	TypeNA Type = "NA"
)

// Types lists all valid customer types in display order.
var Types = []Type{TypeNew, TypeBusy, TypeYes, TypeNo, TypeTrial, TypeTest, TypeFull, TypeNA}

// Valid reports whether t is one of the closed set of customer types.
func (t Type) Valid() bool {
	switch t {
	case TypeNew, TypeBusy, TypeYes, TypeNo, TypeTrial, TypeTest, TypeFull, TypeNA:
		return true
	}
	return false
}

// ParseType parses a customer type, rejecting values outside the closed set.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// Customer is the sole entity held by the store.
//
// ID is assigned by the store on Add; zero means not yet persisted.
// FullName and Phone are mandatory on the add path. LastCall and NextCall
// carry calendar-date semantics and are serialized as RFC3339.
type Customer struct {
	ID                 uint64     `json:"id,omitempty" jsonschema:"description=Record identifier assigned by the store"`
	FullName           string     `json:"fullName" jsonschema:"description=Customer full name (required)"`
	Phone              string     `json:"phone" jsonschema:"description=Customer phone number (required)"`
	Note               string     `json:"note,omitempty" jsonschema:"description=Free-form note"`
	CustomSearchField1 string     `json:"customSearchField1,omitempty" jsonschema:"description=User-defined searchable text"`
	Type               Type       `json:"type" jsonschema:"description=Customer standing (NEW/BUSY/YES/NO/TRIAL/TEST/FULL/NA)"`
	LastCall           *time.Time `json:"lastCall,omitempty" jsonschema:"description=Date of the last call"`
	NextCall           *time.Time `json:"nextCall,omitempty" jsonschema:"description=Date of the next planned call"`
}

// Clone returns a deep copy of the Customer.
func (c *Customer) Clone() Customer {
	out := *c
	if c.LastCall != nil {
		t := *c.LastCall
		out.LastCall = &t
	}
	if c.NextCall != nil {
		t := *c.NextCall
		out.NextCall = &t
	}
	return out
}

// GetID returns the Customer's ID.
func (c *Customer) GetID() uint64 {
	return c.ID
}

// Validate checks the add-path invariants: mandatory fields present and
// the type within the closed set. The update path intentionally only
// enforces ValidateType.
func (c *Customer) Validate() error {
	if c.FullName == "" {
		return ErrFullNameRequired
	}
	if c.Phone == "" {
		return ErrPhoneRequired
	}
	return c.ValidateType()
}

// ValidateType checks that the type is within the closed set.
func (c *Customer) ValidateType() error {
	if !c.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, c.Type)
	}
	return nil
}

// Sentinel errors returned by the store and by customer validation.
var (
	// ErrFullNameRequired is returned when adding a customer without a name.
	ErrFullNameRequired = errors.New("fullName is required")
	// ErrPhoneRequired is returned when adding a customer without a phone.
	ErrPhoneRequired = errors.New("phone is required")
	// ErrInvalidType is returned for type values outside the closed set.
	ErrInvalidType = errors.New("invalid customer type")
	// ErrNotFound is returned when no customer has the requested ID.
	ErrNotFound = errors.New("customer not found")
	// ErrDuplicateID is returned when a bulk insert carries a repeated ID.
	ErrDuplicateID = errors.New("duplicate customer ID")
	// ErrVersionMismatch is returned when the table file header carries an
	// unsupported schema version. There is no migration path.
	ErrVersionMismatch = errors.New("unsupported table schema version")
)
