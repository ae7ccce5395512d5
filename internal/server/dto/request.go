// Defines API request types with parameter binding tags.

package dto

import (
	"time"
)

// DateOnly is the calendar-date form accepted in filters and form fields.
const DateOnly = "2006-01-02"

// ParseDate parses a date in RFC3339 or calendar-date form.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(DateOnly, s)
}

// CustomerPayload carries the editable fields of a customer. Dates travel
// as text and are parsed with ParseDate.
type CustomerPayload struct {
	FullName           string `json:"fullName"`
	Phone              string `json:"phone"`
	Note               string `json:"note"`
	CustomSearchField1 string `json:"customSearchField1"`
	Type               string `json:"type"`
	LastCall           string `json:"lastCall"`
	NextCall           string `json:"nextCall"`
}

func (p *CustomerPayload) validateDates() error {
	if p.LastCall != "" {
		if _, err := ParseDate(p.LastCall); err != nil {
			return InvalidField("lastCall", err.Error())
		}
	}
	if p.NextCall != "" {
		if _, err := ParseDate(p.NextCall); err != nil {
			return InvalidField("nextCall", err.Error())
		}
	}
	return nil
}

// ListCustomersRequest carries one filter per searchable column plus the
// sort directive. Empty values are inactive.
type ListCustomersRequest struct {
	ID                 string `query:"id"`
	FullName           string `query:"fullName"`
	Phone              string `query:"phone"`
	Note               string `query:"note"`
	CustomSearchField1 string `query:"customSearchField1"`
	Type               string `query:"type"`
	LastCall           string `query:"lastCall"`
	NextCall           string `query:"nextCall"`
	SortBy             string `query:"sortBy"`
	Dir                string `query:"dir"`
}

// Validate checks filter syntax. Field semantics (type set membership, sort
// column names) are checked during conversion by the handlers.
func (r *ListCustomersRequest) Validate() error {
	if r.LastCall != "" {
		if _, err := ParseDate(r.LastCall); err != nil {
			return InvalidField("lastCall", err.Error())
		}
	}
	if r.NextCall != "" {
		if _, err := ParseDate(r.NextCall); err != nil {
			return InvalidField("nextCall", err.Error())
		}
	}
	if r.Dir != "" && r.Dir != "asc" && r.Dir != "desc" {
		return InvalidField("dir", "must be asc or desc")
	}
	return nil
}

// CreateCustomerRequest adds a new customer. fullName and phone are
// mandatory on this path.
type CreateCustomerRequest struct {
	CustomerPayload
}

// Validate enforces the add-path invariants before the store is reached.
func (r *CreateCustomerRequest) Validate() error {
	if r.FullName == "" {
		return MissingField("fullName")
	}
	if r.Phone == "" {
		return MissingField("phone")
	}
	if r.Type == "" {
		return MissingField("type")
	}
	return r.validateDates()
}

// UpdateCustomerRequest replaces all fields of an existing customer. The
// edit path deliberately does not re-check fullName/phone.
type UpdateCustomerRequest struct {
	ID uint64 `path:"id"`
	CustomerPayload
}

// Validate checks only field syntax, matching the edit-path contract.
func (r *UpdateCustomerRequest) Validate() error {
	return r.validateDates()
}

// DeleteCustomerRequest removes a customer. Confirm must be set or the
// handler rejects the request without touching the store.
type DeleteCustomerRequest struct {
	ID      uint64 `path:"id"`
	Confirm bool   `query:"confirm"`
}

// Validate implements Validatable.
func (r *DeleteCustomerRequest) Validate() error {
	return nil
}

// HealthRequest has no parameters.
type HealthRequest struct{}

// Validate implements Validatable.
func (r *HealthRequest) Validate() error {
	return nil
}

// SchemaRequest has no parameters.
type SchemaRequest struct{}

// Validate implements Validatable.
func (r *SchemaRequest) Validate() error {
	return nil
}
