// Defines API response types.

package dto

// Customer is the API representation of a record. Dates are RFC3339 text,
// empty when unset.
type Customer struct {
	ID                 uint64 `json:"id"`
	FullName           string `json:"fullName"`
	Phone              string `json:"phone"`
	Note               string `json:"note,omitempty"`
	CustomSearchField1 string `json:"customSearchField1,omitempty"`
	Type               string `json:"type"`
	LastCall           string `json:"lastCall,omitempty"`
	NextCall           string `json:"nextCall,omitempty"`
}

// ListCustomersResponse is the filtered, sorted collection.
type ListCustomersResponse struct {
	Customers []Customer `json:"customers"`
	Total     int        `json:"total"`
}

// CreateCustomerResponse reports the ID assigned by the store.
type CreateCustomerResponse struct {
	ID uint64 `json:"id"`
}

// UpdateCustomerResponse acknowledges an update.
type UpdateCustomerResponse struct {
	ID uint64 `json:"id"`
}

// DeleteCustomerResponse acknowledges a delete.
type DeleteCustomerResponse struct {
	Ok bool `json:"ok"`
}

// ImportCustomersResponse reports how many records replaced the collection.
type ImportCustomersResponse struct {
	Imported int `json:"imported"`
}

// HealthResponse reports server liveness and build info.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Commits   int    `json:"commits"`
}
