// Package transfer implements the JSON export/import boundary.
//
// The export file is a JSON array of customer objects with RFC3339 dates.
// Decode is strict: unknown fields, malformed dates, missing mandatory
// fields or out-of-set types fail the whole file, so a bad upload can be
// rejected before the store is touched.
package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"callbook/internal/store"
)

// Filename is the fixed name offered for export downloads.
const Filename = "customers.json"

// Encode serializes the collection to the export file format.
func Encode(customers []store.Customer) ([]byte, error) {
	if customers == nil {
		customers = []store.Customer{}
	}
	data, err := json.MarshalIndent(customers, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode customers: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses an uploaded export file back into customers, reconstructing
// date fields from their RFC3339 form. Any malformed record fails the whole
// import; no partial result is returned.
func Decode(data []byte) ([]store.Customer, error) {
	d := json.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	var customers []store.Customer
	if err := d.Decode(&customers); err != nil {
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}
	// Reject trailing garbage after the array.
	if d.More() {
		return nil, fmt.Errorf("failed to parse import file: trailing data after customer list")
	}
	for i := range customers {
		if err := customers[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid record %d: %w", i, err)
		}
	}
	return customers, nil
}
