// Serves the JSON Schema of the export file format.

package handlers

import (
	"context"
	"sync"

	"github.com/invopop/jsonschema"

	"callbook/internal/server/dto"
	"callbook/internal/store"
)

// SchemaHandler exposes the customer record schema, documenting the
// export/import file contract.
type SchemaHandler struct {
	once   sync.Once
	schema *jsonschema.Schema
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{}
}

// Schema returns the JSON Schema derived from the customer record type.
func (h *SchemaHandler) Schema(ctx context.Context, _ *dto.SchemaRequest) (*jsonschema.Schema, error) {
	h.once.Do(func() {
		r := &jsonschema.Reflector{DoNotReference: true}
		h.schema = r.Reflect(&store.Customer{})
	})
	return h.schema, nil
}
