package handlers

import (
	"context"
	"errors"

	"callbook/internal/server/dto"
	"callbook/internal/store"
	"callbook/internal/view"
)

// CustomerHandler handles customer CRUD and list requests.
type CustomerHandler struct {
	store *store.Store
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(s *store.Store) *CustomerHandler {
	return &CustomerHandler{store: s}
}

// ListCustomers returns the collection filtered and sorted per the request.
func (h *CustomerHandler) ListCustomers(ctx context.Context, req *dto.ListCustomersRequest) (*dto.ListCustomersResponse, error) {
	criteria, directive, err := listRequestToQuery(req)
	if err != nil {
		return nil, err
	}
	rows := view.Query(h.store.All(), criteria, directive)
	return &dto.ListCustomersResponse{
		Customers: customersToDTO(rows),
		Total:     h.store.Len(),
	}, nil
}

// CreateCustomer adds a new customer. Validation happens before the store
// is reached; no partial record is created on failure.
func (h *CustomerHandler) CreateCustomer(ctx context.Context, req *dto.CreateCustomerRequest) (*dto.CreateCustomerResponse, error) {
	c, err := payloadToCustomer(&req.CustomerPayload)
	if err != nil {
		return nil, err
	}
	stored, err := h.store.Add(c)
	if err != nil {
		return nil, storeError("Failed to add customer", err)
	}
	return &dto.CreateCustomerResponse{ID: stored.ID}, nil
}

// UpdateCustomer replaces all fields of the customer with the given ID.
func (h *CustomerHandler) UpdateCustomer(ctx context.Context, req *dto.UpdateCustomerRequest) (*dto.UpdateCustomerResponse, error) {
	c, err := payloadToCustomer(&req.CustomerPayload)
	if err != nil {
		return nil, err
	}
	if err := h.store.Update(req.ID, c); err != nil {
		return nil, storeError("Failed to update customer", err)
	}
	return &dto.UpdateCustomerResponse{ID: req.ID}, nil
}

// DeleteCustomer removes a customer after explicit confirmation.
func (h *CustomerHandler) DeleteCustomer(ctx context.Context, req *dto.DeleteCustomerRequest) (*dto.DeleteCustomerResponse, error) {
	if !req.Confirm {
		return nil, dto.ConfirmationRequired("delete")
	}
	if err := h.store.Delete(req.ID); err != nil {
		return nil, storeError("Failed to delete customer", err)
	}
	return &dto.DeleteCustomerResponse{Ok: true}, nil
}

// storeError maps store sentinels to API errors.
func storeError(message string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return dto.NotFound("customer")
	case errors.Is(err, store.ErrFullNameRequired):
		return dto.MissingField("fullName")
	case errors.Is(err, store.ErrPhoneRequired):
		return dto.MissingField("phone")
	case errors.Is(err, store.ErrInvalidType):
		return dto.InvalidField("type", err.Error())
	case errors.Is(err, store.ErrDuplicateID):
		return dto.NewAPIError(409, dto.ErrorCodeConflict, err.Error())
	}
	return dto.StorageError(message, err)
}
