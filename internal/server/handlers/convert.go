// Converts between dto and store/view types.

package handlers

import (
	"time"

	"callbook/internal/server/dto"
	"callbook/internal/store"
	"callbook/internal/view"
)

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func customerToDTO(c *store.Customer) dto.Customer {
	return dto.Customer{
		ID:                 c.ID,
		FullName:           c.FullName,
		Phone:              c.Phone,
		Note:               c.Note,
		CustomSearchField1: c.CustomSearchField1,
		Type:               string(c.Type),
		LastCall:           formatDate(c.LastCall),
		NextCall:           formatDate(c.NextCall),
	}
}

func customersToDTO(customers []store.Customer) []dto.Customer {
	out := make([]dto.Customer, len(customers))
	for i := range customers {
		out[i] = customerToDTO(&customers[i])
	}
	return out
}

// payloadToCustomer builds a store customer from an API payload. The type
// is checked against the closed set here so invalid values never reach the
// store; date syntax was already validated by the request.
func payloadToCustomer(p *dto.CustomerPayload) (store.Customer, error) {
	c := store.Customer{
		FullName:           p.FullName,
		Phone:              p.Phone,
		Note:               p.Note,
		CustomSearchField1: p.CustomSearchField1,
	}
	t, err := store.ParseType(p.Type)
	if err != nil {
		return store.Customer{}, dto.InvalidField("type", err.Error())
	}
	c.Type = t
	if p.LastCall != "" {
		d, err := dto.ParseDate(p.LastCall)
		if err != nil {
			return store.Customer{}, dto.InvalidField("lastCall", err.Error())
		}
		c.LastCall = &d
	}
	if p.NextCall != "" {
		d, err := dto.ParseDate(p.NextCall)
		if err != nil {
			return store.Customer{}, dto.InvalidField("nextCall", err.Error())
		}
		c.NextCall = &d
	}
	return c, nil
}

// listRequestToQuery builds view criteria and a sort directive from the
// list/stream query parameters.
func listRequestToQuery(req *dto.ListCustomersRequest) (view.Criteria, view.Directive, error) {
	c := view.Criteria{
		ID:       req.ID,
		FullName: req.FullName,
		Phone:    req.Phone,
		Note:     req.Note,
		Custom:   req.CustomSearchField1,
	}
	if req.Type != "" {
		t, err := store.ParseType(req.Type)
		if err != nil {
			return view.Criteria{}, view.Directive{}, dto.InvalidField("type", err.Error())
		}
		c.Type = t
	}
	if req.LastCall != "" {
		d, err := dto.ParseDate(req.LastCall)
		if err != nil {
			return view.Criteria{}, view.Directive{}, dto.InvalidField("lastCall", err.Error())
		}
		c.LastCall = &d
	}
	if req.NextCall != "" {
		d, err := dto.ParseDate(req.NextCall)
		if err != nil {
			return view.Criteria{}, view.Directive{}, dto.InvalidField("nextCall", err.Error())
		}
		c.NextCall = &d
	}

	var d view.Directive
	if req.SortBy != "" {
		f, err := view.ParseField(req.SortBy)
		if err != nil {
			return view.Criteria{}, view.Directive{}, dto.InvalidField("sortBy", err.Error())
		}
		d.Field = f
		d.Direction = view.Ascending
		if req.Dir == string(view.Descending) {
			d.Direction = view.Descending
		}
	}
	return c, d, nil
}
