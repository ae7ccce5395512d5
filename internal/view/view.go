// Package view derives the displayed customer sequence from a snapshot,
// search criteria and a sort directive.
//
// Filter and Sort are pure functions; Model composes them with
// "last value received" snapshot state fed by a store subscription.
package view

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"callbook/internal/store"
)

// Field names a searchable/sortable customer column. Values match the JSON
// field names of the record.
type Field string

const (
	// FieldID is the record identifier column.
	FieldID Field = "id"
	// FieldFullName is the customer name column.
	FieldFullName Field = "fullName"
	// FieldPhone is the phone number column.
	FieldPhone Field = "phone"
	// FieldNote is the free-form note column.
	FieldNote Field = "note"
	// FieldCustom is the user-defined search column.
	FieldCustom Field = "customSearchField1"
	// FieldType is the customer type column.
	FieldType Field = "type"
	// FieldLastCall is the last-call date column.
	FieldLastCall Field = "lastCall"
	// FieldNextCall is the next-call date column.
	FieldNextCall Field = "nextCall"
)

// ParseField parses a column name into a Field.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldID, FieldFullName, FieldPhone, FieldNote, FieldCustom, FieldType, FieldLastCall, FieldNextCall:
		return f, nil
	}
	return "", fmt.Errorf("unknown field: %q", s)
}

// Direction is a sort direction.
type Direction string

const (
	// Ascending sorts smallest first.
	Ascending Direction = "asc"
	// Descending sorts largest first.
	Descending Direction = "desc"
)

// Directive selects the sort column and direction. A zero Field means
// unsorted: records keep store order.
type Directive struct {
	Field     Field
	Direction Direction
}

// Criteria holds one filter value per searchable column. Empty values are
// inactive predicates; a record must satisfy every active one.
type Criteria struct {
	// ID matches when the decimal text of the record ID contains this
	// value (case-sensitive substring).
	ID string
	// FullName, Phone, Note and Custom match case-insensitively as
	// substrings of their columns.
	FullName string
	Phone    string
	Note     string
	Custom   string
	// Type matches by exact equality.
	Type store.Type
	// LastCall and NextCall match when the record has the date set and its
	// calendar-date component equals the filter date. A record missing the
	// field fails a non-empty date filter.
	LastCall *time.Time
	NextCall *time.Time
}

// Filter returns the customers satisfying every active predicate, in their
// original relative order. Pure: the input slice is not modified.
func Filter(snapshot []store.Customer, c Criteria) []store.Customer {
	out := make([]store.Customer, 0, len(snapshot))
	for i := range snapshot {
		if matches(&snapshot[i], &c) {
			out = append(out, snapshot[i])
		}
	}
	return out
}

func matches(r *store.Customer, c *Criteria) bool {
	if c.ID != "" && !strings.Contains(strconv.FormatUint(r.ID, 10), c.ID) {
		return false
	}
	if !containsFold(r.FullName, c.FullName) {
		return false
	}
	if !containsFold(r.Phone, c.Phone) {
		return false
	}
	if !containsFold(r.Note, c.Note) {
		return false
	}
	if !containsFold(r.CustomSearchField1, c.Custom) {
		return false
	}
	if c.Type != "" && r.Type != c.Type {
		return false
	}
	if !sameDayOrInactive(r.LastCall, c.LastCall) {
		return false
	}
	if !sameDayOrInactive(r.NextCall, c.NextCall) {
		return false
	}
	return true
}

// containsFold reports whether value contains filter case-insensitively.
// An empty filter always matches.
func containsFold(value, filter string) bool {
	if filter == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(filter))
}

func sameDayOrInactive(value, filter *time.Time) bool {
	if filter == nil {
		return true
	}
	if value == nil {
		return false
	}
	return sameDay(*value, *filter)
}

// sameDay compares calendar-date components, ignoring time of day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// Sort orders the customers per the directive and returns a new slice.
//
// The ascending pass is stable and places records missing the sort value
// strictly last. A descending request reverses the whole ascending result,
// so missing values come out first under descending order. That asymmetry
// is the documented contract, not an accident to fix here.
func Sort(filtered []store.Customer, d Directive) []store.Customer {
	out := slices.Clone(filtered)
	if d.Field == "" {
		return out
	}
	coll := collate.New(language.English)
	slices.SortStableFunc(out, func(a, b store.Customer) int {
		return compare(&a, &b, d.Field, coll)
	})
	if d.Direction == Descending {
		slices.Reverse(out)
	}
	return out
}

// Query filters then sorts in one step.
func Query(snapshot []store.Customer, c Criteria, d Directive) []store.Customer {
	return Sort(Filter(snapshot, c), d)
}

// compare orders two customers on a single field in ascending terms:
// missing values last, dates by instant, IDs numerically, text via the
// locale-aware collator (case-sensitive).
func compare(a, b *store.Customer, f Field, coll *collate.Collator) int {
	av, aok := fieldValue(a, f)
	bv, bok := fieldValue(b, f)
	if !aok || !bok {
		if aok {
			return -1
		}
		if bok {
			return 1
		}
		return 0
	}
	switch x := av.(type) {
	case uint64:
		return cmp.Compare(x, bv.(uint64))
	case time.Time:
		return x.Compare(bv.(time.Time))
	case string:
		return coll.CompareString(x, bv.(string))
	}
	return 0
}

// fieldValue extracts the sortable value of a column, reporting false when
// the record is missing a value there. Empty optional text counts as
// missing; mandatory columns always count as present.
func fieldValue(r *store.Customer, f Field) (any, bool) {
	switch f {
	case FieldID:
		return r.ID, r.ID != 0
	case FieldFullName:
		return r.FullName, r.FullName != ""
	case FieldPhone:
		return r.Phone, r.Phone != ""
	case FieldNote:
		return r.Note, r.Note != ""
	case FieldCustom:
		return r.CustomSearchField1, r.CustomSearchField1 != ""
	case FieldType:
		return string(r.Type), r.Type != ""
	case FieldLastCall:
		if r.LastCall == nil {
			return time.Time{}, false
		}
		return *r.LastCall, true
	case FieldNextCall:
		if r.NextCall == nil {
			return time.Time{}, false
		}
		return *r.NextCall, true
	}
	return nil, false
}
