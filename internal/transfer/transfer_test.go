package transfer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"callbook/internal/store"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRoundTrip(t *testing.T) {
	in := []store.Customer{
		{ID: 1, FullName: "Ann Hill", Phone: "555-0101", Note: "call back", Type: store.TypeNew, LastCall: date(2023, 6, 1)},
		{ID: 2, FullName: "Bob Stone", Phone: "555-0102", Type: store.TypeFull, NextCall: date(2024, 2, 1)},
	}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Decode() returned %d records, want 2", len(out))
	}
	if out[0].ID != 1 || out[0].FullName != "Ann Hill" || !out[0].LastCall.Equal(*in[0].LastCall) {
		t.Errorf("record 0 = %+v", out[0])
	}
	if out[1].LastCall != nil || !out[1].NextCall.Equal(*in[1].NextCall) {
		t.Errorf("record 1 dates = %v, %v", out[1].LastCall, out[1].NextCall)
	}
}

func TestEncodeEmpty(t *testing.T) {
	data, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "[]" {
		t.Errorf("Encode(nil) = %q, want empty array", got)
	}
}

func TestEncodeDatesAreRFC3339(t *testing.T) {
	data, err := Encode([]store.Customer{
		{ID: 1, FullName: "Ann", Phone: "1", Type: store.TypeNew, LastCall: date(2023, 6, 1)},
	})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(string(data), `"2023-06-01T00:00:00Z"`) {
		t.Errorf("export missing RFC3339 date: %s", data)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not JSON", `hello`},
		{"object instead of array", `{"fullName":"Ann"}`},
		{"unknown field", `[{"fullName":"Ann","phone":"1","type":"NEW","color":"red"}]`},
		{"trailing garbage", `[{"fullName":"Ann","phone":"1","type":"NEW"}] extra`},
		{"bad date", `[{"fullName":"Ann","phone":"1","type":"NEW","lastCall":"yesterday"}]`},
		{"missing phone", `[{"fullName":"Ann","type":"NEW"}]`},
		{"bad type", `[{"fullName":"Ann","phone":"1","type":"MAYBE"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data)); err == nil {
				t.Error("Decode() accepted a malformed file")
			}
		})
	}
}

func TestDecodeAllOrNothing(t *testing.T) {
	// One bad record poisons the whole file, even when others are fine.
	data := `[
		{"fullName":"Ann","phone":"1","type":"NEW"},
		{"fullName":"Bob","type":"NEW"}
	]`
	_, err := Decode([]byte(data))
	if !errors.Is(err, store.ErrPhoneRequired) {
		t.Errorf("Decode() err = %v, want ErrPhoneRequired", err)
	}
}
