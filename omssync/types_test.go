package omssync

import (
	"encoding/json"
	"testing"
)

// Binding must never reject a line item for a bad numeric; the value has to
// survive decoding so reconciliation can turn it into an error row.
func TestNumericField_AcceptsAnyScalar(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{`{"v": 3}`, "3"},
		{`{"v": 12.5}`, "12.5"},
		{`{"v": "3"}`, "3"},
		{`{"v": "many"}`, "many"},
		{`{"v": ""}`, ""},
		{`{"v": null}`, ""},
		{`{"v": true}`, "true"},
	}
	for _, tc := range cases {
		var payload struct {
			V NumericField `json:"v"`
		}
		if err := json.Unmarshal([]byte(tc.in), &payload); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if payload.V.String() != tc.expected {
			t.Fatalf("unmarshal %s expected %q, got %q", tc.in, tc.expected, payload.V.String())
		}
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"2024-03-01 09:00", "2024-03-01 09:00:00"},
		{"2024-12-31 23:59", "2024-12-31 23:59:00"},
		{"2024-01-05 00:00", "2024-01-05 00:00:00"},
	}
	for _, tc := range cases {
		got, err := NormalizeTimestamp(tc.in)
		if err != nil {
			t.Fatalf("NormalizeTimestamp(%q) error: %v", tc.in, err)
		}
		if got != tc.expected {
			t.Fatalf("NormalizeTimestamp(%q) expected %s, got %s", tc.in, tc.expected, got)
		}
	}
}

func TestNormalizeTimestamp_Malformed(t *testing.T) {
	cases := []string{
		"",
		"2024-03-01",
		"2024-03-01 09:00:00",
		"2024-13-40 99:99",
		"march first",
	}
	for _, in := range cases {
		if _, err := NormalizeTimestamp(in); err == nil {
			t.Fatalf("NormalizeTimestamp(%q) expected error", in)
		} else if !IsValidationError(err) {
			t.Fatalf("NormalizeTimestamp(%q) expected validation error, got %v", in, err)
		}
	}
}
