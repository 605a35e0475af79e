package models

import (
	"errors"
	"testing"
)

func TestParseWakeCategory(t *testing.T) {
	tests := []struct {
		in       string
		expected WakeCategory
	}{
		{"light", Light},
		{"Medium", Medium},
		{" LARGE ", Large},
		{"heavy", Heavy},
		{"L", Light},
		{"g", Large},
		{"h", Heavy},
	}

	for _, tt := range tests {
		got, err := ParseWakeCategory(tt.in)
		if err != nil {
			t.Fatalf("ParseWakeCategory(%q) returned error: %v", tt.in, err)
		}
		if got != tt.expected {
			t.Errorf("ParseWakeCategory(%q) = %v, expected %v", tt.in, got, tt.expected)
		}
	}
}

func TestParseWakeCategoryUnknown(t *testing.T) {
	_, err := ParseWakeCategory("super")
	if err == nil {
		t.Fatal("expected error for unknown category")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T", err)
	}
}

func TestWakeCategoryValid(t *testing.T) {
	for c := Light; c <= Heavy; c++ {
		if !c.Valid() {
			t.Errorf("expected %v to be valid", c)
		}
	}
	if WakeCategory(4).Valid() || WakeCategory(-1).Valid() {
		t.Error("expected out-of-range categories to be invalid")
	}
	if WakeCategory(7).String() != "category(7)" {
		t.Errorf("unexpected string for invalid category: %s", WakeCategory(7).String())
	}
}

func TestOperationKindString(t *testing.T) {
	if Arrival.String() != "arrival" || Departure.String() != "departure" {
		t.Errorf("unexpected kind names: %s, %s", Arrival, Departure)
	}
	if OperationKind(5).Valid() {
		t.Error("expected kind 5 to be invalid")
	}
}

func TestBoundsValidate(t *testing.T) {
	tests := []struct {
		name        string
		bounds      Bounds
		expectError bool
	}{
		{"valid", Bounds{{0, 1}, {100, 200}}, false},
		{"degenerate interval", Bounds{{5, 5}}, false},
		{"empty", Bounds{}, true},
		{"inverted", Bounds{{0, 1}, {3, 2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bounds.Validate()
			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestBoundsClip(t *testing.T) {
	bs := Bounds{{0, 1}, {100, 200}}
	got := bs.Clip([]float64{-3, 250})
	if got[0] != 0 || got[1] != 200 {
		t.Fatalf("unexpected clip result: %v", got)
	}
	if bs[1].Width() != 100 {
		t.Fatalf("expected width 100, got %f", bs[1].Width())
	}
}

func TestDiagnosticsFeasible(t *testing.T) {
	if !(Diagnostics{}).Feasible() {
		t.Error("zero diagnostics should be feasible")
	}
	if (Diagnostics{SeparationConflicts: 1}).Feasible() {
		t.Error("separation conflict should not be feasible")
	}
}

func TestErrorMessages(t *testing.T) {
	err := &ConfigurationError{Field: "bounds", Reason: "length mismatch"}
	if err.Error() != "configuration error: bounds: length mismatch" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	inv := &InvariantViolation{Reason: "bad kind"}
	if inv.Error() != "invariant violation: bad kind" {
		t.Errorf("unexpected message: %s", inv.Error())
	}
}
