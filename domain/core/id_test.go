package core

import (
	"fmt"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestParseCultivarID(t *testing.T) {
	tests := []struct {
		input    string
		expected CultivarID
		hasError bool
	}{
		{"navel_orange", CultivarID("navel_orange"), false},
		{"  Cara_Cara ", CultivarID("cara_cara"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCultivarID(tt.input)
		if tt.hasError && err == nil {
			t.Errorf("ParseCultivarID(%q) expected error", tt.input)
		}
		if !tt.hasError && got != tt.expected {
			t.Errorf("ParseCultivarID(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestUnknownReferenceErrorCarriesID(t *testing.T) {
	err := fmt.Errorf("predict: %w", NewUnknownRegionError("atlantis"))

	if !IsUnknownReference(err) {
		t.Fatal("expected unknown reference error")
	}
	if !IsNotFoundError(err) {
		t.Fatal("unknown reference should also be a not-found error")
	}
	id, ok := ReferenceID(err)
	if !ok || id != "atlantis" {
		t.Errorf("expected offending id atlantis, got %q (ok=%v)", id, ok)
	}
}
