package core

import (
	"testing"
	"time"
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

// TestComputeSelectionKey checks the metric set is order-insensitive
func TestComputeSelectionKey(t *testing.T) {
	v := TableVersion("v1")

	a := ComputeSelectionKey(v, "4ta", []string{"IMTP", "CMJ"})
	b := ComputeSelectionKey(v, "4ta", []string{"CMJ", "IMTP"})
	if a != b {
		t.Errorf("Expected metric order not to change the key")
	}

	if a == ComputeSelectionKey(v, "Reserva", []string{"CMJ", "IMTP"}) {
		t.Error("Expected category to change the key")
	}
	if a == ComputeSelectionKey(TableVersion("v2"), "4ta", []string{"CMJ", "IMTP"}) {
		t.Error("Expected table version to change the key")
	}
	if a == ComputeSelectionKey(v, "4ta", []string{"CMJ", "IMTP"}, "exclude") {
		t.Error("Expected extras to change the key")
	}
}

// TestDaysBetween tests whole-day differences
func TestDaysBetween(t *testing.T) {
	start := time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)
	end := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)

	if got := DaysBetween(start, end); got != 10 {
		t.Errorf("Expected 10 days, got %d", got)
	}
	if got := DaysBetween(end, start); got != -10 {
		t.Errorf("Expected -10 days, got %d", got)
	}
}
