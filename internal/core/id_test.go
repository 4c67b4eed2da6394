package core

import (
	"testing"
	"time"
)

func TestTimestampID(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 4, 5, 0, time.UTC)
	if got := TimestampID(now); got != "20240315090405" {
		t.Fatalf("unexpected id %q", got)
	}
}

func TestNewIDGenerator(t *testing.T) {
	gen, err := NewIDGenerator("uuid")
	if err != nil {
		t.Fatalf("uuid scheme: %v", err)
	}
	a, b := gen(time.Now()), gen(time.Now())
	if a == b || len(a) != 36 {
		t.Fatalf("expected distinct uuids, got %q and %q", a, b)
	}
	if _, err := NewIDGenerator(""); err != nil {
		t.Fatalf("empty scheme should default to timestamp: %v", err)
	}
	if _, err := NewIDGenerator("sequence"); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
}
