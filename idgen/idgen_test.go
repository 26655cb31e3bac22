package idgen

import (
	"strings"
	"testing"
	"time"
)

func TestUUIDv7_Unique(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen()
		if seen[id] {
			t.Fatalf("duplicate ID: %s", id)
		}
		seen[id] = true
	}
}

func TestUUIDv7_Sortable(t *testing.T) {
	gen := UUIDv7()
	a := gen()
	time.Sleep(2 * time.Millisecond)
	b := gen()
	if !(a < b) {
		t.Fatalf("IDs not time-ordered: %s >= %s", a, b)
	}
}

func TestNanoID_LengthAndAlphabet(t *testing.T) {
	gen := NanoID(12)
	id := gen()
	if len(id) != 12 {
		t.Fatalf("length: got %d", len(id))
	}
	for _, c := range id {
		if !strings.ContainsRune("0123456789abcdefghijklmnopqrstuvwxyz", c) {
			t.Fatalf("character outside alphabet: %q", c)
		}
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("snip_", Default)
	id := gen()
	if !strings.HasPrefix(id, "snip_") {
		t.Fatalf("missing prefix: %s", id)
	}
	if _, err := Parse(strings.TrimPrefix(id, "snip_")); err != nil {
		t.Fatalf("suffix is not a UUID: %v", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Fatal("expected error")
	}
}

func TestTime_V7(t *testing.T) {
	id := New()
	ts := Time(id)
	if ts.IsZero() {
		t.Fatal("zero time from v7 ID")
	}
	if d := time.Since(ts); d < 0 || d > time.Minute {
		t.Fatalf("timestamp out of range: %v", ts)
	}
}
