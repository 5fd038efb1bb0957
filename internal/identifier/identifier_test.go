package identifier

import (
	"regexp"
	"testing"
)

func TestNewIDUniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewID()
		if id == "" {
			t.Fatal("NewID returned empty string")
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("NewID produced duplicate %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewAdminCodeShape(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)
	for i := 0; i < 200; i++ {
		code := NewAdminCode()
		if !pattern.MatchString(code) {
			t.Fatalf("NewAdminCode returned %q, want match for %s", code, pattern)
		}
	}
}

func TestNewAdminCodeVaries(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		seen[NewAdminCode()] = struct{}{}
	}
	if len(seen) < 2 {
		t.Fatalf("NewAdminCode produced %d distinct codes across 50 draws", len(seen))
	}
}
