package shareurl

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want Link
	}{
		{"empty address", "", Link{}},
		{"no query", "https://planner.test/week", Link{}},
		{"event only", "https://planner.test/?event=ev-1", Link{EventID: "ev-1"}},
		{"guest numeric", "https://planner.test/?event=ev-1&guest=1", Link{EventID: "ev-1", ForceGuest: true}},
		{"guest true", "https://planner.test/?event=ev-1&guest=true", Link{EventID: "ev-1", ForceGuest: true}},
		{"guest yes", "https://planner.test/?event=ev-1&guest=yes", Link{EventID: "ev-1", ForceGuest: true}},
		{"guest word", "https://planner.test/?event=ev-1&guest=guest", Link{EventID: "ev-1", ForceGuest: true}},
		{"guest bare", "https://planner.test/?event=ev-1&guest", Link{EventID: "ev-1", ForceGuest: true}},
		{"guest empty value", "https://planner.test/?event=ev-1&guest=", Link{EventID: "ev-1", ForceGuest: true}},
		{"guest falsy", "https://planner.test/?event=ev-1&guest=0", Link{EventID: "ev-1"}},
		{"guest without event", "https://planner.test/?guest=1", Link{ForceGuest: true}},
		{"unparsable", "http://%zz", Link{}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Parse(tc.raw); got != tc.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	t.Run("rewrites event and drops guest flag", func(t *testing.T) {
		t.Parallel()
		got := Canonical("https://planner.test/week?event=old&guest=1", "ev-9")
		want := "https://planner.test/week?event=ev-9"
		if got != want {
			t.Fatalf("Canonical = %q, want %q", got, want)
		}
	})

	t.Run("empty base yields relative address", func(t *testing.T) {
		t.Parallel()
		if got := Canonical("", "ev-9"); got != "?event=ev-9" {
			t.Fatalf("Canonical = %q, want %q", got, "?event=ev-9")
		}
	})

	t.Run("round-trips through Parse", func(t *testing.T) {
		t.Parallel()
		link := Parse(Canonical("https://planner.test/", "ev-7"))
		if link.EventID != "ev-7" || link.ForceGuest {
			t.Fatalf("Parse(Canonical) = %+v", link)
		}
	})
}

func TestGuestLink(t *testing.T) {
	t.Parallel()

	link := Parse(GuestLink("https://planner.test/", "ev-7"))
	if link.EventID != "ev-7" || !link.ForceGuest {
		t.Fatalf("Parse(GuestLink) = %+v, want forced guest for ev-7", link)
	}
}
