package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/group-planner/internal/event"
	"github.com/example/group-planner/internal/storage"
	"github.com/example/group-planner/internal/storage/memory"
)

func newFixture(t *testing.T) (*Model, *event.Store, *memory.Store) {
	t.Helper()

	durable := memory.New()
	counter := 0
	newID := func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	now := func() time.Time { return time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC) }
	events := event.NewStore(durable, newID, func() string { return "AB12CD" }, now)
	return NewModel(events), events, durable
}

func createEvent(t *testing.T, events *event.Store) *event.Event {
	t.Helper()

	ev, err := events.Create(context.Background(), "Team Sync", "Ada")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return ev
}

func TestSlotKeyBijection(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, Days*HoursPerDay)
	for day := 0; day < Days; day++ {
		for hour := 0; hour < HoursPerDay; hour++ {
			key := SlotKey(day, hour)
			if _, dup := seen[key]; dup {
				t.Fatalf("SlotKey(%d, %d) = %q collides", day, hour, key)
			}
			seen[key] = struct{}{}

			gotDay, gotHour, ok := ParseSlot(key)
			if !ok || gotDay != day || gotHour != hour {
				t.Fatalf("ParseSlot(%q) = (%d, %d, %v), want (%d, %d, true)", key, gotDay, gotHour, ok, day, hour)
			}
		}
	}
	if len(seen) != 168 {
		t.Fatalf("slot key space has %d entries, want 168", len(seen))
	}
}

func TestParseSlotRejectsInvalid(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"", ":", "0", "7:0", "-1:5", "0:24", "0:-1", "a:b", "1:2:3", "1:2x"} {
		if _, _, ok := ParseSlot(key); ok {
			t.Errorf("ParseSlot(%q) accepted an invalid key", key)
		}
	}
}

func TestToggleRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	model, events, _ := newFixture(t)
	ev := createEvent(t, events)
	adminID := ev.AdminParticipantID

	if model.IsAvailable(ev, adminID, 0, 9) {
		t.Fatal("fresh schedule reports availability")
	}

	marked, err := model.Toggle(ctx, ev, adminID, 0, 9)
	if err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}
	if !marked || !model.IsAvailable(ev, adminID, 0, 9) {
		t.Fatal("first toggle did not mark the slot")
	}

	marked, err = model.Toggle(ctx, ev, adminID, 0, 9)
	if err != nil {
		t.Fatalf("second Toggle returned error: %v", err)
	}
	if marked || model.IsAvailable(ev, adminID, 0, 9) {
		t.Fatal("second toggle did not restore the original state")
	}
}

func TestTogglePersistsSortedBlob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	model, events, durable := newFixture(t)
	ev := createEvent(t, events)
	adminID := ev.AdminParticipantID

	for _, slot := range [][2]int{{4, 9}, {0, 9}, {0, 10}} {
		if _, err := model.Toggle(ctx, ev, adminID, slot[0], slot[1]); err != nil {
			t.Fatalf("Toggle returned error: %v", err)
		}
	}

	blob, err := durable.Get(ctx, storage.EventKey(ev.ID))
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	var raw struct {
		Schedules map[string][]string `json:"schedules"`
	}
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		t.Fatalf("persisted blob is not valid JSON: %v", err)
	}

	got := raw.Schedules[adminID]
	want := ev.Schedule(adminID).SortedSlots()
	if len(got) != len(want) {
		t.Fatalf("persisted = %v, memory = %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("persisted = %v, memory = %v", got, want)
		}
	}
}

func TestToggleRejectsInvalidSlot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	model, events, _ := newFixture(t)
	ev := createEvent(t, events)

	if _, err := model.Toggle(ctx, ev, ev.AdminParticipantID, 7, 0); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("Toggle(7, 0) error = %v, want ErrInvalidSlot", err)
	}
	if _, err := model.Toggle(ctx, ev, ev.AdminParticipantID, 0, 24); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("Toggle(0, 24) error = %v, want ErrInvalidSlot", err)
	}
}

func TestIsAvailableUnknownParticipant(t *testing.T) {
	t.Parallel()

	model, events, _ := newFixture(t)
	ev := createEvent(t, events)

	if model.IsAvailable(ev, "nobody", 0, 9) {
		t.Fatal("unknown participant reported as available")
	}
	if model.IsAvailable(nil, "nobody", 0, 9) {
		t.Fatal("nil event reported as available")
	}
}

func TestAvailableParticipants(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	model, events, _ := newFixture(t)
	ev := createEvent(t, events)

	ev.AddParticipant(event.Participant{ID: "p-bob", Name: "Bob"})
	ev.AddParticipant(event.Participant{ID: "p-chloe", Name: "Chloe"})

	for _, id := range []string{ev.AdminParticipantID, "p-bob", "p-chloe"} {
		if _, err := model.Toggle(ctx, ev, id, 1, 10); err != nil {
			t.Fatalf("Toggle returned error: %v", err)
		}
	}
	if _, err := model.Toggle(ctx, ev, "p-chloe", 2, 10); err != nil {
		t.Fatalf("Toggle returned error: %v", err)
	}

	t.Run("preserves join order", func(t *testing.T) {
		got := model.AvailableParticipants(ev, 1, 10)
		if len(got) != 3 {
			t.Fatalf("available = %d participants, want 3", len(got))
		}
		wantOrder := []string{ev.AdminParticipantID, "p-bob", "p-chloe"}
		for i, p := range got {
			if p.ID != wantOrder[i] {
				t.Fatalf("order = %v, want %v", got, wantOrder)
			}
		}
	})

	t.Run("everyone-available condition", func(t *testing.T) {
		if !model.EveryoneAvailable(ev, 1, 10) {
			t.Error("EveryoneAvailable(1, 10) = false, want true")
		}
		if model.EveryoneAvailable(ev, 2, 10) {
			t.Error("EveryoneAvailable(2, 10) = true, want false")
		}
	})

	t.Run("filters to markers only", func(t *testing.T) {
		got := model.AvailableParticipants(ev, 2, 10)
		if len(got) != 1 || got[0].ID != "p-chloe" {
			t.Fatalf("available = %v, want only p-chloe", got)
		}
	})

	t.Run("empty slot", func(t *testing.T) {
		if got := model.AvailableParticipants(ev, 6, 23); len(got) != 0 {
			t.Fatalf("available = %v, want none", got)
		}
	})
}

func TestAvailableParticipantsIgnoresOrphans(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	model, events, durable := newFixture(t)

	blob := `{
		"id": "ev-orphan",
		"name": "Offsite",
		"adminCode": "AA11AA",
		"adminParticipantId": "p-admin",
		"participants": [{"id": "p-admin", "name": "Ada"}],
		"schedules": {"p-ghost": ["1:10"], "p-admin": ["1:10"]}
	}`
	if err := durable.Set(ctx, storage.EventKey("ev-orphan"), blob); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	ev, err := events.Load(ctx, "ev-orphan")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	got := model.AvailableParticipants(ev, 1, 10)
	if len(got) != 1 || got[0].ID != "p-admin" {
		t.Fatalf("available = %v, want only the roster member", got)
	}
	if len(ev.Schedules["p-ghost"]) != 1 {
		t.Fatal("orphaned set was not retained in memory")
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	model, events, _ := newFixture(t)
	ev := createEvent(t, events)
	adminID := ev.AdminParticipantID

	for hour := 9; hour < 12; hour++ {
		if _, err := model.Toggle(ctx, ev, adminID, 0, hour); err != nil {
			t.Fatalf("Toggle returned error: %v", err)
		}
	}
	if got := model.SlotCount(ev, adminID); got != 3 {
		t.Fatalf("SlotCount = %d, want 3", got)
	}

	if err := model.Clear(ctx, ev, adminID); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if got := model.SlotCount(ev, adminID); got != 0 {
		t.Fatalf("SlotCount after Clear = %d, want 0", got)
	}
	if !ev.HasParticipant(adminID) {
		t.Fatal("Clear removed the participant record")
	}

	loaded, err := events.Load(ctx, ev.ID)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := model.SlotCount(loaded, adminID); got != 0 {
		t.Fatalf("persisted SlotCount after Clear = %d, want 0", got)
	}
}
