// Package availability provides the query and mutation surface over
// participant slot sets: membership tests, toggling, aggregate overlap, and
// schedule clearing. Every mutation persists the owning event immediately;
// at this data scale durability wins over write amortization.
package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/example/group-planner/internal/event"
	"github.com/example/group-planner/internal/logging"
)

const (
	// Days is the number of weekday columns in the fixed weekly template.
	Days = 7
	// HoursPerDay is the number of hourly rows per day.
	HoursPerDay = 24
)

// DayNames lists the Monday-first weekday labels matching day indices 0-6.
var DayNames = [Days]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// ErrInvalidSlot is returned when a mutation names a slot outside the grid.
var ErrInvalidSlot = errors.New("availability: invalid slot")

// ValidSlot reports whether the pair addresses a cell of the weekly grid.
func ValidSlot(dayIndex, hour int) bool {
	return dayIndex >= 0 && dayIndex < Days && hour >= 0 && hour < HoursPerDay
}

// SlotKey serializes a (day, hour) pair as "<day>:<hour>".
func SlotKey(dayIndex, hour int) string {
	return strconv.Itoa(dayIndex) + ":" + strconv.Itoa(hour)
}

// ParseSlot inverts SlotKey, rejecting keys outside the grid.
func ParseSlot(key string) (dayIndex, hour int, ok bool) {
	dayPart, hourPart, found := strings.Cut(key, ":")
	if !found {
		return 0, 0, false
	}
	dayIndex, err := strconv.Atoi(dayPart)
	if err != nil {
		return 0, 0, false
	}
	hour, err = strconv.Atoi(hourPart)
	if err != nil {
		return 0, 0, false
	}
	if !ValidSlot(dayIndex, hour) {
		return 0, 0, false
	}
	return dayIndex, hour, true
}

// Model answers availability queries and applies slot mutations for one
// event aggregate, saving through the event store.
type Model struct {
	events *event.Store
	logger *slog.Logger
}

// NewModel constructs a Model saving through the given store.
func NewModel(events *event.Store) *Model {
	return NewModelWithLogger(events, nil)
}

// NewModelWithLogger constructs a Model with a specified logger.
func NewModelWithLogger(events *event.Store, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{events: events, logger: logger}
}

func (m *Model) loggerWith(ctx context.Context, attrs ...any) *slog.Logger {
	return logging.ComponentLogger(ctx, m.logger, "availability", attrs...)
}

// IsAvailable reports whether the participant marked the slot. Unknown
// participants and out-of-grid slots read as unavailable, never as errors.
func (m *Model) IsAvailable(ev *event.Event, participantID string, dayIndex, hour int) bool {
	if ev == nil || !ValidSlot(dayIndex, hour) {
		return false
	}
	set, ok := ev.Schedules[participantID]
	if !ok {
		return false
	}
	_, marked := set[SlotKey(dayIndex, hour)]
	return marked
}

// Toggle flips the participant's membership for the slot and persists the
// event. It returns the new membership state. Callers are responsible for
// passing the resolved current identity; a visitor may only toggle their own
// slots.
func (m *Model) Toggle(ctx context.Context, ev *event.Event, participantID string, dayIndex, hour int) (bool, error) {
	if ev == nil {
		return false, fmt.Errorf("availability: no event loaded")
	}
	if !ValidSlot(dayIndex, hour) {
		return false, fmt.Errorf("%w: day %d hour %d", ErrInvalidSlot, dayIndex, hour)
	}

	key := SlotKey(dayIndex, hour)
	set := ev.Schedule(participantID)
	_, marked := set[key]
	if marked {
		delete(set, key)
	} else {
		set[key] = struct{}{}
	}

	if err := m.events.Save(ctx, ev); err != nil {
		return false, err
	}
	m.loggerWith(ctx, "event_id", ev.ID).DebugContext(ctx, "slot toggled",
		"participant_id", participantID, "slot", key, "available", !marked)
	return !marked, nil
}

// AvailableParticipants returns the roster members who marked the slot,
// preserving join order. Orphaned schedule sets never contribute.
func (m *Model) AvailableParticipants(ev *event.Event, dayIndex, hour int) []event.Participant {
	if ev == nil || !ValidSlot(dayIndex, hour) {
		return nil
	}
	key := SlotKey(dayIndex, hour)
	var available []event.Participant
	for _, p := range ev.Participants {
		if set, ok := ev.Schedules[p.ID]; ok {
			if _, marked := set[key]; marked {
				available = append(available, p)
			}
		}
	}
	return available
}

// EveryoneAvailable reports whether every roster member marked the slot.
func (m *Model) EveryoneAvailable(ev *event.Event, dayIndex, hour int) bool {
	if ev == nil || len(ev.Participants) == 0 {
		return false
	}
	return len(m.AvailableParticipants(ev, dayIndex, hour)) == len(ev.Participants)
}

// SlotCount returns how many slots the participant has marked.
func (m *Model) SlotCount(ev *event.Event, participantID string) int {
	if ev == nil {
		return 0
	}
	return len(ev.Schedules[participantID])
}

// Clear replaces the participant's slot set with an empty one and persists
// the event. The participant record itself is kept.
func (m *Model) Clear(ctx context.Context, ev *event.Event, participantID string) error {
	if ev == nil {
		return fmt.Errorf("availability: no event loaded")
	}
	if ev.Schedules == nil {
		ev.Schedules = make(map[string]event.SlotSet)
	}
	ev.Schedules[participantID] = make(event.SlotSet)

	if err := m.events.Save(ctx, ev); err != nil {
		return err
	}
	m.loggerWith(ctx, "event_id", ev.ID).InfoContext(ctx, "schedule cleared",
		"participant_id", participantID)
	return nil
}
