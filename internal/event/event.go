// Package event owns the planning-session aggregate: metadata, the
// participant roster, and per-participant availability sets, together with
// the store that keeps the durable blob and memory in step.
package event

import (
	"sort"
	"strings"
	"time"
)

const (
	// DefaultEventName is substituted when an event name normalizes to empty.
	DefaultEventName = "Untitled event"
	// DefaultParticipantName is substituted when a participant name
	// normalizes to empty.
	DefaultParticipantName = "Guest"
)

// Participant is one named person within an event.
type Participant struct {
	ID   string
	Name string
}

// SlotSet is one participant's marked availability, keyed by slot key.
type SlotSet map[string]struct{}

// Event is one planning session. Instances produced by the store are always
// fully well-formed: every participant has a schedule entry, and schedule
// entries for ids no longer on the roster are retained untouched.
type Event struct {
	ID                 string
	Name               string
	AdminCode          string
	AdminParticipantID string
	// Participants preserves join order; order matters for rendering only.
	Participants []Participant
	Schedules    map[string]SlotSet
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeDisplayName trims and collapses internal whitespace, substituting
// fallback when nothing remains.
func NormalizeDisplayName(name, fallback string) string {
	normalized := strings.Join(strings.Fields(name), " ")
	if normalized == "" {
		return fallback
	}
	return normalized
}

// Participant returns the roster entry for id.
func (e *Event) Participant(id string) (Participant, bool) {
	for _, p := range e.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// HasParticipant reports whether id is on the roster.
func (e *Event) HasParticipant(id string) bool {
	_, ok := e.Participant(id)
	return ok
}

// AddParticipant appends a participant to the roster and materializes their
// empty schedule entry.
func (e *Event) AddParticipant(p Participant) {
	p.Name = NormalizeDisplayName(p.Name, DefaultParticipantName)
	e.Participants = append(e.Participants, p)
	if e.Schedules == nil {
		e.Schedules = make(map[string]SlotSet)
	}
	if _, ok := e.Schedules[p.ID]; !ok {
		e.Schedules[p.ID] = make(SlotSet)
	}
}

// Schedule returns the slot set for id, materializing an empty one for
// roster members on first access. Non-members get a detached empty set.
func (e *Event) Schedule(id string) SlotSet {
	if set, ok := e.Schedules[id]; ok {
		return set
	}
	set := make(SlotSet)
	if e.HasParticipant(id) {
		if e.Schedules == nil {
			e.Schedules = make(map[string]SlotSet)
		}
		e.Schedules[id] = set
	}
	return set
}

// SortedSlots returns the slot keys of set in stable lexical order.
func (set SlotSet) SortedSlots() []string {
	slots := make([]string, 0, len(set))
	for slot := range set {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots
}
