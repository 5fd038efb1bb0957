package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/group-planner/internal/logging"
	"github.com/example/group-planner/internal/storage"
)

// ErrNotFound is returned when no usable blob exists for the requested event.
var ErrNotFound = errors.New("event: not found")

// Store loads, creates, and saves event aggregates against durable storage.
type Store struct {
	durable      storage.KeyValue
	newID        func() string
	newAdminCode func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewStore constructs a Store with the provided dependencies.
func NewStore(durable storage.KeyValue, newID, newAdminCode func() string, now func() time.Time) *Store {
	return NewStoreWithLogger(durable, newID, newAdminCode, now, nil)
}

// NewStoreWithLogger constructs a Store with a specified logger.
func NewStoreWithLogger(durable storage.KeyValue, newID, newAdminCode func() string, now func() time.Time, logger *slog.Logger) *Store {
	if newID == nil {
		newID = func() string { return "" }
	}
	if newAdminCode == nil {
		newAdminCode = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		durable:      durable,
		newID:        newID,
		newAdminCode: newAdminCode,
		now:          now,
		logger:       logger,
	}
}

func (s *Store) loggerWith(ctx context.Context, attrs ...any) *slog.Logger {
	return logging.ComponentLogger(ctx, s.logger, "event-store", attrs...)
}

// rawEvent mirrors the persisted blob layout. Any field may be missing or
// malformed in storage; normalization is the single place that repairs it.
type rawEvent struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	AdminCode          string              `json:"adminCode"`
	AdminParticipantID string              `json:"adminParticipantId"`
	Participants       []rawParticipant    `json:"participants"`
	Schedules          map[string][]string `json:"schedules"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

type rawParticipant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// normalize rebuilds a well-formed aggregate from whatever shape was stored.
// Every roster member ends up with a slot set; stored sets whose owner is no
// longer on the roster are carried along so data is never silently dropped.
func normalize(raw rawEvent) *Event {
	ev := &Event{
		ID:                 raw.ID,
		Name:               NormalizeDisplayName(raw.Name, DefaultEventName),
		AdminCode:          raw.AdminCode,
		AdminParticipantID: raw.AdminParticipantID,
		Schedules:          make(map[string]SlotSet),
		CreatedAt:          raw.CreatedAt,
		UpdatedAt:          raw.UpdatedAt,
	}
	for _, p := range raw.Participants {
		if p.ID == "" || ev.HasParticipant(p.ID) {
			continue
		}
		ev.Participants = append(ev.Participants, Participant{
			ID:   p.ID,
			Name: NormalizeDisplayName(p.Name, DefaultParticipantName),
		})
		ev.Schedules[p.ID] = make(SlotSet)
	}
	for id, slots := range raw.Schedules {
		if id == "" {
			continue
		}
		set, ok := ev.Schedules[id]
		if !ok {
			set = make(SlotSet)
			ev.Schedules[id] = set
		}
		for _, slot := range slots {
			if slot != "" {
				set[slot] = struct{}{}
			}
		}
	}
	return ev
}

// Create builds and immediately persists a new event whose sole participant
// is the admin.
func (s *Store) Create(ctx context.Context, eventName, adminName string) (*Event, error) {
	now := s.now().UTC()
	ev := &Event{
		ID:                 s.newID(),
		Name:               NormalizeDisplayName(eventName, DefaultEventName),
		AdminCode:          s.newAdminCode(),
		AdminParticipantID: s.newID(),
		Schedules:          make(map[string]SlotSet),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	ev.AddParticipant(Participant{ID: ev.AdminParticipantID, Name: adminName})

	if err := s.Save(ctx, ev); err != nil {
		return nil, err
	}
	s.loggerWith(ctx, "event_id", ev.ID).InfoContext(ctx, "event created",
		"event_name", ev.Name, "admin_participant_id", ev.AdminParticipantID)
	return ev, nil
}

// Load reads and normalizes the blob for id. A missing or unparsable blob is
// reported as ErrNotFound; storage failures are wrapped and returned.
func (s *Store) Load(ctx context.Context, id string) (*Event, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	blob, err := s.durable.Get(ctx, storage.EventKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load event %q: %w", id, err)
	}

	var raw rawEvent
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		s.loggerWith(ctx, "event_id", id).WarnContext(ctx, "discarding unparsable event blob", "error", err)
		return nil, ErrNotFound
	}
	if raw.ID == "" {
		raw.ID = id
	}
	return normalize(raw), nil
}

// Save serializes the aggregate and fully overwrites the stored blob. Slot
// sets are written in sorted order for stable output.
func (s *Store) Save(ctx context.Context, ev *Event) error {
	if ev == nil || ev.ID == "" {
		return fmt.Errorf("event: cannot save event without id")
	}
	ev.UpdatedAt = s.now().UTC()

	raw := rawEvent{
		ID:                 ev.ID,
		Name:               ev.Name,
		AdminCode:          ev.AdminCode,
		AdminParticipantID: ev.AdminParticipantID,
		Participants:       make([]rawParticipant, 0, len(ev.Participants)),
		Schedules:          make(map[string][]string, len(ev.Schedules)),
		CreatedAt:          ev.CreatedAt,
		UpdatedAt:          ev.UpdatedAt,
	}
	for _, p := range ev.Participants {
		raw.Participants = append(raw.Participants, rawParticipant{ID: p.ID, Name: p.Name})
	}
	for id, set := range ev.Schedules {
		raw.Schedules[id] = set.SortedSlots()
	}

	blob, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode event %q: %w", ev.ID, err)
	}
	if err := s.durable.Set(ctx, storage.EventKey(ev.ID), string(blob)); err != nil {
		return fmt.Errorf("failed to persist event %q: %w", ev.ID, err)
	}
	return nil
}
