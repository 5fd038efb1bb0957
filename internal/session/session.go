// Package session answers "who is this visitor, and do they hold admin
// capability" for one run against one event, and owns the admin
// unlock/logout transitions.
package session

import (
	"errors"

	"github.com/example/group-planner/internal/event"
)

var (
	// ErrInvalidAdminCode is returned when a submitted code does not match
	// the event's stored code exactly.
	ErrInvalidAdminCode = errors.New("session: invalid admin code")
	// ErrNotAdmin is returned when a non-admin participant attempts an
	// admin unlock.
	ErrNotAdmin = errors.New("session: not the admin participant")
)

// UserPrompter is the injected presentation capability the core uses for
// synchronous user input. The real implementation talks to the terminal; a
// scripted one drives tests.
type UserPrompter interface {
	// PromptName asks for a display name and returns fallback when the
	// visitor declines or submits nothing usable.
	PromptName(message, fallback string) string
	// Confirm asks a yes/no question before destructive actions.
	Confirm(message string) bool
	// Notify surfaces a one-time informational message.
	Notify(message string)
}

// Session is the resolved per-run context: the active event, the visitor's
// participant identity, and whether admin capability is unlocked. It is
// constructed once by the Resolver and passed to whoever needs it.
type Session struct {
	Event         *event.Event
	CurrentUserID string
	AdminUnlocked bool
	// Created reports that the event was created during this resolution
	// (first visit on this client with no usable prior state).
	Created bool
	// ForcedGuest reports that the guest-forcing URL flag shaped this
	// resolution; admin capability stays locked for such runs.
	ForcedGuest bool
}

// CurrentParticipant returns the roster entry for the resolved identity.
func (s *Session) CurrentParticipant() (event.Participant, bool) {
	if s == nil || s.Event == nil {
		return event.Participant{}, false
	}
	return s.Event.Participant(s.CurrentUserID)
}

// IsAdminParticipant reports whether the resolved identity is the event's
// admin participant, unlocked or not.
func (s *Session) IsAdminParticipant() bool {
	return s != nil && s.Event != nil && s.CurrentUserID == s.Event.AdminParticipantID
}

// CanClear reports whether the resolved identity may clear the given
// participant's schedule: anyone may clear their own, unlocked admins may
// clear anyone's.
func (s *Session) CanClear(participantID string) bool {
	if s == nil {
		return false
	}
	return s.AdminUnlocked || (participantID != "" && participantID == s.CurrentUserID)
}
