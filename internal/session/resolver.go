package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/group-planner/internal/event"
	"github.com/example/group-planner/internal/logging"
	"github.com/example/group-planner/internal/shareurl"
	"github.com/example/group-planner/internal/storage"
)

// Resolver deterministically resolves the visiting client to an event and a
// participant identity, honoring the guest-forcing flag and the stored
// identity/admin pointers.
type Resolver struct {
	events    *event.Store
	durable   storage.KeyValue
	ephemeral storage.KeyValue
	ui        UserPrompter
	newID     func() string
	logger    *slog.Logger
}

// NewResolver constructs a Resolver with the provided dependencies. The
// durable store carries cross-run pointers; the ephemeral store carries the
// tab-scoped guest pointer and must not outlive the run.
func NewResolver(events *event.Store, durable, ephemeral storage.KeyValue, ui UserPrompter, newID func() string) *Resolver {
	return NewResolverWithLogger(events, durable, ephemeral, ui, newID, nil)
}

// NewResolverWithLogger constructs a Resolver with a specified logger.
func NewResolverWithLogger(events *event.Store, durable, ephemeral storage.KeyValue, ui UserPrompter, newID func() string, logger *slog.Logger) *Resolver {
	if newID == nil {
		newID = func() string { return "" }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		events:    events,
		durable:   durable,
		ephemeral: ephemeral,
		ui:        ui,
		newID:     newID,
		logger:    logger,
	}
}

func (r *Resolver) loggerWith(ctx context.Context, attrs ...any) *slog.Logger {
	return logging.ComponentLogger(ctx, r.logger, "session-resolver", attrs...)
}

// Resolve runs the full resolution state machine for one page load: event
// selection, identity resolution, then admin-capability resolution. No
// storage failure is fatal; unreadable state degrades to the create-event or
// create-participant path.
func (r *Resolver) Resolve(ctx context.Context, link shareurl.Link) (sess *Session, err error) {
	logger := r.loggerWith(ctx, "requested_event_id", link.EventID, "force_guest", link.ForceGuest)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "session resolution failed", "error", err)
			return
		}
		logger.With(
			"event_id", sess.Event.ID,
			"participant_id", sess.CurrentUserID,
			"admin_unlocked", sess.AdminUnlocked,
			"created", sess.Created,
		).InfoContext(ctx, "session resolved")
	}()

	ev, created, err := r.selectEvent(ctx, link)
	if err != nil {
		return nil, err
	}

	sess = &Session{Event: ev, Created: created, ForcedGuest: link.ForceGuest && !created}

	if created {
		sess.CurrentUserID = ev.AdminParticipantID
		sess.AdminUnlocked = true
		return sess, nil
	}

	if err := r.resolveIdentity(ctx, sess); err != nil {
		return nil, err
	}
	r.resolveAdmin(ctx, sess)
	return sess, nil
}

// selectEvent loads the explicitly requested event, falls back to the
// client's last-used event, and finally creates a fresh one. Creation also
// seeds the identity and admin pointers for the new admin.
func (r *Resolver) selectEvent(ctx context.Context, link shareurl.Link) (*event.Event, bool, error) {
	logger := r.loggerWith(ctx)

	if link.EventID != "" {
		ev, err := r.events.Load(ctx, link.EventID)
		if err == nil {
			return ev, false, nil
		}
		if errors.Is(err, event.ErrNotFound) {
			r.ui.Notify("The linked event was not found on this device; your most recent event is shown instead.")
		} else {
			logger.WarnContext(ctx, "failed to load linked event, falling back", "error", err)
		}
	}

	if lastID, err := r.durable.Get(ctx, storage.CurrentEventKey); err == nil && lastID != "" {
		ev, err := r.events.Load(ctx, lastID)
		if err == nil {
			r.touchCurrentEvent(ctx, ev.ID)
			return ev, false, nil
		}
		if !errors.Is(err, event.ErrNotFound) {
			logger.WarnContext(ctx, "failed to load last-used event, creating a new one", "error", err)
		}
	}

	eventName := r.ui.PromptName("Name this event", event.DefaultEventName)
	adminName := r.ui.PromptName("Your display name", event.DefaultParticipantName)
	ev, err := r.events.Create(ctx, eventName, adminName)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create event: %w", err)
	}

	if err := r.durable.Set(ctx, storage.UserKey(ev.ID), ev.AdminParticipantID); err != nil {
		logger.WarnContext(ctx, "failed to record identity pointer", "error", err)
	}
	if err := r.durable.Set(ctx, storage.AdminSessionKey(ev.ID), ev.AdminParticipantID); err != nil {
		logger.WarnContext(ctx, "failed to record admin pointer", "error", err)
	}
	r.touchCurrentEvent(ctx, ev.ID)
	return ev, true, nil
}

// resolveIdentity determines the visitor's participant id for an existing
// event, creating and persisting a new participant when no stored identity
// applies.
func (r *Resolver) resolveIdentity(ctx context.Context, sess *Session) error {
	ev := sess.Event
	r.touchCurrentEvent(ctx, ev.ID)

	durableID := r.readPointer(ctx, r.durable, storage.UserKey(ev.ID))
	// Guest-forcing bypasses the durable identity only when it is the
	// admin's own; returning guests keep their durable identity even on a
	// guest-flagged link.
	adminShadowed := sess.ForcedGuest && durableID != "" && durableID == ev.AdminParticipantID

	if sess.ForcedGuest {
		if guestID := r.readPointer(ctx, r.ephemeral, storage.GuestSessionKey(ev.ID)); guestID != "" && ev.HasParticipant(guestID) {
			sess.CurrentUserID = guestID
			return nil
		}
	}

	if !adminShadowed && durableID != "" && ev.HasParticipant(durableID) {
		sess.CurrentUserID = durableID
		if sess.ForcedGuest {
			r.writePointer(ctx, r.ephemeral, storage.GuestSessionKey(ev.ID), durableID)
		}
		return nil
	}

	name := r.ui.PromptName("Your display name", event.DefaultParticipantName)
	participant := event.Participant{ID: r.newID(), Name: name}
	ev.AddParticipant(participant)
	if err := r.events.Save(ctx, ev); err != nil {
		return fmt.Errorf("failed to persist new participant: %w", err)
	}

	if adminShadowed {
		r.writePointer(ctx, r.ephemeral, storage.GuestSessionKey(ev.ID), participant.ID)
	} else {
		r.writePointer(ctx, r.durable, storage.UserKey(ev.ID), participant.ID)
		if sess.ForcedGuest {
			r.writePointer(ctx, r.ephemeral, storage.GuestSessionKey(ev.ID), participant.ID)
		}
	}

	sess.CurrentUserID = participant.ID
	return nil
}

// resolveAdmin computes the admin-unlocked state. Forced-guest runs are
// always locked regardless of the stored pointer.
func (r *Resolver) resolveAdmin(ctx context.Context, sess *Session) {
	if sess.ForcedGuest {
		sess.AdminUnlocked = false
		return
	}
	pointer := r.readPointer(ctx, r.durable, storage.AdminSessionKey(sess.Event.ID))
	sess.AdminUnlocked = pointer != "" &&
		pointer == sess.CurrentUserID &&
		sess.CurrentUserID == sess.Event.AdminParticipantID
}

// UnlockAdmin grants admin capability for this client when the submitted
// code matches the event's code exactly. The grant persists until Logout.
func (r *Resolver) UnlockAdmin(ctx context.Context, sess *Session, code string) error {
	if sess == nil || sess.Event == nil {
		return fmt.Errorf("session: no event resolved")
	}
	logger := r.loggerWith(ctx, "event_id", sess.Event.ID, "participant_id", sess.CurrentUserID)

	if sess.ForcedGuest || !sess.IsAdminParticipant() {
		logger.WarnContext(ctx, "admin unlock refused", "error_kind", "not_admin")
		return ErrNotAdmin
	}
	if code != sess.Event.AdminCode {
		logger.WarnContext(ctx, "admin unlock refused", "error_kind", "invalid_code")
		return ErrInvalidAdminCode
	}

	if err := r.durable.Set(ctx, storage.AdminSessionKey(sess.Event.ID), sess.CurrentUserID); err != nil {
		return fmt.Errorf("failed to record admin unlock: %w", err)
	}
	sess.AdminUnlocked = true
	logger.InfoContext(ctx, "admin capability unlocked")
	return nil
}

// Logout revokes this client's admin capability for the session's event.
func (r *Resolver) Logout(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Event == nil {
		return fmt.Errorf("session: no event resolved")
	}
	if err := r.durable.Remove(ctx, storage.AdminSessionKey(sess.Event.ID)); err != nil {
		return fmt.Errorf("failed to clear admin pointer: %w", err)
	}
	sess.AdminUnlocked = false
	r.loggerWith(ctx, "event_id", sess.Event.ID).InfoContext(ctx, "admin capability locked")
	return nil
}

// readPointer reads a stored pointer, treating every failure as absence.
func (r *Resolver) readPointer(ctx context.Context, store storage.KeyValue, key string) string {
	value, err := store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.loggerWith(ctx).WarnContext(ctx, "treating unreadable pointer as absent", "key", key, "error", err)
		}
		return ""
	}
	return value
}

// writePointer records a pointer, logging rather than failing on error; a
// lost pointer only costs a re-prompt on the next run.
func (r *Resolver) writePointer(ctx context.Context, store storage.KeyValue, key, value string) {
	if err := store.Set(ctx, key, value); err != nil {
		r.loggerWith(ctx).WarnContext(ctx, "failed to record pointer", "key", key, "error", err)
	}
}

func (r *Resolver) touchCurrentEvent(ctx context.Context, eventID string) {
	r.writePointer(ctx, r.durable, storage.CurrentEventKey, eventID)
}
