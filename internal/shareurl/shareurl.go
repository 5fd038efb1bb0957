// Package shareurl translates between share links and the event selection
// they encode. A link names an event by id and may force a fresh guest
// identity for the visiting tab.
package shareurl

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	eventParam = "event"
	guestParam = "guest"
)

// Link is the event selection carried by a page address.
type Link struct {
	// EventID is the explicitly requested event, empty when the address
	// names none.
	EventID string
	// ForceGuest requests a fresh tab-scoped guest identity even when the
	// client holds a durable identity for the event.
	ForceGuest bool
}

// Parse extracts the event selection from a raw address. An unparsable
// address is treated as carrying no selection; it is never an error surfaced
// to the visitor.
func Parse(raw string) Link {
	if strings.TrimSpace(raw) == "" {
		return Link{}
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return Link{}
	}
	query := parsed.Query()

	link := Link{EventID: strings.TrimSpace(query.Get(eventParam))}
	if values, ok := query[guestParam]; ok {
		link.ForceGuest = isTruthy(values)
	}
	return link
}

// isTruthy reports whether a guest flag value requests forcing. A bare
// "?guest" (present with an empty value) counts as a request.
func isTruthy(values []string) bool {
	if len(values) == 0 {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(values[0])) {
	case "", "1", "true", "yes", "guest":
		return true
	}
	return false
}

// Canonical rewrites base so its query names exactly the given event,
// dropping any guest flag. When base is empty or unparsable a minimal
// relative address is produced.
func Canonical(base, eventID string) string {
	parsed, err := url.Parse(base)
	if err != nil || base == "" {
		return fmt.Sprintf("?%s=%s", eventParam, url.QueryEscape(eventID))
	}
	query := parsed.Query()
	query.Set(eventParam, eventID)
	query.Del(guestParam)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// GuestLink returns the canonical address for eventID with the guest flag
// set, suitable for sharing with new participants.
func GuestLink(base, eventID string) string {
	canonical := Canonical(base, eventID)
	parsed, err := url.Parse(canonical)
	if err != nil {
		return canonical
	}
	query := parsed.Query()
	query.Set(guestParam, "1")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
