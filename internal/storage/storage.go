// Package storage defines the key-value contract the planner persists
// through. Durable stores hold per-client state across runs; ephemeral
// stores hold per-tab state for one run only.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the requested key has no stored value.
	ErrNotFound = errors.New("storage: not found")
)

// KeyValue is the minimal surface the core needs from any store.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Keys for the per-client pointers kept outside event blobs. Event blobs use
// EventKey with the event id as partition.
const (
	CurrentEventKey = "current-event-id"

	eventKeyPrefix = "event:"
	userKeyPrefix  = "user:"
	adminKeyPrefix = "admin-session:"
	guestKeyPrefix = "guest-session:"
)

// EventKey returns the storage key holding the blob for one event.
func EventKey(eventID string) string { return eventKeyPrefix + eventID }

// UserKey returns the key holding this client's durable participant id for an event.
func UserKey(eventID string) string { return userKeyPrefix + eventID }

// AdminSessionKey returns the key holding the unlocked-admin participant id for an event.
func AdminSessionKey(eventID string) string { return adminKeyPrefix + eventID }

// GuestSessionKey returns the tab-scoped key holding a forced-guest participant id.
func GuestSessionKey(eventID string) string { return guestKeyPrefix + eventID }
