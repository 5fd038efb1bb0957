// Package identifier produces the opaque ids and the short admin code used
// to partition and gate planner state.
package identifier

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// adminCodeAlphabet is deliberately uppercase-only so the code survives being
// read aloud or retyped; comparison stays byte-exact.
const adminCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// AdminCodeLength is the number of characters in a generated admin code.
const AdminCodeLength = 6

// NewID returns a unique opaque identifier for events and participants.
func NewID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return id.String()
}

// NewAdminCode returns a short human-typable shared code. It is a convenience
// gate, not a security boundary.
func NewAdminCode() string {
	buf := make([]byte, AdminCodeLength)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		// Degrade to a time-derived code rather than failing event creation.
		seed := time.Now().UnixNano()
		for i := range buf {
			buf[i] = byte(seed >> (uint(i) * 8))
		}
	}
	code := make([]byte, AdminCodeLength)
	for i, b := range buf {
		code[i] = adminCodeAlphabet[int(b)%len(adminCodeAlphabet)]
	}
	return string(code)
}
