// Package domain contains entity without logic, just meta-data
package domain

import "github.com/google/uuid"

const MaxUsernameLen = 36

type (
	// RoomID is a client-supplied opaque room identifier.
	RoomID string
	// ParticipantID identifies one joined connection, unique per websocket.
	ParticipantID string
)

// NewParticipantID mints a transport-scoped participant identifier.
func NewParticipantID() ParticipantID {
	return ParticipantID(uuid.NewString())
}
