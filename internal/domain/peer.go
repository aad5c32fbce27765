package domain

// Peer is the read-only identity of a room member as exposed on the wire.
type Peer struct {
	ID       ParticipantID `json:"id"`
	Username string        `json:"username,omitempty"`
}

// ClampUsername trims a client-supplied display name to the allowed length
// in runes, so a multibyte name is never cut mid-sequence.
func ClampUsername(name string) string {
	if len(name) <= MaxUsernameLen {
		return name
	}
	runes := []rune(name)
	if len(runes) <= MaxUsernameLen {
		return name
	}
	return string(runes[:MaxUsernameLen])
}
