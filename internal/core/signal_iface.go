package core

// Frame is a raw signaling payload.
type Frame []byte

// SignalConnection is the outbound half of one client's signaling transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
