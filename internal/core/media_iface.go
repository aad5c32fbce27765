package core

import "github.com/pion/webrtc/v4"

// Engine creates media sessions. The ICE relay endpoints are captured at
// engine construction and passed through to every session unmodified.
type Engine interface {
	NewSession() (MediaSession, error)
}

// MediaSession is one engine-managed offer/answer connection between the
// server and one client, for one direction of one media flow. Close must be
// safe to call more than once.
type MediaSession interface {
	SetRemoteDescription(webrtc.SessionDescription) error
	CreateOffer() (webrtc.SessionDescription, error)
	CreateAnswer() (webrtc.SessionDescription, error)
	SetLocalDescription(webrtc.SessionDescription) error
	// AddICECandidate applies a remote ICE candidate.
	AddICECandidate(webrtc.ICECandidateInit) error
	// AddTrack attaches one of a publisher's tracks to an outbound session.
	AddTrack(MediaTrack) error
	Close()

	// OnICECandidate sets a callback for newly gathered local ICE candidates.
	OnICECandidate(func(webrtc.ICECandidateInit))
	OnConnectionStateChange(func(webrtc.PeerConnectionState))
	// OnTrack sets a callback invoked for every arriving remote track; the
	// stream groups the tracks received so far.
	OnTrack(func(MediaStream))
}

// MediaStream groups the remote tracks of one publisher.
type MediaStream interface {
	ID() string
	// Tracks returns a snapshot of the tracks received so far.
	Tracks() []MediaTrack
}

// MediaTrack is a single remote media track owned by its publisher session.
type MediaTrack interface {
	ID() string
	Kind() string
	StreamID() string
	// Stop releases the track and detaches all forwarding.
	Stop()
}
