package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"

	"github.com/Vivek-4321/Socket-Server/internal/core"
)

// fakeSignal captures everything a participant emits.
type fakeSignal struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
	err    error
}

func (f *fakeSignal) TrySend(frame core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeSignal) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// events decodes the captured frames into envelopes.
func (f *fakeSignal) events(t *testing.T) []Envelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Envelope, 0, len(f.frames))
	for _, frame := range f.frames {
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		out = append(out, env)
	}
	return out
}

// byEvent returns the decoded data payloads of every envelope with the given
// event name.
func (f *fakeSignal) byEvent(t *testing.T, event string) []json.RawMessage {
	t.Helper()
	var out []json.RawMessage
	for _, env := range f.events(t) {
		if env.Event == event {
			out = append(out, env.Data)
		}
	}
	return out
}

type fakeTrack struct {
	id       string
	kind     string
	streamID string

	mu      sync.Mutex
	stopped bool
}

func (f *fakeTrack) ID() string       { return f.id }
func (f *fakeTrack) Kind() string     { return f.kind }
func (f *fakeTrack) StreamID() string { return f.streamID }

func (f *fakeTrack) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTrack) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type fakeStream struct {
	id     string
	tracks []core.MediaTrack
}

func (f *fakeStream) ID() string                { return f.id }
func (f *fakeStream) Tracks() []core.MediaTrack { return append([]core.MediaTrack(nil), f.tracks...) }

func newFakeStream(id string, tracks ...*fakeTrack) *fakeStream {
	s := &fakeStream{id: id}
	for _, tr := range tracks {
		s.tracks = append(s.tracks, tr)
	}
	return s
}

// fakeSession records every call and lets tests inject failures per step.
type fakeSession struct {
	mu sync.Mutex

	remote *webrtc.SessionDescription
	local  *webrtc.SessionDescription

	candidates []webrtc.ICECandidateInit
	added      []core.MediaTrack
	closes     int

	onICE   func(webrtc.ICECandidateInit)
	onState func(webrtc.PeerConnectionState)
	onTrack func(core.MediaStream)

	remoteErr   error
	offerErr    error
	answerErr   error
	localErr    error
	addTrackErr error
}

func (f *fakeSession) SetRemoteDescription(desc webrtc.SessionDescription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.remoteErr != nil {
		return f.remoteErr
	}
	f.remote = &desc
	return nil
}

func (f *fakeSession) CreateOffer() (webrtc.SessionDescription, error) {
	if f.offerErr != nil {
		return webrtc.SessionDescription{}, f.offerErr
	}
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0 fake offer"}, nil
}

func (f *fakeSession) CreateAnswer() (webrtc.SessionDescription, error) {
	if f.answerErr != nil {
		return webrtc.SessionDescription{}, f.answerErr
	}
	return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0 fake answer"}, nil
}

func (f *fakeSession) SetLocalDescription(desc webrtc.SessionDescription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.localErr != nil {
		return f.localErr
	}
	f.local = &desc
	return nil
}

func (f *fakeSession) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candidates = append(f.candidates, candidate)
	return nil
}

func (f *fakeSession) AddTrack(track core.MediaTrack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addTrackErr != nil {
		return f.addTrackErr
	}
	f.added = append(f.added, track)
	return nil
}

func (f *fakeSession) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
}

func (f *fakeSession) OnICECandidate(fn func(webrtc.ICECandidateInit)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onICE = fn
}

func (f *fakeSession) OnConnectionStateChange(fn func(webrtc.PeerConnectionState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onState = fn
}

func (f *fakeSession) OnTrack(fn func(core.MediaStream)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onTrack = fn
}

// fireTrack delivers a remote stream as the engine would.
func (f *fakeSession) fireTrack(stream core.MediaStream) {
	f.mu.Lock()
	fn := f.onTrack
	f.mu.Unlock()
	if fn != nil {
		fn(stream)
	}
}

// fireICE delivers a locally gathered candidate.
func (f *fakeSession) fireICE(ci webrtc.ICECandidateInit) {
	f.mu.Lock()
	fn := f.onICE
	f.mu.Unlock()
	if fn != nil {
		fn(ci)
	}
}

func (f *fakeSession) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

var errEngineDown = errors.New("engine down")

// fakeEngine hands out fakeSessions in order; prepared sessions (with
// injected failures) are consumed first, then fresh ones are minted.
type fakeEngine struct {
	mu       sync.Mutex
	prepared []*fakeSession
	sessions []*fakeSession
	err      error
}

func (f *fakeEngine) NewSession() (core.MediaSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var s *fakeSession
	if len(f.prepared) > 0 {
		s = f.prepared[0]
		f.prepared = f.prepared[1:]
	} else {
		s = &fakeSession{}
	}
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (f *fakeEngine) session(t *testing.T, i int) *fakeSession {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Greater(t, len(f.sessions), i, "engine session %d not created", i)
	return f.sessions[i]
}

func (f *fakeEngine) sessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}
