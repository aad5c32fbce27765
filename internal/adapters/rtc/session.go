package rtc

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/Vivek-4321/Socket-Server/internal/core"
)

var errForeignTrack = errors.New("rtc: track does not originate from this engine")

// Session wraps one pion PeerConnection behind core.MediaSession.
//
// Remote candidates that arrive before the remote description is applied are
// buffered and flushed afterwards; pion rejects them otherwise, and consumer
// sessions receive their answer well after the client starts trickling.
type Session struct {
	id string
	pc *webrtc.PeerConnection

	mu         sync.Mutex
	streams    map[string]*RemoteStream
	candidates []webrtc.ICECandidateInit
	onTrack    func(core.MediaStream)

	closeOnce sync.Once
}

func newSession(pc *webrtc.PeerConnection) *Session {
	s := &Session{
		id:      uuid.NewString(),
		pc:      pc,
		streams: make(map[string]*RemoteStream),
	}

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		log.Info().
			Str("module", "rtc").
			Str("session", s.id).
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("remote track arrived")

		rt := newRemoteTrack(track)

		s.mu.Lock()
		stream, ok := s.streams[track.StreamID()]
		if !ok {
			stream = newRemoteStream(track.StreamID())
			s.streams[track.StreamID()] = stream
		}
		stream.add(rt)
		handler := s.onTrack
		s.mu.Unlock()

		go rt.run()

		if handler != nil {
			handler(stream)
		}
	})

	return s
}

func (s *Session) SetRemoteDescription(desc webrtc.SessionDescription) error {
	if err := s.pc.SetRemoteDescription(desc); err != nil {
		return err
	}
	s.mu.Lock()
	pending := s.candidates
	s.candidates = nil
	s.mu.Unlock()
	for _, c := range pending {
		if err := s.pc.AddICECandidate(c); err != nil {
			log.Error().Err(err).Str("module", "rtc").Str("session", s.id).Msg("flush buffered candidate")
		}
	}
	return nil
}

func (s *Session) CreateOffer() (webrtc.SessionDescription, error) {
	return s.pc.CreateOffer(nil)
}

func (s *Session) CreateAnswer() (webrtc.SessionDescription, error) {
	return s.pc.CreateAnswer(nil)
}

func (s *Session) SetLocalDescription(desc webrtc.SessionDescription) error {
	return s.pc.SetLocalDescription(desc)
}

func (s *Session) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	if s.pc.RemoteDescription() == nil {
		s.mu.Lock()
		s.candidates = append(s.candidates, candidate)
		s.mu.Unlock()
		return nil
	}
	return s.pc.AddICECandidate(candidate)
}

// AddTrack attaches a publisher's remote track to this (consumer) session:
// a local RTP track mirroring the source codec is added to the peer
// connection and registered with the source relay for forwarding.
func (s *Session) AddTrack(track core.MediaTrack) error {
	rt, ok := track.(*RemoteTrack)
	if !ok {
		return errForeignTrack
	}
	local, err := webrtc.NewTrackLocalStaticRTP(rt.src.Codec().RTPCodecCapability, rt.ID(), rt.StreamID())
	if err != nil {
		return err
	}
	if _, err := s.pc.AddTrack(local); err != nil {
		return err
	}
	rt.relay.addOutTrack(s.id, newOutTrack(local))
	return nil
}

func (s *Session) OnICECandidate(f func(webrtc.ICECandidateInit)) {
	s.pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c != nil && f != nil {
			f(c.ToJSON())
		}
	})
}

func (s *Session) OnConnectionStateChange(f func(webrtc.PeerConnectionState)) {
	s.pc.OnConnectionStateChange(f)
}

func (s *Session) OnTrack(f func(core.MediaStream)) {
	s.mu.Lock()
	s.onTrack = f
	s.mu.Unlock()
}

// Close stops every relay fed by this session and closes the peer
// connection. Repeated calls are no-ops.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		streams := make([]*RemoteStream, 0, len(s.streams))
		for _, stream := range s.streams {
			streams = append(streams, stream)
		}
		s.mu.Unlock()

		for _, stream := range streams {
			for _, track := range stream.Tracks() {
				track.Stop()
			}
		}
		if err := s.pc.Close(); err != nil {
			log.Error().Err(err).Str("module", "rtc").Str("session", s.id).Msg("peer connection close")
			return
		}
		log.Info().Str("module", "rtc").Str("session", s.id).Msg("session closed")
	})
}

// RemoteStream groups the remote tracks sharing one stream id.
type RemoteStream struct {
	id string

	mu     sync.RWMutex
	tracks []*RemoteTrack
}

func newRemoteStream(id string) *RemoteStream {
	return &RemoteStream{id: id}
}

func (s *RemoteStream) ID() string { return s.id }

func (s *RemoteStream) Tracks() []core.MediaTrack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.MediaTrack, 0, len(s.tracks))
	for _, t := range s.tracks {
		out = append(out, t)
	}
	return out
}

func (s *RemoteStream) add(t *RemoteTrack) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = append(s.tracks, t)
}
