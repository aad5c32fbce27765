package app

import (
	"encoding/json"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/Vivek-4321/Socket-Server/internal/core"
	"github.com/Vivek-4321/Socket-Server/internal/domain"
)

// Participant owns the server side of one joined connection: at most one
// publisher session receiving the client's media, and one consumer session
// per remote publisher sending that publisher's media back out.
//
// All session and stream references are guarded by mu; the mutex is never
// held across an engine call, so one participant's negotiation cannot block
// another's.
type Participant struct {
	ID       domain.ParticipantID
	Username string
	RoomID   domain.RoomID

	signal core.SignalConnection
	engine core.Engine

	// onStream is invoked once, when the publisher's first track arrives.
	onStream func(*Participant)

	mu        sync.Mutex
	publisher core.MediaSession
	consumers map[domain.ParticipantID]core.MediaSession
	stream    core.MediaStream
	closed    bool
}

func NewParticipant(
	id domain.ParticipantID,
	username string,
	roomID domain.RoomID,
	signal core.SignalConnection,
	engine core.Engine,
) *Participant {
	return &Participant{
		ID:        id,
		Username:  domain.ClampUsername(username),
		RoomID:    roomID,
		signal:    signal,
		engine:    engine,
		consumers: make(map[domain.ParticipantID]core.MediaSession),
	}
}

// Peer returns the wire identity of this participant.
func (p *Participant) Peer() domain.Peer {
	return domain.Peer{ID: p.ID, Username: p.Username}
}

// Stream returns the recorded publisher stream, or nil before the first
// track has arrived.
func (p *Participant) Stream() core.MediaStream {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stream
}

func (p *Participant) HasStream() bool { return p.Stream() != nil }

// OnStream installs the fan-out hook; the orchestrator sets it before the
// participant is added to a room.
func (p *Participant) OnStream(f func(*Participant)) { p.onStream = f }

// CreatePublisher builds the inbound session for offer and emits the answer
// back to the owning client. Any failure is logged and swallowed: the client
// simply never receives an answer.
//
// A repeated offer replaces the publisher; the previous session is closed
// first so renegotiation does not leak engine resources.
func (p *Participant) CreatePublisher(offer webrtc.SessionDescription) {
	logger := log.With().Str("module", "app.participant").Str("sid", string(p.ID)).Logger()
	logger.Info().Msg("creating publisher session")

	sess, err := p.engine.NewSession()
	if err != nil {
		logger.Error().Err(err).Msg("publisher session init")
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		sess.Close()
		return
	}
	prev := p.publisher
	p.publisher = sess
	p.stream = nil
	p.mu.Unlock()
	if prev != nil {
		logger.Warn().Msg("replacing existing publisher session")
		prev.Close()
	}

	sess.OnICECandidate(func(ci webrtc.ICECandidateInit) {
		p.emit(EventICECandidate, ICECandidatePayload{
			Kind:      KindPublisher,
			Candidate: CandidateFromPion(ci),
		})
	})
	sess.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		logger.Info().Str("state", state.String()).Msg("publisher connection state")
	})
	sess.OnTrack(func(stream core.MediaStream) {
		p.mu.Lock()
		first := p.stream == nil
		if first {
			p.stream = stream
		}
		p.mu.Unlock()
		if !first {
			return
		}
		logger.Info().Str("stream_id", stream.ID()).Msg("publisher stream arrived")
		if p.onStream != nil {
			p.onStream(p)
		}
	})

	if err := sess.SetRemoteDescription(offer); err != nil {
		logger.Error().Err(err).Msg("publisher set remote description")
		return
	}
	answer, err := sess.CreateAnswer()
	if err != nil {
		logger.Error().Err(err).Msg("publisher create answer")
		return
	}
	if err := sess.SetLocalDescription(answer); err != nil {
		logger.Error().Err(err).Msg("publisher set local description")
		return
	}

	p.emit(EventSessionDescription, SessionDescriptionPayload{
		Kind: KindPublisher,
		SDP:  SDPFromPion(answer),
	})
	logger.Info().Msg("publisher answer sent")
}

// CreateConsumerForPublisher builds the outbound session carrying
// publisherID's stream to this participant and emits the offer. At most one
// consumer exists per remote publisher; a duplicate request is a no-op. The
// map slot is reserved before the engine call so the late-join catch-up path
// and the live fan-out path cannot race a duplicate into existence.
func (p *Participant) CreateConsumerForPublisher(publisherID domain.ParticipantID, stream core.MediaStream) {
	logger := log.With().
		Str("module", "app.participant").
		Str("sid", string(p.ID)).
		Str("publisher", string(publisherID)).
		Logger()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if _, ok := p.consumers[publisherID]; ok {
		p.mu.Unlock()
		logger.Debug().Msg("consumer already exists, skipping")
		return
	}
	p.consumers[publisherID] = nil // reserve the slot
	p.mu.Unlock()

	abort := func() {
		p.mu.Lock()
		delete(p.consumers, publisherID)
		p.mu.Unlock()
	}

	sess, err := p.engine.NewSession()
	if err != nil {
		logger.Error().Err(err).Msg("consumer session init")
		abort()
		return
	}
	logger.Info().Msg("creating consumer session")

	for _, track := range stream.Tracks() {
		if err := sess.AddTrack(track); err != nil {
			// Per-track failures are isolated; the rest still forward.
			logger.Error().Err(err).Str("track_id", track.ID()).Str("kind", track.Kind()).Msg("add track")
		}
	}

	sess.OnICECandidate(func(ci webrtc.ICECandidateInit) {
		p.emit(EventICECandidate, ICECandidatePayload{
			Kind:        KindConsumer,
			PublisherID: publisherID,
			Candidate:   CandidateFromPion(ci),
		})
	})
	sess.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		logger.Info().Str("state", state.String()).Msg("consumer connection state")
	})

	offer, err := sess.CreateOffer()
	if err != nil {
		logger.Error().Err(err).Msg("consumer create offer")
		sess.Close()
		abort()
		return
	}
	if err := sess.SetLocalDescription(offer); err != nil {
		logger.Error().Err(err).Msg("consumer set local description")
		sess.Close()
		abort()
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		sess.Close()
		abort()
		return
	}
	p.consumers[publisherID] = sess
	p.mu.Unlock()

	p.emit(EventSessionDescription, SessionDescriptionPayload{
		Kind:        KindConsumer,
		PublisherID: publisherID,
		SDP:         SDPFromPion(offer),
	})
	logger.Info().Msg("consumer offer sent")
}

// SetConsumerRemoteDescription applies the client's answer to the consumer
// keyed by publisherID. A late, duplicate or out-of-order answer finds no
// session and is silently dropped.
func (p *Participant) SetConsumerRemoteDescription(publisherID domain.ParticipantID, answer webrtc.SessionDescription) {
	p.mu.Lock()
	sess := p.consumers[publisherID]
	p.mu.Unlock()
	if sess == nil {
		log.Debug().Str("module", "app.participant").Str("sid", string(p.ID)).
			Str("publisher", string(publisherID)).Msg("answer for unknown consumer dropped")
		return
	}
	if err := sess.SetRemoteDescription(answer); err != nil {
		log.Error().Err(err).Str("module", "app.participant").Str("sid", string(p.ID)).
			Str("publisher", string(publisherID)).Msg("consumer set remote description")
	}
}

// AddICECandidate routes a client candidate to the publisher or the matching
// consumer session. Candidates arriving before the session exists, or after
// it is gone, are dropped without error.
func (p *Participant) AddICECandidate(kind string, publisherID domain.ParticipantID, candidate webrtc.ICECandidateInit) {
	var sess core.MediaSession
	p.mu.Lock()
	switch kind {
	case KindPublisher:
		sess = p.publisher
	case KindConsumer:
		sess = p.consumers[publisherID]
	}
	p.mu.Unlock()
	if sess == nil {
		log.Debug().Str("module", "app.participant").Str("sid", string(p.ID)).
			Str("kind", kind).Str("publisher", string(publisherID)).Msg("candidate without session dropped")
		return
	}
	if err := sess.AddICECandidate(candidate); err != nil {
		log.Error().Err(err).Str("module", "app.participant").Str("sid", string(p.ID)).
			Str("kind", kind).Msg("add ice candidate")
	}
}

// Close tears down every session and the recorded stream. Safe to call
// repeatedly; closing already-closed engine sessions is a no-op by contract.
func (p *Participant) Close() {
	p.mu.Lock()
	publisher := p.publisher
	consumers := p.consumers
	stream := p.stream
	p.publisher = nil
	p.consumers = make(map[domain.ParticipantID]core.MediaSession)
	p.stream = nil
	p.closed = true
	p.mu.Unlock()

	if publisher != nil {
		publisher.Close()
	}
	for _, sess := range consumers {
		if sess != nil {
			sess.Close()
		}
	}
	if stream != nil {
		for _, track := range stream.Tracks() {
			track.Stop()
		}
	}
	log.Info().Str("module", "app.participant").Str("sid", string(p.ID)).Msg("participant closed")
}

// ConsumerCount reports live consumer sessions, reservations excluded.
func (p *Participant) ConsumerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, sess := range p.consumers {
		if sess != nil {
			n++
		}
	}
	return n
}

// emit marshals an envelope and hands it to the signaling transport. Send
// failures degrade to a dropped message, never an error to the caller.
func (p *Participant) emit(event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("module", "app.participant").Str("event", event).Msg("emit marshal")
		return
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		log.Error().Err(err).Str("module", "app.participant").Str("event", event).Msg("emit marshal")
		return
	}
	if err := p.signal.TrySend(frame); err != nil {
		log.Debug().Err(err).Str("module", "app.participant").Str("sid", string(p.ID)).
			Str("event", event).Msg("emit dropped")
	}
}
