package rtc

import (
	"context"
	"maps"
	"sync"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RemoteTrack is one publisher track plus the relay fanning its RTP out to
// consumer sessions. It implements core.MediaTrack.
type RemoteTrack struct {
	src    *webrtc.TrackRemote
	relay  *relay
	cancel context.CancelFunc
	ctx    context.Context
}

func newRemoteTrack(src *webrtc.TrackRemote) *RemoteTrack {
	ctx, cancel := context.WithCancel(context.Background())
	return &RemoteTrack{
		src:    src,
		relay:  newRelay(src),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (t *RemoteTrack) ID() string       { return t.src.ID() }
func (t *RemoteTrack) Kind() string     { return t.src.Kind().String() }
func (t *RemoteTrack) StreamID() string { return t.src.StreamID() }

// Stop ends the relay loop; pending out-tracks are marked for delete.
func (t *RemoteTrack) Stop() { t.cancel() }

func (t *RemoteTrack) run() {
	logger := log.With().
		Str("module", "rtc.relay").
		Str("track_id", t.src.ID()).
		Str("kind", t.src.Kind().String()).
		Logger()
	t.relay.loop(t.ctx, &logger)
}

// relay reads RTP packets from one source track and forwards them to all
// registered out-tracks.
type relay struct {
	src *webrtc.TrackRemote

	mu   sync.RWMutex
	outs map[string]*outTrack
}

func newRelay(src *webrtc.TrackRemote) *relay {
	return &relay{
		src:  src,
		outs: make(map[string]*outTrack),
	}
}

func (r *relay) addOutTrack(sessionID string, ot *outTrack) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outs[sessionID] = ot
}

func (r *relay) loop(ctx context.Context, logger *zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("relay done, marking all out tracks for delete")
			r.markAllDelete()
			return
		default:
		}
		pkt, _, err := r.src.ReadRTP()
		if err != nil {
			logger.Info().Err(err).Msg("relay source ended")
			r.markAllDelete()
			return
		}
		r.forward(pkt, logger)
	}
}

func (r *relay) forward(pkt *rtp.Packet, logger *zerolog.Logger) {
	snapshot := make(map[string]*outTrack, len(r.outs))
	r.mu.RLock()
	maps.Copy(snapshot, r.outs)
	r.mu.RUnlock()

	dirty := make([]string, 0, len(snapshot))
	for sessionID, ot := range snapshot {
		switch ot.state() {
		case trackStateDelete:
			dirty = append(dirty, sessionID)
		case trackStateOk:
			if err := ot.track.WriteRTP(pkt); err != nil {
				logger.Error().Err(err).Str("session", sessionID).Msg("relay write, dropping out track")
				ot.markDelete()
				dirty = append(dirty, sessionID)
			}
		}
	}

	// Reap outside the read lock.
	if len(dirty) > 0 {
		r.mu.Lock()
		for _, sessionID := range dirty {
			delete(r.outs, sessionID)
		}
		r.mu.Unlock()
	}
}

func (r *relay) markAllDelete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ot := range r.outs {
		ot.markDelete()
	}
}
