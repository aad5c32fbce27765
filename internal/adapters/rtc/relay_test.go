package rtc

import (
	"context"
	"testing"

	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalTrack(t *testing.T, id string) *webrtc.TrackLocalStaticRTP {
	t.Helper()
	track, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		id, "stream-1",
	)
	require.NoError(t, err)
	return track
}

func TestOutTrack_States(t *testing.T) {
	ot := newOutTrack(nil)
	assert.Equal(t, trackStateOk, ot.state())
	ot.markDelete()
	assert.Equal(t, trackStateDelete, ot.state())
}

func TestRelay_ForwardReapsDeletedTracks(t *testing.T) {
	r := newRelay(nil)
	logger := zerolog.Nop()

	live := newOutTrack(newLocalTrack(t, "t-live"))
	dead := newOutTrack(newLocalTrack(t, "t-dead"))
	r.addOutTrack("s-live", live)
	r.addOutTrack("s-dead", dead)
	dead.markDelete()

	// An unbound local track accepts writes, so the live track survives the
	// pass while the deleted one is reaped.
	r.forward(&rtp.Packet{}, &logger)

	r.mu.RLock()
	defer r.mu.RUnlock()
	assert.Contains(t, r.outs, "s-live")
	assert.NotContains(t, r.outs, "s-dead")
}

func TestRelay_LoopCancelMarksAllDelete(t *testing.T) {
	r := newRelay(nil)
	logger := zerolog.Nop()
	ot := newOutTrack(newLocalTrack(t, "t1"))
	r.addOutTrack("s1", ot)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.loop(ctx, &logger)

	assert.Equal(t, trackStateDelete, ot.state())
}

func TestRemoteStream_TracksSnapshot(t *testing.T) {
	s := newRemoteStream("stream-1")
	assert.Equal(t, "stream-1", s.ID())
	assert.Empty(t, s.Tracks())

	s.add(&RemoteTrack{})
	s.add(&RemoteTrack{})
	assert.Len(t, s.Tracks(), 2)
}
