package rtc

import (
	"sync/atomic"

	"github.com/pion/webrtc/v4"
)

type trackState int32

const (
	trackStateOk trackState = iota
	trackStateDelete
)

// outTrack is a single outgoing track towards one consumer session.
type outTrack struct {
	track *webrtc.TrackLocalStaticRTP
	st    atomic.Int32 // zero value is trackStateOk
}

func newOutTrack(track *webrtc.TrackLocalStaticRTP) *outTrack {
	return &outTrack{track: track}
}

func (ot *outTrack) state() trackState {
	return trackState(ot.st.Load())
}

func (ot *outTrack) markDelete() {
	ot.st.Store(int32(trackStateDelete))
}
