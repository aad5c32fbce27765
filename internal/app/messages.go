package app

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"

	"github.com/Vivek-4321/Socket-Server/internal/domain"
)

// Wire protocol event names. Every frame on the signaling channel is an
// Envelope carrying one of these.
const (
	EventJoin               = "join"
	EventJoined             = "joined"
	EventPeerJoined         = "peerJoined"
	EventPeerLeft           = "peerLeft"
	EventLeave              = "leave"
	EventPublisherOffer     = "publisherOffer"
	EventConsumerAnswer     = "consumerAnswer"
	EventSessionDescription = "sessionDescription"
	EventICECandidate       = "iceCandidate"
	EventPing               = "ping"
	EventPong               = "pong"
)

// Session kinds used to tag sessionDescription and iceCandidate payloads.
const (
	KindPublisher = "publisher"
	KindConsumer  = "consumer"
)

type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SDP is a JSON-friendly session description.
type SDP struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

func SDPFromPion(desc webrtc.SessionDescription) SDP {
	return SDP{Type: desc.Type.String(), SDP: desc.SDP}
}

func (s SDP) ToPion() webrtc.SessionDescription {
	return webrtc.SessionDescription{Type: webrtc.NewSDPType(s.Type), SDP: s.SDP}
}

// Candidate is a JSON-friendly trickle ICE candidate.
type Candidate struct {
	Candidate        string  `json:"candidate"`
	SDPMid           *string `json:"sdpMid,omitempty"`
	SDPMLineIndex    *uint16 `json:"sdpMLineIndex,omitempty"`
	UsernameFragment *string `json:"usernameFragment,omitempty"`
}

func CandidateFromPion(init webrtc.ICECandidateInit) Candidate {
	return Candidate{
		Candidate:        init.Candidate,
		SDPMid:           init.SDPMid,
		SDPMLineIndex:    init.SDPMLineIndex,
		UsernameFragment: init.UsernameFragment,
	}
}

func (c Candidate) ToPion() webrtc.ICECandidateInit {
	return webrtc.ICECandidateInit{
		Candidate:        c.Candidate,
		SDPMid:           c.SDPMid,
		SDPMLineIndex:    c.SDPMLineIndex,
		UsernameFragment: c.UsernameFragment,
	}
}

type JoinPayload struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username,omitempty"`
}

type JoinedPayload struct {
	RoomID       domain.RoomID `json:"roomId"`
	Participants []domain.Peer `json:"participants"`
}

type PublisherOfferPayload struct {
	SDP SDP `json:"sdp"`
}

type ConsumerAnswerPayload struct {
	PublisherID domain.ParticipantID `json:"publisherId"`
	SDP         SDP                  `json:"sdp"`
}

// SessionDescriptionPayload carries a publisher answer or a consumer offer
// to the client. PublisherID is set for consumers only.
type SessionDescriptionPayload struct {
	Kind        string               `json:"type"`
	PublisherID domain.ParticipantID `json:"publisherId,omitempty"`
	SDP         SDP                  `json:"sdp"`
}

// ICECandidatePayload travels in both directions; Kind routes it to the
// publisher or to the consumer keyed by PublisherID.
type ICECandidatePayload struct {
	Kind        string               `json:"type"`
	PublisherID domain.ParticipantID `json:"publisherId,omitempty"`
	Candidate   Candidate            `json:"candidate"`
}
