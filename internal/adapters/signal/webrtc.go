package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Vivek-4321/Socket-Server/internal/app"
)

func (cl *client) handlePublisherOffer(data []byte) {
	if cl.participant == nil {
		return
	}
	var p app.PublisherOfferPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad publisher offer payload")
		return
	}
	cl.participant.CreatePublisher(p.SDP.ToPion())
}

func (cl *client) handleConsumerAnswer(data []byte) {
	if cl.participant == nil {
		return
	}
	var p app.ConsumerAnswerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad consumer answer payload")
		return
	}
	cl.participant.SetConsumerRemoteDescription(p.PublisherID, p.SDP.ToPion())
}

func (cl *client) handleCandidate(data []byte) {
	if cl.participant == nil {
		return
	}
	var p app.ICECandidatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad candidate payload")
		return
	}
	cl.participant.AddICECandidate(p.Kind, p.PublisherID, p.Candidate.ToPion())
}
