package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/Vivek-4321/Socket-Server/internal/app"
	"github.com/Vivek-4321/Socket-Server/internal/domain"
)

func (cl *client) handleJoin(data []byte) {
	var p app.JoinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		return
	}
	if p.RoomID == "" {
		log.Warn().Str("module", "signal").Str("sid", string(cl.sid)).Msg("join without room id")
		return
	}
	if !cl.ctl.limiter.Allow(cl.addr) {
		log.Warn().Str("module", "signal").Str("sid", string(cl.sid)).Str("addr", cl.addr).Msg("join rate limited")
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(cl.sid)).Str("room", p.RoomID).Msg("join")
	// Join handles the implicit leave when the connection is already in a
	// room; the participant id survives the rejoin.
	cl.participant = cl.ctl.Orch.Join(cl.participant, cl.sid, p.Username, domain.RoomID(p.RoomID), cl.conn)
}

func (cl *client) handleLeave() {
	if cl.participant == nil {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(cl.sid)).Msg("leave")
	cl.ctl.Orch.Leave(cl.participant)
	cl.participant = nil
}
