package app

import (
	"github.com/rs/zerolog/log"

	"github.com/Vivek-4321/Socket-Server/internal/core"
	"github.com/Vivek-4321/Socket-Server/internal/domain"
)

// Orchestrator drives the room/participant lifecycle: join (with late-join
// catch-up), stream fan-out, and leave/disconnect cleanup. It owns the
// registry and the media engine; the signaling adapter owns the transports.
type Orchestrator struct {
	Registry *Registry
	Engine   core.Engine
}

func NewOrchestrator(registry *Registry, engine core.Engine) *Orchestrator {
	return &Orchestrator{Registry: registry, Engine: engine}
}

// Join places a new participant into roomID, replying with the set of peers
// that already have a live stream and creating catch-up consumers for each of
// them. If prev is still joined the full leave runs first, so a repeated join
// behaves as leave-then-join.
func (o *Orchestrator) Join(
	prev *Participant,
	id domain.ParticipantID,
	username string,
	roomID domain.RoomID,
	signal core.SignalConnection,
) *Participant {
	if prev != nil {
		o.Leave(prev)
	}

	p := NewParticipant(id, username, roomID, signal, o.Engine)
	p.OnStream(o.forwardStreamToRoom)
	room := o.Registry.Join(roomID, p)

	// Existing members that already publish; the new client is told about
	// them up front and immediately receives a consumer offer for each.
	var live []*Participant
	for _, peer := range room.Participants() {
		if peer.ID != p.ID && peer.HasStream() {
			live = append(live, peer)
		}
	}

	peers := make([]domain.Peer, 0, len(live))
	for _, peer := range live {
		peers = append(peers, peer.Peer())
	}
	p.emit(EventJoined, JoinedPayload{RoomID: roomID, Participants: peers})
	room.Broadcast(p.ID, EventPeerJoined, p.Peer())

	for _, peer := range live {
		if stream := peer.Stream(); stream != nil {
			p.CreateConsumerForPublisher(peer.ID, stream)
		}
	}

	log.Info().Str("module", "app.orchestrator").Str("sid", string(id)).
		Str("room", string(roomID)).Int("live_peers", len(live)).Msg("joined")
	return p
}

// Leave is terminal for p: membership is removed first so remaining members
// never see a half-closed peer, then all sessions are torn down, the rest of
// the room is notified, and an emptied room is deleted from the registry.
// Explicit leave and transport disconnect share this path.
func (o *Orchestrator) Leave(p *Participant) {
	room, ok := o.Registry.Get(p.RoomID)
	if ok {
		room.Remove(p.ID)
	}
	p.Close()
	if ok {
		room.Broadcast(p.ID, EventPeerLeft, p.Peer())
		o.Registry.Remove(p.RoomID)
	}
	log.Info().Str("module", "app.orchestrator").Str("sid", string(p.ID)).
		Str("room", string(p.RoomID)).Msg("left")
}

// forwardStreamToRoom fans p's freshly arrived stream out to every other
// current room member. Per-peer failures are isolated inside
// CreateConsumerForPublisher, so one bad peer never aborts the rest.
func (o *Orchestrator) forwardStreamToRoom(p *Participant) {
	stream := p.Stream()
	if stream == nil {
		return
	}
	room, ok := o.Registry.Get(p.RoomID)
	if !ok {
		return
	}
	peers := room.Participants()
	log.Info().Str("module", "app.orchestrator").Str("sid", string(p.ID)).
		Str("room", string(p.RoomID)).Int("peers", len(peers)-1).Msg("forwarding stream to room")
	for _, peer := range peers {
		if peer.ID == p.ID {
			continue
		}
		peer.CreateConsumerForPublisher(p.ID, stream)
	}
}
