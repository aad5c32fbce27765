package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Vivek-4321/Socket-Server/internal/domain"
)

// Room holds the participants currently joined under one room id.
// Adding and removing members is the registry's job; the room never touches
// transport or media resources itself.
type Room struct {
	ID domain.RoomID

	mu           sync.RWMutex
	participants map[domain.ParticipantID]*Participant
}

func newRoom(id domain.RoomID) *Room {
	return &Room{
		ID:           id,
		participants: make(map[domain.ParticipantID]*Participant),
	}
}

func (r *Room) Add(p *Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants[p.ID] = p
	log.Info().Str("module", "app.room").Str("room", string(r.ID)).Str("sid", string(p.ID)).Msg("participant added")
}

func (r *Room) Remove(id domain.ParticipantID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.participants, id)
	log.Info().Str("module", "app.room").Str("room", string(r.ID)).Str("sid", string(id)).Msg("participant removed")
}

func (r *Room) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// Participants returns a point-in-time snapshot of the membership set.
func (r *Room) Participants() []*Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p)
	}
	return out
}

// Broadcast fans an event out to every member except from. Send failures are
// per-member and do not stop the loop.
func (r *Room) Broadcast(from domain.ParticipantID, event string, data any) {
	for _, p := range r.Participants() {
		if p.ID == from {
			continue
		}
		p.emit(event, data)
	}
}

// Registry is the process-wide room map. A room is present iff it has at
// least one participant; callers must remove the last member before Remove
// takes effect.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.RoomID]*Room)}
}

func (reg *Registry) GetOrCreate(id domain.RoomID) *Room {
	reg.mu.RLock()
	room, ok := reg.rooms[id]
	reg.mu.RUnlock()
	if ok {
		return room
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if room, ok = reg.rooms[id]; ok {
		return room
	}
	room = newRoom(id)
	reg.rooms[id] = room
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room created")
	return room
}

// Join resolves (or creates) the room and inserts p within one registry
// critical section. Remove's emptiness check runs under the same lock, so a
// concurrent last-member departure can never delete the room between the
// lookup and the insert.
func (reg *Registry) Join(id domain.RoomID, p *Participant) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[id]
	if !ok {
		room = newRoom(id)
		reg.rooms[id] = room
		log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("room created")
	}
	room.Add(p)
	return room
}

func (reg *Registry) Get(id domain.RoomID) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[id]
	return room, ok
}

// Remove deletes a room only once it is empty; removing a populated or
// unknown room is a no-op.
func (reg *Registry) Remove(id domain.RoomID) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[id]
	if !ok || room.Count() > 0 {
		return
	}
	delete(reg.rooms, id)
	log.Info().Str("module", "app.registry").Str("room", string(id)).Msg("empty room removed")
}

type RoomInfo struct {
	ID               domain.RoomID `json:"id"`
	ParticipantCount int           `json:"participant_count"`
}

func (reg *Registry) List() []RoomInfo {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]RoomInfo, 0, len(reg.rooms))
	for id, room := range reg.rooms {
		out = append(out, RoomInfo{ID: id, ParticipantCount: room.Count()})
	}
	return out
}
