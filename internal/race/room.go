package race

import (
	"math"
	"math/rand"
	"slices"
	"sync"
)

const (
	maxRoomSize = 4
	carPoolSize = 12
)

// Room owns its member sequence and the race state machine. Everything
// below mu, including the race fields of every member, is guarded by mu.
// Rooms never touch the registries; lock order is registry before room.
//
// Broadcasts happen while mu is held. Recipients only write to sockets
// and never call back into the room, so this cannot deadlock; write
// failures are handed back to the caller for deferred disconnect cleanup.
type Room struct {
	ID int

	mu          sync.Mutex
	members     []*Player
	phase       Phase
	background  int
	usedCars    map[int]bool
	finishOrder []string
	destroyed   bool
}

func NewRoom(id int) *Room {
	return &Room{
		ID:         id,
		phase:      Waiting,
		background: 1,
	}
}

// AddMember appends a player to the member sequence. The first member of
// an empty room becomes admin. The background tier tracks the member
// count, capped at 4.
func (r *Room) AddMember(p *Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrRoomNotFound
	}
	if r.phase == Racing {
		return ErrGameInProgress
	}
	if len(r.members) >= maxRoomSize {
		return ErrRoomFull
	}
	p.Admin = len(r.members) == 0
	p.Car = 0
	p.Position = 0
	r.members = append(r.members, p)
	r.background = min(maxRoomSize, len(r.members))
	return nil
}

// RemoveMember drops a player from the member sequence. If the departing
// player was admin and members remain, the new first member is promoted
// and notified directly, then the updated membership is broadcast to the
// remaining members. No-op if the player is not a member. The caller must
// check for emptiness afterwards and destroy the room through the
// registry.
func (r *Room) RemoveMember(p *Player) []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.Index(r.members, p)
	if i < 0 {
		return nil
	}
	wasAdmin := p.Admin
	r.members = slices.Delete(r.members, i, i+1)

	var failed []*Conn
	if wasAdmin && len(r.members) > 0 {
		r.members[0].Admin = true
		if err := r.members[0].Conn.Send(adminMessage); err != nil {
			failed = append(failed, r.members[0].Conn)
		}
	}
	failed = append(failed, broadcast(r.members, roomStateMessage(r.ID, r.members))...)
	return failed
}

// BroadcastState sends the current membership frame to every member.
func (r *Room) BroadcastState() []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return broadcast(r.members, roomStateMessage(r.ID, r.members))
}

// Start runs the Waiting -> Racing transition: assigns cars, clears the
// previous finish order, and broadcasts the race text followed by the
// start payload. A no-op unless the requesting player is the room's admin
// and the room is Waiting.
func (r *Room) Start(p *Player, text string) (started bool, failed []*Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != Waiting || !p.Admin || !slices.Contains(r.members, p) {
		return false, nil
	}
	r.assignCars()
	r.phase = Racing
	r.finishOrder = nil

	failed = append(failed, broadcast(r.members, textMessage(text))...)
	failed = append(failed, broadcast(r.members, startMessage(r.background, r.members))...)
	return true, failed
}

// assignCars draws a distinct car number for every member, uniformly from
// 1..12 by rejection sampling. The pool exceeds room capacity, so the
// draw terminates. Caller holds mu.
func (r *Room) assignCars() {
	r.usedCars = make(map[int]bool, len(r.members))
	for _, p := range r.members {
		car := rand.Intn(carPoolSize) + 1
		for r.usedCars[car] {
			car = rand.Intn(carPoolSize) + 1
		}
		p.Car = car
		r.usedCars[car] = true
	}
}

// UpdatePosition records a member's race progress and broadcasts the full
// position set. Ignored unless the room is Racing. A position >= 1.0
// enters the finish order once per nickname; when every member has
// finished, the final ranking is broadcast and the room resets to
// Waiting with all positions zeroed.
func (r *Room) UpdatePosition(p *Player, raw float64) (failed []*Conn, ended bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != Racing {
		return nil, false
	}
	pos := math.Round(raw*1e6) / 1e6
	p.Position = pos

	failed = broadcast(r.members, positionsMessage(r.members))

	if pos >= 1.0 && !slices.Contains(r.finishOrder, p.Nickname) {
		r.finishOrder = append(r.finishOrder, p.Nickname)
		if len(r.finishOrder) >= len(r.members) {
			failed = append(failed, broadcast(r.members, endMessage(r.finishOrder))...)
			r.phase = Waiting
			r.finishOrder = nil
			for _, m := range r.members {
				m.Position = 0
			}
			ended = true
		}
	}
	return failed, ended
}

// HasMember reports whether the player is currently in the room.
func (r *Room) HasMember(p *Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.members, p)
}

// markDestroyedIfEmpty flags an empty room as destroyed so no member can
// be added after the registry drops it. Called by the room registry with
// the registry lock held (registry before room).
func (r *Room) markDestroyedIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 {
		return false
	}
	r.destroyed = true
	return true
}

func (r *Room) memberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Summary snapshots the room for ROOMS frames.
func (r *Room) Summary() RoomSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	nicks := make([]string, len(r.members))
	for i, p := range r.members {
		nicks[i] = p.Nickname
	}
	return RoomSummary{ID: r.ID, Nicknames: nicks}
}
