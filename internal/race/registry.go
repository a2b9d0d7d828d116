package race

import (
	"log/slog"
	"slices"
	"sync"
)

// PlayerRegistry maps connections to players and enforces nickname
// uniqueness across the process. It owns the player id counter; ids are
// monotonic and never reused within a process lifetime.
type PlayerRegistry struct {
	mu      sync.RWMutex
	players map[*Conn]*Player
	nextID  int
	logger  *slog.Logger
}

func NewPlayerRegistry(logger *slog.Logger) *PlayerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlayerRegistry{
		players: make(map[*Conn]*Player),
		logger:  logger,
	}
}

// Login creates a player for the connection. Fails with ErrNicknameTaken
// if any existing player already uses the nickname; the caller must then
// disconnect the requesting connection.
func (pr *PlayerRegistry) Login(c *Conn, nickname string) (*Player, error) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	for _, p := range pr.players {
		if p.Nickname == nickname {
			return nil, ErrNicknameTaken
		}
	}
	pr.nextID++
	p := &Player{Conn: c, ID: pr.nextID, Nickname: nickname}
	pr.players[c] = p

	ConnectedPlayers.Set(float64(len(pr.players)))
	pr.logger.Info("player logged in", "nickname", nickname, "id", p.ID)
	return p, nil
}

// Get returns the player behind a connection, or nil.
func (pr *PlayerRegistry) Get(c *Conn) *Player {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.players[c]
}

// Remove drops the player record for a connection and returns it.
// Idempotent: returns nil if the connection never logged in.
func (pr *PlayerRegistry) Remove(c *Conn) *Player {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	p, ok := pr.players[c]
	if !ok {
		return nil
	}
	delete(pr.players, c)

	ConnectedPlayers.Set(float64(len(pr.players)))
	pr.logger.Info("player removed", "nickname", p.Nickname)
	return p
}

// Snapshot returns the current player set, in no particular order.
func (pr *PlayerRegistry) Snapshot() []*Player {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	players := make([]*Player, 0, len(pr.players))
	for _, p := range pr.players {
		players = append(players, p)
	}
	return players
}

// RoomRegistry maps room ids to rooms and owns the room id counter
// (monotonic from 0, never reused).
type RoomRegistry struct {
	mu     sync.RWMutex
	rooms  map[int]*Room
	nextID int
	logger *slog.Logger
}

func NewRoomRegistry(logger *slog.Logger) *RoomRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoomRegistry{
		rooms:  make(map[int]*Room),
		logger: logger,
	}
}

// Create allocates the next room id and registers a room with the owner
// as its sole, admin member.
func (rr *RoomRegistry) Create(owner *Player) *Room {
	rr.mu.Lock()
	room := NewRoom(rr.nextID)
	rr.nextID++
	// The owner joins before the room is published: a concurrent Find or
	// Summaries must never observe an ownerless room. Cannot fail: the
	// room is fresh, empty, and Waiting.
	_ = room.AddMember(owner)
	rr.rooms[room.ID] = room
	ActiveRooms.Set(float64(len(rr.rooms)))
	rr.mu.Unlock()

	rr.logger.Info("room created", "room", room.ID, "owner", owner.Nickname)
	return room
}

// Find returns the room with the given id, or nil.
func (rr *RoomRegistry) Find(id int) *Room {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	return rr.rooms[id]
}

// FindByPlayer scans rooms for the one the player is a member of, or nil.
// Players hold no back-reference to their room, so a forward scan is the
// only lookup path.
func (rr *RoomRegistry) FindByPlayer(p *Player) *Room {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	for _, room := range rr.rooms {
		if room.HasMember(p) {
			return room
		}
	}
	return nil
}

// DestroyIfEmpty discards the room once its member sequence is empty.
// Must be called after every removal from a room. The room is marked
// destroyed under its own lock so a joiner holding a stale pointer from
// Find cannot slip into a room that is no longer registered. Reports
// whether the room was destroyed.
func (rr *RoomRegistry) DestroyIfEmpty(room *Room) bool {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	if _, ok := rr.rooms[room.ID]; !ok {
		return false
	}
	if !room.markDestroyedIfEmpty() {
		return false
	}
	delete(rr.rooms, room.ID)
	ActiveRooms.Set(float64(len(rr.rooms)))
	rr.logger.Info("room destroyed", "room", room.ID)
	return true
}

// Summaries snapshots every room for ROOMS frames, ordered by room id.
func (rr *RoomRegistry) Summaries() []RoomSummary {
	rr.mu.RLock()
	defer rr.mu.RUnlock()
	summaries := make([]RoomSummary, 0, len(rr.rooms))
	for _, room := range rr.rooms {
		summaries = append(summaries, room.Summary())
	}
	slices.SortFunc(summaries, func(a, b RoomSummary) int { return a.ID - b.ID })
	return summaries
}
