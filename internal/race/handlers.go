package race

import (
	"strconv"
	"strings"
)

// Command handlers. Each resolves the acting player from the connection;
// commands other than LOGIN from a connection that never logged in are
// ignored. Handlers collect broadcast failures from room operations and
// run disconnect cleanup only after the room work is done.

// handleLogin registers the nickname and replies with the room list.
// Reports false when the connection was torn down (nickname conflict).
func (s *Server) handleLogin(c *Conn, nickname string) bool {
	if s.players.Get(c) != nil {
		// Already logged in; repeated LOGIN is ignored.
		return true
	}

	_, err := s.players.Login(c, nickname)
	if err != nil {
		_ = c.Send(errorMessage("Nickname taken"))
		s.logger.Warn("nickname taken, disconnecting", "nickname", nickname)
		s.disconnect(c)
		return false
	}

	s.sendRoomList(c)
	return true
}

func (s *Server) handleCreate(c *Conn) {
	p := s.players.Get(c)
	if p == nil {
		return
	}

	if s.rooms.FindByPlayer(p) != nil {
		s.logger.Info("create ignored: player already in a room", "nickname", p.Nickname)
		return
	}

	room := s.rooms.Create(p)
	if err := c.Send(createdMessage(room.ID)); err != nil {
		s.disconnect(c)
		return
	}

	for _, fc := range s.broadcastRoomList() {
		s.disconnect(fc)
	}
}

func (s *Server) handleJoin(c *Conn, payload string) {
	p := s.players.Get(c)
	if p == nil {
		return
	}

	roomID, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil {
		s.logger.Warn("invalid room id", "payload", payload)
		_ = c.Send(errorMessage("Invalid room ID"))
		return
	}

	room := s.rooms.Find(roomID)
	if room == nil {
		_ = c.Send(errorMessage("Invalid room"))
		return
	}

	// A player belongs to at most one room at a time.
	if s.rooms.FindByPlayer(p) != nil {
		s.logger.Info("join ignored: player already in a room", "nickname", p.Nickname)
		return
	}

	if err := room.AddMember(p); err != nil {
		switch err {
		case ErrRoomNotFound:
			// The room emptied and was destroyed after Find.
			_ = c.Send(errorMessage("Invalid room"))
		case ErrGameInProgress:
			_ = c.Send(errorMessage("Game in progress"))
		case ErrRoomFull:
			_ = c.Send(errorMessage("Room full"))
		}
		return
	}
	s.logger.Info("player joined room", "nickname", p.Nickname, "room", room.ID)

	if err := c.Send(joinedMessage(room.ID)); err != nil {
		s.disconnect(c)
		return
	}
	for _, fc := range room.BroadcastState() {
		s.disconnect(fc)
	}
}

func (s *Server) handleStart(c *Conn) {
	p := s.players.Get(c)
	if p == nil {
		return
	}

	room := s.rooms.FindByPlayer(p)
	if room == nil {
		s.logger.Info("start ignored: player not in a room", "nickname", p.Nickname)
		return
	}

	started, failed := room.Start(p, s.texts.Pick())
	if started {
		RacesStarted.Inc()
		s.logger.Info("race started", "room", room.ID)
	}
	for _, fc := range failed {
		s.disconnect(fc)
	}
}

func (s *Server) handleUpdate(c *Conn, payload string) {
	p := s.players.Get(c)
	if p == nil {
		return
	}

	pos, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
	if err != nil {
		s.logger.Warn("invalid position", "payload", payload)
		_ = c.Send(errorMessage("Invalid position"))
		return
	}

	room := s.rooms.FindByPlayer(p)
	if room == nil {
		return
	}

	failed, ended := room.UpdatePosition(p, pos)
	if ended {
		RacesFinished.Inc()
		s.logger.Info("race finished", "room", room.ID)
	}
	for _, fc := range failed {
		s.disconnect(fc)
	}
}

func (s *Server) handleList(c *Conn) {
	if s.players.Get(c) == nil {
		return
	}
	s.sendRoomList(c)
}

// handleLeave removes the sender from the named room. The leading player
// id subfield is accepted for wire compatibility but the acting player is
// always resolved from the connection.
func (s *Server) handleLeave(c *Conn, payload string) {
	p := s.players.Get(c)
	if p == nil {
		return
	}

	_, roomIDStr, ok := strings.Cut(payload, "|")
	if !ok {
		// No room id subfield: drop the frame.
		return
	}
	roomID, err := strconv.Atoi(strings.TrimSpace(roomIDStr))
	if err != nil {
		s.logger.Warn("invalid room id", "payload", payload)
		_ = c.Send(errorMessage("Invalid room ID"))
		return
	}

	room := s.rooms.Find(roomID)
	if room == nil {
		_ = c.Send(errorMessage("Invalid room"))
		return
	}

	failed := room.RemoveMember(p)
	s.logger.Info("player left room", "nickname", p.Nickname, "room", room.ID)

	if s.rooms.DestroyIfEmpty(room) {
		failed = append(failed, s.broadcastRoomList()...)
	}
	for _, fc := range failed {
		s.disconnect(fc)
	}
}

func (s *Server) sendRoomList(c *Conn) {
	if err := c.Send(roomListMessage(s.rooms.Summaries())); err != nil {
		s.disconnect(c)
	}
}
