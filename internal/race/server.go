package race

import (
	"log/slog"
	"net"
	"sync"
)

// TextSource supplies the race text sent to members at race start.
type TextSource interface {
	Pick() string
}

// Server accepts connections and runs one session goroutine per client.
// Shared state lives in the two registries and the rooms reachable
// through them; each has its own lock, acquired registry before room.
type Server struct {
	addr     string
	logger   *slog.Logger
	players  *PlayerRegistry
	rooms    *RoomRegistry
	texts    TextSource
	listener net.Listener

	mu    sync.Mutex
	conns map[*Conn]struct{}
	wg    sync.WaitGroup
}

func NewServer(addr string, texts TextSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		logger:  logger,
		players: NewPlayerRegistry(logger),
		rooms:   NewRoomRegistry(logger),
		texts:   texts,
		conns:   make(map[*Conn]struct{}),
	}
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln

	go s.acceptLoop(ln)

	s.logger.Info("server started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound listen address, for callers that used ":0".
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop closes the listener, force-closes every live connection to unblock
// its read wait, and waits for all session goroutines to drain.
func (s *Server) Stop() {
	s.logger.Info("shutting down")

	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	conns := make([]*Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}

	s.wg.Wait()
	s.logger.Info("shutdown complete")
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		nc, err := ln.Accept()
		if err != nil {
			// Listener closed: normal shutdown.
			return
		}

		c := NewConn(nc)
		s.logger.Info("client connected", "addr", c.RemoteAddr())
		s.startSession(c)
	}
}

func (s *Server) startSession(c *Conn) {
	s.track(c)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.handleSession(c)
	}()
}

func (s *Server) track(c *Conn) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(c *Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// disconnect tears a connection down: membership in every room (with
// admin succession and empty-room destruction), then the registry entry,
// then the socket. Safe to call more than once for the same connection.
// Broadcast failures discovered along the way cascade into further
// disconnects, processed here after the room locks are released.
func (s *Server) disconnect(c *Conn) {
	s.untrack(c)

	p := s.players.Remove(c)
	if p != nil {
		var failed []*Conn
		for {
			room := s.rooms.FindByPlayer(p)
			if room == nil {
				break
			}
			failed = append(failed, room.RemoveMember(p)...)
			s.rooms.DestroyIfEmpty(room)
		}
		s.logger.Info("player disconnected", "nickname", p.Nickname)

		for _, fc := range failed {
			if fc != c {
				s.disconnect(fc)
			}
		}
	}

	c.Close()
}

// broadcastRoomList sends the current room list to every logged-in
// player and returns the connections whose write failed.
func (s *Server) broadcastRoomList() []*Conn {
	line := roomListMessage(s.rooms.Summaries())
	var failed []*Conn
	for _, p := range s.players.Snapshot() {
		if err := p.Conn.Send(line); err != nil {
			failed = append(failed, p.Conn)
		}
	}
	return failed
}
