package race

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"
	"time"
)

type stubTexts struct {
	text string
}

func (s stubTexts) Pick() string { return s.text }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer("127.0.0.1:0", stubTexts{text: "the quick brown fox"}, logger)
}

// newTestConn returns the server side of an in-memory pipe plus a channel
// of the lines written to it.
func newTestConn(t *testing.T) (*Conn, <-chan string) {
	t.Helper()
	client, server := net.Pipe()
	lines := make(chan string, 256)
	go func() {
		sc := bufio.NewScanner(client)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return NewConn(server), lines
}

// newTestPlayer returns a player backed by an in-memory connection.
func newTestPlayer(t *testing.T, nickname string) (*Player, <-chan string) {
	t.Helper()
	c, lines := newTestConn(t)
	return &Player{Conn: c, Nickname: nickname}, lines
}

// dialSession attaches a full session goroutine to one end of a pipe and
// returns the client end plus the pumped server output.
func dialSession(t *testing.T, s *Server) (net.Conn, <-chan string) {
	t.Helper()
	client, server := net.Pipe()
	s.startSession(NewConn(server))
	lines := make(chan string, 256)
	go func() {
		sc := bufio.NewScanner(client)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()
	t.Cleanup(func() { client.Close() })
	return client, lines
}

func sendFrame(t *testing.T, c net.Conn, frame string) {
	t.Helper()
	if _, err := c.Write([]byte(frame + "\n")); err != nil {
		t.Fatalf("write %q: %v", frame, err)
	}
}

func waitForLine(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case s, ok := <-ch:
		if !ok {
			t.Fatalf("connection closed while waiting for a line")
		}
		return s
	case <-time.After(1 * time.Second):
		t.Fatalf("timeout waiting for a line")
	}
	return ""
}

func waitForPrefix(t *testing.T, ch <-chan string, prefix string) string {
	t.Helper()
	deadline := time.NewTimer(1 * time.Second)
	defer deadline.Stop()
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				t.Fatalf("connection closed while waiting for prefix %q", prefix)
			}
			if strings.HasPrefix(s, prefix) {
				return s
			}
		case <-deadline.C:
			t.Fatalf("timeout waiting for prefix %q", prefix)
		}
	}
}

func expectLine(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	if got := waitForLine(t, ch); got != want {
		t.Fatalf("unexpected line: got %q, want %q", got, want)
	}
}

// expectNoLine asserts that nothing arrives within a short window. Only
// useful when the absent output would have been produced by an already
// processed command.
func expectNoLine(t *testing.T, ch <-chan string) {
	t.Helper()
	select {
	case s := <-ch:
		t.Fatalf("unexpected line: %q", s)
	case <-time.After(100 * time.Millisecond):
	}
}

func waitForClose(t *testing.T, ch <-chan string) {
	t.Helper()
	deadline := time.NewTimer(1 * time.Second)
	defer deadline.Stop()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline.C:
			t.Fatalf("timeout waiting for connection close")
		}
	}
}
