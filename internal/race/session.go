package race

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// handleSession is the per-connection read loop: it splits the byte
// stream into newline-terminated frames and dispatches by command.
// Unrecognized commands are ignored. Any read failure ends the session
// and runs full disconnect cleanup.
func (s *Server) handleSession(c *Conn) {
	reader := bufio.NewReader(c.nc)

	for {
		line, err := readLine(reader)
		if err != nil {
			s.disconnect(c)
			return
		}
		if line == "" {
			continue
		}

		cmd, payload := parseFrame(line)
		s.logger.Debug("received command", "command", cmd, "payload", payload)

		start := time.Now()
		switch cmd {
		case cmdLogin:
			if !s.handleLogin(c, payload) {
				// Nickname conflict: connection already torn down.
				return
			}
		case cmdCreate:
			s.handleCreate(c)
		case cmdJoin:
			s.handleJoin(c, payload)
		case cmdStart:
			s.handleStart(c)
		case cmdUpdate:
			s.handleUpdate(c, payload)
		case cmdList:
			s.handleList(c)
		case cmdLeave:
			s.handleLeave(c, payload)
		default:
			continue
		}

		CommandsTotal.WithLabelValues(cmd).Inc()
		CommandDuration.WithLabelValues(cmd).Observe(time.Since(start).Seconds())
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == nil {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF && line != "" {
		// last line without newline
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err == io.EOF {
		return "", io.EOF
	}
	return "", fmt.Errorf("read: %w", err)
}
