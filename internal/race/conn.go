package race

import (
	"bufio"
	"net"
	"sync"
)

// Conn wraps a client socket with a serialized line writer. Sends are
// synchronous: a broadcast must see each recipient's write error so the
// failed connection can be torn down.
type Conn struct {
	nc net.Conn

	mu sync.Mutex
	w  *bufio.Writer

	closeOnce sync.Once
}

func NewConn(nc net.Conn) *Conn {
	return &Conn{nc: nc, w: bufio.NewWriter(nc)}
}

// Send writes one newline-terminated frame and flushes it.
func (c *Conn) Send(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.w.WriteString(line + "\n"); err != nil {
		return err
	}
	return c.w.Flush()
}

// Close shuts the socket down. Safe to call more than once; a concurrent
// Send or read fails and takes the disconnect path.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		_ = c.nc.Close()
	})
}

func (c *Conn) RemoteAddr() string {
	return c.nc.RemoteAddr().String()
}
