package race

// broadcast delivers a frame to every member in sequence order. A failed
// recipient does not stop delivery to the rest. The failed connections
// are returned so the caller can run disconnect cleanup after the room
// lock is released; cleanup must never run while the member slice is
// being iterated.
func broadcast(members []*Player, line string) []*Conn {
	var failed []*Conn
	for _, p := range members {
		if err := p.Conn.Send(line); err != nil {
			failed = append(failed, p.Conn)
		}
	}
	return failed
}
