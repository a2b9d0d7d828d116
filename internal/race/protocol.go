package race

import (
	"fmt"
	"strconv"
	"strings"
)

// Client commands. A frame is COMMAND|payload terminated by a newline;
// the payload may contain further |-delimited subfields.
const (
	cmdLogin  = "LOGIN"
	cmdCreate = "CREATE"
	cmdJoin   = "JOIN"
	cmdStart  = "START"
	cmdUpdate = "UPDATE"
	cmdList   = "LIST"
	cmdLeave  = "LEAVE"
)

const adminMessage = "ADMIN|You are now the admin"

// parseFrame splits a frame into command and payload. A frame without a
// separator is a bare command with an empty payload.
func parseFrame(line string) (cmd, payload string) {
	cmd, payload, _ = strings.Cut(line, "|")
	return cmd, payload
}

// formatPosition renders a normalized position with fixed six decimals,
// e.g. 0.5 -> "0.500000".
func formatPosition(p float64) string {
	return strconv.FormatFloat(p, 'f', 6, 64)
}

// RoomSummary is a point-in-time view of one room, used for ROOMS frames.
type RoomSummary struct {
	ID        int
	Nicknames []string
}

func roomListMessage(summaries []RoomSummary) string {
	var b strings.Builder
	b.WriteString("ROOMS|")
	for _, s := range summaries {
		fmt.Fprintf(&b, "Room%d: %d [%s]|", s.ID, len(s.Nicknames), strings.Join(s.Nicknames, ", "))
	}
	return b.String()
}

func roomStateMessage(id int, members []*Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ROOM|%d|", id)
	for _, p := range members {
		admin := "0"
		if p.Admin {
			admin = "1"
		}
		b.WriteString(p.Nickname + " " + admin + "|")
	}
	return b.String()
}

func startMessage(background int, members []*Player) string {
	var b strings.Builder
	fmt.Fprintf(&b, "START|%d", background)
	for _, p := range members {
		fmt.Fprintf(&b, " %d|%s", p.Car, p.Nickname)
	}
	return b.String()
}

func positionsMessage(members []*Player) string {
	var b strings.Builder
	b.WriteString("POS|")
	for _, p := range members {
		b.WriteString(" " + formatPosition(p.Position) + "|" + p.Nickname)
	}
	return b.String()
}

func endMessage(finishOrder []string) string {
	var b strings.Builder
	b.WriteString("END|")
	for _, nick := range finishOrder {
		b.WriteString(nick + "|")
	}
	return b.String()
}

func textMessage(text string) string { return "TEXT|" + text }

func createdMessage(id int) string { return "CREATED|" + strconv.Itoa(id) }

func joinedMessage(id int) string { return "JOIN|" + strconv.Itoa(id) }

func errorMessage(msg string) string { return "ERROR|" + msg }
