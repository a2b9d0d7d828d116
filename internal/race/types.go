package race

// Phase is the lifecycle state of a room.
type Phase int

const (
	Waiting Phase = iota
	Racing
)

func (p Phase) String() string {
	if p == Racing {
		return "racing"
	}
	return "waiting"
}

// Player is the game identity behind one connection. ID and Nickname are
// fixed at login; the race fields (Car, Position, Admin) are owned by the
// room the player is currently in and guarded by that room's lock.
type Player struct {
	Conn     *Conn
	ID       int
	Nickname string

	Car      int
	Position float64
	Admin    bool
}

var (
	ErrNicknameTaken  = errorString("nickname taken")
	ErrRoomNotFound   = errorString("room not found")
	ErrRoomFull       = errorString("room full")
	ErrGameInProgress = errorString("game in progress")
)

type errorString string

func (e errorString) Error() string { return string(e) }
