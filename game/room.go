package game

import (
	"math"
	"time"
)

// NoHost is the host id of a room nobody hosts.
const NoHost = -1

// Room is the singleton room record. The server serializes all access; Room
// itself carries no lock.
type Room struct {
	HostID        int
	RoomName      string
	Password      string // empty means no password
	Settings      GameSettings
	GameStartTime int64 // wall clock ms; 0 while in lobby
	Closed        bool  // a closing room admits nobody
}

func NewRoom(name, password string, settings GameSettings) *Room {
	return &Room{
		HostID:   NoHost,
		RoomName: name,
		Password: password,
		Settings: settings,
	}
}

// InGame reports whether a game is running, which is exactly "a start-game
// packet has been seen more recently than a return-to-lobby".
func (r *Room) InGame() bool {
	return r.GameStartTime != 0
}

// TickCount converts now to the client's 30 ticks-per-second clock relative
// to game start. Leave packets carry it unconditionally, lobby included,
// which matches what clients already expect.
func (r *Room) TickCount(now time.Time) int {
	ms := now.UnixMilli() - r.GameStartTime
	return int(math.Round(float64(ms) / (1000.0 / 30.0)))
}
