package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/bonkhost/bonk-room/game"
)

// Admin operations: everything the console can do to the room. All of these
// take the room lock themselves so they are safe from any goroutine.

// TransferHost hands the host role to id, or clears it with -1. The
// broadcast carries oldHost -1 so clients can tell it was not a player move.
func (s *Server) TransferHost(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != game.NoHost && s.players.Get(id) == nil {
		return fmt.Errorf("no player with id %d", id)
	}
	s.setHost(id, game.NoHost)
	return nil
}

// KickPlayer disconnects id without touching the ban list.
func (s *Server) KickPlayer(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kickPlayer(id)
}

// BanPlayer records id's address and name on the ban list, then disconnects.
func (s *Server) BanPlayer(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.banPlayer(id)
}

// Unban removes name's ban list entry. It reports whether one existed.
func (s *Server) Unban(name string) (bool, error) {
	return s.bans.Remove(name)
}

func (s *Server) kickPlayer(id int) error {
	p := s.players.Get(id)
	if p == nil {
		return fmt.Errorf("no player with id %d", id)
	}
	s.chatlog.Event(p.UserName + " has been kicked")
	slog.Info("player kicked", "id", id, "name", p.UserName)
	s.disconnectPlayer(id)
	return nil
}

func (s *Server) banPlayer(id int) error {
	p := s.players.Get(id)
	if p == nil {
		return fmt.Errorf("no player with id %d", id)
	}

	addr := ""
	if c := s.clientByPlayer(id); c != nil {
		addr = c.Addr
	}
	// The ban holds in memory even when the file write fails; losing it on
	// restart beats letting the player stay.
	if err := s.bans.Add(addr, p.UserName); err != nil {
		slog.Error("persist ban list", "err", err)
	}

	s.chatlog.Event(p.UserName + " has been banned")
	slog.Info("player banned", "id", id, "name", p.UserName, "addr", addr)
	s.disconnectPlayer(id)
	return nil
}

// disconnectPlayer closes the player's socket; the read pump notices and
// removes them from the room. Callers hold mu.
func (s *Server) disconnectPlayer(id int) {
	if c := s.clientByPlayer(id); c != nil && c.conn != nil {
		c.conn.Close()
	}
}

// PlayerInfo is a console-friendly view of one slot.
type PlayerInfo struct {
	ID    int
	Name  string
	Level string
	Team  int
	Host  bool
}

// ListPlayers returns the occupied slots in id order.
func (s *Server) ListPlayers() []PlayerInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PlayerInfo, 0, s.players.Count())
	for _, p := range s.players.Occupied() {
		out = append(out, PlayerInfo{
			ID:    p.ID,
			Name:  p.UserName,
			Level: string(p.Level),
			Team:  p.Team,
			Host:  p.ID == s.room.HostID,
		})
	}
	return out
}

// SetRoomName renames the room.
func (s *Server) SetRoomName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room.RoomName = name
	s.chatlog.Event("room name changed to " + name)
	slog.Info("room renamed", "name", name)
}

// SetPassword changes the room password; empty clears it.
func (s *Server) SetPassword(password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room.Password = password
	if password == "" {
		s.chatlog.Event("room password removed")
		slog.Info("room password removed")
	} else {
		s.chatlog.Event("room password changed")
		slog.Info("room password changed")
	}
}

// SaveChatLog flushes the chat log buffer to disk.
func (s *Server) SaveChatLog() (string, error) {
	return s.chatlog.Save()
}

// ScheduledClose stops admitting players, takes the host role away, and
// shuts the room down once it empties. minutes > 0 also arms a hard
// deadline after which the room stops regardless.
func (s *Server) ScheduledClose(minutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.Closed {
		return
	}
	s.room.Closed = true
	if s.room.HostID != game.NoHost {
		s.setHost(game.NoHost, game.NoHost)
	}
	slog.Info("room closing", "minutes", minutes)

	if minutes > 0 {
		s.closeTimer = time.AfterFunc(time.Duration(minutes)*time.Minute, s.signalDone)
	}
	s.maybeFinishClose()
}

// AbortScheduledClose reopens the room and cancels the deadline.
func (s *Server) AbortScheduledClose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.room.Closed = false
	if s.closeTimer != nil {
		s.closeTimer.Stop()
		s.closeTimer = nil
	}
	slog.Info("room close aborted")
}

// maybeFinishClose fires the shutdown signal once a closing room is empty.
// Callers hold mu.
func (s *Server) maybeFinishClose() {
	if s.room.Closed && s.players.Count() == 0 {
		s.signalDone()
	}
}
