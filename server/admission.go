package server

import (
	"encoding/json"
	"log/slog"
	"unicode/utf8"

	"github.com/bonkhost/bonk-room/game"
	"github.com/bonkhost/bonk-room/protocol"
)

// joinData is the join request payload. Level may arrive as a number or a
// string; roomPassword may be null or absent. The peer id field is reserved
// and ignored.
type joinData struct {
	UserName     string          `json:"userName"`
	Guest        bool            `json:"guest"`
	Level        game.Level      `json:"level"`
	Avatar       json.RawMessage `json:"avatar"`
	RoomPassword *string         `json:"roomPassword"`
}

// handleJoin runs admission for a connection's join request and, on success,
// seats the player and announces them.
func (s *Server) handleJoin(c *Client, args []json.RawMessage) {
	if len(args) == 0 {
		return
	}
	var d joinData
	if err := json.Unmarshal(args[0], &d); err != nil {
		slog.Debug("bad join payload", "conn", c.ID, "err", err)
		return
	}

	if code, ok := s.admit(c, &d); !ok {
		if code != "" {
			s.sendTo(c, protocol.OutErrorMessage, code)
			slog.Info("join rejected", "conn", c.ID, "name", d.UserName, "addr", c.Addr, "code", code)
		}
		return
	}

	s.seatPlayer(c, &d)
}

// admit runs the join checks in their fixed order and returns the rejection
// code, or ok=true when the player may enter. An empty code with ok=false
// rejects without answering (a connection that already holds a slot).
func (s *Server) admit(c *Client, d *joinData) (code string, ok bool) {
	names := s.cfg.Restrictions.Usernames
	levels := s.cfg.Restrictions.Levels

	if s.room.Closed {
		return protocol.ErrCodeRoomClosed, false
	}
	if s.bans.IsBanned(c.Addr) {
		return protocol.ErrCodeBanned, false
	}
	if c.PlayerID >= 0 {
		return "", false
	}
	if !s.limits.Hit(c.Addr, ActionJoining) {
		return protocol.ErrCodeJoinRateLimited, false
	}

	if names.NoDuplicates && s.players.FindByName(d.UserName) >= 0 {
		return protocol.ErrCodeAlreadyInRoom, false
	}
	if utf8.RuneCountInString(d.UserName) > names.MaxLength {
		return protocol.ErrCodeUsernameTooLong, false
	}
	if names.NoEmptyNames && d.UserName == "" {
		return protocol.ErrCodeUsernameEmpty, false
	}
	if s.disallowName != nil && s.disallowName.MatchString(d.UserName) {
		return protocol.ErrCodeUsernameInvalid, false
	}

	if levels.MinLevel > 0 && d.Guest {
		return protocol.ErrCodeGuestsNotAllowed, false
	}
	// A level that does not parse skips the range checks; only the
	// digits-only restriction can still reject it.
	if n, isNum := d.Level.Int(); isNum {
		if n < levels.MinLevel {
			return protocol.ErrCodeXPTooLow, false
		}
		if n > levels.MaxLevel {
			return protocol.ErrCodeXPTooHigh, false
		}
	}
	if levels.OnlyAllowNumbers && !d.Level.Numeric() {
		return protocol.ErrCodeXPInvalid, false
	}

	if s.room.Password != "" && (d.RoomPassword == nil || *d.RoomPassword != s.room.Password) {
		return protocol.ErrCodePasswordWrong, false
	}
	if s.players.Count() >= s.cfg.MaxPlayers {
		return protocol.ErrCodeRoomFull, false
	}
	return "", true
}

// seatPlayer allocates the slot, tells the newcomer about the room, and the
// room about the newcomer.
func (s *Server) seatPlayer(c *Client, d *joinData) {
	level := d.Level
	if s.cfg.Restrictions.Levels.CensorLevels {
		level = game.CensoredLevel
	}
	team := game.TeamFFA
	if s.room.Settings.TL {
		team = game.TeamSpectate
	}

	p := &game.Player{
		PeerID:   game.PeerID,
		UserName: d.UserName,
		Guest:    d.Guest,
		Level:    level,
		Team:     team,
		Avatar:   d.Avatar,
	}
	id := s.players.Allocate(p)
	c.PlayerID = id

	assignedHost := false
	if s.room.HostID == game.NoHost && s.cfg.AutoAssignHost {
		s.room.HostID = id
		assignedHost = true
	}

	s.sendTo(c, protocol.OutServerInform,
		id, s.room.HostID, s.players.Snapshot(), s.room.GameStartTime,
		s.room.Settings.TL, 0, game.PeerID, nil)

	s.broadcastExcept(c, protocol.OutPlayerJoined,
		id, game.PeerID, p.UserName, p.Guest, p.Level, p.Team, p.Avatar)

	if assignedHost {
		// No host existed, so the server speaks for one once to hand the
		// newcomer the current settings.
		s.sendTo(c, protocol.OutHostInformInLobby, s.room.Settings.Clone())
	}

	s.chatlog.Event(p.UserName + " joined the game")
	slog.Info("player joined", "id", id, "name", p.UserName, "addr", c.Addr, "host", assignedHost)
}
