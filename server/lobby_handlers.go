package server

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/bonkhost/bonk-room/game"
	"github.com/bonkhost/bonk-room/protocol"
)

// Outbound opcode 18 carries either of these; clients tell team changes and
// balance changes apart by which key shows up.
type teamUpdate struct {
	SID  int `json:"sid"`
	Team int `json:"team"`
}

type balanceUpdate struct {
	SID int `json:"sid"`
	Bal int `json:"bal"`
}

// handleChangeOwnTeam moves the sender between teams. With teams locked only
// the host may move anyone, including themselves.
func (s *Server) handleChangeOwnTeam(c *Client, args []json.RawMessage) {
	var d struct {
		TargetTeam *int `json:"targetTeam"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.TargetTeam == nil {
		return
	}
	if !game.ValidTeam(*d.TargetTeam) {
		return
	}
	if s.room.Settings.TL && c.PlayerID != s.room.HostID {
		s.sendTo(c, protocol.OutErrorMessage, protocol.ErrCodeNotHosting)
		return
	}
	p := s.players.Get(c.PlayerID)
	if p == nil {
		return
	}
	p.Team = *d.TargetTeam
	s.broadcast(protocol.OutChangeTeam, teamUpdate{SID: p.ID, Team: p.Team})
}

// handleChat relays a chat line to the room, truncated to the configured
// length, and records it.
func (s *Server) handleChat(c *Client, args []json.RawMessage) {
	var d struct {
		Message string `json:"message"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil {
		return
	}
	p := s.players.Get(c.PlayerID)
	if p == nil {
		return
	}

	msg := d.Message
	if limit := s.cfg.Restrictions.MaxChatMessageLength; limit > 0 && utf8.RuneCountInString(msg) > limit {
		msg = string([]rune(msg)[:limit])
	}

	s.broadcast(protocol.OutChatMessage, p.ID, msg)
	s.chatlog.Chat(p.UserName, msg)
}

// handleSetReady flips the sender's ready flag. The payload must be a real
// boolean; anything else drops the packet.
func (s *Server) handleSetReady(c *Client, args []json.RawMessage) {
	var d struct {
		Ready *bool `json:"ready"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.Ready == nil {
		return
	}
	p := s.players.Get(c.PlayerID)
	if p == nil {
		return
	}
	p.Ready = *d.Ready
	s.broadcast(protocol.OutSetReady, p.ID, p.Ready)
}

// handleSetTabbed mirrors handleSetReady for the tabbed-out flag.
func (s *Server) handleSetTabbed(c *Client, args []json.RawMessage) {
	var d struct {
		Tabbed *bool `json:"tabbed"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.Tabbed == nil {
		return
	}
	p := s.players.Get(c.PlayerID)
	if p == nil {
		return
	}
	p.Tabbed = *d.Tabbed
	s.broadcast(protocol.OutSetTabbed, p.ID, p.Tabbed)
}

// handleMapRequest suggests a map to the room. The host alone receives the
// full encoded map; everyone else only sees the name and author. Without a
// host the metadata goes to everyone.
func (s *Server) handleMapRequest(c *Client, args []json.RawMessage) {
	var d struct {
		M         json.RawMessage `json:"m"`
		MapName   string          `json:"mapname"`
		MapAuthor string          `json:"mapauthor"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil {
		return
	}
	p := s.players.Get(c.PlayerID)
	if p == nil {
		return
	}

	host := s.clientByPlayer(s.room.HostID)
	if host == nil {
		s.broadcast(protocol.OutMapRequestNonHost, d.MapName, d.MapAuthor, p.ID)
	} else {
		s.broadcastExcept(host, protocol.OutMapRequestNonHost, d.MapName, d.MapAuthor, p.ID)
		s.sendTo(host, protocol.OutMapRequestHost, d.M, p.ID)
	}

	s.chatlog.Event(p.UserName + " has requested the map " + d.MapName + " by " + d.MapAuthor)
}

// handleFriendRequest forwards a friend request to its target alone.
func (s *Server) handleFriendRequest(c *Client, args []json.RawMessage) {
	var d struct {
		ID *int `json:"id"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.ID == nil {
		return
	}
	if target := s.clientByPlayer(*d.ID); target != nil {
		s.sendTo(target, protocol.OutFriendRequest, c.PlayerID)
	}
}
