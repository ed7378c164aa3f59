package server

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/bonkhost/bonk-room/game"
	"github.com/bonkhost/bonk-room/protocol"
)

// The dispatcher has already checked host authority for everything in this
// file, so handlers only validate their payloads.

func (s *Server) handleLockTeams(c *Client, args []json.RawMessage) {
	var d struct {
		TeamLock *bool `json:"teamLock"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.TeamLock == nil {
		return
	}
	s.room.Settings.TL = *d.TeamLock
	s.broadcast(protocol.OutLockTeams, s.room.Settings.TL)
}

// handleKickBan removes a player at the host's request, with or without a
// ban list entry.
func (s *Server) handleKickBan(c *Client, args []json.RawMessage) {
	var d struct {
		BanShortID *int `json:"banshortid"`
		KickOnly   bool `json:"kickonly"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.BanShortID == nil {
		return
	}

	var err error
	if d.KickOnly {
		err = s.kickPlayer(*d.BanShortID)
	} else {
		err = s.banPlayer(*d.BanShortID)
	}
	if err != nil {
		slog.Debug("kick/ban failed", "target", *d.BanShortID, "err", err)
	}
}

func (s *Server) handleChangeMode(c *Client, args []json.RawMessage) {
	var d struct {
		GA string `json:"ga"`
		MO string `json:"mo"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil {
		return
	}
	s.room.Settings.GA = d.GA
	s.room.Settings.MO = d.MO
	s.broadcast(protocol.OutChangeMode, d.GA, d.MO)
}

func (s *Server) handleChangeRounds(c *Client, args []json.RawMessage) {
	var d struct {
		W *int `json:"w"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.W == nil {
		return
	}
	s.room.Settings.WL = *d.W
	s.broadcast(protocol.OutChangeRounds, s.room.Settings.WL)
}

func (s *Server) handleChangeMap(c *Client, args []json.RawMessage) {
	var d struct {
		M *string `json:"m"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.M == nil {
		return
	}
	s.room.Settings.Map = *d.M
	s.broadcast(protocol.OutChangeMap, s.room.Settings.Map)
}

// handleChangeOtherTeam moves any player to a team of the host's choosing.
func (s *Server) handleChangeOtherTeam(c *Client, args []json.RawMessage) {
	var d struct {
		TargetID   *int `json:"targetID"`
		TargetTeam *int `json:"targetTeam"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.TargetID == nil || d.TargetTeam == nil {
		return
	}
	if !game.ValidTeam(*d.TargetTeam) {
		return
	}
	p := s.players.Get(*d.TargetID)
	if p == nil {
		return
	}
	p.Team = *d.TargetTeam
	s.broadcast(protocol.OutChangeTeam, teamUpdate{SID: p.ID, Team: p.Team})
}

// handleChangeBalance adjusts one player's handicap. The broadcast shares
// opcode 18 with team changes; the bal key marks it.
func (s *Server) handleChangeBalance(c *Client, args []json.RawMessage) {
	var d struct {
		SID *int `json:"sid"`
		Bal *int `json:"bal"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.SID == nil || d.Bal == nil {
		return
	}
	if s.room.Settings.Bal == nil {
		s.room.Settings.Bal = make(map[string]int)
	}
	s.room.Settings.Bal[strconv.Itoa(*d.SID)] = *d.Bal
	s.broadcast(protocol.OutChangeBalance, balanceUpdate{SID: *d.SID, Bal: *d.Bal})
}

func (s *Server) handleToggleTeams(c *Client, args []json.RawMessage) {
	var d struct {
		T *bool `json:"t"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.T == nil {
		return
	}
	s.room.Settings.TEA = *d.T
	s.broadcast(protocol.OutToggleTeams, s.room.Settings.TEA)
}

// handleTransferHost hands the host role to another seated player.
func (s *Server) handleTransferHost(c *Client, args []json.RawMessage) {
	var d struct {
		ID *int `json:"id"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.ID == nil {
		return
	}
	if s.players.Get(*d.ID) == nil {
		return
	}
	s.setHost(*d.ID, c.PlayerID)
}

// setHost moves host authority and announces it. oldID is -1 when the change
// comes from the console rather than from the sitting host. Callers hold mu.
func (s *Server) setHost(newID, oldID int) {
	s.room.HostID = newID
	s.broadcast(protocol.OutTransferHost, hostChange{OldHost: oldID, NewHost: newID})
	if p := s.players.Get(newID); p != nil {
		s.chatlog.Event(p.UserName + " is now the game host")
		slog.Info("host changed", "old", oldID, "new", newID, "name", p.UserName)
	} else {
		slog.Info("host cleared", "old", oldID)
	}
}

type hostChange struct {
	OldHost int `json:"oldHost"`
	NewHost int `json:"newHost"`
}

// handleHostInformLobby relays the host's settings snapshot to one player,
// usually somebody who just joined.
func (s *Server) handleHostInformLobby(c *Client, args []json.RawMessage) {
	var d struct {
		SID *int            `json:"sid"`
		GS  json.RawMessage `json:"gs"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.SID == nil {
		return
	}
	if target := s.clientByPlayer(*d.SID); target != nil {
		s.sendTo(target, protocol.OutHostInformInLobby, d.GS)
	}
}

// handleHostInformGame relays the host's mid-game state dump to one player.
// The payload is opaque to the server and passed through untouched.
func (s *Server) handleHostInformGame(c *Client, args []json.RawMessage) {
	var d struct {
		SID     *int            `json:"sid"`
		AllData json.RawMessage `json:"allData"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil || d.SID == nil {
		return
	}
	if target := s.clientByPlayer(*d.SID); target != nil {
		s.sendTo(target, protocol.OutHostInformInGame, d.AllData)
	}
}
