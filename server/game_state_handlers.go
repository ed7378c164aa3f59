package server

import (
	"encoding/json"
	"log/slog"

	"github.com/bonkhost/bonk-room/game"
	"github.com/bonkhost/bonk-room/protocol"
)

// handleSendInputs relays one game-tick input blob to everyone else. The
// server does not look inside it; clients simulate the game themselves.
func (s *Server) handleSendInputs(c *Client, args []json.RawMessage) {
	if len(args) == 0 {
		return
	}
	s.broadcastExcept(c, protocol.OutSendInputs, c.PlayerID, args[0])
}

// handleStartGame takes the host's final settings, stamps the start time and
// sends everyone into the game. The settings blob is re-broadcast verbatim
// so clients see exactly what the host sent.
func (s *Server) handleStartGame(c *Client, args []json.RawMessage) {
	var d struct {
		IS json.RawMessage `json:"is"`
		GS json.RawMessage `json:"gs"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &d) != nil {
		return
	}

	var gs game.GameSettings
	if err := json.Unmarshal(d.GS, &gs); err != nil {
		slog.Debug("bad settings in start game", "conn", c.ID, "err", err)
		return
	}

	s.room.Settings = gs
	s.room.GameStartTime = s.now().UnixMilli()
	s.broadcast(protocol.OutStartGame, s.room.GameStartTime, d.IS, d.GS)
	slog.Info("game started", "host", c.PlayerID, "mode", gs.MO)
}

// handleReturnToLobby ends the running game.
func (s *Server) handleReturnToLobby(c *Client) {
	s.room.GameStartTime = 0
	s.broadcast(protocol.OutReturnToLobby)
	slog.Info("returned to lobby", "host", c.PlayerID)
}
