package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// roomMetadata is the JSON body served to plain HTTP requests so room
// browsers can show the room without joining it.
type roomMetadata struct {
	IsBonkServer bool   `json:"isBonkServer"`
	RoomName     string `json:"roomname"`
	Password     int    `json:"password"`
	Players      int    `json:"players"`
	MaxPlayers   int    `json:"maxplayers"`
	ModeGA       string `json:"mode_ga"`
	ModeMO       string `json:"mode_mo"`
}

// handleMetadata answers non-websocket requests on the shared endpoint with
// a snapshot of the room. Password reports only whether one is set.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	meta := roomMetadata{
		IsBonkServer: true,
		RoomName:     s.room.RoomName,
		Players:      s.players.Count(),
		MaxPlayers:   s.cfg.MaxPlayers,
		ModeGA:       s.room.Settings.GA,
		ModeMO:       s.room.Settings.MO,
	}
	if s.room.Password != "" {
		meta.Password = 1
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(meta); err != nil {
		slog.Debug("write metadata", "err", err)
	}
}
