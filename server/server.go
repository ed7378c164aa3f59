// Package server runs a single game room: it admits websocket clients,
// routes their packets, enforces host authority and ratelimits, and fans out
// the resulting updates. One process hosts one room.
package server

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/bonkhost/bonk-room/config"
	"github.com/bonkhost/bonk-room/game"
	"github.com/bonkhost/bonk-room/protocol"
)

// Server owns the room and all connected clients. A single coarse mutex
// serializes every packet handler and admin operation, so no handler ever
// observes a half-mutated room. Handlers run on the connections' read
// goroutines and only queue outbound frames, so the lock is held briefly.
type Server struct {
	mu       sync.Mutex
	cfg      *config.Config
	room     *game.Room
	players  *game.Table
	clients  map[int]*Client // keyed by connection id, not player id
	nextConn int

	limits  *RateLimiter
	bans    *BanList
	chatlog *ChatLog

	disallowName *regexp.Regexp // nil when the restriction is off

	closeTimer *time.Timer
	done       chan struct{}
	closeOnce  sync.Once

	now func() time.Time // replaced in tests
}

// NewServer wires a room up from the config. The ban list file is read here;
// a corrupt file refuses to start rather than silently forgetting bans.
func NewServer(cfg *config.Config) (*Server, error) {
	var disallow *regexp.Regexp
	if pat := cfg.Restrictions.Usernames.DisallowRegex; pat != "" {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("disallowRegex: %w", err)
		}
		disallow = re
	}

	bans, err := LoadBanList(cfg.BanFile)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:          cfg,
		room:         game.NewRoom(cfg.RoomNameOnStartup, cfg.RoomPasswordOnStartup, cfg.DefaultGameSettings.Clone()),
		players:      game.NewTable(),
		clients:      make(map[int]*Client),
		limits:       NewRateLimiter(cfg.Restrictions.Ratelimits),
		bans:         bans,
		chatlog:      NewChatLog(cfg.ChatLogDir, cfg.TimeStampFormat),
		disallowName: disallow,
		done:         make(chan struct{}),
		now:          time.Now,
	}, nil
}

// Done is closed once a scheduled close has finished (or the console asked
// for an exit); main shuts the process down when it fires.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) signalDone() {
	s.closeOnce.Do(func() { close(s.done) })
}

// clientByPlayer finds the connection of an admitted player. Callers hold mu.
func (s *Server) clientByPlayer(id int) *Client {
	if id < 0 {
		return nil
	}
	for _, c := range s.clients {
		if c.PlayerID == id {
			return c
		}
	}
	return nil
}

// sendTo queues one frame for a single client. A full send buffer drops the
// frame rather than blocking the room.
func (s *Server) sendTo(c *Client, op string, args ...any) {
	frame, err := protocol.Encode(op, args...)
	if err != nil {
		slog.Error("encode frame", "op", op, "err", err)
		return
	}
	c.queue(frame, op)
}

// broadcast queues a frame for every admitted player.
func (s *Server) broadcast(op string, args ...any) {
	s.broadcastExcept(nil, op, args...)
}

// broadcastExcept queues a frame for every admitted player except skip.
func (s *Server) broadcastExcept(skip *Client, op string, args ...any) {
	frame, err := protocol.Encode(op, args...)
	if err != nil {
		slog.Error("encode frame", "op", op, "err", err)
		return
	}
	for _, c := range s.clients {
		if c == skip || c.PlayerID < 0 {
			continue
		}
		c.queue(frame, op)
	}
}

// removePlayer takes an admitted player out of the room: host handoff, leave
// broadcast, slot release. Callers hold mu.
func (s *Server) removePlayer(id int) {
	p := s.players.Get(id)
	if p == nil {
		return
	}

	tick := s.room.TickCount(s.now())

	newHost := game.NoHost
	if id == s.room.HostID {
		if s.cfg.AutoAssignHost {
			for _, q := range s.players.Occupied() {
				if q.ID != id {
					newHost = q.ID
					break
				}
			}
		}
		s.room.HostID = newHost
	}

	if newHost != game.NoHost {
		s.broadcast(protocol.OutHostLeft, id, newHost, tick)
	} else {
		s.broadcast(protocol.OutPlayerLeft, id, tick)
	}

	s.players.Release(id)
	s.chatlog.Event(p.UserName + " has left the game")
	if q := s.players.Get(newHost); q != nil {
		s.chatlog.Event(q.UserName + " is now the game host")
	}
	slog.Info("player left", "id", id, "name", p.UserName, "newHost", newHost)

	s.maybeFinishClose()
}
