package server

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Keepalive mirrors what the game's own servers do: ping often enough
	// that idle lobby members are not dropped.
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second

	sendBufferSize = 64
)

// Game clients connect from the game's CDN origin, never from this host, so
// cross-origin upgrades are the normal case.
var upgrader = websocket.Upgrader{
	EnableCompression: true,
	CheckOrigin:       func(r *http.Request) bool { return true },
}

// Client is one socket connection. PlayerID stays -1 until the join request
// passes admission. Addr is the address bans and ratelimits key on.
type Client struct {
	ID       int
	PlayerID int
	Addr     string
	conn     *websocket.Conn
	send     chan []byte
	server   *Server
}

// queue hands a frame to the client's writer without blocking the room.
func (c *Client) queue(frame []byte, op string) {
	select {
	case c.send <- frame:
	default:
		slog.Warn("send buffer full, dropping frame", "conn", c.ID, "op", op)
	}
}

// HandleRoot serves the shared endpoint: websocket upgrades join the room,
// plain GETs get the room metadata.
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		s.handleSocket(w, r)
		return
	}
	s.handleMetadata(w, r)
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade", "err", err)
		return
	}

	addr := clientAddr(r)

	s.mu.Lock()
	id := s.nextConn
	s.nextConn++
	client := &Client{
		ID:       id,
		PlayerID: -1,
		Addr:     addr,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		server:   s,
	}
	s.clients[id] = client
	s.mu.Unlock()

	slog.Info("connection opened", "conn", id, "addr", addr)

	go client.writePump()
	go client.readPump()
}

// clientAddr extracts the peer address used for bans and ratelimiting. The
// first X-Forwarded-For hop wins over the socket address so that connections
// through a reverse proxy do not all share the proxy's address.
func clientAddr(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// readPump feeds inbound frames to the dispatcher until the connection dies.
func (c *Client) readPump() {
	defer func() {
		c.server.dropClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read", "conn", c.ID, "err", err)
			}
			return
		}
		c.server.dispatch(c, frame)
	}
}

// writePump drains the send queue to the socket and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dropClient tears down a connection and, if it was admitted, removes the
// player from the room. Safe to call more than once.
func (s *Server) dropClient(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c.ID]; !ok {
		return
	}
	delete(s.clients, c.ID)
	close(c.send)

	if c.PlayerID < 0 {
		slog.Info("connection closed", "conn", c.ID, "addr", c.Addr)
		return
	}
	s.removePlayer(c.PlayerID)
}
