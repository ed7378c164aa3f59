package server

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bonkhost/bonk-room/config"
	"github.com/bonkhost/bonk-room/protocol"
)

// testTime pins every test server's clock.
var testTime = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

// testConfig builds a config with every ratelimit off and the state files
// pointed at the test's temp dir. Tests that need a limit set their own.
func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.MaxPlayers = 4
	cfg.Restrictions.Ratelimits = map[string]config.Ratelimit{}
	cfg.BanFile = filepath.Join(t.TempDir(), "banlist.json")
	cfg.ChatLogDir = t.TempDir()
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s, err := NewServer(cfg)
	require.NoError(t, err)
	s.now = func() time.Time { return testTime }
	s.chatlog.now = s.now
	return s
}

// newTestClient registers an in-memory connection. No socket backs it;
// outbound frames pile up in send for the test to drain.
func newTestClient(s *Server, addr string) *Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &Client{
		ID:       s.nextConn,
		PlayerID: -1,
		Addr:     addr,
		send:     make(chan []byte, sendBufferSize),
		server:   s,
	}
	s.nextConn++
	s.clients[c.ID] = c
	return c
}

// joinPayload is the join request body tests send. Level is any so tests can
// exercise both the number and the string encoding clients use.
type joinPayload struct {
	UserName     string          `json:"userName"`
	Guest        bool            `json:"guest"`
	Level        any             `json:"level"`
	Avatar       json.RawMessage `json:"avatar"`
	RoomPassword *string         `json:"roomPassword"`
}

func basicJoin(name string) joinPayload {
	return joinPayload{UserName: name, Level: 5, Avatar: json.RawMessage(`{}`)}
}

// deliver encodes one inbound frame and runs it through the dispatcher, the
// same path a socket read takes.
func deliver(t *testing.T, s *Server, c *Client, op string, args ...any) {
	t.Helper()
	frame, err := protocol.Encode(op, args...)
	require.NoError(t, err)
	s.dispatch(c, frame)
}

// join admits c under name and returns the assigned id. Whatever the join
// queued on c is drained away.
func join(t *testing.T, s *Server, c *Client, name string) int {
	t.Helper()
	deliver(t, s, c, protocol.InJoinRequest, basicJoin(name))
	require.GreaterOrEqual(t, c.PlayerID, 0, "join refused for %q", name)
	drain(t, c)
	return c.PlayerID
}

// packet is one decoded outbound frame.
type packet struct {
	op   string
	args []json.RawMessage
}

// arg returns argument i as raw JSON text.
func (p packet) arg(i int) string {
	return string(p.args[i])
}

// drain empties c's send queue into decoded packets.
func drain(t *testing.T, c *Client) []packet {
	t.Helper()
	var out []packet
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return out
			}
			op, args, err := protocol.Decode(frame)
			require.NoError(t, err)
			out = append(out, packet{op: op, args: args})
		default:
			return out
		}
	}
}

// onePacket asserts exactly one packet is queued on c and returns it.
func onePacket(t *testing.T, c *Client) packet {
	t.Helper()
	pkts := drain(t, c)
	require.Len(t, pkts, 1)
	return pkts[0]
}

// requireError asserts the only queued packet is an ERROR_MESSAGE with code.
func requireError(t *testing.T, c *Client, code string) {
	t.Helper()
	p := onePacket(t, c)
	require.Equal(t, protocol.OutErrorMessage, p.op)
	require.Equal(t, `"`+code+`"`, p.arg(0))
}
