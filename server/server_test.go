package server

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonkhost/bonk-room/game"
	"github.com/bonkhost/bonk-room/protocol"
)

func TestLeaveBroadcastsPlayerLeft(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	alice := newTestClient(s, "10.0.0.1")
	bob := newTestClient(s, "10.0.0.2")
	join(t, s, alice, "alice")
	join(t, s, bob, "bob")
	drain(t, alice)

	tick := s.room.TickCount(testTime)
	s.dropClient(bob)

	p := onePacket(t, alice)
	require.Equal(t, protocol.OutPlayerLeft, p.op)
	require.Len(t, p.args, 2)
	assert.Equal(t, "1", p.arg(0))
	assert.Equal(t, strconv.Itoa(tick), p.arg(1))

	assert.Equal(t, 0, s.room.HostID)
	assert.Nil(t, s.players.Get(1))
	assert.Equal(t, 1, s.players.Count())
	assert.True(t, s.chatlog.Contains("* bob has left the game"))
}

func TestHostLeaveReassignsFirstOccupied(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	alice := newTestClient(s, "10.0.0.1")
	bob := newTestClient(s, "10.0.0.2")
	carol := newTestClient(s, "10.0.0.3")
	join(t, s, alice, "alice")
	join(t, s, bob, "bob")
	join(t, s, carol, "carol")
	drain(t, bob)
	drain(t, carol)

	tick := s.room.TickCount(testTime)
	s.dropClient(alice)

	p := onePacket(t, bob)
	require.Equal(t, protocol.OutHostLeft, p.op)
	require.Len(t, p.args, 3)
	assert.Equal(t, "0", p.arg(0))
	assert.Equal(t, "1", p.arg(1))
	assert.Equal(t, strconv.Itoa(tick), p.arg(2))

	assert.Equal(t, 1, s.room.HostID)
	assert.True(t, s.chatlog.Contains("* bob is now the game host"))
}

func TestHostLeaveWithoutAutoAssignClearsHost(t *testing.T) {
	cfg := testConfig(t)
	cfg.AutoAssignHost = false
	s := newTestServer(t, cfg)
	alice := newTestClient(s, "10.0.0.1")
	bob := newTestClient(s, "10.0.0.2")
	join(t, s, alice, "alice")
	join(t, s, bob, "bob")

	// Nobody was auto-assigned; hand the role out by admin op first.
	require.Equal(t, game.NoHost, s.room.HostID)
	require.NoError(t, s.TransferHost(0))
	drain(t, alice)
	drain(t, bob)

	s.dropClient(alice)

	p := onePacket(t, bob)
	require.Equal(t, protocol.OutPlayerLeft, p.op)
	assert.Equal(t, game.NoHost, s.room.HostID)
}

func TestBroadcastsAreFIFOPerRecipient(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	alice := newTestClient(s, "10.0.0.1")
	bob := newTestClient(s, "10.0.0.2")
	join(t, s, alice, "alice")
	join(t, s, bob, "bob")
	drain(t, alice)

	for _, msg := range []string{"one", "two", "three"} {
		deliver(t, s, alice, protocol.InChatMessage, map[string]any{"message": msg})
	}

	pkts := drain(t, bob)
	require.Len(t, pkts, 3)
	for i, want := range []string{`"one"`, `"two"`, `"three"`} {
		assert.Equal(t, protocol.OutChatMessage, pkts[i].op)
		assert.Equal(t, want, pkts[i].arg(1))
	}
}

func TestFullSendBufferDropsFrame(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	alice := newTestClient(s, "10.0.0.1")
	bob := newTestClient(s, "10.0.0.2")
	join(t, s, alice, "alice")
	join(t, s, bob, "bob")
	drain(t, alice)

	for i := 0; i < sendBufferSize; i++ {
		alice.queue([]byte(`["20",0,"x"]`), protocol.OutChatMessage)
	}

	// The broadcast must not block on alice's full buffer; bob still gets
	// his copy.
	deliver(t, s, bob, protocol.InChatMessage, map[string]any{"message": "hi"})

	require.Len(t, drain(t, alice), sendBufferSize)
	p := onePacket(t, bob)
	require.Equal(t, protocol.OutChatMessage, p.op)
	assert.Equal(t, `"hi"`, p.arg(1))
}

func TestDropClientIsIdempotent(t *testing.T) {
	s := newTestServer(t, testConfig(t))
	alice := newTestClient(s, "10.0.0.1")
	bob := newTestClient(s, "10.0.0.2")
	join(t, s, alice, "alice")
	join(t, s, bob, "bob")
	drain(t, alice)

	s.dropClient(bob)
	s.dropClient(bob)

	require.Len(t, drain(t, alice), 1)
	assert.Equal(t, 1, s.players.Count())
}
