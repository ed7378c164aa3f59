package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonkhost/bonk-room/config"
)

func limiterWith(action string, rl config.Ratelimit) *RateLimiter {
	return NewRateLimiter(map[string]config.Ratelimit{action: rl})
}

func TestHitFillsAndRefuses(t *testing.T) {
	rl := limiterWith("chatting", config.Ratelimit{Amount: 3, Timeframe: 60, Restore: 60})

	assert.True(t, rl.Hit("a", ActionChatting))
	assert.True(t, rl.Hit("a", ActionChatting))
	assert.False(t, rl.Hit("a", ActionChatting), "the filling hit is itself refused")
	assert.False(t, rl.Hit("a", ActionChatting))
}

func TestUnconfiguredActionNeverLimited(t *testing.T) {
	rl := NewRateLimiter(map[string]config.Ratelimit{})
	for i := 0; i < 100; i++ {
		require.True(t, rl.Hit("a", ActionChatting))
	}
}

func TestZeroAmountNeverLimited(t *testing.T) {
	rl := limiterWith("chatting", config.Ratelimit{Amount: 0, Timeframe: 1, Restore: 1})
	for i := 0; i < 100; i++ {
		require.True(t, rl.Hit("a", ActionChatting))
	}
}

func TestCountersIndependentPerActionAndAddress(t *testing.T) {
	rl := NewRateLimiter(map[string]config.Ratelimit{
		"chatting":      {Amount: 2, Timeframe: 60, Restore: 60},
		"changingTeams": {Amount: 2, Timeframe: 60, Restore: 60},
	})

	assert.True(t, rl.Hit("a", ActionChatting))
	assert.False(t, rl.Hit("a", ActionChatting))

	assert.True(t, rl.Hit("a", ActionChangingTeams))
	assert.True(t, rl.Hit("b", ActionChatting))
}

func TestTimeframeResetsUnfilledCounter(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps through real limiter windows")
	}
	rl := limiterWith("chatting", config.Ratelimit{Amount: 3, Timeframe: 1, Restore: 60})

	assert.True(t, rl.Hit("a", ActionChatting))
	assert.True(t, rl.Hit("a", ActionChatting))

	time.Sleep(1100 * time.Millisecond)

	// Had the counter survived the window, the next two hits would fill it.
	assert.True(t, rl.Hit("a", ActionChatting))
	assert.True(t, rl.Hit("a", ActionChatting))
}

func TestFilledCounterSurvivesTimeframe(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps through real limiter windows")
	}
	rl := limiterWith("chatting", config.Ratelimit{Amount: 2, Timeframe: 1, Restore: 60})

	assert.True(t, rl.Hit("a", ActionChatting))
	assert.False(t, rl.Hit("a", ActionChatting))

	time.Sleep(1100 * time.Millisecond)

	// The timeframe timer fired, but a filled counter is the restore
	// timer's job alone.
	assert.False(t, rl.Hit("a", ActionChatting))
}

func TestRestoreReopensCounter(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps through real limiter windows")
	}
	rl := limiterWith("chatting", config.Ratelimit{Amount: 2, Timeframe: 60, Restore: 1})

	assert.True(t, rl.Hit("a", ActionChatting))
	assert.False(t, rl.Hit("a", ActionChatting))

	time.Sleep(1100 * time.Millisecond)

	// Restore fired with the old timeframe timer still pending; the fresh
	// window must start cleanly regardless.
	assert.True(t, rl.Hit("a", ActionChatting))
	assert.False(t, rl.Hit("a", ActionChatting))
}
