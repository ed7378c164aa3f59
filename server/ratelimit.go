package server

import (
	"sync"
	"time"

	"github.com/bonkhost/bonk-room/config"
)

// Action names one ratelimit bucket class. Limits are keyed by client
// address, not player id, so they survive rejoining.
type Action string

const (
	ActionJoining            Action = "joining"
	ActionChatting           Action = "chatting"
	ActionChangingTeams      Action = "changingTeams"
	ActionReadying           Action = "readying"
	ActionTransferringHost   Action = "transferringHost"
	ActionChangingMode       Action = "changingMode"
	ActionChangingMap        Action = "changingMap"
	ActionStartGameCountdown Action = "startGameCountdown"
	ActionStartingEndingGame Action = "startingEndingGame"
)

// RateLimiter counts actions per client address inside rolling windows.
//
// Each (address, action) pair keeps one counter and two one-shot timers. The
// timeframe timer clears a window that never filled; the restore timer, armed
// the moment the counter fills, clears it unconditionally. A filled counter
// refuses hits until the restore timer fires. The counter therefore never
// leaves [0, amount].
type RateLimiter struct {
	mu      sync.Mutex
	configs map[string]config.Ratelimit
	addrs   map[string]map[Action]*bucket
}

type bucket struct {
	count     int
	timeframe *time.Timer
	restore   *time.Timer
}

// NewRateLimiter builds a limiter from the per-action windows. Actions with
// no window, or an amount of zero, are never limited.
func NewRateLimiter(configs map[string]config.Ratelimit) *RateLimiter {
	return &RateLimiter{
		configs: configs,
		addrs:   make(map[string]map[Action]*bucket),
	}
}

// Hit counts one action for addr and reports whether it may proceed. The
// hit that fills the counter is itself refused.
func (rl *RateLimiter) Hit(addr string, action Action) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cfg, ok := rl.configs[string(action)]
	if !ok || cfg.Amount <= 0 {
		return true
	}

	byAction, ok := rl.addrs[addr]
	if !ok {
		byAction = make(map[Action]*bucket)
		rl.addrs[addr] = byAction
	}
	b, ok := byAction[action]
	if !ok {
		b = &bucket{}
		byAction[action] = b
	}

	if b.count >= cfg.Amount {
		return false
	}

	if b.count == 0 {
		// First hit of a fresh window. A stale timer from an old window
		// may still be pending; replacing it makes its callback a no-op.
		if b.timeframe != nil {
			b.timeframe.Stop()
		}
		var t *time.Timer
		t = time.AfterFunc(time.Duration(cfg.Timeframe)*time.Second, func() {
			rl.expireTimeframe(addr, action, t)
		})
		b.timeframe = t
	}

	b.count++
	if b.count == cfg.Amount {
		if b.restore != nil {
			b.restore.Stop()
		}
		var t *time.Timer
		t = time.AfterFunc(time.Duration(cfg.Restore)*time.Second, func() {
			rl.expireRestore(addr, action, t)
		})
		b.restore = t
		return false
	}
	return true
}

// expireTimeframe ends a window: a counter that never filled starts over.
// A filled counter is left for the restore timer.
func (rl *RateLimiter) expireTimeframe(addr string, action Action, t *time.Timer) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.lookup(addr, action)
	if b == nil || b.timeframe != t {
		return
	}
	b.timeframe = nil
	if b.count < rl.configs[string(action)].Amount {
		b.count = 0
	}
}

// expireRestore reopens a filled counter.
func (rl *RateLimiter) expireRestore(addr string, action Action, t *time.Timer) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b := rl.lookup(addr, action)
	if b == nil || b.restore != t {
		return
	}
	b.restore = nil
	b.count = 0
}

func (rl *RateLimiter) lookup(addr string, action Action) *bucket {
	if byAction, ok := rl.addrs[addr]; ok {
		return byAction[action]
	}
	return nil
}
