package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoomInGame(t *testing.T) {
	r := NewRoom("test room", "", GameSettings{})
	assert.False(t, r.InGame())

	r.GameStartTime = time.Now().UnixMilli()
	assert.True(t, r.InGame())

	r.GameStartTime = 0
	assert.False(t, r.InGame())
}

func TestRoomTickCount(t *testing.T) {
	r := NewRoom("test room", "", GameSettings{})
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r.GameStartTime = start.UnixMilli()

	// 30 ticks per second.
	assert.Equal(t, 0, r.TickCount(start))
	assert.Equal(t, 30, r.TickCount(start.Add(time.Second)))
	assert.Equal(t, 90, r.TickCount(start.Add(3*time.Second)))
	assert.Equal(t, 15, r.TickCount(start.Add(500*time.Millisecond)))
}

func TestGameSettingsClone(t *testing.T) {
	g := GameSettings{
		Map: "ILAcJA",
		GT:  2,
		WL:  3,
		GA:  "b",
		MO:  "b",
		Bal: map[string]int{"0": 50},
	}

	c := g.Clone()
	c.Bal["1"] = -30
	c.Map = "other"

	assert.Equal(t, map[string]int{"0": 50}, g.Bal)
	assert.Equal(t, "ILAcJA", g.Map)
	assert.Equal(t, map[string]int{"0": 50, "1": -30}, c.Bal)
}
