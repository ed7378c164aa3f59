// Package game holds the room's pure state: player slots, game settings and
// the room record. Nothing here touches the network; the server package owns
// all serialization and broadcasting.
package game

import (
	"encoding/json"
	"strconv"
)

// Team numbers as the client encodes them.
const (
	TeamSpectate = 0
	TeamFFA      = 1
	TeamRed      = 2
	TeamBlue     = 3
	TeamGreen    = 4
	TeamYellow   = 5
)

// ValidTeam reports whether t is one of the client team numbers.
func ValidTeam(t int) bool {
	return t >= TeamSpectate && t <= TeamYellow
}

// PeerID fills every peer slot in the dialect. Peer-to-peer negotiation is
// not implemented and clients expect this exact literal.
const PeerID = "invalid"

// CensoredLevel replaces a player's level when the room censors levels.
const CensoredLevel Level = "-"

// Player is one occupied room slot. The json tags are the keys of the player
// objects inside the SERVER_INFORM slot array.
type Player struct {
	ID       int             `json:"-"`
	PeerID   string          `json:"peerId"`
	UserName string          `json:"userName"`
	Guest    bool            `json:"guest"`
	Level    Level           `json:"level"`
	Team     int             `json:"team"`
	Ready    bool            `json:"ready"`
	Tabbed   bool            `json:"tabbed"`
	Avatar   json.RawMessage `json:"avatar"`
}

// Level is the client-reported experience level. Clients send it as a number
// or a string, it is not authenticated, and the censor setting replaces it
// with "-". All-digit values go back out as JSON numbers so unmodified
// clients can compare them; everything else goes out as a string.
type Level string

// Numeric reports whether the level is made of digits only.
func (l Level) Numeric() bool {
	if l == "" {
		return false
	}
	for _, r := range l {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Int returns the level as an integer and whether it parses as one.
// Levels that do not parse skip the room's min/max checks.
func (l Level) Int() (int, bool) {
	n, err := strconv.Atoi(string(l))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (l Level) MarshalJSON() ([]byte, error) {
	// A leading zero would make the bare digits invalid JSON, so "007"
	// stays a string.
	if l.Numeric() && (len(l) == 1 || l[0] != '0') {
		return []byte(l), nil
	}
	return json.Marshal(string(l))
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = Level(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*l = Level(n.String())
		return nil
	}
	// Anything else (null, objects) is treated as no level at all rather
	// than failing the packet.
	*l = ""
	return nil
}
