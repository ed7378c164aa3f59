package game

// GameSettings is the room's shared settings block. The json tags are the
// wire keys and must not change; the yaml tags let a config file override the
// startup defaults with the same spelling.
type GameSettings struct {
	// Map is the encoded map string the client understands.
	Map string `json:"map" yaml:"map"`
	// GT is the game type.
	GT int `json:"gt" yaml:"gt"`
	// WL is the number of rounds needed to win.
	WL int `json:"wl" yaml:"wl"`
	// Q marks a quickplay room.
	Q bool `json:"q" yaml:"q"`
	// TL locks team changes to the host.
	TL bool `json:"tl" yaml:"tl"`
	// TEA turns teams on.
	TEA bool `json:"tea" yaml:"tea"`
	// GA is the engine tag ("b" or "f").
	GA string `json:"ga" yaml:"ga"`
	// MO is the mode tag ("b", "bs", "ar", ...).
	MO string `json:"mo" yaml:"mo"`
	// Bal maps player ids (decimal strings, since they travel as JSON
	// object keys) to a handicap percentage. A missing entry means 0.
	Bal map[string]int `json:"bal" yaml:"bal"`
}

// Clone returns a copy that shares nothing with the original. Bal is the
// only reference field.
func (g GameSettings) Clone() GameSettings {
	out := g
	out.Bal = make(map[string]int, len(g.Bal))
	for k, v := range g.Bal {
		out.Bal[k] = v
	}
	return out
}
