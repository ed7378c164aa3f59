package game

// Table holds the room's player slots. Slots are appended as players join and
// nil'd out as they leave, so an id is just the slot index and is never
// reused within a session. Clients rely on that stability.
type Table struct {
	slots []*Player
}

func NewTable() *Table {
	return &Table{}
}

// Allocate appends p to the table and stamps its id.
func (t *Table) Allocate(p *Player) int {
	p.ID = len(t.slots)
	t.slots = append(t.slots, p)
	return p.ID
}

// Get returns the player in slot id, or nil for empty or out-of-range slots.
func (t *Table) Get(id int) *Player {
	if id < 0 || id >= len(t.slots) {
		return nil
	}
	return t.slots[id]
}

// Release empties slot id. Later slots keep their ids.
func (t *Table) Release(id int) {
	if id >= 0 && id < len(t.slots) {
		t.slots[id] = nil
	}
}

// FindByName returns the id of the player with exactly that name, or -1.
func (t *Table) FindByName(name string) int {
	for _, p := range t.slots {
		if p != nil && p.UserName == name {
			return p.ID
		}
	}
	return -1
}

// Count returns the number of occupied slots.
func (t *Table) Count() int {
	n := 0
	for _, p := range t.slots {
		if p != nil {
			n++
		}
	}
	return n
}

// Occupied returns the occupied slots in id order.
func (t *Table) Occupied() []*Player {
	out := make([]*Player, 0, len(t.slots))
	for _, p := range t.slots {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Snapshot returns the slot array the way the wire wants it: one entry per
// id, null where the slot is empty.
func (t *Table) Snapshot() []*Player {
	out := make([]*Player, len(t.slots))
	copy(out, t.slots)
	return out
}
