// Package skills holds the closed, ordered catalogue of tracked skills and the
// field naming convention used by persisted snapshot history.
package skills

import "strings"

// ID identifies a tracked skill, or the synthetic Overall pseudo-skill.
type ID string

// Tracked skills.
const (
	Agility      ID = "agility"
	Attack       ID = "attack"
	Construction ID = "construction"
	Cooking      ID = "cooking"
	Crafting     ID = "crafting"
	Defence      ID = "defence"
	Farming      ID = "farming"
	Firemaking   ID = "firemaking"
	Fishing      ID = "fishing"
	Fletching    ID = "fletching"
	Herblore     ID = "herblore"
	Hitpoints    ID = "hitpoints"
	Hunter       ID = "hunter"
	Magic        ID = "magic"
	Mining       ID = "mining"
	Prayer       ID = "prayer"
	Ranged       ID = "ranged"
	Runecraft    ID = "runecraft"
	Slayer       ID = "slayer"
	Smithing     ID = "smithing"
	Strength     ID = "strength"
	Thieving     ID = "thieving"
	Woodcutting  ID = "woodcutting"

	// Overall is the aggregate of every tracked skill. It is not part of All.
	Overall ID = "overall"
)

// Field suffixes of the history wire format.
const (
	XpSuffix   = "_xp"
	RankSuffix = "_rank"
)

// all is the canonical display order. Bar series and summaries follow it.
var all = [...]ID{
	Agility, Attack, Construction, Cooking, Crafting, Defence, Farming,
	Firemaking, Fishing, Fletching, Herblore, Hitpoints, Hunter, Magic,
	Mining, Prayer, Ranged, Runecraft, Slayer, Smithing, Strength,
	Thieving, Woodcutting,
}

var index = func() map[ID]int {
	m := make(map[ID]int, len(all))
	for i, id := range all {
		m[id] = i
	}
	return m
}()

// Count is the number of tracked skills.
const Count = len(all)

// All returns the tracked skills in canonical order. The returned slice is a
// fresh copy and may be modified by the caller.
func All() []ID {
	out := make([]ID, len(all))
	copy(out, all[:])
	return out
}

// Valid reports whether id is one of the tracked skills. Overall is not.
func (id ID) Valid() bool {
	_, ok := index[id]
	return ok
}

// Known reports whether id is a tracked skill or Overall.
func (id ID) Known() bool {
	return id == Overall || id.Valid()
}

// Index returns the position of id in the canonical order, or -1.
func (id ID) Index() int {
	if i, ok := index[id]; ok {
		return i
	}
	return -1
}

// Label returns the display label, e.g. "Runecraft".
func (id ID) Label() string {
	s := string(id)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// XpField returns the history field holding the experience of id.
func (id ID) XpField() string { return string(id) + XpSuffix }

// RankField returns the history field holding the rank of id.
func (id ID) RankField() string { return string(id) + RankSuffix }

// Parse converts a name into a known ID.
func Parse(name string) (ID, bool) {
	id := ID(strings.ToLower(strings.TrimSpace(name)))
	if !id.Known() {
		return "", false
	}
	return id, true
}
