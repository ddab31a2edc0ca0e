// Package parser normalizes raw history snapshots into per-skill xp and rank.
package parser

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/xptrack/internal/domain/model"
	"github.com/okian/xptrack/internal/domain/skills"
)

// Kind classifies a history field.
type Kind int

// Field kinds.
const (
	KindUnknown Kind = iota
	KindXp
	KindRank
)

func (k Kind) String() string {
	switch k {
	case KindXp:
		return "xp"
	case KindRank:
		return "rank"
	default:
		return "unknown"
	}
}

// Stat is the xp and rank of one skill at one point in time.
type Stat struct {
	Xp   int64
	Rank int64
}

// Snapshot is a normalized RawSnapshot. PerSkill only holds skills that
// appeared in the raw fields; OverallXp sums Xp over tracked skills.
type Snapshot struct {
	Date      time.Time
	PerSkill  map[skills.ID]Stat
	OverallXp int64
}

// Stat returns the stat for id, zero when the skill has no data.
func (s Snapshot) Stat(id skills.ID) Stat {
	return s.PerSkill[id]
}

// Classify maps a field name onto a skill and kind. Fields without a known
// suffix, or whose prefix is not a known skill, report ok=false.
func Classify(field string) (id skills.ID, kind Kind, ok bool) {
	var name string
	switch {
	case strings.HasSuffix(field, skills.RankSuffix):
		name, kind = strings.TrimSuffix(field, skills.RankSuffix), KindRank
	case strings.HasSuffix(field, skills.XpSuffix):
		name, kind = strings.TrimSuffix(field, skills.XpSuffix), KindXp
	default:
		return "", KindUnknown, false
	}
	id = skills.ID(name)
	if !id.Known() {
		return "", KindUnknown, false
	}
	return id, kind, true
}

// Normalize folds the raw fields into a fresh per-skill mapping. The two
// fields of a skill write independent halves of the same slot, so the map
// iteration order cannot change the outcome.
func Normalize(raw model.RawSnapshot) Snapshot {
	per := make(map[skills.ID]Stat)
	for field, value := range raw.Fields {
		id, kind, ok := Classify(field)
		if !ok {
			continue
		}
		per[id] = apply(per[id], kind, value)
	}

	var total int64
	for id, st := range per {
		if id.Valid() {
			total += st.Xp
		}
	}

	return Snapshot{
		Date:      raw.Date,
		PerSkill:  per,
		OverallXp: total,
	}
}

func apply(st Stat, kind Kind, value int64) Stat {
	switch kind {
	case KindXp:
		st.Xp = value
	case KindRank:
		st.Rank = value
	}
	return st
}

// NormalizeAll normalizes every snapshot, preserving order.
func NormalizeAll(raws []model.RawSnapshot) []Snapshot {
	out := make([]Snapshot, len(raws))
	for i, raw := range raws {
		out[i] = Normalize(raw)
	}
	return out
}

// Unrecognized returns the sorted names of fields Normalize ignores.
func Unrecognized(raw model.RawSnapshot) []string {
	var out []string
	for field := range raw.Fields {
		if _, _, ok := Classify(field); !ok {
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}
