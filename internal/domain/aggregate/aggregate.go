// Package aggregate computes skill progress across a history range and shapes
// it into chart-ready series.
//
// Rank is inverted in this domain: a smaller rank number is better. Ordinary
// skill rank deltas are exposed as end minus start. The Overall summary entry
// is sign-flipped before exposure; the Overall rank time series is not.
package aggregate

import (
	"time"

	"github.com/okian/xptrack/internal/domain/model"
	"github.com/okian/xptrack/internal/domain/parser"
	"github.com/okian/xptrack/internal/domain/skills"
	"github.com/okian/xptrack/internal/domain/types"
)

// Aggregate computes the deltas between the first and last snapshot of r.
// The snapshots must already be filtered to the window and sorted ascending.
func Aggregate(r model.XpRange) types.Result {
	res := types.Result{
		Name:               r.Name,
		Start:              copyTime(r.Start),
		End:                copyTime(r.End),
		OverallRankSeries:  make([]types.Point, 0, len(r.Snapshots)),
		OverallXpSeries:    make([]types.Point, 0, len(r.Snapshots)),
		SkillXpDeltaBars:   []types.Bar{},
		SkillRankDeltaBars: []types.Bar{},
		Summary:            []types.SkillDelta{},
	}
	if len(r.Snapshots) == 0 {
		return res
	}

	snaps := parser.NormalizeAll(r.Snapshots)
	start, end := snaps[0], snaps[len(snaps)-1]

	for _, s := range snaps {
		res.OverallRankSeries = append(res.OverallRankSeries, types.Point{Date: s.Date, Value: s.Stat(skills.Overall).Rank})
		res.OverallXpSeries = append(res.OverallXpSeries, types.Point{Date: s.Date, Value: s.OverallXp})
	}

	all := skills.All()
	deltas := make([]types.SkillDelta, 0, len(all))
	res.SkillXpDeltaBars = make([]types.Bar, 0, len(all))
	res.SkillRankDeltaBars = make([]types.Bar, 0, len(all))
	for _, id := range all {
		d := skillDelta(id, start.Stat(id), end.Stat(id), false)
		deltas = append(deltas, d)
		res.SkillXpDeltaBars = append(res.SkillXpDeltaBars, types.Bar{Skill: id, Value: d.XpDelta})
		res.SkillRankDeltaBars = append(res.SkillRankDeltaBars, types.Bar{Skill: id, Value: d.RankDelta})
	}

	overallStart := parser.Stat{Xp: start.OverallXp, Rank: start.Stat(skills.Overall).Rank}
	overallEnd := parser.Stat{Xp: end.OverallXp, Rank: end.Stat(skills.Overall).Rank}

	res.Summary = make([]types.SkillDelta, 0, len(deltas)+1)
	res.Summary = append(res.Summary, skillDelta(skills.Overall, overallStart, overallEnd, true))
	res.Summary = append(res.Summary, deltas...)
	return res
}

// skillDelta returns end minus start. With invert set the rank delta is
// negated, which is how the Overall entry is exposed.
func skillDelta(id skills.ID, start, end parser.Stat, invert bool) types.SkillDelta {
	rank := end.Rank - start.Rank
	if invert {
		rank = -rank
	}
	return types.SkillDelta{
		Skill:     id,
		XpDelta:   end.Xp - start.Xp,
		RankDelta: rank,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
