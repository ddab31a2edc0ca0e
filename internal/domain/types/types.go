// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/xptrack/internal/domain/skills"
)

// Point is one sample of a time series.
type Point struct {
	Date  time.Time `json:"date"`
	Value int64     `json:"value"`
}

// Bar is one skill's value in a bar series.
type Bar struct {
	Skill skills.ID `json:"skill"`
	Value int64     `json:"value"`
}

// SkillDelta is the net change of one skill, or of Overall, across a range.
type SkillDelta struct {
	Skill     skills.ID `json:"skill"`
	XpDelta   int64     `json:"xp_delta"`
	RankDelta int64     `json:"rank_delta"`
}

// Result holds the chart-ready output of a range aggregation.
type Result struct {
	Name  string     `json:"name"`
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`

	OverallRankSeries  []Point `json:"overall_rank_series"`
	OverallXpSeries    []Point `json:"overall_xp_series"`
	SkillXpDeltaBars   []Bar   `json:"skill_xp_delta_bars"`
	SkillRankDeltaBars []Bar   `json:"skill_rank_delta_bars"`

	// Summary always starts with Overall, then follows the skill order.
	Summary []SkillDelta `json:"summary"`
}

// Overall returns the Overall summary entry, if present.
func (r Result) Overall() (SkillDelta, bool) {
	if len(r.Summary) == 0 || r.Summary[0].Skill != skills.Overall {
		return SkillDelta{}, false
	}
	return r.Summary[0], true
}

// Delta returns the summary entry for id.
func (r Result) Delta(id skills.ID) (SkillDelta, bool) {
	for _, d := range r.Summary {
		if d.Skill == id {
			return d, true
		}
	}
	return SkillDelta{}, false
}

// GainEntry represents a gains leaderboard row.
type GainEntry struct {
	Rank      int    `json:"rank"`
	Account   string `json:"account"`
	XpDelta   int64  `json:"xp_delta"`
	RankDelta int64  `json:"rank_delta"`
}
