// Package period resolves named history windows such as "week" into
// concrete time bounds.
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for window resolution.
var (
	ErrUnknownPeriod = errors.New("unknown period")
	ErrInvalidWindow = errors.New("invalid window")
)

// Preset is a named, rolling history window.
type Preset string

// Supported presets.
const (
	Day   Preset = "day"
	Week  Preset = "week"
	Month Preset = "month"
	Year  Preset = "year"
	All   Preset = "all"
)

// Presets lists every supported preset.
func Presets() []Preset {
	return []Preset{Day, Week, Month, Year, All}
}

// Parse validates a preset name (case-insensitive).
func Parse(name string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(name)))
	switch p {
	case Day, Week, Month, Year, All:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, name)
}

// Label returns the display name of the preset.
func (p Preset) Label() string {
	switch p {
	case Day:
		return "Last day"
	case Week:
		return "Last week"
	case Month:
		return "Last month"
	case Year:
		return "Last year"
	case All:
		return "All time"
	}
	return string(p)
}

// Window is an inclusive time window. A zero From or To is unbounded.
type Window struct {
	Name string
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside w.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && t.After(w.To) {
		return false
	}
	return true
}

// Resolve returns the window for p ending at now.
func (p Preset) Resolve(now time.Time) Window {
	w := Window{Name: p.Label(), To: now}
	switch p {
	case Day:
		w.From = now.AddDate(0, 0, -1)
	case Week:
		w.From = now.AddDate(0, 0, -7)
	case Month:
		w.From = now.AddDate(0, -1, 0)
	case Year:
		w.From = now.AddDate(-1, 0, 0)
	case All:
		w.To = time.Time{}
	}
	return w
}

// Custom builds an explicit window. Either bound may be zero.
func Custom(from, to time.Time) (Window, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return Window{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow, to.Format(time.RFC3339), from.Format(time.RFC3339))
	}
	return Window{Name: "Custom", From: from, To: to}, nil
}
