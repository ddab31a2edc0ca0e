// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// DateField is the key holding the snapshot timestamp in the flat wire form.
const DateField = "date"

// dateOnlyLayout is accepted on input for history exported without a clock.
const dateOnlyLayout = "2006-01-02"

// Sentinel errors for snapshot decoding.
var (
	ErrMissingDate = errors.New("snapshot date missing")
	ErrInvalidDate = errors.New("snapshot date invalid")
)

// RawSnapshot is one timestamped record of an account's skill fields, keyed
// by "<skill>_xp" and "<skill>_rank". A missing field means no data yet.
type RawSnapshot struct {
	Date   time.Time
	Fields map[string]int64
}

// Clone returns a deep copy of s.
func (s RawSnapshot) Clone() RawSnapshot {
	out := RawSnapshot{Date: s.Date}
	if s.Fields != nil {
		out.Fields = make(map[string]int64, len(s.Fields))
		for k, v := range s.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

// MarshalJSON encodes s in the flat history form: {"date": ..., "mining_xp": ...}.
func (s RawSnapshot) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(s.Fields)+1)
	for k, v := range s.Fields {
		if k == DateField {
			continue
		}
		flat[k] = v
	}
	flat[DateField] = s.Date.UTC().Format(time.RFC3339)
	return json.Marshal(flat)
}

// UnmarshalJSON decodes the flat history form. Keys with non-numeric or
// out-of-range values are skipped; fractional numbers are rounded.
func (s *RawSnapshot) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&flat); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	rawDate, ok := flat[DateField]
	if !ok {
		return ErrMissingDate
	}
	var dateStr string
	if err := json.Unmarshal(rawDate, &dateStr); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(rawDate))
	}
	date, err := ParseDate(dateStr)
	if err != nil {
		return err
	}

	fields := make(map[string]int64, len(flat)-1)
	for k, raw := range flat {
		if k == DateField {
			continue
		}
		if v, ok := decodeNumber(raw); ok {
			fields[k] = v
		}
	}

	s.Date = date
	s.Fields = fields
	return nil
}

func decodeNumber(raw json.RawMessage) (int64, bool) {
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return 0, false
	}
	if v, err := n.Int64(); err == nil {
		return v, true
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	f = math.Round(f)
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// ParseBound parses a range bound. An empty string is an open bound. A bare
// YYYY-MM-DD end bound covers the whole day.
func ParseBound(s string, end bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	if end && isDateOnly(s) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func isDateOnly(s string) bool {
	_, err := time.Parse(dateOnlyLayout, s)
	return err == nil
}

// ParseDate accepts RFC3339 timestamps or bare YYYY-MM-DD dates (UTC midnight).
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// XpRange is the history window handed to the aggregator. Snapshots are in
// ascending date order; the first and last elements are the boundaries.
// Start and End are nil when no data exists for the requested window.
type XpRange struct {
	Name      string
	Start     *time.Time
	End       *time.Time
	Snapshots []RawSnapshot
}

// NewXpRange builds a range whose boundaries are taken from the snapshots.
func NewXpRange(name string, snapshots []RawSnapshot) XpRange {
	r := XpRange{Name: name, Snapshots: snapshots}
	if len(snapshots) > 0 {
		start := snapshots[0].Date
		end := snapshots[len(snapshots)-1].Date
		r.Start = &start
		r.End = &end
	}
	return r
}
