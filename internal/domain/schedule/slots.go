package schedule

import (
	"time"
)

// Slot is one candidate start time at the coaching's duration stride.
type Slot struct {
	Start     time.Time
	Available bool
}

type SlotParams struct {
	Rule     *WorkingHourRule
	Year     int
	Month    time.Month
	Day      int
	Location *time.Location
	Duration time.Duration
	Busy     []Interval
	Now      time.Time
	// MinLeadTime pushes the earliest bookable start beyond Now.
	MinLeadTime time.Duration
}

// BuildSlots resolves the candidate slots for one date against the merged
// busy set. Pure and safe for concurrent use.
//
// A candidate is available iff it fits entirely inside the rule window, does
// not intersect any busy interval, and starts strictly after now plus the
// minimum lead time. A partial remainder window shorter than the duration is
// dropped, never offered.
func BuildSlots(p SlotParams) []Slot {
	if p.Rule == nil || !p.Rule.Enabled || p.Duration <= 0 {
		return nil
	}

	windowStart := p.Rule.Start.At(p.Year, p.Month, p.Day, p.Location)
	windowEnd := p.Rule.End.At(p.Year, p.Month, p.Day, p.Location)
	if !windowStart.Before(windowEnd) {
		return nil
	}

	merged := Merge(p.Busy)
	cutoff := p.Now.Add(p.MinLeadTime)

	var slots []Slot
	for start := windowStart; !start.Add(p.Duration).After(windowEnd); start = start.Add(p.Duration) {
		candidate := Interval{Start: start, End: start.Add(p.Duration)}
		slots = append(slots, Slot{
			Start:     start,
			Available: start.After(cutoff) && !intersectsAny(candidate, merged),
		})
	}
	return slots
}

func intersectsAny(candidate Interval, merged []Interval) bool {
	// merged is sorted; sizes here are small enough that a scan beats
	// maintaining a binary search.
	for _, iv := range merged {
		if iv.Start.After(candidate.End) {
			return false
		}
		if candidate.Overlaps(iv) {
			return true
		}
	}
	return false
}
