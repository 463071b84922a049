// Package hours turns raw punch events into elapsed time.
//
// THE PAIRING RULE:
// Punches are sorted by timestamp and walked once. An "in" opens a session,
// the next "out" closes it and the difference is added to the total.
//
//	in 09:00, out 12:00, in 13:00, out 17:00  → 3h + 4h = 7h
//
// Malformed sequences are tolerated rather than rejected:
//   - "out" with no open session contributes nothing
//   - "in" while a session is open replaces the open session's start, so only
//     the most recent "in" pairs with the next "out"
//   - a session still open after the last event runs until "now"
//
// Compute does no date filtering. Callers hand it exactly the punches that
// belong to the window they care about (a day, a week, a month, all time).
package hours

import (
	"cmp"
	"slices"
	"time"

	"github.com/sakif/punchclock/internal/model"
)

// Compute returns the total elapsed hours for the given punches, evaluating
// any still-open session up to now. The input slice is not modified.
func Compute(punches []model.Punch, now time.Time) float64 {
	return Duration(punches, now).Hours()
}

// Duration is Compute without the conversion to fractional hours.
func Duration(punches []model.Punch, now time.Time) time.Duration {
	sorted := Sorted(punches)

	var (
		total  time.Duration
		lastIn *time.Time
	)

	for i := range sorted {
		p := &sorted[i]
		switch p.Type {
		case model.PunchIn:
			lastIn = &p.Timestamp
		case model.PunchOut:
			if lastIn != nil {
				total += p.Timestamp.Sub(*lastIn)
				lastIn = nil
			}
		}
	}

	if lastIn != nil {
		// A session opened in the future (admin edit) must not subtract time.
		if open := now.Sub(*lastIn); open > 0 {
			total += open
		}
	}

	return total
}

// Sorted returns a copy of punches in ascending time order.
//
// Equal timestamps put "in" before "out", so an in/out pair recorded at the
// same instant is a zero-length session regardless of input order.
func Sorted(punches []model.Punch) []model.Punch {
	sorted := slices.Clone(punches)
	slices.SortStableFunc(sorted, func(a, b model.Punch) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(typeRank(a.Type), typeRank(b.Type))
	})
	return sorted
}

func typeRank(t model.PunchType) int {
	if t == model.PunchIn {
		return 0
	}
	return 1
}

// Between returns the punches with from <= timestamp < to, keeping order.
func Between(punches []model.Punch, from, to time.Time) []model.Punch {
	out := make([]model.Punch, 0, len(punches))
	for _, p := range punches {
		if !p.Timestamp.Before(from) && p.Timestamp.Before(to) {
			out = append(out, p)
		}
	}
	return out
}
