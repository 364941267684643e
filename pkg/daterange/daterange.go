// Package daterange turns a symbolic time range into a concrete, inclusive
// interval of calendar days anchored on today.
package daterange

import (
	"errors"
	"fmt"
	"time"

	"github.com/rubiojr/pocketdiary/pkg/core"
)

// ErrMissingRange is returned when a custom time range is requested without bounds.
var ErrMissingRange = errors.New("custom time range requires explicit bounds")

// Resolver maps time ranges to day intervals.
type Resolver struct {
	// Now returns the current instant. Defaults to time.Now.
	Now func() time.Time
	// Location is the timezone days are computed in. Defaults to time.Local.
	Location *time.Location
}

// New returns a Resolver bound to the wall clock in loc.
func New(loc *time.Location) *Resolver {
	return &Resolver{Now: time.Now, Location: loc}
}

// Today returns midnight of the current day.
func (r *Resolver) Today() time.Time {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return core.StartOfDay(now(), r.location())
}

func (r *Resolver) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// Resolve returns the interval for tr. The boolean is false for Lifetime,
// meaning no date filtering applies. custom is consulted only for Custom and
// is returned with both bounds truncated to their day.
func (r *Resolver) Resolve(tr core.TimeRange, custom *core.DateRange) (core.DateRange, bool, error) {
	today := r.Today()

	switch tr {
	case core.Lifetime:
		return core.DateRange{}, false, nil
	case core.LastWeek:
		return core.DateRange{Start: today.AddDate(0, 0, -7), End: today}, true, nil
	case core.LastMonth:
		return core.DateRange{Start: today.AddDate(0, 0, -30), End: today}, true, nil
	case core.LastYear:
		return core.DateRange{Start: today.AddDate(0, 0, -365), End: today}, true, nil
	case core.Custom:
		if custom == nil {
			return core.DateRange{}, false, ErrMissingRange
		}
		loc := r.location()
		return core.DateRange{
			Start: core.StartOfDay(custom.Start, loc),
			End:   core.StartOfDay(custom.End, loc),
		}, true, nil
	default:
		return core.DateRange{}, false, fmt.Errorf("time range %d: %w", int(tr), core.ErrUnknownTag)
	}
}
