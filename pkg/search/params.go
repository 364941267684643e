package search

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/settings"
)

// ParseQueryParams builds a SearchQuery from HTTP query parameters. Anything
// not given falls back to defaults, normally the persisted settings.
//
// Supported parameters:
//   - q: search text
//   - exact: true/false
//   - scope: title_and_content, content_only, title_only
//   - range: lifetime, last_week, last_month, last_year, custom
//   - sort: relevance, date_asc, date_desc, title_asc, title_desc
//   - from, to: custom bounds in YYYY-MM-DD form, in loc
//
// from and to must be given together. When they are given and range is not,
// the range becomes custom. A custom range without bounds is not an error
// here; Search reports it.
//
// Example:
//
//	q, err := ParseQueryParams(r.URL.Query(), snap, time.Local)
//	if err != nil {
//		// bad parameter
//	}
func ParseQueryParams(values map[string][]string, defaults settings.Snapshot, loc *time.Location) (core.SearchQuery, error) {
	q := defaults.Query("", nil)

	first := func(name string) string {
		if v := values[name]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	q.Text = first("q")

	if raw := first("exact"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return q, fmt.Errorf("invalid exact value %q: %w", raw, err)
		}
		q.ExactMatch = v
	}

	if raw := first("scope"); raw != "" {
		v, err := core.ParseSearchScope(raw)
		if err != nil {
			return q, err
		}
		q.Scope = v
	}

	rangeGiven := false
	if raw := first("range"); raw != "" {
		v, err := core.ParseTimeRange(raw)
		if err != nil {
			return q, err
		}
		q.TimeRange = v
		rangeGiven = true
	}

	if raw := first("sort"); raw != "" {
		v, err := core.ParseSortMode(raw)
		if err != nil {
			return q, err
		}
		q.SortMode = v
	}

	custom, err := ParseCustomRange(first("from"), first("to"), loc)
	if err != nil {
		return q, err
	}
	if custom != nil {
		q.CustomRange = custom
		if !rangeGiven {
			q.TimeRange = core.Custom
		}
	}

	return q, nil
}

// ParseCustomRange parses optional YYYY-MM-DD bounds. Both empty yields nil.
func ParseCustomRange(from, to string, loc *time.Location) (*core.DateRange, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("custom range needs both from and to dates")
	}
	start, err := core.ParseDay(from, loc)
	if err != nil {
		return nil, err
	}
	end, err := core.ParseDay(to, loc)
	if err != nil {
		return nil, err
	}
	return &core.DateRange{Start: start, End: end}, nil
}
