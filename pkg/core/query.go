package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownTag is returned when parsing an enum tag that is not recognized.
var ErrUnknownTag = errors.New("unknown tag")

// SearchScope selects which fields of an entry the search text is matched against.
type SearchScope int

const (
	TitleAndContent SearchScope = iota
	ContentOnly
	TitleOnly
)

// TimeRange selects the window of days a search covers.
type TimeRange int

const (
	Lifetime TimeRange = iota
	LastWeek
	LastMonth
	LastYear
	Custom
)

// SortMode selects the ordering of search results.
type SortMode int

const (
	Relevance SortMode = iota
	DateAscending
	DateDescending
	TitleAscending
	TitleDescending
)

type enumLabel struct {
	tag  string
	desc string
}

var scopeLabels = map[SearchScope]enumLabel{
	TitleAndContent: {"title_and_content", "Title and Content"},
	ContentOnly:     {"content_only", "Content only"},
	TitleOnly:       {"title_only", "Title only"},
}

var timeRangeLabels = map[TimeRange]enumLabel{
	Lifetime:  {"lifetime", "All"},
	LastWeek:  {"last_week", "Previous 7 days"},
	LastMonth: {"last_month", "Previous 30 days"},
	LastYear:  {"last_year", "Previous 365 days"},
	Custom:    {"custom", "Custom range"},
}

var sortModeLabels = map[SortMode]enumLabel{
	Relevance:       {"relevance", "Most relevant first"},
	DateAscending:   {"date_asc", "Earlier → Later"},
	DateDescending:  {"date_desc", "Later → Earlier"},
	TitleAscending:  {"title_asc", "Title A → Z"},
	TitleDescending: {"title_desc", "Title Z → A"},
}

// SearchScopes lists every scope in declaration order.
func SearchScopes() []SearchScope { return []SearchScope{TitleAndContent, ContentOnly, TitleOnly} }

// TimeRanges lists every time range in declaration order.
func TimeRanges() []TimeRange { return []TimeRange{Lifetime, LastWeek, LastMonth, LastYear, Custom} }

// SortModes lists every sort mode in declaration order.
func SortModes() []SortMode {
	return []SortMode{Relevance, DateAscending, DateDescending, TitleAscending, TitleDescending}
}

func (s SearchScope) String() string      { return scopeLabels[s].tag }
func (s SearchScope) Description() string { return scopeLabels[s].desc }

func (s SearchScope) MarshalText() ([]byte, error) {
	if _, ok := scopeLabels[s]; !ok {
		return nil, fmt.Errorf("search scope %d: %w", int(s), ErrUnknownTag)
	}
	return []byte(s.String()), nil
}

func (s *SearchScope) UnmarshalText(text []byte) error {
	v, err := ParseSearchScope(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSearchScope parses a scope tag such as "title_only".
func ParseSearchScope(tag string) (SearchScope, error) {
	for v, l := range scopeLabels {
		if l.tag == tag {
			return v, nil
		}
	}
	return TitleAndContent, fmt.Errorf("search scope %q: %w", tag, ErrUnknownTag)
}

func (r TimeRange) String() string      { return timeRangeLabels[r].tag }
func (r TimeRange) Description() string { return timeRangeLabels[r].desc }

func (r TimeRange) MarshalText() ([]byte, error) {
	if _, ok := timeRangeLabels[r]; !ok {
		return nil, fmt.Errorf("time range %d: %w", int(r), ErrUnknownTag)
	}
	return []byte(r.String()), nil
}

func (r *TimeRange) UnmarshalText(text []byte) error {
	v, err := ParseTimeRange(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseTimeRange parses a time range tag such as "last_week".
func ParseTimeRange(tag string) (TimeRange, error) {
	for v, l := range timeRangeLabels {
		if l.tag == tag {
			return v, nil
		}
	}
	return Lifetime, fmt.Errorf("time range %q: %w", tag, ErrUnknownTag)
}

func (m SortMode) String() string      { return sortModeLabels[m].tag }
func (m SortMode) Description() string { return sortModeLabels[m].desc }

func (m SortMode) MarshalText() ([]byte, error) {
	if _, ok := sortModeLabels[m]; !ok {
		return nil, fmt.Errorf("sort mode %d: %w", int(m), ErrUnknownTag)
	}
	return []byte(m.String()), nil
}

func (m *SortMode) UnmarshalText(text []byte) error {
	v, err := ParseSortMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseSortMode parses a sort mode tag such as "date_desc".
func ParseSortMode(tag string) (SortMode, error) {
	for v, l := range sortModeLabels {
		if l.tag == tag {
			return v, nil
		}
	}
	return Relevance, fmt.Errorf("sort mode %q: %w", tag, ErrUnknownTag)
}

// DateRange is an inclusive interval of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls on a day within the range, bounds included.
// Days are compared by their calendar date, each time read in its own
// location, so an entry dated 2024-06-13 in UTC is on 2024-06-13 for a range
// resolved in any other zone. Time of day is ignored.
func (r DateRange) Contains(t time.Time) bool {
	day := DayKey(t)
	return day >= DayKey(r.Start) && day <= DayKey(r.End)
}

func (r DateRange) String() string {
	return r.Start.Format(DayLayout) + ".." + r.End.Format(DayLayout)
}

// SearchQuery describes a single search invocation. It is built by the caller
// from the persisted settings plus ad hoc input and never mutated afterwards.
type SearchQuery struct {
	Text        string      `json:"text"`
	ExactMatch  bool        `json:"exact_match"`
	Scope       SearchScope `json:"scope"`
	TimeRange   TimeRange   `json:"time_range"`
	SortMode    SortMode    `json:"sort_mode"`
	CustomRange *DateRange  `json:"custom_range,omitempty"`
}
