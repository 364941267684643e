// Package settings persists the user's last-used search preferences.
//
// Each preference lives under its own key in a key-value store and falls back
// to its zero value when absent. Values are written as stable string tags;
// integer raw values left by older releases are still understood.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/log"
)

// Keys under which the preferences are stored.
const (
	KeyExactMatch  = "exactMatch"
	KeySearchScope = "searchScope"
	KeyTimeRange   = "timeRange"
	KeySortMode    = "sortMode"
)

// ErrCustomRangeNotStored is returned when saving the custom time range. Its
// bounds are not settings, so a saved custom range could never be resolved.
var ErrCustomRangeNotStored = errors.New("custom time range cannot be saved")

// Older releases stored the scope under this key.
const legacyKeySearchScope = "searchRange"

// KV is the persistence seam for settings.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Integer raw values written by older releases, in their declaration order.
var (
	legacyScopes     = []core.SearchScope{core.TitleAndContent, core.ContentOnly, core.TitleOnly}
	legacyTimeRanges = []core.TimeRange{core.Lifetime, core.LastYear, core.LastMonth, core.LastWeek}
	legacySortModes  = []core.SortMode{core.DateAscending, core.DateDescending, core.TitleAscending, core.TitleDescending}
)

// Snapshot is a point-in-time copy of all preferences.
type Snapshot struct {
	ExactMatch bool             `json:"exact_match" toml:"exact_match"`
	Scope      core.SearchScope `json:"scope" toml:"scope"`
	TimeRange  core.TimeRange   `json:"time_range" toml:"time_range"`
	SortMode   core.SortMode    `json:"sort_mode" toml:"sort_mode"`
}

// Query builds a search query from the snapshot plus ad hoc input.
func (s Snapshot) Query(text string, custom *core.DateRange) core.SearchQuery {
	return core.SearchQuery{
		Text:        text,
		ExactMatch:  s.ExactMatch,
		Scope:       s.Scope,
		TimeRange:   s.TimeRange,
		SortMode:    s.SortMode,
		CustomRange: custom,
	}
}

// Settings gives typed access to the preferences stored in a KV.
type Settings struct {
	kv     KV
	logger *log.Logger
}

// New wraps kv.
func New(kv KV) *Settings {
	return &Settings{kv: kv, logger: log.ForService("settings")}
}

// ExactMatch reports whether phrase matching is on. Defaults to false.
func (s *Settings) ExactMatch(ctx context.Context) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, KeyExactMatch)
	if err != nil || !ok {
		return false, wrapGet(KeyExactMatch, err)
	}
	v, perr := strconv.ParseBool(raw)
	if perr != nil {
		s.logger.Warnf("ignoring invalid %s value %q", KeyExactMatch, raw)
		return false, nil
	}
	return v, nil
}

// SetExactMatch saves the exact match preference.
func (s *Settings) SetExactMatch(ctx context.Context, v bool) error {
	return s.set(ctx, KeyExactMatch, strconv.FormatBool(v))
}

// Scope returns the saved search scope, reading the key used by older
// releases when the current one is absent. Defaults to TitleAndContent.
func (s *Settings) Scope(ctx context.Context) (core.SearchScope, error) {
	raw, ok, err := s.kv.Get(ctx, KeySearchScope)
	if err != nil {
		return core.TitleAndContent, wrapGet(KeySearchScope, err)
	}
	if !ok {
		raw, ok, err = s.kv.Get(ctx, legacyKeySearchScope)
		if err != nil || !ok {
			return core.TitleAndContent, wrapGet(legacyKeySearchScope, err)
		}
	}
	if v, err := core.ParseSearchScope(raw); err == nil {
		return v, nil
	}
	if v, ok := legacyValue(raw, legacyScopes); ok {
		return v, nil
	}
	s.logger.Warnf("ignoring invalid %s value %q", KeySearchScope, raw)
	return core.TitleAndContent, nil
}

// SetScope saves the search scope.
func (s *Settings) SetScope(ctx context.Context, v core.SearchScope) error {
	return s.set(ctx, KeySearchScope, v.String())
}

// TimeRange returns the saved time range. Defaults to Lifetime, which is also
// what a stored custom range degrades to.
func (s *Settings) TimeRange(ctx context.Context) (core.TimeRange, error) {
	raw, ok, err := s.kv.Get(ctx, KeyTimeRange)
	if err != nil || !ok {
		return core.Lifetime, wrapGet(KeyTimeRange, err)
	}
	if v, err := core.ParseTimeRange(raw); err == nil && v != core.Custom {
		return v, nil
	}
	if v, ok := legacyValue(raw, legacyTimeRanges); ok {
		return v, nil
	}
	s.logger.Warnf("ignoring invalid %s value %q", KeyTimeRange, raw)
	return core.Lifetime, nil
}

// SetTimeRange saves the time range. Custom is rejected with
// ErrCustomRangeNotStored.
func (s *Settings) SetTimeRange(ctx context.Context, v core.TimeRange) error {
	if v == core.Custom {
		return ErrCustomRangeNotStored
	}
	return s.set(ctx, KeyTimeRange, v.String())
}

// SortMode returns the saved sort mode. Defaults to Relevance.
func (s *Settings) SortMode(ctx context.Context) (core.SortMode, error) {
	raw, ok, err := s.kv.Get(ctx, KeySortMode)
	if err != nil || !ok {
		return core.Relevance, wrapGet(KeySortMode, err)
	}
	if v, err := core.ParseSortMode(raw); err == nil {
		return v, nil
	}
	if v, ok := legacyValue(raw, legacySortModes); ok {
		return v, nil
	}
	s.logger.Warnf("ignoring invalid %s value %q", KeySortMode, raw)
	return core.Relevance, nil
}

// SetSortMode saves the sort mode.
func (s *Settings) SetSortMode(ctx context.Context, v core.SortMode) error {
	return s.set(ctx, KeySortMode, v.String())
}

// Snapshot reads every preference.
func (s *Settings) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.ExactMatch, err = s.ExactMatch(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.Scope, err = s.Scope(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.TimeRange, err = s.TimeRange(ctx); err != nil {
		return Snapshot{}, err
	}
	if snap.SortMode, err = s.SortMode(ctx); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Apply writes every preference in snap. Nothing is written when snap holds
// the custom time range.
func (s *Settings) Apply(ctx context.Context, snap Snapshot) error {
	if snap.TimeRange == core.Custom {
		return ErrCustomRangeNotStored
	}
	if err := s.SetExactMatch(ctx, snap.ExactMatch); err != nil {
		return err
	}
	if err := s.SetScope(ctx, snap.Scope); err != nil {
		return err
	}
	if err := s.SetTimeRange(ctx, snap.TimeRange); err != nil {
		return err
	}
	return s.SetSortMode(ctx, snap.SortMode)
}

func (s *Settings) set(ctx context.Context, key, value string) error {
	if err := s.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	s.logger.Debugf("%s = %s", key, value)
	return nil
}

func wrapGet(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("reading setting %s: %w", key, err)
}

func legacyValue[T any](raw string, table []T) (T, bool) {
	var zero T
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n >= len(table) {
		return zero, false
	}
	return table[n], true
}
