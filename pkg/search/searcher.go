package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/daterange"
	"github.com/rubiojr/pocketdiary/pkg/log"
	"github.com/rubiojr/pocketdiary/pkg/match"
	"github.com/rubiojr/pocketdiary/pkg/textnorm"
)

var (
	// ErrStoreUnavailable wraps any failure to read the entry store.
	ErrStoreUnavailable = errors.New("entry store unavailable")

	// ErrMissingCustomRange is returned when a custom time range lacks bounds.
	ErrMissingCustomRange = daterange.ErrMissingRange
)

// EntryStore is the read side of the diary persistence layer.
type EntryStore interface {
	FetchAllEntries(ctx context.Context) ([]*core.Entry, error)
}

// EntryStoreFunc adapts a function to the EntryStore interface.
type EntryStoreFunc func(ctx context.Context) ([]*core.Entry, error)

func (f EntryStoreFunc) FetchAllEntries(ctx context.Context) ([]*core.Entry, error) {
	return f(ctx)
}

// Normalizer turns stored content into the form matched against.
type Normalizer func(string) string

// Searcher filters and orders diary entries.
//
// A Searcher holds no per-call state and is safe for concurrent use; every
// Search call works over its own snapshot of the store.
type Searcher struct {
	store     EntryStore
	resolver  *daterange.Resolver
	normalize Normalizer
	logger    *log.Logger
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithResolver sets the date range resolver, e.g. one with a fixed clock.
func WithResolver(r *daterange.Resolver) Option {
	return func(s *Searcher) { s.resolver = r }
}

// WithLocation resolves days in loc using the wall clock.
func WithLocation(loc *time.Location) Option {
	return func(s *Searcher) { s.resolver = daterange.New(loc) }
}

// WithNormalizer replaces the content normalizer. A nil n disables normalization.
func WithNormalizer(n Normalizer) Option {
	return func(s *Searcher) {
		if n == nil {
			n = func(c string) string { return c }
		}
		s.normalize = n
	}
}

// WithLogger overrides the component logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Searcher) { s.logger = l }
}

// New creates a Searcher over store.
func New(store EntryStore, opts ...Option) *Searcher {
	s := &Searcher{
		store:     store,
		resolver:  daterange.New(time.Local),
		normalize: textnorm.Content,
		logger:    log.ForService("search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// candidate pairs an entry with its normalized content so normalization runs
// once per entry per search.
type candidate struct {
	entry   *core.Entry
	content string
}

// Search runs q against the store:
//
//  1. fetch every entry
//  2. keep entries inside the query's time range (skipped for Lifetime)
//  3. keep entries matching in the query's scope
//  4. order by the query's sort mode
//
// Errors are terminal: no partial results are returned with an error. An
// empty result is a valid outcome and is returned as an empty, non-nil slice.
func (s *Searcher) Search(ctx context.Context, q core.SearchQuery) ([]*core.Entry, error) {
	entries, err := s.store.FetchAllEntries(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	s.logger.Debugf("fetched %d entries", len(entries))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err = s.filterByDate(entries, q)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := match.New()
	candidates := s.filterByScope(m, entries, q)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sortCandidates(m, candidates, q)

	results := make([]*core.Entry, len(candidates))
	for i, c := range candidates {
		results[i] = c.entry
	}
	s.logger.Debugf("query %q scope=%s range=%s sort=%s: %d results", q.Text, q.Scope, q.TimeRange, q.SortMode, len(results))
	return results, nil
}

func (s *Searcher) filterByDate(entries []*core.Entry, q core.SearchQuery) ([]*core.Entry, error) {
	rng, ok, err := s.resolver.Resolve(q.TimeRange, q.CustomRange)
	if err != nil {
		return nil, err
	}
	if !ok {
		return entries, nil
	}

	filtered := make([]*core.Entry, 0, len(entries))
	for _, e := range entries {
		if rng.Contains(e.Date) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *Searcher) filterByScope(m *match.Matcher, entries []*core.Entry, q core.SearchQuery) []candidate {
	titleOnly := func(c candidate) bool { return m.Contains(c.entry.Title, q.Text, q.ExactMatch) }
	contentOnly := func(c candidate) bool { return m.Contains(c.content, q.Text, q.ExactMatch) }

	all := make([]candidate, len(entries))
	for i, e := range entries {
		all[i] = candidate{entry: e, content: s.normalize(e.Content)}
	}

	switch q.Scope {
	case core.TitleOnly:
		return keep(all, titleOnly)
	case core.ContentOnly:
		return keep(all, contentOnly)
	default:
		return union(keep(all, titleOnly), keep(all, contentOnly), all)
	}
}

func keep(all []candidate, pred func(candidate) bool) []candidate {
	kept := make([]candidate, 0, len(all))
	for _, c := range all {
		if pred(c) {
			kept = append(kept, c)
		}
	}
	return kept
}

// union merges two filtered sets, keyed by day, keeping each entry once in
// the order it appears in all.
func union(a, b, all []candidate) []candidate {
	selected := make(map[string]bool, len(a)+len(b))
	for _, c := range a {
		selected[c.entry.Key()] = true
	}
	for _, c := range b {
		selected[c.entry.Key()] = true
	}

	merged := make([]candidate, 0, len(selected))
	for _, c := range all {
		key := c.entry.Key()
		if selected[key] {
			merged = append(merged, c)
			delete(selected, key)
		}
	}
	return merged
}

func sortCandidates(m *match.Matcher, cs []candidate, q core.SearchQuery) {
	switch q.SortMode {
	case core.DateAscending:
		sort.SliceStable(cs, func(i, j int) bool { return cs[i].entry.Date.Before(cs[j].entry.Date) })
	case core.DateDescending:
		sort.SliceStable(cs, func(i, j int) bool { return cs[i].entry.Date.After(cs[j].entry.Date) })
	case core.TitleAscending, core.TitleDescending:
		titles := make(map[*core.Entry]string, len(cs))
		for _, c := range cs {
			titles[c.entry] = m.Lower(c.entry.Title)
		}
		desc := q.SortMode == core.TitleDescending
		sort.SliceStable(cs, func(i, j int) bool {
			if desc {
				return titles[cs[i].entry] > titles[cs[j].entry]
			}
			return titles[cs[i].entry] < titles[cs[j].entry]
		})
	default:
		scores := make(map[*core.Entry]int, len(cs))
		for _, c := range cs {
			scores[c.entry] = score(m, c, q)
		}
		sort.SliceStable(cs, func(i, j int) bool { return scores[cs[i].entry] > scores[cs[j].entry] })
	}
}

// score counts occurrences of the query text in the fields the scope covers.
// TitleAndContent sums both fields.
func score(m *match.Matcher, c candidate, q core.SearchQuery) int {
	switch q.Scope {
	case core.TitleOnly:
		return m.OccurrenceCount(c.entry.Title, q.Text, q.ExactMatch)
	case core.ContentOnly:
		return m.OccurrenceCount(c.content, q.Text, q.ExactMatch)
	default:
		return m.OccurrenceCount(c.entry.Title, q.Text, q.ExactMatch) +
			m.OccurrenceCount(c.content, q.Text, q.ExactMatch)
	}
}

// Score returns the relevance score of e for q, normalizing content the same
// way Search does.
func (s *Searcher) Score(e *core.Entry, q core.SearchQuery) int {
	return score(match.New(), candidate{entry: e, content: s.normalize(e.Content)}, q)
}
