package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/go-cmp/cmp"
	"github.com/rubiojr/pocketdiary/pkg/archive"
	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/daterange"
)

var testNow = time.Date(2024, 6, 20, 15, 0, 0, 0, time.UTC)

func entry(date, title, content string) *core.Entry {
	d, err := time.ParseInLocation(core.DayLayout, date, time.UTC)
	if err != nil {
		panic(err)
	}
	return core.NewEntry(d, title, content)
}

func staticStore(entries ...*core.Entry) EntryStore {
	return EntryStoreFunc(func(context.Context) ([]*core.Entry, error) {
		return entries, nil
	})
}

func newTestSearcher(store EntryStore, opts ...Option) *Searcher {
	resolver := &daterange.Resolver{
		Now:      func() time.Time { return testNow },
		Location: time.UTC,
	}
	return New(store, append([]Option{WithResolver(resolver)}, opts...)...)
}

func keys(entries []*core.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Key()
	}
	return out
}

func TestSearchEndToEnd(t *testing.T) {
	beach := entry("2024-01-01", "Beach", "Great day at the beach")
	office := entry("2024-06-15", "Office", "Boring beach-themed meeting")
	s := newTestSearcher(staticStore(office, beach))

	got, err := s.Search(context.Background(), core.SearchQuery{
		Text:      "beach",
		Scope:     core.TitleAndContent,
		TimeRange: core.Lifetime,
		SortMode:  core.Relevance,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if diff := cmp.Diff([]string{"2024-01-01", "2024-06-15"}, keys(got)); diff != "" {
		t.Errorf("result order mismatch (-want +got):\n%s", diff)
	}
	if got[0] != beach {
		t.Error("expected results to reference the store's entries, not copies")
	}
}

func TestScopeFilters(t *testing.T) {
	e1 := entry("2024-01-01", "sunset walk", "nothing here")
	e2 := entry("2024-01-02", "monday", "a sunset over the bay")
	e3 := entry("2024-01-03", "sunset", "another sunset")
	e4 := entry("2024-01-04", "rain", "stayed in")
	store := staticStore(e1, e2, e3, e4)
	s := newTestSearcher(store)

	tests := []struct {
		name  string
		scope core.SearchScope
		want  []string
	}{
		{"title only", core.TitleOnly, []string{"2024-01-01", "2024-01-03"}},
		{"content only", core.ContentOnly, []string{"2024-01-02", "2024-01-03"}},
		{"title and content union", core.TitleAndContent, []string{"2024-01-01", "2024-01-02", "2024-01-03"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(context.Background(), core.SearchQuery{
				Text:     "sunset",
				Scope:    tt.scope,
				SortMode: core.DateAscending,
			})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if diff := cmp.Diff(tt.want, keys(got)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnionHasNoDuplicates(t *testing.T) {
	both := entry("2024-02-02", "Picnic", "picnic in the park")
	s := newTestSearcher(staticStore(both))

	got, err := s.Search(context.Background(), core.SearchQuery{Text: "picnic"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(got))
	}
}

func TestRelevanceIsStableOnTies(t *testing.T) {
	a := entry("2024-03-01", "a", "tea")
	b := entry("2024-03-02", "b", "tea tea")
	c := entry("2024-03-03", "c", "tea")
	d := entry("2024-03-04", "d", "Tea")
	s := newTestSearcher(staticStore(a, b, c, d))

	for run := 0; run < 5; run++ {
		got, err := s.Search(context.Background(), core.SearchQuery{
			Text:     "tea",
			Scope:    core.ContentOnly,
			SortMode: core.Relevance,
		})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		want := []string{"2024-03-02", "2024-03-01", "2024-03-03", "2024-03-04"}
		if diff := cmp.Diff(want, keys(got)); diff != "" {
			t.Fatalf("run %d: mismatch (-want +got):\n%s", run, diff)
		}
	}
}

func TestRelevanceFollowsScope(t *testing.T) {
	titleHeavy := entry("2024-04-01", "run run run", "run")
	contentHeavy := entry("2024-04-02", "run", "run run run run run")
	s := newTestSearcher(staticStore(titleHeavy, contentHeavy))

	tests := []struct {
		name  string
		scope core.SearchScope
		want  []string
	}{
		{"title only ranks by title count", core.TitleOnly, []string{"2024-04-01", "2024-04-02"}},
		{"content only ranks by content count", core.ContentOnly, []string{"2024-04-02", "2024-04-01"}},
		{"title and content sums both", core.TitleAndContent, []string{"2024-04-02", "2024-04-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(context.Background(), core.SearchQuery{Text: "run", Scope: tt.scope})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if diff := cmp.Diff(tt.want, keys(got)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if got := s.Score(titleHeavy, core.SearchQuery{Text: "run"}); got != 4 {
		t.Errorf("expected summed score 4, got %d", got)
	}
}

func TestSortModes(t *testing.T) {
	e1 := entry("2024-05-03", "banana", "fruit")
	e2 := entry("2024-05-01", "Apple", "fruit")
	e3 := entry("2024-05-02", "cherry", "fruit")
	s := newTestSearcher(staticStore(e1, e2, e3))

	tests := []struct {
		mode core.SortMode
		want []string
	}{
		{core.DateAscending, []string{"2024-05-01", "2024-05-02", "2024-05-03"}},
		{core.DateDescending, []string{"2024-05-03", "2024-05-02", "2024-05-01"}},
		{core.TitleAscending, []string{"2024-05-01", "2024-05-03", "2024-05-02"}},
		{core.TitleDescending, []string{"2024-05-02", "2024-05-03", "2024-05-01"}},
		{core.Relevance, []string{"2024-05-03", "2024-05-01", "2024-05-02"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			got, err := s.Search(context.Background(), core.SearchQuery{Text: "fruit", SortMode: tt.mode})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if diff := cmp.Diff(tt.want, keys(got)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDateFilter(t *testing.T) {
	// testNow is 2024-06-20
	inWeek := entry("2024-06-13", "edge", "walk")
	outWeek := entry("2024-06-12", "past edge", "walk")
	today := entry("2024-06-20", "today", "walk")
	lastYear := entry("2023-06-22", "old", "walk")
	ancient := entry("2020-01-01", "ancient", "walk")
	s := newTestSearcher(staticStore(ancient, lastYear, outWeek, inWeek, today))

	tests := []struct {
		name string
		tr   core.TimeRange
		want []string
	}{
		{"lifetime keeps all", core.Lifetime, []string{"2020-01-01", "2023-06-22", "2024-06-12", "2024-06-13", "2024-06-20"}},
		{"last week inclusive", core.LastWeek, []string{"2024-06-13", "2024-06-20"}},
		{"last month", core.LastMonth, []string{"2024-06-12", "2024-06-13", "2024-06-20"}},
		{"last year", core.LastYear, []string{"2023-06-22", "2024-06-12", "2024-06-13", "2024-06-20"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(context.Background(), core.SearchQuery{
				Text:      "walk",
				TimeRange: tt.tr,
				SortMode:  core.DateAscending,
			})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if diff := cmp.Diff(tt.want, keys(got)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDateFilterAcrossZones(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}

	// Entries written elsewhere keep the zone they were dated in.
	doc, err := archive.Import(strings.NewReader(`{"version":1,"entries":[
		{"date":"2024-06-12T00:00:00Z","title":"walk"},
		{"date":"2024-06-13T00:00:00Z","title":"walk"},
		{"date":"2024-06-20T00:00:00Z","title":"walk"}
	]}`))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	resolver := &daterange.Resolver{
		Now:      func() time.Time { return time.Date(2024, 6, 20, 9, 0, 0, 0, ny) },
		Location: ny,
	}
	s := New(staticStore(doc.Entries...), WithResolver(resolver))

	got, err := s.Search(context.Background(), core.SearchQuery{
		Text:      "walk",
		TimeRange: core.LastWeek,
		SortMode:  core.DateAscending,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if diff := cmp.Diff([]string{"2024-06-13", "2024-06-20"}, keys(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomRange(t *testing.T) {
	s := newTestSearcher(staticStore(
		entry("2024-01-01", "a", "x"),
		entry("2024-01-15", "b", "x"),
		entry("2024-02-01", "c", "x"),
	))

	got, err := s.Search(context.Background(), core.SearchQuery{
		Text:      "x",
		TimeRange: core.Custom,
		CustomRange: &core.DateRange{
			Start: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		SortMode: core.DateAscending,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if diff := cmp.Diff([]string{"2024-01-01", "2024-01-15"}, keys(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomRangeWithoutBoundsFails(t *testing.T) {
	s := newTestSearcher(staticStore(entry("2024-01-01", "a", "x")))

	got, err := s.Search(context.Background(), core.SearchQuery{Text: "x", TimeRange: core.Custom})
	if !errors.Is(err, ErrMissingCustomRange) {
		t.Fatalf("expected ErrMissingCustomRange, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}
}

func TestStoreFailure(t *testing.T) {
	cause := errors.New("database is locked")
	s := newTestSearcher(EntryStoreFunc(func(context.Context) ([]*core.Entry, error) {
		return nil, cause
	}))

	got, err := s.Search(context.Background(), core.SearchQuery{Text: "x"})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial result, got %v", got)
	}
}

func TestEmptyTextMatchesNothing(t *testing.T) {
	s := newTestSearcher(staticStore(
		entry("2024-01-01", "a", "x"),
		entry("2024-01-02", "", ""),
	))

	for _, exact := range []bool{false, true} {
		got, err := s.Search(context.Background(), core.SearchQuery{Text: "", ExactMatch: exact})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("exact=%v: expected empty non-nil result, got %v", exact, got)
		}
	}
}

func TestExactMatchIsCaseSensitive(t *testing.T) {
	s := newTestSearcher(staticStore(
		entry("2024-01-01", "Beach Day", ""),
		entry("2024-01-02", "beach day", ""),
	))

	got, err := s.Search(context.Background(), core.SearchQuery{Text: "Beach", ExactMatch: true, Scope: core.TitleOnly})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if diff := cmp.Diff([]string{"2024-01-01"}, keys(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestContentIsNormalized(t *testing.T) {
	s := newTestSearcher(staticStore(entry("2024-01-01", "", `went surfing \u{1F30A}`)))

	got, err := s.Search(context.Background(), core.SearchQuery{Text: "🌊", Scope: core.ContentOnly})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the escaped emoji to match, got %d results", len(got))
	}

	raw := newTestSearcher(staticStore(entry("2024-01-01", "", `went surfing \u{1F30A}`)), WithNormalizer(nil))
	got, err = raw.Search(context.Background(), core.SearchQuery{Text: "🌊", Scope: core.ContentOnly})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no match without normalization, got %d", len(got))
	}
}

func TestScoreUsesSearcherNormalizer(t *testing.T) {
	e := entry("2024-01-01", "", "sun")
	expand := func(c string) string { return c + " sun sun" }
	s := newTestSearcher(staticStore(e), WithNormalizer(expand))

	q := core.SearchQuery{Text: "sun", Scope: core.ContentOnly}
	if got := s.Score(e, q); got != 3 {
		t.Errorf("expected score over normalized content 3, got %d", got)
	}
	if got := newTestSearcher(staticStore(e)).Score(e, q); got != 1 {
		t.Errorf("expected default score 1, got %d", got)
	}
}

func TestSearchDoesNotMutateEntries(t *testing.T) {
	e := entry("2024-01-01", "Title", `Content \u{41}`)
	before := *e
	s := newTestSearcher(staticStore(e))

	if _, err := s.Search(context.Background(), core.SearchQuery{Text: "a", SortMode: core.TitleAscending}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if diff := cmp.Diff(before, *e); diff != "" {
		t.Errorf("entry mutated (-before +after):\n%s", diff)
	}
}

func TestCancelledContext(t *testing.T) {
	s := newTestSearcher(staticStore(entry("2024-01-01", "a", "x")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Search(ctx, core.SearchQuery{Text: "x"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConcurrentSearches(t *testing.T) {
	entries := []*core.Entry{
		entry("2024-01-01", "Tea time", "green tea"),
		entry("2024-01-02", "Coffee", "black coffee and tea"),
		entry("2024-01-03", "Water", "just water"),
	}
	s := newTestSearcher(staticStore(entries...))

	queries := []core.SearchQuery{
		{Text: "tea", SortMode: core.Relevance},
		{Text: "coffee water", SortMode: core.TitleDescending},
		{Text: "TEA", ExactMatch: true},
	}
	want := make([][]string, len(queries))
	for i, q := range queries {
		got, err := s.Search(context.Background(), q)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		want[i] = keys(got)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, q := range queries {
				got, err := s.Search(context.Background(), q)
				if err != nil {
					errs <- err.Error()
					return
				}
				if diff := cmp.Diff(want[i], keys(got)); diff != "" {
					errs <- diff
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
