// Package search is the diary search-and-filter engine.
//
// # Overview
//
// A Searcher reads every entry from an EntryStore and narrows them down in
// three fixed stages, then orders what is left:
//
//   - Date: entries outside the query's time range are dropped. Lifetime
//     skips this stage. Custom uses the query's explicit bounds.
//   - Scope: entries whose title, content, or either (TitleAndContent) do not
//     contain the search text are dropped. Content is normalized first
//     (emoji placeholder escapes decoded, NFC).
//   - Sort: by date, by lower-cased title, or by relevance.
//
// # Matching
//
// Exact matching is a case-sensitive substring test on the whole phrase.
// Keyword matching splits the phrase on spaces and accepts an entry when any
// keyword occurs, ignoring case. An empty phrase matches nothing in either
// mode, so a search with empty text always returns no entries.
//
// # Relevance
//
// The relevance score is the number of occurrences of the search text in the
// scoped field(s); for TitleAndContent the title and content counts are
// added. Higher scores come first and equal scores keep the order the entries
// had after filtering, which is the store's order (oldest first for the
// sqlite store). All sorts are stable.
//
// # Errors
//
// Store failures are reported as ErrStoreUnavailable, a custom range without
// bounds as ErrMissingCustomRange. Both end the call without results.
//
// # Usage
//
//	s := search.New(store, search.WithLocation(loc))
//	q := snap.Query("beach", nil)
//	entries, err := s.Search(ctx, q)
//
// Parsing HTTP parameters:
//
//	q, err := search.ParseQueryParams(r.URL.Query(), snap, loc)
package search
