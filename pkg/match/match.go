// Package match decides whether, and how often, a search phrase occurs in a
// text field.
//
// Two semantics are supported:
//
//   - exact: the whole phrase is a case-sensitive substring of the text.
//   - keyword: the phrase is split on single spaces and any token found in
//     the text, ignoring case, is a match.
//
// Empty input never matches and never panics.
package match

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Matcher applies the match semantics with its own lower-casing state.
// A Matcher must not be shared between goroutines.
type Matcher struct {
	lower cases.Caser
}

// New returns a Matcher ready for use by a single goroutine.
func New() *Matcher {
	return &Matcher{lower: cases.Lower(language.Und)}
}

// Lower returns s lower-cased the same way keyword matching does.
func (m *Matcher) Lower(s string) string {
	return m.lower.String(s)
}

// Keywords splits needle on single spaces and drops empty tokens.
func Keywords(needle string) []string {
	parts := strings.Split(needle, " ")
	keywords := parts[:0]
	for _, p := range parts {
		if p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}

// Contains reports whether needle occurs in haystack.
func (m *Matcher) Contains(haystack, needle string, exact bool) bool {
	if exact {
		return needle != "" && strings.Contains(haystack, needle)
	}

	keywords := Keywords(needle)
	if len(keywords) == 0 {
		return false
	}
	lowered := m.Lower(haystack)
	for _, kw := range keywords {
		if strings.Contains(lowered, m.Lower(kw)) {
			return true
		}
	}
	return false
}

// OccurrenceCount returns the number of non-overlapping occurrences of needle
// in haystack. In keyword mode each token is counted on its own and the
// counts are summed, so a repeated token contributes once per repetition.
func (m *Matcher) OccurrenceCount(haystack, needle string, exact bool) int {
	if exact {
		if needle == "" {
			return 0
		}
		return strings.Count(haystack, needle)
	}

	keywords := Keywords(needle)
	if len(keywords) == 0 {
		return 0
	}
	lowered := m.Lower(haystack)
	total := 0
	for _, kw := range keywords {
		total += strings.Count(lowered, m.Lower(kw))
	}
	return total
}

// Contains is a convenience wrapper using a throwaway Matcher.
func Contains(haystack, needle string, exact bool) bool {
	return New().Contains(haystack, needle, exact)
}

// OccurrenceCount is a convenience wrapper using a throwaway Matcher.
func OccurrenceCount(haystack, needle string, exact bool) int {
	return New().OccurrenceCount(haystack, needle, exact)
}
