package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DayLayout is the canonical textual form of an entry's calendar day.
const DayLayout = "2006-01-02"

// entryNamespace seeds the name-based UUIDs derived from an entry's day.
var entryNamespace = uuid.MustParse("6f0c3c52-5d0e-4b7a-9a3e-3f6b1d2c8e41")

// Entry represents a single diary record. Entries are keyed by calendar day:
// a diary never holds two entries for the same date.
//
// The search engine treats entries as read-only values. Image, ImagePositionTop
// and BackgroundColor are carried through untouched for the display layer.
type Entry struct {
	ID               string    `json:"id"`
	Date             time.Time `json:"date"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	BackgroundColor  string    `json:"background_color,omitempty"`
	Image            []byte    `json:"image,omitempty"`
	ImagePositionTop bool      `json:"image_position_top,omitempty"`
}

// NewEntry creates an entry for the given day. The date is normalized to
// midnight in its own location and the ID is derived from the day key.
func NewEntry(date time.Time, title, content string) *Entry {
	day := StartOfDay(date, date.Location())
	return &Entry{
		ID:      EntryID(day),
		Date:    day,
		Title:   title,
		Content: content,
	}
}

// Key returns the day key in YYYY-MM-DD form.
func (e *Entry) Key() string {
	return e.Date.Format(DayLayout)
}

// DayKey returns the day packed as year*10000 + month*100 + day.
func (e *Entry) DayKey() int {
	return DayKey(e.Date)
}

// Summary returns a concise one-line description of the entry.
func (e *Entry) Summary() string {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%s %s", e.Key(), title)
}

// EntryID returns the stable identifier for the entry stored on day.
func EntryID(day time.Time) string {
	return uuid.NewSHA1(entryNamespace, []byte(day.Format(DayLayout))).String()
}

// DayKey packs a date's calendar day into a sortable integer.
func DayKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// StartOfDay truncates t to midnight of its calendar day in loc.
// A nil loc keeps t's own location.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDay parses a YYYY-MM-DD day in loc.
func ParseDay(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(DayLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", raw, err)
	}
	return day, nil
}
