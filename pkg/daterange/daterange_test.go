package daterange

import (
	"errors"
	"testing"
	"time"

	"github.com/rubiojr/pocketdiary/pkg/core"
)

func fixedResolver(now time.Time) *Resolver {
	return &Resolver{
		Now:      func() time.Time { return now },
		Location: time.UTC,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveCannedRanges(t *testing.T) {
	r := fixedResolver(time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC))
	today := day(2024, 3, 15)

	tests := []struct {
		name  string
		tr    core.TimeRange
		start time.Time
	}{
		{"last week", core.LastWeek, day(2024, 3, 8)},
		{"last month", core.LastMonth, day(2024, 2, 14)},
		{"last year", core.LastYear, day(2023, 3, 16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := r.Resolve(tt.tr, nil)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if !ok {
				t.Fatal("expected a range")
			}
			if !got.Start.Equal(tt.start) {
				t.Errorf("start = %v, want %v", got.Start, tt.start)
			}
			if !got.End.Equal(today) {
				t.Errorf("end = %v, want %v", got.End, today)
			}
		})
	}
}

func TestLastWeekBoundaries(t *testing.T) {
	r := fixedResolver(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	rng, _, err := r.Resolve(core.LastWeek, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if !rng.Contains(day(2024, 3, 8)) {
		t.Error("entry dated today-7 should be included")
	}
	if rng.Contains(day(2024, 3, 7)) {
		t.Error("entry dated today-8 should be excluded")
	}
	if !rng.Contains(time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)) {
		t.Error("entry later today should be included")
	}
}

func TestResolveLifetime(t *testing.T) {
	r := fixedResolver(time.Now())
	_, ok, err := r.Resolve(core.Lifetime, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ok {
		t.Error("lifetime should not produce a range")
	}
}

func TestResolveCustom(t *testing.T) {
	r := fixedResolver(time.Now())

	_, _, err := r.Resolve(core.Custom, nil)
	if !errors.Is(err, ErrMissingRange) {
		t.Fatalf("expected ErrMissingRange, got %v", err)
	}

	custom := &core.DateRange{
		Start: time.Date(2023, 5, 1, 13, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 5, 31, 8, 0, 0, 0, time.UTC),
	}
	got, ok, err := r.Resolve(core.Custom, custom)
	if err != nil || !ok {
		t.Fatalf("Resolve custom: ok=%v err=%v", ok, err)
	}
	if !got.Start.Equal(day(2023, 5, 1)) || !got.End.Equal(day(2023, 5, 31)) {
		t.Errorf("unexpected custom range %v", got)
	}
}

func TestResolveUnknown(t *testing.T) {
	r := fixedResolver(time.Now())
	if _, _, err := r.Resolve(core.TimeRange(99), nil); !errors.Is(err, core.ErrUnknownTag) {
		t.Errorf("expected ErrUnknownTag, got %v", err)
	}
}
