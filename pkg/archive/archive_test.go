package archive

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rubiojr/pocketdiary/pkg/core"
)

func testEntries() []*core.Entry {
	a := core.NewEntry(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Beach", "Great day \U0001F30A")
	a.Image = []byte{0xff, 0xd8, 0xff}
	a.ImagePositionTop = true
	b := core.NewEntry(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), "", "no title")
	b.BackgroundColor = "#123456"
	return []*core.Entry{a, b}
}

func TestRoundTrip(t *testing.T) {
	for _, compress := range []bool{false, true} {
		var buf bytes.Buffer
		if err := Export(&buf, testEntries(), compress); err != nil {
			t.Fatalf("compress=%v: Export: %v", compress, err)
		}

		isZstd := bytes.HasPrefix(buf.Bytes(), zstdMagic)
		if isZstd != compress {
			t.Errorf("compress=%v: zstd framing = %v", compress, isZstd)
		}

		doc, err := Import(&buf)
		if err != nil {
			t.Fatalf("compress=%v: Import: %v", compress, err)
		}
		if doc.Version != FormatVersion {
			t.Errorf("unexpected version %d", doc.Version)
		}
		if diff := cmp.Diff(testEntries(), doc.Entries); diff != "" {
			t.Errorf("compress=%v: entries mismatch (-want +got):\n%s", compress, diff)
		}
	}
}

func TestExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, nil, false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"entries": []`) {
		t.Errorf("expected empty entries array, got %s", buf.String())
	}
}

func TestImportFillsIDs(t *testing.T) {
	doc, err := Import(strings.NewReader(`{"version":1,"entries":[{"date":"2024-03-03T00:00:00Z","title":"x"},null]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(doc.Entries))
	}
	if doc.Entries[0].ID != core.EntryID(doc.Entries[0].Date) {
		t.Errorf("expected derived ID, got %q", doc.Entries[0].ID)
	}
}

func TestImportErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		is    error
	}{
		{"garbage", "not json at all", nil},
		{"empty", "", nil},
		{"newer version", `{"version":99,"entries":[]}`, ErrUnsupportedVersion},
		{"truncated zstd", string(zstdMagic) + "junk", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
		})
	}
}
