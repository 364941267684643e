// Package archive exports and imports a whole diary as a single JSON
// document, optionally zstd-compressed.
package archive

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/rubiojr/pocketdiary/pkg/core"
)

// FormatVersion is written to every archive. Import rejects newer versions.
const FormatVersion = 1

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// ErrUnsupportedVersion is returned for archives written by a newer release.
var ErrUnsupportedVersion = errors.New("unsupported archive version")

type Document struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	Entries    []*core.Entry `json:"entries"`
}

// Export writes entries to w. With compress set the JSON is zstd framed.
func Export(w io.Writer, entries []*core.Entry, compress bool) error {
	if entries == nil {
		entries = []*core.Entry{}
	}
	doc := Document{
		Version:    FormatVersion,
		ExportedAt: time.Now().UTC(),
		Entries:    entries,
	}

	if !compress {
		return encode(w, doc)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating zstd encoder: %w", err)
	}
	if err := encode(enc, doc); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finishing zstd stream: %w", err)
	}
	return nil
}

func encode(w io.Writer, doc Document) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(doc); err != nil {
		return fmt.Errorf("encoding archive: %w", err)
	}
	return nil
}

// Import reads an archive written by Export. Compression is detected from the
// zstd magic number. Entries missing an ID get the one derived from their day.
func Import(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading archive: %w", err)
	}

	var src io.Reader = br
	if bytes.Equal(head, zstdMagic) {
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder: %w", err)
		}
		defer dec.Close()
		src = dec
	}

	var doc Document
	if err := json.NewDecoder(src).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding archive: %w", err)
	}
	if doc.Version > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	entries := doc.Entries[:0]
	for _, e := range doc.Entries {
		if e == nil {
			continue
		}
		if e.ID == "" {
			e.ID = core.EntryID(e.Date)
		}
		entries = append(entries, e)
	}
	doc.Entries = entries
	return &doc, nil
}
