package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/klauspost/compress/zip"
)

// FormatMarker is stored as the zip comment of every bundle.
const FormatMarker = "hazardlens-archive/v1"

// Metadata is the text artifact of one recommendation.
type Metadata struct {
	Rationale    string `json:"rationale"`
	Modification string `json:"modification"`
	Cost         string `json:"cost"`
	Installation string `json:"installation"`
}

// Record holds whatever artifacts a single recommendation produced.
// Nil slices mean the artifact is absent.
type Record struct {
	Index    int
	Metadata *Metadata
	Preview  []byte
	After    []byte
}

// Bundle is an assembled archive.
type Bundle struct {
	Data    []byte
	Entries []string
}

// Assemble writes records into a deflated zip. Entries are ordered by index,
// then preview, metadata, after. Duplicate indices are rejected.
func Assemble(records []Record) (*Bundle, error) {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Index == sorted[i-1].Index {
			return nil, fmt.Errorf("duplicate record index %d", sorted[i].Index)
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := zw.SetComment(FormatMarker); err != nil {
		return nil, fmt.Errorf("setting archive comment: %w", err)
	}

	modified := time.Now().UTC()
	var entries []string
	add := func(k Key, data []byte) error {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     k.Name(),
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("creating entry %s: %w", k.Name(), err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing entry %s: %w", k.Name(), err)
		}
		entries = append(entries, k.Name())
		return nil
	}

	for _, r := range sorted {
		if r.Preview != nil {
			if err := add(PreviewKey(r.Index), r.Preview); err != nil {
				return nil, err
			}
		}
		if r.Metadata != nil {
			text, err := json.MarshalIndent(r.Metadata, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("encoding metadata %d: %w", r.Index, err)
			}
			if err := add(MetadataKey(r.Index), text); err != nil {
				return nil, err
			}
		}
		if r.After != nil {
			if err := add(AfterKey(r.Index), r.After); err != nil {
				return nil, err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	if entries == nil {
		entries = []string{}
	}
	return &Bundle{Data: buf.Bytes(), Entries: entries}, nil
}
