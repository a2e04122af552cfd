package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/zip"
)

// ErrMissingEntry is returned when a requested artifact is not in the archive.
var ErrMissingEntry = errors.New("archive entry missing")

// Reader gives keyed access to an assembled archive.
type Reader struct {
	zr    *zip.Reader
	files map[string]*zip.File
}

// OpenReader parses archive bytes.
func OpenReader(data []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	return &Reader{zr: zr, files: files}, nil
}

// Version returns the format marker, empty for archives written elsewhere.
func (r *Reader) Version() string { return r.zr.Comment }

func (r *Reader) Has(k Key) bool {
	_, ok := r.files[k.Name()]
	return ok
}

// Read returns the bytes of one entry.
func (r *Reader) Read(k Key) ([]byte, error) {
	f, ok := r.files[k.Name()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntry, k.Name())
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", k.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", k.Name(), err)
	}
	return data, nil
}

// Metadata decodes the text artifact of index i.
func (r *Reader) Metadata(i int) (*Metadata, error) {
	data, err := r.Read(MetadataKey(i))
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", MetadataKey(i).Name(), err)
	}
	return &m, nil
}

// Keys lists every entry that follows the naming contract, sorted by index
// then kind order. Foreign entries are ignored.
func (r *Reader) Keys() []Key {
	var keys []Key
	for _, f := range r.zr.File {
		k, err := ParseName(f.Name)
		if err != nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Index != keys[j].Index {
			return keys[i].Index < keys[j].Index
		}
		return kindOrder[keys[i].Kind] < kindOrder[keys[j].Kind]
	})
	return keys
}

var kindOrder = map[Kind]int{KindPreview: 0, KindMetadata: 1, KindAfter: 2}
