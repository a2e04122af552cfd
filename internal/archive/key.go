// Package archive defines the naming contract, writer and reader for the
// per-run artifact bundle, plus the snapshot stores that keep the latest one.
package archive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is one of the three artifacts a recommendation can produce.
type Kind string

const (
	KindPreview  Kind = "preview"
	KindAfter    Kind = "after"
	KindMetadata Kind = "metadata"
)

// ErrInvalidName is returned by ParseName for names outside the contract.
var ErrInvalidName = errors.New("archive entry name does not follow the naming contract")

var kindPattern = map[Kind]struct{ prefix, ext string }{
	KindPreview:  {"bb_image_", ".png"},
	KindMetadata: {"text_", ".json"},
	KindAfter:    {"mod_image_", ".png"},
}

// Key addresses one artifact by recommendation index and kind.
type Key struct {
	Index int
	Kind  Kind
}

// Name renders the entry name stored in the archive.
func (k Key) Name() string {
	p, ok := kindPattern[k.Kind]
	if !ok {
		return ""
	}
	return p.prefix + strconv.Itoa(k.Index) + p.ext
}

func (k Key) String() string { return k.Name() }

// ParseName is the inverse of Key.Name.
func ParseName(name string) (Key, error) {
	for kind, p := range kindPattern {
		if !strings.HasPrefix(name, p.prefix) || !strings.HasSuffix(name, p.ext) {
			continue
		}
		digits := strings.TrimSuffix(strings.TrimPrefix(name, p.prefix), p.ext)
		if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
			continue
		}
		idx, err := strconv.Atoi(digits)
		if err != nil || strconv.Itoa(idx) != digits {
			continue
		}
		return Key{Index: idx, Kind: kind}, nil
	}
	return Key{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
}

// PreviewKey, MetadataKey and AfterKey are shorthands used by both ends.
func PreviewKey(i int) Key  { return Key{Index: i, Kind: KindPreview} }
func MetadataKey(i int) Key { return Key{Index: i, Kind: KindMetadata} }
func AfterKey(i int) Key    { return Key{Index: i, Kind: KindAfter} }
