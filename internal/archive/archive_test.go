package archive

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meta(mod string) *Metadata {
	return &Metadata{Rationale: "why " + mod, Modification: mod, Cost: "$20", Installation: "DIY"}
}

func TestAssemble_OrderAndNames(t *testing.T) {
	b, err := Assemble([]Record{
		{Index: 3, Metadata: meta("c"), Preview: []byte("p3"), After: []byte("a3")},
		{Index: 1, Metadata: meta("a"), Preview: []byte("p1"), After: []byte("a1")},
		{Index: 2, Metadata: meta("b"), Preview: []byte("p2"), After: []byte("a2")},
	})
	require.NoError(t, err)

	want := []string{
		"bb_image_1.png", "text_1.json", "mod_image_1.png",
		"bb_image_2.png", "text_2.json", "mod_image_2.png",
		"bb_image_3.png", "text_3.json", "mod_image_3.png",
	}
	assert.Equal(t, want, b.Entries)

	zr, err := zip.NewReader(bytes.NewReader(b.Data), int64(len(b.Data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 9)
	for i, f := range zr.File {
		assert.Equal(t, want[i], f.Name)
		assert.Equal(t, zip.Deflate, f.Method)
	}
	assert.Equal(t, FormatMarker, zr.Comment)
}

func TestAssemble_SkipsAbsentArtifacts(t *testing.T) {
	b, err := Assemble([]Record{
		{Index: 1, Metadata: meta("a"), Preview: []byte("p1"), After: []byte("a1")},
		{Index: 2, Metadata: meta("b")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bb_image_1.png", "text_1.json", "mod_image_1.png", "text_2.json"}, b.Entries)
}

func TestAssemble_Empty(t *testing.T) {
	b, err := Assemble(nil)
	require.NoError(t, err)
	assert.Empty(t, b.Entries)

	r, err := OpenReader(b.Data)
	require.NoError(t, err)
	assert.Empty(t, r.Keys())
	assert.Equal(t, FormatMarker, r.Version())
}

func TestAssemble_DuplicateIndex(t *testing.T) {
	_, err := Assemble([]Record{{Index: 1, Metadata: meta("a")}, {Index: 1, Metadata: meta("b")}})
	assert.Error(t, err)
}

func TestAssemble_MetadataFormat(t *testing.T) {
	b, err := Assemble([]Record{{Index: 1, Metadata: meta("grab bar")}})
	require.NoError(t, err)

	r, err := OpenReader(b.Data)
	require.NoError(t, err)
	raw, err := r.Read(MetadataKey(1))
	require.NoError(t, err)

	want := "{\n  \"rationale\": \"why grab bar\",\n  \"modification\": \"grab bar\",\n  \"cost\": \"$20\",\n  \"installation\": \"DIY\"\n}"
	assert.Equal(t, want, string(raw))

	var m map[string]string
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Len(t, m, 4)
}

func TestReader_ReadAndMissing(t *testing.T) {
	b, err := Assemble([]Record{
		{Index: 1, Metadata: meta("a"), Preview: []byte("p1"), After: []byte("a1")},
		{Index: 2, Metadata: meta("b")},
	})
	require.NoError(t, err)

	r, err := OpenReader(b.Data)
	require.NoError(t, err)

	data, err := r.Read(AfterKey(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("a1"), data)

	assert.False(t, r.Has(AfterKey(2)))
	_, err = r.Read(AfterKey(2))
	assert.ErrorIs(t, err, ErrMissingEntry)

	m, err := r.Metadata(2)
	require.NoError(t, err)
	assert.Equal(t, "b", m.Modification)

	_, err = r.Metadata(7)
	assert.ErrorIs(t, err, ErrMissingEntry)

	assert.Equal(t, []Key{PreviewKey(1), MetadataKey(1), AfterKey(1), MetadataKey(2)}, r.Keys())
}

func TestReader_ForeignArchive(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("README.txt")
	require.NoError(t, err)
	_, _ = w.Write([]byte("hi"))
	w, err = zw.Create("text_4.json")
	require.NoError(t, err)
	_, _ = w.Write([]byte("not json"))
	require.NoError(t, zw.Close())

	r, err := OpenReader(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "", r.Version())
	assert.Equal(t, []Key{MetadataKey(4)}, r.Keys())

	_, err = r.Metadata(4)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingEntry)
}

func TestOpenReader_Garbage(t *testing.T) {
	_, err := OpenReader([]byte("definitely not a zip"))
	assert.Error(t, err)
}
