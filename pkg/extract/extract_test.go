package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_FencedPayload(t *testing.T) {
	got := JSON("```json\n{\"a\":1}\n```")
	assert.Equal(t, `{"a":1}`, got)
}

func TestJSON_UnfencedUnchanged(t *testing.T) {
	assert.Equal(t, `{"a":1}`, JSON(`{"a":1}`))
	assert.Equal(t, "  [1, 2]\n", JSON("  [1, 2]\n"))
}

func TestJSON_DropsPreambleAndTrailer(t *testing.T) {
	raw := "Here are the boxes:\n```json\n[{\"box_2d\": [1,2,3,4]}]\n```\nLet me know if you need more."
	assert.Equal(t, `[{"box_2d": [1,2,3,4]}]`, JSON(raw))
}

func TestJSON_CRLF(t *testing.T) {
	assert.Equal(t, `{"a":1}`, JSON("```json\r\n{\"a\":1}\r\n```\r\n"))
}

func TestJSON_NoClosingFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, JSON("```json\n{\"a\":1}\n"))
}

func TestJSON_CaseSensitiveOpener(t *testing.T) {
	raw := "```JSON\n{\"a\":1}\n```"
	assert.Equal(t, raw, JSON(raw))
}

func TestJSON_OpenerMustBeWholeLine(t *testing.T) {
	raw := "   ```json\n{}\n```"
	assert.Equal(t, raw, JSON(raw))
}

func TestJSON_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		`{"a":1}`,
		"```json\n{\"a\":1}\n```",
		"```json\n```json\n{}\n```",
		"x\n```json\n[1]\n```\n```json\n[2]\n```",
		"```json",
		"```json\n",
		"```\n{}\n```",
		"```json\n  spaced  \n",
	}
	for _, in := range inputs {
		once := JSON(in)
		assert.Equal(t, once, JSON(once), "input %q", in)
	}
}

func TestDecode_OK(t *testing.T) {
	var v map[string]int
	require.NoError(t, Decode("```json\n{\"a\":1}\n```", &v))
	assert.Equal(t, 1, v["a"])
}

func TestDecode_PayloadFormatError(t *testing.T) {
	var v []any
	err := Decode("```json\nnot json at all\n```", &v)
	require.Error(t, err)

	var pfe *PayloadFormatError
	require.True(t, errors.As(err, &pfe))
	assert.Equal(t, "not json at all", pfe.Payload)
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestDecode_TruncatesEchoedPayload(t *testing.T) {
	var v any
	err := Decode(strings.Repeat("x", 5000), &v)
	var pfe *PayloadFormatError
	require.True(t, errors.As(err, &pfe))
	assert.Len(t, pfe.Payload, maxPayloadEcho)
}

var testSchema = MustSchema(`{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["name"],
		"properties": {"name": {"type": "string"}}
	}
}`)

func TestDecodeValidated_LowerCasesKeys(t *testing.T) {
	var out []struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeValidated(`[{"Name": "grab bar"}]`, testSchema, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "grab bar", out[0].Name)
}

func TestDecodeValidated_SchemaViolation(t *testing.T) {
	var out []map[string]any
	err := DecodeValidated(`[{"title": "x"}]`, testSchema, &out)
	var pfe *PayloadFormatError
	require.True(t, errors.As(err, &pfe))
	assert.Contains(t, err.Error(), "schema violation")
}

func TestDecodeValidated_WrongTopLevelType(t *testing.T) {
	var out []map[string]any
	err := DecodeValidated(`{"name": "x"}`, testSchema, &out)
	var pfe *PayloadFormatError
	assert.True(t, errors.As(err, &pfe))
}

func TestMustSchema_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustSchema(`{"type": `) })
}
