// Package extract turns free-form model text into validated JSON payloads.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
)

const (
	fenceOpen  = "```json"
	fenceClose = "```"

	// maxPayloadEcho bounds how much of a bad payload an error carries.
	maxPayloadEcho = 512
)

// PayloadFormatError reports model text that does not reduce to the
// expected JSON after fence stripping.
type PayloadFormatError struct {
	Payload string
	Err     error
}

func (e *PayloadFormatError) Error() string {
	return fmt.Sprintf("model payload is not valid JSON: %v", e.Err)
}

func (e *PayloadFormatError) Unwrap() error { return e.Err }

// JSON strips optional markdown fencing from raw.
//
// When a line equals "```json" exactly, everything up to and including that
// line is dropped, and the remainder is cut at the first "```". Otherwise raw
// is returned unchanged. JSON(JSON(s)) == JSON(s) for any s.
func JSON(raw string) string {
	offset := 0
	for offset <= len(raw) {
		end := strings.IndexByte(raw[offset:], '\n')
		var line string
		next := len(raw) + 1
		if end < 0 {
			line = raw[offset:]
		} else {
			line = raw[offset : offset+end]
			next = offset + end + 1
		}
		if strings.TrimSuffix(line, "\r") == fenceOpen {
			rest := ""
			if next <= len(raw) {
				rest = raw[next:]
			}
			if i := strings.Index(rest, fenceClose); i >= 0 {
				rest = rest[:i]
			}
			return strings.TrimSpace(rest)
		}
		offset = next
	}
	return raw
}

// Decode strips fencing from raw and unmarshals it into v.
func Decode(raw string, v any) error {
	payload := JSON(raw)
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return &PayloadFormatError{Payload: truncate(payload), Err: err}
	}
	return nil
}

// DecodeValidated is Decode with object keys lower-cased and the document
// checked against schema before it is bound to v.
func DecodeValidated(raw string, schema *gojsonschema.Schema, v any) error {
	payload := JSON(raw)

	var doc any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return &PayloadFormatError{Payload: truncate(payload), Err: err}
	}
	doc = lowerKeys(doc)

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &PayloadFormatError{Payload: truncate(payload), Err: err}
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			msgs[i] = desc.String()
		}
		return &PayloadFormatError{
			Payload: truncate(payload),
			Err:     fmt.Errorf("schema violation: %s", strings.Join(msgs, "; ")),
		}
	}

	normalized, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("re-encoding payload: %w", err)
	}
	if err := json.Unmarshal(normalized, v); err != nil {
		return &PayloadFormatError{Payload: truncate(payload), Err: err}
	}
	return nil
}

// MustSchema compiles a JSON schema literal, panicking on error.
// Intended for package-level schema variables.
func MustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("extract: invalid schema: %v", err))
	}
	return s
}

func lowerKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[strings.ToLower(k)] = lowerKeys(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = lowerKeys(t[i])
		}
		return t
	default:
		return v
	}
}

func truncate(s string) string {
	if len(s) <= maxPayloadEcho {
		return s
	}
	n := maxPayloadEcho
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
