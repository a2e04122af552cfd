// Package apikey mints and checks hazardlens API keys.
//
// A raw key looks like "hl_" followed by 40 hex characters. Its first
// PrefixLen bytes are stored in clear for lookup; the full key only as a
// bcrypt hash.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/crypto/bcrypt"
)

const (
	// Marker starts every raw key.
	Marker = "hl_"
	// PrefixLen is the number of leading bytes used for lookup.
	PrefixLen = 8

	randomBytes = 20
)

// Scopes a key may carry.
const (
	ScopeRead  = "read"
	ScopeAdmin = "admin"
)

var ErrInvalidScope = errors.New("invalid scope")

// Minted is a freshly generated key. Raw is shown to the caller once.
type Minted struct {
	Raw    string
	Prefix string
	Hash   string
}

// Generate creates a new random key and its bcrypt hash.
func Generate() (*Minted, error) {
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("reading random bytes: %w", err)
	}
	raw := Marker + hex.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing key: %w", err)
	}
	return &Minted{Raw: raw, Prefix: Prefix(raw), Hash: string(hash)}, nil
}

// Prefix returns the lookup prefix of raw, or "" if raw is too short.
func Prefix(raw string) string {
	if len(raw) < PrefixLen {
		return ""
	}
	return raw[:PrefixLen]
}

// Matches reports whether raw hashes to hash.
func Matches(hash, raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// NormalizeScopes defaults an empty list to read, drops duplicates and
// rejects unknown names.
func NormalizeScopes(scopes []string) ([]string, error) {
	if len(scopes) == 0 {
		return []string{ScopeRead}, nil
	}
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		if s != ScopeRead && s != ScopeAdmin {
			return nil, fmt.Errorf("%w: %q", ErrInvalidScope, s)
		}
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}
