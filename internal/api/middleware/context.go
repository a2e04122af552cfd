package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	keyIDKey        contextKey = "api_key_id"
	keyPrefixKey    contextKey = "key_prefix"
	apiKeyScopesKey contextKey = "api_key_scopes"
)

// WithAPIKey stores the authenticated key's identity on ctx.
func WithAPIKey(ctx context.Context, id uuid.UUID, prefix string, scopes []string) context.Context {
	ctx = context.WithValue(ctx, keyIDKey, id)
	ctx = context.WithValue(ctx, keyPrefixKey, prefix)
	return context.WithValue(ctx, apiKeyScopesKey, scopes)
}

// GetKeyID returns the ID of the key that authenticated r.
func GetKeyID(r *http.Request) (uuid.UUID, bool) {
	id, ok := r.Context().Value(keyIDKey).(uuid.UUID)
	return id, ok
}

func getKeyPrefix(r *http.Request) (string, bool) {
	prefix, ok := r.Context().Value(keyPrefixKey).(string)
	return prefix, ok
}

func getScopes(r *http.Request) []string {
	scopes, _ := r.Context().Value(apiKeyScopesKey).([]string)
	return scopes
}
