package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bitacora-blog/apiserver/internal/auth"
)

type contextKey string

const (
	contextClaimsKey contextKey = "claims"
	contextBodyKey   contextKey = "body"
	contextLogKey    contextKey = "log"
)

var (
	errNoIdentity   = errors.New("no authenticated identity")
	errBodyTooLarge = errors.New("request body too large")
)

// IdentityFromContext returns the claims attached by Authorize.
func IdentityFromContext(ctx context.Context) (auth.Claims, error) {
	claims, ok := ctx.Value(contextClaimsKey).(auth.Claims)
	if !ok || claims.Subject == "" {
		return auth.Claims{}, errNoIdentity
	}
	return claims, nil
}

func withIdentity(ctx context.Context, claims auth.Claims) context.Context {
	if fields, ok := ctx.Value(contextLogKey).(*logFields); ok {
		fields.userID = claims.Subject
	}
	return context.WithValue(ctx, contextClaimsKey, claims)
}

// bodyFromContext returns the JSON object decoded by Validate.
func bodyFromContext(ctx context.Context) map[string]any {
	body, _ := ctx.Value(contextBodyKey).(map[string]any)
	if body == nil {
		return map[string]any{}
	}
	return body
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, err APIError) {
	writeJSON(w, err.Status, err)
}
