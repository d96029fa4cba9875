package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bitacora-blog/apiserver/internal/auth"
	"github.com/bitacora-blog/apiserver/internal/metrics"
	"github.com/bitacora-blog/apiserver/types"
)

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(claims auth.Claims) (string, error)
}

// AuthRecorder counts access-control decisions.
type AuthRecorder interface {
	RecordAuth(outcome string)
}

// Guard builds authorization steps around a token verifier.
type Guard struct {
	verifier TokenVerifier
	recorder AuthRecorder
}

// NewGuard constructs a Guard. recorder may be nil.
func NewGuard(verifier TokenVerifier, recorder AuthRecorder) *Guard {
	return &Guard{verifier: verifier, recorder: recorder}
}

// Authorize requires a valid bearer token whose role is in roles. An empty
// role set only requires authentication. On success the claims are
// attached to the request context.
func (g *Guard) Authorize(roles types.RoleSet) Step {
	return func(r *http.Request) Outcome {
		token, err := bearerToken(r)
		if err != nil {
			g.record(metrics.AuthMissingToken)
			return haltWith(loginRequired())
		}

		claims, err := g.verifier.Verify(token)
		if err != nil {
			g.record(metrics.AuthInvalidToken)
			return haltWith(invalidToken())
		}

		if !roles.Allows(claims.Role) {
			g.record(metrics.AuthForbidden)
			return haltWith(forbidden())
		}

		g.record(metrics.AuthAllowed)
		return Continue(withIdentity(r.Context(), claims))
	}
}

func (g *Guard) record(outcome string) {
	if g.recorder != nil {
		g.recorder.RecordAuth(outcome)
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
