package main

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	groundwork "github.com/calebwray/groundwork"
)

// sessionClaims is the token payload minted by the external auth service:
// sub carries the profile id, email is optional.
type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// authenticator resolves the caller's identity from a session token. It
// verifies signatures; it never authenticates credentials itself.
type authenticator struct {
	secret []byte
	cookie string
}

func newAuthenticator(secret, cookie string) *authenticator {
	return &authenticator{secret: []byte(secret), cookie: cookie}
}

// identify returns the verified caller, or nil for an absent or invalid
// token. Public procedures proceed with nil; protected ones reject it.
func (a *authenticator) identify(r *http.Request) *groundwork.Identity {
	raw := a.token(r)
	if raw == "" {
		return nil
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil
	}
	return &groundwork.Identity{ID: id, Email: claims.Email}
}

// token pulls the raw session token from the Authorization header or the
// session cookie. A Bearer header wins; any other scheme is not ours and
// falls through to the cookie.
func (a *authenticator) token(r *http.Request) string {
	if rest, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return rest
	}
	if c, err := r.Cookie(a.cookie); err == nil {
		return c.Value
	}
	return ""
}
