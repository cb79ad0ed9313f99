// Package ident verifies bearer tokens and resolves the owner id
package ident

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tally/internal/modkit/httpkit"
	perr "tally/internal/platform/errors"
)

// Verifier checks HMAC-signed bearer tokens; it plugs into the auth
// middleware as its AuthPort
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier creates a Verifier over a shared HMAC secret
func NewVerifier(secret string) *Verifier {
	if secret == "" {
		panic("ident.Verifier requires a non empty secret")
	}
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Parse implements middleware.AuthPort
func (v *Verifier) Parse(r *http.Request) (string, error) {
	raw, err := httpkit.JWT(r)
	if err != nil {
		return "", err
	}

	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !tok.Valid {
		return "", perr.Wrap(err, perr.ErrorCodeUnauthorized, "invalid bearer token")
	}
	if claims.Subject == "" {
		return "", perr.Unauthorizedf("token has no subject")
	}
	return claims.Subject, nil
}

// Issue signs a token for ownerID valid for ttl, mostly for tooling and tests
func (v *Verifier) Issue(ownerID string, ttl time.Duration) (string, error) {
	now := v.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   ownerID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := tok.SignedString(v.secret)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "token signing failed")
	}
	return signed, nil
}
