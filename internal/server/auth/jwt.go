// Package auth mints and validates session tokens: HS256 JWTs carrying a
// snapshot of the account profile taken at issuance.
//
// The snapshot is never re-read from storage when a token is presented, so a
// token reflects the account as it was when issued. It stays verifiable until
// its absolute expiry; there is no server-side registry and no revocation.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/cmiyc/internal/common"
	"github.com/dmitrijs2005/cmiyc/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the profile snapshot.
type Claims struct {
	jwt.RegisteredClaims
	Profile models.Profile `json:"user"`
}

// Issuer signs and verifies session tokens with a single shared secret.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

// NewIssuer builds an Issuer. Tokens always live common.SessionTokenLifetime;
// a nil clock falls back to time.Now.
func NewIssuer(secret string, now func() time.Time) *Issuer {
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(secret), now: now}
}

// TTL is the absolute token lifetime, also used as the cookie max-age.
func (i *Issuer) TTL() time.Duration { return common.SessionTokenLifetime }

// Ready fails with common.ErrConfiguration when no signing secret is set.
// Services call it before mutating anything that ends in a token.
func (i *Issuer) Ready() error {
	if len(i.secret) == 0 {
		return fmt.Errorf("%w: signing secret is not set", common.ErrConfiguration)
	}
	return nil
}

// Issue returns a signed token for p that expires common.SessionTokenLifetime from now.
func (i *Issuer) Issue(p *models.Profile) (string, error) {
	if err := i.Ready(); err != nil {
		return "", err
	}

	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.TTL())),
		},
		Profile: *p,
	})

	return token.SignedString(i.secret)
}

// Verify checks signature and expiry and returns the embedded snapshot.
// It fails with common.ErrTokenExpired past expiry and with
// common.ErrInvalidToken for anything else.
func (i *Issuer) Verify(tokenString string) (*models.Profile, error) {
	if len(i.secret) == 0 {
		return nil, common.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" || claims.Subject != claims.Profile.ID {
		return nil, common.ErrInvalidToken
	}

	p := claims.Profile
	return &p, nil
}
