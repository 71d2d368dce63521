// Package token issues the platform's signed access tokens. Tokens are
// compact three-part HS256 credentials derived from the shared signing
// secret and a role claim; the gateway and the platform services validate
// them independently, so issuance here must stay deterministic for a fixed
// (role, secret, issued-at) triple.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/allisson/groundwork/internal/errors"
)

const (
	// RoleAnon is the public, unauthenticated role.
	RoleAnon = "anon"
	// RoleService is the privileged service role.
	RoleService = "service_role"

	issuerClaim   = "platform"
	audienceClaim = "authenticated"

	// lifetimeSeconds is the fixed long-lived token validity (ten years).
	lifetimeSeconds = 315360000
)

// Issuer mints role tokens from the shared signing secret. The issued-at
// instant is captured once per run so the anonymous and service tokens
// share an epoch.
type Issuer struct {
	secret   []byte
	issuedAt time.Time
}

// NewIssuer creates an issuer for the given shared secret and epoch.
func NewIssuer(secret string, issuedAt time.Time) *Issuer {
	return &Issuer{
		secret:   []byte(secret),
		issuedAt: issuedAt,
	}
}

// Issue returns a signed token bound to role. Claims carry the platform
// issuer identity, the authenticated audience, and an expiry of issued-at
// plus the fixed lifetime.
func (i *Issuer) Issue(role string) (string, error) {
	claims := jwt.MapClaims{
		"role": role,
		"iss":  issuerClaim,
		"aud":  audienceClaim,
		"iat":  i.issuedAt.Unix(),
		"exp":  i.issuedAt.Unix() + lifetimeSeconds,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", apperrors.Wrapf(err, "failed to sign %s token", role)
	}
	return signed, nil
}

// IsWellFormed reports whether the credential has the three-segment shape of
// an issued token: at least two dot separators. This is a structural check
// only, with no signature verification. It exists to tell legacy
// random-string credentials (to be replaced) apart from already-issued
// tokens (to be preserved across runs).
func IsWellFormed(credential string) bool {
	return strings.Count(credential, ".") >= 2
}
