package token

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func TestIssue(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer(testSecret, issuedAt)

	t.Run("three base64url segments without padding", func(t *testing.T) {
		for _, role := range []string{RoleAnon, RoleService} {
			signed, err := issuer.Issue(role)
			require.NoError(t, err)

			segments := strings.Split(signed, ".")
			require.Len(t, segments, 3)
			for _, segment := range segments {
				assert.NotContains(t, segment, "+")
				assert.NotContains(t, segment, "/")
				assert.NotContains(t, segment, "=")
				_, err := base64.RawURLEncoding.DecodeString(segment)
				require.NoError(t, err)
			}
		}
	})

	t.Run("claims", func(t *testing.T) {
		signed, err := issuer.Issue(RoleAnon)
		require.NoError(t, err)

		payload, err := base64.RawURLEncoding.DecodeString(strings.Split(signed, ".")[1])
		require.NoError(t, err)

		var claims map[string]any
		require.NoError(t, json.Unmarshal(payload, &claims))

		assert.Equal(t, "anon", claims["role"])
		assert.Equal(t, "platform", claims["iss"])
		assert.Equal(t, "authenticated", claims["aud"])
		assert.Equal(t, float64(issuedAt.Unix()), claims["iat"])
		assert.Equal(t, float64(issuedAt.Unix()+315360000), claims["exp"])
	})

	t.Run("signature verifies with shared secret", func(t *testing.T) {
		signed, err := issuer.Issue(RoleService)
		require.NoError(t, err)

		parsed, err := jwt.Parse(signed, func(*jwt.Token) (any, error) {
			return []byte(testSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithAudience("authenticated"))
		require.NoError(t, err)
		assert.True(t, parsed.Valid)
	})

	t.Run("deterministic for fixed inputs", func(t *testing.T) {
		first, err := issuer.Issue(RoleAnon)
		require.NoError(t, err)
		second, err := issuer.Issue(RoleAnon)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("tokens issued in one run share an epoch", func(t *testing.T) {
		anon, err := issuer.Issue(RoleAnon)
		require.NoError(t, err)
		service, err := issuer.Issue(RoleService)
		require.NoError(t, err)

		iat := func(signed string) any {
			payload, err := base64.RawURLEncoding.DecodeString(strings.Split(signed, ".")[1])
			require.NoError(t, err)
			var claims map[string]any
			require.NoError(t, json.Unmarshal(payload, &claims))
			return claims["iat"]
		}
		assert.Equal(t, iat(anon), iat(service))
	})
}

func TestIsWellFormed(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		want       bool
	}{
		{"issued token", "eyJhbGciOiJIUzI1NiJ9.eyJyb2xlIjoiYW5vbiJ9.c2ln", true},
		{"extra separators still structural", "a.b.c.d", true},
		{"legacy random string", "qRcD14mAO0zW8xTnlQ7C3vhZ5yKgJfEb", false},
		{"single separator", "header.payload", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWellFormed(tt.credential))
		})
	}
}
