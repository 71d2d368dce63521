package secrets

import (
	"github.com/allisson/groundwork/internal/token"
)

// Persisted key names. The compose file, the gateway template, and the
// platform services all consume these, so the names are part of the
// platform's external contract.
const (
	KeyPostgresPassword = "POSTGRES_PASSWORD"
	KeyPostgresUser     = "POSTGRES_USER"
	KeyPostgresDB       = "POSTGRES_DB"

	KeyJWTSecret = "JWT_SECRET"
	KeyJWTExpiry = "JWT_EXPIRY"

	// The issued tokens live under a primary name and a compatibility
	// alias; older compose files reference the PLATFORM_-prefixed names.
	KeyAnonToken         = "ANON_KEY"
	KeyAnonTokenAlias    = "PLATFORM_ANON_KEY"
	KeyServiceToken      = "SERVICE_KEY"
	KeyServiceTokenAlias = "PLATFORM_SERVICE_KEY"

	KeyDashboardUsername = "DASHBOARD_USERNAME"
	KeyDashboardPassword = "DASHBOARD_PASSWORD"

	KeyObjStoreUser     = "MINIO_ROOT_USER"
	KeyObjStorePassword = "MINIO_ROOT_PASSWORD"

	KeySecretKeyBase   = "SECRET_KEY_BASE"
	KeyVaultEncKey     = "VAULT_ENC_KEY"
	KeyAnalyticsAPIKey = "ANALYTICS_API_KEY"

	KeyDomain          = "DOMAIN"
	KeyEnableAnalytics = "ENABLE_ANALYTICS"
	KeyFunctionsDir    = "FUNCTIONS_DIR"
	KeySnippetsDir     = "SNIPPETS_DIR"
	KeyOpenAIKey       = "OPENAI_API_KEY"
)

// TokenIssuer mints the canonical role tokens once the shared signing
// secret is known.
type TokenIssuer interface {
	Issue(role string) (string, error)
}

// RequiredKeys lists every key a persisted state must contain after a run.
// Persist always writes a superset of this list.
func RequiredKeys() []string {
	return []string{
		KeyPostgresPassword,
		KeyPostgresUser,
		KeyPostgresDB,
		KeyJWTSecret,
		KeyJWTExpiry,
		KeyAnonToken,
		KeyAnonTokenAlias,
		KeyServiceToken,
		KeyServiceTokenAlias,
		KeyDashboardUsername,
		KeyDashboardPassword,
		KeyObjStoreUser,
		KeyObjStorePassword,
		KeySecretKeyBase,
		KeyVaultEncKey,
		KeyAnalyticsAPIKey,
		KeyDomain,
		KeyEnableAnalytics,
		KeyFunctionsDir,
		KeySnippetsDir,
		KeyOpenAIKey,
	}
}

// Fill resolves every required key, generating values only for keys that
// are absent or structurally invalid. issuerFor builds the token issuer
// from the resolved shared signing secret; Fill invokes it exactly once.
func (s *Store) Fill(issuerFor func(signingSecret string) TokenIssuer) error {
	fixed := func(value string) func() (string, error) {
		return func() (string, error) { return value, nil }
	}

	entries := []struct {
		key      string
		generate func() (string, error)
	}{
		{KeyPostgresPassword, func() (string, error) { return RandomHex(16) }},
		{KeyPostgresUser, fixed("postgres")},
		{KeyPostgresDB, fixed("postgres")},
		{KeyJWTExpiry, fixed("3600")},
		{KeyDashboardUsername, fixed("admin")},
		{KeyDashboardPassword, func() (string, error) { return RandomAlnum(24) }},
		{KeyObjStoreUser, fixed("minio")},
		{KeyObjStorePassword, func() (string, error) { return RandomAlnum(32) }},
		{KeySecretKeyBase, func() (string, error) { return RandomHex(32) }},
		{KeyVaultEncKey, func() (string, error) { return RandomAlnum(32) }},
		{KeyAnalyticsAPIKey, func() (string, error) { return RandomAlnum(32) }},
		{KeyDomain, fixed("localhost")},
		{KeyEnableAnalytics, fixed("false")},
		{KeyFunctionsDir, fixed("./volumes/functions")},
		{KeySnippetsDir, fixed("./volumes/snippets")},
		{KeyOpenAIKey, fixed("")},
	}
	for _, entry := range entries {
		if _, err := s.Resolve(entry.key, entry.generate); err != nil {
			return err
		}
	}

	signingSecret, err := s.Resolve(KeyJWTSecret, func() (string, error) { return RandomAlnum(40) })
	if err != nil {
		return err
	}

	issuer := issuerFor(signingSecret)
	if _, err := s.ResolveToken(KeyAnonToken, KeyAnonTokenAlias, func() (string, error) {
		return issuer.Issue(token.RoleAnon)
	}); err != nil {
		return err
	}
	if _, err := s.ResolveToken(KeyServiceToken, KeyServiceTokenAlias, func() (string, error) {
		return issuer.Issue(token.RoleService)
	}); err != nil {
		return err
	}

	return nil
}
