package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	secret, err := GenerateSecureSecret()
	require.NoError(t, err)
	issuer, err := NewTokenIssuerFromBase64(secret, time.Hour)
	require.NoError(t, err)
	return issuer
}

func TestGenerateAndValidate(t *testing.T) {
	issuer := newTestIssuer(t)
	user := &User{ID: 42, Username: "ops", IsAdmin: true}

	token, err := issuer.Generate(user)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "ops", claims.Username)
	assert.True(t, claims.IsAdmin)
}

func TestValidateInvalidTokens(t *testing.T) {
	issuer := newTestIssuer(t)

	for _, token := range []string{
		"",
		"not.a.jwt",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature",
	} {
		_, err := issuer.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken, token)
	}

	// Токен другого секрета
	other := newTestIssuer(t)
	token, err := other.Generate(&User{ID: 1, Username: "x"})
	require.NoError(t, err)
	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t)
	token, err := issuer.Generate(&User{ID: 1, Username: "x"})
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSecretValidation(t *testing.T) {
	_, err := NewTokenIssuer([]byte("short"), time.Hour)
	assert.Error(t, err)

	_, err = NewTokenIssuerFromBase64("%%%", time.Hour)
	assert.Error(t, err)

	a, err := GenerateSecureSecret()
	require.NoError(t, err)
	b, err := GenerateSecureSecret()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 40)
}

func TestMemoryUserRepo(t *testing.T) {
	repo := NewMemoryUserRepo()
	hash, err := HashPassword("secret-pass")
	require.NoError(t, err)

	_, err = repo.CreateUser("plain", "not-a-hash", false)
	assert.Error(t, err)
	_, err = repo.CreateUser("  ", hash, false)
	assert.Error(t, err)

	u, err := repo.CreateUser("Admin", hash, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)

	_, err = repo.CreateUser("admin", hash, false)
	assert.ErrorIs(t, err, ErrUserExists)

	got, err := repo.GetUserByUsername("ADMIN")
	require.NoError(t, err)
	assert.Same(t, u, got)

	got, err = repo.GetUserByID(1)
	require.NoError(t, err)
	assert.Same(t, u, got)

	_, err = repo.GetUserByID(9)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.ValidateCredentials("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err = repo.ValidateCredentials("admin", "secret-pass")
	require.NoError(t, err)
	assert.False(t, got.LastLogin.IsZero())
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := HashPassword("long-enough")
	require.NoError(t, err)
	assert.NoError(t, ValidateHash(hash))
	assert.True(t, CheckPassword(hash, "long-enough"))
	assert.False(t, CheckPassword(hash, "long-enougH"))

	assert.Error(t, ValidateHash("plaintext"))
}
