package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/breaknblocks/internal/auth"
	"github.com/annel0/breaknblocks/internal/config"
)

func TestPrintPasswordHash(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printPasswordHash(strings.NewReader("operator-pass\n"), &out))

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, auth.ValidateHash(hash))
	assert.True(t, auth.CheckPassword(hash, "operator-pass"))

	out.Reset()
	assert.ErrorIs(t, printPasswordHash(strings.NewReader("short"), &out), auth.ErrWeakPassword)
}

func TestSetupAuth(t *testing.T) {
	users, tokens, err := setupAuth(config.AuthConfig{})
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Nil(t, tokens)

	hash, err := auth.HashPassword("operator-pass")
	require.NoError(t, err)
	users, tokens, err = setupAuth(config.AuthConfig{
		TokenTTLHours: 1,
		Admins:        []config.AdminAccount{{Username: "root", PasswordHash: hash}},
	})
	require.NoError(t, err)
	require.NotNil(t, tokens)

	u, err := users.ValidateCredentials("root", "operator-pass")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	_, _, err = setupAuth(config.AuthConfig{
		Admins: []config.AdminAccount{{Username: "root", PasswordHash: "plain"}},
	})
	assert.Error(t, err)
}

func TestOpenMemoryBus(t *testing.T) {
	bus, err := openBus(config.EventBusConfig{Backend: "memory", Capacity: 8})
	require.NoError(t, err)
	defer bus.Close()
	assert.Zero(t, bus.Metrics().Published)
}
