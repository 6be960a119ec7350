package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTelemetryDisabled(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), "test", DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
