package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupIsNoopWithoutEndpoint(t *testing.T) {
	shutdown, enabled, err := Setup(context.Background(), "", "mesto")
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupCreatesProviderWhenEndpointSet(t *testing.T) {
	// A non-routable address: nothing is exported before shutdown.
	shutdown, enabled, err := Setup(context.Background(), "http://192.0.2.1:4318", "mesto")
	require.NoError(t, err)
	assert.True(t, enabled)
	assert.NoError(t, shutdown(context.Background()))
}
