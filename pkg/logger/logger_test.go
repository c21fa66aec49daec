package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	t.Cleanup(func() { log = nil })

	assert.NotNil(t, Logger(), "nop logger before Initialize")
	assert.NoError(t, Sync())

	assert.Error(t, Initialize("loud", "json"))
	assert.Error(t, Initialize("info", "xml"))

	require.NoError(t, Initialize("debug", "console"))
	assert.True(t, Logger().Core().Enabled(-1))

	require.NoError(t, Initialize("warn", ""))
	assert.False(t, Logger().Core().Enabled(0))
}
