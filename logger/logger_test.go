package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeJSON(t *testing.T) {
	err := Initialize(true)
	require.NoError(t, err)
	assert.True(t, JSONOutput)
	assert.NotNil(t, Logger)
}

func TestInitializeConsole(t *testing.T) {
	err := Initialize(false)
	require.NoError(t, err)
	assert.False(t, JSONOutput)
	assert.NotNil(t, Logger)
}

func TestHelpersSafeBeforeInitialize(t *testing.T) {
	// init() installs a no-op logger, so helpers must never panic
	assert.NotPanics(t, func() {
		Info("info")
		Infof("info %d", 1)
		Infow("info", "k", "v")
		Warn("warn")
		Warnf("warn %d", 2)
		Warnw("warn", "k", "v")
		Error("error")
		Errorf("error %d", 3)
		Errorw("error", "k", "v")
		Debug("debug")
		Debugf("debug %d", 4)
		Debugw("debug", "k", "v")
		Cleanup()
	})
}
