package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInitSetsLevel(t *testing.T) {
	defer Init("info", "json")

	Init("debug", "console")
	assert.True(t, L.Core().Enabled(zap.DebugLevel))

	Init("warn", "json")
	assert.False(t, L.Core().Enabled(zap.InfoLevel))
	assert.True(t, L.Core().Enabled(zap.WarnLevel))
}

func TestInitFallsBackToInfo(t *testing.T) {
	defer Init("info", "json")

	Init("loud", "json")
	assert.True(t, L.Core().Enabled(zap.InfoLevel))
	assert.False(t, L.Core().Enabled(zap.DebugLevel))
}
