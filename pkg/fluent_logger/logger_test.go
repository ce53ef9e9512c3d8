package fluentlogger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFluentConfig(t *testing.T) {
	_, err := Config{Host: "localhost", Port: 24224}.fluentConfig()
	assert.Error(t, err, "tag prefix is required")

	_, err = Config{TagPrefix: "portal", Port: 70000}.fluentConfig()
	assert.Error(t, err)

	fc, err := Config{Host: "fluent-bit", Port: 24224, TagPrefix: "portal", Timeout: time.Second, Async: true}.fluentConfig()
	require.NoError(t, err)
	assert.Equal(t, "fluent-bit", fc.FluentHost)
	assert.Equal(t, 24224, fc.FluentPort)
	assert.Equal(t, "portal", fc.TagPrefix)
	assert.True(t, fc.Async)
}
