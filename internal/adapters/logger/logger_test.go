package logger_adapter

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal-portal/internal/core/port"
)

type recordingPoster struct {
	tags    []string
	records []map[string]interface{}
	closed  bool
}

func (r *recordingPoster) Post(tag string, message interface{}) error {
	r.tags = append(r.tags, tag)
	r.records = append(r.records, message.(port.Fields))
	return nil
}

func (r *recordingPoster) Close() error {
	r.closed = true
	return nil
}

func TestFluentLoggerAdapter(t *testing.T) {
	poster := &recordingPoster{}
	logger, err := NewFluentLoggerAdapter(poster, slog.LevelInfo)
	require.NoError(t, err)

	scoped := logger.WithFields(port.Fields{"component": "test"})
	scoped.Debug("hidden", nil)
	scoped.Info("visible", port.Fields{"n": 1})
	scoped.Error("failed", errors.New("boom"), nil)

	require.Equal(t, []string{"info", "error"}, poster.tags)
	assert.Equal(t, "visible", poster.records[0]["message"])
	assert.Equal(t, "test", poster.records[0]["component"])
	assert.Equal(t, 1, poster.records[0]["n"])
	assert.Equal(t, "boom", poster.records[1]["error"])

	require.NoError(t, logger.Close())
	assert.True(t, poster.closed)

	_, err = NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)
}

func TestSlogAdapter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug, IsJSON: true})

	logger.WithFields(port.Fields{"trace_id": "t-1"}).Error("save failed", errors.New("db down"), port.Fields{"b": 2, "a": 1})

	out := buf.String()
	assert.Contains(t, out, `"msg":"save failed"`)
	assert.Contains(t, out, `"trace_id":"t-1"`)
	assert.Contains(t, out, `"error":"db down"`)
	assert.Less(t, strings.Index(out, `"a":1`), strings.Index(out, `"b":2`))
}

func TestMultiLogger(t *testing.T) {
	_, err := NewMultiloggerAdapter()
	assert.Error(t, err)
	_, err = NewMultiloggerAdapter(nil)
	assert.Error(t, err)

	single, _ := NewFluentLoggerAdapter(&recordingPoster{}, slog.LevelInfo)
	got, err := NewMultiloggerAdapter(nil, single)
	require.NoError(t, err)
	assert.Same(t, single, got)

	p1, p2 := &recordingPoster{}, &recordingPoster{}
	l1, _ := NewFluentLoggerAdapter(p1, slog.LevelInfo)
	l2, _ := NewFluentLoggerAdapter(p2, slog.LevelWarn)
	multi, err := NewMultiloggerAdapter(l1, l2)
	require.NoError(t, err)

	multi.WithFields(port.Fields{"x": "y"}).Info("hello", nil)
	multi.Warn("careful", nil)

	assert.Equal(t, []string{"info", "warn"}, p1.tags)
	assert.Equal(t, []string{"warn"}, p2.tags)
	assert.Equal(t, "y", p1.records[0]["x"])
}
