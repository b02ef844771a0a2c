package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextHelpers verifies that named loggers and key-value pairs travel
// through the context and that plain buffers get no color codes.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), NewWithWriter(&buf, zapcore.DebugLevel))
	ctx = WithName(ctx, "scheduler")
	ctx = WithKV(ctx, "alarm_at", "10:20")

	InfoKV(ctx, "Alarm fired", "presenter", "log")

	out := buf.String()
	require.Contains(t, out, "INFO")
	require.Contains(t, out, "scheduler")
	require.Contains(t, out, "Alarm fired")
	require.Contains(t, out, "10:20")
	require.NotContains(t, out, "\x1b[")
}

// TestFromContext_FallsBackToGlobal verifies the global logger is used for bare contexts.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
	require.Same(t, Logger(), FromContext(nil)) //nolint:staticcheck // nil context is handled on purpose.
}
