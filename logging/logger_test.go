package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		" warn ":  WarnLevel,
		"warning": WarnLevel,
		"Error":   ErrorLevel,
		"verbose": InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestStdLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLoggerTo(&buf, WarnLevel)
	ctx := context.Background()

	logger.Debug(ctx, "调试")
	logger.Info(ctx, "信息")
	logger.Warn(ctx, "警告")
	logger.Error(ctx, "错误", Error(errors.New("disk full")))

	out := buf.String()
	assert.NotContains(t, out, "调试")
	assert.NotContains(t, out, "信息")
	assert.Contains(t, out, "[WARN] 警告")
	assert.Contains(t, out, `[ERROR] 错误 error="disk full"`)
}

func TestStdLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewStdLoggerTo(&buf, DebugLevel)
	child := base.WithFields(Component("storage"), Int("attempt", 2))

	child.Info(context.Background(), "saved", String("kind", "Conference"), Bool("created", true))
	base.Info(context.Background(), "plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "saved component=storage attempt=2 kind=Conference created=true")
	assert.NotContains(t, lines[1], "component=")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "plain", formatValue("plain"))
	assert.Equal(t, `"two words"`, formatValue("two words"))
	assert.Equal(t, "42", formatValue(42))
	assert.Equal(t, "1.5s", formatValue(Duration("d", 1500_000_000).Value))
}

func TestGlobalLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewStdLoggerTo(&buf, InfoLevel))
	ComponentLogger("api").Info(context.Background(), "hello")
	assert.Contains(t, buf.String(), "hello component=api")

	SetLogger(nil)
	assert.IsType(t, &NoopLogger{}, GetLogger())
}
