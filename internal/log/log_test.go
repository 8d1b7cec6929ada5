package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"crit", LevelCrit},
	}
	for _, test := range tests {
		lvl, err := ParseLevel(test.in)
		require.NoError(t, err, test.in)
		assert.Equal(t, test.want, lvl, test.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestModuleFiltering(t *testing.T) {
	var buf bytes.Buffer
	previous := Root()
	SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: LevelTrace, ReplaceAttr: replaceLevel})))
	t.Cleanup(func() {
		SetDefault(previous)
		DisableModule(DecoderMonitoring)
	})

	DisableModule(DecoderMonitoring)
	Debug(DecoderMonitoring, "hidden")
	assert.Empty(t, buf.String())

	EnableModules("decoder, verify")
	Trace(DecoderMonitoring, "shown", "offset", 3)
	out := buf.String()
	assert.Contains(t, out, "level=TRACE")
	assert.Contains(t, out, "module=decoder")
	assert.Contains(t, out, "offset=3")

	buf.Reset()
	Warn("anything", "always")
	assert.Contains(t, buf.String(), "always")
	DisableModule(VerifyMonitoring)
}
