package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: WarnLevel, Output: &buf})
	defer Configure(Config{Level: InfoLevel, Pretty: true})

	Info().Msg("dropped")
	Warn().Msg("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestConfigureEmitsStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: InfoLevel, Output: &buf})
	defer Configure(Config{Level: InfoLevel, Pretty: true})

	Info().Str("semester", "2025/1").Int("demands", 3).Msg("run started")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"semester":"2025/1"`)
	assert.Contains(t, out, `"demands":3`)
	assert.Contains(t, out, `"message":"run started"`)
}

func TestConfigureDefaultsUnknownLevelToInfo(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "verbose", Output: &buf})
	defer Configure(Config{Level: InfoLevel, Pretty: true})

	Debug().Msg("dropped")
	Info().Msg("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}
