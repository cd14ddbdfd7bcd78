package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "worker", "warn")

	log.Info().Msg("hidden")
	log.Warn().Str("job_id", "j1").Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "worker", entry["service"])
	assert.Equal(t, "j1", entry["job_id"])
	assert.Equal(t, "visible", entry["message"])
}

func TestNew_UnknownLevel(t *testing.T) {
	log := NewWithWriter(&bytes.Buffer{}, "api", "loud")
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}
