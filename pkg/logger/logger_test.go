package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel("info") })

	SetLevel("debug")
	assert.Equal(t, zerolog.DebugLevel, Log.GetLevel())
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	SetLevel("loud")
	assert.Equal(t, zerolog.InfoLevel, Log.GetLevel())
}

func TestUseWriterInstallsPackageLogger(t *testing.T) {
	original := Log
	t.Cleanup(func() {
		Log = original
		log.Logger = original
		SetLevel("info")
	})

	var buf bytes.Buffer
	Init("warn")
	UseWriter(&buf)

	log.Info().Msg("hidden")
	log.Warn().Str("run_id", "r1").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"run_id":"r1"`)
	assert.Contains(t, out, `"caller"`)
}
