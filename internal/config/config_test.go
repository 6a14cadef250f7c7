package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/restock-engine/internal/restock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg := FromViper(v)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, restock.DefaultConfig(), cfg.Engine)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 300, cfg.Cache.TTLSeconds)
	assert.False(t, cfg.Storage.Enabled())
	assert.False(t, cfg.Drive.Enabled())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("RESTOCK_VALID_STATUSES", "LIBERADO, ok ,")
	t.Setenv("RESTOCK_RESERVE_PREFIXES", "PUL")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("S3_ENDPOINT", "minio:9000")
	t.Setenv("S3_ACCESS_KEY", "key")
	t.Setenv("S3_SECRET_KEY", "secret")

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := FromViper(v)
	assert.Equal(t, []string{"LIBERADO", "ok"}, cfg.Engine.ValidStatuses)
	assert.Equal(t, []string{"PUL"}, cfg.Engine.ReservePrefixes)
	assert.Equal(t, restock.DefaultConfig().PickingLevels, cfg.Engine.PickingLevels)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Cache.Enabled)
	assert.True(t, cfg.Storage.Enabled())
}

func TestFromViper_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restock.yaml")
	require.NoError(t, os.WriteFile(path, []byte("RESTOCK_PICKING_LEVELS:\n  - \"1\"\n  - P\nSERVER_PORT: \"9090\"\n"), 0o644))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.MergeInConfig())

	cfg := FromViper(v)
	assert.Equal(t, []string{"1", "P"}, cfg.Engine.PickingLevels)
	assert.Equal(t, "9090", cfg.Server.Port)
}
