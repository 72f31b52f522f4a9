package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"PORT", "STORAGE_PROVIDER", "STORAGE_BUCKET", "UPLOAD_FOLDER", "MAX_UPLOAD_BYTES", "ERROR_STATUS_MODE", "TLS_ENABLED"} {
		t.Setenv(k, "")
	}

	cfg, dotenv := Load()

	assert.False(t, dotenv)
	assert.Equal(t, "3500", cfg.Port)
	assert.Equal(t, ProviderGCS, cfg.StorageProvider)
	assert.Equal(t, "kitkat_example_bucket", cfg.StorageBucket)
	assert.Equal(t, "example-folder", cfg.UploadFolder)
	assert.Equal(t, int64(DefaultMaxUploadBytes), cfg.MaxUploadBytes)
	assert.Equal(t, ErrorModeLegacy, cfg.ErrorStatusMode)
	assert.True(t, cfg.TLSEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_PROVIDER", "MinIO")
	t.Setenv("UPLOAD_FOLDER", "/uploads/")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("TLS_ENABLED", "false")

	cfg, _ := Load()

	assert.Equal(t, ProviderMinio, cfg.StorageProvider)
	assert.Equal(t, "uploads", cfg.UploadFolder)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.False(t, cfg.TLSEnabled)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StorageProvider: ProviderMemory,
			StorageBucket:   "b",
			MaxUploadBytes:  1,
			ErrorStatusMode: ErrorModeTyped,
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"provider":     func(c *Config) { c.StorageProvider = "azure" },
		"error mode":   func(c *Config) { c.ErrorStatusMode = "strict" },
		"bucket":       func(c *Config) { c.StorageBucket = "" },
		"upload limit": func(c *Config) { c.MaxUploadBytes = -1 },
		"tls files":    func(c *Config) { c.TLSEnabled = true },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
