package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithEnvVars(t *testing.T) {
	os.Setenv("PAGELAKE_UPLOAD_ENDPOINT", "https://storage.example.com/upload")
	os.Setenv("PAGELAKE_PORT", "9090")
	os.Setenv("PAGELAKE_DEBUG", "true")
	os.Setenv("PAGELAKE_DATA_DIR", "/tmp/chunks")
	os.Setenv("PAGELAKE_FLUSH_THRESHOLD", "100")
	os.Setenv("PAGELAKE_UPLOAD_TOKEN", "tok")
	os.Setenv("PAGELAKE_SWEEP_INTERVAL", "5m")
	defer func() {
		os.Unsetenv("PAGELAKE_UPLOAD_ENDPOINT")
		os.Unsetenv("PAGELAKE_PORT")
		os.Unsetenv("PAGELAKE_DEBUG")
		os.Unsetenv("PAGELAKE_DATA_DIR")
		os.Unsetenv("PAGELAKE_FLUSH_THRESHOLD")
		os.Unsetenv("PAGELAKE_UPLOAD_TOKEN")
		os.Unsetenv("PAGELAKE_SWEEP_INTERVAL")
	}()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://storage.example.com/upload", cfg.UploadEndpoint)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/chunks", cfg.DataDir)
	assert.Equal(t, 100, cfg.FlushThreshold)
	assert.Equal(t, "tok", cfg.UploadToken)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("PAGELAKE_UPLOAD_ENDPOINT", "https://storage.example.com/upload")
	defer os.Unsetenv("PAGELAKE_UPLOAD_ENDPOINT")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 50, cfg.FlushThreshold)
	assert.Equal(t, 10, cfg.SweepConcurrency)
	assert.False(t, cfg.SweepDeleteOnSuccess)
	assert.Equal(t, 30*time.Second, cfg.UploadTimeout)
	assert.Equal(t, "pagelake-chunks", cfg.UploadBucket)
	assert.Equal(t, "data/uploads", cfg.UploadBasePath)
	assert.Equal(t, "us-east-1", cfg.S3Region)
}

func TestLoad_RequiredUploadEndpoint(t *testing.T) {
	os.Unsetenv("PAGELAKE_UPLOAD_ENDPOINT")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "UPLOAD_ENDPOINT")
}

func TestHasS3(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.HasS3())

	cfg.S3AccessKey = "key"
	cfg.S3SecretKey = "secret"
	assert.True(t, cfg.HasS3())
}
