package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "us-east-2", cfg.Region)
	assert.Equal(t, "terraform", cfg.TerraformDir)
	assert.Equal(t, "argocd", cfg.ManifestDir)
	assert.Equal(t, "logs", cfg.RunLogDir)
	assert.False(t, cfg.NonInteractive)
	assert.InDelta(t, 5.0, cfg.StoreRateLimit, 0.001)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FINDEPLOY_REGION", "eu-west-1")
	t.Setenv("FINDEPLOY_NON_INTERACTIVE", "true")
	t.Setenv("FINDEPLOY_SYNC_TIMEOUT", "3m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.True(t, cfg.NonInteractive)
	assert.Equal(t, 3*time.Minute, cfg.SyncTimeout)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("FINDEPLOY_SYNC_TIMEOUT", "not-a-duration")

	_, err := Load()
	require.Error(t, err)
}
