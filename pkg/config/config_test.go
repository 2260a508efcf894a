package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorkeeper/petdoor/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, config.DefaultConfig().Validate())
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "petdoor.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[core]
tick_rate_ms = 100

[device.camera]
backend = "raspberry"

[device.door]
backend = "gpio"
relay_pin = 27
`), 0o644))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.EqualValues(t, 100, cfg.Core.TickRateMillis)
	// Unspecified fields keep the defaults.
	assert.EqualValues(t, 1000, cfg.Core.CameraProcessRateMillis)
	assert.Equal(t, "raspberry", cfg.Device.Camera.Backend)
	assert.Equal(t, "gpio", cfg.Device.Door.Backend)
	assert.Equal(t, 27, cfg.Device.Door.RelayPin)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidateRejectsEmptyLabelLists(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Core.UnlockList = nil
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadConfidence(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Core.LockList = []config.LabelRule{{Label: "cat", MinConfidence: 1.5}}
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Device.Camera.Backend = "webcam9000"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadTimezone(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Core.LoggerTimezone = "Not/A/Zone"
	assert.Error(t, cfg.Validate())
}

func TestCoreConfigConversion(t *testing.T) {
	cfg := config.DefaultConfig()
	core, err := cfg.CoreConfig()
	require.NoError(t, err)
	assert.Equal(t, "dog", core.UnlockList[0].Label)
	assert.Equal(t, "cat", core.LockList[0].Label)
	assert.Equal(t, cfg.Core.TickRateMillis, int64(core.TickRate.Milliseconds()))
	assert.Equal(t, "UTC", core.LoggerTimezone.String())
}

func TestCoreConfigConversionRejectsBadTimezone(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Core.LoggerTimezone = "Not/A/Zone"
	_, err := cfg.CoreConfig()
	assert.Error(t, err)
}
