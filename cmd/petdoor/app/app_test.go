package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorkeeper/petdoor/internal/logging"
	"github.com/doorkeeper/petdoor/pkg/config"
)

func TestBuildCameraFake(t *testing.T) {
	cam, err := buildCamera(config.CameraConfig{Backend: "fake"}, logging.New(logging.Options{}))
	require.NoError(t, err)
	assert.NotNil(t, cam)
}

func TestBuildCameraUnknownBackend(t *testing.T) {
	_, err := buildCamera(config.CameraConfig{Backend: "webcam9000"}, logging.New(logging.Options{}))
	assert.Error(t, err)
}

func TestBuildDoorFake(t *testing.T) {
	door, err := buildDoor(config.DoorConfig{Backend: "fake"})
	require.NoError(t, err)
	assert.NotNil(t, door)
}

func TestBuildDoorUnknownBackend(t *testing.T) {
	_, err := buildDoor(config.DoorConfig{Backend: "nope"})
	assert.Error(t, err)
}

func TestBuildDisplayFakeAndConsole(t *testing.T) {
	disp, err := buildDisplay(config.DisplayConfig{Backend: "fake"})
	require.NoError(t, err)
	assert.NotNil(t, disp)

	disp, err = buildDisplay(config.DisplayConfig{Backend: "console"})
	require.NoError(t, err)
	assert.NotNil(t, disp)
}

func TestBuildDisplayUnknownBackend(t *testing.T) {
	_, err := buildDisplay(config.DisplayConfig{Backend: "nope"})
	assert.Error(t, err)
}
