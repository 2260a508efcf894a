package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doorkeeper/petdoor/internal/core"
	"github.com/doorkeeper/petdoor/internal/device"
	"github.com/doorkeeper/petdoor/internal/runtime"
	camerafake "github.com/doorkeeper/petdoor/pkg/camera/fake"
	cameramacos "github.com/doorkeeper/petdoor/pkg/camera/macos"
	cameraraspberry "github.com/doorkeeper/petdoor/pkg/camera/raspberry"
	classifierfake "github.com/doorkeeper/petdoor/pkg/classifier/fake"
	"github.com/doorkeeper/petdoor/pkg/config"
	displayconsole "github.com/doorkeeper/petdoor/pkg/display/console"
	displayfake "github.com/doorkeeper/petdoor/pkg/display/fake"
	displaylcd "github.com/doorkeeper/petdoor/pkg/display/lcd"
	doorfake "github.com/doorkeeper/petdoor/pkg/door/fake"
	doorgpio "github.com/doorkeeper/petdoor/pkg/door/gpio"
)

// connectRetry is how long a background connector waits between failed
// probe/connect attempts against a device backend.
const connectRetry = 3 * time.Second

func Run() error {
	flags, err := parseFlags()
	if err != nil {
		return fmt.Errorf("could not parse flags: %w", err)
	}

	cfg, err := loadConfig(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	camera, err := buildCamera(cfg.Device.Camera, logger)
	if err != nil {
		return fmt.Errorf("could not build camera: %w", err)
	}
	door, err := buildDoor(cfg.Device.Door)
	if err != nil {
		return fmt.Errorf("could not build door: %w", err)
	}
	display, err := buildDisplay(cfg.Device.Display)
	if err != nil {
		return fmt.Errorf("could not build display: %w", err)
	}
	classifier := classifierfake.New()

	go connectCameraLoop(ctx, camera, logger)
	go connectDoorLoop(ctx, door, logger)

	msgs := make(chan core.Msg, 64)
	coreCfg, err := cfg.CoreConfig()
	if err != nil {
		return fmt.Errorf("could not build core config: %w", err)
	}

	interp := runtime.NewInterpreter(runtime.Devices{
		Camera:     camera,
		Door:       door,
		Classifier: classifier,
		Clock:      device.SystemClock{},
		Logger:     logger,
	}, msgs, coreCfg.TickRate)

	loop := runtime.NewLoop(coreCfg, interp, msgs, runtime.Renderer{Display: display, Logger: logger}, logger)

	return loop.Run(ctx)
}

func buildCamera(cfg config.CameraConfig, logger device.Logger) (device.Camera, error) {
	switch cfg.Backend {
	case "raspberry":
		return cameraraspberry.New(logger, cfg.Width, cfg.Height), nil
	case "macos":
		deviceID := "0:none"
		if len(cfg.DevicePaths) > 0 {
			deviceID = cfg.DevicePaths[0]
		}
		return cameramacos.New(logger, deviceID, cfg.Width, cfg.Height), nil
	case "fake":
		return camerafake.New(), nil
	default:
		return nil, fmt.Errorf("unknown camera backend %q", cfg.Backend)
	}
}

// connectableDoor is the extra lifecycle contract gpio.Door exposes
// beyond device.Door (doorfake.Door's Connect takes no context and is
// handled separately in connectDoorLoop); the wiring layer calls it
// directly since establishing the connection is not part of the core's
// own effect vocabulary (spec.md §4.2 — a device owns its own
// reconnection policy).
type connectableDoor interface {
	device.Door
	Connect(ctx context.Context) error
}

func buildDoor(cfg config.DoorConfig) (device.Door, error) {
	switch cfg.Backend {
	case "gpio":
		return doorgpio.New(cfg.Chip, cfg.RelayPin), nil
	case "fake":
		return doorfake.New(), nil
	default:
		return nil, fmt.Errorf("unknown door backend %q", cfg.Backend)
	}
}

func buildDisplay(cfg config.DisplayConfig) (device.Display, error) {
	switch cfg.Backend {
	case "lcd":
		return displaylcd.New(fmt.Sprintf("/dev/i2c-%s", cfg.I2CBus), cfg.I2CAddr)
	case "console":
		return displayconsole.NewStdout(), nil
	case "fake":
		return displayfake.New(), nil
	default:
		return nil, fmt.Errorf("unknown display backend %q", cfg.Backend)
	}
}

// connectCameraLoop keeps retrying camera.Start until ctx is cancelled.
// camera.Start (for raspberry/macos backends) re-probes and re-emits a
// Connected event if it had dropped. A fake camera is instead sent one
// Connected event and left alone.
func connectCameraLoop(ctx context.Context, camera device.Camera, logger device.Logger) {
	if fc, ok := camera.(*camerafake.Camera); ok {
		fc.Connect()
		return
	}

	for {
		if err := camera.Start(ctx); err != nil {
			logger.Warn("camera connect failed, retrying", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(connectRetry):
		}
	}
}

func connectDoorLoop(ctx context.Context, door device.Door, logger device.Logger) {
	if fd, ok := door.(*doorfake.Door); ok {
		fd.Connect()
		return
	}

	cd, ok := door.(connectableDoor)
	if !ok {
		return
	}
	for {
		if err := cd.Connect(ctx); err != nil {
			logger.Warn("door connect failed, retrying", "error", err)
		} else {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(connectRetry):
		}
	}
}
