package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/doorkeeper/petdoor/internal/core"
	"github.com/doorkeeper/petdoor/internal/device"
	"github.com/doorkeeper/petdoor/internal/logging"
	"github.com/doorkeeper/petdoor/internal/runtime"
	camerafake "github.com/doorkeeper/petdoor/pkg/camera/fake"
	classifierfake "github.com/doorkeeper/petdoor/pkg/classifier/fake"
	displayfake "github.com/doorkeeper/petdoor/pkg/display/fake"
	doorfake "github.com/doorkeeper/petdoor/pkg/door/fake"
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func testConfig() core.Config {
	return core.Config{
		TickRate:              20 * time.Millisecond,
		CameraProcessRate:     0,
		MinDurationWillUnlock: 0,
		MinDurationWillLock:   0,
		UnlockList:            []core.LabelRule{{Label: "dog", MinConfidence: 0.5}},
		LockList:              []core.LabelRule{{Label: "cat", MinConfidence: 0.5}},
	}
}

func TestLoopUnlocksOnDogDetection(t *testing.T) {
	cfg := testConfig()

	cam := camerafake.New(camerafake.Cycle{Frames: []core.Frame{core.Frame("f")}})
	cls := classifierfake.New(classifierfake.Result{
		Classifications: [][]core.Classification{{{Label: "dog", Confidence: 0.9}}},
	})
	door := doorfake.New()
	disp := displayfake.New()
	logger := logging.New(logging.Options{})

	msgs := make(chan core.Msg, 64)
	interp := runtime.NewInterpreter(runtime.Devices{
		Camera:     cam,
		Door:       door,
		Classifier: cls,
		Clock:      &testClock{t: time.Unix(0, 0)},
		Logger:     logger,
	}, msgs, cfg.TickRate)

	loop := runtime.NewLoop(cfg, interp, msgs, runtime.Renderer{Display: disp, Logger: logger}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	// Bring the controller up to Ready.
	cam.Connect()
	door.Connect()

	deadline := time.After(400 * time.Millisecond)
	for {
		unlockCalls := 0
		for _, c := range door.Calls() {
			if c.Unlock {
				unlockCalls++
			}
		}
		if unlockCalls > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for an Unlock call")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("loop.Run returned error: %v", err)
	}
}

func TestLoopRendersConnectingThenReady(t *testing.T) {
	cfg := testConfig()

	cam := camerafake.New()
	cls := classifierfake.New()
	door := doorfake.New()
	disp := displayfake.New()
	logger := logging.New(logging.Options{})

	msgs := make(chan core.Msg, 64)
	interp := runtime.NewInterpreter(runtime.Devices{
		Camera: cam, Door: door, Classifier: cls,
		Clock: &testClock{t: time.Unix(0, 0)}, Logger: logger,
	}, msgs, cfg.TickRate)
	loop := runtime.NewLoop(cfg, interp, msgs, runtime.Renderer{Display: disp, Logger: logger}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	initialDeadline := time.After(250 * time.Millisecond)
	for {
		l0, l1 := disp.Lines()
		if l0 == "camera connecting" && l1 == "door connecting" {
			break
		}
		select {
		case <-initialDeadline:
			t.Fatalf("timed out waiting for initial Connecting render, last seen %q/%q", l0, l1)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cam.Connect()
	door.Connect()

	deadline := time.After(250 * time.Millisecond)
	for {
		l0, l1 = disp.Lines()
		if l0 == "none" && l1 == "locked" {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for Ready render, last seen %q/%q", l0, l1)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

var _ device.Logger = (*logging.SlogLogger)(nil)
