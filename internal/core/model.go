// Package core implements the pet door control kernel: a pure, total
// transition function from (Config, Model, Msg) to (Model, []Effect).
//
// Nothing in this package performs I/O, reads the wall clock, or spawns a
// goroutine. Every environmental input arrives as a Msg: time progresses
// only through Tick messages produced elsewhere (internal/runtime). Every
// requested side effect leaves as an Effect value for the interpreter to
// execute. This separation is what makes Transition deterministic and
// trivially testable without mocking real devices.
package core

import (
	"strings"
	"time"
)

// Config is the controller's immutable policy, loaded once at startup.
type Config struct {
	TickRate              time.Duration
	CameraProcessRate     time.Duration
	MinDurationWillUnlock time.Duration
	MinDurationWillLock   time.Duration
	UnlockList            []LabelRule
	LockList              []LabelRule
	LoggerTimezone        *time.Location
}

// LabelRule pairs a classifier label with the minimum confidence at which
// it should count as a match.
type LabelRule struct {
	Label         string
	MinConfidence float64
}

// Classification is a single labeled detection produced by the classifier
// for one frame.
type Classification struct {
	Label      string
	Confidence float64
}

// Frame is an opaque image buffer captured by the camera and consumed by
// the classifier. The core never inspects its contents.
type Frame []byte

// ConnState is the connectedness of a single external device within the
// Connecting phase of the model.
type ConnState int

const (
	DevConnecting ConnState = iota
	DevConnected
)

func (s ConnState) String() string {
	if s == DevConnected {
		return "connected"
	}
	return "connecting"
}

// Detection is the derived summary of the camera's latest classifications
// under the current Config. It is never stored in the model; it is always
// recomputed from CameraModel.LatestClassifications.
type Detection int

const (
	DetectionNone Detection = iota
	DetectionDog
	DetectionCat
)

func (d Detection) String() string {
	switch d {
	case DetectionDog:
		return "dog"
	case DetectionCat:
		return "cat"
	default:
		return "none"
	}
}

// CameraState is the camera sub-model's state tag.
type CameraState int

const (
	CameraIdle CameraState = iota
	CameraCapturing
	CameraClassifying
)

// CameraModel is the camera half of a Ready model.
type CameraModel struct {
	State CameraState
	Since time.Time

	// LatestClassifications is a list (per captured frame) of lists
	// (per detection within that frame) of Classification. It is
	// overwritten wholesale on every successful classify cycle and is
	// never mutated in place, so callers may retain a reference to an
	// older CameraModel without it changing underneath them.
	LatestClassifications [][]Classification
}

// DoorState is the door sub-model's state tag.
type DoorState int

const (
	DoorLocked DoorState = iota
	DoorWillUnlock
	DoorUnlocked
	DoorWillLock
)

func (s DoorState) String() string {
	switch s {
	case DoorWillUnlock:
		return "will_unlock"
	case DoorUnlocked:
		return "unlocked"
	case DoorWillLock:
		return "will_lock"
	default:
		return "locked"
	}
}

// DoorModel is the door half of a Ready model.
type DoorModel struct {
	State DoorState
	Since time.Time // meaningful only for WillUnlock/WillLock
}

// Phase distinguishes the two top-level Model variants.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseReady
)

// Model is the complete logical state of the controller at a point in
// time. Exactly one of the two variant payloads is meaningful, selected by
// Phase:
//
//   - PhaseConnecting: Camera/Door hold ConnState values.
//   - PhaseReady: CameraModel/DoorModel hold the running sub-models.
//
// A Model is produced once by Init and thereafter only by Transition; the
// event loop owns a single current value and discards the previous one on
// every step.
type Model struct {
	Phase Phase

	// Connecting phase.
	ConnectingCamera ConnState
	ConnectingDoor   ConnState

	// Ready phase.
	Camera CameraModel
	Door   DoorModel
}

// Connecting constructs a Connecting-phase Model with the given
// sub-connection states.
func Connecting(camera, door ConnState) Model {
	return Model{Phase: PhaseConnecting, ConnectingCamera: camera, ConnectingDoor: door}
}

// Ready constructs a Ready-phase Model with the given sub-models.
func Ready(camera CameraModel, door DoorModel) Model {
	return Model{Phase: PhaseReady, Camera: camera, Door: door}
}

// detection computes the derived Detection for a CameraModel under cfg.
// Cat takes precedence over dog: the presence of an excluded animal
// always overrides presence of a permitted one, even within a single
// frame's classification list.
func detection(cfg Config, cam CameraModel) Detection {
	if matchesAny(cam.LatestClassifications, cfg.LockList) {
		return DetectionCat
	}
	if matchesAny(cam.LatestClassifications, cfg.UnlockList) {
		return DetectionDog
	}
	return DetectionNone
}

func matchesAny(frames [][]Classification, rules []LabelRule) bool {
	for _, frame := range frames {
		for _, c := range frame {
			for _, rule := range rules {
				if labelMatches(c.Label, rule.Label) && c.Confidence >= rule.MinConfidence {
					return true
				}
			}
		}
	}
	return false
}

// labelMatches reports whether label contains want, case-insensitively,
// per spec.md's detection derivation ("c.label.lower contains u.label.lower").
func labelMatches(label, want string) bool {
	return strings.Contains(strings.ToLower(label), strings.ToLower(want))
}
