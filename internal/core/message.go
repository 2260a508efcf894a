package core

import "time"

// MsgKind tags the variant of a Msg.
type MsgKind int

const (
	MsgTick MsgKind = iota
	MsgCameraEvent
	MsgDoorEvent
	MsgDoorLockDone
	MsgDoorUnlockDone
	MsgFramesCaptureDone
	MsgFramesClassifyDone
)

// ConnEvent is the payload of a device connection event.
type ConnEvent int

const (
	EventConnected ConnEvent = iota
	EventDisconnected
)

// Result carries the outcome of a fallible effect completion. The core
// never inspects Err beyond nil-ness; the interpreter is free to use any
// error value that is safe to share across goroutines.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok reports whether the result completed without error.
func (r Result[T]) Ok() bool { return r.Err == nil }

// Msg is the input alphabet of Transition. Exactly one field group is
// meaningful, selected by Kind; the rest are zero.
type Msg struct {
	Kind MsgKind
	Now  time.Time // MsgTick

	ConnEvent ConnEvent // MsgCameraEvent, MsgDoorEvent

	DoorDone Result[struct{}] // MsgDoorLockDone, MsgDoorUnlockDone

	CaptureResult   Result[[]Frame]             // MsgFramesCaptureDone
	ClassifyResult  Result[[][]Classification]  // MsgFramesClassifyDone
}

// Tick builds a MsgTick carrying the current instant, the only way wall
// time enters the pure core.
func Tick(now time.Time) Msg { return Msg{Kind: MsgTick, Now: now} }

// CameraEvent builds a MsgCameraEvent.
func CameraEvent(e ConnEvent) Msg { return Msg{Kind: MsgCameraEvent, ConnEvent: e} }

// DoorEvent builds a MsgDoorEvent.
func DoorEvent(e ConnEvent) Msg { return Msg{Kind: MsgDoorEvent, ConnEvent: e} }

// DoorLockDone builds a MsgDoorLockDone carrying the lock call's outcome.
func DoorLockDone(err error) Msg {
	return Msg{Kind: MsgDoorLockDone, DoorDone: Result[struct{}]{Err: err}}
}

// DoorUnlockDone builds a MsgDoorUnlockDone carrying the unlock call's
// outcome.
func DoorUnlockDone(err error) Msg {
	return Msg{Kind: MsgDoorUnlockDone, DoorDone: Result[struct{}]{Err: err}}
}

// FramesCaptureDone builds a MsgFramesCaptureDone.
func FramesCaptureDone(frames []Frame, err error) Msg {
	return Msg{Kind: MsgFramesCaptureDone, CaptureResult: Result[[]Frame]{Value: frames, Err: err}}
}

// FramesClassifyDone builds a MsgFramesClassifyDone.
func FramesClassifyDone(cs [][]Classification, err error) Msg {
	return Msg{Kind: MsgFramesClassifyDone, ClassifyResult: Result[[][]Classification]{Value: cs, Err: err}}
}
