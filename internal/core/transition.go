package core

import "time"

// Init returns the controller's starting Model together with the three
// long-lived subscription effects that drive every later Transition call.
// Both camera and door begin Connecting; nothing is assumed about the
// device state until an explicit Connected event arrives.
func Init() (Model, []Effect) {
	return Connecting(DevConnecting, DevConnecting), []Effect{
		subscribeCamera(),
		subscribeDoor(),
		subscribeTick(),
	}
}

// Transition is the control kernel's single decision point: a total,
// deterministic, side-effect-free function from the current Model and an
// incoming Msg to the next Model and the Effects it requests. See
// spec.md §4.1 for the authoritative state tables this function encodes.
func Transition(cfg Config, model Model, msg Msg) (Model, []Effect) {
	if model.Phase == PhaseConnecting {
		return transitionConnecting(model, msg)
	}
	return transitionReady(cfg, model, msg)
}

func transitionConnecting(model Model, msg Msg) (Model, []Effect) {
	switch msg.Kind {
	case MsgCameraEvent:
		model.ConnectingCamera = connStateFor(msg.ConnEvent)
	case MsgDoorEvent:
		model.ConnectingDoor = connStateFor(msg.ConnEvent)
	default:
		return model, nil
	}

	if model.ConnectingCamera == DevConnected && model.ConnectingDoor == DevConnected {
		// Entry to Ready commands one defensive LockDoor: a freshly
		// connected door is not provably already locked (see
		// SPEC_FULL.md §4.1, resolving the source's open question).
		// No frames or classifications cross this boundary.
		return Ready(CameraModel{State: CameraIdle}, DoorModel{State: DoorLocked}), []Effect{lockDoor()}
	}
	return model, nil
}

func connStateFor(e ConnEvent) ConnState {
	if e == EventConnected {
		return DevConnected
	}
	return DevConnecting
}

func transitionReady(cfg Config, model Model, msg Msg) (Model, []Effect) {
	// A disconnect from either device atomically drops back to
	// Connecting, preserving the other device's Connected state. No
	// frames or in-flight door commands survive the boundary; any
	// pending completion that arrives afterwards matches no rule in
	// Connecting and is silently absorbed.
	if msg.Kind == MsgCameraEvent && msg.ConnEvent == EventDisconnected {
		return Connecting(DevConnecting, DevConnected), nil
	}
	if msg.Kind == MsgDoorEvent && msg.ConnEvent == EventDisconnected {
		return Connecting(DevConnected, DevConnecting), nil
	}
	// A spurious Connected event for an already-ready device is a
	// no-op; Connecting-phase handling only applies pre-Ready.
	if msg.Kind == MsgCameraEvent || msg.Kind == MsgDoorEvent {
		return model, nil
	}

	before := detection(cfg, model.Camera)

	camera, effects := transitionCamera(cfg, model.Camera, msg)

	after := detection(cfg, camera)

	// camera.Since is the timestamp of the Tick that started the
	// capture/classify cycle which produced this detection: the only
	// notion of "now" available off the tick boundary, since a
	// detection change is observed on MsgFramesClassifyDone rather than
	// on a Tick itself.
	door, doorEffects := transitionDoor(cfg, model.Door, before, after, camera.Since, msg)
	effects = append(effects, doorEffects...)

	return Ready(camera, door), effects
}

func transitionCamera(cfg Config, cam CameraModel, msg Msg) (CameraModel, []Effect) {
	switch cam.State {
	case CameraIdle:
		if msg.Kind != MsgTick {
			return cam, nil
		}
		if msg.Now.Sub(cam.Since) < cfg.CameraProcessRate {
			return cam, nil
		}
		cam.State = CameraCapturing
		cam.Since = msg.Now
		return cam, []Effect{captureFrames()}

	case CameraCapturing:
		if msg.Kind != MsgFramesCaptureDone {
			return cam, nil
		}
		if !msg.CaptureResult.Ok() || len(msg.CaptureResult.Value) == 0 {
			cam.State = CameraIdle
			return cam, nil
		}
		cam.State = CameraClassifying
		return cam, []Effect{classifyFrames(msg.CaptureResult.Value)}

	case CameraClassifying:
		if msg.Kind != MsgFramesClassifyDone {
			return cam, nil
		}
		cam.State = CameraIdle
		if msg.ClassifyResult.Ok() {
			cam.LatestClassifications = msg.ClassifyResult.Value
		}
		return cam, nil

	default:
		return cam, nil
	}
}

func transitionDoor(cfg Config, door DoorModel, before, after Detection, detectedAt time.Time, msg Msg) (DoorModel, []Effect) {
	door, changeEffects := reconcileDetectionChange(door, before, after, detectedAt)

	switch door.State {
	case DoorWillUnlock:
		if msg.Kind == MsgTick && msg.Now.Sub(door.Since) >= cfg.MinDurationWillUnlock {
			return DoorModel{State: DoorUnlocked}, append(changeEffects, unlockDoor())
		}
		if msg.Kind == MsgDoorUnlockDone && msg.DoorDone.Ok() {
			return DoorModel{State: DoorUnlocked}, changeEffects
		}

	case DoorWillLock:
		if msg.Kind == MsgTick && msg.Now.Sub(door.Since) >= cfg.MinDurationWillLock {
			return DoorModel{State: DoorLocked}, append(changeEffects, lockDoor())
		}
		if msg.Kind == MsgDoorLockDone && msg.DoorDone.Ok() {
			return DoorModel{State: DoorLocked}, changeEffects
		}

	// A failed unlock/lock completion puts the door back into the
	// matching Will* state with a zero Since, so its window has already
	// elapsed and the next tick re-issues the effect. Retries repeat on
	// every tick until one succeeds or a detection change intervenes.
	case DoorUnlocked:
		if msg.Kind == MsgDoorUnlockDone && !msg.DoorDone.Ok() {
			return DoorModel{State: DoorWillUnlock}, changeEffects
		}

	case DoorLocked:
		if msg.Kind == MsgDoorLockDone && !msg.DoorDone.Ok() {
			return DoorModel{State: DoorWillLock}, changeEffects
		}
	}
	// Ticks before the debounce window elapses leave the door in its
	// current state.
	return door, changeEffects
}

// reconcileDetectionChange implements spec.md §4.1's "reaction to
// detection change" table. It never issues SubscribeTick-driven effects
// itself (Unlock/LockDoor on debounce expiry is transitionDoor's job);
// it only reacts to the detection value flipping within this step.
func reconcileDetectionChange(door DoorModel, before, after Detection, detectedAt time.Time) (DoorModel, []Effect) {
	if before == after {
		return door, nil
	}

	switch {
	case door.State == DoorLocked && after == DetectionDog:
		return DoorModel{State: DoorWillUnlock, Since: detectedAt}, nil

	case door.State == DoorWillUnlock && after == DetectionCat:
		return DoorModel{State: DoorLocked}, []Effect{lockDoor()}

	// A WillUnlock intent that loses its Dog detection before the
	// debounce window commits is aborted back to Locked: the magnet
	// was never de-powered, so no LockDoor effect is needed, only the
	// internal intent. Without this, a single flapping misclassification
	// that briefly produced Dog would otherwise unlock at the original
	// debounce deadline regardless of what the camera sees afterwards —
	// the flap-rejection property spec.md §8 scenario 5 requires.
	case door.State == DoorWillUnlock && after != DetectionDog:
		return DoorModel{State: DoorLocked}, nil

	case door.State == DoorUnlocked && after == DetectionNone:
		return DoorModel{State: DoorWillLock, Since: detectedAt}, nil

	case door.State == DoorUnlocked && after == DetectionCat:
		return DoorModel{State: DoorWillLock, Since: detectedAt}, nil

	// Symmetric abort: a WillLock intent that regains a Dog detection
	// before the debounce commits returns to Unlocked with no effect.
	case door.State == DoorWillLock && after == DetectionDog:
		return DoorModel{State: DoorUnlocked}, nil

	default:
		return door, nil
	}
}
