package session

import "fmt"

// State is the phase a capture session is in. Exactly one is active at a time.
type State int

const (
	// StateIdleDisplay shows the live feed with no collection running
	StateIdleDisplay State = iota
	// StateCollectingIdle waits for the operator to record, preview or save
	StateCollectingIdle
	// StateCountdown runs the fixed pre-recording countdown
	StateCountdown
	// StateRecording captures frames into the buffer
	StateRecording
	// StatePlayback replays the buffer on screen
	StatePlayback
	// StateSaving encodes the buffer to a clip file
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdleDisplay:
		return "idle"
	case StateCollectingIdle:
		return "collecting"
	case StateCountdown:
		return "countdown"
	case StateRecording:
		return "recording"
	case StatePlayback:
		return "playback"
	case StateSaving:
		return "saving"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// LiveFeedSuspended reports whether a worker needs exclusive use of the camera or display
func (s State) LiveFeedSuspended() bool {
	return s == StateRecording || s == StatePlayback || s == StateSaving
}

// Busy reports whether a countdown or background worker is running
func (s State) Busy() bool {
	return s == StateCountdown || s.LiveFeedSuspended()
}

// Controls lists which operator actions are enabled
type Controls struct {
	SettingsEditable bool // output directory, duration and category
	Toggle           bool
	Record           bool
	Play             bool
	Save             bool
}

// ControlsFor returns the enabled controls for a state
func ControlsFor(s State) Controls {
	switch s {
	case StateIdleDisplay:
		return Controls{SettingsEditable: true, Toggle: true}
	case StateCollectingIdle:
		return Controls{Toggle: true, Record: true, Play: true, Save: true}
	default:
		return Controls{}
	}
}
