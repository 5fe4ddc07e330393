package pipeline

import "errors"

// State is the pipeline lifecycle state
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateStopped
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	case StateError:
		return "Error"
	default:
		return "Unknown"
	}
}

var (
	// ErrTargetLost means the target window no longer exists
	ErrTargetLost = errors.New("target window lost")
	// ErrNoTarget is returned by Start without a target
	ErrNoTarget = errors.New("no target window selected")
	// ErrAlreadyRunning is returned when starting a pipeline that has not stopped yet
	ErrAlreadyRunning = errors.New("pipeline already running")
	// ErrNotRunning is returned by Stop when there is nothing to stop
	ErrNotRunning = errors.New("pipeline not running")
)
