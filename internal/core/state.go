package core

// State is the lifecycle state of a Controller.
type State int

const (
	// StateIdle means no process is live.
	StateIdle State = iota
	// StateStarting covers opening the transcript and spawning.
	StateStarting
	// StateRunning means the process is live but has not printed a ready line.
	StateRunning
	// StateReady means the process printed a line matching the ready pattern.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}
