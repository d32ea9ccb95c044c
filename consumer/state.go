package consumer

// State is a decoder worker's position in its lifecycle: Idle until the
// first tick has been pushed, Running from then on, Drained once its
// upstream has closed (or been cancelled) for good.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDrained
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDrained:
		return "drained"
	default:
		return "unknown"
	}
}
