package downloader

// State is the engine's position in the transfer lifecycle. Retry state is
// tracked explicitly rather than as loose counters so the terminal conditions
// stay exhaustively checkable.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateWriting
	StateRetrying
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateWriting:
		return "writing"
	case StateRetrying:
		return "retrying"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}
