package downloader

import "testing"

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateIdle:       "idle",
		StateRequesting: "requesting",
		StateWriting:    "writing",
		StateRetrying:   "retrying",
		StateCompleted:  "completed",
		StateFailed:     "failed",
		State(99):       "unknown",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestStateTerminal(t *testing.T) {
	terminal := []State{StateCompleted, StateFailed}
	active := []State{StateIdle, StateRequesting, StateWriting, StateRetrying}

	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%v should be terminal", s)
		}
	}
	for _, s := range active {
		if s.Terminal() {
			t.Errorf("%v should not be terminal", s)
		}
	}
}
