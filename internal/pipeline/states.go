package pipeline

// State identifies where a run is in the stage sequence.  Transitions are
// one-way; a failed stage moves the run to StateRejected and no stage is
// retried.
type State int

const (
	StateLoaded State = iota
	StateScanned
	StateGapFilled
	StateConditioned
	StateExtracted
	StateDone
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateScanned:
		return "scanned"
	case StateGapFilled:
		return "gapfilled"
	case StateConditioned:
		return "conditioned"
	case StateExtracted:
		return "extracted"
	case StateDone:
		return "done"
	case StateRejected:
		return "rejected"
	}
	return "unknown"
}

// terminal reports whether the run can advance no further.
func (s State) terminal() bool {
	return s == StateDone || s == StateRejected
}
