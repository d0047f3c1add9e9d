package types

import "errors"

// Error kinds shared across the processing stages.  Stages wrap these with
// context via fmt.Errorf and callers match with errors.Is.
var (
	// ErrInvalidInput signals raw data that is malformed or too short for a
	// given check.  The quality scanner degrades to its remaining checks
	// rather than aborting the run.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnrepairableSeries is terminal: after trimming or filtering, too
	// few samples remain to continue the run.
	ErrUnrepairableSeries = errors.New("unrepairable series")

	// ErrConfiguration signals an invalid parameter combination.  It is
	// surfaced before any processing starts.
	ErrConfiguration = errors.New("invalid configuration")
)

// ErrorKind maps a stage error to its short reporting name, empty for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnrepairableSeries):
		return "unrepairable_series"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	}
	return "internal"
}
