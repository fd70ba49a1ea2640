package pipeline

import "github.com/rotisserie/eris"

// ErrNoData is returned when no sheet in the input workbook produced any data
// rows. It is fatal to the whole run.
var ErrNoData = eris.New("no sheet produced any rows")

// StageError identifies which pipeline stage failed. The orchestrator wraps
// every stage failure in one of these so callers can report the stage without
// parsing messages.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return "pipeline: stage " + e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
