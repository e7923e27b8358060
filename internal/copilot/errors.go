package copilot

import "fmt"

// GenerationError reports that the language model could not produce SQL,
// either for the initial attempt or during the repair round.
type GenerationError struct {
	Repair bool
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Repair {
		return fmt.Sprintf("SQL repair generation failed: %v", e.Err)
	}
	return fmt.Sprintf("SQL generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ExecutionError reports that the database engine rejected a query that
// had already passed guard validation. SQL carries the statement that
// failed last; Repaired tells whether a repair round was already spent.
type ExecutionError struct {
	SQL      string
	Repaired bool
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.Repaired {
		return fmt.Sprintf("query failed even after auto-repair: %v", e.Err)
	}
	return fmt.Sprintf("query execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
