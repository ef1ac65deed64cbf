package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrLoadInProgress is returned when a load is requested while another
	// one is still running. The running load is not affected.
	ErrLoadInProgress = errors.New("load already in progress")

	// ErrLoadFailed matches every *LoadError via errors.Is.
	ErrLoadFailed = errors.New("load failed")
)

// LoadError reports a fatal failure of the row source for one file. The
// previously current snapshot, if any, stays in place.
type LoadError struct {
	FileName string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %q: %v", e.FileName, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrLoadFailed, e.Err} }
