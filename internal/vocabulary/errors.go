package vocabulary

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad is matched by every vocabulary load failure.
	ErrLoad = errors.New("vocabulary load failed")
	// ErrEmpty reports a document that decoded to zero usable entries.
	ErrEmpty = errors.New("vocabulary is empty")
)

// LoadError wraps the cause of a failed load together with the source name.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load vocabulary from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is reports every LoadError as ErrLoad.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }
