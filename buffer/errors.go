package buffer

import (
	"errors"
	"fmt"
)

var errNoFilename = errors.New("no file name")

// OpenError reports an existing file that could not be read.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("unable to open file %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// SaveError reports a destination that could not be written. The buffer is
// left as it was.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unable to write file: %v", e.Err)
	}
	return fmt.Sprintf("unable to write file %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
