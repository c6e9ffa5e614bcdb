package packer

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceFile marks a referenced payload file that is missing,
	// unreadable, empty, or changed size while being copied.
	ErrResourceFile = errors.New("resource file error")
	// ErrEncoding marks values the container codec rejected at encode time.
	ErrEncoding = errors.New("container encoding error")
	// ErrOutput marks failures writing or publishing the destination file.
	ErrOutput = errors.New("output error")
)

// ResourceError ties a payload failure to the resource's index and resolved
// path.
type ResourceError struct {
	Index int
	Path  string
	Err   error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() []error {
	return []error{ErrResourceFile, e.Err}
}

func resourceErr(index int, path string, err error) error {
	return &ResourceError{Index: index, Path: path, Err: err}
}

func encodingErr(err error) error {
	return fmt.Errorf("%w: %w", ErrEncoding, err)
}

func outputErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrOutput, op, err)
}
