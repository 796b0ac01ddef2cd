package assembly

import (
	"errors"
	"fmt"
	"strings"
)

// Error categories. Every error returned by this package matches exactly one
// of these through errors.Is.
var (
	ErrInputNotFound          = errors.New("input not found")
	ErrInvalidSelection       = errors.New("invalid page selection")
	ErrKeywordNotFound        = errors.New("keyword not found")
	ErrOutOfRangeOccurrence   = errors.New("keyword occurrence out of range")
	ErrInvalidRange           = errors.New("invalid page range")
	ErrMissingRequiredSection = errors.New("missing required section")
	ErrIOFailure              = errors.New("i/o failure")
)

// MissingSectionsError lists every required section that could not be found
// in any candidate document.
type MissingSectionsError struct {
	Names []string
}

func (e *MissingSectionsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequiredSection, strings.Join(e.Names, ", "))
}

func (e *MissingSectionsError) Is(target error) bool {
	return target == ErrMissingRequiredSection
}

// IOError wraps a backend or filesystem failure.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool {
	return target == ErrIOFailure
}

func ioErr(op, path string, err error) error {
	var ioe *IOError
	if errors.As(err, &ioe) {
		return err
	}
	if errors.Is(err, ErrInputNotFound) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// Category returns the sentinel matching err, or nil if err does not come
// from this package.
func Category(err error) error {
	for _, sentinel := range []error{
		ErrInputNotFound,
		ErrInvalidSelection,
		ErrKeywordNotFound,
		ErrOutOfRangeOccurrence,
		ErrInvalidRange,
		ErrMissingRequiredSection,
		ErrIOFailure,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return nil
}
