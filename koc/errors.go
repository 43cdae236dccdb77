package koc

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedHeader       = errors.New("malformed header")
	ErrMalformedTimestamp    = errors.New("malformed timestamp")
	ErrUnknownCommand        = errors.New("unknown command")
	ErrArgumentCountMismatch = errors.New("argument count mismatch")
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrVersionMismatch       = errors.New("version mismatch")
	ErrInvalidBranchCode     = errors.New("invalid branch code")
	ErrFileNotFound          = errors.New("file not found")
)

// LineError locates a decode error inside a KOC file. Line is 1-based.
type LineError struct {
	File string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Err.Error())
}

func (e *LineError) Unwrap() error {
	return e.Err
}
