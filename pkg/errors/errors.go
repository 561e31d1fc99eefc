package errors

import (
	"errors"
	"fmt"
	"io"

	"github.com/devc/devc/pkg/color"
)

// Kind classifies a devc failure. None of them are retried.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfigurationMissing
	KindLockContention
	KindStateCorruption
	KindConfigDrift
	KindUnexpectedEngineState
	KindBuildFailure
)

func (k Kind) String() string {
	switch k {
	case KindConfigurationMissing:
		return "configuration missing"
	case KindLockContention:
		return "lock contention"
	case KindStateCorruption:
		return "state corruption"
	case KindConfigDrift:
		return "config drift"
	case KindUnexpectedEngineState:
		return "unexpected engine state"
	case KindBuildFailure:
		return "build failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a kind.
var (
	ErrConfigurationMissing  = &Error{Kind: KindConfigurationMissing}
	ErrLockContention        = &Error{Kind: KindLockContention}
	ErrStateCorruption       = &Error{Kind: KindStateCorruption}
	ErrConfigDrift           = &Error{Kind: KindConfigDrift}
	ErrUnexpectedEngineState = &Error{Kind: KindUnexpectedEngineState}
	ErrBuildFailure          = &Error{Kind: KindBuildFailure}
)

// Error is a classified devc error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// New returns an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an error of the given kind wrapping err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ExitError carries the exit code of a command run inside the container.
// It is not a failure of devc itself and is never printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.Code)
}

// ExitCode maps err to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// PrintError prints an error to w unless it only carries an exit code.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	color.Errorf(w, "Error: %v", err)
}
