package sandpy

import (
	"errors"
	"sandpy/internal/object"
	"sandpy/internal/parser"
)

// FailureKind tells which stage rejected a script.
type FailureKind int

const (
	ParseFailure FailureKind = iota + 1
	ExecutionFailure
)

func (k FailureKind) String() string {
	switch k {
	case ParseFailure:
		return "parse"
	case ExecutionFailure:
		return "execution"
	}
	return "unknown"
}

type (
	ParseError            = parser.Error
	SandboxExecutionError = object.ExecutionError
	ErrorKind             = object.ErrorKind
)

const (
	Timeout             = object.Timeout
	ReferenceNotExist   = object.ReferenceNotExist
	DivideByZero        = object.DivideByZero
	UnsupportedOperator = object.UnsupportedOperator
	TypeError           = object.TypeError
	AttributeNotExist   = object.AttributeNotExist
	IndexOutOfRange     = object.IndexOutOfRange
	ValueError          = object.ValueError
	MemoryExhausted     = object.MemoryExhausted
	RecursionLimit      = object.RecursionLimit
	ControlFlow         = object.ControlFlow
	Internal            = object.Internal
)

// Sentinels for errors.Is. They match on kind only.
var (
	ErrTimeout             = object.ErrTimeout
	ErrReferenceNotExist   = object.ErrReferenceNotExist
	ErrDivideByZero        = object.ErrDivideByZero
	ErrUnsupportedOperator = object.ErrUnsupportedOperator
	ErrTypeError           = object.ErrTypeError
	ErrAttributeNotExist   = object.ErrAttributeNotExist
	ErrIndexOutOfRange     = object.ErrIndexOutOfRange
	ErrValueError          = object.ErrValueError
	ErrMemoryExhausted     = object.ErrMemoryExhausted
	ErrRecursionLimit      = object.ErrRecursionLimit
	ErrControlFlow         = object.ErrControlFlow
	ErrInternal            = object.ErrInternal
)

// ExecError is the single failure type returned by Exec. Exactly one of
// Parse and Execution is set, matching Kind.
type ExecError struct {
	Kind      FailureKind
	Parse     *ParseError
	Execution *SandboxExecutionError
}

func (e *ExecError) Error() string {
	if e.Kind == ParseFailure && e.Parse != nil {
		return e.Parse.Error()
	}
	if e.Execution != nil {
		return e.Execution.Error()
	}
	return "sandpy: " + e.Kind.String() + " failure"
}

func (e *ExecError) Unwrap() error {
	if e.Parse != nil {
		return e.Parse
	}
	if e.Execution != nil {
		return e.Execution
	}
	return nil
}

// IsTimeout reports whether err is a fuel exhaustion.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// KindOf extracts the execution error kind from err. It reports false for
// parse failures and foreign errors.
func KindOf(err error) (ErrorKind, bool) {
	var execErr *SandboxExecutionError
	if errors.As(err, &execErr) {
		return execErr.Kind, true
	}
	return 0, false
}

// RenderError formats err for a terminal, with source context for
// execution failures that carry a position.
func RenderError(source string, err error) string {
	var execErr *SandboxExecutionError
	if errors.As(err, &execErr) {
		return object.RenderError(source, execErr)
	}
	return err.Error() + "\n"
}
