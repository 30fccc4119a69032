package object

import (
	"fmt"
)

// ErrorKind classifies an execution failure.
type ErrorKind int

const (
	Timeout ErrorKind = iota
	ReferenceNotExist
	DivideByZero
	UnsupportedOperator
	TypeError
	AttributeNotExist
	IndexOutOfRange
	ValueError
	MemoryExhausted
	RecursionLimit
	ControlFlow
	Internal
)

func (k ErrorKind) String() string {
	switch k {
	case Timeout:
		return "Timeout"
	case ReferenceNotExist:
		return "ReferenceNotExist"
	case DivideByZero:
		return "DivideByZero"
	case UnsupportedOperator:
		return "UnsupportedOperator"
	case TypeError:
		return "TypeError"
	case AttributeNotExist:
		return "AttributeNotExist"
	case IndexOutOfRange:
		return "IndexOutOfRange"
	case ValueError:
		return "ValueError"
	case MemoryExhausted:
		return "MemoryExhausted"
	case RecursionLimit:
		return "RecursionLimit"
	case ControlFlow:
		return "ControlFlow"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ExecutionError is a failure raised while evaluating guest code.
type ExecutionError struct {
	Kind    ErrorKind
	Name    string // the missing name for ReferenceNotExist
	Message string
	Pos     int // byte offset of the failing node, -1 when unknown
	Line    int // filled in from Pos by the entry point, 0 when unknown
	Column  int
}

func (e *ExecutionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (at line %d, column %d)", e.Kind, e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches another *ExecutionError of the same kind, so the Err* values
// below work with errors.Is. A non-empty Name on the target must match too.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Name == "" || t.Name == e.Name)
}

// WithPos records pos unless a deeper node already did.
func (e *ExecutionError) WithPos(pos int) *ExecutionError {
	if e.Pos < 0 {
		e.Pos = pos
	}
	return e
}

var (
	ErrTimeout             = &ExecutionError{Kind: Timeout}
	ErrReferenceNotExist   = &ExecutionError{Kind: ReferenceNotExist}
	ErrDivideByZero        = &ExecutionError{Kind: DivideByZero}
	ErrUnsupportedOperator = &ExecutionError{Kind: UnsupportedOperator}
	ErrTypeError           = &ExecutionError{Kind: TypeError}
	ErrAttributeNotExist   = &ExecutionError{Kind: AttributeNotExist}
	ErrIndexOutOfRange     = &ExecutionError{Kind: IndexOutOfRange}
	ErrValueError          = &ExecutionError{Kind: ValueError}
	ErrMemoryExhausted     = &ExecutionError{Kind: MemoryExhausted}
	ErrRecursionLimit      = &ExecutionError{Kind: RecursionLimit}
	ErrControlFlow         = &ExecutionError{Kind: ControlFlow}
	ErrInternal            = &ExecutionError{Kind: Internal}
)

func NewError(kind ErrorKind, format string, a ...interface{}) *ExecutionError {
	return &ExecutionError{Kind: kind, Message: fmt.Sprintf(format, a...), Pos: -1}
}

func NewReferenceError(name string) *ExecutionError {
	return &ExecutionError{
		Kind:    ReferenceNotExist,
		Name:    name,
		Message: fmt.Sprintf("name '%s' is not defined", name),
		Pos:     -1,
	}
}

func NewTimeoutError(requested, remaining int64) *ExecutionError {
	return NewError(Timeout, "fuel exhausted: requested %d, remaining %d", requested, remaining)
}
