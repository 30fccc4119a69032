package object

import (
	"fmt"
	"math"
)

const chunkSize = 256

// Arena owns every value created during one execution. Values are never
// freed one by one; Release drops all of them at once.
//
// Allocation never fails at the call site. Exceeding the byte limit or
// allocating after Release records a sticky error, which the evaluator
// checks after every node.
type Arena struct {
	chunks   [][]Value
	count    int
	bytes    int64
	limit    int64 // 0 means unlimited
	released bool
	err      *ExecutionError
}

func NewArena(limit int64) *Arena {
	return &Arena{limit: limit}
}

// Alloc places v into the arena and returns it.
func Alloc[T Value](a *Arena, v T) T {
	a.track(v, sizeOf(v))
	return v
}

func (a *Arena) track(v Value, size int64) {
	if a.released {
		if a.err == nil {
			a.err = NewError(Internal, "allocation after arena release")
		}
		return
	}
	if !a.charge(size) {
		return
	}
	if len(a.chunks) == 0 || len(a.chunks[len(a.chunks)-1]) == chunkSize {
		a.chunks = append(a.chunks, make([]Value, 0, chunkSize))
	}
	last := len(a.chunks) - 1
	a.chunks[last] = append(a.chunks[last], v)
	a.count++
}

func (a *Arena) charge(size int64) bool {
	if a.limit > 0 && (size > a.limit || a.bytes > a.limit-size) {
		if a.err == nil {
			a.err = NewError(MemoryExhausted, "allocation of %d bytes exceeds limit of %d bytes (%d in use)", size, a.limit, a.bytes)
		}
		return false
	}
	a.bytes += size
	return true
}

// Reserve checks that n more bytes fit under the limit without allocating.
// Callers building large values (string repetition) check it up front.
func (a *Arena) Reserve(n int64) error {
	if n < 0 {
		n = math.MaxInt64
	}
	if a.limit > 0 && (n > a.limit || a.bytes > a.limit-n) {
		return NewError(MemoryExhausted, "allocation of %d bytes exceeds limit of %d bytes (%d in use)", n, a.limit, a.bytes)
	}
	return nil
}

// Err reports the first allocation failure, if any.
func (a *Arena) Err() *ExecutionError {
	return a.err
}

func (a *Arena) Len() int       { return a.count }
func (a *Arena) Bytes() int64   { return a.bytes }
func (a *Arena) Limit() int64   { return a.limit }
func (a *Arena) Released() bool { return a.released }

// Release drops every value. The arena refuses allocation afterwards.
func (a *Arena) Release() {
	for i := range a.chunks {
		clear(a.chunks[i])
	}
	a.chunks = nil
	a.released = true
}

func (a *Arena) Int(v int64) *Integer   { return Alloc(a, &Integer{Value: v}) }
func (a *Arena) Float(v float64) *Float { return Alloc(a, &Float{Value: v}) }
func (a *Arena) Str(v string) *String   { return Alloc(a, &String{Value: v}) }
func (a *Arena) None() *None            { return NONE }

func (a *Arena) Bool(v bool) *Boolean {
	if v {
		return TRUE
	}
	return FALSE
}

func (a *Arena) Wrap(err *ExecutionError) *Error {
	return Alloc(a, &Error{Err: err})
}

// Clone copies v into the arena. Scalars are copied deeply. An Instance gets a
// new field table whose entries share the original handles.
func (a *Arena) Clone(v Value) Value {
	switch v := v.(type) {
	case *Integer:
		return a.Int(v.Value)
	case *Float:
		return a.Float(v.Value)
	case *String:
		return a.Str(v.Value)
	case *Boolean:
		return a.Bool(v.Value)
	case *None:
		return NONE
	case *Range:
		return Alloc(a, &Range{Start: v.Start, Stop: v.Stop, Step: v.Step})
	case *Instance:
		return Alloc(a, &Instance{Class: v.Class, Fields: v.Fields.clone()})
	default:
		return v
	}
}

func sizeOf(v Value) int64 {
	switch v := v.(type) {
	case *Integer, *Float, *Boolean, *None:
		return 16
	case *String:
		return 16 + int64(len(v.Value))
	case *Range:
		return 32
	case *Instance:
		return 48 + 32*int64(v.Fields.Len())
	case *Class:
		return 64 + int64(len(v.Name)) + 32*int64(v.Attrs.Len())
	case *Error:
		return 64 + int64(len(v.Err.Message))
	default:
		return 48
	}
}

func (a *Arena) String() string {
	return fmt.Sprintf("Arena{values=%d bytes=%d limit=%d}", a.count, a.bytes, a.limit)
}
