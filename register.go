package sandpy

import (
	"sandpy/internal/evaluator"
	"sandpy/internal/object"
	"sandpy/internal/ops"
)

// Guest value types that embedders can register operators for.
type (
	Value      = object.Value
	ObjectType = object.ObjectType
	Arena      = object.Arena
	Integer    = object.Integer
	Float      = object.Float
	String     = object.String
	Boolean    = object.Boolean
	None       = object.None
	Instance   = object.Instance
	Builtin    = object.Builtin
	Registry   = ops.Registry
	BinaryOp   = ops.BinaryOp
	UnaryOp    = ops.UnaryOp
)

const (
	Add    = ops.Add
	Sub    = ops.Sub
	Mul    = ops.Mul
	Div    = ops.Div
	Mod    = ops.Mod
	Eq     = ops.Eq
	Ne     = ops.Ne
	Lt     = ops.Lt
	Le     = ops.Le
	Gt     = ops.Gt
	Ge     = ops.Ge
	BitAnd = ops.BitAnd
	BitOr  = ops.BitOr
	BitXor = ops.BitXor
	Shl    = ops.Shl
	Shr    = ops.Shr

	Not    = ops.Not
	Neg    = ops.Neg
	Pos    = ops.Pos
	Invert = ops.Invert
)

// Alloc places a value of an embedder-defined type into a run's arena.
func Alloc[T Value](a *Arena, v T) T {
	return object.Alloc(a, v)
}

// NewRegistry returns an isolated registry holding the builtin records.
func NewRegistry() *Registry {
	r := ops.NewRegistry()
	ops.RegisterBuiltins(r)
	evaluator.RegisterCallableRecords(r)
	return r
}

// RegisterBinary appends an implementation of op for operands (L, R) to r.
// Earlier registrations win when several match; nothing checks for overlap.
func RegisterBinary[L, R Value](r *Registry, op BinaryOp, fn func(lhs L, rhs R, a *Arena) (Value, error)) {
	ops.RegisterBinary(r, op, fn)
}

func RegisterUnary[T Value](r *Registry, op UnaryOp, fn func(v T, a *Arena) (Value, error)) {
	ops.RegisterUnary(r, op, fn)
}

// DefaultRegisterBinary registers on the process-wide registry used by Exec.
// Call it before any script runs.
func DefaultRegisterBinary[L, R Value](op BinaryOp, fn func(lhs L, rhs R, a *Arena) (Value, error)) {
	ops.RegisterBinary(ops.Default(), op, fn)
}

func DefaultRegisterUnary[T Value](op UnaryOp, fn func(v T, a *Arena) (Value, error)) {
	ops.RegisterUnary(ops.Default(), op, fn)
}
