// Package ops holds the operator dispatch tables. Each operator owns an
// ordered list of implementation records; dispatch scans the list in
// registration order and applies the first record whose declared operand
// types match.
package ops

import (
	"fmt"
	"reflect"
	"sandpy/internal/object"
	"sync"
)

type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
	binaryOpCount
)

var binarySymbols = [...]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
	Eq: "==", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
	BitAnd: "&", BitOr: "|", BitXor: "^", Shl: "<<", Shr: ">>",
}

func (op BinaryOp) String() string {
	if op >= 0 && op < binaryOpCount {
		return binarySymbols[op]
	}
	return fmt.Sprintf("BinaryOp(%d)", int(op))
}

type UnaryOp int

const (
	Not UnaryOp = iota
	Neg
	Pos
	Invert
	unaryOpCount
)

var unarySymbols = [...]string{Not: "not ", Neg: "-", Pos: "+", Invert: "~"}

func (op UnaryOp) String() string {
	if op >= 0 && op < unaryOpCount {
		return unarySymbols[op]
	}
	return fmt.Sprintf("UnaryOp(%d)", int(op))
}

var binaryBySymbol = map[string]BinaryOp{}

func init() {
	for op := BinaryOp(0); op < binaryOpCount; op++ {
		binaryBySymbol[binarySymbols[op]] = op
	}
}

// LookupBinary maps an operator spelling such as "+" or "<<" to its BinaryOp.
func LookupBinary(symbol string) (BinaryOp, bool) {
	op, ok := binaryBySymbol[symbol]
	return op, ok
}

// LookupUnary maps a prefix operator spelling to its UnaryOp.
func LookupUnary(symbol string) (UnaryOp, bool) {
	switch symbol {
	case "!", "not":
		return Not, true
	case "-":
		return Neg, true
	case "+":
		return Pos, true
	case "~":
		return Invert, true
	}
	return 0, false
}

type binaryRecord struct {
	name  string
	apply func(lhs, rhs object.Value, a *object.Arena) (object.Value, bool, error)
}

type unaryRecord struct {
	name  string
	apply func(v object.Value, a *object.Arena) (object.Value, bool, error)
}

// Registry is a set of per-operator dispatch tables. It is safe for
// concurrent dispatch; registration takes a write lock.
type Registry struct {
	mu     sync.RWMutex
	binary [binaryOpCount][]binaryRecord
	unary  [unaryOpCount][]unaryRecord
}

func NewRegistry() *Registry {
	return &Registry{}
}

var defaultRegistry = func() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}()

// Default is the process-wide registry, populated with the builtin records.
func Default() *Registry {
	return defaultRegistry
}

// RegisterBinary appends a record for op on (L, R). Records are never
// removed; an earlier record for overlapping types always wins. fn returns a
// nil error on success; a non-nil error becomes an *object.Error result.
func RegisterBinary[L, R object.Value](r *Registry, op BinaryOp, fn func(lhs L, rhs R, a *object.Arena) (object.Value, error)) {
	rec := binaryRecord{
		name: fmt.Sprintf("%s %s %s", reflect.TypeFor[L](), op, reflect.TypeFor[R]()),
		apply: func(lhs, rhs object.Value, a *object.Arena) (object.Value, bool, error) {
			lv, ok := lhs.(L)
			if !ok {
				return nil, false, nil
			}
			rv, ok := rhs.(R)
			if !ok {
				return nil, false, nil
			}
			v, err := fn(lv, rv, a)
			return v, true, err
		},
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.binary[op] = append(r.binary[op], rec)
}

// RegisterUnary appends a record for op on T.
func RegisterUnary[T object.Value](r *Registry, op UnaryOp, fn func(v T, a *object.Arena) (object.Value, error)) {
	rec := unaryRecord{
		name: fmt.Sprintf("%s%s", op, reflect.TypeFor[T]()),
		apply: func(v object.Value, a *object.Arena) (object.Value, bool, error) {
			tv, ok := v.(T)
			if !ok {
				return nil, false, nil
			}
			res, err := fn(tv, a)
			return res, true, err
		},
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unary[op] = append(r.unary[op], rec)
}

// Binary dispatches op on (lhs, rhs). The boolean is false when no record
// accepts the operand types. An implementation failure comes back as an
// *object.Error value.
func (r *Registry) Binary(op BinaryOp, lhs, rhs object.Value, a *object.Arena) (object.Value, bool) {
	if op < 0 || op >= binaryOpCount {
		return nil, false
	}
	r.mu.RLock()
	records := r.binary[op]
	r.mu.RUnlock()

	for _, rec := range records {
		v, matched, err := rec.apply(lhs, rhs, a)
		if !matched {
			continue
		}
		return wrap(v, err, a), true
	}
	return nil, false
}

// Unary dispatches op on v.
func (r *Registry) Unary(op UnaryOp, v object.Value, a *object.Arena) (object.Value, bool) {
	if op < 0 || op >= unaryOpCount {
		return nil, false
	}
	r.mu.RLock()
	records := r.unary[op]
	r.mu.RUnlock()

	for _, rec := range records {
		res, matched, err := rec.apply(v, a)
		if !matched {
			continue
		}
		return wrap(res, err, a), true
	}
	return nil, false
}

// Records lists the registered records for op in dispatch order.
func (r *Registry) Records(op BinaryOp) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.binary[op]))
	for i, rec := range r.binary[op] {
		names[i] = rec.name
	}
	return names
}

func wrap(v object.Value, err error, a *object.Arena) object.Value {
	if err == nil {
		if v == nil {
			return object.NONE
		}
		return v
	}
	execErr, ok := err.(*object.ExecutionError)
	if !ok {
		execErr = object.NewError(object.Internal, "%v", err)
	}
	return a.Wrap(execErr)
}
