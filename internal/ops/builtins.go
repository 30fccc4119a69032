package ops

import (
	"math"
	"sandpy/internal/object"
	"strings"
)

// MaxStringBytes caps a single string built by concatenation or repetition,
// independent of any arena limit.
const MaxStringBytes = 1 << 28

type (
	Int   = *object.Integer
	Float = *object.Float
	Str   = *object.String
	Bool  = *object.Boolean
	None  = *object.None
)

// RegisterBuiltins installs the arithmetic, comparison and bitwise records
// for the builtin scalar types. Order matters: the catch-all None equality
// records go last so that typed records are tried first.
func RegisterBuiltins(r *Registry) {
	registerArithmetic(r)
	registerStrings(r)
	registerComparisons(r)
	registerBitwise(r)
	registerUnary(r)
	registerIdentity(r)
}

func registerArithmetic(r *Registry) {
	RegisterBinary(r, Add, func(l, rr Int, a *object.Arena) (object.Value, error) {
		return a.Int(l.Value + rr.Value), nil
	})
	RegisterBinary(r, Sub, func(l, rr Int, a *object.Arena) (object.Value, error) {
		return a.Int(l.Value - rr.Value), nil
	})
	RegisterBinary(r, Mul, func(l, rr Int, a *object.Arena) (object.Value, error) {
		return a.Int(l.Value * rr.Value), nil
	})
	RegisterBinary(r, Div, func(l, rr Int, a *object.Arena) (object.Value, error) {
		if rr.Value == 0 {
			return nil, object.NewError(object.DivideByZero, "integer division by zero")
		}
		return a.Int(l.Value / rr.Value), nil
	})
	RegisterBinary(r, Mod, func(l, rr Int, a *object.Arena) (object.Value, error) {
		if rr.Value == 0 {
			return nil, object.NewError(object.DivideByZero, "integer modulo by zero")
		}
		return a.Int(l.Value % rr.Value), nil
	})

	registerFloatArithmetic(r, func(v Float) float64 { return v.Value }, func(v Float) float64 { return v.Value })
	registerFloatArithmetic(r, func(v Int) float64 { return float64(v.Value) }, func(v Float) float64 { return v.Value })
	registerFloatArithmetic(r, func(v Float) float64 { return v.Value }, func(v Int) float64 { return float64(v.Value) })
}

// registerFloatArithmetic covers float/float and the two mixed pairings,
// which promote the integer side.
func registerFloatArithmetic[L, R object.Value](r *Registry, lf func(L) float64, rf func(R) float64) {
	RegisterBinary(r, Add, func(l L, rr R, a *object.Arena) (object.Value, error) {
		return a.Float(lf(l) + rf(rr)), nil
	})
	RegisterBinary(r, Sub, func(l L, rr R, a *object.Arena) (object.Value, error) {
		return a.Float(lf(l) - rf(rr)), nil
	})
	RegisterBinary(r, Mul, func(l L, rr R, a *object.Arena) (object.Value, error) {
		return a.Float(lf(l) * rf(rr)), nil
	})
	RegisterBinary(r, Div, func(l L, rr R, a *object.Arena) (object.Value, error) {
		if intZero(rr) {
			return nil, object.NewError(object.DivideByZero, "float division by integer zero")
		}
		return a.Float(lf(l) / rf(rr)), nil
	})
	RegisterBinary(r, Mod, func(l L, rr R, a *object.Arena) (object.Value, error) {
		if intZero(rr) {
			return nil, object.NewError(object.DivideByZero, "float modulo by integer zero")
		}
		return a.Float(math.Mod(lf(l), rf(rr))), nil
	})
	registerOrdering(r, func(l L, rr R) int {
		x, y := lf(l), rf(rr)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		case x == y:
			return 0
		}
		return 2 // unordered, NaN involved
	})
}

// intZero reports an integer 0 divisor. A float 0.0 divisor keeps IEEE
// results.
func intZero(v object.Value) bool {
	i, ok := v.(Int)
	return ok && i.Value == 0
}

func registerStrings(r *Registry) {
	RegisterBinary(r, Add, func(l, rr Str, a *object.Arena) (object.Value, error) {
		n := int64(len(l.Value)) + int64(len(rr.Value))
		if err := reserveString(a, n); err != nil {
			return nil, err
		}
		return a.Str(l.Value + rr.Value), nil
	})
	RegisterBinary(r, Mul, func(l Str, rr Int, a *object.Arena) (object.Value, error) {
		return repeat(l.Value, rr.Value, a)
	})
	RegisterBinary(r, Mul, func(l Int, rr Str, a *object.Arena) (object.Value, error) {
		return repeat(rr.Value, l.Value, a)
	})
	registerOrdering(r, func(l, rr Str) int {
		return strings.Compare(l.Value, rr.Value)
	})
}

func repeat(s string, count int64, a *object.Arena) (object.Value, error) {
	if count <= 0 || s == "" {
		return a.Str(""), nil
	}
	if count > MaxStringBytes/int64(len(s)) {
		return nil, object.NewError(object.MemoryExhausted, "string repetition of %d bytes x %d is too large", len(s), count)
	}
	if err := reserveString(a, int64(len(s))*count); err != nil {
		return nil, err
	}
	return a.Str(strings.Repeat(s, int(count))), nil
}

func reserveString(a *object.Arena, n int64) error {
	if n > MaxStringBytes {
		return object.NewError(object.MemoryExhausted, "string of %d bytes exceeds maximum of %d", n, MaxStringBytes)
	}
	return a.Reserve(n)
}

func registerComparisons(r *Registry) {
	registerOrdering(r, func(l, rr Int) int {
		switch {
		case l.Value < rr.Value:
			return -1
		case l.Value > rr.Value:
			return 1
		}
		return 0
	})
	RegisterBinary(r, Eq, func(l, rr Bool, a *object.Arena) (object.Value, error) {
		return a.Bool(l.Value == rr.Value), nil
	})
	RegisterBinary(r, Ne, func(l, rr Bool, a *object.Arena) (object.Value, error) {
		return a.Bool(l.Value != rr.Value), nil
	})
}

// registerOrdering derives the six comparison records from a three-way
// compare. A result outside -1..1 means the operands are unordered, which
// makes every comparison except != false.
func registerOrdering[L, R object.Value](r *Registry, cmp func(L, R) int) {
	tests := []struct {
		op   BinaryOp
		test func(int) bool
	}{
		{Eq, func(c int) bool { return c == 0 }},
		{Ne, func(c int) bool { return c != 0 }},
		{Lt, func(c int) bool { return c == -1 }},
		{Le, func(c int) bool { return c == -1 || c == 0 }},
		{Gt, func(c int) bool { return c == 1 }},
		{Ge, func(c int) bool { return c == 1 || c == 0 }},
	}
	for _, tt := range tests {
		test := tt.test
		RegisterBinary(r, tt.op, func(l L, rr R, a *object.Arena) (object.Value, error) {
			return a.Bool(test(cmp(l, rr))), nil
		})
	}
}

func registerBitwise(r *Registry) {
	RegisterBinary(r, BitAnd, func(l, rr Int, a *object.Arena) (object.Value, error) {
		return a.Int(l.Value & rr.Value), nil
	})
	RegisterBinary(r, BitOr, func(l, rr Int, a *object.Arena) (object.Value, error) {
		return a.Int(l.Value | rr.Value), nil
	})
	RegisterBinary(r, BitXor, func(l, rr Int, a *object.Arena) (object.Value, error) {
		return a.Int(l.Value ^ rr.Value), nil
	})
	RegisterBinary(r, Shl, func(l, rr Int, a *object.Arena) (object.Value, error) {
		if rr.Value < 0 {
			return nil, object.NewError(object.ValueError, "negative shift count %d", rr.Value)
		}
		if rr.Value >= 64 {
			return a.Int(0), nil
		}
		return a.Int(l.Value << uint64(rr.Value)), nil
	})
	RegisterBinary(r, Shr, func(l, rr Int, a *object.Arena) (object.Value, error) {
		if rr.Value < 0 {
			return nil, object.NewError(object.ValueError, "negative shift count %d", rr.Value)
		}
		if rr.Value >= 64 {
			if l.Value < 0 {
				return a.Int(-1), nil
			}
			return a.Int(0), nil
		}
		return a.Int(l.Value >> uint64(rr.Value)), nil
	})

	RegisterBinary(r, BitAnd, func(l, rr Bool, a *object.Arena) (object.Value, error) {
		return a.Bool(l.Value && rr.Value), nil
	})
	RegisterBinary(r, BitOr, func(l, rr Bool, a *object.Arena) (object.Value, error) {
		return a.Bool(l.Value || rr.Value), nil
	})
	RegisterBinary(r, BitXor, func(l, rr Bool, a *object.Arena) (object.Value, error) {
		return a.Bool(l.Value != rr.Value), nil
	})
}

func registerUnary(r *Registry) {
	RegisterUnary(r, Not, func(v object.Value, a *object.Arena) (object.Value, error) {
		return a.Bool(!object.Truthy(v)), nil
	})
	RegisterUnary(r, Neg, func(v Int, a *object.Arena) (object.Value, error) {
		return a.Int(-v.Value), nil
	})
	RegisterUnary(r, Neg, func(v Float, a *object.Arena) (object.Value, error) {
		return a.Float(-v.Value), nil
	})
	RegisterUnary(r, Pos, func(v Int, a *object.Arena) (object.Value, error) {
		return v, nil
	})
	RegisterUnary(r, Pos, func(v Float, a *object.Arena) (object.Value, error) {
		return v, nil
	})
	RegisterUnary(r, Invert, func(v Int, a *object.Arena) (object.Value, error) {
		return a.Int(^v.Value), nil
	})
}

// registerIdentity adds equality by identity for reference values and the
// catch-all None comparisons. These must stay last.
func registerIdentity(r *Registry) {
	RegisterBinary(r, Eq, func(l, rr *object.Instance, a *object.Arena) (object.Value, error) {
		return a.Bool(l == rr), nil
	})
	RegisterBinary(r, Ne, func(l, rr *object.Instance, a *object.Arena) (object.Value, error) {
		return a.Bool(l != rr), nil
	})
	RegisterBinary(r, Eq, func(l, rr *object.Class, a *object.Arena) (object.Value, error) {
		return a.Bool(l == rr), nil
	})
	RegisterBinary(r, Ne, func(l, rr *object.Class, a *object.Arena) (object.Value, error) {
		return a.Bool(l != rr), nil
	})

	RegisterBinary(r, Eq, func(l object.Value, rr None, a *object.Arena) (object.Value, error) {
		_, isNone := l.(None)
		return a.Bool(isNone), nil
	})
	RegisterBinary(r, Eq, func(l None, rr object.Value, a *object.Arena) (object.Value, error) {
		_, isNone := rr.(None)
		return a.Bool(isNone), nil
	})
	RegisterBinary(r, Ne, func(l object.Value, rr None, a *object.Arena) (object.Value, error) {
		_, isNone := l.(None)
		return a.Bool(!isNone), nil
	})
	RegisterBinary(r, Ne, func(l None, rr object.Value, a *object.Arena) (object.Value, error) {
		_, isNone := rr.(None)
		return a.Bool(!isNone), nil
	})
}
