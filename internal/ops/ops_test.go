package ops

import (
	"errors"
	"math"
	"sandpy/internal/object"
	"sync"
	"testing"
)

func binary(t *testing.T, op BinaryOp, lhs, rhs object.Value) object.Value {
	t.Helper()
	a := object.NewArena(0)
	v, ok := Default().Binary(op, lhs, rhs, a)
	if !ok {
		t.Fatalf("expected a record for %s %s %s", lhs.Type(), op, rhs.Type())
	}
	return v
}

func TestIntegerArithmetic(t *testing.T) {
	tests := []struct {
		op       BinaryOp
		lhs, rhs int64
		expected int64
	}{
		{Add, 40, 2, 42},
		{Sub, 40, 50, -10},
		{Mul, 6, 7, 42},
		{Div, 7, 2, 3},
		{Div, -7, 2, -3},
		{Mod, 7, 3, 1},
		{Mod, -7, 3, -1},
		{Add, math.MaxInt64, 1, math.MinInt64},
		{Mul, math.MaxInt64, 2, -2},
		{Div, math.MinInt64, -1, math.MinInt64},
		{BitAnd, 12, 10, 8},
		{BitOr, 12, 10, 14},
		{BitXor, 12, 10, 6},
		{Shl, 1, 10, 1024},
		{Shl, 1, 64, 0},
		{Shr, 1024, 3, 128},
		{Shr, -8, 1, -4},
		{Shr, -8, 100, -1},
	}

	for i, tt := range tests {
		v := binary(t, tt.op, &object.Integer{Value: tt.lhs}, &object.Integer{Value: tt.rhs})
		got, ok := v.(*object.Integer)
		if !ok {
			t.Fatalf("tests[%d] - expected *object.Integer, got %T (%s)", i, v, v.Inspect())
		}
		if got.Value != tt.expected {
			t.Errorf("tests[%d] - %d %s %d expected=%d, got=%d", i, tt.lhs, tt.op, tt.rhs, tt.expected, got.Value)
		}
	}
}

func TestNumericPromotion(t *testing.T) {
	tests := []struct {
		op       BinaryOp
		lhs, rhs object.Value
		expected float64
	}{
		{Add, &object.Integer{Value: 1}, &object.Float{Value: 0.5}, 1.5},
		{Add, &object.Float{Value: 0.5}, &object.Integer{Value: 1}, 1.5},
		{Sub, &object.Float{Value: 2.5}, &object.Float{Value: 1}, 1.5},
		{Mul, &object.Integer{Value: 3}, &object.Float{Value: 0.5}, 1.5},
		{Div, &object.Integer{Value: 3}, &object.Float{Value: 2}, 1.5},
		{Mod, &object.Float{Value: 5.5}, &object.Integer{Value: 2}, 1.5},
		{Div, &object.Float{Value: 1}, &object.Float{Value: 0}, math.Inf(1)},
		{Div, &object.Integer{Value: 1}, &object.Float{Value: 0}, math.Inf(1)},
		{Div, &object.Float{Value: -3}, &object.Integer{Value: 2}, -1.5},
	}

	for i, tt := range tests {
		v := binary(t, tt.op, tt.lhs, tt.rhs)
		got, ok := v.(*object.Float)
		if !ok {
			t.Fatalf("tests[%d] - expected *object.Float, got %T", i, v)
		}
		if got.Value != tt.expected {
			t.Errorf("tests[%d] - expected=%v, got=%v", i, tt.expected, got.Value)
		}
	}
}

func TestComparisons(t *testing.T) {
	nan := &object.Float{Value: math.NaN()}
	tests := []struct {
		op       BinaryOp
		lhs, rhs object.Value
		expected bool
	}{
		{Lt, &object.Integer{Value: 1}, &object.Integer{Value: 2}, true},
		{Ge, &object.Integer{Value: 1}, &object.Integer{Value: 2}, false},
		{Le, &object.Integer{Value: 2}, &object.Float{Value: 2.0}, true},
		{Eq, &object.Integer{Value: 2}, &object.Float{Value: 2.0}, true},
		{Gt, &object.Float{Value: 2.5}, &object.Integer{Value: 2}, true},
		{Lt, &object.String{Value: "abc"}, &object.String{Value: "abd"}, true},
		{Eq, &object.String{Value: "x"}, &object.String{Value: "x"}, true},
		{Ne, &object.String{Value: "x"}, &object.String{Value: "y"}, true},
		{Eq, object.TRUE, object.TRUE, true},
		{Ne, object.TRUE, object.FALSE, true},
		{Eq, nan, nan, false},
		{Ne, nan, nan, true},
		{Lt, nan, &object.Float{Value: 1}, false},
		{Eq, object.NONE, object.NONE, true},
		{Eq, &object.Integer{Value: 0}, object.NONE, false},
		{Eq, object.NONE, &object.String{Value: ""}, false},
		{Ne, &object.Integer{Value: 0}, object.NONE, true},
	}

	for i, tt := range tests {
		v := binary(t, tt.op, tt.lhs, tt.rhs)
		got, ok := v.(*object.Boolean)
		if !ok {
			t.Fatalf("tests[%d] - expected *object.Boolean, got %T", i, v)
		}
		if got.Value != tt.expected {
			t.Errorf("tests[%d] - %s %s %s expected=%t, got=%t", i, tt.lhs.Inspect(), tt.op, tt.rhs.Inspect(), tt.expected, got.Value)
		}
	}
}

func TestStringOperators(t *testing.T) {
	tests := []struct {
		op       BinaryOp
		lhs, rhs object.Value
		expected string
	}{
		{Add, &object.String{Value: "foo"}, &object.String{Value: "bar"}, "foobar"},
		{Mul, &object.String{Value: "ab"}, &object.Integer{Value: 3}, "ababab"},
		{Mul, &object.Integer{Value: 2}, &object.String{Value: "xy"}, "xyxy"},
		{Mul, &object.String{Value: "ab"}, &object.Integer{Value: -1}, ""},
	}

	for i, tt := range tests {
		v := binary(t, tt.op, tt.lhs, tt.rhs)
		got, ok := v.(*object.String)
		if !ok {
			t.Fatalf("tests[%d] - expected *object.String, got %T", i, v)
		}
		if got.Value != tt.expected {
			t.Errorf("tests[%d] - expected=%q, got=%q", i, tt.expected, got.Value)
		}
	}
}

func TestFailuresAreValues(t *testing.T) {
	tests := []struct {
		op       BinaryOp
		lhs, rhs object.Value
		expected error
	}{
		{Div, &object.Integer{Value: 1}, &object.Integer{Value: 0}, object.ErrDivideByZero},
		{Mod, &object.Integer{Value: 1}, &object.Integer{Value: 0}, object.ErrDivideByZero},
		{Shl, &object.Integer{Value: 1}, &object.Integer{Value: -1}, object.ErrValueError},
		{Mul, &object.String{Value: "ab"}, &object.Integer{Value: math.MaxInt64}, object.ErrMemoryExhausted},
		{Div, &object.Float{Value: 1.5}, &object.Integer{Value: 0}, object.ErrDivideByZero},
		{Mod, &object.Float{Value: 1.5}, &object.Integer{Value: 0}, object.ErrDivideByZero},
	}

	for i, tt := range tests {
		v := binary(t, tt.op, tt.lhs, tt.rhs)
		errVal, ok := v.(*object.Error)
		if !ok {
			t.Fatalf("tests[%d] - expected *object.Error, got %T", i, v)
		}
		if !errors.Is(errVal.Err, tt.expected) {
			t.Errorf("tests[%d] - expected %v, got %v", i, tt.expected, errVal.Err)
		}
	}
}

func TestStringRepeatRespectsArenaLimit(t *testing.T) {
	a := object.NewArena(1024)
	v, ok := Default().Binary(Mul, &object.String{Value: "x"}, &object.Integer{Value: 4096}, a)
	if !ok {
		t.Fatalf("expected a record for str * int")
	}
	errVal, isErr := v.(*object.Error)
	if !isErr || !errors.Is(errVal.Err, object.ErrMemoryExhausted) {
		t.Fatalf("expected MemoryExhausted, got %s", v.Inspect())
	}
}

func TestUnsupportedPairs(t *testing.T) {
	a := object.NewArena(0)
	tests := []struct {
		op       BinaryOp
		lhs, rhs object.Value
	}{
		{Add, &object.Integer{Value: 1}, &object.String{Value: "a"}},
		{Sub, &object.String{Value: "a"}, &object.String{Value: "b"}},
		{Lt, &object.Integer{Value: 1}, &object.String{Value: "a"}},
		{Add, object.TRUE, object.TRUE},
		{Shl, &object.Float{Value: 1}, &object.Integer{Value: 1}},
	}

	for i, tt := range tests {
		if v, ok := Default().Binary(tt.op, tt.lhs, tt.rhs, a); ok {
			t.Errorf("tests[%d] - expected no record for %s %s %s, got %s", i, tt.lhs.Type(), tt.op, tt.rhs.Type(), v.Inspect())
		}
	}
}

func TestUnaryOperators(t *testing.T) {
	a := object.NewArena(0)
	tests := []struct {
		op       UnaryOp
		operand  object.Value
		expected string
	}{
		{Neg, &object.Integer{Value: 5}, "-5"},
		{Neg, &object.Integer{Value: math.MinInt64}, "-9223372036854775808"},
		{Neg, &object.Float{Value: 1.5}, "-1.5"},
		{Pos, &object.Integer{Value: 5}, "5"},
		{Invert, &object.Integer{Value: 0}, "-1"},
		{Not, &object.Integer{Value: 0}, "True"},
		{Not, &object.String{Value: "x"}, "False"},
		{Not, object.NONE, "True"},
	}

	for i, tt := range tests {
		v, ok := Default().Unary(tt.op, tt.operand, a)
		if !ok {
			t.Fatalf("tests[%d] - expected a record for %s%s", i, tt.op, tt.operand.Type())
		}
		if v.Inspect() != tt.expected {
			t.Errorf("tests[%d] - expected=%s, got=%s", i, tt.expected, v.Inspect())
		}
	}

	if _, ok := Default().Unary(Neg, &object.String{Value: "x"}, a); ok {
		t.Errorf("expected no record for -str")
	}
}

func TestFirstRegisteredRecordWins(t *testing.T) {
	r := NewRegistry()
	RegisterBinary(r, Add, func(l, rr *object.Integer, a *object.Arena) (object.Value, error) {
		return a.Str("first"), nil
	})
	RegisterBinary(r, Add, func(l, rr *object.Integer, a *object.Arena) (object.Value, error) {
		return a.Str("second"), nil
	})
	RegisterBinary(r, Add, func(l, rr object.Value, a *object.Arena) (object.Value, error) {
		return a.Str("fallback"), nil
	})

	a := object.NewArena(0)
	v, ok := r.Binary(Add, &object.Integer{Value: 1}, &object.Integer{Value: 2}, a)
	if !ok || v.Inspect() != `"first"` {
		t.Fatalf("expected first record to win, got %v", v)
	}

	v, ok = r.Binary(Add, &object.Float{Value: 1}, &object.Integer{Value: 2}, a)
	if !ok || v.Inspect() != `"fallback"` {
		t.Fatalf("expected fallback record for float + int, got %v", v)
	}

	records := r.Records(Add)
	if len(records) != 3 || records[0] != "*object.Integer + *object.Integer" {
		t.Fatalf("unexpected record list: %v", records)
	}
}

func TestIsolatedRegistry(t *testing.T) {
	r := NewRegistry()
	a := object.NewArena(0)
	if _, ok := r.Binary(Add, &object.Integer{Value: 1}, &object.Integer{Value: 2}, a); ok {
		t.Fatalf("expected an empty registry to match nothing")
	}
	RegisterBuiltins(r)
	if v, ok := r.Binary(Add, &object.Integer{Value: 1}, &object.Integer{Value: 2}, a); !ok || v.Inspect() != "3" {
		t.Fatalf("expected builtins in the new registry, got %v", v)
	}
}

func TestNonExecutionErrorIsInternal(t *testing.T) {
	r := NewRegistry()
	RegisterUnary(r, Neg, func(v *object.String, a *object.Arena) (object.Value, error) {
		return nil, errors.New("boom")
	})
	v, ok := r.Unary(Neg, &object.String{Value: "x"}, object.NewArena(0))
	if !ok {
		t.Fatalf("expected the record to match")
	}
	errVal, isErr := v.(*object.Error)
	if !isErr || !errors.Is(errVal.Err, object.ErrInternal) {
		t.Fatalf("expected Internal error value, got %s", v.Inspect())
	}
}

func TestConcurrentDispatch(t *testing.T) {
	r := NewRegistry()
	RegisterBuiltins(r)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			a := object.NewArena(0)
			for j := int64(0); j < 200; j++ {
				v, ok := r.Binary(Add, &object.Integer{Value: n}, &object.Integer{Value: j}, a)
				if !ok || v.(*object.Integer).Value != n+j {
					t.Errorf("wrong result for %d + %d", n, j)
					return
				}
			}
		}(int64(i))
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			RegisterBinary(r, Add, func(l *object.String, rr *object.Integer, a *object.Arena) (object.Value, error) {
				return l, nil
			})
		}
	}()
	wg.Wait()
}

func TestLookupOperators(t *testing.T) {
	for op := BinaryOp(0); op < binaryOpCount; op++ {
		got, ok := LookupBinary(op.String())
		if !ok || got != op {
			t.Errorf("LookupBinary(%q) = %v, %t", op.String(), got, ok)
		}
	}
	if op, ok := LookupUnary("not"); !ok || op != Not {
		t.Errorf("expected not to map to Not")
	}
	if _, ok := LookupBinary("**"); ok {
		t.Errorf("expected ** to be unknown")
	}
}
