package evaluator

import (
	"errors"
	"io"
	"log/slog"
	"sandpy/internal/object"
	"sandpy/internal/parser"
	"sync"
	"testing"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func run(t *testing.T, input string, ttl int64) (*Context, error) {
	t.Helper()
	return runWith(t, input, NewContext(ttl, Config{Logger: quiet}))
}

func runWith(t *testing.T, input string, ctx *Context) (*Context, error) {
	t.Helper()
	module, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("parse error for %q: %v", input, err)
	}
	return ctx, New(ctx).EvalModule(module)
}

func global(t *testing.T, ctx *Context, name string) object.Value {
	t.Helper()
	cell, ok := ctx.Chain.Global().Get(name)
	if !ok {
		t.Fatalf("expected global %q to be bound; have %v", name, ctx.Chain.Global().Names())
	}
	return cell.Value
}

func TestEvalStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x = 1 + 2", "3"},
		{"x = 2 + 1.5", "3.5"},
		{"x = 7 / 2", "3"},
		{"x = -7 % 3", "-1"},
		{`x = "ab" * 3`, `"ababab"`},
		{"x = 1\nx += 4\nx <<= 2", "20"},
		{"x = 0 or 'fallback'", `"fallback"`},
		{"x = 5 and 0", "0"},
		{"x = not 0", "True"},
		{"x = 1 < 2 and 2 < 3", "True"},
		{"x = None == None", "True"},
		{"x = 3 == None", "False"},
		{`x = "héllo"[1]`, `"é"`},
		{`x = "abc"[-1]`, `"c"`},
		{"x = range(10, 0, -3)[1]", "7"},
		{"x = range(4)", "range(0, 4)"},
		{"x = 0\nfor c in 'abc' { x += 1 }", "3"},
		{"x = 0\nfor i in range(5) { x += i }", "10"},
		{"x = 0\nwhile x < 10 { x += 3 }", "12"},
		{"x = 0\nwhile x < 3 { x += 1 } else { x = x * 10 }", "30"},
		{"x = 0\nfor i in range(10) {\n  if i == 5 { break }\n  x = i\n} else { x = -1 }", "4"},
		{"x = 0\nfor i in range(6) {\n  if i % 2 == 0 { continue }\n  x += i\n}", "9"},
		{"n = 5\nx = None\nif n < 3 { x = 'small' } elif n < 10 { x = 'mid' } else { x = 'big' }", `"mid"`},
		{"x = 1\n{ x = 2; y = 3 }", "2"},
		{"class C { n = 4 }\nx = C.n", "4"},
		{"class C { n = 4 }\nC.n = 5\nx = C().n", "5"},
		{"n = 1\nclass C { n = 2 }\nx = n * 10 + C.n", "12"},
		{"class C { if True { a = 1 } }\nx = C.a", "1"},
		{"class C { for i in range(3) { last = i } }\nx = C.last", "2"},
		{"class C { if True { def f(self) { return 7 } } }\nx = C().f()", "7"},
		{"n = 1\nclass C { n += 1 }\nx = n * 10 + C.n", "12"},
		{"total = 0\nclass C {\n  def bump() { total = 5 }\n  bump()\n}\nx = total", "5"},
		{"def f() {}\nx = f()", "None"},
		{"def f() {}\nx = f == f", "True"},
	}

	for i, tt := range tests {
		ctx, err := run(t, tt.input, 10_000)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error for %q: %v", i, tt.input, err)
		}
		got := global(t, ctx, "x").Inspect()
		if got != tt.expected {
			t.Errorf("tests[%d] - %q: expected x=%s, got %s", i, tt.input, tt.expected, got)
		}
	}
}

func TestClosuresAndRecursion(t *testing.T) {
	input := `
def fib(n) {
  if n < 2 { return n }
  return fib(n - 1) + fib(n - 2)
}
def counter() {
  count = 0
  def inc() {
    count += 1
    return count
  }
  return inc
}
c = counter()
c()
second = c()
f10 = fib(10)
`
	ctx, err := run(t, input, 100_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := global(t, ctx, "f10").Inspect(); got != "55" {
		t.Errorf("expected fib(10)=55, got %s", got)
	}
	if got := global(t, ctx, "second").Inspect(); got != "2" {
		t.Errorf("expected counter to share its cell, got %s", got)
	}
	if ctx.CallDepth() != 0 {
		t.Errorf("expected call depth 0 after the run, got %d", ctx.CallDepth())
	}
}

func TestClasses(t *testing.T) {
	input := `
class Point {
  def __init__(self, x, y) {
    self.x = x
    self.y = y
  }
  def sum(self) { return self.x + self.y }
}
class Scaled(Point) {
  def scaled(self, k) { return self.sum() * k }
}
p = Point(2, 3)
total = p.sum()
scaled = Scaled(1, 2).scaled(10)
fx = p["x"]
p["z"] = 9
same = p.sum == p.sum
`
	ctx, err := run(t, input, 10_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		expected string
	}{
		{"total", "5"},
		{"scaled", "30"},
		{"fx", "2"},
		{"p", "Point(x=2, y=3, z=9)"},
		{"same", "True"},
		{"Point", "<class 'Point'>"},
	}
	for i, tt := range tests {
		if got := global(t, ctx, tt.name).Inspect(); got != tt.expected {
			t.Errorf("tests[%d] - %s expected=%s, got=%s", i, tt.name, tt.expected, got)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  object.ErrorKind
	}{
		{"y = 1 / 0", object.DivideByZero},
		{"z = q + 1", object.ReferenceNotExist},
		{"x = 1 + 'a'", object.UnsupportedOperator},
		{"x = 1 == 'a'", object.UnsupportedOperator},
		{"x = -'a'", object.UnsupportedOperator},
		{"x = 5\nx()", object.TypeError},
		{"def f(a) { return a }\nf()", object.TypeError},
		{"x = 'abc'[3]", object.IndexOutOfRange},
		{"x = range(0, 5, 0)", object.ValueError},
		{"x = range(-9223372036854775807 - 1, 9223372036854775807)", object.ValueError},
		{"y = 1.5 / 0", object.DivideByZero},
		{"x = range('a')", object.TypeError},
		{"class C {}\nx = C().y", object.AttributeNotExist},
		{"class C {}\nx = C(1)", object.TypeError},
		{"x = 1 << -1", object.ValueError},
		{"for i in 5 { }", object.TypeError},
		{"class C(1) {}", object.TypeError},
		{"def f(n) { return f(n + 1) }\nf(0)", object.RecursionLimit},
		{"x = 1\nx.y = 2", object.AttributeNotExist},
		{"x = 'a'\nx[0] = 'b'", object.TypeError},
		{"x += 1", object.ReferenceNotExist},
	}

	for i, tt := range tests {
		ctx, err := run(t, tt.input, 1_000_000)
		var execErr *object.ExecutionError
		if !errors.As(err, &execErr) {
			t.Fatalf("tests[%d] - %q: expected *object.ExecutionError, got %v", i, tt.input, err)
		}
		if execErr.Kind != tt.kind {
			t.Errorf("tests[%d] - %q: expected %s, got %s", i, tt.input, tt.kind, execErr)
		}
		if execErr.Pos < 0 {
			t.Errorf("tests[%d] - %q: expected a source position", i, tt.input)
		}
		if ctx.Chain.Depth() != 1 {
			t.Errorf("tests[%d] - %q: scope leaked, depth %d", i, tt.input, ctx.Chain.Depth())
		}
	}
}

func TestReferenceErrorNamesAndPosition(t *testing.T) {
	_, err := run(t, "x = 1\ny = q", 100)
	if !errors.Is(err, &object.ExecutionError{Kind: object.ReferenceNotExist, Name: "q"}) {
		t.Fatalf("expected ReferenceNotExist(q), got %v", err)
	}
	var execErr *object.ExecutionError
	errors.As(err, &execErr)
	if execErr.Pos != 10 {
		t.Errorf("expected position 10, got %d", execErr.Pos)
	}
}

func TestScopesUnwind(t *testing.T) {
	input := `
def find(limit) {
  for i in range(limit) {
    while True {
      if i == 3 { return i }
      break
    }
  }
  return -1
}
r = find(10)
`
	ctx, err := run(t, input, 10_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := global(t, ctx, "r").Inspect(); got != "3" {
		t.Errorf("expected 3, got %s", got)
	}
	if ctx.Chain.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", ctx.Chain.Depth())
	}

	ctx, err = run(t, "for i in range(3) { if i == 2 { x = 1 / 0 } }", 10_000)
	if !errors.Is(err, object.ErrDivideByZero) {
		t.Fatalf("expected DivideByZero, got %v", err)
	}
	if ctx.Chain.Depth() != 1 {
		t.Errorf("expected depth 1 after failure, got %d", ctx.Chain.Depth())
	}
}

func TestFuelAccounting(t *testing.T) {
	// module + assignment + infix + two literals
	ctx, err := run(t, "x = 1 + 2", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Used() != 5 || ctx.Remaining() != 0 {
		t.Errorf("expected 5 used and 0 left, got used=%d remaining=%d", ctx.Used(), ctx.Remaining())
	}

	if _, err := run(t, "x = 1 + 2", 4); !errors.Is(err, object.ErrTimeout) {
		t.Errorf("expected Timeout with ttl 4, got %v", err)
	}
	if _, err := run(t, "x = 1", 0); !errors.Is(err, object.ErrTimeout) {
		t.Errorf("expected Timeout with ttl 0, got %v", err)
	}
	if _, err := run(t, "x = 1", -3); !errors.Is(err, object.ErrTimeout) {
		t.Errorf("expected Timeout with negative ttl, got %v", err)
	}
	if _, err := run(t, "while True { }", 5); !errors.Is(err, object.ErrTimeout) {
		t.Errorf("expected Timeout for an empty infinite loop, got %v", err)
	}
}

func TestFuelMonotonicity(t *testing.T) {
	scripts := []string{
		"x = 1 + 2",
		"x = 0\nfor i in range(20) { x += i }",
		"def f(n) { if n < 2 { return n }\n return f(n - 1) + f(n - 2) }\nx = f(8)",
		"class C { def __init__(self) { self.v = 1 } }\nx = C().v",
	}

	for i, input := range scripts {
		ctx, err := run(t, input, 1_000_000)
		if err != nil {
			t.Fatalf("scripts[%d] - unexpected error: %v", i, err)
		}
		needed := ctx.Used()

		if _, err := run(t, input, needed); err != nil {
			t.Errorf("scripts[%d] - expected success with exactly %d fuel, got %v", i, needed, err)
		}
		if _, err := run(t, input, needed-1); !errors.Is(err, object.ErrTimeout) {
			t.Errorf("scripts[%d] - expected Timeout with %d fuel, got %v", i, needed-1, err)
		}
	}
}

func TestConsume(t *testing.T) {
	ctx := NewContext(10, Config{})

	if err := ctx.Consume(11); !errors.Is(err, object.ErrTimeout) {
		t.Fatalf("expected Timeout, got %v", err)
	}
	if ctx.Remaining() != 10 {
		t.Fatalf("expected a rejected consume to leave 10, got %d", ctx.Remaining())
	}
	if err := ctx.Consume(-1); !errors.Is(err, object.ErrValueError) {
		t.Fatalf("expected ValueError for negative consume, got %v", err)
	}
	if err := ctx.Consume(10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ctx.Consume(0); err != nil {
		t.Fatalf("expected consuming nothing to succeed, got %v", err)
	}
	if err := ctx.ConsumeOne(); !errors.Is(err, object.ErrTimeout) {
		t.Fatalf("expected Timeout on empty tank, got %v", err)
	}
	if ctx.Used() != 10 {
		t.Errorf("expected 10 used, got %d", ctx.Used())
	}
}

func TestMemoryLimit(t *testing.T) {
	ctx := NewContext(1_000_000, Config{MaxAllocBytes: 4096, Logger: quiet})
	_, err := runWith(t, "while True { s = 'xxxxxxxxxxxxxxxx' }", ctx)
	if !errors.Is(err, object.ErrMemoryExhausted) {
		t.Fatalf("expected MemoryExhausted, got %v", err)
	}

	ctx = NewContext(1_000_000, Config{MaxAllocBytes: 4096, Logger: quiet})
	_, err = runWith(t, "s = 'ab' * 100000", ctx)
	if !errors.Is(err, object.ErrMemoryExhausted) {
		t.Fatalf("expected MemoryExhausted for string repetition, got %v", err)
	}
}

func TestBuiltins(t *testing.T) {
	ctx := NewContext(1000, Config{Logger: quiet})
	ctx.Chain.Bind("double", &object.Builtin{Name: "double", Arity: 1, Fn: func(a *object.Arena, args []object.Value) (object.Value, error) {
		i, ok := args[0].(*object.Integer)
		if !ok {
			return nil, object.NewError(object.TypeError, "double() expects an int")
		}
		return a.Int(i.Value * 2), nil
	}})

	if _, err := runWith(t, "x = double(21)", ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := global(t, ctx, "x").Inspect(); got != "42" {
		t.Errorf("expected 42, got %s", got)
	}

	if _, err := runWith(t, "x = double('a')", ctx); !errors.Is(err, object.ErrTypeError) {
		t.Errorf("expected TypeError, got %v", err)
	}
	if _, err := runWith(t, "x = double(1, 2)", ctx); !errors.Is(err, object.ErrTypeError) {
		t.Errorf("expected arity TypeError, got %v", err)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	ctx := NewContext(1000, Config{Logger: quiet})
	ctx.Chain.Bind("boom", &object.Builtin{Name: "boom", Arity: 0, Fn: func(a *object.Arena, args []object.Value) (object.Value, error) {
		panic("kaboom")
	}})
	_, err := runWith(t, "def f() { return boom() }\nf()", ctx)
	if !errors.Is(err, object.ErrInternal) {
		t.Fatalf("expected Internal, got %v", err)
	}
}

func TestDeterminism(t *testing.T) {
	input := `
class Acc { def __init__(self) { self.v = 0 } }
a = Acc()
for i in range(50) { a.v += i * i }
s = "x" * 3
f = 1 / 3.0
`
	render := func() (string, int64) {
		ctx, err := run(t, input, 10_000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := ""
		for _, name := range ctx.Chain.Global().Names() {
			out += name + "=" + global(t, ctx, name).Inspect() + ";"
		}
		return out, ctx.Used()
	}

	first, used1 := render()
	second, used2 := render()
	if first != second || used1 != used2 {
		t.Fatalf("expected identical runs:\n%s (%d)\n%s (%d)", first, used1, second, used2)
	}
}

func TestConcurrentExecutions(t *testing.T) {
	input := "def f(n) { if n < 2 { return n }\n return f(n - 1) + f(n - 2) }\nx = f(12)"

	var wg sync.WaitGroup
	results := make([]string, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			module, err := parser.Parse(input)
			if err != nil {
				errs[i] = err
				return
			}
			ctx := NewContext(1_000_000, Config{Logger: quiet})
			if err := New(ctx).EvalModule(module); err != nil {
				errs[i] = err
				return
			}
			cell, _ := ctx.Chain.Global().Get("x")
			results[i] = cell.Value.Inspect()
		}(i)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("run %d failed: %v", i, errs[i])
		}
		if results[i] != "144" {
			t.Errorf("run %d - expected 144, got %s", i, results[i])
		}
	}
}
