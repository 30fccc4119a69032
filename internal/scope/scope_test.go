package scope

import (
	"errors"
	"sandpy/internal/object"
	"testing"
)

func intValue(t *testing.T, c *Chain, name string) int64 {
	t.Helper()
	cell, err := c.Lookup(name)
	if err != nil {
		t.Fatalf("lookup %q: %v", name, err)
	}
	i, ok := cell.Value.(*object.Integer)
	if !ok {
		t.Fatalf("expected %q to hold an int, got %T", name, cell.Value)
	}
	return i.Value
}

func TestShadowing(t *testing.T) {
	c := New()
	c.Bind("x", &object.Integer{Value: 1})

	err := c.WithScope(func() error {
		c.Bind("x", &object.Integer{Value: 2})
		if got := intValue(t, c, "x"); got != 2 {
			t.Errorf("inner lookup expected 2, got %d", got)
		}
		c.Bind("y", &object.Integer{Value: 3})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := intValue(t, c, "x"); got != 1 {
		t.Errorf("outer binding expected 1 after pop, got %d", got)
	}
	if _, err := c.Lookup("y"); !errors.Is(err, object.ErrReferenceNotExist) {
		t.Errorf("expected y to be gone after pop, got %v", err)
	}
	if c.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", c.Depth())
	}
}

func TestWithScopePopsOnError(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	err := c.WithScope(func() error {
		c.Bind("tmp", object.NONE)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if c.Depth() != 1 {
		t.Fatalf("expected depth 1 after failed scope, got %d", c.Depth())
	}
}

func TestWithScopePopsOnPanic(t *testing.T) {
	c := New()
	func() {
		defer func() { _ = recover() }()
		_ = c.WithScope(func() error {
			c.Push()
			panic("unwind")
		})
	}()
	// the inner Push is not bracketed, only the WithScope one is
	if c.Depth() != 2 {
		t.Fatalf("expected depth 2, got %d", c.Depth())
	}
}

func TestLookupMissing(t *testing.T) {
	c := New()
	_, err := c.Lookup("q")
	var execErr *object.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *object.ExecutionError, got %T", err)
	}
	if execErr.Kind != object.ReferenceNotExist || execErr.Name != "q" {
		t.Errorf("unexpected error: %+v", execErr)
	}
	if !errors.Is(err, &object.ExecutionError{Kind: object.ReferenceNotExist, Name: "q"}) {
		t.Errorf("expected match on name q")
	}
}

func TestAssignRewritesOuterCell(t *testing.T) {
	c := New()
	outer := c.Bind("total", &object.Integer{Value: 0})

	_ = c.WithScope(func() error {
		cell := c.Assign("total", &object.Integer{Value: 10})
		if cell != outer {
			t.Errorf("expected assign to reuse the outer cell")
		}
		c.Assign("fresh", &object.Integer{Value: 1})
		if _, ok := c.Innermost().Get("fresh"); !ok {
			t.Errorf("expected fresh to be bound in the innermost scope")
		}
		return nil
	})

	if got := intValue(t, c, "total"); got != 10 {
		t.Errorf("expected total=10, got %d", got)
	}
	if _, err := c.Lookup("fresh"); err == nil {
		t.Errorf("expected fresh to vanish with its scope")
	}
}

func TestAssignWithinStopsAtFloor(t *testing.T) {
	c := New()
	global := c.Bind("n", &object.Integer{Value: 1})
	floor := c.Push()
	c.Push()

	c.AssignWithin(floor, "n", &object.Integer{Value: 2})
	if global.Value.(*object.Integer).Value != 1 {
		t.Errorf("expected the global cell below the floor to be untouched")
	}
	if _, ok := floor.Get("n"); !ok {
		t.Errorf("expected n to be bound in the floor scope")
	}
	if _, ok := c.Innermost().Get("n"); ok {
		t.Errorf("expected nothing bound in the innermost scope")
	}

	inner := c.Innermost()
	inner.Set("m", &Cell{Value: &object.Integer{Value: 0}})
	cell := c.AssignWithin(floor, "m", &object.Integer{Value: 3})
	if got, _ := inner.Get("m"); got != cell {
		t.Errorf("expected an existing cell above the floor to be rewritten")
	}

	c.Pop()
	c.Pop()
	if got := intValue(t, c, "n"); got != 1 {
		t.Errorf("expected n=1 after popping, got %d", got)
	}
}

func TestBindCreatesFreshCell(t *testing.T) {
	c := New()
	first := c.Bind("a", &object.Integer{Value: 1})
	second := c.Bind("a", &object.Integer{Value: 2})
	if first == second {
		t.Fatalf("expected a fresh cell on rebinding")
	}
	if first.Value.(*object.Integer).Value != 1 {
		t.Errorf("expected the old cell to keep its value")
	}
	if names := c.Global().Names(); len(names) != 1 || names[0] != "a" {
		t.Errorf("expected one name, got %v", names)
	}
}

func TestAlias(t *testing.T) {
	c := New()
	c.Bind("a", &object.Integer{Value: 1})
	if err := c.Alias("b", "a"); err != nil {
		t.Fatalf("alias: %v", err)
	}
	c.Assign("b", &object.Integer{Value: 5})
	if got := intValue(t, c, "a"); got != 5 {
		t.Errorf("expected write through alias, got %d", got)
	}

	if err := c.Alias("z", "missing"); !errors.Is(err, object.ErrReferenceNotExist) {
		t.Errorf("expected ReferenceNotExist, got %v", err)
	}
}

func TestSnapshotSharesScopes(t *testing.T) {
	c := New()
	c.Push()
	c.Bind("local", &object.Integer{Value: 1})

	snap := c.Snapshot()
	call := snap.Extend()
	if call.Depth() != 3 || snap.Depth() != 2 {
		t.Fatalf("unexpected depths: call=%d snap=%d", call.Depth(), snap.Depth())
	}

	c.Bind("later", &object.Integer{Value: 2})
	if got := intValue(t, call, "later"); got != 2 {
		t.Errorf("expected binding made after the snapshot to be visible, got %d", got)
	}

	call.Bind("param", object.NONE)
	if _, err := c.Lookup("param"); err == nil {
		t.Errorf("expected call scope bindings to stay private")
	}

	c.Pop()
	if call.Depth() != 3 {
		t.Errorf("expected pop on the original to leave the snapshot alone")
	}
}

func TestPopGlobalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic when popping the global scope")
		}
	}()
	New().Pop()
}
