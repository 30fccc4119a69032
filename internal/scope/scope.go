// Package scope implements lexical name resolution for guest code: a stack
// of scopes mapping names to shared cells.
package scope

import (
	"sandpy/internal/object"
	"sync/atomic"
)

var nextID atomic.Uint64

// Cell holds the value of one binding. Two names observe each other's
// writes only when they were aliased to the same cell.
type Cell struct {
	Value object.Value
}

// Scope maps names to cells and remembers the order names were first bound.
type Scope struct {
	ID    uint64
	cells map[string]*Cell
	names []string
}

func NewScope() *Scope {
	return &Scope{
		ID:    nextID.Add(1),
		cells: make(map[string]*Cell),
	}
}

// Get returns the cell bound to name in this scope only.
func (s *Scope) Get(name string) (*Cell, bool) {
	cell, ok := s.cells[name]
	return cell, ok
}

// Set binds name to cell, replacing any previous binding in this scope.
func (s *Scope) Set(name string, cell *Cell) {
	if _, exists := s.cells[name]; !exists {
		s.names = append(s.names, name)
	}
	s.cells[name] = cell
}

// Names lists the bound names in first-binding order.
func (s *Scope) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *Scope) Len() int { return len(s.names) }

// Chain is the stack of scopes visible at some point of evaluation. The
// first element is the global scope.
type Chain struct {
	scopes []*Scope
}

// New returns a chain holding a single empty global scope.
func New() *Chain {
	return &Chain{scopes: []*Scope{NewScope()}}
}

// Push enters a nested scope and returns it.
func (c *Chain) Push() *Scope {
	s := NewScope()
	c.scopes = append(c.scopes, s)
	return s
}

// Pop leaves the innermost scope. The global scope is never popped.
func (c *Chain) Pop() {
	if len(c.scopes) <= 1 {
		panic("scope: pop of global scope")
	}
	c.scopes[len(c.scopes)-1] = nil
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// WithScope runs fn inside a freshly pushed scope. The scope is popped on
// every exit path, including a panic unwinding through fn.
func (c *Chain) WithScope(fn func() error) error {
	c.Push()
	defer c.Pop()
	return fn()
}

// Lookup resolves name from the innermost scope outwards.
func (c *Chain) Lookup(name string) (*Cell, error) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if cell, ok := c.scopes[i].Get(name); ok {
			return cell, nil
		}
	}
	return nil, object.NewReferenceError(name)
}

// Bind creates a fresh cell for name in the innermost scope.
func (c *Chain) Bind(name string, v object.Value) *Cell {
	cell := &Cell{Value: v}
	c.Innermost().Set(name, cell)
	return cell
}

// Assign writes v into the cell name already resolves to, wherever it lives
// in the chain. An unbound name is bound in the innermost scope.
func (c *Chain) Assign(name string, v object.Value) *Cell {
	if cell, err := c.Lookup(name); err == nil {
		cell.Value = v
		return cell
	}
	return c.Bind(name, v)
}

// AssignWithin is Assign limited to the scopes from the innermost one down
// to floor. An unbound name is bound in floor.
func (c *Chain) AssignWithin(floor *Scope, name string, v object.Value) *Cell {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		s := c.scopes[i]
		if cell, ok := s.Get(name); ok {
			cell.Value = v
			return cell
		}
		if s == floor {
			cell := &Cell{Value: v}
			s.Set(name, cell)
			return cell
		}
	}
	return c.Bind(name, v)
}

// Alias makes name share the cell target currently resolves to. Writes
// through either name are then visible through both.
func (c *Chain) Alias(name, target string) error {
	cell, err := c.Lookup(target)
	if err != nil {
		return err
	}
	c.Innermost().Set(name, cell)
	return nil
}

// Snapshot returns a chain over the same scopes. Pushing or popping on the
// copy leaves c untouched, but bindings made in shared scopes are visible
// through both.
func (c *Chain) Snapshot() *Chain {
	scopes := make([]*Scope, len(c.scopes))
	copy(scopes, c.scopes)
	return &Chain{scopes: scopes}
}

// Extend returns a snapshot with one fresh scope on top.
func (c *Chain) Extend() *Chain {
	ext := &Chain{scopes: make([]*Scope, len(c.scopes), len(c.scopes)+1)}
	copy(ext.scopes, c.scopes)
	ext.Push()
	return ext
}

func (c *Chain) Global() *Scope    { return c.scopes[0] }
func (c *Chain) Innermost() *Scope { return c.scopes[len(c.scopes)-1] }
func (c *Chain) Depth() int        { return len(c.scopes) }
