package evaluator

import (
	"fmt"
	"sandpy/internal/ast"
	"sandpy/internal/object"
	"sandpy/internal/ops"
	"sandpy/internal/scope"
	"strings"
)

// Function is a guest function. Env is the chain captured at definition
// time; each call runs in a fresh scope pushed on top of it.
type Function struct {
	Name       string
	Parameters []*ast.Identifier
	Body       *ast.BlockStatement
	Env        *scope.Chain
}

func (f *Function) Type() object.ObjectType { return object.FUNCTION_OBJ }
func (f *Function) Inspect() string {
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.Value
	}
	return fmt.Sprintf("<function %s(%s)>", f.Name, strings.Join(params, ", "))
}

func init() {
	RegisterCallableRecords(ops.Default())
}

// RegisterCallableRecords adds equality for functions, bound methods and
// builtins to r. Functions and builtins compare by identity; two bound
// methods are equal when they bind the same method to the same receiver.
func RegisterCallableRecords(r *ops.Registry) {
	registerIdentity[*Function](r)
	registerIdentity[*object.Builtin](r)

	sameBinding := func(l, rr *object.BoundMethod) bool {
		return l.Receiver == rr.Receiver && l.Method == rr.Method
	}
	ops.RegisterBinary(r, ops.Eq, func(l, rr *object.BoundMethod, a *object.Arena) (object.Value, error) {
		return a.Bool(sameBinding(l, rr)), nil
	})
	ops.RegisterBinary(r, ops.Ne, func(l, rr *object.BoundMethod, a *object.Arena) (object.Value, error) {
		return a.Bool(!sameBinding(l, rr)), nil
	})
}

func registerIdentity[T interface {
	object.Value
	comparable
}](r *ops.Registry) {
	ops.RegisterBinary(r, ops.Eq, func(l, rr T, a *object.Arena) (object.Value, error) {
		return a.Bool(l == rr), nil
	})
	ops.RegisterBinary(r, ops.Ne, func(l, rr T, a *object.Arena) (object.Value, error) {
		return a.Bool(l != rr), nil
	})
}
