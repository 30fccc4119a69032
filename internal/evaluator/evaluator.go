package evaluator

import (
	"errors"
	"log/slog"
	"math"
	"sandpy/internal/ast"
	"sandpy/internal/object"
	"sandpy/internal/ops"
	"sandpy/internal/scope"
)

// signal is the abrupt-exit state a statement hands back to its caller.
type signal int

const (
	flowNone signal = iota
	flowReturn
	flowBreak
	flowContinue
)

func (s signal) String() string {
	switch s {
	case flowReturn:
		return "return"
	case flowBreak:
		return "break"
	case flowContinue:
		return "continue"
	}
	return "none"
}

type Evaluator struct {
	ctx         *Context
	returnValue object.Value
	classBody   *scope.Scope // plain assignments here define class attributes
}

func New(ctx *Context) *Evaluator {
	return &Evaluator{ctx: ctx}
}

// EvalModule runs every top-level statement in order and stops at the first
// failure. A panic from an embedder's operator or builtin is reported as an
// Internal error.
func (e *Evaluator) EvalModule(module *ast.Module) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.ctx.Logger.Error("recovered panic during evaluation", slog.Any("panic", r))
			err = object.NewError(object.Internal, "panic during evaluation: %v", r)
		}
	}()

	if err := e.charge(module); err != nil {
		return err
	}

	for _, stmt := range module.Statements {
		sig, err := e.exec(stmt)
		if err != nil {
			return err
		}
		if sig != flowNone {
			return object.NewError(object.ControlFlow, "'%s' outside of its construct", sig).WithPos(stmt.Pos())
		}
	}
	return nil
}

func (e *Evaluator) charge(node ast.Node) error {
	if err := e.ctx.ConsumeOne(); err != nil {
		return annotate(err, node)
	}
	return nil
}

// annotate records node's position on err unless a deeper node already did.
func annotate(err error, node ast.Node) error {
	var execErr *object.ExecutionError
	if errors.As(err, &execErr) {
		execErr.WithPos(node.Pos())
	}
	return err
}

func (e *Evaluator) arenaErr() error {
	if err := e.ctx.Arena.Err(); err != nil {
		return err
	}
	return nil
}

// exec runs one statement.
func (e *Evaluator) exec(stmt ast.Statement) (signal, error) {
	if err := e.charge(stmt); err != nil {
		return flowNone, err
	}
	sig, err := e.execStatement(stmt)
	if err == nil {
		err = e.arenaErr()
	}
	if err != nil {
		return flowNone, annotate(err, stmt)
	}
	return sig, nil
}

func (e *Evaluator) execStatement(stmt ast.Statement) (signal, error) {
	switch stmt := stmt.(type) {
	case *ast.ExpressionStatement:
		_, err := e.Eval(stmt.Expression)
		return flowNone, err

	case *ast.AssignStatement:
		return flowNone, e.execAssign(stmt)

	case *ast.ReturnStatement:
		e.returnValue = object.NONE
		if stmt.ReturnValue != nil {
			v, err := e.Eval(stmt.ReturnValue)
			if err != nil {
				return flowNone, err
			}
			e.returnValue = v
		}
		return flowReturn, nil

	case *ast.BreakStatement:
		return flowBreak, nil

	case *ast.ContinueStatement:
		return flowContinue, nil

	case *ast.BlockStatement:
		return e.execScoped(stmt, nil)

	case *ast.IfStatement:
		return e.execIf(stmt)

	case *ast.WhileStatement:
		return e.execWhile(stmt)

	case *ast.ForStatement:
		return e.execFor(stmt)

	case *ast.FunctionDefinition:
		return flowNone, e.execFunctionDefinition(stmt)

	case *ast.ClassDefinition:
		return flowNone, e.execClassDefinition(stmt)
	}

	return flowNone, object.NewError(object.Internal, "unknown statement %T", stmt)
}

// execBlock runs statements in the current scope, stopping at the first
// abrupt exit.
func (e *Evaluator) execBlock(stmts []ast.Statement) (signal, error) {
	for _, stmt := range stmts {
		sig, err := e.exec(stmt)
		if err != nil || sig != flowNone {
			return sig, err
		}
	}
	return flowNone, nil
}

// execScoped runs block in a pushed scope. setup, when given, binds names in
// that scope before the statements run.
func (e *Evaluator) execScoped(block *ast.BlockStatement, setup func(*scope.Chain)) (signal, error) {
	sig := flowNone
	chain := e.ctx.Chain
	err := chain.WithScope(func() error {
		if setup != nil {
			setup(chain)
		}
		var err error
		sig, err = e.execBlock(block.Statements)
		return err
	})
	return sig, err
}

func (e *Evaluator) execIf(stmt *ast.IfStatement) (signal, error) {
	cond, err := e.Eval(stmt.Condition)
	if err != nil {
		return flowNone, err
	}
	if object.Truthy(cond) {
		return e.execScoped(stmt.Consequence, nil)
	}
	if stmt.Alternative != nil {
		return e.execScoped(stmt.Alternative, nil)
	}
	return flowNone, nil
}

// loopPass charges the per-iteration unit that keeps empty bodies from
// spinning for free.
func (e *Evaluator) loopPass(node ast.Node) error {
	return e.charge(node)
}

func (e *Evaluator) execWhile(stmt *ast.WhileStatement) (signal, error) {
	for {
		if err := e.loopPass(stmt); err != nil {
			return flowNone, err
		}
		cond, err := e.Eval(stmt.Condition)
		if err != nil {
			return flowNone, err
		}
		if !object.Truthy(cond) {
			break
		}

		sig, err := e.execScoped(stmt.Body, nil)
		if err != nil {
			return flowNone, err
		}
		switch sig {
		case flowBreak:
			return flowNone, nil
		case flowReturn:
			return sig, nil
		}
	}

	if stmt.Otherwise != nil {
		return e.execScoped(stmt.Otherwise, nil)
	}
	return flowNone, nil
}

func (e *Evaluator) execFor(stmt *ast.ForStatement) (signal, error) {
	iterable, err := e.Eval(stmt.Iterable)
	if err != nil {
		return flowNone, err
	}

	var (
		n  int64
		at func(i int64) object.Value
	)
	switch it := iterable.(type) {
	case *object.Range:
		n = it.Len()
		at = func(i int64) object.Value { return e.ctx.Arena.Int(it.At(i)) }
	case *object.String:
		runes := []rune(it.Value)
		n = int64(len(runes))
		at = func(i int64) object.Value { return e.ctx.Arena.Str(string(runes[i])) }
	default:
		return flowNone, object.NewError(object.TypeError, "'%s' object is not iterable", iterable.Type())
	}

	name := stmt.Target.Value
	for i := int64(0); i < n; i++ {
		if err := e.loopPass(stmt); err != nil {
			return flowNone, err
		}
		v := at(i)
		sig, err := e.execScoped(stmt.Body, func(c *scope.Chain) {
			c.Bind(name, v)
		})
		if err != nil {
			return flowNone, err
		}
		switch sig {
		case flowBreak:
			return flowNone, nil
		case flowReturn:
			return sig, nil
		}
	}

	if stmt.Otherwise != nil {
		return e.execScoped(stmt.Otherwise, nil)
	}
	return flowNone, nil
}

func (e *Evaluator) execFunctionDefinition(stmt *ast.FunctionDefinition) error {
	fn := object.Alloc(e.ctx.Arena, &Function{
		Name:       stmt.Name.Value,
		Parameters: stmt.Parameters,
		Body:       stmt.Body,
		Env:        e.ctx.Chain.Snapshot(),
	})
	e.define(fn.Name, fn)

	e.ctx.Logger.Debug("defined function",
		slog.String("name", fn.Name),
		slog.Int("params", len(fn.Parameters)),
		slog.Int("scope-depth", fn.Env.Depth()))
	return nil
}

// define binds a def or class statement. Blocks nested in a class body
// still define class attributes.
func (e *Evaluator) define(name string, v object.Value) {
	if e.classBody != nil {
		e.classBody.Set(name, &scope.Cell{Value: v})
		return
	}
	e.ctx.Chain.Bind(name, v)
}

func (e *Evaluator) execClassDefinition(stmt *ast.ClassDefinition) error {
	bases := make([]*object.Class, 0, len(stmt.Bases))
	for _, expr := range stmt.Bases {
		v, err := e.Eval(expr)
		if err != nil {
			return err
		}
		base, ok := v.(*object.Class)
		if !ok {
			return annotate(object.NewError(object.TypeError, "class %s: base must be a class, not '%s'", stmt.Name.Value, v.Type()), expr)
		}
		bases = append(bases, base)
	}

	attrs := object.NewFields()
	chain := e.ctx.Chain
	err := chain.WithScope(func() error {
		body := chain.Innermost()
		outer := e.classBody
		e.classBody = body
		defer func() { e.classBody = outer }()

		sig, err := e.execBlock(stmt.Body.Statements)
		if err != nil {
			return err
		}
		if sig != flowNone {
			return object.NewError(object.ControlFlow, "'%s' in class body", sig)
		}
		for _, name := range body.Names() {
			cell, _ := body.Get(name)
			attrs.Set(name, cell.Value)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cls := object.Alloc(e.ctx.Arena, &object.Class{Name: stmt.Name.Value, Bases: bases, Attrs: attrs})
	e.define(cls.Name, cls)

	e.ctx.Logger.Debug("defined class",
		slog.String("name", cls.Name),
		slog.Int("bases", len(bases)),
		slog.Any("attrs", attrs.Keys()))
	return nil
}

func (e *Evaluator) execAssign(stmt *ast.AssignStatement) error {
	var op ops.BinaryOp
	if stmt.Operator != "" {
		var ok bool
		if op, ok = ops.LookupBinary(stmt.Operator); !ok {
			return object.NewError(object.UnsupportedOperator, "unknown operator %s=", stmt.Operator)
		}
	}

	// value evaluates the right-hand side and, for augmented forms, combines
	// it with the current value of the target.
	value := func(current func() (object.Value, error)) (object.Value, error) {
		if stmt.Operator == "" {
			return e.Eval(stmt.Value)
		}
		lhs, err := current()
		if err != nil {
			return nil, err
		}
		rhs, err := e.Eval(stmt.Value)
		if err != nil {
			return nil, err
		}
		return e.binary(op, lhs, rhs)
	}

	switch target := stmt.Target.(type) {
	case *ast.Identifier:
		v, err := value(func() (object.Value, error) {
			cell, err := e.ctx.Chain.Lookup(target.Value)
			if err != nil {
				return nil, annotate(err, target)
			}
			return cell.Value, nil
		})
		if err != nil {
			return err
		}
		if e.classBody != nil {
			e.ctx.Chain.AssignWithin(e.classBody, target.Value, v)
		} else {
			e.ctx.Chain.Assign(target.Value, v)
		}
		return nil

	case *ast.AttributeExpression:
		obj, err := e.Eval(target.Left)
		if err != nil {
			return err
		}
		name := target.Name.Value
		v, err := value(func() (object.Value, error) {
			return e.attribute(obj, name)
		})
		if err != nil {
			return err
		}
		return annotate(e.setAttribute(obj, name, v), target)

	case *ast.IndexExpression:
		obj, err := e.Eval(target.Left)
		if err != nil {
			return err
		}
		index, err := e.Eval(target.Index)
		if err != nil {
			return err
		}
		v, err := value(func() (object.Value, error) {
			return e.index(obj, index)
		})
		if err != nil {
			return err
		}
		return annotate(e.setIndex(obj, index, v), target)
	}

	return object.NewError(object.TypeError, "cannot assign to %s", stmt.Target.String())
}

func (e *Evaluator) setAttribute(obj object.Value, name string, v object.Value) error {
	switch obj := obj.(type) {
	case *object.Instance:
		obj.Fields.Set(name, v)
		return nil
	case *object.Class:
		obj.Attrs.Set(name, v)
		return nil
	}
	return object.NewError(object.AttributeNotExist, "'%s' object attribute '%s' is read-only", obj.Type(), name)
}

func (e *Evaluator) setIndex(obj, index object.Value, v object.Value) error {
	inst, ok := obj.(*object.Instance)
	if !ok {
		return object.NewError(object.TypeError, "'%s' object does not support item assignment", obj.Type())
	}
	key, ok := index.(*object.String)
	if !ok {
		return object.NewError(object.TypeError, "object keys must be str, not '%s'", index.Type())
	}
	inst.Fields.Set(key.Value, v)
	return nil
}

// Eval evaluates one expression.
func (e *Evaluator) Eval(expr ast.Expression) (object.Value, error) {
	if err := e.charge(expr); err != nil {
		return nil, err
	}
	v, err := e.evalExpression(expr)
	if err == nil {
		err = e.arenaErr()
	}
	if err != nil {
		return nil, annotate(err, expr)
	}
	return v, nil
}

func (e *Evaluator) evalExpression(expr ast.Expression) (object.Value, error) {
	a := e.ctx.Arena

	switch node := expr.(type) {
	case *ast.IntegerLiteral:
		return a.Int(node.Value), nil

	case *ast.FloatLiteral:
		return a.Float(node.Value), nil

	case *ast.StringLiteral:
		return a.Str(node.Value), nil

	case *ast.Boolean:
		return a.Bool(node.Value), nil

	case *ast.NoneLiteral:
		return a.None(), nil

	case *ast.Identifier:
		cell, err := e.ctx.Chain.Lookup(node.Value)
		if err != nil {
			return nil, err
		}
		return cell.Value, nil

	case *ast.PrefixExpression:
		return e.evalPrefix(node)

	case *ast.InfixExpression:
		return e.evalInfix(node)

	case *ast.CallExpression:
		fn, err := e.Eval(node.Function)
		if err != nil {
			return nil, err
		}
		args, err := e.evalExpressions(node.Arguments)
		if err != nil {
			return nil, err
		}
		return e.call(fn, args)

	case *ast.AttributeExpression:
		obj, err := e.Eval(node.Left)
		if err != nil {
			return nil, err
		}
		return e.attribute(obj, node.Name.Value)

	case *ast.IndexExpression:
		obj, err := e.Eval(node.Left)
		if err != nil {
			return nil, err
		}
		index, err := e.Eval(node.Index)
		if err != nil {
			return nil, err
		}
		return e.index(obj, index)

	case *ast.RangeExpression:
		return e.evalRange(node)
	}

	return nil, object.NewError(object.Internal, "unknown expression %T", expr)
}

func (e *Evaluator) evalExpressions(exprs []ast.Expression) ([]object.Value, error) {
	result := make([]object.Value, 0, len(exprs))
	for _, expr := range exprs {
		v, err := e.Eval(expr)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

func (e *Evaluator) evalPrefix(node *ast.PrefixExpression) (object.Value, error) {
	op, ok := ops.LookupUnary(node.Operator)
	if !ok {
		return nil, object.NewError(object.UnsupportedOperator, "unknown operator %s", node.Operator)
	}
	operand, err := e.Eval(node.Right)
	if err != nil {
		return nil, err
	}

	v, ok := e.ctx.Registry.Unary(op, operand, e.ctx.Arena)
	if !ok {
		return nil, object.NewError(object.UnsupportedOperator, "bad operand type for unary %s: '%s'", node.Operator, operand.Type())
	}
	return unwrap(v)
}

func (e *Evaluator) evalInfix(node *ast.InfixExpression) (object.Value, error) {
	switch node.Operator {
	case "&&", "||":
		left, err := e.Eval(node.Left)
		if err != nil {
			return nil, err
		}
		if object.Truthy(left) == (node.Operator == "||") {
			return left, nil
		}
		return e.Eval(node.Right)
	}

	op, ok := ops.LookupBinary(node.Operator)
	if !ok {
		return nil, object.NewError(object.UnsupportedOperator, "unknown operator %s", node.Operator)
	}
	left, err := e.Eval(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.Eval(node.Right)
	if err != nil {
		return nil, err
	}
	return e.binary(op, left, right)
}

func (e *Evaluator) binary(op ops.BinaryOp, lhs, rhs object.Value) (object.Value, error) {
	v, ok := e.ctx.Registry.Binary(op, lhs, rhs, e.ctx.Arena)
	if !ok {
		return nil, object.NewError(object.UnsupportedOperator,
			"unsupported operand types for %s: '%s' and '%s'", op, lhs.Type(), rhs.Type())
	}
	return unwrap(v)
}

// unwrap turns an error value produced by an operator back into a failure.
func unwrap(v object.Value) (object.Value, error) {
	if errVal, ok := v.(*object.Error); ok {
		return nil, errVal.Err
	}
	return v, nil
}

func (e *Evaluator) evalRange(node *ast.RangeExpression) (object.Value, error) {
	bound := func(expr ast.Expression, def int64) (int64, error) {
		if expr == nil {
			return def, nil
		}
		v, err := e.Eval(expr)
		if err != nil {
			return 0, err
		}
		i, ok := v.(*object.Integer)
		if !ok {
			return 0, annotate(object.NewError(object.TypeError, "range() arguments must be int, not '%s'", v.Type()), expr)
		}
		return i.Value, nil
	}

	start, err := bound(node.Start, 0)
	if err != nil {
		return nil, err
	}
	stop, err := bound(node.Stop, 0)
	if err != nil {
		return nil, err
	}
	step, err := bound(node.Step, 1)
	if err != nil {
		return nil, err
	}
	if step == 0 {
		return nil, object.NewError(object.ValueError, "range() step must not be zero")
	}
	r := &object.Range{Start: start, Stop: stop, Step: step}
	if r.Oversized() {
		return nil, object.NewError(object.ValueError, "range() has more than %d items", int64(math.MaxInt64))
	}
	return object.Alloc(e.ctx.Arena, r), nil
}

func (e *Evaluator) attribute(obj object.Value, name string) (object.Value, error) {
	switch obj := obj.(type) {
	case *object.Instance:
		if v, ok := obj.Fields.Get(name); ok {
			return v, nil
		}
		if obj.Class != nil {
			if v, ok := obj.Class.Lookup(name); ok {
				switch v.(type) {
				case *Function, *object.Builtin:
					return object.Alloc(e.ctx.Arena, &object.BoundMethod{Receiver: obj, Method: v}), nil
				}
				return v, nil
			}
		}
	case *object.Class:
		if v, ok := obj.Lookup(name); ok {
			return v, nil
		}
	}
	return nil, object.NewError(object.AttributeNotExist, "'%s' object has no attribute '%s'", obj.Type(), name)
}

func (e *Evaluator) index(obj, index object.Value) (object.Value, error) {
	switch obj := obj.(type) {
	case *object.Instance:
		key, ok := index.(*object.String)
		if !ok {
			return nil, object.NewError(object.TypeError, "object keys must be str, not '%s'", index.Type())
		}
		if v, ok := obj.Fields.Get(key.Value); ok {
			return v, nil
		}
		return nil, object.NewError(object.AttributeNotExist, "object has no field %s", key.Inspect())

	case *object.String:
		i, ok := index.(*object.Integer)
		if !ok {
			return nil, object.NewError(object.TypeError, "string indices must be integers, not '%s'", index.Type())
		}
		runes := []rune(obj.Value)
		pos, ok := normalizeIndex(i.Value, int64(len(runes)))
		if !ok {
			return nil, object.NewError(object.IndexOutOfRange, "string index %d out of range", i.Value)
		}
		return e.ctx.Arena.Str(string(runes[pos])), nil

	case *object.Range:
		i, ok := index.(*object.Integer)
		if !ok {
			return nil, object.NewError(object.TypeError, "range indices must be integers, not '%s'", index.Type())
		}
		pos, ok := normalizeIndex(i.Value, obj.Len())
		if !ok {
			return nil, object.NewError(object.IndexOutOfRange, "range index %d out of range", i.Value)
		}
		return e.ctx.Arena.Int(obj.At(pos)), nil
	}

	return nil, object.NewError(object.TypeError, "'%s' object is not subscriptable", obj.Type())
}

// normalizeIndex resolves a possibly negative index against length n.
func normalizeIndex(i, n int64) (int64, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}

func (e *Evaluator) call(callee object.Value, args []object.Value) (object.Value, error) {
	switch fn := callee.(type) {
	case *Function:
		return e.callFunction(fn, args)

	case *object.BoundMethod:
		withSelf := make([]object.Value, 0, len(args)+1)
		withSelf = append(withSelf, fn.Receiver)
		withSelf = append(withSelf, args...)
		return e.call(fn.Method, withSelf)

	case *object.Class:
		return e.instantiate(fn, args)

	case *object.Builtin:
		if fn.Arity >= 0 && len(args) != fn.Arity {
			return nil, object.NewError(object.TypeError, "%s() takes %d arguments but %d were given", fn.Name, fn.Arity, len(args))
		}
		v, err := fn.Fn(e.ctx.Arena, args)
		if err != nil {
			var execErr *object.ExecutionError
			if errors.As(err, &execErr) {
				return nil, execErr
			}
			return nil, object.NewError(object.Internal, "%s(): %v", fn.Name, err)
		}
		if v == nil {
			return object.NONE, nil
		}
		return unwrap(v)
	}

	return nil, object.NewError(object.TypeError, "'%s' object is not callable", callee.Type())
}

func (e *Evaluator) callFunction(fn *Function, args []object.Value) (object.Value, error) {
	if len(args) != len(fn.Parameters) {
		return nil, object.NewError(object.TypeError, "%s() takes %d arguments but %d were given", fn.Name, len(fn.Parameters), len(args))
	}
	if err := e.ctx.enterCall(); err != nil {
		return nil, err
	}
	defer e.ctx.leaveCall()

	e.ctx.Logger.Debug("calling function",
		slog.String("name", fn.Name),
		slog.Int("depth", e.ctx.CallDepth()),
		slog.Int64("fuel", e.ctx.Remaining()))

	env := fn.Env.Extend()
	for i, param := range fn.Parameters {
		env.Bind(param.Value, args[i])
	}

	caller, classBody := e.ctx.Chain, e.classBody
	e.ctx.Chain, e.classBody = env, nil
	defer func() { e.ctx.Chain, e.classBody = caller, classBody }()

	sig, err := e.execBlock(fn.Body.Statements)
	if err != nil {
		return nil, err
	}
	switch sig {
	case flowReturn:
		v := e.returnValue
		e.returnValue = nil
		return v, nil
	case flowBreak, flowContinue:
		return nil, object.NewError(object.ControlFlow, "'%s' outside loop in %s()", sig, fn.Name)
	}
	return object.NONE, nil
}

func (e *Evaluator) instantiate(cls *object.Class, args []object.Value) (object.Value, error) {
	inst := object.Alloc(e.ctx.Arena, &object.Instance{Class: cls, Fields: object.NewFields()})

	init, ok := cls.Lookup("__init__")
	if !ok {
		if len(args) > 0 {
			return nil, object.NewError(object.TypeError, "%s() takes no arguments", cls.Name)
		}
		return inst, nil
	}

	withSelf := make([]object.Value, 0, len(args)+1)
	withSelf = append(withSelf, inst)
	withSelf = append(withSelf, args...)
	if _, err := e.call(init, withSelf); err != nil {
		return nil, err
	}
	return inst, nil
}
