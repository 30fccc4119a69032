package object

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	INTEGER_OBJ  = "int"
	FLOAT_OBJ    = "float"
	BOOLEAN_OBJ  = "bool"
	STRING_OBJ   = "str"
	NONE_OBJ     = "NoneType"
	INSTANCE_OBJ = "object"
	CLASS_OBJ    = "type"
	RANGE_OBJ    = "range"
	METHOD_OBJ   = "method"
	BUILTIN_OBJ  = "builtin_function_or_method"
	FUNCTION_OBJ = "function"
	ERROR_OBJ    = "error"
)

var (
	NONE  = &None{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

// Value is a guest value. The set of implementations is open: embedders may
// define their own types and register operators for them.
type Value interface {
	Type() ObjectType
	Inspect() string
}

// As is the runtime type check used by operator dispatch. A mismatch is a
// plain negative result.
func As[T Value](v Value) (T, bool) {
	t, ok := v.(T)
	return t, ok
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string {
	switch {
	case math.IsInf(f.Value, 1):
		return "inf"
	case math.IsInf(f.Value, -1):
		return "-inf"
	case math.IsNaN(f.Value):
		return "nan"
	}
	s := strconv.FormatFloat(f.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "True"
	}
	return "False"
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return strconv.Quote(s.Value) }

type None struct{}

func (n *None) Type() ObjectType { return NONE_OBJ }
func (n *None) Inspect() string  { return "None" }

// Fields is an insertion-ordered attribute table.
type Fields struct {
	keys   []string
	values map[string]Value
}

func NewFields() *Fields {
	return &Fields{values: map[string]Value{}}
}

func (f *Fields) Get(name string) (Value, bool) {
	v, ok := f.values[name]
	return v, ok
}

func (f *Fields) Set(name string, v Value) {
	if _, ok := f.values[name]; !ok {
		f.keys = append(f.keys, name)
	}
	f.values[name] = v
}

func (f *Fields) Keys() []string {
	return append([]string(nil), f.keys...)
}

func (f *Fields) Len() int { return len(f.keys) }

func (f *Fields) clone() *Fields {
	c := &Fields{keys: append([]string(nil), f.keys...), values: make(map[string]Value, len(f.values))}
	for k, v := range f.values {
		c.values[k] = v
	}
	return c
}

// Class is a guest type. Attrs hold methods and class-level values; bases are
// searched depth first, left to right.
type Class struct {
	Name  string
	Bases []*Class
	Attrs *Fields
}

func (c *Class) Type() ObjectType { return CLASS_OBJ }
func (c *Class) Inspect() string  { return fmt.Sprintf("<class '%s'>", c.Name) }

// Lookup finds an attribute on the class or its bases.
func (c *Class) Lookup(name string) (Value, bool) {
	if v, ok := c.Attrs.Get(name); ok {
		return v, true
	}
	for _, base := range c.Bases {
		if v, ok := base.Lookup(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Instance is a guest object: a field record plus its class.
type Instance struct {
	Class  *Class
	Fields *Fields
}

func (o *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (o *Instance) Inspect() string {
	var out bytes.Buffer
	name := "object"
	if o.Class != nil {
		name = o.Class.Name
	}
	out.WriteString(name)
	out.WriteString("(")
	for i, k := range o.Fields.keys {
		if i > 0 {
			out.WriteString(", ")
		}
		v := o.Fields.values[k]
		out.WriteString(k)
		out.WriteString("=")
		if inner, ok := v.(*Instance); ok && inner == o {
			out.WriteString("...")
		} else {
			out.WriteString(v.Inspect())
		}
	}
	out.WriteString(")")
	return out.String()
}

// BoundMethod pairs a callable class attribute with the instance it was read from.
type BoundMethod struct {
	Receiver Value
	Method   Value
}

func (m *BoundMethod) Type() ObjectType { return METHOD_OBJ }
func (m *BoundMethod) Inspect() string {
	return fmt.Sprintf("<bound method %s of %s>", m.Method.Inspect(), m.Receiver.Type())
}

type Range struct {
	Start int64
	Stop  int64
	Step  int64
}

func (r *Range) Type() ObjectType { return RANGE_OBJ }
func (r *Range) Inspect() string {
	if r.Step == 1 {
		return fmt.Sprintf("range(%d, %d)", r.Start, r.Stop)
	}
	return fmt.Sprintf("range(%d, %d, %d)", r.Start, r.Stop, r.Step)
}

func (r *Range) count() uint64 {
	switch {
	case r.Step > 0 && r.Start < r.Stop:
		return (uint64(r.Stop)-uint64(r.Start)-1)/uint64(r.Step) + 1
	case r.Step < 0 && r.Start > r.Stop:
		return (uint64(r.Start)-uint64(r.Stop)-1)/(-uint64(r.Step)) + 1
	}
	return 0
}

// Len is the number of values the range yields, capped at MaxInt64.
func (r *Range) Len() int64 {
	if n := r.count(); n <= math.MaxInt64 {
		return int64(n)
	}
	return math.MaxInt64
}

// Oversized reports a range whose length does not fit in an int64.
func (r *Range) Oversized() bool {
	return r.count() > math.MaxInt64
}

// At returns the i-th value; i must be in [0, Len()).
func (r *Range) At(i int64) int64 {
	return r.Start + i*r.Step
}

// BuiltinFunction is a host function callable from guest code. Arity -1 accepts any count.
type BuiltinFunction func(a *Arena, args []Value) (Value, error)

type Builtin struct {
	Name  string
	Arity int
	Fn    BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return fmt.Sprintf("<built-in function %s>", b.Name) }

// Error is a failure carried as a first-class value. Operator implementations
// produce it; the evaluator turns it back into a failure when it surfaces.
type Error struct {
	Err *ExecutionError
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "error: " + e.Err.Error() }

// Truthy coerces any value to a boolean.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case *Boolean:
		return v.Value
	case *None:
		return false
	case *Integer:
		return v.Value != 0
	case *Float:
		return v.Value != 0
	case *String:
		return v.Value != ""
	case *Range:
		return v.Len() > 0
	case nil:
		return false
	default:
		return true
	}
}
