package object

import (
	"fmt"
	"sort"
)

// Export converts a guest value into a plain Go value for the host:
// int64, float64, string, bool, nil or map[string]any for instances.
// Callables, classes and ranges are exported as their Inspect text.
func Export(v Value) any {
	return export(v, map[*Instance]bool{})
}

func export(v Value, seen map[*Instance]bool) any {
	switch v := v.(type) {
	case nil:
		return nil
	case *Integer:
		return v.Value
	case *Float:
		return v.Value
	case *String:
		return v.Value
	case *Boolean:
		return v.Value
	case *None:
		return nil
	case *Instance:
		if seen[v] {
			return "<cycle>"
		}
		seen[v] = true
		defer delete(seen, v)
		m := make(map[string]any, v.Fields.Len())
		for _, k := range v.Fields.keys {
			m[k] = export(v.Fields.values[k], seen)
		}
		return m
	case *Error:
		return v.Err.Error()
	default:
		return v.Inspect()
	}
}

// Import converts a host value into a guest value. Supported inputs are Go
// integers, floats, strings, bools, nil, map[string]any (as an instance
// without a class) and Value itself. A Value is cloned into a, so a run
// never writes into the caller's instance fields.
func Import(a *Arena, v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return NONE, nil
	case Value:
		return a.Clone(v), nil
	case bool:
		return a.Bool(v), nil
	case int:
		return a.Int(int64(v)), nil
	case int8:
		return a.Int(int64(v)), nil
	case int16:
		return a.Int(int64(v)), nil
	case int32:
		return a.Int(int64(v)), nil
	case int64:
		return a.Int(v), nil
	case uint8:
		return a.Int(int64(v)), nil
	case uint16:
		return a.Int(int64(v)), nil
	case uint32:
		return a.Int(int64(v)), nil
	case float32:
		return a.Float(float64(v)), nil
	case float64:
		return a.Float(v), nil
	case string:
		return a.Str(v), nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := NewFields()
		for _, k := range keys {
			fv, err := Import(a, v[k])
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			fields.Set(k, fv)
		}
		return Alloc(a, &Instance{Fields: fields}), nil
	default:
		return nil, NewError(TypeError, "cannot import host value of type %T", v)
	}
}
