package sandpy

import (
	"bytes"
	"encoding/json"
	"iter"
	"math"
	"sandpy/internal/object"
	"sandpy/internal/scope"

	"gopkg.in/yaml.v3"
)

// Bindings is the exported global scope of a finished run, in the order the
// names were first bound. Values are plain Go values: int64, float64,
// string, bool, nil or map[string]any.
type Bindings struct {
	names  []string
	values map[string]any
	types  map[string]string
}

func NewBindings() *Bindings {
	return &Bindings{values: map[string]any{}, types: map[string]string{}}
}

func exportScope(s *scope.Scope) *Bindings {
	b := NewBindings()
	for _, name := range s.Names() {
		cell, _ := s.Get(name)
		b.Set(name, string(cell.Value.Type()), object.Export(cell.Value))
	}
	return b
}

// Set adds or replaces a binding. Exec never needs it; stores rebuilding a
// saved run do.
func (b *Bindings) Set(name, typ string, v any) {
	if _, ok := b.values[name]; !ok {
		b.names = append(b.names, name)
	}
	b.values[name] = v
	b.types[name] = typ
}

func (b *Bindings) Get(name string) (any, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Type is the guest type name of a binding, e.g. "int" or "object".
func (b *Bindings) Type(name string) string { return b.types[name] }

func (b *Bindings) Len() int { return len(b.names) }

func (b *Bindings) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

func (b *Bindings) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, name := range b.names {
			if !yield(name, b.values[name]) {
				return
			}
		}
	}
}

// Map copies the bindings into an unordered map.
func (b *Bindings) Map() map[string]any {
	m := make(map[string]any, len(b.names))
	for name, v := range b.All() {
		m[name] = v
	}
	return m
}

// MarshalJSON writes an object whose keys keep binding order. Non-finite
// floats, which JSON cannot carry, are written as strings.
func (b *Bindings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range b.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(jsonSafe(b.values[name]))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func jsonSafe(v any) any {
	switch v := v.(type) {
	case float64:
		switch {
		case math.IsNaN(v):
			return "nan"
		case math.IsInf(v, 1):
			return "inf"
		case math.IsInf(v, -1):
			return "-inf"
		}
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, fv := range v {
			out[k] = jsonSafe(fv)
		}
		return out
	}
	return v
}

// MarshalYAML produces a mapping node so that binding order survives.
func (b *Bindings) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for name, v := range b.All() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
		val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		if v != nil {
			if err := val.Encode(v); err != nil {
				return nil, err
			}
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}
