package store

import (
	"bytes"
	"encoding/json"
	"math"
)

// Values are stored as JSON. Non-finite floats become the strings "nan",
// "inf" and "-inf"; the stored kind tells them apart from real strings.

func encodeValue(v any) (string, error) {
	data, err := json.Marshal(finite(v))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func finite(v any) any {
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
			out[k] = finite(fv)
		}
		return out
	}
	return v
}

func decodeValue(kind, data string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	if kind == "float" {
		switch raw {
		case "nan":
			return math.NaN(), nil
		case "inf":
			return math.Inf(1), nil
		case "-inf":
			return math.Inf(-1), nil
		}
		if n, ok := raw.(json.Number); ok {
			return n.Float64()
		}
	}
	return normalize(raw), nil
}

// normalize turns json.Number into int64 where it fits, float64 otherwise.
func normalize(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case map[string]any:
		for k, fv := range v {
			v[k] = normalize(fv)
		}
		return v
	}
	return v
}
