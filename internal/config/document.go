package config

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

const keySeparator = "."

// Document is the read-only merged view of a base and an overlay document.
type Document struct {
	name   string
	values map[string]any
}

// NewDocument merges the provided layers in order; later layers win on every
// key path they define.
func NewDocument(name string, layers ...map[string]any) (*Document, error) {
	merged := make(map[string]any)
	for i, layer := range layers {
		if layer == nil {
			continue
		}
		if err := mergo.Merge(&merged, cloneMap(layer), mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge layer %d of %q: %w", i, name, err)
		}
	}
	return &Document{name: name, values: merged}, nil
}

// Name returns the base document name.
func (d *Document) Name() string {
	return d.name
}

// Has reports whether the key path resolves to a value.
func (d *Document) Has(key string) bool {
	_, ok := d.lookup(key)
	return ok
}

// Get returns a copy of the raw value stored at key.
func (d *Document) Get(key string) (any, error) {
	value, ok := d.lookup(key)
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}
	return cloneValue(value), nil
}

// GetString returns the string stored at key. Non-string values are not converted.
func (d *Document) GetString(key string) (string, error) {
	value, ok := d.lookup(key)
	if !ok {
		return "", &KeyNotFoundError{Key: key}
	}
	s, ok := value.(string)
	if !ok {
		return "", &TypeMismatchError{Key: key, Want: "string", Got: kindOf(value)}
	}
	return s, nil
}

// GetInt returns the integer stored at key.
func (d *Document) GetInt(key string) (int, error) {
	value, ok := d.lookup(key)
	if !ok {
		return 0, &KeyNotFoundError{Key: key}
	}
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return 0, &TypeMismatchError{Key: key, Want: "int", Got: "out of range integer"}
		}
		return int(v), nil
	case uint64:
		if v > math.MaxInt {
			return 0, &TypeMismatchError{Key: key, Want: "int", Got: "out of range integer"}
		}
		return int(v), nil
	default:
		return 0, &TypeMismatchError{Key: key, Want: "int", Got: kindOf(value)}
	}
}

// GetFloat returns the number stored at key. Integers are widened.
func (d *Document) GetFloat(key string) (float64, error) {
	value, ok := d.lookup(key)
	if !ok {
		return 0, &KeyNotFoundError{Key: key}
	}
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return 0, &TypeMismatchError{Key: key, Want: "float", Got: kindOf(value)}
	}
}

// GetBool returns the boolean stored at key.
func (d *Document) GetBool(key string) (bool, error) {
	value, ok := d.lookup(key)
	if !ok {
		return false, &KeyNotFoundError{Key: key}
	}
	b, ok := value.(bool)
	if !ok {
		return false, &TypeMismatchError{Key: key, Want: "bool", Got: kindOf(value)}
	}
	return b, nil
}

// Sub returns the nested mapping at key as its own document.
func (d *Document) Sub(key string) (*Document, error) {
	value, ok := d.lookup(key)
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil, &TypeMismatchError{Key: key, Want: "mapping", Got: kindOf(value)}
	}
	return &Document{name: d.name + keySeparator + key, values: cloneMap(m)}, nil
}

// Keys lists the top-level keys in sorted order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Decode copies the merged view into out using its yaml struct tags.
func (d *Document) Decode(out any) error {
	data, err := yaml.Marshal(d.values)
	if err != nil {
		return fmt.Errorf("encode %q: %w", d.name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %q: %w", d.name, err)
	}
	return nil
}

func (d *Document) lookup(key string) (any, bool) {
	if key == "" {
		return nil, false
	}
	var current any = d.values
	for _, part := range strings.Split(key, keySeparator) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, uint64:
		return "int"
	case float64:
		return "float"
	case map[string]any:
		return "mapping"
	case []any:
		return "sequence"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
