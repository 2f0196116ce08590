package object

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Map is a string-keyed map that remembers insertion order. Like lists, maps
// are reference values.
type Map struct {
	items map[string]Object
	keys  []string
}

func (m *Map) Type() Type {
	return MAP
}

func (m *Map) Value() map[string]Object {
	return m.items
}

func (m *Map) Inspect() string {
	return m.inspect(0)
}

func (m *Map) inspect(depth int) string {
	if depth > maxNesting {
		return "{...}"
	}
	var b strings.Builder
	b.WriteString("{")
	for i, key := range m.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.Quote(key))
		b.WriteString(": ")
		b.WriteString(inspectNested(m.items[key], depth+1))
	}
	b.WriteString("}")
	return b.String()
}

func (m *Map) String() string {
	return m.Inspect()
}

func (m *Map) Interface() any {
	result := make(map[string]any, len(m.items))
	for k, v := range m.items {
		result[k] = v.Interface()
	}
	return result
}

func (m *Map) Equals(other Object) bool {
	return equals(m, other, 0)
}

func (m *Map) IsTruthy() bool {
	return true
}

// Get returns the value for key, or Nil when the key is absent.
func (m *Map) Get(key string) Object {
	if v, ok := m.items[key]; ok {
		return v
	}
	return Nil
}

// Lookup returns the value for key and whether it was present.
func (m *Map) Lookup(key string) (Object, bool) {
	v, ok := m.items[key]
	return v, ok
}

// Set stores a value, appending key to the iteration order when new.
func (m *Map) Set(key string, value Object) {
	if _, ok := m.items[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.items[key] = value
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of entries in the map.
func (m *Map) Len() int {
	return len(m.keys)
}

func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.items[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewMap returns a map holding the given entries. Keys are ordered
// alphabetically since Go maps carry no order.
func NewMap(items map[string]Object) *Map {
	m := &Map{items: make(map[string]Object, len(items))}
	for _, k := range Keys(items) {
		m.Set(k, items[k])
	}
	return m
}

// NewOrderedMap returns an empty map.
func NewOrderedMap() *Map {
	return &Map{items: map[string]Object{}}
}
