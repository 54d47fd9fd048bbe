package database

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DataSnapshot is an immutable copy of the data at a location.
type DataSnapshot struct {
	ref *Reference
	// node is the data in export form: descendants may still carry
	// ".priority" entries so that Child keeps their priorities.
	node     any
	value    any
	priority any
	// children holds query results in query order; nil means key order.
	children []*DataSnapshot
}

// newSnapshot accepts plain or export-form data ({".value", ".priority"}
// wrappers at any depth).
func newSnapshot(ref *Reference, raw any) *DataSnapshot {
	node, priority := unwrapExport(raw)
	return &DataSnapshot{
		ref:      ref,
		node:     node,
		value:    plainValue(node),
		priority: priority,
	}
}

// unwrapExport splits an export-form node into its data and priority.
func unwrapExport(raw any) (node, priority any) {
	m, ok := raw.(map[string]any)
	if !ok {
		return raw, nil
	}
	if v, hasValue := m[".value"]; hasValue {
		return v, m[".priority"]
	}
	p, hasPriority := m[".priority"]
	if !hasPriority {
		return m, nil
	}
	stripped := make(map[string]any, len(m)-1)
	for k, v := range m {
		if k != ".priority" {
			stripped[k] = v
		}
	}
	return stripped, p
}

// plainValue drops every priority below node.
func plainValue(node any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			child, _ := unwrapExport(v)
			out[k] = plainValue(child)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			child, _ := unwrapExport(v)
			out[i] = plainValue(child)
		}
		return out
	}
	return node
}

func (s *DataSnapshot) Key() string {
	return s.ref.Key()
}

func (s *DataSnapshot) Ref() *Reference {
	return s.ref
}

// Exists is false when the location holds no data.
func (s *DataSnapshot) Exists() bool {
	return s.value != nil
}

// Val returns the value as decoded from JSON: nil, bool, float64, string,
// []any or map[string]any.
func (s *DataSnapshot) Val() any {
	return s.value
}

// Value decodes the snapshot into v with encoding/json semantics.
func (s *DataSnapshot) Value(v any) error {
	data, err := json.Marshal(s.value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Priority returns the priority stored with the node, or nil.
func (s *DataSnapshot) Priority() (Priority, error) {
	return ParsePriority(s.priority)
}

// Size is the number of direct children.
func (s *DataSnapshot) Size() int {
	if s.children != nil {
		return len(s.children)
	}
	switch v := s.node.(type) {
	case map[string]any:
		return len(v)
	case []any:
		n := 0
		for _, e := range v {
			if e != nil {
				n++
			}
		}
		return n
	}
	return 0
}

func (s *DataSnapshot) HasChildren() bool {
	return s.Size() > 0
}

func (s *DataSnapshot) HasChild(path string) bool {
	return s.Child(path).Exists()
}

// Child returns the snapshot at the relative path. Missing locations yield
// a snapshot for which Exists is false.
func (s *DataSnapshot) Child(path string) *DataSnapshot {
	segs := splitPath(path)
	if len(segs) > 0 && s.children != nil {
		for _, c := range s.children {
			if c.Key() == segs[0] {
				return c.Child(strings.Join(segs[1:], "/"))
			}
		}
		return newSnapshot(s.ref.Child(path), nil)
	}

	current := s.node
	for _, seg := range segs {
		current = childValue(current, seg)
	}
	return newSnapshot(s.ref.Child(path), current)
}

// Children returns the direct children in query order when the snapshot came
// from a query, otherwise in database key order.
func (s *DataSnapshot) Children() []*DataSnapshot {
	if s.children != nil {
		return slices.Clone(s.children)
	}

	var out []*DataSnapshot
	switch v := s.node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareKeys)
		for _, k := range keys {
			out = append(out, newSnapshot(s.ref.withSegments([]string{k}), v[k]))
		}
	case []any:
		for i, e := range v {
			if e != nil {
				out = append(out, newSnapshot(s.ref.withSegments([]string{strconv.Itoa(i)}), e))
			}
		}
	}
	return out
}

// ForEach calls fn for each child in order until fn returns true. It
// reports whether iteration was cancelled.
func (s *DataSnapshot) ForEach(fn func(*DataSnapshot) bool) bool {
	for _, c := range s.Children() {
		if fn(c) {
			return true
		}
	}
	return false
}

func childValue(v any, key string) any {
	switch node := v.(type) {
	case map[string]any:
		return node[key]
	case []any:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(node) {
			return nil
		}
		return node[i]
	}
	return nil
}

// compareKeys orders keys the way the database does: keys that parse as
// 32-bit integers first, numerically, then the rest lexicographically.
func compareKeys(a, b string) int {
	ai, aInt := intKey(a)
	bi, bInt := intKey(b)
	switch {
	case aInt && bInt:
		return compareInts(ai, bi)
	case aInt:
		return -1
	case bInt:
		return 1
	}
	return strings.Compare(a, b)
}

func intKey(k string) (int64, bool) {
	n, err := strconv.ParseInt(k, 10, 32)
	if err != nil || strconv.FormatInt(n, 10) != k {
		return 0, false
	}
	return n, true
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Priority is a node priority: a NumberPriority or a StringPriority.
type Priority interface {
	// Value returns the JSON value of the priority.
	Value() any
	isPriority()
}

// NumberPriority is a numeric priority.
type NumberPriority float64

func (p NumberPriority) Value() any { return float64(p) }
func (NumberPriority) isPriority()  {}

// StringPriority is a string priority.
type StringPriority string

func (p StringPriority) Value() any { return string(p) }
func (StringPriority) isPriority()  {}

// ParsePriority converts a raw priority value. nil yields a nil Priority;
// anything other than a number or a string is ErrUnexpectedPriority.
func ParsePriority(v any) (Priority, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case float64:
		return NumberPriority(p), nil
	case float32:
		return NumberPriority(p), nil
	case int:
		return NumberPriority(p), nil
	case int64:
		return NumberPriority(p), nil
	case json.Number:
		f, err := p.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedPriority, err)
		}
		return NumberPriority(f), nil
	case string:
		return StringPriority(p), nil
	}
	return nil, fmt.Errorf("%w: got %T", ErrUnexpectedPriority, v)
}
