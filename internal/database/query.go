package database

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"firebasebindings/internal/binding"

	"firebase.google.com/go/v4/db"
)

// QueryConstraintType names a query constraint.
type QueryConstraintType int

const (
	ConstraintEndAt QueryConstraintType = iota
	ConstraintEndBefore
	ConstraintStartAt
	ConstraintStartAfter
	ConstraintLimitToFirst
	ConstraintLimitToLast
	ConstraintOrderByChild
	ConstraintOrderByKey
	ConstraintOrderByPriority
	ConstraintOrderByValue
	ConstraintEqualTo
)

var queryConstraintTypes = binding.NewEnum("query constraint type",
	binding.Member(ConstraintEndAt, "EndAt"),
	binding.Member(ConstraintEndBefore, "EndBefore"),
	binding.Member(ConstraintStartAt, "StartAt"),
	binding.Member(ConstraintStartAfter, "StartAfter"),
	binding.Member(ConstraintLimitToFirst, "LimitToFirst"),
	binding.Member(ConstraintLimitToLast, "LimitToLast"),
	binding.Member(ConstraintOrderByChild, "OrderByChild"),
	binding.Member(ConstraintOrderByKey, "OrderByKey"),
	binding.Member(ConstraintOrderByPriority, "OrderByPriority"),
	binding.Member(ConstraintOrderByValue, "OrderByValue"),
	binding.Member(ConstraintEqualTo, "EqualTo"),
)

// ParseQueryConstraintType maps a wire value such as "limitToFirst".
func ParseQueryConstraintType(wire string) (QueryConstraintType, error) {
	return queryConstraintTypes.FromCamel(wire)
}

// QueryConstraintTypes lists every constraint type.
func QueryConstraintTypes() []QueryConstraintType {
	return queryConstraintTypes.Values()
}

// String returns the lowerCamel wire value.
func (t QueryConstraintType) String() string {
	name := queryConstraintTypes.Name(t)
	if name == "" {
		return fmt.Sprintf("QueryConstraintType(%d)", int(t))
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

func (t QueryConstraintType) isOrdering() bool {
	switch t {
	case ConstraintOrderByChild, ConstraintOrderByKey, ConstraintOrderByPriority, ConstraintOrderByValue:
		return true
	}
	return false
}

// QueryConstraint is one ordering, filter or limit.
type QueryConstraint struct {
	Type  QueryConstraintType
	Path  string
	Value any
	Limit int
}

// OrderByChild orders by the value at a relative child path.
func OrderByChild(path string) QueryConstraint {
	return QueryConstraint{Type: ConstraintOrderByChild, Path: path}
}

func OrderByKey() QueryConstraint      { return QueryConstraint{Type: ConstraintOrderByKey} }
func OrderByValue() QueryConstraint    { return QueryConstraint{Type: ConstraintOrderByValue} }
func OrderByPriority() QueryConstraint { return QueryConstraint{Type: ConstraintOrderByPriority} }

func StartAt(v any) QueryConstraint    { return QueryConstraint{Type: ConstraintStartAt, Value: v} }
func StartAfter(v any) QueryConstraint { return QueryConstraint{Type: ConstraintStartAfter, Value: v} }
func EndAt(v any) QueryConstraint      { return QueryConstraint{Type: ConstraintEndAt, Value: v} }
func EndBefore(v any) QueryConstraint  { return QueryConstraint{Type: ConstraintEndBefore, Value: v} }
func EqualTo(v any) QueryConstraint    { return QueryConstraint{Type: ConstraintEqualTo, Value: v} }

func LimitToFirst(n int) QueryConstraint {
	return QueryConstraint{Type: ConstraintLimitToFirst, Limit: n}
}
func LimitToLast(n int) QueryConstraint {
	return QueryConstraint{Type: ConstraintLimitToLast, Limit: n}
}

func (c QueryConstraint) String() string {
	switch c.Type {
	case ConstraintOrderByChild:
		return fmt.Sprintf("%s(%q)", c.Type, c.Path)
	case ConstraintOrderByKey, ConstraintOrderByPriority, ConstraintOrderByValue:
		return c.Type.String() + "()"
	case ConstraintLimitToFirst, ConstraintLimitToLast:
		return fmt.Sprintf("%s(%d)", c.Type, c.Limit)
	}
	return fmt.Sprintf("%s(%#v)", c.Type, c.Value)
}

// Query is a sorted and filtered view of the children of a location.
type Query struct {
	ref         *Reference
	constraints []QueryConstraint
}

func (q *Query) Ref() *Reference {
	return q.ref
}

// Constraints returns the constraints in the order they were given.
func (q *Query) Constraints() []QueryConstraint {
	return append([]QueryConstraint(nil), q.constraints...)
}

// With returns a new query with more constraints appended.
func (q *Query) With(constraints ...QueryConstraint) *Query {
	return &Query{ref: q.ref, constraints: append(q.Constraints(), constraints...)}
}

// IsEqual reports whether both queries read the same location with the same constraints.
func (q *Query) IsEqual(other *Query) bool {
	return other != nil && q.ref.IsEqual(other.ref) && reflect.DeepEqual(q.constraints, other.constraints)
}

func (q *Query) String() string {
	parts := make([]string, 0, len(q.constraints)+1)
	parts = append(parts, q.ref.Path())
	for _, c := range q.constraints {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, " ")
}

// Get runs the query. Children of the returned snapshot are in query order.
func (q *Query) Get(ctx context.Context) (*DataSnapshot, error) {
	start := time.Now()

	query, err := q.build()
	if err != nil {
		return nil, q.ref.db.observe("query", q.ref, start, err)
	}

	nodes, err := query.GetOrdered(ctx)
	if err := q.ref.db.observe("query", q.ref, start, err); err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return newSnapshot(q.ref, nil), nil
	}

	value := make(map[string]any, len(nodes))
	children := make([]*DataSnapshot, 0, len(nodes))
	for _, n := range nodes {
		var v any
		if err := n.Unmarshal(&v); err != nil {
			return nil, fmt.Errorf("query %s: %w", q.ref.Path(), err)
		}
		value[n.Key()] = v
		children = append(children, newSnapshot(q.ref.withSegments([]string{n.Key()}), v))
	}

	s := newSnapshot(q.ref, value)
	s.children = children
	return s, nil
}

// build translates the constraints into an admin query. Without an ordering
// constraint the query orders by key.
func (q *Query) build() (*db.Query, error) {
	ref, err := q.ref.admin()
	if err != nil {
		return nil, err
	}

	var ordering *QueryConstraint
	var hasFirst, hasLast bool
	for i, c := range q.constraints {
		switch {
		case c.Type == ConstraintStartAfter, c.Type == ConstraintEndBefore, c.Type == ConstraintOrderByPriority:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedConstraint, c.Type)
		case c.Type.isOrdering():
			if ordering != nil {
				return nil, fmt.Errorf("%w: a query takes one ordering, got %s and %s",
					binding.ErrInvalidArgument, ordering.Type, c.Type)
			}
			ordering = &q.constraints[i]
		case c.Type == ConstraintLimitToFirst || c.Type == ConstraintLimitToLast:
			if c.Limit <= 0 {
				return nil, fmt.Errorf("%w: %s must be positive", binding.ErrInvalidArgument, c.Type)
			}
			hasFirst = hasFirst || c.Type == ConstraintLimitToFirst
			hasLast = hasLast || c.Type == ConstraintLimitToLast
		}
	}
	if hasFirst && hasLast {
		return nil, fmt.Errorf("%w: limitToFirst and limitToLast are exclusive", binding.ErrInvalidArgument)
	}

	var query *db.Query
	switch {
	case ordering == nil || ordering.Type == ConstraintOrderByKey:
		query = ref.OrderByKey()
	case ordering.Type == ConstraintOrderByValue:
		query = ref.OrderByValue()
	default:
		if err := validateKeys(splitPath(ordering.Path)); err != nil || ordering.Path == "" {
			return nil, fmt.Errorf("%w: child path %q", binding.ErrInvalidArgument, ordering.Path)
		}
		query = ref.OrderByChild(ordering.Path)
	}

	for _, c := range q.constraints {
		switch c.Type {
		case ConstraintStartAt:
			query = query.StartAt(c.Value)
		case ConstraintEndAt:
			query = query.EndAt(c.Value)
		case ConstraintEqualTo:
			query = query.EqualTo(c.Value)
		case ConstraintLimitToFirst:
			query = query.LimitToFirst(c.Limit)
		case ConstraintLimitToLast:
			query = query.LimitToLast(c.Limit)
		}
	}
	return query, nil
}
