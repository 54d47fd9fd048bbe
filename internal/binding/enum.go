package binding

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"firebasebindings/pkg/strcase"
)

// EnumMember pairs an enumeration value with its TitleCamelCase member name.
type EnumMember[E comparable] struct {
	Value E
	Name  string
}

// Member is shorthand for building an EnumMember.
func Member[E comparable](value E, name string) EnumMember[E] {
	return EnumMember[E]{Value: value, Name: name}
}

// Enum maps Firebase wire strings onto typed enumeration values. Wire strings
// are converted to TitleCamelCase and matched against member names, so
// "child_added" and "childAdded" both resolve to the member "ChildAdded".
type Enum[E comparable] struct {
	kind    string
	members []EnumMember[E]
	byName  map[string]E
	byValue map[E]string
}

// NewEnum builds an Enum. kind names the enumeration in error messages.
func NewEnum[E comparable](kind string, members ...EnumMember[E]) *Enum[E] {
	e := &Enum[E]{
		kind:    kind,
		members: members,
		byName:  make(map[string]E, len(members)),
		byValue: make(map[E]string, len(members)),
	}
	for _, m := range members {
		e.byName[m.Name] = m.Value
		e.byValue[m.Value] = m.Name
	}
	return e
}

// FromSnake maps a snake_case wire value onto a member.
func (e *Enum[E]) FromSnake(wire string) (E, error) {
	var zero E

	name, err := strcase.SnakeToTitleCamel(wire)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", e.kind, err)
	}
	return e.FromName(name)
}

// FromCamel maps a lowerCamel wire value such as "limitToFirst" onto a member.
func (e *Enum[E]) FromCamel(wire string) (E, error) {
	var zero E
	if strings.TrimSpace(wire) == "" {
		return zero, fmt.Errorf("%s: %w", e.kind, strcase.ErrBlankIdentifier)
	}
	r, size := utf8.DecodeRuneInString(wire)
	return e.FromName(string(unicode.ToUpper(r)) + wire[size:])
}

// FromName looks a member up by its exact TitleCamelCase name.
func (e *Enum[E]) FromName(name string) (E, error) {
	if v, ok := e.byName[name]; ok {
		return v, nil
	}
	var zero E
	return zero, fmt.Errorf("%w: %s %q", ErrUnknownEnumValue, e.kind, name)
}

// Name returns the member name of v, or "" if v is not a member.
func (e *Enum[E]) Name(v E) string {
	return e.byValue[v]
}

// Snake returns the snake_case wire form of v.
func (e *Enum[E]) Snake(v E) (string, error) {
	name, ok := e.byValue[v]
	if !ok {
		return "", fmt.Errorf("%w: %s %v", ErrUnknownEnumValue, e.kind, v)
	}
	return strcase.TitleCamelToSnake(name)
}

// Values returns the members in declaration order.
func (e *Enum[E]) Values() []E {
	out := make([]E, len(e.members))
	for i, m := range e.members {
		out[i] = m.Value
	}
	return out
}
