package binding

import "reflect"

// Field is one named value of a JSON object.
type Field struct {
	Name  string
	Value any
}

// F is shorthand for building a Field.
func F(name string, value any) Field {
	return Field{Name: name, Value: value}
}

// JSONWithoutNulls builds a JSON object from fields, leaving out every field
// whose value is nil (including typed nil pointers, maps and slices). Firebase
// does not always treat an explicit null like an absent field.
func JSONWithoutNulls(fields ...Field) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if isNull(f.Value) {
			continue
		}
		out[f.Name] = f.Value
	}
	return out
}

// Optional returns nil for an empty string so JSONWithoutNulls drops it.
func Optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Deref returns *p, or nil when p is nil.
func Deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
