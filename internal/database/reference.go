package database

import (
	"context"
	"slices"
	"strings"
	"time"

	"firebasebindings/pkg/keycodec"

	"firebase.google.com/go/v4/db"
)

// Reference points at one location in the database.
type Reference struct {
	db   *Database
	segs []string
}

// Key is the last path segment as stored in the database, or "" at the root.
func (r *Reference) Key() string {
	if len(r.segs) == 0 {
		return ""
	}
	return r.segs[len(r.segs)-1]
}

// DecodedKey reverses keycodec.Encode on Key.
func (r *Reference) DecodedKey() string {
	return keycodec.Decode(r.Key())
}

// Path is the absolute slash-delimited path, "/" at the root.
func (r *Reference) Path() string {
	return "/" + strings.Join(r.segs, "/")
}

func (r *Reference) String() string {
	return r.Path()
}

// Parent returns nil at the root.
func (r *Reference) Parent() *Reference {
	if len(r.segs) == 0 {
		return nil
	}
	return &Reference{db: r.db, segs: slices.Clip(r.segs[:len(r.segs)-1])}
}

func (r *Reference) Root() *Reference {
	return &Reference{db: r.db}
}

// Child returns the location at the relative path below r.
func (r *Reference) Child(path string) *Reference {
	return r.withSegments(splitPath(path))
}

// ChildKey descends one level per key, encoding each key first so that any
// string can be used.
func (r *Reference) ChildKey(keys ...string) *Reference {
	encoded := make([]string, 0, len(keys))
	for _, k := range keys {
		encoded = append(encoded, keycodec.Encode(k))
	}
	return r.withSegments(encoded)
}

// IsEqual reports whether both references point at the same location.
func (r *Reference) IsEqual(other *Reference) bool {
	return other != nil && slices.Equal(r.segs, other.segs)
}

func (r *Reference) withSegments(more []string) *Reference {
	segs := make([]string, 0, len(r.segs)+len(more))
	segs = append(segs, r.segs...)
	segs = append(segs, more...)
	return &Reference{db: r.db, segs: segs}
}

func (r *Reference) admin() (*db.Ref, error) {
	if err := validateKeys(r.segs); err != nil {
		return nil, err
	}
	return r.db.client.NewRef(escapedPath(r.segs)), nil
}

// Get reads the current value at r, with priorities when the database has an
// Exporter.
func (r *Reference) Get(ctx context.Context) (*DataSnapshot, error) {
	start := time.Now()

	ref, err := r.admin()
	if err != nil {
		return nil, r.db.observe("get", r, start, err)
	}

	var value any
	if r.db.exporter != nil {
		value, err = r.db.exporter.Get(ctx, r.segs)
	} else {
		err = ref.Get(ctx, &value)
	}
	if err := r.db.observe("get", r, start, err); err != nil {
		return nil, err
	}
	return newSnapshot(r, value), nil
}

// Set replaces the value at r. A nil value removes it.
func (r *Reference) Set(ctx context.Context, value any) error {
	start := time.Now()

	ref, err := r.admin()
	if err == nil {
		err = ref.Set(ctx, value)
	}
	return r.db.observe("set", r, start, err)
}

// SetWithPriority writes value together with its priority.
func (r *Reference) SetWithPriority(ctx context.Context, value any, priority Priority) error {
	if priority == nil {
		return r.Set(ctx, value)
	}
	return r.Set(ctx, map[string]any{
		".value":    value,
		".priority": priority.Value(),
	})
}

// Update writes each entry of values below r without touching siblings.
// Keys may be relative paths.
func (r *Reference) Update(ctx context.Context, values map[string]any) error {
	start := time.Now()

	ref, err := r.admin()
	if err == nil {
		err = ref.Update(ctx, values)
	}
	return r.db.observe("update", r, start, err)
}

// Remove deletes the value at r and everything below it.
func (r *Reference) Remove(ctx context.Context) error {
	start := time.Now()

	ref, err := r.admin()
	if err == nil {
		err = ref.Delete(ctx)
	}
	return r.db.observe("remove", r, start, err)
}

// Push stores value under a new server-generated chronological key and
// returns a reference to it.
func (r *Reference) Push(ctx context.Context, value any) (*Reference, error) {
	start := time.Now()

	ref, err := r.admin()
	if err != nil {
		return nil, r.db.observe("push", r, start, err)
	}

	pushed, err := ref.Push(ctx, value)
	if err := r.db.observe("push", r, start, err); err != nil {
		return nil, err
	}
	return r.withSegments([]string{pushed.Key}), nil
}

// Query starts a query at r with the given constraints.
func (r *Reference) Query(constraints ...QueryConstraint) *Query {
	return &Query{ref: r, constraints: slices.Clone(constraints)}
}
