package database

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"firebasebindings/internal/binding"
	"firebasebindings/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReference_Navigation(t *testing.T) {
	d := New(nil, nil, nil)

	tests := []struct {
		name     string
		ref      *Reference
		wantPath string
		wantKey  string
	}{
		{"root", d.Ref(""), "/", ""},
		{"slash root", d.Ref("/"), "/", ""},
		{"nested", d.Ref("users/alice"), "/users/alice", "alice"},
		{"extra slashes", d.Ref("//users///alice/"), "/users/alice", "alice"},
		{"child", d.Ref("users").Child("alice/settings"), "/users/alice/settings", "settings"},
		{"child key encodes", d.Ref("users").ChildKey("a.b@c.com"), "/users/a%2Eb@c%2Ecom", "a%2Eb@c%2Ecom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPath, tt.ref.Path())
			assert.Equal(t, tt.wantPath, tt.ref.String())
			assert.Equal(t, tt.wantKey, tt.ref.Key())
		})
	}

	ref := d.Ref("users/alice/settings")
	assert.Equal(t, "/users/alice", ref.Parent().Path())
	assert.Equal(t, "/", ref.Parent().Parent().Parent().Path())
	assert.Nil(t, ref.Parent().Parent().Parent().Parent())
	assert.Equal(t, "/", ref.Root().Path())
	assert.True(t, ref.IsEqual(d.Ref("/users/alice/settings/")))
	assert.False(t, ref.IsEqual(ref.Parent()))
	assert.False(t, ref.IsEqual(nil))

	// Parent must not alias the child's segments.
	parent := ref.Parent()
	_ = parent.Child("other")
	assert.Equal(t, "/users/alice/settings", ref.Path())

	assert.Equal(t, "a.b@c.com", d.Ref("users").ChildKey("a.b@c.com").DecodedKey())
}

func TestReference_SetAndGet(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	ctx := context.Background()

	ref := d.Ref("users/alice")
	require.NoError(t, ref.Set(ctx, map[string]any{"name": "Alice", "age": 30}))
	assert.Equal(t, map[string]any{"name": "Alice", "age": 30.0}, fake.Value("users/alice"))

	req := fake.LastRequest()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "silent", req.URL.Query().Get("print"))

	snap, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Exists())
	assert.Equal(t, "alice", snap.Key())
	assert.Equal(t, "Alice", snap.Child("name").Val())

	var user struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	require.NoError(t, snap.Value(&user))
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, 30, user.Age)
}

func TestReference_GetMissing(t *testing.T) {
	d, _ := newTestDatabase(t, nil)

	snap, err := d.Ref("nothing/here").Get(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Exists())
	assert.Nil(t, snap.Val())
	assert.Equal(t, 0, snap.Size())
}

func TestReference_Update(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	ctx := context.Background()
	fake.Seed("users/alice", map[string]any{"name": "Alice", "age": 30.0})

	err := d.Ref("users/alice").Update(ctx, map[string]any{
		"age":          31,
		"address/city": "Paris",
		"address/zip":  "75001",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":    "Alice",
		"age":     31.0,
		"address": map[string]any{"city": "Paris", "zip": "75001"},
	}, fake.Value("users/alice"))
	assert.Equal(t, http.MethodPatch, fake.LastRequest().Method)
}

func TestReference_UpdateEmptyFails(t *testing.T) {
	d, _ := newTestDatabase(t, nil)

	err := d.Ref("users/alice").Update(context.Background(), map[string]any{})
	assert.Error(t, err)
}

func TestReference_Remove(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	fake.Seed("users/alice", "x")
	fake.Seed("users/bob", "y")

	require.NoError(t, d.Ref("users/alice").Remove(context.Background()))
	assert.Nil(t, fake.Value("users/alice"))
	assert.Equal(t, "y", fake.Value("users/bob"))
	assert.Equal(t, http.MethodDelete, fake.LastRequest().Method)
}

func TestReference_SetNilRemoves(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	fake.Seed("k", "v")

	require.NoError(t, d.Ref("k").Set(context.Background(), nil))
	assert.Nil(t, fake.Value("k"))
}

func TestReference_Push(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	ctx := context.Background()

	messages := d.Ref("messages")
	first, err := messages.Push(ctx, map[string]any{"text": "hi"})
	require.NoError(t, err)
	second, err := messages.Push(ctx, map[string]any{"text": "there"})
	require.NoError(t, err)

	assert.Equal(t, "/messages/-Npush001", first.Path())
	assert.Equal(t, "-Npush002", second.Key())
	assert.True(t, first.Parent().IsEqual(messages))
	assert.Equal(t, map[string]any{"text": "there"}, fake.Value("messages/-Npush002"))
}

func TestReference_SetWithPriority(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	ctx := context.Background()

	ref := d.Ref("tasks/t1")
	require.NoError(t, ref.SetWithPriority(ctx, "write tests", NumberPriority(2)))
	assert.Equal(t, map[string]any{".value": "write tests", ".priority": 2.0}, fake.Value("tasks/t1"))

	snap, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "export", fake.LastRequest().URL.Query().Get("format"))
	assert.Equal(t, "write tests", snap.Val())
	p, err := snap.Priority()
	require.NoError(t, err)
	assert.Equal(t, NumberPriority(2), p)

	require.NoError(t, ref.SetWithPriority(ctx, "plain", nil))
	assert.Equal(t, "plain", fake.Value("tasks/t1"))
}

func TestReference_GetKeepsNestedPriorities(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	ctx := context.Background()

	fake.Seed("tasks", map[string]any{
		"t1": map[string]any{".value": "write tests", ".priority": 2.0},
		"t2": map[string]any{"title": "ship", ".priority": "high"},
	})

	snap, err := d.Ref("tasks").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"t1": "write tests",
		"t2": map[string]any{"title": "ship"},
	}, snap.Val())
	assert.Equal(t, 2, snap.Size())

	p, err := snap.Child("t1").Priority()
	require.NoError(t, err)
	assert.Equal(t, NumberPriority(2), p)

	t2 := snap.Children()[1]
	p, err = t2.Priority()
	require.NoError(t, err)
	assert.Equal(t, StringPriority("high"), p)
	assert.Equal(t, "ship", t2.Child("title").Val())
}

func TestReference_GetWithoutExporterHasNoPriority(t *testing.T) {
	d, _, _ := newAdminOnlyDatabase(t, nil)
	ctx := context.Background()

	ref := d.Ref("tasks/t1")
	require.NoError(t, ref.SetWithPriority(ctx, "write tests", NumberPriority(2)))

	snap, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "write tests", snap.Val())
	p, err := snap.Priority()
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestReference_EscapedKeysRoundTrip(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	ctx := context.Background()

	ref := d.Ref("emails").ChildKey("bob.smith@example.com")
	require.NoError(t, ref.Set(ctx, true))
	assert.Equal(t, true, fake.Value("emails/bob%2Esmith@example%2Ecom"))

	ref = d.Ref("odd").Child("100%?sure")
	require.NoError(t, ref.Set(ctx, "yes"))
	assert.Equal(t, "yes", fake.Value("odd/100%?sure"))

	snap, err := ref.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "yes", snap.Val())
}

func TestReference_InvalidKey(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	ctx := context.Background()

	for _, path := range []string{"a.b", "a/$b", "a/#", "x[0]"} {
		t.Run(path, func(t *testing.T) {
			err := d.Ref(path).Set(ctx, 1)
			assert.ErrorIs(t, err, ErrInvalidKey)
			assert.ErrorIs(t, err, binding.ErrInvalidArgument)

			_, err = d.Ref(path).Get(ctx)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
	assert.Nil(t, fake.LastRequest())
}

func TestReference_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, binding.ErrUnauthorized},
		{http.StatusForbidden, binding.ErrUnauthorized},
		{http.StatusNotFound, binding.ErrNotFound},
		{http.StatusBadRequest, binding.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			d, fake := newTestDatabase(t, nil)
			fake.FailWith(tt.status)

			_, err := d.Ref("secret").Get(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "get /secret")
		})
	}
}

func TestReference_Metrics(t *testing.T) {
	metrics := &testutil.MockMetrics{}
	metrics.On("ObserveOperationDuration", "database", mock.Anything, mock.Anything).Return()
	metrics.On("IncOperation", "database", "set", "success").Return().Once()
	metrics.On("IncOperation", "database", "get", "failure").Return().Once()

	d, fake := newTestDatabase(t, metrics)
	ctx := context.Background()

	require.NoError(t, d.Ref("a").Set(ctx, 1))
	fake.FailWith(http.StatusUnauthorized)
	_, err := d.Ref("a").Get(ctx)
	require.Error(t, err)

	metrics.AssertExpectations(t)
}

func TestMapError_PassesThroughLocalErrors(t *testing.T) {
	for _, err := range []error{ErrInvalidKey, ErrUnsupportedConstraint, ErrUnexpectedPriority} {
		assert.Same(t, err, mapError(err))
	}
	other := errors.New("boom")
	assert.Same(t, other, mapError(other))
}
