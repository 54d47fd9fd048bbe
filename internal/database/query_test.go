package database

import (
	"context"
	"testing"

	"firebasebindings/internal/binding"
	"firebasebindings/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedScores(fake *testutil.FakeRTDB) {
	fake.Seed("scores", map[string]any{
		"carol": map[string]any{"score": 3.0, "team": "red"},
		"alice": map[string]any{"score": 1.0, "team": "blue"},
		"bob":   map[string]any{"score": 2.0, "team": "red"},
	})
}

func childKeys(s *DataSnapshot) []string {
	var keys []string
	s.ForEach(func(c *DataSnapshot) bool {
		keys = append(keys, c.Key())
		return false
	})
	return keys
}

func TestQuery_OrderByChild(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	seedScores(fake)

	snap, err := d.Ref("scores").Query(OrderByChild("score"), LimitToFirst(3)).Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob", "carol"}, childKeys(snap))
	assert.Equal(t, 3, snap.Size())
	assert.Equal(t, 2.0, snap.Child("bob/score").Val())

	params := fake.LastRequest().URL.Query()
	assert.Equal(t, `"score"`, params.Get("orderBy"))
	assert.Equal(t, "3", params.Get("limitToFirst"))
}

func TestQuery_DefaultsToKeyOrder(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	seedScores(fake)

	snap, err := d.Ref("scores").Query().Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob", "carol"}, childKeys(snap))
	assert.Equal(t, `"$key"`, fake.LastRequest().URL.Query().Get("orderBy"))
}

func TestQuery_OrderByValue(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	fake.Seed("ages", map[string]any{"x": 40.0, "y": 12.0, "z": 25.0})

	snap, err := d.Ref("ages").Query(OrderByValue(), StartAt(10), EndAt(50)).Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"y", "z", "x"}, childKeys(snap))
	params := fake.LastRequest().URL.Query()
	assert.Equal(t, `"$value"`, params.Get("orderBy"))
	assert.Equal(t, "10", params.Get("startAt"))
	assert.Equal(t, "50", params.Get("endAt"))
}

func TestQuery_Filters(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	seedScores(fake)

	_, err := d.Ref("scores").Query(OrderByChild("team"), EqualTo("red"), LimitToLast(1)).Get(context.Background())
	require.NoError(t, err)

	params := fake.LastRequest().URL.Query()
	assert.Equal(t, `"team"`, params.Get("orderBy"))
	assert.Equal(t, `"red"`, params.Get("equalTo"))
	assert.Equal(t, "1", params.Get("limitToLast"))
	assert.Empty(t, params.Get("limitToFirst"))
}

func TestQuery_Empty(t *testing.T) {
	d, _ := newTestDatabase(t, nil)

	snap, err := d.Ref("nothing").Query(OrderByKey()).Get(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.Exists())
	assert.Empty(t, snap.Children())
}

func TestQuery_Rejected(t *testing.T) {
	d, fake := newTestDatabase(t, nil)
	ctx := context.Background()
	ref := d.Ref("scores")

	tests := []struct {
		name        string
		constraints []QueryConstraint
		want        error
	}{
		{"start after", []QueryConstraint{OrderByKey(), StartAfter("b")}, ErrUnsupportedConstraint},
		{"end before", []QueryConstraint{EndBefore("b")}, ErrUnsupportedConstraint},
		{"priority", []QueryConstraint{OrderByPriority()}, ErrUnsupportedConstraint},
		{"two orderings", []QueryConstraint{OrderByKey(), OrderByValue()}, binding.ErrInvalidArgument},
		{"both limits", []QueryConstraint{LimitToFirst(1), LimitToLast(1)}, binding.ErrInvalidArgument},
		{"zero limit", []QueryConstraint{LimitToFirst(0)}, binding.ErrInvalidArgument},
		{"bad child path", []QueryConstraint{OrderByChild("a.b")}, binding.ErrInvalidArgument},
		{"empty child path", []QueryConstraint{OrderByChild("")}, binding.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ref.Query(tt.constraints...).Get(ctx)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Nil(t, fake.LastRequest())
}

func TestQuery_BuildersAndEquality(t *testing.T) {
	d := New(nil, nil, nil)
	base := d.Ref("scores").Query(OrderByChild("score"))
	limited := base.With(LimitToFirst(2))

	assert.Len(t, base.Constraints(), 1)
	assert.Len(t, limited.Constraints(), 2)
	assert.True(t, limited.IsEqual(d.Ref("/scores/").Query(OrderByChild("score"), LimitToFirst(2))))
	assert.False(t, limited.IsEqual(base))
	assert.False(t, limited.IsEqual(nil))
	assert.True(t, limited.Ref().IsEqual(d.Ref("scores")))

	assert.Equal(t, `/scores orderByChild("score") limitToFirst(2)`, limited.String())
	assert.Equal(t, `equalTo("red")`, EqualTo("red").String())
	assert.Equal(t, "orderByKey()", OrderByKey().String())
}

func TestQueryConstraintType(t *testing.T) {
	tests := []struct {
		wire string
		want QueryConstraintType
	}{
		{"endAt", ConstraintEndAt},
		{"endBefore", ConstraintEndBefore},
		{"startAt", ConstraintStartAt},
		{"startAfter", ConstraintStartAfter},
		{"limitToFirst", ConstraintLimitToFirst},
		{"limitToLast", ConstraintLimitToLast},
		{"orderByChild", ConstraintOrderByChild},
		{"orderByKey", ConstraintOrderByKey},
		{"orderByPriority", ConstraintOrderByPriority},
		{"orderByValue", ConstraintOrderByValue},
		{"equalTo", ConstraintEqualTo},
	}
	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			got, err := ParseQueryConstraintType(tt.wire)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wire, got.String())
		})
	}

	_, err := ParseQueryConstraintType("orderByMagic")
	assert.ErrorIs(t, err, binding.ErrUnknownEnumValue)
	assert.Len(t, QueryConstraintTypes(), len(tests))
	assert.Equal(t, "QueryConstraintType(99)", QueryConstraintType(99).String())
}
