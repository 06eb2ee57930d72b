package bests

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keysprint/internal/model"
	"github.com/verte-zerg/keysprint/internal/store"
)

func ids(list []model.Result) []string {
	out := make([]string, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}

func stored(t *testing.T, storage store.Storage) []model.Result {
	t.Helper()
	raw, ok, err := storage.Get(context.Background(), store.KeyBests)
	require.NoError(t, err)
	require.True(t, ok)
	var list []model.Result
	require.NoError(t, json.Unmarshal([]byte(raw), &list))
	return list
}

func TestRecordKeepsDescendingOrder(t *testing.T) {
	ctx := context.Background()
	storage := store.NewMemory()
	r := New(storage)

	_, err := r.Record(ctx, &model.Result{ID: "a", WPM: 70})
	require.NoError(t, err)
	list, err := r.Record(ctx, &model.Result{ID: "b", WPM: 65})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, ids(list))
	assert.Equal(t, list, stored(t, storage))
}

func TestRecordBreaksTiesByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	r := New(store.NewMemory())

	for _, res := range []model.Result{{ID: "A", WPM: 80}, {ID: "B", WPM: 90}, {ID: "C", WPM: 80}} {
		res := res
		_, err := r.Record(ctx, &res)
		require.NoError(t, err)
	}

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, ids(list))
}

func TestRecordCapsAtMaxEntries(t *testing.T) {
	ctx := context.Background()
	storage := store.NewMemory()
	r := New(storage)
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 40; i++ {
		res := model.Result{ID: string(rune('a' + i%26)), WPM: float64(rnd.Intn(120))}
		list, err := r.Record(ctx, &res)
		require.NoError(t, err)
		persisted := stored(t, storage)
		require.LessOrEqual(t, len(persisted), MaxEntries)
		assert.Equal(t, list, persisted)
		for j := 1; j < len(persisted); j++ {
			require.GreaterOrEqual(t, persisted[j-1].WPM, persisted[j].WPM)
		}
	}
}

func TestRecordDropsSlowResultWhenFull(t *testing.T) {
	ctx := context.Background()
	storage := store.NewMemory()
	r := New(storage)
	for i := 0; i < MaxEntries; i++ {
		_, err := r.Record(ctx, &model.Result{ID: string(rune('a' + i)), WPM: float64(70 + i)})
		require.NoError(t, err)
	}
	before := stored(t, storage)

	after, err := r.Record(ctx, &model.Result{ID: "slow", WPM: 10})
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Equal(t, before, stored(t, storage))
}

func TestRecordNilIsReadOnly(t *testing.T) {
	ctx := context.Background()
	storage := store.NewMemory()
	r := New(storage)

	list, err := r.Record(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, ok, err := storage.Get(ctx, store.KeyBests)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.Record(ctx, &model.Result{ID: "x", WPM: 50})
	require.NoError(t, err)
	list, err = r.Record(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, ids(list))
}

func TestRecordRecoversFromCorruptedList(t *testing.T) {
	ctx := context.Background()
	storage := store.NewMemory()
	require.NoError(t, storage.Set(ctx, store.KeyBests, "{not a list"))
	r := New(storage)

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = r.Record(ctx, &model.Result{ID: "fresh", WPM: 55})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids(list))
}

func TestQualifies(t *testing.T) {
	var list []model.Result
	assert.True(t, Qualifies(list, 1))
	for i := 0; i < MaxEntries; i++ {
		list = Merge(list, model.Result{WPM: float64(50 + i)})
	}
	assert.False(t, Qualifies(list, 50))
	assert.True(t, Qualifies(list, 50.5))
}

func TestVisibilityToggle(t *testing.T) {
	r := New(store.NewMemory())
	assert.False(t, r.Visible())
	assert.True(t, r.ToggleVisible())
	assert.True(t, r.Visible())
	r.SetVisible(false)
	assert.False(t, r.Visible())

	fresh := New(store.NewMemory())
	assert.False(t, fresh.Visible())
}
