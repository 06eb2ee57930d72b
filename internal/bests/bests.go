// Package bests keeps the ranked list of personal-best typing results.
package bests

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/verte-zerg/keysprint/internal/logging"
	"github.com/verte-zerg/keysprint/internal/model"
	"github.com/verte-zerg/keysprint/internal/store"
)

// MaxEntries is the number of results kept.
const MaxEntries = 10

// Ranking maintains the stored top results, ordered by WPM descending.
type Ranking struct {
	mu      sync.Mutex
	storage store.Storage
	key     string
	log     *zap.Logger
	visible bool
}

// Option configures a Ranking.
type Option func(*Ranking)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Ranking) {
		r.log = logging.OrNop(l)
	}
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(r *Ranking) {
		r.key = key
	}
}

// New returns a Ranking over storage.
func New(storage store.Storage, opts ...Option) *Ranking {
	r := &Ranking{
		storage: storage,
		key:     store.KeyBests,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record merges result into the stored list and returns the updated list.
// A nil result returns the stored list unchanged.
func (r *Ranking) Record(ctx context.Context, result *model.Result) ([]model.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return list, nil
	}
	list = Merge(list, *result)
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("failed to encode personal bests: %w", err)
	}
	if err := r.storage.Set(ctx, r.key, string(raw)); err != nil {
		return nil, fmt.Errorf("failed to save personal bests: %w", err)
	}
	return list, nil
}

// List returns the stored list.
func (r *Ranking) List(ctx context.Context) ([]model.Result, error) {
	return r.Record(ctx, nil)
}

// Merge appends result to list, stable-sorts by WPM descending and keeps the
// first MaxEntries entries. Equal WPM keeps insertion order.
func Merge(list []model.Result, result model.Result) []model.Result {
	out := make([]model.Result, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, result)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WPM > out[j].WPM
	})
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}

// Qualifies reports whether a result with wpm would enter list.
func Qualifies(list []model.Result, wpm float64) bool {
	if len(list) < MaxEntries {
		return true
	}
	return wpm > list[len(list)-1].WPM
}

// Visible reports whether the list should be shown. Not persisted.
func (r *Ranking) Visible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible
}

// SetVisible sets list visibility.
func (r *Ranking) SetVisible(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = v
}

// ToggleVisible flips visibility and returns the new value.
func (r *Ranking) ToggleVisible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = !r.visible
	return r.visible
}

func (r *Ranking) load(ctx context.Context) ([]model.Result, error) {
	raw, ok, err := r.storage.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read personal bests: %w", err)
	}
	if !ok {
		return []model.Result{}, nil
	}
	var list []model.Result
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		r.log.Warn("ignoring corrupted personal bests", zap.String("key", r.key), zap.Error(err))
		return []model.Result{}, nil
	}
	if list == nil {
		list = []model.Result{}
	}
	return list, nil
}
