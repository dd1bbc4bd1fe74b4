package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	pfirestore "github.com/laundryhub/api/internal/platform/firestore"
	"github.com/laundryhub/api/internal/repositories"
)

const countersCollection = "counters"

type counterDocument struct {
	CurrentValue int64     `firestore:"currentValue"`
	Step         int64     `firestore:"step"`
	MaxValue     *int64    `firestore:"maxValue,omitempty"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

// CounterRepository stores one document per counter id, e.g. counters/orders:20250120.
type CounterRepository struct {
	provider *pfirestore.Provider
	docs     *pfirestore.BaseRepository[counterDocument]
	now      func() time.Time
}

var _ repositories.CounterRepository = (*CounterRepository)(nil)

func NewCounterRepository(provider *pfirestore.Provider) (*CounterRepository, error) {
	if provider == nil {
		return nil, errors.New("counter repository requires firestore provider")
	}
	return &CounterRepository{
		provider: provider,
		docs:     pfirestore.NewBaseRepository[counterDocument](provider, countersCollection),
		now:      time.Now,
	}, nil
}

// Next reads and rewrites the counter in one transaction; concurrent callers are serialised by
// Firestore's optimistic retry.
func (r *CounterRepository) Next(ctx context.Context, counterID string, step int64) (int64, error) {
	id := strings.TrimSpace(counterID)
	var next int64
	err := r.update(ctx, id, func(state repositories.CounterState) (repositories.CounterState, error) {
		advanced, err := state.Advance(id, step)
		next = advanced.Current
		return advanced, err
	})
	return next, err
}

func (r *CounterRepository) Configure(ctx context.Context, counterID string, cfg repositories.CounterConfig) error {
	id := strings.TrimSpace(counterID)
	if id == "" {
		return repositories.NewCounterError(repositories.CounterErrorInvalidInput, "counter id is required", nil)
	}
	return r.update(ctx, id, func(state repositories.CounterState) (repositories.CounterState, error) {
		return state.Apply(cfg), nil
	})
}

func (r *CounterRepository) update(ctx context.Context, id string, fn func(repositories.CounterState) (repositories.CounterState, error)) error {
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, _ *firestore.Transaction) error {
		var doc counterDocument
		if id != "" {
			existing, err := r.docs.Get(ctx, id)
			switch {
			case err == nil:
				doc = existing.Data
			case !repositories.IsNotFound(err):
				return err
			}
		}
		state, err := fn(repositories.CounterState{Current: doc.CurrentValue, Step: doc.Step, Max: doc.MaxValue})
		if err != nil {
			return err
		}
		return r.docs.Set(ctx, id, counterDocument{
			CurrentValue: state.Current,
			Step:         state.Step,
			MaxValue:     state.Max,
			UpdatedAt:    r.now().UTC(),
		})
	})
	var counterErr *repositories.CounterError
	if errors.As(err, &counterErr) {
		return counterErr
	}
	return err
}
