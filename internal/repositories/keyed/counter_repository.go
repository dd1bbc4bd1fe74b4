package keyed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/repositories"
)

type counterRecord struct {
	CurrentValue int64     `json:"currentValue"`
	Step         int64     `json:"step"`
	MaxValue     *int64    `json:"maxValue,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (rec counterRecord) state() repositories.CounterState {
	return repositories.CounterState{Current: rec.CurrentValue, Step: rec.Step, Max: rec.MaxValue}
}

// CounterRepository keeps every named counter in one map under the counters key, so each
// increment is a single store Update.
type CounterRepository struct {
	store keyvalue.Store
	now   func() time.Time
}

var _ repositories.CounterRepository = (*CounterRepository)(nil)

func (r *CounterRepository) Next(ctx context.Context, counterID string, step int64) (int64, error) {
	id := strings.TrimSpace(counterID)
	var next int64
	err := r.mutate(ctx, "counters.next", func(counters map[string]counterRecord) error {
		state, err := counters[id].state().Advance(id, step)
		if err != nil {
			return err
		}
		counters[id] = r.record(state)
		next = state.Current
		return nil
	})
	return next, err
}

func (r *CounterRepository) Configure(ctx context.Context, counterID string, cfg repositories.CounterConfig) error {
	id := strings.TrimSpace(counterID)
	if id == "" {
		return repositories.NewCounterError(repositories.CounterErrorInvalidInput, "counter id is required", nil)
	}
	return r.mutate(ctx, "counters.configure", func(counters map[string]counterRecord) error {
		counters[id] = r.record(counters[id].state().Apply(cfg))
		return nil
	})
}

func (r *CounterRepository) record(state repositories.CounterState) counterRecord {
	return counterRecord{CurrentValue: state.Current, Step: state.Step, MaxValue: state.Max, UpdatedAt: r.now().UTC()}
}

func (r *CounterRepository) mutate(ctx context.Context, op string, fn func(map[string]counterRecord) error) error {
	err := r.store.Update(ctx, keyCounters, func(current []byte) ([]byte, error) {
		counters := make(map[string]counterRecord)
		if len(current) > 0 {
			if err := json.Unmarshal(current, &counters); err != nil {
				return nil, fmt.Errorf("keyed: decode counters: %w", err)
			}
		}
		if err := fn(counters); err != nil {
			return nil, err
		}
		return json.Marshal(counters)
	})
	var counterErr *repositories.CounterError
	if err == nil || errors.As(err, &counterErr) {
		return err
	}
	return wrapStoreError(op, err)
}
