package repositories

import (
	"errors"
	"testing"
)

func TestCounterStateAdvance(t *testing.T) {
	state, err := CounterState{}.Advance("orders:20250120", 0)
	if err != nil || state.Current != 1 || state.Step != 1 {
		t.Fatalf("unexpected first advance %+v (%v)", state, err)
	}

	state = state.Apply(CounterConfig{Step: 5})
	if state, err = state.Advance("orders:20250120", 0); err != nil || state.Current != 6 {
		t.Fatalf("expected stored step to apply, got %+v (%v)", state, err)
	}

	limit := int64(7)
	state = state.Apply(CounterConfig{MaxValue: &limit})
	_, err = state.Advance("orders:20250120", 0)
	var counterErr *CounterError
	if !errors.As(err, &counterErr) || counterErr.Code != CounterErrorExhausted {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	if state.Current != 6 {
		t.Fatalf("failed advance must not move the counter, got %d", state.Current)
	}
}

func TestCounterStateRejectsBadInput(t *testing.T) {
	for _, tc := range []struct {
		name string
		id   string
		step int64
	}{
		{name: "blank id", id: "  ", step: 1},
		{name: "negative step", id: "orders:20250120", step: -1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CounterState{}.Advance(tc.id, tc.step)
			var counterErr *CounterError
			if !errors.As(err, &counterErr) || counterErr.Code != CounterErrorInvalidInput {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}
