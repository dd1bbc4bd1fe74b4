package repositories

import (
	"fmt"
	"strings"
)

// CounterErrorCode classifies why a sequence could not advance.
type CounterErrorCode string

const (
	CounterErrorUnknown      CounterErrorCode = "unknown"
	CounterErrorInvalidInput CounterErrorCode = "invalid_input"
	CounterErrorExhausted    CounterErrorCode = "exhausted"
)

// CounterError is returned by CounterRepository implementations. Services switch on Code
// instead of matching messages.
type CounterError struct {
	Code    CounterErrorCode
	Message string
	Err     error
}

func NewCounterError(code CounterErrorCode, message string, err error) *CounterError {
	return &CounterError{Code: code, Message: message, Err: err}
}

func (e *CounterError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("counter %s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("counter %s: %s", e.Code, msg)
}

func (e *CounterError) Unwrap() error { return e.Err }

// CounterState is the stored position of one named sequence.
type CounterState struct {
	Current int64
	Step    int64
	Max     *int64
}

// Advance moves the sequence by step, or by the stored step when step is zero. The step
// used is remembered so later zero-step calls repeat it.
func (s CounterState) Advance(id string, step int64) (CounterState, error) {
	switch {
	case strings.TrimSpace(id) == "":
		return s, NewCounterError(CounterErrorInvalidInput, "counter id is required", nil)
	case step < 0:
		return s, NewCounterError(CounterErrorInvalidInput, fmt.Sprintf("negative step %d", step), nil)
	case step == 0:
		step = max(s.Step, 1)
	}
	next := s.Current + step
	if s.Max != nil && next > *s.Max {
		return s, NewCounterError(CounterErrorExhausted, fmt.Sprintf("%s would pass %d", id, *s.Max), nil)
	}
	s.Current, s.Step = next, step
	return s, nil
}

// Apply merges the non-zero parts of cfg.
func (s CounterState) Apply(cfg CounterConfig) CounterState {
	if cfg.Step > 0 {
		s.Step = cfg.Step
	}
	if cfg.MaxValue != nil {
		limit := *cfg.MaxValue
		s.Max = &limit
	}
	if cfg.InitialValue != nil {
		s.Current = *cfg.InitialValue
	}
	return s
}
