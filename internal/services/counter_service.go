package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/laundryhub/api/internal/repositories"
)

var (
	// ErrCounterInvalidInput reports a missing scope or name, or generation options out of range.
	ErrCounterInvalidInput = errors.New("counter: invalid input")
	// ErrCounterExhausted reports that the next value would pass the counter's configured maximum.
	ErrCounterExhausted    = errors.New("counter: exhausted")
)

const (
	orderCounterScope = "orders"
	orderIDPadLength  = 3
)

// CounterServiceDeps wires the counter service. Repository is required; Clock defaults to
// time.Now and Location to UTC.
type CounterServiceDeps struct {
	Repository repositories.CounterRepository
	Clock      func() time.Time
	// Location decides which calendar day an order belongs to.
	Location *time.Location
}

type counterService struct {
	repo     repositories.CounterRepository
	clock    func() time.Time
	location *time.Location

	mu         sync.Mutex
	configured map[string]string
}

// NewCounterService builds the service that hands out scoped sequence values and daily order ids.
func NewCounterService(deps CounterServiceDeps) (CounterService, error) {
	if deps.Repository == nil {
		return nil, errors.New("counter service: repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	return &counterService{
		repo:       deps.Repository,
		clock:      clock,
		location:   location,
		configured: make(map[string]string),
	}, nil
}

// Next advances scope:name and renders the value with the optional prefix and zero padding.
// Values wider than PadLength are never truncated.
func (s *counterService) Next(ctx context.Context, scope, name string, opts CounterGenerationOptions) (CounterValue, error) {
	scope, name = strings.TrimSpace(scope), strings.TrimSpace(name)
	if scope == "" || name == "" {
		return CounterValue{}, fmt.Errorf("%w: scope and name are required", ErrCounterInvalidInput)
	}
	id := scope + ":" + name
	if err := s.configure(ctx, id, opts); err != nil {
		return CounterValue{}, mapCounterError(err)
	}

	value, err := s.repo.Next(ctx, id, opts.Step)
	if err != nil {
		return CounterValue{}, mapCounterError(err)
	}

	digits := strconv.FormatInt(value, 10)
	if pad := opts.PadLength - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return CounterValue{Value: value, Formatted: opts.Prefix + digits}, nil
}

// NextOrderID returns ORD-YYYYMMDD-NNN where NNN counts orders of the same business day.
func (s *counterService) NextOrderID(ctx context.Context, now time.Time) (string, error) {
	if now.IsZero() {
		now = s.clock()
	}
	day := now.In(s.location).Format("20060102")
	value, err := s.Next(ctx, orderCounterScope, day, CounterGenerationOptions{
		Step:      1,
		Prefix:    "ORD-" + day + "-",
		PadLength: orderIDPadLength,
	})
	if err != nil {
		return "", err
	}
	return value.Formatted, nil
}

// configure pushes non-default bounds to the repository once per counter and option set.
func (s *counterService) configure(ctx context.Context, id string, opts CounterGenerationOptions) error {
	if opts.Step <= 1 && opts.MaxValue == nil && opts.InitialValue == nil {
		return nil
	}
	signature := fmt.Sprintf("%d/%s/%s", opts.Step, optionalInt(opts.MaxValue), optionalInt(opts.InitialValue))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configured[id] == signature {
		return nil
	}
	cfg := repositories.CounterConfig{Step: opts.Step, MaxValue: opts.MaxValue, InitialValue: opts.InitialValue}
	if err := s.repo.Configure(ctx, id, cfg); err != nil {
		return err
	}
	s.configured[id] = signature
	return nil
}

func optionalInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func mapCounterError(err error) error {
	var counterErr *repositories.CounterError
	if !errors.As(err, &counterErr) {
		return err
	}
	switch counterErr.Code {
	case repositories.CounterErrorInvalidInput:
		return fmt.Errorf("%w: %s", ErrCounterInvalidInput, counterErr.Message)
	case repositories.CounterErrorExhausted:
		return fmt.Errorf("%w: %s", ErrCounterExhausted, counterErr.Message)
	default:
		return err
	}
}
