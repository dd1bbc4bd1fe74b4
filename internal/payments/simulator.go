package payments

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	domain "github.com/laundryhub/api/internal/domain"
)

const (
	// SimulatorProviderKey registers the simulator with a Manager.
	SimulatorProviderKey = "simulator"

	defaultAcceptDelay  = 1000 * time.Millisecond
	defaultProcessDelay = 1500 * time.Millisecond
	defaultSuccessRate  = 0.95

	// FailureReasonDeclined is reported when the simulated processor declines.
	FailureReasonDeclined = "declined"

	meterName = "github.com/laundryhub/api/internal/payments"
)

// SimulatorOptions tunes the simulator. Zero values use the storefront defaults.
type SimulatorOptions struct {
	AcceptDelay  time.Duration
	ProcessDelay time.Duration
	SuccessRate  float64
	Rand         func() float64
	Sleep        func(ctx context.Context, d time.Duration) error
	Clock        func() time.Time
	Meter        metric.Meter
}

// Simulator fakes a processor: it accepts, processes, then completes or declines at random.
type Simulator struct {
	acceptDelay  time.Duration
	processDelay time.Duration
	successRate  float64
	random       func() float64
	sleep        func(ctx context.Context, d time.Duration) error
	now          func() time.Time
	outcomes     metric.Int64Counter
}

var _ Provider = (*Simulator)(nil)

// NewSimulator constructs a Simulator.
func NewSimulator(opts SimulatorOptions) *Simulator {
	s := &Simulator{
		acceptDelay:  opts.AcceptDelay,
		processDelay: opts.ProcessDelay,
		successRate:  opts.SuccessRate,
		random:       opts.Rand,
		sleep:        opts.Sleep,
		now:          opts.Clock,
	}
	if s.acceptDelay <= 0 {
		s.acceptDelay = defaultAcceptDelay
	}
	if s.processDelay <= 0 {
		s.processDelay = defaultProcessDelay
	}
	if s.successRate <= 0 || s.successRate > 1 {
		s.successRate = defaultSuccessRate
	}
	if s.random == nil {
		s.random = lockedRand()
	}
	if s.sleep == nil {
		s.sleep = sleepContext
	}
	if s.now == nil {
		s.now = time.Now
	}

	meter := opts.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(meterName)
	}
	counter, err := meter.Int64Counter(
		"payments.simulator.outcomes",
		metric.WithDescription("Count of simulated payment outcomes by status and method"),
	)
	if err == nil {
		s.outcomes = counter
	}
	return s
}

// Charge runs both phases, reporting processing through req.OnStatus. A cancelled context
// aborts the charge and returns the context error.
func (s *Simulator) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	txnID := strings.TrimSpace(req.TransactionID)
	if txnID == "" {
		txnID = NewTransactionID()
	}
	if err := s.sleep(ctx, s.acceptDelay); err != nil {
		return ChargeResult{TransactionID: txnID}, err
	}
	if req.OnStatus != nil {
		req.OnStatus(domain.PaymentStatusProcessing)
	}
	if err := s.sleep(ctx, s.processDelay); err != nil {
		return ChargeResult{TransactionID: txnID}, err
	}

	result := ChargeResult{TransactionID: txnID, ProcessedAt: s.now().UTC()}
	// Failure probability is 1 - successRate.
	if s.random() > 1-s.successRate {
		result.Status = domain.PaymentStatusCompleted
	} else {
		result.Status = domain.PaymentStatusFailed
		result.FailureReason = FailureReasonDeclined
	}
	s.record(ctx, req.Method, result.Status)
	return result, nil
}

func (s *Simulator) record(ctx context.Context, method string, status domain.PaymentStatus) {
	if s.outcomes == nil {
		return
	}
	s.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("status", string(status)),
	))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func lockedRand() func() float64 {
	var mu sync.Mutex
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return src.Float64()
	}
}
