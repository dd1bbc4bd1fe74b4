package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/payments"
	"github.com/laundryhub/api/internal/repositories"
)

const (
	defaultPaymentTimeout = 30 * time.Second
	// PaymentFailureTimeout is recorded when the processor does not answer in time.
	PaymentFailureTimeout = "timeout"
)

var (
	// ErrPaymentInvalidInput indicates the payment request is malformed.
	ErrPaymentInvalidInput = errors.New("payment: invalid input")
	// ErrPaymentNotFound indicates no payment exists for the transaction id.
	ErrPaymentNotFound = errors.New("payment: not found")
	// ErrPaymentUnavailable indicates the payment store or processor could not be reached.
	ErrPaymentUnavailable = errors.New("payment: unavailable")
)

// paymentGateway is the slice of payments.Manager used by the service.
type paymentGateway interface {
	Methods() []domain.PaymentMethod
	Method(id string) (domain.PaymentMethod, bool)
	Charge(ctx context.Context, req payments.ChargeRequest) (payments.ChargeResult, error)
}

// PaymentServiceDeps bundles collaborators for the payment service.
type PaymentServiceDeps struct {
	Gateway    paymentGateway
	Repository repositories.PaymentRepository
	Timeout    time.Duration
	Clock      func() time.Time
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

type paymentService struct {
	gateway paymentGateway
	repo    repositories.PaymentRepository
	timeout time.Duration
	now     func() time.Time
	logger  func(context.Context, string, map[string]any)
}

// NewPaymentService constructs a PaymentService over a charge gateway.
func NewPaymentService(deps PaymentServiceDeps) (PaymentService, error) {
	if deps.Gateway == nil {
		return nil, errors.New("payment service: gateway is required")
	}
	if deps.Repository == nil {
		return nil, errors.New("payment service: repository is required")
	}
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultPaymentTimeout
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger
	}
	return &paymentService{
		gateway: deps.Gateway,
		repo:    deps.Repository,
		timeout: timeout,
		now:     func() time.Time { return clock().UTC() },
		logger:  logger,
	}, nil
}

func (s *paymentService) Methods() []PaymentMethod {
	return s.gateway.Methods()
}

// Process charges the order amount. A declined or timed-out charge is a failed Payment, not an
// error; errors are reserved for bad input and storage failures.
func (s *paymentService) Process(ctx context.Context, cmd ProcessPaymentCommand) (Payment, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return Payment{}, fmt.Errorf("%w: order id is required", ErrPaymentInvalidInput)
	}
	if cmd.Amount < 0 {
		return Payment{}, fmt.Errorf("%w: amount must be >= 0", ErrPaymentInvalidInput)
	}
	method, ok := s.gateway.Method(cmd.Method)
	if !ok {
		return Payment{}, fmt.Errorf("%w: unsupported method %q", ErrPaymentInvalidInput, cmd.Method)
	}

	now := s.now()
	payment := Payment{
		TransactionID: payments.NewTransactionID(),
		OrderID:       orderID,
		UserID:        strings.TrimSpace(cmd.UserID),
		Amount:        Round2(cmd.Amount),
		Currency:      payments.CurrencyINR,
		Method:        method.ID,
		Status:        domain.PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.save(ctx, payment); err != nil {
		return Payment{}, err
	}

	chargeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.gateway.Charge(chargeCtx, payments.ChargeRequest{
		TransactionID: payment.TransactionID,
		OrderID:       payment.OrderID,
		UserID:        payment.UserID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		Method:        payment.Method,
		OnStatus: func(status domain.PaymentStatus) {
			payment.Status = status
			payment.UpdatedAt = s.now()
			if err := s.save(ctx, payment); err != nil {
				s.logger(ctx, "payment.progress.save.failed", map[string]any{
					"transactionId": payment.TransactionID,
					"error":         err.Error(),
				})
			}
		},
	})
	switch {
	case err == nil:
		payment.Status = result.Status
		payment.FailureReason = result.FailureReason
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		payment.Status = domain.PaymentStatusFailed
		payment.FailureReason = PaymentFailureTimeout
	case errors.Is(err, payments.ErrUnsupportedMethod):
		return Payment{}, fmt.Errorf("%w: %v", ErrPaymentInvalidInput, err)
	case ctx.Err() != nil:
		return Payment{}, ctx.Err()
	default:
		return Payment{}, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}
	payment.UpdatedAt = s.now()

	if err := s.save(ctx, payment); err != nil {
		return Payment{}, err
	}
	s.logger(ctx, "payment.processed", map[string]any{
		"transactionId": payment.TransactionID,
		"orderId":       payment.OrderID,
		"method":        payment.Method,
		"status":        string(payment.Status),
		"reason":        payment.FailureReason,
	})
	return payment, nil
}

func (s *paymentService) GetPayment(ctx context.Context, transactionID string) (Payment, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return Payment{}, fmt.Errorf("%w: transaction id is required", ErrPaymentInvalidInput)
	}
	payment, err := s.repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return Payment{}, s.mapRepositoryError(err)
	}
	return payment, nil
}

func (s *paymentService) ListPayments(ctx context.Context, orderID string) ([]Payment, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrPaymentInvalidInput)
	}
	list, err := s.repo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (s *paymentService) save(ctx context.Context, payment Payment) error {
	if err := s.repo.Save(ctx, payment); err != nil {
		return s.mapRepositoryError(err)
	}
	return nil
}

func (s *paymentService) mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case isRepoNotFound(err):
		return fmt.Errorf("%w: %v", ErrPaymentNotFound, err)
	case isRepoUnavailable(err):
		return fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	default:
		return err
	}
}
