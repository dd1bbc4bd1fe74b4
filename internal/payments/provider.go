package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/laundryhub/api/internal/domain"
)

// CurrencyINR is the only supported currency.
const CurrencyINR = "INR"

var (
	// ErrUnsupportedProvider is returned when the manager cannot locate a provider.
	ErrUnsupportedProvider = errors.New("payments: unsupported provider")
	// ErrUnsupportedMethod is returned for payment method ids outside the catalogue.
	ErrUnsupportedMethod = errors.New("payments: unsupported method")
)

// ChargeRequest describes a single payment attempt.
type ChargeRequest struct {
	TransactionID string
	OrderID       string
	UserID        string
	Amount        float64
	Currency      string
	Method        string
	// OnStatus is invoked for each intermediate status the provider reaches.
	OnStatus func(domain.PaymentStatus)
}

// ChargeResult is the terminal outcome of a charge.
type ChargeResult struct {
	TransactionID string
	Status        domain.PaymentStatus
	FailureReason string
	ProcessedAt   time.Time
}

// Provider defines the contract for payment processors.
type Provider interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// NewTransactionID returns an id of the form TXN-<uuid>.
func NewTransactionID() string {
	return "TXN-" + strings.ToUpper(uuid.NewString())
}

// Manager routes charges to providers by payment method.
type Manager struct {
	providers       map[string]Provider
	defaultProvider string
	methodRoutes    map[string]string
	methods         []domain.PaymentMethod
}

// ManagerOption configures optional behaviour when building a Manager.
type ManagerOption func(*Manager)

// WithDefaultProvider overrides the provider used for methods without explicit routing.
func WithDefaultProvider(provider string) ManagerOption {
	return func(m *Manager) {
		m.defaultProvider = strings.ToLower(strings.TrimSpace(provider))
	}
}

// WithMethodRoutes maps payment method ids to provider keys.
func WithMethodRoutes(routes map[string]string) ManagerOption {
	return func(m *Manager) {
		if len(routes) == 0 {
			return
		}
		if m.methodRoutes == nil {
			m.methodRoutes = make(map[string]string, len(routes))
		}
		for k, v := range routes {
			m.methodRoutes[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
		}
	}
}

// WithMethods replaces the method catalogue.
func WithMethods(methods []domain.PaymentMethod) ManagerOption {
	return func(m *Manager) {
		if len(methods) > 0 {
			m.methods = append([]domain.PaymentMethod(nil), methods...)
		}
	}
}

// NewManager constructs a Manager over the supplied providers.
func NewManager(providers map[string]Provider, opts ...ManagerOption) (*Manager, error) {
	if len(providers) == 0 {
		return nil, errors.New("payments: at least one provider is required")
	}
	copyMap := make(map[string]Provider, len(providers))
	for k, v := range providers {
		key := strings.TrimSpace(strings.ToLower(k))
		if key == "" || v == nil {
			return nil, fmt.Errorf("payments: invalid provider registration for key %q", k)
		}
		copyMap[key] = v
	}
	m := &Manager{providers: copyMap, methods: DefaultMethods()}
	if _, ok := copyMap[SimulatorProviderKey]; ok {
		m.defaultProvider = SimulatorProviderKey
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Methods lists the accepted payment methods.
func (m *Manager) Methods() []domain.PaymentMethod {
	return append([]domain.PaymentMethod(nil), m.methods...)
}

// Method looks up a payment method by id.
func (m *Manager) Method(id string) (domain.PaymentMethod, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, method := range m.methods {
		if method.ID == id {
			return method, true
		}
	}
	return domain.PaymentMethod{}, false
}

// Charge validates the method and delegates to the routed provider.
func (m *Manager) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	method, ok := m.Method(req.Method)
	if !ok {
		return ChargeResult{}, fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}
	_, provider, err := m.resolveProvider(method.ID)
	if err != nil {
		return ChargeResult{}, err
	}
	req.Method = method.ID
	if req.Currency == "" {
		req.Currency = CurrencyINR
	}
	return provider.Charge(ctx, req)
}

func (m *Manager) resolveProvider(method string) (string, Provider, error) {
	if m == nil {
		return "", nil, errors.New("payments: manager is nil")
	}
	if key, ok := m.methodRoutes[method]; ok {
		if p, ok := m.providers[key]; ok {
			return key, p, nil
		}
	}
	if p, ok := m.providers[m.defaultProvider]; ok {
		return m.defaultProvider, p, nil
	}
	if len(m.providers) == 1 {
		for key, p := range m.providers {
			return key, p, nil
		}
	}
	return "", nil, ErrUnsupportedProvider
}
