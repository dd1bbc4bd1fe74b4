package repositories

import (
	"context"

	domain "github.com/laundryhub/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	GarmentTypes() GarmentTypeRepository
	Services() ServiceRepository
	Carts() CartRepository
	Offers() OfferRepository
	Orders() OrderRepository
	Notifications() NotificationRepository
	Users() UserRepository
	Payments() PaymentRepository
	Counters() CounterRepository
	UnitOfWork
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork allows grouping repository operations in a transactional boundary when supported.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// GarmentTypeRepository stores garment types and their price tables.
type GarmentTypeRepository interface {
	List(ctx context.Context) ([]domain.GarmentType, error)
	FindByID(ctx context.Context, id string) (domain.GarmentType, error)
	Upsert(ctx context.Context, garment domain.GarmentType) error
}

// ServiceRepository stores service definitions.
type ServiceRepository interface {
	List(ctx context.Context) ([]domain.Service, error)
	FindByID(ctx context.Context, id string) (domain.Service, error)
	Upsert(ctx context.Context, service domain.Service) error
}

// CartRepository persists one cart per user. A missing cart is reported as not found.
type CartRepository interface {
	Get(ctx context.Context, userID string) (domain.Cart, error)
	Save(ctx context.Context, cart domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

// OfferRepository stores offers and their redemption counters.
type OfferRepository interface {
	List(ctx context.Context) ([]domain.Offer, error)
	FindByID(ctx context.Context, id string) (domain.Offer, error)
	Insert(ctx context.Context, offer domain.Offer) error
	Update(ctx context.Context, offer domain.Offer) error
	Delete(ctx context.Context, id string) error
	// IncrementUsage atomically bumps usedCount, failing with ErrUsageLimitReached when a limit is hit.
	IncrementUsage(ctx context.Context, id string) (domain.Offer, error)
}

// OrderRepository persists order snapshots.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	Update(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, filter OrderListFilter) ([]domain.Order, error)
}

// NotificationRepository is the append-only notification log.
type NotificationRepository interface {
	Insert(ctx context.Context, notification domain.Notification) error
	FindByID(ctx context.Context, id string) (domain.Notification, error)
	ListVisibleTo(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// UserRepository stores profile records owned by the identity provider.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (domain.UserProfile, error)
	List(ctx context.Context) ([]domain.UserProfile, error)
	Upsert(ctx context.Context, profile domain.UserProfile) error
}

// PaymentRepository stores simulated payment records keyed by transaction id.
type PaymentRepository interface {
	Save(ctx context.Context, payment domain.Payment) error
	FindByTransactionID(ctx context.Context, transactionID string) (domain.Payment, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.Payment, error)
}

// CounterRepository generates sequential numbers for named counters.
type CounterRepository interface {
	Next(ctx context.Context, counterID string, step int64) (int64, error)
	Configure(ctx context.Context, counterID string, cfg CounterConfig) error
}

// HealthRepository exposes status of downstream dependencies for health checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}

// OrderListFilter narrows order listings. Empty fields match everything.
type OrderListFilter struct {
	UserID string
	Status []domain.OrderStatus
}

// Matches reports whether the order satisfies the filter.
func (f OrderListFilter) Matches(order domain.Order) bool {
	if f.UserID != "" && order.UserID != f.UserID {
		return false
	}
	if len(f.Status) == 0 {
		return true
	}
	for _, status := range f.Status {
		if order.Status == status {
			return true
		}
	}
	return false
}

// CounterConfig customises increment behaviour and bounds for a counter.
type CounterConfig struct {
	Step         int64
	MaxValue     *int64
	InitialValue *int64
}
