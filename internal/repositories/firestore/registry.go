// Package firestore implements the repository interfaces on Cloud Firestore.
package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	pfirestore "github.com/laundryhub/api/internal/platform/firestore"
	"github.com/laundryhub/api/internal/repositories"
)

// Registry bundles the Firestore repositories around one provider.
type Registry struct {
	provider      *pfirestore.Provider
	garments      *GarmentTypeRepository
	services      *ServiceRepository
	carts         *CartRepository
	offers        *OfferRepository
	orders        *OrderRepository
	notifications *NotificationRepository
	users         *UserRepository
	payments      *PaymentRepository
	counters      *CounterRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry constructs every repository against the provider.
func NewRegistry(provider *pfirestore.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("firestore registry: provider is required")
	}
	reg := &Registry{provider: provider}
	var err error
	if reg.garments, err = NewGarmentTypeRepository(provider); err != nil {
		return nil, err
	}
	if reg.services, err = NewServiceRepository(provider); err != nil {
		return nil, err
	}
	if reg.carts, err = NewCartRepository(provider); err != nil {
		return nil, err
	}
	if reg.offers, err = NewOfferRepository(provider); err != nil {
		return nil, err
	}
	if reg.orders, err = NewOrderRepository(provider); err != nil {
		return nil, err
	}
	if reg.notifications, err = NewNotificationRepository(provider); err != nil {
		return nil, err
	}
	if reg.users, err = NewUserRepository(provider); err != nil {
		return nil, err
	}
	if reg.payments, err = NewPaymentRepository(provider); err != nil {
		return nil, err
	}
	if reg.counters, err = NewCounterRepository(provider); err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *Registry) GarmentTypes() repositories.GarmentTypeRepository { return r.garments }

func (r *Registry) Services() repositories.ServiceRepository { return r.services }

func (r *Registry) Carts() repositories.CartRepository { return r.carts }

func (r *Registry) Offers() repositories.OfferRepository { return r.offers }

func (r *Registry) Orders() repositories.OrderRepository { return r.orders }

func (r *Registry) Notifications() repositories.NotificationRepository { return r.notifications }

func (r *Registry) Users() repositories.UserRepository { return r.users }

func (r *Registry) Payments() repositories.PaymentRepository { return r.payments }

func (r *Registry) Counters() repositories.CounterRepository { return r.counters }

// RunInTx runs fn in a Firestore transaction. Repositories called with the derived context join it,
// so all reads must happen before the first write.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.provider.RunTransaction(ctx, func(ctx context.Context, _ *firestore.Transaction) error {
		return fn(ctx)
	})
}

// Close releases the Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	return r.provider.Close(ctx)
}

// Ping verifies Firestore connectivity.
func (r *Registry) Ping(ctx context.Context) error {
	return r.provider.Ping(ctx)
}
