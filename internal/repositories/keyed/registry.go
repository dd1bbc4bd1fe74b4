// Package keyed implements the repository interfaces on top of a keyvalue.Store,
// storing each collection as one JSON array per key.
package keyed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/repositories"
)

// Registry wires keyed repositories around a shared store.
type Registry struct {
	store         keyvalue.Store
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

// NewRegistry builds the repositories. clock defaults to time.Now.
func NewRegistry(store keyvalue.Store, clock func() time.Time) (*Registry, error) {
	if store == nil {
		return nil, errors.New("keyed registry: store is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &Registry{
		store:         store,
		garments:      &GarmentTypeRepository{store: store},
		services:      &ServiceRepository{store: store},
		carts:         &CartRepository{store: store},
		offers:        &OfferRepository{store: store, now: clock},
		orders:        &OrderRepository{store: store},
		notifications: &NotificationRepository{store: store},
		users:         &UserRepository{store: store},
		payments:      &PaymentRepository{store: store},
		counters:      &CounterRepository{store: store, now: clock},
	}, nil
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

// RunInTx delegates to the store's transaction support.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.RunInTx(ctx, fn)
}

// Close releases the underlying store.
func (r *Registry) Close(context.Context) error {
	return r.store.Close()
}

// Store exposes the backing store for health checks.
func (r *Registry) Store() keyvalue.Store {
	return r.store
}

func errDuplicate(id string) error {
	return fmt.Errorf("record %s already exists", id)
}
