package keyed

import (
	"context"
	"sort"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/repositories"
)

// OrderRepository stores orders under the orders key.
type OrderRepository struct {
	store keyvalue.Store
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	return mutateSlice(ctx, r.store, keyOrders, func(records []orderRecord) ([]orderRecord, error) {
		for _, rec := range records {
			if rec.ID == order.ID {
				return nil, repositories.NewConflictError("orders.insert", errDuplicate(order.ID))
			}
		}
		return append(records, orderToRecord(order)), nil
	})
}

func (r *OrderRepository) Update(ctx context.Context, order domain.Order) error {
	return mutateSlice(ctx, r.store, keyOrders, func(records []orderRecord) ([]orderRecord, error) {
		for i := range records {
			if records[i].ID == order.ID {
				records[i] = orderToRecord(order)
				return records, nil
			}
		}
		return nil, repositories.NewNotFoundError("orders.update", "order "+order.ID)
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	records, err := loadSlice[orderRecord](ctx, r.store, keyOrders)
	if err != nil {
		return domain.Order{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec.domain(), nil
		}
	}
	return domain.Order{}, repositories.NewNotFoundError("orders.find", "order "+id)
}

// List returns matching orders, newest first.
func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) ([]domain.Order, error) {
	records, err := loadSlice[orderRecord](ctx, r.store, keyOrders)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(records))
	for _, rec := range records {
		order := rec.domain()
		if filter.Matches(order) {
			out = append(out, order)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
