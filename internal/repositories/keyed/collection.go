package keyed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/repositories"
)

// Keys under which each collection is stored as a single JSON array.
const (
	keyGarmentTypes  = "dressTypes"
	keyServices      = "services"
	keyOrders        = "orders"
	keyOffers        = "offers"
	keyNotifications = "notifications"
	keyUsers         = "users"
	keyPayments      = "payments"
	keyCounters      = "counters"
	keyCartPrefix    = "cart/"
)

// loadSlice decodes the array stored at key. A missing key is an empty collection.
func loadSlice[R any](ctx context.Context, store keyvalue.Store, key string) ([]R, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, keyvalue.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreError(key+".load", err)
	}
	var records []R
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("keyed: decode %s: %w", key, err)
	}
	return records, nil
}

// mutateSlice applies fn to the stored array atomically and writes back the result.
func mutateSlice[R any](ctx context.Context, store keyvalue.Store, key string, fn func([]R) ([]R, error)) error {
	err := store.Update(ctx, key, func(current []byte) ([]byte, error) {
		var records []R
		if len(current) > 0 {
			if err := json.Unmarshal(current, &records); err != nil {
				return nil, fmt.Errorf("keyed: decode %s: %w", key, err)
			}
		}
		next, err := fn(records)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []R{}
		}
		return json.Marshal(next)
	})
	if err != nil {
		return wrapStoreError(key+".update", err)
	}
	return nil
}

func wrapStoreError(op string, err error) error {
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		return err
	}
	if errors.Is(err, repositories.ErrUsageLimitReached) {
		return err
	}
	switch {
	case errors.Is(err, keyvalue.ErrConflict):
		return repositories.NewConflictError(op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, keyvalue.ErrNotFound):
		return repositories.NewNotFoundError(op, "record")
	}
	return repositories.NewUnavailableError(op, err)
}
