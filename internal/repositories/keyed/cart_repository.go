package keyed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/repositories"
)

// CartRepository stores each user's cart under cart/<userId>.
type CartRepository struct {
	store keyvalue.Store
}

var _ repositories.CartRepository = (*CartRepository)(nil)

func (r *CartRepository) Get(ctx context.Context, userID string) (domain.Cart, error) {
	raw, err := r.store.Get(ctx, keyCartPrefix+userID)
	if errors.Is(err, keyvalue.ErrNotFound) {
		return domain.Cart{}, repositories.NewNotFoundError("cart.get", "cart for "+userID)
	}
	if err != nil {
		return domain.Cart{}, wrapStoreError("cart.get", err)
	}
	var rec cartRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Cart{}, fmt.Errorf("keyed: decode cart %s: %w", userID, err)
	}
	return domain.Cart{UserID: userID, Items: recordsToItems(rec.Items), UpdatedAt: rec.UpdatedAt}, nil
}

func (r *CartRepository) Save(ctx context.Context, cart domain.Cart) error {
	payload, err := json.Marshal(cartRecord{
		UserID:    cart.UserID,
		Items:     itemsToRecords(cart.Items),
		UpdatedAt: cart.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("keyed: encode cart %s: %w", cart.UserID, err)
	}
	if err := r.store.Put(ctx, keyCartPrefix+cart.UserID, payload); err != nil {
		return wrapStoreError("cart.save", err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.store.Delete(ctx, keyCartPrefix+userID); err != nil {
		return wrapStoreError("cart.delete", err)
	}
	return nil
}
