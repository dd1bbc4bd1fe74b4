package firestore

import (
	"context"
	"errors"

	domain "github.com/laundryhub/api/internal/domain"
	pfirestore "github.com/laundryhub/api/internal/platform/firestore"
	"github.com/laundryhub/api/internal/repositories"
)

const cartCollection = "carts"

// CartRepository stores one cart document per user id.
type CartRepository struct {
	base *pfirestore.BaseRepository[cartDocument]
}

var _ repositories.CartRepository = (*CartRepository)(nil)

// NewCartRepository constructs a Firestore-backed cart repository.
func NewCartRepository(provider *pfirestore.Provider) (*CartRepository, error) {
	if provider == nil {
		return nil, errors.New("cart repository requires firestore provider")
	}
	return &CartRepository{base: pfirestore.NewBaseRepository[cartDocument](provider, cartCollection)}, nil
}

func (r *CartRepository) Get(ctx context.Context, userID string) (domain.Cart, error) {
	doc, err := r.base.Get(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	return domain.Cart{
		UserID:    doc.ID,
		Items:     documentsToItems(doc.Data.Items),
		UpdatedAt: doc.Data.UpdatedAt,
	}, nil
}

func (r *CartRepository) Save(ctx context.Context, cart domain.Cart) error {
	return r.base.Set(ctx, cart.UserID, cartDocument{
		Items:     itemsToDocuments(cart.Items),
		UpdatedAt: cart.UpdatedAt.UTC(),
	})
}

func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	return r.base.Delete(ctx, userID)
}
