package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/laundryhub/api/internal/domain"
	pfirestore "github.com/laundryhub/api/internal/platform/firestore"
	"github.com/laundryhub/api/internal/repositories"
)

const offersCollection = "offers"

// OfferRepository persists offers and performs transactional redemption counting.
type OfferRepository struct {
	provider *pfirestore.Provider
	base     *pfirestore.BaseRepository[offerDocument]
	now      func() time.Time
}

var _ repositories.OfferRepository = (*OfferRepository)(nil)

// NewOfferRepository constructs a Firestore-backed offer repository.
func NewOfferRepository(provider *pfirestore.Provider) (*OfferRepository, error) {
	if provider == nil {
		return nil, errors.New("offer repository requires firestore provider")
	}
	return &OfferRepository{
		provider: provider,
		base:     pfirestore.NewBaseRepository[offerDocument](provider, offersCollection),
		now:      time.Now,
	}, nil
}

func (r *OfferRepository) List(ctx context.Context) ([]domain.Offer, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Offer, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data.domain(doc.ID))
	}
	return out, nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id string) (domain.Offer, error) {
	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.Offer{}, err
	}
	return doc.Data.domain(doc.ID), nil
}

func (r *OfferRepository) Insert(ctx context.Context, offer domain.Offer) error {
	return r.base.Create(ctx, offer.ID, offerToDocument(offer))
}

func (r *OfferRepository) Update(ctx context.Context, offer domain.Offer) error {
	ref, err := r.base.DocumentRef(ctx, offer.ID)
	if err != nil {
		return err
	}
	merge := firestore.Merge(
		[]string{"title"}, []string{"description"}, []string{"discountType"}, []string{"discountValue"},
		[]string{"couponCode"}, []string{"minOrderAmount"}, []string{"validFrom"}, []string{"validTo"},
		[]string{"isActive"}, []string{"usageLimit"}, []string{"updatedAt"},
	)
	// usedCount is owned by IncrementUsage.
	doc := offerToDocument(offer)
	if pfirestore.QueueWrite(ctx, func(tx *firestore.Transaction) error { return tx.Set(ref, doc, merge) }) {
		return nil
	}
	_, err = ref.Set(ctx, doc, merge)
	return pfirestore.WrapError("offers.update", err)
}

func (r *OfferRepository) Delete(ctx context.Context, id string) error {
	return r.base.Delete(ctx, id, firestore.Exists)
}

// IncrementUsage reads and bumps usedCount inside a transaction so concurrent redemptions
// cannot exceed the usage limit.
func (r *OfferRepository) IncrementUsage(ctx context.Context, id string) (domain.Offer, error) {
	var updated domain.Offer
	err := r.provider.RunTransaction(ctx, func(ctx context.Context, _ *firestore.Transaction) error {
		doc, err := r.base.Get(ctx, id)
		if err != nil {
			return err
		}
		offer := doc.Data.domain(doc.ID)
		if offer.Exhausted() {
			return repositories.ErrUsageLimitReached
		}
		now := r.now().UTC()
		if err := r.base.Update(ctx, id, []firestore.Update{
			{Path: "usedCount", Value: firestore.Increment(1)},
			{Path: "updatedAt", Value: now},
		}); err != nil {
			return err
		}
		offer.UsedCount++
		offer.UpdatedAt = now
		updated = offer
		return nil
	})
	if err != nil {
		return domain.Offer{}, err
	}
	return updated, nil
}
