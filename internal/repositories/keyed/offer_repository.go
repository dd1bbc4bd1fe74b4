package keyed

import (
	"context"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/repositories"
)

// OfferRepository stores offers under the offers key.
type OfferRepository struct {
	store keyvalue.Store
	now   func() time.Time
}

var _ repositories.OfferRepository = (*OfferRepository)(nil)

func (r *OfferRepository) List(ctx context.Context) ([]domain.Offer, error) {
	records, err := loadSlice[offerRecord](ctx, r.store, keyOffers)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Offer, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.domain())
	}
	return out, nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id string) (domain.Offer, error) {
	records, err := loadSlice[offerRecord](ctx, r.store, keyOffers)
	if err != nil {
		return domain.Offer{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec.domain(), nil
		}
	}
	return domain.Offer{}, repositories.NewNotFoundError("offers.find", "offer "+id)
}

func (r *OfferRepository) Insert(ctx context.Context, offer domain.Offer) error {
	return mutateSlice(ctx, r.store, keyOffers, func(records []offerRecord) ([]offerRecord, error) {
		for _, rec := range records {
			if rec.ID == offer.ID {
				return nil, repositories.NewConflictError("offers.insert", errDuplicate(offer.ID))
			}
		}
		return append(records, offerToRecord(offer)), nil
	})
}

func (r *OfferRepository) Update(ctx context.Context, offer domain.Offer) error {
	return mutateSlice(ctx, r.store, keyOffers, func(records []offerRecord) ([]offerRecord, error) {
		for i := range records {
			if records[i].ID == offer.ID {
				records[i] = offerToRecord(offer)
				return records, nil
			}
		}
		return nil, repositories.NewNotFoundError("offers.update", "offer "+offer.ID)
	})
}

func (r *OfferRepository) Delete(ctx context.Context, id string) error {
	return mutateSlice(ctx, r.store, keyOffers, func(records []offerRecord) ([]offerRecord, error) {
		for i := range records {
			if records[i].ID == id {
				return append(records[:i], records[i+1:]...), nil
			}
		}
		return nil, repositories.NewNotFoundError("offers.delete", "offer "+id)
	})
}

func (r *OfferRepository) IncrementUsage(ctx context.Context, id string) (domain.Offer, error) {
	var updated domain.Offer
	err := mutateSlice(ctx, r.store, keyOffers, func(records []offerRecord) ([]offerRecord, error) {
		for i := range records {
			if records[i].ID != id {
				continue
			}
			if records[i].UsageLimit != nil && records[i].UsedCount >= *records[i].UsageLimit {
				return nil, repositories.ErrUsageLimitReached
			}
			records[i].UsedCount++
			records[i].UpdatedAt = r.now().UTC()
			updated = records[i].domain()
			return records, nil
		}
		return nil, repositories.NewNotFoundError("offers.increment", "offer "+id)
	})
	if err != nil {
		return domain.Offer{}, err
	}
	return updated, nil
}
