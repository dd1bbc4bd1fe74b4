package keyed

import (
	"context"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/repositories"
)

// UserRepository stores profiles under the users key.
type UserRepository struct {
	store keyvalue.Store
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.UserProfile, error) {
	records, err := loadSlice[userRecord](ctx, r.store, keyUsers)
	if err != nil {
		return domain.UserProfile{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec.domain(), nil
		}
	}
	return domain.UserProfile{}, repositories.NewNotFoundError("users.find", "user "+id)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.UserProfile, error) {
	records, err := loadSlice[userRecord](ctx, r.store, keyUsers)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserProfile, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.domain())
	}
	return out, nil
}

func (r *UserRepository) Upsert(ctx context.Context, profile domain.UserProfile) error {
	return mutateSlice(ctx, r.store, keyUsers, func(records []userRecord) ([]userRecord, error) {
		rec := userToRecord(profile)
		for i := range records {
			if records[i].ID == rec.ID {
				records[i] = rec
				return records, nil
			}
		}
		return append(records, rec), nil
	})
}
