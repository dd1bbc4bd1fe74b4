package firestore

import (
	"context"
	"errors"

	domain "github.com/laundryhub/api/internal/domain"
	pfirestore "github.com/laundryhub/api/internal/platform/firestore"
	"github.com/laundryhub/api/internal/repositories"
)

const usersCollection = "users"

// UserRepository stores profile documents keyed by uid.
type UserRepository struct {
	base *pfirestore.BaseRepository[userDocument]
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// NewUserRepository constructs a Firestore-backed user repository.
func NewUserRepository(provider *pfirestore.Provider) (*UserRepository, error) {
	if provider == nil {
		return nil, errors.New("user repository requires firestore provider")
	}
	return &UserRepository{base: pfirestore.NewBaseRepository[userDocument](provider, usersCollection)}, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.UserProfile, error) {
	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return doc.Data.domain(doc.ID), nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.UserProfile, error) {
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserProfile, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data.domain(doc.ID))
	}
	return out, nil
}

func (r *UserRepository) Upsert(ctx context.Context, profile domain.UserProfile) error {
	return r.base.Set(ctx, profile.ID, userDocument{
		Email:     profile.Email,
		Name:      profile.Name,
		Phone:     profile.Phone,
		Address:   profile.Address,
		Role:      string(profile.Role),
		Status:    profile.Status,
		CreatedAt: profile.CreatedAt.UTC(),
		UpdatedAt: profile.UpdatedAt.UTC(),
	})
}
