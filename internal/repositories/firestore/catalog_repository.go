package firestore

import (
	"context"
	"errors"

	domain "github.com/laundryhub/api/internal/domain"
	pfirestore "github.com/laundryhub/api/internal/platform/firestore"
	"github.com/laundryhub/api/internal/repositories"
)

const (
	garmentTypesCollection = "dressTypes"
	servicesCollection     = "services"
)

// GarmentTypeRepository persists garment types keyed by id.
type GarmentTypeRepository struct {
	base *pfirestore.BaseRepository[garmentDocument]
}

var _ repositories.GarmentTypeRepository = (*GarmentTypeRepository)(nil)

// NewGarmentTypeRepository constructs a Firestore-backed garment type repository.
func NewGarmentTypeRepository(provider *pfirestore.Provider) (*GarmentTypeRepository, error) {
	if provider == nil {
		return nil, errors.New("garment type repository requires firestore provider")
	}
	return &GarmentTypeRepository{base: pfirestore.NewBaseRepository[garmentDocument](provider, garmentTypesCollection)}, nil
}

func (r *GarmentTypeRepository) List(ctx context.Context) ([]domain.GarmentType, error) {
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.GarmentType, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data.domain(doc.ID))
	}
	return out, nil
}

func (r *GarmentTypeRepository) FindByID(ctx context.Context, id string) (domain.GarmentType, error) {
	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.GarmentType{}, err
	}
	return doc.Data.domain(doc.ID), nil
}

func (r *GarmentTypeRepository) Upsert(ctx context.Context, garment domain.GarmentType) error {
	return r.base.Set(ctx, garment.ID, garmentToDocument(garment))
}

// ServiceRepository persists service definitions keyed by id.
type ServiceRepository struct {
	base *pfirestore.BaseRepository[serviceDocument]
}

var _ repositories.ServiceRepository = (*ServiceRepository)(nil)

// NewServiceRepository constructs a Firestore-backed service repository.
func NewServiceRepository(provider *pfirestore.Provider) (*ServiceRepository, error) {
	if provider == nil {
		return nil, errors.New("service repository requires firestore provider")
	}
	return &ServiceRepository{base: pfirestore.NewBaseRepository[serviceDocument](provider, servicesCollection)}, nil
}

func (r *ServiceRepository) List(ctx context.Context) ([]domain.Service, error) {
	docs, err := r.base.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Service, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data.domain(doc.ID))
	}
	return out, nil
}

func (r *ServiceRepository) FindByID(ctx context.Context, id string) (domain.Service, error) {
	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.Service{}, err
	}
	return doc.Data.domain(doc.ID), nil
}

func (r *ServiceRepository) Upsert(ctx context.Context, service domain.Service) error {
	return r.base.Set(ctx, service.ID, serviceToDocument(service))
}
