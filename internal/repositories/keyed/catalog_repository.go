package keyed

import (
	"context"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/repositories"
)

// GarmentTypeRepository stores garment types under the dressTypes key.
type GarmentTypeRepository struct {
	store keyvalue.Store
}

var _ repositories.GarmentTypeRepository = (*GarmentTypeRepository)(nil)

func (r *GarmentTypeRepository) List(ctx context.Context) ([]domain.GarmentType, error) {
	records, err := loadSlice[garmentRecord](ctx, r.store, keyGarmentTypes)
	if err != nil {
		return nil, err
	}
	out := make([]domain.GarmentType, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.domain())
	}
	return out, nil
}

func (r *GarmentTypeRepository) FindByID(ctx context.Context, id string) (domain.GarmentType, error) {
	records, err := loadSlice[garmentRecord](ctx, r.store, keyGarmentTypes)
	if err != nil {
		return domain.GarmentType{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec.domain(), nil
		}
	}
	return domain.GarmentType{}, repositories.NewNotFoundError("dressTypes.find", "garment type "+id)
}

func (r *GarmentTypeRepository) Upsert(ctx context.Context, garment domain.GarmentType) error {
	return mutateSlice(ctx, r.store, keyGarmentTypes, func(records []garmentRecord) ([]garmentRecord, error) {
		rec := garmentToRecord(garment)
		for i := range records {
			if records[i].ID == rec.ID {
				records[i] = rec
				return records, nil
			}
		}
		return append(records, rec), nil
	})
}

// ServiceRepository stores services under the services key.
type ServiceRepository struct {
	store keyvalue.Store
}

var _ repositories.ServiceRepository = (*ServiceRepository)(nil)

func (r *ServiceRepository) List(ctx context.Context) ([]domain.Service, error) {
	records, err := loadSlice[serviceRecord](ctx, r.store, keyServices)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Service, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.domain())
	}
	return out, nil
}

func (r *ServiceRepository) FindByID(ctx context.Context, id string) (domain.Service, error) {
	records, err := loadSlice[serviceRecord](ctx, r.store, keyServices)
	if err != nil {
		return domain.Service{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec.domain(), nil
		}
	}
	return domain.Service{}, repositories.NewNotFoundError("services.find", "service "+id)
}

func (r *ServiceRepository) Upsert(ctx context.Context, service domain.Service) error {
	return mutateSlice(ctx, r.store, keyServices, func(records []serviceRecord) ([]serviceRecord, error) {
		rec := serviceToRecord(service)
		for i := range records {
			if records[i].ID == rec.ID {
				records[i] = rec
				return records, nil
			}
		}
		return append(records, rec), nil
	})
}
