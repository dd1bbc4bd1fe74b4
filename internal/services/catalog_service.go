package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/changefeed"
	"github.com/laundryhub/api/internal/repositories"
)

var (
	// ErrCatalogInvalidInput indicates malformed catalog edits.
	ErrCatalogInvalidInput = errors.New("catalog: invalid input")
	// ErrCatalogNotFound indicates the garment type or service does not exist.
	ErrCatalogNotFound = errors.New("catalog: not found")
	// ErrCatalogUnavailable indicates the catalog store could not be reached.
	ErrCatalogUnavailable = errors.New("catalog: unavailable")
)

// CatalogServiceDeps wires the catalog repositories.
type CatalogServiceDeps struct {
	GarmentTypes repositories.GarmentTypeRepository
	Services     repositories.ServiceRepository
	UnitOfWork   repositories.UnitOfWork
	Changes      ChangePublisher
	Clock        func() time.Time
	Logger       func(context.Context, string, map[string]any)
}

type catalogService struct {
	garments repositories.GarmentTypeRepository
	services repositories.ServiceRepository
	unit     repositories.UnitOfWork
	changes  changeNotifier
	logger   func(context.Context, string, map[string]any)
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.GarmentTypes == nil {
		return nil, errors.New("catalog service: garment type repository is required")
	}
	if deps.Services == nil {
		return nil, errors.New("catalog service: service repository is required")
	}
	unit := deps.UnitOfWork
	if unit == nil {
		unit = noopUnitOfWork{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger
	}
	return &catalogService{
		garments: deps.GarmentTypes,
		services: deps.Services,
		unit:     unit,
		changes: changeNotifier{
			publisher: deps.Changes,
			logger:    logger,
			now:       func() time.Time { return clock().UTC() },
		},
		logger: logger,
	}, nil
}

func (s *catalogService) ListGarmentTypes(ctx context.Context) ([]GarmentType, error) {
	garments, err := s.garments.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	sort.SliceStable(garments, func(i, j int) bool { return garments[i].ID < garments[j].ID })
	return garments, nil
}

func (s *catalogService) GetGarmentType(ctx context.Context, id string) (GarmentType, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return GarmentType{}, fmt.Errorf("%w: garment type id is required", ErrCatalogInvalidInput)
	}
	garment, err := s.garments.FindByID(ctx, id)
	if err != nil {
		return GarmentType{}, s.mapRepositoryError(err)
	}
	return garment, nil
}

func (s *catalogService) ListServices(ctx context.Context, filter ServiceListFilter) ([]Service, error) {
	services, err := s.services.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	out := make([]Service, 0, len(services))
	for _, svc := range services {
		if filter.ActiveOnly && !svc.Active {
			continue
		}
		svc.PriceBasis = svc.Basis()
		out = append(out, svc)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *catalogService) GetService(ctx context.Context, id string) (Service, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Service{}, fmt.Errorf("%w: service id is required", ErrCatalogInvalidInput)
	}
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		return Service{}, s.mapRepositoryError(err)
	}
	svc.PriceBasis = svc.Basis()
	return svc, nil
}

// Snapshot loads every garment type and service, including inactive services, so existing
// carts and orders keep pricing after a service is disabled.
func (s *catalogService) Snapshot(ctx context.Context) (Catalog, error) {
	garments, err := s.garments.List(ctx)
	if err != nil {
		return Catalog{}, s.mapRepositoryError(err)
	}
	services, err := s.services.List(ctx)
	if err != nil {
		return Catalog{}, s.mapRepositoryError(err)
	}
	return domain.NewCatalog(garments, services), nil
}

func (s *catalogService) UpdateGarmentPricing(ctx context.Context, cmd UpdateGarmentPricingCommand) (GarmentType, error) {
	id := strings.TrimSpace(cmd.GarmentTypeID)
	if id == "" {
		return GarmentType{}, fmt.Errorf("%w: garment type id is required", ErrCatalogInvalidInput)
	}
	if cmd.Wash == nil && cmd.Iron == nil && cmd.WashIron == nil && cmd.DryClean == nil {
		return GarmentType{}, fmt.Errorf("%w: at least one price is required", ErrCatalogInvalidInput)
	}

	var updated GarmentType
	err := s.unit.RunInTx(ctx, func(txCtx context.Context) error {
		garment, err := s.garments.FindByID(txCtx, id)
		if err != nil {
			return s.mapRepositoryError(err)
		}
		applyPrice(&garment.Pricing.Wash, cmd.Wash)
		applyPrice(&garment.Pricing.Iron, cmd.Iron)
		applyPrice(&garment.Pricing.WashIron, cmd.WashIron)
		applyPrice(&garment.Pricing.DryClean, cmd.DryClean)
		if err := garment.Pricing.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrCatalogInvalidInput, err)
		}
		if err := s.garments.Upsert(txCtx, garment); err != nil {
			return s.mapRepositoryError(err)
		}
		updated = garment
		return nil
	})
	if err != nil {
		return GarmentType{}, err
	}

	s.logger(ctx, "catalog.pricing.updated", map[string]any{"garmentTypeId": id, "actorId": cmd.ActorID})
	s.changes.publish(ctx, changefeed.KeyGarmentTypes, id, changefeed.OpUpdate)
	return updated, nil
}

func (s *catalogService) SetServiceActive(ctx context.Context, cmd SetServiceActiveCommand) (Service, error) {
	id := strings.TrimSpace(cmd.ServiceID)
	if id == "" {
		return Service{}, fmt.Errorf("%w: service id is required", ErrCatalogInvalidInput)
	}

	var updated Service
	err := s.unit.RunInTx(ctx, func(txCtx context.Context) error {
		svc, err := s.services.FindByID(txCtx, id)
		if err != nil {
			return s.mapRepositoryError(err)
		}
		svc.Active = cmd.Active
		svc.PriceBasis = svc.Basis()
		if err := s.services.Upsert(txCtx, svc); err != nil {
			return s.mapRepositoryError(err)
		}
		updated = svc
		return nil
	})
	if err != nil {
		return Service{}, err
	}

	s.logger(ctx, "catalog.service.active_changed", map[string]any{"serviceId": id, "active": cmd.Active, "actorId": cmd.ActorID})
	s.changes.publish(ctx, changefeed.KeyServices, id, changefeed.OpUpdate)
	return updated, nil
}

// EnsureSeeded writes the default catalog when no garment types exist. It reports whether seeding happened.
func (s *catalogService) EnsureSeeded(ctx context.Context) (bool, error) {
	garments := DefaultGarmentTypes()
	services := DefaultServices()
	if err := domain.NewCatalog(garments, services).Validate(); err != nil {
		return false, fmt.Errorf("catalog: default catalog is inconsistent: %w", err)
	}

	seeded := false
	err := s.unit.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.garments.List(txCtx)
		if err != nil {
			return s.mapRepositoryError(err)
		}
		existingServices, err := s.services.List(txCtx)
		if err != nil {
			return s.mapRepositoryError(err)
		}
		if len(existing) > 0 || len(existingServices) > 0 {
			return nil
		}
		for _, garment := range garments {
			if err := s.garments.Upsert(txCtx, garment); err != nil {
				return s.mapRepositoryError(err)
			}
		}
		for _, svc := range services {
			if err := s.services.Upsert(txCtx, svc); err != nil {
				return s.mapRepositoryError(err)
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if seeded {
		s.logger(ctx, "catalog.seeded", map[string]any{"garmentTypes": len(garments), "services": len(services)})
		s.changes.publish(ctx, changefeed.KeyGarmentTypes, "", changefeed.OpCreate)
		s.changes.publish(ctx, changefeed.KeyServices, "", changefeed.OpCreate)
	}
	return seeded, nil
}

func (s *catalogService) mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrCatalogInvalidInput), errors.Is(err, ErrCatalogNotFound):
		return err
	case isRepoNotFound(err):
		return fmt.Errorf("%w: %v", ErrCatalogNotFound, err)
	case isRepoUnavailable(err):
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return err
}

func applyPrice(target *float64, value *float64) {
	if value != nil {
		*target = *value
	}
}
