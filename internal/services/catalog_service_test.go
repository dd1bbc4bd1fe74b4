package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/laundryhub/api/internal/domain"
)

func TestNewCatalogService(t *testing.T) {
	h := newHarness(t)
	if _, err := NewCatalogService(CatalogServiceDeps{Services: h.registry.Services()}); err == nil {
		t.Fatalf("expected error when garment repository is missing")
	}
	if _, err := NewCatalogService(CatalogServiceDeps{GarmentTypes: h.registry.GarmentTypes()}); err == nil {
		t.Fatalf("expected error when service repository is missing")
	}
}

func TestCatalogServiceEnsureSeededRunsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	garments, err := h.catalog.ListGarmentTypes(ctx)
	if err != nil {
		t.Fatalf("ListGarmentTypes: %v", err)
	}
	if len(garments) != 7 {
		t.Fatalf("expected 7 seeded garment types, got %d", len(garments))
	}
	services, err := h.catalog.ListServices(ctx, ServiceListFilter{})
	if err != nil {
		t.Fatalf("ListServices: %v", err)
	}
	if len(services) != 9 {
		t.Fatalf("expected 9 seeded services, got %d", len(services))
	}

	seeded, err := h.catalog.EnsureSeeded(ctx)
	if err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	if seeded {
		t.Fatalf("expected second seed to be skipped")
	}
}

func TestCatalogServiceSetServiceActiveFiltersListing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	svc, err := h.catalog.SetServiceActive(ctx, SetServiceActiveCommand{ServiceID: "iron-heavy", Active: false, ActorID: "admin-1"})
	if err != nil {
		t.Fatalf("SetServiceActive: %v", err)
	}
	if svc.Active {
		t.Fatalf("expected service to be inactive")
	}

	active, err := h.catalog.ListServices(ctx, ServiceListFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("ListServices: %v", err)
	}
	for _, s := range active {
		if s.ID == "iron-heavy" {
			t.Fatalf("inactive service listed")
		}
	}
	if len(active) != 8 {
		t.Fatalf("expected 8 active services, got %d", len(active))
	}

	// Inactive services still price existing lines.
	catalog, err := h.catalog.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if _, ok := catalog.Service("iron-heavy"); !ok {
		t.Fatalf("expected snapshot to include inactive service")
	}

	keys := h.changes.keys()
	if keys[len(keys)-1] != "services/update" {
		t.Fatalf("expected services change, got %v", keys)
	}
}

func TestCatalogServiceUpdateGarmentPricing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	garment, err := h.catalog.UpdateGarmentPricing(ctx, UpdateGarmentPricingCommand{
		GarmentTypeID: "saree",
		DryClean:      floatPtr(130),
	})
	if err != nil {
		t.Fatalf("UpdateGarmentPricing: %v", err)
	}
	if garment.Pricing.DryClean != 130 || garment.Pricing.Wash != 60 {
		t.Fatalf("expected only dryClean to change, got %+v", garment.Pricing)
	}

	stored, err := h.catalog.GetGarmentType(ctx, "saree")
	if err != nil {
		t.Fatalf("GetGarmentType: %v", err)
	}
	if stored.Pricing.DryClean != 130 {
		t.Fatalf("expected persisted price, got %+v", stored.Pricing)
	}
}

func TestCatalogServiceUpdateGarmentPricingValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  UpdateGarmentPricingCommand
		want error
	}{
		{name: "missing id", cmd: UpdateGarmentPricingCommand{Wash: floatPtr(10)}, want: ErrCatalogInvalidInput},
		{name: "no prices", cmd: UpdateGarmentPricingCommand{GarmentTypeID: "tshirt"}, want: ErrCatalogInvalidInput},
		{name: "negative", cmd: UpdateGarmentPricingCommand{GarmentTypeID: "tshirt", Iron: floatPtr(-1)}, want: ErrCatalogInvalidInput},
		{name: "unknown garment", cmd: UpdateGarmentPricingCommand{GarmentTypeID: "kimono", Wash: floatPtr(10)}, want: ErrCatalogNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := h.catalog.UpdateGarmentPricing(ctx, tc.cmd); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	garment, err := h.catalog.GetGarmentType(ctx, "tshirt")
	if err != nil {
		t.Fatalf("GetGarmentType: %v", err)
	}
	if garment.Pricing.Iron != 10 {
		t.Fatalf("expected rejected update to leave price unchanged, got %v", garment.Pricing.Iron)
	}
}

func TestCatalogServiceGetServiceFillsPriceBasis(t *testing.T) {
	h := newHarness(t)
	svc, err := h.catalog.GetService(context.Background(), "wash-premium")
	if err != nil {
		t.Fatalf("GetService: %v", err)
	}
	if svc.PriceBasis != domain.PriceBasisPremiumWash {
		t.Fatalf("expected premium-wash basis, got %q", svc.PriceBasis)
	}
	if _, err := h.catalog.GetService(context.Background(), "missing"); !errors.Is(err, ErrCatalogNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDefaultCatalogIsConsistent(t *testing.T) {
	if err := domain.NewCatalog(DefaultGarmentTypes(), DefaultServices()).Validate(); err != nil {
		t.Fatalf("default catalog invalid: %v", err)
	}
}
