package domain

import (
	"fmt"
	"sort"
)

// GarmentCategory groups garment types for display.
type GarmentCategory string

const (
	GarmentCategoryCasual      GarmentCategory = "casual"
	GarmentCategoryFormal      GarmentCategory = "formal"
	GarmentCategoryTraditional GarmentCategory = "traditional"
	GarmentCategoryHeavy       GarmentCategory = "heavy"
)

// GarmentPricing holds the per-action unit prices of a garment type.
type GarmentPricing struct {
	Wash     float64
	Iron     float64
	WashIron float64
	DryClean float64
}

// Validate reports a negative price field.
func (p GarmentPricing) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"wash", p.Wash},
		{"iron", p.Iron},
		{"washIron", p.WashIron},
		{"dryClean", p.DryClean},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("pricing %s must be >= 0", f.name)
		}
	}
	return nil
}

// GarmentType is a kind of clothing item with its own unit prices.
type GarmentType struct {
	ID       string
	Name     string
	Category GarmentCategory
	Pricing  GarmentPricing
}

// ServiceCategory classifies cleaning services.
type ServiceCategory string

const (
	ServiceCategoryWashing     ServiceCategory = "washing"
	ServiceCategoryIroning     ServiceCategory = "ironing"
	ServiceCategoryDryCleaning ServiceCategory = "dry-cleaning"
	ServiceCategorySpecial     ServiceCategory = "special"
)

// PriceBasis selects which garment price field a service is charged on.
type PriceBasis string

const (
	PriceBasisWash        PriceBasis = "wash"
	PriceBasisPremiumWash PriceBasis = "premium-wash"
	PriceBasisWashFold    PriceBasis = "wash-fold"
	PriceBasisWashIron    PriceBasis = "wash-iron"
	PriceBasisIron        PriceBasis = "iron"
	PriceBasisDryClean    PriceBasis = "dry-clean"
	PriceBasisBase        PriceBasis = "base"
)

// DefaultPriceBasis derives the basis from a service category when none was recorded.
func DefaultPriceBasis(category ServiceCategory) PriceBasis {
	switch category {
	case ServiceCategoryWashing:
		return PriceBasisWash
	case ServiceCategoryIroning:
		return PriceBasisIron
	case ServiceCategoryDryCleaning:
		return PriceBasisDryClean
	default:
		return PriceBasisBase
	}
}

// QualityTier is the service level applied to a line item.
type QualityTier string

const (
	QualityNormal  QualityTier = "normal"
	QualityPremium QualityTier = "premium"
	QualityExpress QualityTier = "express"
)

// Valid reports whether the tier is one of the three known values.
func (q QualityTier) Valid() bool {
	switch q {
	case QualityNormal, QualityPremium, QualityExpress:
		return true
	}
	return false
}

// QualityMultipliers scale a service's unit price per tier.
type QualityMultipliers struct {
	Normal  float64
	Premium float64
	Express float64
}

// DefaultQualityMultipliers returns the multipliers every seeded service uses.
func DefaultQualityMultipliers() QualityMultipliers {
	return QualityMultipliers{Normal: 1.0, Premium: 1.5, Express: 2.0}
}

// For returns the multiplier for the tier, or 0 for an unknown tier.
func (m QualityMultipliers) For(tier QualityTier) float64 {
	switch tier {
	case QualityNormal:
		return m.Normal
	case QualityPremium:
		return m.Premium
	case QualityExpress:
		return m.Express
	}
	return 0
}

// Service is a cleaning action offered for a subset of garment types.
type Service struct {
	ID                 string
	Name               string
	Description        string
	Category           ServiceCategory
	PriceBasis         PriceBasis
	BasePrice          float64
	Duration           string
	Features           []string
	QualityMultipliers QualityMultipliers
	GarmentTypeIDs     []string
	Active             bool
}

// Supports reports whether the service accepts the garment type.
func (s Service) Supports(garmentTypeID string) bool {
	for _, id := range s.GarmentTypeIDs {
		if id == garmentTypeID {
			return true
		}
	}
	return false
}

// Basis returns the recorded price basis or the category default.
func (s Service) Basis() PriceBasis {
	if s.PriceBasis != "" {
		return s.PriceBasis
	}
	return DefaultPriceBasis(s.Category)
}

// Catalog is an immutable lookup view over garment types and services.
type Catalog struct {
	garments map[string]GarmentType
	services map[string]Service
}

// NewCatalog indexes the provided records by id. Later duplicates win.
func NewCatalog(garments []GarmentType, services []Service) Catalog {
	c := Catalog{
		garments: make(map[string]GarmentType, len(garments)),
		services: make(map[string]Service, len(services)),
	}
	for _, g := range garments {
		c.garments[g.ID] = g
	}
	for _, s := range services {
		c.services[s.ID] = s
	}
	return c
}

// GarmentType looks up a garment type by id.
func (c Catalog) GarmentType(id string) (GarmentType, bool) {
	g, ok := c.garments[id]
	return g, ok
}

// Service looks up a service by id.
func (c Catalog) Service(id string) (Service, bool) {
	s, ok := c.services[id]
	return s, ok
}

// Validate checks that every service references known garment types and that prices are non-negative.
func (c Catalog) Validate() error {
	ids := make([]string, 0, len(c.services))
	for id := range c.services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		svc := c.services[id]
		if len(svc.GarmentTypeIDs) == 0 {
			return fmt.Errorf("service %s supports no garment types", id)
		}
		for _, gid := range svc.GarmentTypeIDs {
			if _, ok := c.garments[gid]; !ok {
				return fmt.Errorf("service %s references unknown garment type %s", id, gid)
			}
		}
	}
	for id, g := range c.garments {
		if err := g.Pricing.Validate(); err != nil {
			return fmt.Errorf("garment type %s: %w", id, err)
		}
	}
	return nil
}
