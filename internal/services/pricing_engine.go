package services

import (
	"math"

	domain "github.com/laundryhub/api/internal/domain"
)

const washFoldSurcharge = 5

// premiumWashFactor scales the garment wash price for the delicate wash service.
const premiumWashFactor = 1.5

// UnitPrice returns the price of one item at the item's quality tier. Unknown service or
// garment references price at zero.
func UnitPrice(item LineItem, catalog Catalog) float64 {
	service, ok := catalog.Service(item.ServiceID)
	if !ok {
		return 0
	}
	garment, ok := catalog.GarmentType(item.GarmentTypeID)
	if !ok {
		return 0
	}
	return basePrice(service, garment) * service.QualityMultipliers.For(item.Quality)
}

// ComputeLineItemPrice prices a line without rounding.
func ComputeLineItemPrice(item LineItem, catalog Catalog) float64 {
	return UnitPrice(item, catalog) * float64(item.Quantity)
}

// ComputeCartTotal sums line prices. Callers round the result once at the boundary.
func ComputeCartTotal(items []LineItem, catalog Catalog) float64 {
	var total float64
	for _, item := range items {
		total += ComputeLineItemPrice(item, catalog)
	}
	return total
}

// Round2 rounds half away from zero to two decimals.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func basePrice(service Service, garment GarmentType) float64 {
	switch service.Basis() {
	case domain.PriceBasisWashIron:
		return garment.Pricing.WashIron
	case domain.PriceBasisPremiumWash:
		return garment.Pricing.Wash * premiumWashFactor
	case domain.PriceBasisWashFold:
		return garment.Pricing.Wash + washFoldSurcharge
	case domain.PriceBasisWash:
		return garment.Pricing.Wash
	case domain.PriceBasisIron:
		return garment.Pricing.Iron
	case domain.PriceBasisDryClean:
		return garment.Pricing.DryClean
	default:
		return service.BasePrice
	}
}
