package services

import domain "github.com/laundryhub/api/internal/domain"

// DefaultGarmentTypes is the storefront's initial garment list.
func DefaultGarmentTypes() []GarmentType {
	return []GarmentType{
		{ID: "tshirt", Name: "T-shirt", Category: domain.GarmentCategoryCasual, Pricing: GarmentPricing{Wash: 30, Iron: 10, WashIron: 40, DryClean: 70}},
		{ID: "pant", Name: "Pant/Jeans", Category: domain.GarmentCategoryCasual, Pricing: GarmentPricing{Wash: 40, Iron: 15, WashIron: 55, DryClean: 80}},
		{ID: "shirt", Name: "Shirt", Category: domain.GarmentCategoryFormal, Pricing: GarmentPricing{Wash: 35, Iron: 12, WashIron: 45, DryClean: 70}},
		{ID: "saree", Name: "Saree", Category: domain.GarmentCategoryTraditional, Pricing: GarmentPricing{Wash: 60, Iron: 25, WashIron: 75, DryClean: 120}},
		{ID: "chudidar", Name: "Chudidar", Category: domain.GarmentCategoryTraditional, Pricing: GarmentPricing{Wash: 50, Iron: 20, WashIron: 65, DryClean: 100}},
		{ID: "jacket", Name: "Jacket", Category: domain.GarmentCategoryHeavy, Pricing: GarmentPricing{Wash: 80, Iron: 30, WashIron: 100, DryClean: 150}},
		{ID: "blanket", Name: "Blanket", Category: domain.GarmentCategoryHeavy, Pricing: GarmentPricing{Wash: 120, Iron: 40, WashIron: 150, DryClean: 200}},
	}
}

// DefaultServices is the storefront's initial service list.
func DefaultServices() []Service {
	multipliers := domain.DefaultQualityMultipliers()
	return []Service{
		{
			ID:                 "wash-normal",
			Name:               "Wash (Normal)",
			Description:        "Standard washing service for regular garments",
			Category:           domain.ServiceCategoryWashing,
			PriceBasis:         domain.PriceBasisWash,
			BasePrice:          30,
			Duration:           "24-48 hours",
			Features:           []string{"Eco-friendly detergents", "Fabric softener", "Careful handling"},
			QualityMultipliers: multipliers,
			GarmentTypeIDs:     []string{"tshirt", "pant", "shirt", "saree", "chudidar", "jacket", "blanket"},
			Active:             true,
		},
		{
			ID:                 "wash-premium",
			Name:               "Wash (Premium/Delicate)",
			Description:        "Premium washing for delicate and special fabrics",
			Category:           domain.ServiceCategoryWashing,
			PriceBasis:         domain.PriceBasisPremiumWash,
			BasePrice:          50,
			Duration:           "2-3 days",
			Features:           []string{"Gentle cycle", "Premium detergents", "Individual attention", "Fabric protection"},
			QualityMultipliers: multipliers,
			GarmentTypeIDs:     []string{"saree", "chudidar", "jacket"},
			Active:             true,
		},
		{
			ID:                 "wash-fold",
			Name:               "Wash & Fold",
			Description:        "Complete washing, drying, and folding service",
			Category:           domain.ServiceCategoryWashing,
			PriceBasis:         domain.PriceBasisWashFold,
			BasePrice:          35,
			Duration:           "24-48 hours",
			Features:           []string{"Wash, dry & fold", "Neat folding", "Ready to wear"},
			QualityMultipliers: multipliers,
			GarmentTypeIDs:     []string{"tshirt", "pant", "shirt", "chudidar"},
			Active:             true,
		},
		{
			ID:                 "wash-iron",
			Name:               "Wash & Iron",
			Description:        "Complete washing and professional ironing service",
			Category:           domain.ServiceCategoryWashing,
			PriceBasis:         domain.PriceBasisWashIron,
			BasePrice:          50,
			Duration:           "2-3 days",
			Features:           []string{"Wash & iron", "Professional pressing", "Crisp finish"},
			QualityMultipliers: multipliers,
			GarmentTypeIDs:     []string{"tshirt", "pant", "shirt", "saree", "chudidar", "jacket"},
			Active:             true,
		},
		{
			ID:                 "iron-casual",
			Name:               "Iron (T-shirt, Shirt, Pant)",
			Description:        "Professional ironing for casual wear",
			Category:           domain.ServiceCategoryIroning,
			PriceBasis:         domain.PriceBasisIron,
			BasePrice:          10,
			Duration:           "Same day",
			Features:           []string{"Professional pressing", "Crisp finish", "Same day service"},
			QualityMultipliers: multipliers,
			GarmentTypeIDs:     []string{"tshirt", "pant", "shirt"},
			Active:             true,
		},
		{
			ID:                 "iron-heavy",
			Name:               "Heavy Dress Ironing",
			Description:        "Specialized ironing for sarees, jackets, and blazers",
			Category:           domain.ServiceCategoryIroning,
			PriceBasis:         domain.PriceBasisIron,
			BasePrice:          20,
			Duration:           "1-2 days",
			Features:           []string{"Specialized pressing", "Careful handling", "Professional finish"},
			QualityMultipliers: multipliers,
			GarmentTypeIDs:     []string{"saree", "jacket"},
			Active:             true,
		},
		{
			ID:                 "dry-clean-casual",
			Name:               "Dry Cleaning (T-shirt/Pant/Shirt)",
			Description:        "Professional dry cleaning for casual garments",
			Category:           domain.ServiceCategoryDryCleaning,
			PriceBasis:         domain.PriceBasisDryClean,
			BasePrice:          70,
			Duration:           "3-5 days",
			Features:           []string{"Professional cleaning", "Stain treatment", "Garment protection"},
			QualityMultipliers: multipliers,
			GarmentTypeIDs:     []string{"tshirt", "pant", "shirt"},
			Active:             true,
		},
		{
			ID:                 "dry-clean-saree",
			Name:               "Dry Cleaning (Saree)",
			Description:        "Specialized dry cleaning for traditional sarees",
			Category:           domain.ServiceCategoryDryCleaning,
			PriceBasis:         domain.PriceBasisDryClean,
			BasePrice:          120,
			Duration:           "5-7 days",
			Features:           []string{"Gentle cleaning", "Fabric preservation", "Professional pressing"},
			QualityMultipliers: multipliers,
			GarmentTypeIDs:     []string{"saree"},
			Active:             true,
		},
		{
			ID:                 "dry-clean-heavy",
			Name:               "Dry Cleaning (Suit/Blazer/Blanket)",
			Description:        "Professional dry cleaning for heavy garments",
			Category:           domain.ServiceCategoryDryCleaning,
			PriceBasis:         domain.PriceBasisDryClean,
			BasePrice:          150,
			Duration:           "5-7 days",
			Features:           []string{"Heavy-duty cleaning", "Professional pressing", "Quality guarantee"},
			QualityMultipliers: multipliers,
			GarmentTypeIDs:     []string{"jacket", "blanket"},
			Active:             true,
		},
	}
}
