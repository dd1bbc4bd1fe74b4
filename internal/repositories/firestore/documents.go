package firestore

import (
	"time"

	domain "github.com/laundryhub/api/internal/domain"
)

type garmentDocument struct {
	Name     string          `firestore:"name"`
	Category string          `firestore:"category"`
	Pricing  pricingDocument `firestore:"pricing"`
}

type pricingDocument struct {
	Wash     float64 `firestore:"wash"`
	Iron     float64 `firestore:"iron"`
	WashIron float64 `firestore:"washIron"`
	DryClean float64 `firestore:"dryClean"`
}

func (d garmentDocument) domain(id string) domain.GarmentType {
	return domain.GarmentType{
		ID:       id,
		Name:     d.Name,
		Category: domain.GarmentCategory(d.Category),
		Pricing: domain.GarmentPricing{
			Wash:     d.Pricing.Wash,
			Iron:     d.Pricing.Iron,
			WashIron: d.Pricing.WashIron,
			DryClean: d.Pricing.DryClean,
		},
	}
}

func garmentToDocument(g domain.GarmentType) garmentDocument {
	return garmentDocument{
		Name:     g.Name,
		Category: string(g.Category),
		Pricing: pricingDocument{
			Wash:     g.Pricing.Wash,
			Iron:     g.Pricing.Iron,
			WashIron: g.Pricing.WashIron,
			DryClean: g.Pricing.DryClean,
		},
	}
}

type serviceDocument struct {
	Name        string              `firestore:"name"`
	Description string              `firestore:"description"`
	Category    string              `firestore:"category"`
	PriceBasis  string              `firestore:"priceBasis"`
	BasePrice   float64             `firestore:"basePrice"`
	Duration    string              `firestore:"duration"`
	Features    []string            `firestore:"features,omitempty"`
	Multipliers multipliersDocument `firestore:"qualityMultipliers"`
	DressTypes  []string            `firestore:"dressTypes"`
	Active      bool                `firestore:"active"`
}

type multipliersDocument struct {
	Normal  float64 `firestore:"normal"`
	Premium float64 `firestore:"premium"`
	Express float64 `firestore:"express"`
}

func (d serviceDocument) domain(id string) domain.Service {
	return domain.Service{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Category:    domain.ServiceCategory(d.Category),
		PriceBasis:  domain.PriceBasis(d.PriceBasis),
		BasePrice:   d.BasePrice,
		Duration:    d.Duration,
		Features:    d.Features,
		QualityMultipliers: domain.QualityMultipliers{
			Normal:  d.Multipliers.Normal,
			Premium: d.Multipliers.Premium,
			Express: d.Multipliers.Express,
		},
		GarmentTypeIDs: d.DressTypes,
		Active:         d.Active,
	}
}

func serviceToDocument(s domain.Service) serviceDocument {
	return serviceDocument{
		Name:        s.Name,
		Description: s.Description,
		Category:    string(s.Category),
		PriceBasis:  string(s.PriceBasis),
		BasePrice:   s.BasePrice,
		Duration:    s.Duration,
		Features:    s.Features,
		Multipliers: multipliersDocument{
			Normal:  s.QualityMultipliers.Normal,
			Premium: s.QualityMultipliers.Premium,
			Express: s.QualityMultipliers.Express,
		},
		DressTypes: s.GarmentTypeIDs,
		Active:     s.Active,
	}
}

type lineItemDocument struct {
	ServiceID     string `firestore:"serviceId"`
	GarmentTypeID string `firestore:"dressTypeId"`
	Quality       string `firestore:"quality"`
	Quantity      int    `firestore:"quantity"`
}

func itemsToDocuments(items []domain.LineItem) []lineItemDocument {
	out := make([]lineItemDocument, 0, len(items))
	for _, item := range items {
		out = append(out, lineItemDocument{
			ServiceID:     item.ServiceID,
			GarmentTypeID: item.GarmentTypeID,
			Quality:       string(item.Quality),
			Quantity:      item.Quantity,
		})
	}
	return out
}

func documentsToItems(docs []lineItemDocument) []domain.LineItem {
	if len(docs) == 0 {
		return nil
	}
	out := make([]domain.LineItem, 0, len(docs))
	for _, doc := range docs {
		out = append(out, domain.LineItem{
			ServiceID:     doc.ServiceID,
			GarmentTypeID: doc.GarmentTypeID,
			Quality:       domain.QualityTier(doc.Quality),
			Quantity:      doc.Quantity,
		})
	}
	return out
}

type cartDocument struct {
	Items     []lineItemDocument `firestore:"items"`
	UpdatedAt time.Time          `firestore:"updatedAt"`
}

type offerDocument struct {
	Title          string    `firestore:"title"`
	Description    string    `firestore:"description"`
	DiscountType   string    `firestore:"discountType"`
	DiscountValue  float64   `firestore:"discountValue"`
	CouponCode     string    `firestore:"couponCode,omitempty"`
	MinOrderAmount *float64  `firestore:"minOrderAmount,omitempty"`
	ValidFrom      time.Time `firestore:"validFrom"`
	ValidTo        time.Time `firestore:"validTo"`
	IsActive       bool      `firestore:"isActive"`
	UsageLimit     *int      `firestore:"usageLimit,omitempty"`
	UsedCount      int       `firestore:"usedCount"`
	CreatedAt      time.Time `firestore:"createdAt"`
	UpdatedAt      time.Time `firestore:"updatedAt"`
}

func (d offerDocument) domain(id string) domain.Offer {
	return domain.Offer{
		ID:             id,
		Title:          d.Title,
		Description:    d.Description,
		DiscountType:   domain.DiscountType(d.DiscountType),
		DiscountValue:  d.DiscountValue,
		CouponCode:     d.CouponCode,
		MinOrderAmount: d.MinOrderAmount,
		ValidFrom:      d.ValidFrom,
		ValidTo:        d.ValidTo,
		IsActive:       d.IsActive,
		UsageLimit:     d.UsageLimit,
		UsedCount:      d.UsedCount,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func offerToDocument(o domain.Offer) offerDocument {
	return offerDocument{
		Title:          o.Title,
		Description:    o.Description,
		DiscountType:   string(o.DiscountType),
		DiscountValue:  o.DiscountValue,
		CouponCode:     o.CouponCode,
		MinOrderAmount: o.MinOrderAmount,
		ValidFrom:      o.ValidFrom.UTC(),
		ValidTo:        o.ValidTo.UTC(),
		IsActive:       o.IsActive,
		UsageLimit:     o.UsageLimit,
		UsedCount:      o.UsedCount,
		CreatedAt:      o.CreatedAt.UTC(),
		UpdatedAt:      o.UpdatedAt.UTC(),
	}
}

type orderDocument struct {
	UserID         string             `firestore:"userId"`
	ServiceItems   []lineItemDocument `firestore:"serviceItems"`
	PickupDate     string             `firestore:"pickupDate"`
	PickupTime     string             `firestore:"pickupTime"`
	Address        string             `firestore:"address"`
	Notes          string             `firestore:"notes,omitempty"`
	Status         string             `firestore:"status"`
	TotalAmount    float64            `firestore:"totalAmount"`
	OriginalTotal  *float64           `firestore:"originalTotal,omitempty"`
	AppliedOfferID string             `firestore:"appliedOfferId,omitempty"`
	PaymentStatus  string             `firestore:"paymentStatus,omitempty"`
	TransactionID  string             `firestore:"transactionId,omitempty"`
	CreatedAt      time.Time          `firestore:"createdAt"`
	UpdatedAt      time.Time          `firestore:"updatedAt"`
}

func (d orderDocument) domain(id string) domain.Order {
	return domain.Order{
		ID:             id,
		UserID:         d.UserID,
		Items:          documentsToItems(d.ServiceItems),
		Pickup:         domain.PickupDetails{Date: d.PickupDate, Time: d.PickupTime, Address: d.Address},
		Notes:          d.Notes,
		Status:         domain.OrderStatus(d.Status),
		TotalAmount:    d.TotalAmount,
		OriginalTotal:  d.OriginalTotal,
		AppliedOfferID: d.AppliedOfferID,
		PaymentStatus:  domain.PaymentStatus(d.PaymentStatus),
		TransactionID:  d.TransactionID,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func orderToDocument(o domain.Order) orderDocument {
	return orderDocument{
		UserID:         o.UserID,
		ServiceItems:   itemsToDocuments(o.Items),
		PickupDate:     o.Pickup.Date,
		PickupTime:     o.Pickup.Time,
		Address:        o.Pickup.Address,
		Notes:          o.Notes,
		Status:         string(o.Status),
		TotalAmount:    o.TotalAmount,
		OriginalTotal:  o.OriginalTotal,
		AppliedOfferID: o.AppliedOfferID,
		PaymentStatus:  string(o.PaymentStatus),
		TransactionID:  o.TransactionID,
		CreatedAt:      o.CreatedAt.UTC(),
		UpdatedAt:      o.UpdatedAt.UTC(),
	}
}

type notificationDocument struct {
	Title     string    `firestore:"title"`
	Message   string    `firestore:"message"`
	Type      string    `firestore:"type"`
	IsRead    bool      `firestore:"isRead"`
	UserID    string    `firestore:"userId"`
	OfferID   string    `firestore:"offerId,omitempty"`
	OrderID   string    `firestore:"orderId,omitempty"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func (d notificationDocument) domain(id string) domain.Notification {
	return domain.Notification{
		ID:        id,
		Title:     d.Title,
		Message:   d.Message,
		Type:      domain.NotificationType(d.Type),
		IsRead:    d.IsRead,
		UserID:    d.UserID,
		OfferID:   d.OfferID,
		OrderID:   d.OrderID,
		CreatedAt: d.CreatedAt,
	}
}

func notificationToDocument(n domain.Notification) notificationDocument {
	return notificationDocument{
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		UserID:    n.UserID,
		OfferID:   n.OfferID,
		OrderID:   n.OrderID,
		CreatedAt: n.CreatedAt.UTC(),
	}
}

type userDocument struct {
	Email     string    `firestore:"email"`
	Name      string    `firestore:"name"`
	Phone     string    `firestore:"phone,omitempty"`
	Address   string    `firestore:"address,omitempty"`
	Role      string    `firestore:"role"`
	Status    string    `firestore:"status"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func (d userDocument) domain(id string) domain.UserProfile {
	return domain.UserProfile{
		ID:        id,
		Email:     d.Email,
		Name:      d.Name,
		Phone:     d.Phone,
		Address:   d.Address,
		Role:      domain.UserRole(d.Role),
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type paymentDocument struct {
	OrderID       string    `firestore:"orderId"`
	UserID        string    `firestore:"userId"`
	Amount        float64   `firestore:"amount"`
	Currency      string    `firestore:"currency"`
	Method        string    `firestore:"method"`
	Status        string    `firestore:"status"`
	FailureReason string    `firestore:"failureReason,omitempty"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

func (d paymentDocument) domain(txnID string) domain.Payment {
	return domain.Payment{
		TransactionID: txnID,
		OrderID:       d.OrderID,
		UserID:        d.UserID,
		Amount:        d.Amount,
		Currency:      d.Currency,
		Method:        d.Method,
		Status:        domain.PaymentStatus(d.Status),
		FailureReason: d.FailureReason,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}
