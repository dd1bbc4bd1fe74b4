package handlers

import (
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/services"
)

type garmentTypePayload struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Category string             `json:"category"`
	Pricing  garmentPricingJSON `json:"pricing"`
}

type garmentPricingJSON struct {
	Wash     float64 `json:"wash"`
	Iron     float64 `json:"iron"`
	WashIron float64 `json:"washIron"`
	DryClean float64 `json:"dryClean"`
}

func buildGarmentTypePayload(g domain.GarmentType) garmentTypePayload {
	return garmentTypePayload{
		ID:       g.ID,
		Name:     g.Name,
		Category: string(g.Category),
		Pricing: garmentPricingJSON{
			Wash:     g.Pricing.Wash,
			Iron:     g.Pricing.Iron,
			WashIron: g.Pricing.WashIron,
			DryClean: g.Pricing.DryClean,
		},
	}
}

type servicePayload struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	Category           string             `json:"category"`
	PriceBasis         string             `json:"priceBasis"`
	BasePrice          float64            `json:"basePrice"`
	Duration           string             `json:"duration,omitempty"`
	Features           []string           `json:"features,omitempty"`
	QualityMultipliers map[string]float64 `json:"qualityMultipliers"`
	GarmentTypeIDs     []string           `json:"garmentTypeIds"`
	Active             bool               `json:"active"`
}

func buildServicePayload(s domain.Service) servicePayload {
	return servicePayload{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Category:    string(s.Category),
		PriceBasis:  string(s.Basis()),
		BasePrice:   s.BasePrice,
		Duration:    s.Duration,
		Features:    s.Features,
		QualityMultipliers: map[string]float64{
			string(domain.QualityNormal):  s.QualityMultipliers.Normal,
			string(domain.QualityPremium): s.QualityMultipliers.Premium,
			string(domain.QualityExpress): s.QualityMultipliers.Express,
		},
		GarmentTypeIDs: s.GarmentTypeIDs,
		Active:         s.Active,
	}
}

type lineItemPayload struct {
	ServiceID     string `json:"serviceId"`
	GarmentTypeID string `json:"garmentTypeId"`
	Quality       string `json:"quality"`
	Quantity      int    `json:"quantity"`
}

func (p lineItemPayload) toDomain() domain.LineItem {
	return domain.LineItem{
		ServiceID:     p.ServiceID,
		GarmentTypeID: p.GarmentTypeID,
		Quality:       domain.QualityTier(p.Quality),
		Quantity:      p.Quantity,
	}
}

func buildLineItems(items []domain.LineItem) []lineItemPayload {
	out := make([]lineItemPayload, 0, len(items))
	for _, item := range items {
		out = append(out, lineItemPayload{
			ServiceID:     item.ServiceID,
			GarmentTypeID: item.GarmentTypeID,
			Quality:       string(item.Quality),
			Quantity:      item.Quantity,
		})
	}
	return out
}

type cartLinePayload struct {
	Key         string  `json:"key"`
	ServiceID   string  `json:"serviceId"`
	ServiceName string  `json:"serviceName"`
	GarmentID   string  `json:"garmentTypeId"`
	GarmentName string  `json:"garmentName"`
	Quality     string  `json:"quality"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	LinePrice   float64 `json:"linePrice"`
}

type cartPayload struct {
	Items     []cartLinePayload `json:"items"`
	ItemCount int               `json:"itemCount"`
	Total     float64           `json:"total"`
	UpdatedAt *time.Time        `json:"updatedAt,omitempty"`
}

func buildCartPayload(view services.CartView) cartPayload {
	payload := cartPayload{
		Items:     make([]cartLinePayload, 0, len(view.Lines)),
		ItemCount: view.ItemCount,
		Total:     view.Total,
	}
	for _, line := range view.Lines {
		payload.Items = append(payload.Items, cartLinePayload{
			Key:         line.Key,
			ServiceID:   line.Item.ServiceID,
			ServiceName: line.ServiceName,
			GarmentID:   line.Item.GarmentTypeID,
			GarmentName: line.GarmentName,
			Quality:     string(line.Item.Quality),
			Quantity:    line.Item.Quantity,
			UnitPrice:   line.UnitPrice,
			LinePrice:   line.LinePrice,
		})
	}
	if !view.UpdatedAt.IsZero() {
		updated := view.UpdatedAt.UTC()
		payload.UpdatedAt = &updated
	}
	return payload
}

type offerPayload struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	DiscountType   string    `json:"discountType"`
	DiscountValue  float64   `json:"discountValue"`
	CouponCode     string    `json:"couponCode,omitempty"`
	MinOrderAmount *float64  `json:"minOrderAmount,omitempty"`
	ValidFrom      time.Time `json:"validFrom"`
	ValidTo        time.Time `json:"validTo"`
	IsActive       bool      `json:"isActive"`
	UsageLimit     *int      `json:"usageLimit,omitempty"`
	UsedCount      int       `json:"usedCount"`
}

func buildOfferPayload(o domain.Offer) offerPayload {
	return offerPayload{
		ID:             o.ID,
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
	}
}


type pickupPayload struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Address string `json:"address"`
}

type orderPayload struct {
	ID             string            `json:"id"`
	UserID         string            `json:"userId"`
	Items          []lineItemPayload `json:"items"`
	Pickup         pickupPayload     `json:"pickup"`
	Notes          string            `json:"notes,omitempty"`
	Status         string            `json:"status"`
	StatusLabel    string            `json:"statusLabel"`
	TotalAmount    float64           `json:"totalAmount"`
	OriginalTotal  *float64          `json:"originalTotal,omitempty"`
	AppliedOfferID string            `json:"appliedOfferId,omitempty"`
	PaymentStatus  string            `json:"paymentStatus,omitempty"`
	TransactionID  string            `json:"transactionId,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func buildOrderPayload(o domain.Order) orderPayload {
	return orderPayload{
		ID:             o.ID,
		UserID:         o.UserID,
		Items:          buildLineItems(o.Items),
		Pickup:         pickupPayload{Date: o.Pickup.Date, Time: o.Pickup.Time, Address: o.Pickup.Address},
		Notes:          o.Notes,
		Status:         string(o.Status),
		StatusLabel:    o.Status.Label(),
		TotalAmount:    o.TotalAmount,
		OriginalTotal:  o.OriginalTotal,
		AppliedOfferID: o.AppliedOfferID,
		PaymentStatus:  string(o.PaymentStatus),
		TransactionID:  o.TransactionID,
		CreatedAt:      o.CreatedAt.UTC(),
		UpdatedAt:      o.UpdatedAt.UTC(),
	}
}


type paymentPayload struct {
	TransactionID string    `json:"transactionId"`
	OrderID       string    `json:"orderId"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failureReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func buildPaymentPayload(p domain.Payment) paymentPayload {
	return paymentPayload{
		TransactionID: p.TransactionID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Method:        p.Method,
		Status:        string(p.Status),
		FailureReason: p.FailureReason,
		CreatedAt:     p.CreatedAt.UTC(),
	}
}

type notificationPayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	Broadcast bool      `json:"broadcast"`
	OfferID   string    `json:"offerId,omitempty"`
	OrderID   string    `json:"orderId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func buildNotificationPayload(n domain.Notification) notificationPayload {
	return notificationPayload{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		Broadcast: n.Broadcast(),
		OfferID:   n.OfferID,
		OrderID:   n.OrderID,
		CreatedAt: n.CreatedAt.UTC(),
	}
}

type profilePayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func buildProfilePayload(p domain.UserProfile) profilePayload {
	return profilePayload{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Phone:     p.Phone,
		Address:   p.Address,
		Role:      string(p.Role),
		Status:    p.Status,
		CreatedAt: p.CreatedAt.UTC(),
	}
}

func mapSlice[T, P any](items []T, build func(T) P) []P {
	out := make([]P, 0, len(items))
	for _, item := range items {
		out = append(out, build(item))
	}
	return out
}
