package keyed

import (
	"time"

	domain "github.com/laundryhub/api/internal/domain"
)

type garmentRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Pricing  struct {
		Wash     float64 `json:"wash"`
		Iron     float64 `json:"iron"`
		WashIron float64 `json:"washIron"`
		DryClean float64 `json:"dryClean"`
	} `json:"pricing"`
}

func garmentToRecord(g domain.GarmentType) garmentRecord {
	rec := garmentRecord{ID: g.ID, Name: g.Name, Category: string(g.Category)}
	rec.Pricing.Wash = g.Pricing.Wash
	rec.Pricing.Iron = g.Pricing.Iron
	rec.Pricing.WashIron = g.Pricing.WashIron
	rec.Pricing.DryClean = g.Pricing.DryClean
	return rec
}

func (r garmentRecord) domain() domain.GarmentType {
	return domain.GarmentType{
		ID:       r.ID,
		Name:     r.Name,
		Category: domain.GarmentCategory(r.Category),
		Pricing: domain.GarmentPricing{
			Wash:     r.Pricing.Wash,
			Iron:     r.Pricing.Iron,
			WashIron: r.Pricing.WashIron,
			DryClean: r.Pricing.DryClean,
		},
	}
}

type serviceRecord struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Category           string             `json:"category"`
	PriceBasis         string             `json:"priceBasis,omitempty"`
	BasePrice          float64            `json:"basePrice"`
	Duration           string             `json:"duration"`
	Features           []string           `json:"features,omitempty"`
	QualityMultipliers map[string]float64 `json:"qualityMultipliers"`
	DressTypes         []string           `json:"dressTypes"`
	Active             bool               `json:"active"`
}

func serviceToRecord(s domain.Service) serviceRecord {
	return serviceRecord{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Category:    string(s.Category),
		PriceBasis:  string(s.PriceBasis),
		BasePrice:   s.BasePrice,
		Duration:    s.Duration,
		Features:    append([]string(nil), s.Features...),
		QualityMultipliers: map[string]float64{
			string(domain.QualityNormal):  s.QualityMultipliers.Normal,
			string(domain.QualityPremium): s.QualityMultipliers.Premium,
			string(domain.QualityExpress): s.QualityMultipliers.Express,
		},
		DressTypes: append([]string(nil), s.GarmentTypeIDs...),
		Active:     s.Active,
	}
}

func (r serviceRecord) domain() domain.Service {
	return domain.Service{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Category:    domain.ServiceCategory(r.Category),
		PriceBasis:  domain.PriceBasis(r.PriceBasis),
		BasePrice:   r.BasePrice,
		Duration:    r.Duration,
		Features:    append([]string(nil), r.Features...),
		QualityMultipliers: domain.QualityMultipliers{
			Normal:  r.QualityMultipliers[string(domain.QualityNormal)],
			Premium: r.QualityMultipliers[string(domain.QualityPremium)],
			Express: r.QualityMultipliers[string(domain.QualityExpress)],
		},
		GarmentTypeIDs: append([]string(nil), r.DressTypes...),
		Active:         r.Active,
	}
}

type lineItemRecord struct {
	ServiceID     string `json:"serviceId"`
	GarmentTypeID string `json:"dressTypeId"`
	Quality       string `json:"quality"`
	Quantity      int    `json:"quantity"`
}

func itemsToRecords(items []domain.LineItem) []lineItemRecord {
	out := make([]lineItemRecord, 0, len(items))
	for _, item := range items {
		out = append(out, lineItemRecord{
			ServiceID:     item.ServiceID,
			GarmentTypeID: item.GarmentTypeID,
			Quality:       string(item.Quality),
			Quantity:      item.Quantity,
		})
	}
	return out
}

func recordsToItems(records []lineItemRecord) []domain.LineItem {
	if len(records) == 0 {
		return nil
	}
	out := make([]domain.LineItem, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.LineItem{
			ServiceID:     rec.ServiceID,
			GarmentTypeID: rec.GarmentTypeID,
			Quality:       domain.QualityTier(rec.Quality),
			Quantity:      rec.Quantity,
		})
	}
	return out
}

type cartRecord struct {
	UserID    string           `json:"userId"`
	Items     []lineItemRecord `json:"items"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

type offerRecord struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	DiscountType   string    `json:"discountType"`
	DiscountValue  float64   `json:"discountValue"`
	CouponCode     string    `json:"couponCode,omitempty"`
	MinOrderAmount *float64  `json:"minOrderAmount,omitempty"`
	ValidFrom      time.Time `json:"validFrom"`
	ValidTo        time.Time `json:"validTo"`
	IsActive       bool      `json:"isActive"`
	UsageLimit     *int      `json:"usageLimit,omitempty"`
	UsedCount      int       `json:"usedCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func offerToRecord(o domain.Offer) offerRecord {
	return offerRecord{
		ID:             o.ID,
		Title:          o.Title,
		Description:    o.Description,
		DiscountType:   string(o.DiscountType),
		DiscountValue:  o.DiscountValue,
		CouponCode:     o.CouponCode,
		MinOrderAmount: o.MinOrderAmount,
		ValidFrom:      o.ValidFrom,
		ValidTo:        o.ValidTo,
		IsActive:       o.IsActive,
		UsageLimit:     o.UsageLimit,
		UsedCount:      o.UsedCount,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (r offerRecord) domain() domain.Offer {
	return domain.Offer{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description,
		DiscountType:   domain.DiscountType(r.DiscountType),
		DiscountValue:  r.DiscountValue,
		CouponCode:     r.CouponCode,
		MinOrderAmount: r.MinOrderAmount,
		ValidFrom:      r.ValidFrom,
		ValidTo:        r.ValidTo,
		IsActive:       r.IsActive,
		UsageLimit:     r.UsageLimit,
		UsedCount:      r.UsedCount,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type orderRecord struct {
	ID             string           `json:"id"`
	UserID         string           `json:"userId"`
	ServiceItems   []lineItemRecord `json:"serviceItems"`
	PickupDate     string           `json:"pickupDate"`
	PickupTime     string           `json:"pickupTime"`
	Address        string           `json:"address"`
	Notes          string           `json:"notes,omitempty"`
	Status         string           `json:"status"`
	TotalAmount    float64          `json:"totalAmount"`
	OriginalTotal  *float64         `json:"originalTotal,omitempty"`
	AppliedOfferID string           `json:"appliedOfferId,omitempty"`
	PaymentStatus  string           `json:"paymentStatus,omitempty"`
	TransactionID  string           `json:"transactionId,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func orderToRecord(o domain.Order) orderRecord {
	return orderRecord{
		ID:             o.ID,
		UserID:         o.UserID,
		ServiceItems:   itemsToRecords(o.Items),
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
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func (r orderRecord) domain() domain.Order {
	return domain.Order{
		ID:             r.ID,
		UserID:         r.UserID,
		Items:          recordsToItems(r.ServiceItems),
		Pickup:         domain.PickupDetails{Date: r.PickupDate, Time: r.PickupTime, Address: r.Address},
		Notes:          r.Notes,
		Status:         domain.OrderStatus(r.Status),
		TotalAmount:    r.TotalAmount,
		OriginalTotal:  r.OriginalTotal,
		AppliedOfferID: r.AppliedOfferID,
		PaymentStatus:  domain.PaymentStatus(r.PaymentStatus),
		TransactionID:  r.TransactionID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type notificationRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"isRead"`
	UserID    string    `json:"userId,omitempty"`
	OfferID   string    `json:"offerId,omitempty"`
	OrderID   string    `json:"orderId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func notificationToRecord(n domain.Notification) notificationRecord {
	return notificationRecord{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		UserID:    n.UserID,
		OfferID:   n.OfferID,
		OrderID:   n.OrderID,
		CreatedAt: n.CreatedAt,
	}
}

func (r notificationRecord) domain() domain.Notification {
	return domain.Notification{
		ID:        r.ID,
		Title:     r.Title,
		Message:   r.Message,
		Type:      domain.NotificationType(r.Type),
		IsRead:    r.IsRead,
		UserID:    r.UserID,
		OfferID:   r.OfferID,
		OrderID:   r.OrderID,
		CreatedAt: r.CreatedAt,
	}
}

type userRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func userToRecord(u domain.UserProfile) userRecord {
	return userRecord{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Address:   u.Address,
		Role:      string(u.Role),
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r userRecord) domain() domain.UserProfile {
	return domain.UserProfile{
		ID:        r.ID,
		Email:     r.Email,
		Name:      r.Name,
		Phone:     r.Phone,
		Address:   r.Address,
		Role:      domain.UserRole(r.Role),
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type paymentRecord struct {
	TransactionID string    `json:"transactionId"`
	OrderID       string    `json:"orderId"`
	UserID        string    `json:"userId"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failureReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func paymentToRecord(p domain.Payment) paymentRecord {
	return paymentRecord{
		TransactionID: p.TransactionID,
		OrderID:       p.OrderID,
		UserID:        p.UserID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Method:        p.Method,
		Status:        string(p.Status),
		FailureReason: p.FailureReason,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (r paymentRecord) domain() domain.Payment {
	return domain.Payment{
		TransactionID: r.TransactionID,
		OrderID:       r.OrderID,
		UserID:        r.UserID,
		Amount:        r.Amount,
		Currency:      r.Currency,
		Method:        r.Method,
		Status:        domain.PaymentStatus(r.Status),
		FailureReason: r.FailureReason,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
