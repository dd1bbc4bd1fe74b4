package services

import (
	"context"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/changefeed"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	GarmentType        = domain.GarmentType
	GarmentPricing     = domain.GarmentPricing
	Service            = domain.Service
	Catalog            = domain.Catalog
	LineItem           = domain.LineItem
	LineKey            = domain.LineKey
	Cart               = domain.Cart
	Offer              = domain.Offer
	Order              = domain.Order
	OrderStatus        = domain.OrderStatus
	PickupDetails      = domain.PickupDetails
	Notification       = domain.Notification
	UserProfile        = domain.UserProfile
	Payment            = domain.Payment
	PaymentMethod      = domain.PaymentMethod
	SystemHealthReport = domain.SystemHealthReport
)

// CatalogService serves garment types and services and applies admin price edits.
type CatalogService interface {
	ListGarmentTypes(ctx context.Context) ([]GarmentType, error)
	GetGarmentType(ctx context.Context, id string) (GarmentType, error)
	ListServices(ctx context.Context, filter ServiceListFilter) ([]Service, error)
	GetService(ctx context.Context, id string) (Service, error)
	Snapshot(ctx context.Context) (Catalog, error)
	UpdateGarmentPricing(ctx context.Context, cmd UpdateGarmentPricingCommand) (GarmentType, error)
	SetServiceActive(ctx context.Context, cmd SetServiceActiveCommand) (Service, error)
	EnsureSeeded(ctx context.Context) (bool, error)
}

// CartService manages the per-user cart aggregate.
type CartService interface {
	GetCart(ctx context.Context, userID string) (CartView, error)
	AddItem(ctx context.Context, userID string, item LineItem) (CartView, error)
	UpdateQuantity(ctx context.Context, userID string, key LineKey, quantity int) (CartView, error)
	RemoveItem(ctx context.Context, userID string, key LineKey) (CartView, error)
	Clear(ctx context.Context, userID string) error
	Total(ctx context.Context, userID string) (float64, error)
}

// OfferService manages offers and coupon redemption.
type OfferService interface {
	ListOffers(ctx context.Context) ([]Offer, error)
	ListActiveOffers(ctx context.Context) ([]Offer, error)
	GetOffer(ctx context.Context, id string) (Offer, error)
	ApplyCoupon(ctx context.Context, code string, baseAmount float64) (CouponQuote, error)
	CreateOffer(ctx context.Context, cmd CreateOfferCommand) (Offer, error)
	UpdateOffer(ctx context.Context, cmd UpdateOfferCommand) (Offer, error)
	DeleteOffer(ctx context.Context, id string) error
	RecordRedemption(ctx context.Context, offerID string) (Offer, error)
}

// OrderService owns order creation and the status lifecycle.
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (Order, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	ListUserOrders(ctx context.Context, userID string) ([]Order, error)
	ListOrders(ctx context.Context, filter OrderListFilter) ([]Order, error)
	UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (Order, error)
	AttachPayment(ctx context.Context, cmd AttachPaymentCommand) (Order, error)
	Reorder(ctx context.Context, orderID string, userID string) (CartView, error)
}

// PaymentService runs simulated payments and keeps their records.
type PaymentService interface {
	Methods() []PaymentMethod
	Process(ctx context.Context, cmd ProcessPaymentCommand) (Payment, error)
	GetPayment(ctx context.Context, transactionID string) (Payment, error)
	ListPayments(ctx context.Context, orderID string) ([]Payment, error)
}

// NotificationService appends and serves notifications.
type NotificationService interface {
	Notify(ctx context.Context, cmd NotifyCommand) (Notification, error)
	ListForUser(ctx context.Context, userID string) ([]Notification, error)
	MarkRead(ctx context.Context, cmd NotificationActionCommand) error
	Delete(ctx context.Context, cmd NotificationActionCommand) error
}

// CheckoutService drives quote, order placement and payment for a cart.
type CheckoutService interface {
	Quote(ctx context.Context, cmd QuoteCommand) (CheckoutQuote, error)
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (PlaceOrderResult, error)
}

// UserService manages profile records mirrored from the identity provider.
type UserService interface {
	EnsureProfile(ctx context.Context, cmd EnsureProfileCommand) (UserProfile, error)
	GetProfile(ctx context.Context, userID string) (UserProfile, error)
	ListUsers(ctx context.Context) ([]UserProfile, error)
}

// CounterService produces formatted sequence numbers.
type CounterService interface {
	Next(ctx context.Context, scope, name string, opts CounterGenerationOptions) (CounterValue, error)
	NextOrderID(ctx context.Context, now time.Time) (string, error)
}

// SystemService reports health and build metadata.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}

// ChangePublisher is the change feed sink used after writes.
type ChangePublisher = changefeed.Publisher

// EventPublisher emits domain events to asynchronous consumers.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event DomainEvent) error
}

// ReceiptArchiver stores a receipt for a completed payment and returns its location.
type ReceiptArchiver interface {
	ArchiveReceipt(ctx context.Context, receipt Receipt) (string, error)
}

// Domain event types.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status.changed"
	EventOfferCreated       = "offer.created"
)

// DomainEvent is the payload published for order and offer milestones.
type DomainEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId,omitempty"`
	OfferID    string    `json:"offerId,omitempty"`
	UserID     string    `json:"userId,omitempty"`
	Status     string    `json:"status,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Receipt is the archived record of a paid order.
type Receipt struct {
	OrderID       string        `json:"orderId"`
	TransactionID string        `json:"transactionId"`
	UserID        string        `json:"userId"`
	Method        string        `json:"method"`
	Currency      string        `json:"currency"`
	Lines         []ReceiptLine `json:"lines"`
	Subtotal      float64       `json:"subtotal"`
	Discount      float64       `json:"discount"`
	Total         float64       `json:"total"`
	OfferID       string        `json:"offerId,omitempty"`
	PaidAt        time.Time     `json:"paidAt"`
}

// ReceiptLine is one priced line of a receipt.
type ReceiptLine struct {
	Service   string  `json:"service"`
	Garment   string  `json:"garment"`
	Quality   string  `json:"quality"`
	Quantity  int     `json:"quantity"`
	LinePrice float64 `json:"linePrice"`
}

// ServiceListFilter narrows service listings.
type ServiceListFilter struct {
	ActiveOnly bool
}

// UpdateGarmentPricingCommand replaces only the provided price fields.
type UpdateGarmentPricingCommand struct {
	GarmentTypeID string
	Wash          *float64
	Iron          *float64
	WashIron      *float64
	DryClean      *float64
	ActorID       string
}

// SetServiceActiveCommand toggles service availability.
type SetServiceActiveCommand struct {
	ServiceID string
	Active    bool
	ActorID   string
}

// CartView is a cart with display data resolved from the current catalog.
type CartView struct {
	UserID    string
	Lines     []CartLine
	ItemCount int
	Total     float64
	UpdatedAt time.Time
}

// Items returns the raw line items of the view.
func (v CartView) Items() []LineItem {
	items := make([]LineItem, 0, len(v.Lines))
	for _, line := range v.Lines {
		items = append(items, line.Item)
	}
	return items
}

// CartLine is a cart line with catalog names and prices.
type CartLine struct {
	Key         string
	Item        LineItem
	ServiceName string
	GarmentName string
	UnitPrice   float64
	LinePrice   float64
}

// CouponQuote is the outcome of applying a coupon to an amount.
type CouponQuote struct {
	Offer       Offer
	BaseAmount  float64
	Discount    float64
	FinalAmount float64
}

// CreateOfferCommand carries admin input for a new offer.
type CreateOfferCommand struct {
	Title          string
	Description    string
	DiscountType   domain.DiscountType
	DiscountValue  float64
	CouponCode     string
	MinOrderAmount *float64
	ValidFrom      time.Time
	ValidTo        time.Time
	IsActive       bool
	UsageLimit     *int
	ActorID        string
}

// UpdateOfferCommand carries a partial offer update. Nil fields are left unchanged.
type UpdateOfferCommand struct {
	OfferID        string
	Title          *string
	Description    *string
	DiscountType   *domain.DiscountType
	DiscountValue  *float64
	CouponCode     *string
	MinOrderAmount *float64
	ValidFrom      *time.Time
	ValidTo        *time.Time
	IsActive       *bool
	UsageLimit     *int
	ActorID        string
}

// CreateOrderCommand carries the snapshot persisted for a new order.
type CreateOrderCommand struct {
	UserID         string
	Items          []LineItem
	Pickup         PickupDetails
	Notes          string
	TotalAmount    float64
	OriginalTotal  *float64
	AppliedOfferID string
}

// OrderListFilter narrows admin order listings.
type OrderListFilter struct {
	UserID string
	Status []OrderStatus
}

// UpdateOrderStatusCommand moves an order to a new status.
type UpdateOrderStatusCommand struct {
	OrderID string
	Status  OrderStatus
	ActorID string
}

// AttachPaymentCommand records a payment outcome on an order.
type AttachPaymentCommand struct {
	OrderID       string
	TransactionID string
	Status        domain.PaymentStatus
}

// ProcessPaymentCommand requests a simulated payment for an order.
type ProcessPaymentCommand struct {
	OrderID string
	UserID  string
	Amount  float64
	Method  string
}

// NotifyCommand appends a notification. An empty UserID broadcasts.
type NotifyCommand struct {
	UserID  string
	Title   string
	Message string
	Type    domain.NotificationType
	OfferID string
	OrderID string
}

// NotificationActionCommand targets one notification on behalf of a user.
type NotificationActionCommand struct {
	UserID         string
	NotificationID string
	AllowBroadcast bool
}

// QuoteCommand prices the user's cart, optionally with a coupon.
type QuoteCommand struct {
	UserID     string
	CouponCode string
}

// CheckoutQuote is a priced cart.
type CheckoutQuote struct {
	Cart     CartView
	Subtotal float64
	Discount float64
	Total    float64
	Offer    *Offer
}

// PlaceOrderCommand is the checkout submission.
type PlaceOrderCommand struct {
	UserID        string
	Pickup        PickupDetails
	Notes         string
	CouponCode    string
	PaymentMethod string
}

// PlaceOrderResult bundles the created order with its payment outcome.
type PlaceOrderResult struct {
	Order      Order
	Payment    Payment
	ReceiptURI string
}

// EnsureProfileCommand mirrors identity claims into a profile.
type EnsureProfileCommand struct {
	UserID string
	Email  string
	Name   string
	Phone  string
	Role   domain.UserRole
}

// CounterGenerationOptions controls how counter values are incremented and formatted.
type CounterGenerationOptions struct {
	Step         int64
	PadLength    int
	Prefix       string
	MaxValue     *int64
	InitialValue *int64
}

// CounterValue is a raw counter value with its formatted rendering.
type CounterValue struct {
	Value     int64
	Formatted string
}
