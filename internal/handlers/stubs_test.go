package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/auth"
	"github.com/laundryhub/api/internal/services"
)

var testNow = time.Date(2025, time.January, 20, 10, 0, 0, 0, time.UTC)

func authedRequest(method, target, body, uid string, role domain.UserRole) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UID: uid, Role: role}))
	}
	return req
}

type stubCatalogService struct {
	garments    []services.GarmentType
	services    []services.Service
	err         error
	pricingFunc func(ctx context.Context, cmd services.UpdateGarmentPricingCommand) (services.GarmentType, error)
	activeFunc  func(ctx context.Context, cmd services.SetServiceActiveCommand) (services.Service, error)
	lastFilter  services.ServiceListFilter
}

func (s *stubCatalogService) ListGarmentTypes(context.Context) ([]services.GarmentType, error) {
	return s.garments, s.err
}

func (s *stubCatalogService) GetGarmentType(_ context.Context, id string) (services.GarmentType, error) {
	for _, g := range s.garments {
		if g.ID == id {
			return g, nil
		}
	}
	return services.GarmentType{}, services.ErrCatalogNotFound
}

func (s *stubCatalogService) ListServices(_ context.Context, filter services.ServiceListFilter) ([]services.Service, error) {
	s.lastFilter = filter
	if s.err != nil {
		return nil, s.err
	}
	var out []services.Service
	for _, svc := range s.services {
		if filter.ActiveOnly && !svc.Active {
			continue
		}
		out = append(out, svc)
	}
	return out, nil
}

func (s *stubCatalogService) GetService(_ context.Context, id string) (services.Service, error) {
	for _, svc := range s.services {
		if svc.ID == id {
			return svc, nil
		}
	}
	return services.Service{}, services.ErrCatalogNotFound
}

func (s *stubCatalogService) Snapshot(context.Context) (services.Catalog, error) {
	return domain.NewCatalog(s.garments, s.services), s.err
}

func (s *stubCatalogService) UpdateGarmentPricing(ctx context.Context, cmd services.UpdateGarmentPricingCommand) (services.GarmentType, error) {
	if s.pricingFunc != nil {
		return s.pricingFunc(ctx, cmd)
	}
	return services.GarmentType{}, nil
}

func (s *stubCatalogService) SetServiceActive(ctx context.Context, cmd services.SetServiceActiveCommand) (services.Service, error) {
	if s.activeFunc != nil {
		return s.activeFunc(ctx, cmd)
	}
	return services.Service{}, nil
}

func (s *stubCatalogService) EnsureSeeded(context.Context) (bool, error) { return false, nil }

func sampleCatalog() *stubCatalogService {
	return &stubCatalogService{
		garments: []services.GarmentType{
			{ID: "tshirt", Name: "T-shirt", Category: domain.GarmentCategoryCasual, Pricing: services.GarmentPricing{Wash: 30, Iron: 15, WashIron: 40, DryClean: 80}},
		},
		services: []services.Service{
			{
				ID:                 "wash-normal",
				Name:               "Wash (Normal)",
				Category:           domain.ServiceCategoryWashing,
				PriceBasis:         domain.PriceBasisWash,
				QualityMultipliers: domain.DefaultQualityMultipliers(),
				GarmentTypeIDs:     []string{"tshirt"},
				Active:             true,
			},
			{
				ID:                 "steam-press",
				Name:               "Steam Press",
				Category:           domain.ServiceCategoryIroning,
				PriceBasis:         domain.PriceBasisIron,
				QualityMultipliers: domain.DefaultQualityMultipliers(),
				GarmentTypeIDs:     []string{"tshirt"},
				Active:             false,
			},
		},
	}
}

type stubOfferService struct {
	offers     []services.Offer
	applyFunc  func(ctx context.Context, code string, base float64) (services.CouponQuote, error)
	createFunc func(ctx context.Context, cmd services.CreateOfferCommand) (services.Offer, error)
	updateFunc func(ctx context.Context, cmd services.UpdateOfferCommand) (services.Offer, error)
	deleted    []string
}

func (s *stubOfferService) ListOffers(context.Context) ([]services.Offer, error) { return s.offers, nil }

func (s *stubOfferService) ListActiveOffers(context.Context) ([]services.Offer, error) {
	var out []services.Offer
	for _, o := range s.offers {
		if o.IsActive {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOfferService) GetOffer(_ context.Context, id string) (services.Offer, error) {
	for _, o := range s.offers {
		if o.ID == id {
			return o, nil
		}
	}
	return services.Offer{}, services.ErrOfferNotFound
}

func (s *stubOfferService) ApplyCoupon(ctx context.Context, code string, base float64) (services.CouponQuote, error) {
	if s.applyFunc != nil {
		return s.applyFunc(ctx, code, base)
	}
	return services.CouponQuote{}, &services.CouponError{Reason: services.CouponReasonInvalid, Code: code}
}

func (s *stubOfferService) CreateOffer(ctx context.Context, cmd services.CreateOfferCommand) (services.Offer, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, cmd)
	}
	return services.Offer{}, nil
}

func (s *stubOfferService) UpdateOffer(ctx context.Context, cmd services.UpdateOfferCommand) (services.Offer, error) {
	if s.updateFunc != nil {
		return s.updateFunc(ctx, cmd)
	}
	return services.Offer{}, nil
}

func (s *stubOfferService) DeleteOffer(_ context.Context, id string) error {
	for _, o := range s.offers {
		if o.ID == id {
			s.deleted = append(s.deleted, id)
			return nil
		}
	}
	return services.ErrOfferNotFound
}

func (s *stubOfferService) RecordRedemption(context.Context, string) (services.Offer, error) {
	return services.Offer{}, nil
}

type stubCartService struct {
	view       services.CartView
	err        error
	added      []services.LineItem
	updatedKey services.LineKey
	updatedQty int
	cleared    int
	lastUserID string
}

func (s *stubCartService) GetCart(_ context.Context, userID string) (services.CartView, error) {
	s.lastUserID = userID
	return s.view, s.err
}

func (s *stubCartService) AddItem(_ context.Context, userID string, item services.LineItem) (services.CartView, error) {
	s.lastUserID = userID
	s.added = append(s.added, item)
	return s.view, s.err
}

func (s *stubCartService) UpdateQuantity(_ context.Context, userID string, key services.LineKey, quantity int) (services.CartView, error) {
	s.lastUserID = userID
	s.updatedKey = key
	s.updatedQty = quantity
	return s.view, s.err
}

func (s *stubCartService) RemoveItem(ctx context.Context, userID string, key services.LineKey) (services.CartView, error) {
	return s.UpdateQuantity(ctx, userID, key, 0)
}

func (s *stubCartService) Clear(_ context.Context, userID string) error {
	s.lastUserID = userID
	s.cleared++
	return s.err
}

func (s *stubCartService) Total(context.Context, string) (float64, error) { return s.view.Total, s.err }

type stubCheckoutService struct {
	quoteFunc func(ctx context.Context, cmd services.QuoteCommand) (services.CheckoutQuote, error)
	placeFunc func(ctx context.Context, cmd services.PlaceOrderCommand) (services.PlaceOrderResult, error)
	placed    int
}

func (s *stubCheckoutService) Quote(ctx context.Context, cmd services.QuoteCommand) (services.CheckoutQuote, error) {
	if s.quoteFunc != nil {
		return s.quoteFunc(ctx, cmd)
	}
	return services.CheckoutQuote{}, nil
}

func (s *stubCheckoutService) PlaceOrder(ctx context.Context, cmd services.PlaceOrderCommand) (services.PlaceOrderResult, error) {
	s.placed++
	if s.placeFunc != nil {
		return s.placeFunc(ctx, cmd)
	}
	return services.PlaceOrderResult{}, nil
}

type stubOrderService struct {
	orders     []services.Order
	statusFunc func(ctx context.Context, cmd services.UpdateOrderStatusCommand) (services.Order, error)
	reorderFn  func(ctx context.Context, orderID, userID string) (services.CartView, error)
	lastFilter services.OrderListFilter
}

func (s *stubOrderService) CreateOrder(context.Context, services.CreateOrderCommand) (services.Order, error) {
	return services.Order{}, nil
}

func (s *stubOrderService) GetOrder(_ context.Context, id string) (services.Order, error) {
	for _, o := range s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return services.Order{}, services.ErrOrderNotFound
}

func (s *stubOrderService) ListUserOrders(ctx context.Context, userID string) ([]services.Order, error) {
	return s.ListOrders(ctx, services.OrderListFilter{UserID: userID})
}

func (s *stubOrderService) ListOrders(_ context.Context, filter services.OrderListFilter) ([]services.Order, error) {
	s.lastFilter = filter
	var out []services.Order
	for _, o := range s.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *stubOrderService) UpdateStatus(ctx context.Context, cmd services.UpdateOrderStatusCommand) (services.Order, error) {
	if s.statusFunc != nil {
		return s.statusFunc(ctx, cmd)
	}
	return services.Order{}, nil
}

func (s *stubOrderService) AttachPayment(context.Context, services.AttachPaymentCommand) (services.Order, error) {
	return services.Order{}, nil
}

func (s *stubOrderService) Reorder(ctx context.Context, orderID, userID string) (services.CartView, error) {
	if s.reorderFn != nil {
		return s.reorderFn(ctx, orderID, userID)
	}
	return services.CartView{}, nil
}

type stubPaymentService struct {
	payments []services.Payment
}

func (s *stubPaymentService) Methods() []services.PaymentMethod {
	return []services.PaymentMethod{{ID: "upi", Name: "UPI"}, {ID: "card", Name: "Card"}}
}

func (s *stubPaymentService) Process(context.Context, services.ProcessPaymentCommand) (services.Payment, error) {
	return services.Payment{}, nil
}

func (s *stubPaymentService) GetPayment(_ context.Context, txn string) (services.Payment, error) {
	for _, p := range s.payments {
		if p.TransactionID == txn {
			return p, nil
		}
	}
	return services.Payment{}, services.ErrPaymentNotFound
}

func (s *stubPaymentService) ListPayments(context.Context, string) ([]services.Payment, error) {
	return s.payments, nil
}

type stubNotificationService struct {
	list    []services.Notification
	actions []services.NotificationActionCommand
	notify  []services.NotifyCommand
	err     error
}

func (s *stubNotificationService) Notify(_ context.Context, cmd services.NotifyCommand) (services.Notification, error) {
	s.notify = append(s.notify, cmd)
	return services.Notification{ID: "n-new", Title: cmd.Title, Type: cmd.Type, UserID: cmd.UserID, CreatedAt: testNow}, s.err
}

func (s *stubNotificationService) ListForUser(context.Context, string) ([]services.Notification, error) {
	return s.list, s.err
}

func (s *stubNotificationService) MarkRead(_ context.Context, cmd services.NotificationActionCommand) error {
	s.actions = append(s.actions, cmd)
	return s.err
}

func (s *stubNotificationService) Delete(_ context.Context, cmd services.NotificationActionCommand) error {
	s.actions = append(s.actions, cmd)
	return s.err
}

type stubUserService struct {
	ensured []services.EnsureProfileCommand
	users   []services.UserProfile
}

func (s *stubUserService) EnsureProfile(_ context.Context, cmd services.EnsureProfileCommand) (services.UserProfile, error) {
	s.ensured = append(s.ensured, cmd)
	return services.UserProfile{ID: cmd.UserID, Email: cmd.Email, Name: cmd.Name, Role: cmd.Role, Status: "active", CreatedAt: testNow}, nil
}

func (s *stubUserService) GetProfile(context.Context, string) (services.UserProfile, error) {
	return services.UserProfile{}, services.ErrUserNotFound
}

func (s *stubUserService) ListUsers(context.Context) ([]services.UserProfile, error) {
	return s.users, nil
}

type stubSystemService struct {
	report services.SystemHealthReport
	err    error
}

func (s *stubSystemService) HealthReport(context.Context) (services.SystemHealthReport, error) {
	return s.report, s.err
}

var (
	_ services.CatalogService      = (*stubCatalogService)(nil)
	_ services.OfferService        = (*stubOfferService)(nil)
	_ services.CartService         = (*stubCartService)(nil)
	_ services.CheckoutService     = (*stubCheckoutService)(nil)
	_ services.OrderService        = (*stubOrderService)(nil)
	_ services.PaymentService      = (*stubPaymentService)(nil)
	_ services.NotificationService = (*stubNotificationService)(nil)
	_ services.UserService         = (*stubUserService)(nil)
	_ services.SystemService       = (*stubSystemService)(nil)
)
