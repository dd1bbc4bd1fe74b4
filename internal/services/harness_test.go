package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/payments"
	"github.com/laundryhub/api/internal/platform/changefeed"
	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/repositories/keyed"
)

type recordingChanges struct {
	mu      sync.Mutex
	changes []changefeed.Change
	err     error
}

func (r *recordingChanges) Publish(_ context.Context, change changefeed.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
	return r.err
}

func (r *recordingChanges) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.changes))
	for _, c := range r.changes {
		out = append(out, c.Key+"/"+string(c.Op))
	}
	return out
}

type recordingEvents struct {
	mu     sync.Mutex
	events []DomainEvent
	err    error
}

func (r *recordingEvents) PublishEvent(_ context.Context, event DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

type recordingLogger struct {
	mu     sync.Mutex
	events []string
}

func (l *recordingLogger) log(_ context.Context, event string, _ map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *recordingLogger) has(event string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events {
		if e == event {
			return true
		}
	}
	return false
}

type stubChargeProvider struct {
	chargeFn func(context.Context, payments.ChargeRequest) (payments.ChargeResult, error)
}

func (s *stubChargeProvider) Charge(ctx context.Context, req payments.ChargeRequest) (payments.ChargeResult, error) {
	if s.chargeFn != nil {
		return s.chargeFn(ctx, req)
	}
	if req.OnStatus != nil {
		req.OnStatus(domain.PaymentStatusProcessing)
	}
	return payments.ChargeResult{TransactionID: req.TransactionID, Status: domain.PaymentStatusCompleted}, nil
}

type stubReceiptArchiver struct {
	receipts []Receipt
	err      error
}

func (s *stubReceiptArchiver) ArchiveReceipt(_ context.Context, receipt Receipt) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.receipts = append(s.receipts, receipt)
	return fmt.Sprintf("gs://receipts/receipts/%s/%s.json", receipt.OrderID, receipt.TransactionID), nil
}

// harness wires every service over an in-memory keyed registry seeded with the default catalog.
type harness struct {
	now      time.Time
	registry *keyed.Registry
	changes  *recordingChanges
	events   *recordingEvents
	logger   *recordingLogger
	provider *stubChargeProvider
	receipts *stubReceiptArchiver

	catalog       CatalogService
	carts         CartService
	notifications NotificationService
	offers        OfferService
	counters      CounterService
	orders        OrderService
	payments      PaymentService
	checkout      CheckoutService
	users         UserService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		now:      time.Date(2025, time.January, 20, 4, 30, 0, 0, time.UTC),
		changes:  &recordingChanges{},
		events:   &recordingEvents{},
		logger:   &recordingLogger{},
		provider: &stubChargeProvider{},
		receipts: &stubReceiptArchiver{},
	}
	clock := func() time.Time { return h.now }

	registry, err := keyed.NewRegistry(keyvalue.NewMemoryStore(), clock)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	h.registry = registry

	idSeq := 0
	nextID := func() string {
		idSeq++
		return fmt.Sprintf("id_%03d", idSeq)
	}

	if h.catalog, err = NewCatalogService(CatalogServiceDeps{
		GarmentTypes: registry.GarmentTypes(),
		Services:     registry.Services(),
		UnitOfWork:   registry,
		Changes:      h.changes,
		Clock:        clock,
		Logger:       h.logger.log,
	}); err != nil {
		t.Fatalf("NewCatalogService: %v", err)
	}
	if _, err := h.catalog.EnsureSeeded(context.Background()); err != nil {
		t.Fatalf("EnsureSeeded: %v", err)
	}
	if h.carts, err = NewCartService(CartServiceDeps{
		Repository: registry.Carts(),
		Catalog:    h.catalog,
		UnitOfWork: registry,
		Changes:    h.changes,
		Clock:      clock,
		Logger:     h.logger.log,
	}); err != nil {
		t.Fatalf("NewCartService: %v", err)
	}
	if h.notifications, err = NewNotificationService(NotificationServiceDeps{
		Repository:  registry.Notifications(),
		Changes:     h.changes,
		Clock:       clock,
		IDGenerator: func() string { return "ntf_" + nextID() },
		Logger:      h.logger.log,
	}); err != nil {
		t.Fatalf("NewNotificationService: %v", err)
	}
	if h.offers, err = NewOfferService(OfferServiceDeps{
		Repository:    registry.Offers(),
		Notifications: h.notifications,
		Events:        h.events,
		Changes:       h.changes,
		Clock:         clock,
		IDGenerator:   func() string { return "off_" + nextID() },
		Logger:        h.logger.log,
	}); err != nil {
		t.Fatalf("NewOfferService: %v", err)
	}
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		ist = time.FixedZone("IST", 5*60*60+30*60)
	}
	if h.counters, err = NewCounterService(CounterServiceDeps{
		Repository: registry.Counters(),
		Clock:      clock,
		Location:   ist,
	}); err != nil {
		t.Fatalf("NewCounterService: %v", err)
	}
	if h.orders, err = NewOrderService(OrderServiceDeps{
		Orders:        registry.Orders(),
		Offers:        h.offers,
		Counters:      h.counters,
		Notifications: h.notifications,
		Carts:         h.carts,
		UnitOfWork:    registry,
		Events:        h.events,
		Changes:       h.changes,
		Clock:         clock,
		Logger:        h.logger.log,
	}); err != nil {
		t.Fatalf("NewOrderService: %v", err)
	}
	manager, err := payments.NewManager(map[string]payments.Provider{payments.SimulatorProviderKey: h.provider})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if h.payments, err = NewPaymentService(PaymentServiceDeps{
		Gateway:    manager,
		Repository: registry.Payments(),
		Timeout:    time.Second,
		Clock:      clock,
		Logger:     h.logger.log,
	}); err != nil {
		t.Fatalf("NewPaymentService: %v", err)
	}
	if h.checkout, err = NewCheckoutService(CheckoutServiceDeps{
		Carts:    h.carts,
		Offers:   h.offers,
		Orders:   h.orders,
		Payments: h.payments,
		Receipts: h.receipts,
		Clock:    clock,
		Logger:   h.logger.log,
	}); err != nil {
		t.Fatalf("NewCheckoutService: %v", err)
	}
	if h.users, err = NewUserService(UserServiceDeps{
		Repository: registry.Users(),
		UnitOfWork: registry,
		Changes:    h.changes,
		Clock:      clock,
		Logger:     h.logger.log,
	}); err != nil {
		t.Fatalf("NewUserService: %v", err)
	}
	return h
}

func (h *harness) addItem(t *testing.T, userID, serviceID, garmentID string, quality domain.QualityTier, qty int) CartView {
	t.Helper()
	view, err := h.carts.AddItem(context.Background(), userID, LineItem{
		ServiceID:     serviceID,
		GarmentTypeID: garmentID,
		Quality:       quality,
		Quantity:      qty,
	})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	return view
}

func (h *harness) createOffer(t *testing.T, cmd CreateOfferCommand) Offer {
	t.Helper()
	if cmd.ValidFrom.IsZero() {
		cmd.ValidFrom = h.now.Add(-24 * time.Hour)
	}
	if cmd.ValidTo.IsZero() {
		cmd.ValidTo = h.now.Add(24 * time.Hour)
	}
	offer, err := h.offers.CreateOffer(context.Background(), cmd)
	if err != nil {
		t.Fatalf("CreateOffer: %v", err)
	}
	return offer
}

func samplePickup() PickupDetails {
	return PickupDetails{Date: "2025-01-21", Time: "10:00-12:00", Address: "12 MG Road, Bengaluru"}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
