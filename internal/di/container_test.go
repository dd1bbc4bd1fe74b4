package di

import (
	"context"
	"strings"
	"testing"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/payments"
	"github.com/laundryhub/api/internal/platform/changefeed"
	"github.com/laundryhub/api/internal/platform/config"
	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/repositories"
	"github.com/laundryhub/api/internal/repositories/keyed"
	"github.com/laundryhub/api/internal/services"
)

func newTestContainer(t *testing.T, broker changefeed.Publisher) *Container {
	t.Helper()
	now := time.Date(2025, time.January, 20, 4, 30, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := keyvalue.NewMemoryStore()
	reg, err := keyed.NewRegistry(store, clock)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	simulator := payments.NewSimulator(payments.SimulatorOptions{
		SuccessRate: 1,
		Rand:        func() float64 { return 0.5 },
		Sleep:       func(context.Context, time.Duration) error { return nil },
		Clock:       clock,
	})
	gateway, err := payments.NewManager(map[string]payments.Provider{payments.SimulatorProviderKey: simulator})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	health, err := repositories.NewDependencyHealthRepository([]repositories.DependencyCheck{
		{Name: "store", Check: store.Ping},
	}, repositories.WithDependencyClock(clock))
	if err != nil {
		t.Fatalf("NewDependencyHealthRepository: %v", err)
	}

	cfg := config.Config{
		Store:    config.StoreConfig{Driver: config.StoreDriverMemory},
		Payments: config.PaymentConfig{Timeout: time.Second},
		Orders:   config.OrderConfig{BusinessTimezone: "Asia/Kolkata"},
	}
	container, err := NewContainer(context.Background(), cfg, reg, Infrastructure{
		Gateway: gateway,
		Health:  health,
		Changes: broker,
		Build:   services.BuildInfo{Version: "test", Environment: "local", StartedAt: now},
		Clock:   clock,
	})
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	return container
}

func TestNewContainerRequiresCollaborators(t *testing.T) {
	if _, err := NewContainer(context.Background(), config.Config{}, nil, Infrastructure{}); err == nil {
		t.Fatalf("expected error without registry")
	}
	reg, err := keyed.NewRegistry(keyvalue.NewMemoryStore(), time.Now)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if _, err := NewContainer(context.Background(), config.Config{}, reg, Infrastructure{}); err == nil {
		t.Fatalf("expected error without payment gateway")
	}
}

func TestContainerSeedsCatalogAndPlacesOrder(t *testing.T) {
	broker := changefeed.NewMemoryBroker(64)
	defer broker.Close()
	container := newTestContainer(t, broker)
	defer container.Close(context.Background())

	changes, err := broker.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	ctx := context.Background()
	svc := container.Services

	garments, err := svc.Catalog.ListGarmentTypes(ctx)
	if err != nil || len(garments) == 0 {
		t.Fatalf("expected seeded garments, got %d (%v)", len(garments), err)
	}

	if _, err := svc.Carts.AddItem(ctx, "user-1", services.LineItem{
		ServiceID:     "wash-normal",
		GarmentTypeID: "tshirt",
		Quality:       domain.QualityNormal,
		Quantity:      2,
	}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	result, err := svc.Checkout.PlaceOrder(ctx, services.PlaceOrderCommand{
		UserID:        "user-1",
		Pickup:        services.PickupDetails{Date: "2025-01-21", Time: "10:00-12:00", Address: "12 MG Road"},
		PaymentMethod: payments.MethodUPI,
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if !strings.HasPrefix(result.Order.ID, "ORD-20250120-") {
		t.Fatalf("unexpected order id %q", result.Order.ID)
	}
	if result.Payment.Status != domain.PaymentStatusCompleted || result.Order.TotalAmount != 60 {
		t.Fatalf("unexpected result %+v", result)
	}

	cart, err := svc.Carts.GetCart(ctx, "user-1")
	if err != nil || len(cart.Lines) != 0 {
		t.Fatalf("expected cart cleared, got %+v (%v)", cart, err)
	}

	report, err := svc.System.HealthReport(ctx)
	if err != nil || report.Status != domain.HealthStatusOK {
		t.Fatalf("unexpected health report %+v (%v)", report, err)
	}

	seen := map[string]bool{}
	for len(changes) > 0 {
		seen[(<-changes).Key] = true
	}
	if !seen[changefeed.KeyOrders] || !seen[changefeed.KeyCart] {
		t.Fatalf("expected order and cart changes, got %v", seen)
	}
}
