package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/laundryhub/api/internal/payments"
	"github.com/laundryhub/api/internal/platform/config"
	"github.com/laundryhub/api/internal/repositories"
	"github.com/laundryhub/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon.
type Services struct {
	Catalog       services.CatalogService
	Carts         services.CartService
	Offers        services.OfferService
	Orders        services.OrderService
	Payments      services.PaymentService
	Notifications services.NotificationService
	Checkout      services.CheckoutService
	Users         services.UserService
	Counters      services.CounterService
	System        services.SystemService
}

// Infrastructure carries the adapters built by main. Nil members disable the matching
// side effect (events, receipts, change notices); Gateway and Health are required.
type Infrastructure struct {
	Gateway  *payments.Manager
	Health   repositories.HealthRepository
	Changes  services.ChangePublisher
	Events   services.EventPublisher
	Receipts services.ReceiptArchiver
	Build    services.BuildInfo
	Clock    func() time.Time
	Logger   func(ctx context.Context, event string, fields map[string]any)
}

// Container wires repositories and services for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
}

// NewContainer constructs the runtime dependencies. Tests can supply an in-memory keyed registry.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, infra Infrastructure) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}
	if infra.Gateway == nil {
		return nil, errors.New("payment gateway is required")
	}
	if infra.Health == nil {
		return nil, errors.New("health repository is required")
	}
	if infra.Clock == nil {
		infra.Clock = time.Now
	}

	svc, err := buildServices(reg, cfg, infra)
	if err != nil {
		return nil, err
	}

	seeded, err := svc.Catalog.EnsureSeeded(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	if seeded && infra.Logger != nil {
		infra.Logger(ctx, "catalog.seeded", map[string]any{"store": cfg.Store.Driver})
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Services:     svc,
	}, nil
}

// Close releases repository clients.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(reg repositories.Registry, cfg config.Config, infra Infrastructure) (Services, error) {
	var svc Services
	clock := infra.Clock

	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
		GarmentTypes: reg.GarmentTypes(),
		Services:     reg.Services(),
		UnitOfWork:   reg,
		Changes:      infra.Changes,
		Clock:        clock,
		Logger:       infra.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalog = catalogSvc

	cartSvc, err := services.NewCartService(services.CartServiceDeps{
		Repository: reg.Carts(),
		Catalog:    catalogSvc,
		UnitOfWork: reg,
		Changes:    infra.Changes,
		Clock:      clock,
		Logger:     infra.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build cart service: %w", err)
	}
	svc.Carts = cartSvc

	notificationSvc, err := services.NewNotificationService(services.NotificationServiceDeps{
		Repository: reg.Notifications(),
		Changes:    infra.Changes,
		Clock:      clock,
		Logger:     infra.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build notification service: %w", err)
	}
	svc.Notifications = notificationSvc

	offerSvc, err := services.NewOfferService(services.OfferServiceDeps{
		Repository:    reg.Offers(),
		Notifications: notificationSvc,
		Events:        infra.Events,
		Changes:       infra.Changes,
		Clock:         clock,
		Logger:        infra.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build offer service: %w", err)
	}
	svc.Offers = offerSvc

	counterSvc, err := services.NewCounterService(services.CounterServiceDeps{
		Repository: reg.Counters(),
		Clock:      clock,
		Location:   cfg.Orders.Location(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build counter service: %w", err)
	}
	svc.Counters = counterSvc

	orderSvc, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:        reg.Orders(),
		Offers:        offerSvc,
		Counters:      counterSvc,
		Notifications: notificationSvc,
		Carts:         cartSvc,
		UnitOfWork:    reg,
		Events:        infra.Events,
		Changes:       infra.Changes,
		Clock:         clock,
		Logger:        infra.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build order service: %w", err)
	}
	svc.Orders = orderSvc

	paymentSvc, err := services.NewPaymentService(services.PaymentServiceDeps{
		Gateway:    infra.Gateway,
		Repository: reg.Payments(),
		Timeout:    cfg.Payments.Timeout,
		Clock:      clock,
		Logger:     infra.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build payment service: %w", err)
	}
	svc.Payments = paymentSvc

	checkoutSvc, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Carts:    cartSvc,
		Offers:   offerSvc,
		Orders:   orderSvc,
		Payments: paymentSvc,
		Receipts: infra.Receipts,
		Clock:    clock,
		Logger:   infra.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build checkout service: %w", err)
	}
	svc.Checkout = checkoutSvc

	userSvc, err := services.NewUserService(services.UserServiceDeps{
		Repository: reg.Users(),
		UnitOfWork: reg,
		Changes:    infra.Changes,
		Clock:      clock,
		Logger:     infra.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build user service: %w", err)
	}
	svc.Users = userSvc

	systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
		HealthRepository: infra.Health,
		Clock:            clock,
		Build:            infra.Build,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build system service: %w", err)
	}
	svc.System = systemSvc

	return svc, nil
}
