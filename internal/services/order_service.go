package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/changefeed"
	"github.com/laundryhub/api/internal/platform/textutil"
	"github.com/laundryhub/api/internal/repositories"
)

const maxOrderNotesLength = 2000

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order could not be located.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderInvalidState indicates an invalid status transition was attempted.
	ErrOrderInvalidState = errors.New("order: invalid status transition")
	// ErrOrderConflict indicates optimistic concurrency conflicts or duplicates.
	ErrOrderConflict = errors.New("order: conflict")
	// ErrOrderUnavailable indicates the order store could not be reached.
	ErrOrderUnavailable = errors.New("order: unavailable")
)

type offerRedeemer interface {
	RecordRedemption(ctx context.Context, offerID string) (Offer, error)
}

type orderIDGenerator interface {
	NextOrderID(ctx context.Context, now time.Time) (string, error)
}

type orderNotifier interface {
	Notify(ctx context.Context, cmd NotifyCommand) (Notification, error)
}

type cartRefiller interface {
	Clear(ctx context.Context, userID string) error
	AddItem(ctx context.Context, userID string, item LineItem) (CartView, error)
	GetCart(ctx context.Context, userID string) (CartView, error)
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders        repositories.OrderRepository
	Offers        offerRedeemer
	Counters      orderIDGenerator
	Notifications orderNotifier
	Carts         cartRefiller
	UnitOfWork    repositories.UnitOfWork
	Events        EventPublisher
	Changes       ChangePublisher
	Clock         func() time.Time
	Logger        func(ctx context.Context, event string, fields map[string]any)
}

type orderService struct {
	orders        repositories.OrderRepository
	offers        offerRedeemer
	counters      orderIDGenerator
	notifications orderNotifier
	carts         cartRefiller
	unitOfWork    repositories.UnitOfWork
	events        EventPublisher
	changes       changeNotifier
	clock         func() time.Time
	logger        func(context.Context, string, map[string]any)
}

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Counters == nil {
		return nil, errors.New("order service: counter service is required")
	}

	unit := deps.UnitOfWork
	if unit == nil {
		unit = noopUnitOfWork{}
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := deps.Logger
	if logger == nil {
		logger = noopLogger
	}

	now := func() time.Time { return clock().UTC() }
	return &orderService{
		orders:        deps.Orders,
		offers:        deps.Offers,
		counters:      deps.Counters,
		notifications: deps.Notifications,
		carts:         deps.Carts,
		unitOfWork:    unit,
		events:        deps.Events,
		changes:       changeNotifier{publisher: deps.Changes, logger: logger, now: now},
		clock:         now,
		logger:        logger,
	}, nil
}

// CreateOrder persists a pending order from a line item snapshot. When an offer is applied its
// usage count is incremented in the same unit of work. The cart is left untouched.
func (s *orderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (Order, error) {
	order, err := s.buildOrder(cmd)
	if err != nil {
		return Order{}, err
	}
	if order.AppliedOfferID != "" && s.offers == nil {
		return Order{}, fmt.Errorf("%w: offers are not configured", ErrOrderInvalidInput)
	}

	now := s.clock()
	order.CreatedAt = now
	order.UpdatedAt = now

	// The id is drawn inside the unit of work so a failed creation leaves no gap in the sequence.
	err = s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		if order.AppliedOfferID != "" {
			if _, err := s.offers.RecordRedemption(txCtx, order.AppliedOfferID); err != nil {
				return err
			}
		}
		id, err := s.counters.NextOrderID(txCtx, now)
		if err != nil {
			return fmt.Errorf("order: allocate id: %w", err)
		}
		order.ID = id
		if err := s.orders.Insert(txCtx, order); err != nil {
			return s.mapRepositoryError(err)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	s.logger(ctx, "order.created", map[string]any{
		"orderId": order.ID,
		"userId":  order.UserID,
		"total":   order.TotalAmount,
		"offerId": order.AppliedOfferID,
	})
	s.changes.publish(ctx, changefeed.KeyOrders, order.ID, changefeed.OpCreate)
	if order.AppliedOfferID != "" {
		s.changes.publish(ctx, changefeed.KeyOffers, order.AppliedOfferID, changefeed.OpUpdate)
	}
	s.publishEvent(ctx, DomainEvent{
		Type:       EventOrderCreated,
		OrderID:    order.ID,
		OfferID:    order.AppliedOfferID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		Amount:     order.TotalAmount,
		OccurredAt: now,
	})
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return Order{}, s.mapRepositoryError(err)
	}
	return order, nil
}

func (s *orderService) ListUserOrders(ctx context.Context, userID string) ([]Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}
	return s.ListOrders(ctx, OrderListFilter{UserID: userID})
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderListFilter) ([]Order, error) {
	for _, status := range filter.Status {
		if !status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, status)
		}
	}
	orders, err := s.orders.List(ctx, repositories.OrderListFilter{
		UserID: strings.TrimSpace(filter.UserID),
		Status: filter.Status,
	})
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// UpdateStatus applies a legal transition and notifies the owner. Setting the current status
// again changes nothing and sends no notification.
func (s *orderService) UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) (Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	target := domain.OrderStatus(strings.ToLower(strings.TrimSpace(string(cmd.Status))))
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if !target.Valid() {
		return Order{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, cmd.Status)
	}

	var (
		order    Order
		previous OrderStatus
		changed  bool
	)
	now := s.clock()
	err := s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return s.mapRepositoryError(err)
		}
		order = current
		previous = current.Status
		if current.Status == target {
			return nil
		}
		if !current.Status.CanTransition(target) {
			return fmt.Errorf("%w: %s -> %s", ErrOrderInvalidState, current.Status, target)
		}
		order.Status = target
		order.UpdatedAt = now
		if err := s.orders.Update(txCtx, order); err != nil {
			return s.mapRepositoryError(err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	if !changed {
		return order, nil
	}

	s.logger(ctx, "order.status.changed", map[string]any{
		"orderId": order.ID,
		"from":    string(previous),
		"to":      string(order.Status),
		"actorId": strings.TrimSpace(cmd.ActorID),
	})
	s.changes.publish(ctx, changefeed.KeyOrders, order.ID, changefeed.OpUpdate)
	s.notifyOwner(ctx, order)
	s.publishEvent(ctx, DomainEvent{
		Type:       EventOrderStatusChanged,
		OrderID:    order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		OccurredAt: now,
	})
	return order, nil
}

// AttachPayment records the payment outcome on the order without touching its status.
func (s *orderService) AttachPayment(ctx context.Context, cmd AttachPaymentCommand) (Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	var order Order
	err := s.unitOfWork.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return s.mapRepositoryError(err)
		}
		current.PaymentStatus = cmd.Status
		current.TransactionID = strings.TrimSpace(cmd.TransactionID)
		current.UpdatedAt = s.clock()
		if err := s.orders.Update(txCtx, current); err != nil {
			return s.mapRepositoryError(err)
		}
		order = current
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	s.changes.publish(ctx, changefeed.KeyOrders, order.ID, changefeed.OpUpdate)
	return order, nil
}

// Reorder replaces the user's cart with the order's lines, priced at today's catalog.
func (s *orderService) Reorder(ctx context.Context, orderID string, userID string) (CartView, error) {
	if s.carts == nil {
		return CartView{}, errors.New("order service: cart service is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return CartView{}, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return CartView{}, err
	}
	if order.UserID != userID {
		return CartView{}, fmt.Errorf("%w: %s", ErrOrderNotFound, order.ID)
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		return CartView{}, err
	}
	for _, item := range order.Items {
		if _, err := s.carts.AddItem(ctx, userID, item); err != nil {
			return CartView{}, err
		}
	}
	return s.carts.GetCart(ctx, userID)
}

func (s *orderService) buildOrder(cmd CreateOrderCommand) (Order, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return Order{}, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}
	if len(cmd.Items) == 0 {
		return Order{}, fmt.Errorf("%w: at least one item is required", ErrOrderInvalidInput)
	}
	for idx, item := range cmd.Items {
		if err := item.Validate(); err != nil {
			return Order{}, fmt.Errorf("%w: item %d: %v", ErrOrderInvalidInput, idx, err)
		}
	}
	pickup, err := normalisePickup(cmd.Pickup)
	if err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrOrderInvalidInput, err)
	}
	notes := textutil.Sanitize(cmd.Notes)
	if len(notes) > maxOrderNotesLength {
		return Order{}, fmt.Errorf("%w: notes must be at most %d characters", ErrOrderInvalidInput, maxOrderNotesLength)
	}
	if cmd.TotalAmount < 0 {
		return Order{}, fmt.Errorf("%w: total amount must be >= 0", ErrOrderInvalidInput)
	}

	order := Order{
		UserID:         userID,
		Items:          domain.CloneItems(cmd.Items),
		Pickup:         pickup,
		Notes:          notes,
		Status:         domain.OrderStatusPending,
		TotalAmount:    Round2(cmd.TotalAmount),
		AppliedOfferID: strings.TrimSpace(cmd.AppliedOfferID),
	}
	if cmd.OriginalTotal != nil {
		original := Round2(*cmd.OriginalTotal)
		order.OriginalTotal = &original
	}
	return order, nil
}

func (s *orderService) notifyOwner(ctx context.Context, order Order) {
	if s.notifications == nil {
		return
	}
	_, err := s.notifications.Notify(ctx, NotifyCommand{
		UserID:  order.UserID,
		Title:   fmt.Sprintf("Order %s status updated", order.ID),
		Message: fmt.Sprintf("Your order is now %s.", order.Status.Label()),
		Type:    domain.NotificationOrder,
		OrderID: order.ID,
	})
	if err != nil {
		s.logger(ctx, "order.notify.failed", map[string]any{"orderId": order.ID, "error": err.Error()})
	}
}

func (s *orderService) publishEvent(ctx context.Context, event DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(ctx, event); err != nil {
		s.logger(ctx, "order.event.publish.failed", map[string]any{
			"type":   event.Type,
			"order":  event.OrderID,
			"error":  err.Error(),
			"status": event.Status,
		})
	}
}

func (s *orderService) mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrOrderNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrOrderConflict, err)
		case repoErr.IsUnavailable():
			return fmt.Errorf("%w: %v", ErrOrderUnavailable, err)
		}
	}

	return err
}

func normalisePickup(p PickupDetails) (PickupDetails, error) {
	out := PickupDetails{
		Date:    strings.TrimSpace(p.Date),
		Time:    strings.TrimSpace(p.Time),
		Address: textutil.Sanitize(p.Address),
	}
	var missing []string
	if out.Date == "" {
		missing = append(missing, "pickup date")
	}
	if out.Time == "" {
		missing = append(missing, "pickup time")
	}
	if out.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return PickupDetails{}, fmt.Errorf("%s required", strings.Join(missing, ", "))
	}
	if _, err := time.Parse("2006-01-02", out.Date); err != nil {
		return PickupDetails{}, fmt.Errorf("pickup date must be YYYY-MM-DD")
	}
	return out, nil
}
