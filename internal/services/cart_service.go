package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/changefeed"
	"github.com/laundryhub/api/internal/repositories"
)

var (
	// ErrCartInvalidInput indicates the caller supplied invalid input.
	ErrCartInvalidInput = errors.New("cart service: invalid input")
	// ErrCartUnavailable indicates the cart store could not be reached.
	ErrCartUnavailable = errors.New("cart service: unavailable")
	// ErrCartConflict indicates the cart could not be updated due to concurrent modifications.
	ErrCartConflict = errors.New("cart service: conflict")
)

// catalogSnapshotter provides the catalog view used to resolve and price lines.
type catalogSnapshotter interface {
	Snapshot(ctx context.Context) (Catalog, error)
}

// CartServiceDeps wires the repository and catalog dependencies for cart operations.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Catalog    catalogSnapshotter
	UnitOfWork repositories.UnitOfWork
	Changes    ChangePublisher
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type cartService struct {
	repo    repositories.CartRepository
	catalog catalogSnapshotter
	unit    repositories.UnitOfWork
	changes changeNotifier
	now     func() time.Time
	logger  func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errors.New("cart service: repository is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("cart service: catalog is required")
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
	return &cartService{
		repo:    deps.Repository,
		catalog: deps.Catalog,
		unit:    unit,
		changes: changeNotifier{publisher: deps.Changes, logger: logger, now: now},
		now:     now,
		logger:  logger,
	}, nil
}

func (s *cartService) GetCart(ctx context.Context, userID string) (CartView, error) {
	uid, err := normaliseUserID(userID)
	if err != nil {
		return CartView{}, err
	}
	cart, err := s.load(ctx, uid)
	if err != nil {
		return CartView{}, err
	}
	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return CartView{}, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	return buildCartView(cart, catalog), nil
}

// AddItem merges the item into the cart. Items whose service or garment does not resolve,
// or whose service does not accept the garment, leave the cart unchanged.
func (s *cartService) AddItem(ctx context.Context, userID string, item LineItem) (CartView, error) {
	uid, err := normaliseUserID(userID)
	if err != nil {
		return CartView{}, err
	}
	item.ServiceID = strings.TrimSpace(item.ServiceID)
	item.GarmentTypeID = strings.TrimSpace(item.GarmentTypeID)
	item.Quality = domain.QualityTier(strings.ToLower(strings.TrimSpace(string(item.Quality))))
	if item.Quality == "" {
		item.Quality = domain.QualityNormal
	}
	if err := item.Validate(); err != nil {
		return CartView{}, fmt.Errorf("%w: %v", ErrCartInvalidInput, err)
	}

	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return CartView{}, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	if !resolvable(item, catalog) {
		s.logger(ctx, "cart.add.unresolved", map[string]any{
			"userId":        uid,
			"serviceId":     item.ServiceID,
			"garmentTypeId": item.GarmentTypeID,
		})
		cart, err := s.load(ctx, uid)
		if err != nil {
			return CartView{}, err
		}
		return buildCartView(cart, catalog), nil
	}

	cart, err := s.mutate(ctx, uid, func(cart *Cart) bool {
		cart.Add(item)
		return true
	})
	if err != nil {
		return CartView{}, err
	}
	return buildCartView(cart, catalog), nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID string, key LineKey, quantity int) (CartView, error) {
	uid, err := normaliseUserID(userID)
	if err != nil {
		return CartView{}, err
	}
	if !key.Quality.Valid() || key.ServiceID == "" || key.GarmentTypeID == "" {
		return CartView{}, fmt.Errorf("%w: %v", ErrCartInvalidInput, domain.ErrInvalidLineKey)
	}
	cart, err := s.mutate(ctx, uid, func(cart *Cart) bool {
		return cart.SetQuantity(key, quantity)
	})
	if err != nil {
		return CartView{}, err
	}
	return s.view(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, userID string, key LineKey) (CartView, error) {
	return s.UpdateQuantity(ctx, userID, key, 0)
}

func (s *cartService) Clear(ctx context.Context, userID string) error {
	uid, err := normaliseUserID(userID)
	if err != nil {
		return err
	}
	_, err = s.mutate(ctx, uid, func(cart *Cart) bool {
		if len(cart.Items) == 0 {
			return false
		}
		cart.Clear()
		return true
	})
	return err
}

func (s *cartService) Total(ctx context.Context, userID string) (float64, error) {
	view, err := s.GetCart(ctx, userID)
	if err != nil {
		return 0, err
	}
	return view.Total, nil
}

// mutate runs one load-modify-save cycle. fn reports whether it changed the cart.
func (s *cartService) mutate(ctx context.Context, userID string, fn func(cart *Cart) bool) (Cart, error) {
	var result Cart
	changed := false
	err := s.unit.RunInTx(ctx, func(txCtx context.Context) error {
		cart, err := s.load(txCtx, userID)
		if err != nil {
			return err
		}
		if !fn(&cart) {
			result = cart
			return nil
		}
		cart.UpdatedAt = s.now()
		if err := s.repo.Save(txCtx, cart); err != nil {
			return s.mapRepositoryError(err)
		}
		result = cart
		changed = true
		return nil
	})
	if err != nil {
		return Cart{}, err
	}
	if changed {
		s.changes.publish(ctx, changefeed.KeyCart, userID, changefeed.OpUpdate)
	}
	return result, nil
}

func (s *cartService) load(ctx context.Context, userID string) (Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if isRepoNotFound(err) {
			return Cart{UserID: userID}, nil
		}
		return Cart{}, s.mapRepositoryError(err)
	}
	cart.UserID = userID
	return cart, nil
}

func (s *cartService) view(ctx context.Context, cart Cart) (CartView, error) {
	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return CartView{}, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	return buildCartView(cart, catalog), nil
}

func (s *cartService) mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case isRepoConflict(err):
		return fmt.Errorf("%w: %v", ErrCartConflict, err)
	case isRepoUnavailable(err):
		return fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	return err
}

func normaliseUserID(userID string) (string, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return "", fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	return uid, nil
}

func resolvable(item LineItem, catalog Catalog) bool {
	service, ok := catalog.Service(item.ServiceID)
	if !ok {
		return false
	}
	if _, ok := catalog.GarmentType(item.GarmentTypeID); !ok {
		return false
	}
	return service.Supports(item.GarmentTypeID)
}

func buildCartView(cart Cart, catalog Catalog) CartView {
	view := CartView{
		UserID:    cart.UserID,
		Lines:     make([]CartLine, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}
	var total float64
	for _, item := range cart.Items {
		line := CartLine{
			Key:       item.Key().String(),
			Item:      item,
			UnitPrice: UnitPrice(item, catalog),
			LinePrice: ComputeLineItemPrice(item, catalog),
		}
		if svc, ok := catalog.Service(item.ServiceID); ok {
			line.ServiceName = svc.Name
		}
		if garment, ok := catalog.GarmentType(item.GarmentTypeID); ok {
			line.GarmentName = garment.Name
		}
		total += line.LinePrice
		view.ItemCount += item.Quantity
		view.Lines = append(view.Lines, line)
	}
	view.Total = Round2(total)
	return view
}
