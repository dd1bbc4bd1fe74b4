package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/changefeed"
	"github.com/laundryhub/api/internal/platform/textutil"
	"github.com/laundryhub/api/internal/repositories"
)

var (
	// ErrOfferInvalidInput indicates malformed offer fields.
	ErrOfferInvalidInput = errors.New("offer: invalid input")
	// ErrOfferNotFound indicates the offer does not exist.
	ErrOfferNotFound = errors.New("offer: not found")
	// ErrOfferConflict indicates a coupon code clash or concurrent update.
	ErrOfferConflict = errors.New("offer: conflict")
	// ErrOfferUsageLimitReached indicates a redemption would exceed the usage limit.
	ErrOfferUsageLimitReached = errors.New("offer: usage limit reached")
	// ErrOfferUnavailable indicates the offer store could not be reached.
	ErrOfferUnavailable = errors.New("offer: unavailable")
)

const (
	maxOfferTitleLength       = 120
	maxOfferDescriptionLength = 1000
)

// OfferServiceDeps wires offer persistence and the broadcast sink.
type OfferServiceDeps struct {
	Repository    repositories.OfferRepository
	Notifications NotificationService
	Events        EventPublisher
	Changes       ChangePublisher
	Clock         func() time.Time
	IDGenerator   func() string
	Logger        func(context.Context, string, map[string]any)
}

type offerService struct {
	repo          repositories.OfferRepository
	notifications NotificationService
	events        EventPublisher
	changes       changeNotifier
	now           func() time.Time
	newID         func() string
	logger        func(context.Context, string, map[string]any)
}

// NewOfferService constructs an OfferService.
func NewOfferService(deps OfferServiceDeps) (OfferService, error) {
	if deps.Repository == nil {
		return nil, errors.New("offer service: repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return "off_" + strings.ToLower(ulid.Make().String()) }
	}
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger
	}
	now := func() time.Time { return clock().UTC() }
	return &offerService{
		repo:          deps.Repository,
		notifications: deps.Notifications,
		events:        deps.Events,
		changes:       changeNotifier{publisher: deps.Changes, logger: logger, now: now},
		now:           now,
		newID:         idGen,
		logger:        logger,
	}, nil
}

func (s *offerService) ListOffers(ctx context.Context) ([]Offer, error) {
	offers, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return offers, nil
}

func (s *offerService) ListActiveOffers(ctx context.Context) ([]Offer, error) {
	offers, err := s.ListOffers(ctx)
	if err != nil {
		return nil, err
	}
	return ActiveOffers(offers, s.now()), nil
}

func (s *offerService) GetOffer(ctx context.Context, id string) (Offer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Offer{}, fmt.Errorf("%w: offer id is required", ErrOfferInvalidInput)
	}
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Offer{}, s.mapRepositoryError(err)
	}
	return offer, nil
}

// ApplyCoupon validates code against the current offers and prices the discount on baseAmount.
// Rejections, including a base below the offer's minimum order amount, are returned as *CouponError.
func (s *offerService) ApplyCoupon(ctx context.Context, code string, baseAmount float64) (CouponQuote, error) {
	if baseAmount < 0 {
		return CouponQuote{}, fmt.Errorf("%w: amount must be >= 0", ErrOfferInvalidInput)
	}
	var offers []Offer
	if strings.TrimSpace(code) != "" {
		var err error
		if offers, err = s.ListOffers(ctx); err != nil {
			return CouponQuote{}, err
		}
	}
	offer, err := ValidateCoupon(code, offers, s.now())
	if err != nil {
		return CouponQuote{}, err
	}
	if offer.MinOrderAmount != nil && baseAmount < *offer.MinOrderAmount {
		return CouponQuote{}, &CouponError{Reason: CouponReasonMinimum, Code: offer.CouponCode}
	}
	discount, final := ComputeDiscount(offer, baseAmount)
	return CouponQuote{
		Offer:       offer,
		BaseAmount:  Round2(baseAmount),
		Discount:    discount,
		FinalAmount: final,
	}, nil
}

func (s *offerService) CreateOffer(ctx context.Context, cmd CreateOfferCommand) (Offer, error) {
	now := s.now()
	offer := Offer{
		ID:             s.newID(),
		Title:          textutil.Sanitize(cmd.Title),
		Description:    textutil.Sanitize(cmd.Description),
		DiscountType:   domain.DiscountType(strings.ToLower(strings.TrimSpace(string(cmd.DiscountType)))),
		DiscountValue:  cmd.DiscountValue,
		CouponCode:     normaliseCouponCode(cmd.CouponCode),
		MinOrderAmount: cmd.MinOrderAmount,
		ValidFrom:      cmd.ValidFrom.UTC(),
		ValidTo:        cmd.ValidTo.UTC(),
		IsActive:       cmd.IsActive,
		UsageLimit:     cmd.UsageLimit,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := validateOffer(offer); err != nil {
		return Offer{}, err
	}

	existing, err := s.repo.List(ctx)
	if err != nil {
		return Offer{}, s.mapRepositoryError(err)
	}
	if err := ensureUniqueCoupon(offer, existing, now); err != nil {
		return Offer{}, err
	}
	if err := s.repo.Insert(ctx, offer); err != nil {
		return Offer{}, s.mapRepositoryError(err)
	}

	s.logger(ctx, "offer.created", map[string]any{"offerId": offer.ID, "actorId": cmd.ActorID})
	s.changes.publish(ctx, changefeed.KeyOffers, offer.ID, changefeed.OpCreate)
	s.broadcast(ctx, offer)
	if s.events != nil {
		if err := s.events.PublishEvent(ctx, DomainEvent{Type: EventOfferCreated, OfferID: offer.ID, OccurredAt: now}); err != nil {
			s.logger(ctx, "offer.event.failed", map[string]any{"offerId": offer.ID, "error": err.Error()})
		}
	}
	return offer, nil
}

func (s *offerService) UpdateOffer(ctx context.Context, cmd UpdateOfferCommand) (Offer, error) {
	current, err := s.GetOffer(ctx, cmd.OfferID)
	if err != nil {
		return Offer{}, err
	}

	updated := current
	if cmd.Title != nil {
		updated.Title = textutil.Sanitize(*cmd.Title)
	}
	if cmd.Description != nil {
		updated.Description = textutil.Sanitize(*cmd.Description)
	}
	if cmd.DiscountType != nil {
		updated.DiscountType = domain.DiscountType(strings.ToLower(strings.TrimSpace(string(*cmd.DiscountType))))
	}
	if cmd.DiscountValue != nil {
		updated.DiscountValue = *cmd.DiscountValue
	}
	if cmd.CouponCode != nil {
		updated.CouponCode = normaliseCouponCode(*cmd.CouponCode)
	}
	if cmd.MinOrderAmount != nil {
		value := *cmd.MinOrderAmount
		updated.MinOrderAmount = &value
	}
	if cmd.ValidFrom != nil {
		updated.ValidFrom = cmd.ValidFrom.UTC()
	}
	if cmd.ValidTo != nil {
		updated.ValidTo = cmd.ValidTo.UTC()
	}
	if cmd.IsActive != nil {
		updated.IsActive = *cmd.IsActive
	}
	if cmd.UsageLimit != nil {
		limit := *cmd.UsageLimit
		updated.UsageLimit = &limit
	}
	if err := validateOffer(updated); err != nil {
		return Offer{}, err
	}

	now := s.now()
	if updated.CouponCode != "" && couponClaimChanged(current, updated) {
		existing, err := s.repo.List(ctx)
		if err != nil {
			return Offer{}, s.mapRepositoryError(err)
		}
		if err := ensureUniqueCoupon(updated, existing, now); err != nil {
			return Offer{}, err
		}
	}
	updated.UpdatedAt = now
	if err := s.repo.Update(ctx, updated); err != nil {
		return Offer{}, s.mapRepositoryError(err)
	}

	s.logger(ctx, "offer.updated", map[string]any{"offerId": updated.ID, "actorId": cmd.ActorID})
	s.changes.publish(ctx, changefeed.KeyOffers, updated.ID, changefeed.OpUpdate)
	return updated, nil
}

func (s *offerService) DeleteOffer(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: offer id is required", ErrOfferInvalidInput)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepositoryError(err)
	}
	s.changes.publish(ctx, changefeed.KeyOffers, id, changefeed.OpDelete)
	return nil
}

// RecordRedemption increments usedCount, failing with ErrOfferUsageLimitReached at the limit.
func (s *offerService) RecordRedemption(ctx context.Context, offerID string) (Offer, error) {
	offerID = strings.TrimSpace(offerID)
	if offerID == "" {
		return Offer{}, fmt.Errorf("%w: offer id is required", ErrOfferInvalidInput)
	}
	offer, err := s.repo.IncrementUsage(ctx, offerID)
	if err != nil {
		return Offer{}, s.mapRepositoryError(err)
	}
	return offer, nil
}

func (s *offerService) broadcast(ctx context.Context, offer Offer) {
	if s.notifications == nil {
		return
	}
	_, err := s.notifications.Notify(ctx, NotifyCommand{
		Title:   "New Offer: " + offer.Title,
		Message: offer.Description,
		Type:    domain.NotificationOffer,
		OfferID: offer.ID,
	})
	if err != nil {
		s.logger(ctx, "offer.broadcast.failed", map[string]any{"offerId": offer.ID, "error": err.Error()})
	}
}

func (s *offerService) mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrUsageLimitReached):
		return fmt.Errorf("%w: %v", ErrOfferUsageLimitReached, err)
	case isRepoNotFound(err):
		return fmt.Errorf("%w: %v", ErrOfferNotFound, err)
	case isRepoConflict(err):
		return fmt.Errorf("%w: %v", ErrOfferConflict, err)
	case isRepoUnavailable(err):
		return fmt.Errorf("%w: %v", ErrOfferUnavailable, err)
	}
	return err
}

func normaliseCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validateOffer(offer Offer) error {
	var problems []string
	if offer.Title == "" {
		problems = append(problems, "title is required")
	} else if len(offer.Title) > maxOfferTitleLength {
		problems = append(problems, fmt.Sprintf("title must be at most %d characters", maxOfferTitleLength))
	}
	if len(offer.Description) > maxOfferDescriptionLength {
		problems = append(problems, fmt.Sprintf("description must be at most %d characters", maxOfferDescriptionLength))
	}
	if !offer.DiscountType.Valid() {
		problems = append(problems, fmt.Sprintf("discountType %q is not supported", offer.DiscountType))
	}
	if offer.DiscountValue <= 0 {
		problems = append(problems, "discountValue must be positive")
	}
	if offer.DiscountType == domain.DiscountPercentage && offer.DiscountValue > 100 {
		problems = append(problems, "percentage discount must be at most 100")
	}
	if offer.ValidFrom.IsZero() || offer.ValidTo.IsZero() {
		problems = append(problems, "validFrom and validTo are required")
	} else if offer.ValidTo.Before(offer.ValidFrom) {
		problems = append(problems, "validTo must not be before validFrom")
	}
	if offer.UsageLimit != nil && *offer.UsageLimit <= 0 {
		problems = append(problems, "usageLimit must be positive")
	}
	if offer.MinOrderAmount != nil && *offer.MinOrderAmount < 0 {
		problems = append(problems, "minOrderAmount must be >= 0")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrOfferInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// couponClaimChanged reports whether an update could make the offer compete for its code with
// another current offer.
func couponClaimChanged(before, after Offer) bool {
	return before.CouponCode != after.CouponCode ||
		!before.ValidFrom.Equal(after.ValidFrom) ||
		!before.ValidTo.Equal(after.ValidTo) ||
		before.IsActive != after.IsActive
}

// ensureUniqueCoupon rejects a code already used by another offer that is current or upcoming.
// An offer that has already ended claims nothing.
func ensureUniqueCoupon(offer Offer, existing []Offer, now time.Time) error {
	if offer.CouponCode == "" || offer.ValidTo.Before(now) {
		return nil
	}
	for _, other := range existing {
		if other.ID == offer.ID || other.ValidTo.Before(now) {
			continue
		}
		if strings.EqualFold(other.CouponCode, offer.CouponCode) {
			return fmt.Errorf("%w: coupon code %s is already in use", ErrOfferConflict, offer.CouponCode)
		}
	}
	return nil
}
