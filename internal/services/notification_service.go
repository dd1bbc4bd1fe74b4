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
	"github.com/laundryhub/api/internal/repositories"
)

var (
	// ErrNotificationInvalidInput indicates malformed notification input.
	ErrNotificationInvalidInput = errors.New("notification: invalid input")
	// ErrNotificationNotFound indicates the notification does not exist or is not visible to the user.
	ErrNotificationNotFound = errors.New("notification: not found")
	// ErrNotificationForbidden indicates the user cannot modify the notification.
	ErrNotificationForbidden = errors.New("notification: forbidden")
)

// NotificationServiceDeps wires notification persistence.
type NotificationServiceDeps struct {
	Repository  repositories.NotificationRepository
	Changes     ChangePublisher
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(context.Context, string, map[string]any)
}

type notificationService struct {
	repo    repositories.NotificationRepository
	changes changeNotifier
	now     func() time.Time
	newID   func() string
	logger  func(context.Context, string, map[string]any)
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(deps NotificationServiceDeps) (NotificationService, error) {
	if deps.Repository == nil {
		return nil, errors.New("notification service: repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return "ntf_" + strings.ToLower(ulid.Make().String()) }
	}
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger
	}
	now := func() time.Time { return clock().UTC() }
	return &notificationService{
		repo:    deps.Repository,
		changes: changeNotifier{publisher: deps.Changes, logger: logger, now: now},
		now:     now,
		newID:   idGen,
		logger:  logger,
	}, nil
}

func (s *notificationService) Notify(ctx context.Context, cmd NotifyCommand) (Notification, error) {
	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		return Notification{}, fmt.Errorf("%w: title is required", ErrNotificationInvalidInput)
	}
	kind := cmd.Type
	if kind == "" {
		kind = domain.NotificationInfo
	}
	switch kind {
	case domain.NotificationOffer, domain.NotificationOrder, domain.NotificationSystem, domain.NotificationInfo:
	default:
		return Notification{}, fmt.Errorf("%w: type %q is not supported", ErrNotificationInvalidInput, kind)
	}

	notification := Notification{
		ID:        s.newID(),
		Title:     title,
		Message:   strings.TrimSpace(cmd.Message),
		Type:      kind,
		UserID:    strings.TrimSpace(cmd.UserID),
		OfferID:   strings.TrimSpace(cmd.OfferID),
		OrderID:   strings.TrimSpace(cmd.OrderID),
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, notification); err != nil {
		return Notification{}, s.mapRepositoryError(err)
	}
	s.changes.publish(ctx, changefeed.KeyNotifications, notification.ID, changefeed.OpCreate)
	return notification, nil
}

// ListForUser returns the user's own notifications plus broadcasts, newest first.
func (s *notificationService) ListForUser(ctx context.Context, userID string) ([]Notification, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrNotificationInvalidInput)
	}
	return s.repo.ListVisibleTo(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, cmd NotificationActionCommand) error {
	notification, err := s.visible(ctx, cmd)
	if err != nil {
		return err
	}
	if notification.IsRead {
		return nil
	}
	if err := s.repo.MarkRead(ctx, notification.ID); err != nil {
		return s.mapRepositoryError(err)
	}
	s.changes.publish(ctx, changefeed.KeyNotifications, notification.ID, changefeed.OpUpdate)
	return nil
}

// Delete removes a notification owned by the user. Broadcasts can only be removed with AllowBroadcast.
func (s *notificationService) Delete(ctx context.Context, cmd NotificationActionCommand) error {
	notification, err := s.visible(ctx, cmd)
	if err != nil {
		return err
	}
	if notification.Broadcast() && !cmd.AllowBroadcast {
		return fmt.Errorf("%w: broadcast notifications can only be removed by staff", ErrNotificationForbidden)
	}
	if err := s.repo.Delete(ctx, notification.ID); err != nil {
		return s.mapRepositoryError(err)
	}
	s.logger(ctx, "notification.deleted", map[string]any{"notificationId": notification.ID, "userId": cmd.UserID})
	s.changes.publish(ctx, changefeed.KeyNotifications, notification.ID, changefeed.OpDelete)
	return nil
}

func (s *notificationService) visible(ctx context.Context, cmd NotificationActionCommand) (Notification, error) {
	userID := strings.TrimSpace(cmd.UserID)
	id := strings.TrimSpace(cmd.NotificationID)
	if userID == "" || id == "" {
		return Notification{}, fmt.Errorf("%w: user id and notification id are required", ErrNotificationInvalidInput)
	}
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Notification{}, s.mapRepositoryError(err)
	}
	if !notification.VisibleTo(userID) {
		return Notification{}, ErrNotificationNotFound
	}
	return notification, nil
}

func (s *notificationService) mapRepositoryError(err error) error {
	if isRepoNotFound(err) {
		return fmt.Errorf("%w: %v", ErrNotificationNotFound, err)
	}
	return err
}
