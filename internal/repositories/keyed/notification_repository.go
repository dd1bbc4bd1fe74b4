package keyed

import (
	"context"
	"sort"

	domain "github.com/laundryhub/api/internal/domain"
	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/repositories"
)

// NotificationRepository stores notifications under the notifications key.
type NotificationRepository struct {
	store keyvalue.Store
}

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

func (r *NotificationRepository) Insert(ctx context.Context, notification domain.Notification) error {
	return mutateSlice(ctx, r.store, keyNotifications, func(records []notificationRecord) ([]notificationRecord, error) {
		return append(records, notificationToRecord(notification)), nil
	})
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (domain.Notification, error) {
	records, err := loadSlice[notificationRecord](ctx, r.store, keyNotifications)
	if err != nil {
		return domain.Notification{}, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec.domain(), nil
		}
	}
	return domain.Notification{}, repositories.NewNotFoundError("notifications.find", "notification "+id)
}

// ListVisibleTo returns the user's own and broadcast notifications, newest first.
func (r *NotificationRepository) ListVisibleTo(ctx context.Context, userID string) ([]domain.Notification, error) {
	records, err := loadSlice[notificationRecord](ctx, r.store, keyNotifications)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(records))
	for _, rec := range records {
		n := rec.domain()
		if n.VisibleTo(userID) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	return mutateSlice(ctx, r.store, keyNotifications, func(records []notificationRecord) ([]notificationRecord, error) {
		for i := range records {
			if records[i].ID == id {
				records[i].IsRead = true
				return records, nil
			}
		}
		return nil, repositories.NewNotFoundError("notifications.markRead", "notification "+id)
	})
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	return mutateSlice(ctx, r.store, keyNotifications, func(records []notificationRecord) ([]notificationRecord, error) {
		for i := range records {
			if records[i].ID == id {
				return append(records[:i], records[i+1:]...), nil
			}
		}
		return nil, repositories.NewNotFoundError("notifications.delete", "notification "+id)
	})
}
