package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"

	domain "github.com/laundryhub/api/internal/domain"
	pfirestore "github.com/laundryhub/api/internal/platform/firestore"
	"github.com/laundryhub/api/internal/repositories"
)

const notificationsCollection = "notifications"

// NotificationRepository stores notifications. Broadcasts carry an empty userId.
type NotificationRepository struct {
	base *pfirestore.BaseRepository[notificationDocument]
}

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

// NewNotificationRepository constructs a Firestore-backed notification repository.
func NewNotificationRepository(provider *pfirestore.Provider) (*NotificationRepository, error) {
	if provider == nil {
		return nil, errors.New("notification repository requires firestore provider")
	}
	return &NotificationRepository{base: pfirestore.NewBaseRepository[notificationDocument](provider, notificationsCollection)}, nil
}

func (r *NotificationRepository) Insert(ctx context.Context, notification domain.Notification) error {
	return r.base.Create(ctx, notification.ID, notificationToDocument(notification))
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (domain.Notification, error) {
	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.Notification{}, err
	}
	return doc.Data.domain(doc.ID), nil
}

func (r *NotificationRepository) ListVisibleTo(ctx context.Context, userID string) ([]domain.Notification, error) {
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("userId", "in", []string{userID, ""}).OrderBy("createdAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Data.domain(doc.ID))
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	return r.base.Update(ctx, id, []firestore.Update{{Path: "isRead", Value: true}})
}

func (r *NotificationRepository) Delete(ctx context.Context, id string) error {
	return r.base.Delete(ctx, id, firestore.Exists)
}
