package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
)

func TestNotificationServiceNotifyDefaultsAndValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	n, err := h.notifications.Notify(ctx, NotifyCommand{UserID: "user-1", Title: " Welcome ", Message: "Thanks for joining"})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if n.Type != domain.NotificationInfo || n.Title != "Welcome" || n.IsRead {
		t.Fatalf("unexpected notification %+v", n)
	}
	if n.ID == "" || !n.CreatedAt.Equal(h.now) {
		t.Fatalf("expected id and timestamp, got %+v", n)
	}

	if _, err := h.notifications.Notify(ctx, NotifyCommand{UserID: "user-1"}); !errors.Is(err, ErrNotificationInvalidInput) {
		t.Fatalf("expected missing title error, got %v", err)
	}
	if _, err := h.notifications.Notify(ctx, NotifyCommand{Title: "x", Type: "sms"}); !errors.Is(err, ErrNotificationInvalidInput) {
		t.Fatalf("expected bad type error, got %v", err)
	}
}

func TestNotificationServiceListForUserIncludesBroadcasts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.notifications.Notify(ctx, NotifyCommand{UserID: "user-1", Title: "Mine"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	h.now = h.now.Add(time.Minute)
	if _, err := h.notifications.Notify(ctx, NotifyCommand{UserID: "user-2", Title: "Theirs"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	h.now = h.now.Add(time.Minute)
	if _, err := h.notifications.Notify(ctx, NotifyCommand{Title: "Everyone", Type: domain.NotificationSystem}); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	list, err := h.notifications.ListForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected own and broadcast, got %+v", list)
	}
	if list[0].Title != "Everyone" || list[1].Title != "Mine" {
		t.Fatalf("expected newest first, got %q then %q", list[0].Title, list[1].Title)
	}
}

func TestNotificationServiceMarkReadAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	own, err := h.notifications.Notify(ctx, NotifyCommand{UserID: "user-1", Title: "Order update", Type: domain.NotificationOrder})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	broadcast, err := h.notifications.Notify(ctx, NotifyCommand{Title: "Holiday hours"})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if err := h.notifications.MarkRead(ctx, NotificationActionCommand{UserID: "user-2", NotificationID: own.ID}); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected other users to be refused, got %v", err)
	}
	if err := h.notifications.MarkRead(ctx, NotificationActionCommand{UserID: "user-1", NotificationID: own.ID}); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	list, err := h.notifications.ListForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	for _, n := range list {
		if n.ID == own.ID && !n.IsRead {
			t.Fatalf("expected notification to be read")
		}
	}

	if err := h.notifications.Delete(ctx, NotificationActionCommand{UserID: "user-1", NotificationID: broadcast.ID}); !errors.Is(err, ErrNotificationForbidden) {
		t.Fatalf("expected broadcast delete to be forbidden, got %v", err)
	}
	if err := h.notifications.Delete(ctx, NotificationActionCommand{UserID: "admin", NotificationID: broadcast.ID, AllowBroadcast: true}); err != nil {
		t.Fatalf("Delete broadcast: %v", err)
	}
	if err := h.notifications.Delete(ctx, NotificationActionCommand{UserID: "user-1", NotificationID: own.ID}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := h.notifications.Delete(ctx, NotificationActionCommand{UserID: "user-1", NotificationID: own.ID}); !errors.Is(err, ErrNotificationNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
