package domain

import "time"

// NotificationType classifies notifications.
type NotificationType string

const (
	NotificationOffer  NotificationType = "offer"
	NotificationOrder  NotificationType = "order"
	NotificationSystem NotificationType = "system"
	NotificationInfo   NotificationType = "info"
)

// Notification is a user-facing message. An empty UserID broadcasts to everyone.
type Notification struct {
	ID        string
	Title     string
	Message   string
	Type      NotificationType
	IsRead    bool
	UserID    string
	OfferID   string
	OrderID   string
	CreatedAt time.Time
}

// Broadcast reports whether the notification targets all users.
func (n Notification) Broadcast() bool {
	return n.UserID == ""
}

// VisibleTo reports whether the user should see the notification.
func (n Notification) VisibleTo(userID string) bool {
	return n.Broadcast() || n.UserID == userID
}
