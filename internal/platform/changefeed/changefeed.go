// Package changefeed broadcasts lightweight notices after store writes so clients can refresh.
package changefeed

import (
	"context"
	"time"
)

// Op names the kind of write that produced a change.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Keys published by the services.
const (
	KeyGarmentTypes  = "dressTypes"
	KeyServices      = "services"
	KeyOrders        = "orders"
	KeyOffers        = "offers"
	KeyNotifications = "notifications"
	KeyCart          = "cart"
	KeyUsers         = "users"
)

// Change identifies what changed. Payloads are never included; consumers re-read.
type Change struct {
	Key string    `json:"key"`
	ID  string    `json:"id,omitempty"`
	Op  Op        `json:"op"`
	At  time.Time `json:"at"`
}

// Publisher emits changes.
type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

// Subscriber delivers changes until ctx is cancelled, then closes the channel.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan Change, error)
}

// Broker is both ends of a feed.
type Broker interface {
	Publisher
	Subscriber
	Close() error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, change Change) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, change Change) error {
	return f(ctx, change)
}
