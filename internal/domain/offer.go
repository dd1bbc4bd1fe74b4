package domain

import "time"

// DiscountType selects how an offer's DiscountValue is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Valid reports whether the discount type is supported.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Offer is a discount rule, optionally redeemed through a coupon code.
type Offer struct {
	ID             string
	Title          string
	Description    string
	DiscountType   DiscountType
	DiscountValue  float64
	CouponCode     string
	MinOrderAmount *float64
	ValidFrom      time.Time
	ValidTo        time.Time
	IsActive       bool
	UsageLimit     *int
	UsedCount      int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InWindow reports whether now falls in the inclusive validity window.
func (o Offer) InWindow(now time.Time) bool {
	return !now.Before(o.ValidFrom) && !now.After(o.ValidTo)
}

// Exhausted reports whether a usage limit is set and has been reached.
func (o Offer) Exhausted() bool {
	return o.UsageLimit != nil && o.UsedCount >= *o.UsageLimit
}

// Usable combines the active flag, window and usage limit.
func (o Offer) Usable(now time.Time) bool {
	return o.IsActive && o.InWindow(now) && !o.Exhausted()
}
