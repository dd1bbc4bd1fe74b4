package services

import (
	"math"
	"strings"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
)

// CouponReason classifies coupon rejections.
type CouponReason string

const (
	CouponReasonEmpty     CouponReason = "empty"
	CouponReasonInvalid   CouponReason = "invalid"
	CouponReasonInactive  CouponReason = "inactive"
	CouponReasonExpired   CouponReason = "expired"
	CouponReasonExhausted CouponReason = "exhausted"
	CouponReasonMinimum   CouponReason = "below_minimum"
)

var couponMessages = map[CouponReason]string{
	CouponReasonEmpty:     "enter a code",
	CouponReasonInvalid:   "invalid code",
	CouponReasonInactive:  "offer not active",
	CouponReasonExpired:   "not valid at this time",
	CouponReasonExhausted: "usage limit reached",
	CouponReasonMinimum:   "order total below the offer minimum",
}

// CouponError reports why a coupon cannot be applied. It is a value for the caller to display,
// not a system failure.
type CouponError struct {
	Reason CouponReason
	Code   string
}

func (e *CouponError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message()
}

// Message returns the user-facing text for the reason.
func (e *CouponError) Message() string {
	if msg, ok := couponMessages[e.Reason]; ok {
		return msg
	}
	return "invalid code"
}

// ValidateCoupon finds the offer for code and checks it in order: empty, unknown, inactive,
// outside the validity window, usage limit. A code can belong to several offers once an
// earlier one has ended, so the first usable match wins; otherwise the rejection comes from the
// match that passed the most checks.
func ValidateCoupon(code string, offers []Offer, now time.Time) (Offer, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return Offer{}, &CouponError{Reason: CouponReasonEmpty}
	}
	best := CouponReasonInvalid
	for _, candidate := range offers {
		if candidate.CouponCode == "" || !strings.EqualFold(candidate.CouponCode, trimmed) {
			continue
		}
		reason := couponRejection(candidate, now)
		if reason == "" {
			return candidate, nil
		}
		if couponProgress[reason] > couponProgress[best] {
			best = reason
		}
	}
	return Offer{}, &CouponError{Reason: best, Code: trimmed}
}

// couponProgress ranks a rejection by how many checks the offer passed before it.
var couponProgress = map[CouponReason]int{
	CouponReasonInvalid:   0,
	CouponReasonInactive:  1,
	CouponReasonExpired:   2,
	CouponReasonExhausted: 3,
}

func couponRejection(offer Offer, now time.Time) CouponReason {
	switch {
	case !offer.IsActive:
		return CouponReasonInactive
	case !offer.InWindow(now):
		return CouponReasonExpired
	case offer.Exhausted():
		return CouponReasonExhausted
	}
	return ""
}

// ComputeDiscount returns the discount for baseAmount and the resulting final amount.
// Fixed discounts are capped at baseAmount so the final amount never goes negative.
func ComputeDiscount(offer Offer, baseAmount float64) (discount float64, final float64) {
	switch offer.DiscountType {
	case domain.DiscountPercentage:
		discount = Round2(baseAmount * offer.DiscountValue / 100)
	case domain.DiscountFixed:
		discount = math.Min(offer.DiscountValue, baseAmount)
	}
	return discount, Round2(baseAmount - discount)
}

// ActiveOffers keeps offers that are flagged active and inside their window. Usage limits are ignored.
func ActiveOffers(offers []Offer, now time.Time) []Offer {
	out := make([]Offer, 0, len(offers))
	for _, offer := range offers {
		if offer.IsActive && offer.InWindow(now) {
			out = append(out, offer)
		}
	}
	return out
}
