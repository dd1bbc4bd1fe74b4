package services

import (
	"errors"
	"testing"
	"time"

	domain "github.com/laundryhub/api/internal/domain"
)

func couponFixture(now time.Time) Offer {
	return Offer{
		ID:            "off_1",
		Title:         "Winter",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: 10,
		CouponCode:    "WINTER10",
		ValidFrom:     now.Add(-time.Hour),
		ValidTo:       now.Add(time.Hour),
		IsActive:      true,
	}
}

func TestValidateCouponOrderedChecks(t *testing.T) {
	now := time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC)
	base := couponFixture(now)

	inactive := base
	inactive.IsActive = false
	// Inactive and expired: the inactive check wins.
	inactive.ValidTo = now.Add(-time.Minute)

	expired := base
	expired.ValidTo = now.Add(-time.Minute)
	expired.UsageLimit = intPtr(1)
	expired.UsedCount = 1

	exhausted := base
	exhausted.UsageLimit = intPtr(3)
	exhausted.UsedCount = 3

	tests := []struct {
		name    string
		code    string
		offer   Offer
		reason  CouponReason
		message string
	}{
		{name: "empty", code: "  ", offer: base, reason: CouponReasonEmpty, message: "enter a code"},
		{name: "unknown", code: "SUMMER", offer: base, reason: CouponReasonInvalid, message: "invalid code"},
		{name: "inactive", code: "WINTER10", offer: inactive, reason: CouponReasonInactive, message: "offer not active"},
		{name: "outside window", code: "WINTER10", offer: expired, reason: CouponReasonExpired, message: "not valid at this time"},
		{name: "exhausted", code: "WINTER10", offer: exhausted, reason: CouponReasonExhausted, message: "usage limit reached"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateCoupon(tc.code, []Offer{tc.offer}, now)
			var couponErr *CouponError
			if !errors.As(err, &couponErr) {
				t.Fatalf("expected CouponError, got %v", err)
			}
			if couponErr.Reason != tc.reason {
				t.Fatalf("expected reason %s, got %s", tc.reason, couponErr.Reason)
			}
			if couponErr.Message() != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, couponErr.Message())
			}
		})
	}
}

func TestValidateCouponCaseInsensitiveAndInclusiveWindow(t *testing.T) {
	now := time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC)
	offer := couponFixture(now)
	offer.ValidTo = now

	got, err := ValidateCoupon(" winter10 ", []Offer{offer}, now)
	if err != nil {
		t.Fatalf("ValidateCoupon: %v", err)
	}
	if got.ID != offer.ID {
		t.Fatalf("unexpected offer %+v", got)
	}

	offer.ValidFrom = now
	offer.ValidTo = now.Add(time.Hour)
	if _, err := ValidateCoupon("WINTER10", []Offer{offer}, now); err != nil {
		t.Fatalf("expected validFrom boundary to be accepted, got %v", err)
	}
}

func TestValidateCouponUsageLimitBoundary(t *testing.T) {
	now := time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC)
	offer := couponFixture(now)
	offer.UsageLimit = intPtr(5)

	offer.UsedCount = 4
	if _, err := ValidateCoupon("WINTER10", []Offer{offer}, now); err != nil {
		t.Fatalf("expected one remaining use to be accepted, got %v", err)
	}
	offer.UsedCount = 5
	if _, err := ValidateCoupon("WINTER10", []Offer{offer}, now); err == nil {
		t.Fatalf("expected exhausted coupon to be rejected")
	}
}

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name         string
		offer        Offer
		base         float64
		wantDiscount float64
		wantFinal    float64
	}{
		{name: "percentage", offer: Offer{DiscountType: domain.DiscountPercentage, DiscountValue: 10}, base: 90, wantDiscount: 9, wantFinal: 81},
		{name: "percentage rounds", offer: Offer{DiscountType: domain.DiscountPercentage, DiscountValue: 10}, base: 33.33, wantDiscount: 3.33, wantFinal: 30},
		{name: "fixed capped", offer: Offer{DiscountType: domain.DiscountFixed, DiscountValue: 100}, base: 40, wantDiscount: 40, wantFinal: 0},
		{name: "fixed", offer: Offer{DiscountType: domain.DiscountFixed, DiscountValue: 25}, base: 40, wantDiscount: 25, wantFinal: 15},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			discount, final := ComputeDiscount(tc.offer, tc.base)
			if discount != tc.wantDiscount || final != tc.wantFinal {
				t.Fatalf("expected %v/%v, got %v/%v", tc.wantDiscount, tc.wantFinal, discount, final)
			}
		})
	}
}

func TestComputeDiscountFixedNeverExceedsBase(t *testing.T) {
	for _, value := range []float64{1, 10, 49.99, 50, 50.01, 1000} {
		for _, base := range []float64{0, 0.5, 25, 50, 75.25} {
			discount, final := ComputeDiscount(Offer{DiscountType: domain.DiscountFixed, DiscountValue: value}, base)
			if discount > base || final < 0 {
				t.Fatalf("value %v base %v: discount %v final %v", value, base, discount, final)
			}
		}
	}
}

func TestActiveOffersIgnoresUsage(t *testing.T) {
	now := time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC)
	live := couponFixture(now)
	live.UsageLimit = intPtr(1)
	live.UsedCount = 1

	off := couponFixture(now)
	off.ID = "off_2"
	off.IsActive = false

	future := couponFixture(now)
	future.ID = "off_3"
	future.ValidFrom = now.Add(time.Hour)
	future.ValidTo = now.Add(2 * time.Hour)

	active := ActiveOffers([]Offer{live, off, future}, now)
	if len(active) != 1 || active[0].ID != live.ID {
		t.Fatalf("expected only the live offer, got %+v", active)
	}
}

func TestValidateCouponPrefersUsableOfferForReusedCode(t *testing.T) {
	now := time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC)
	ended := couponFixture(now)
	ended.ID = "off_old"
	ended.ValidFrom = now.Add(-72 * time.Hour)
	ended.ValidTo = now.Add(-48 * time.Hour)
	live := couponFixture(now)
	live.ID = "off_new"

	got, err := ValidateCoupon("WINTER10", []Offer{ended, live}, now)
	if err != nil {
		t.Fatalf("ValidateCoupon: %v", err)
	}
	if got.ID != "off_new" {
		t.Fatalf("expected live offer, got %s", got.ID)
	}
}

func TestValidateCouponReportsFurthestRejection(t *testing.T) {
	now := time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC)
	inactive := couponFixture(now)
	inactive.IsActive = false
	ended := couponFixture(now)
	ended.ValidTo = now.Add(-time.Hour)
	ended.ValidFrom = now.Add(-2 * time.Hour)
	used := couponFixture(now)
	used.UsageLimit = intPtr(1)
	used.UsedCount = 1

	cases := []struct {
		name   string
		offers []Offer
		reason CouponReason
	}{
		{name: "inactive only", offers: []Offer{inactive}, reason: CouponReasonInactive},
		{name: "expired beats inactive", offers: []Offer{inactive, ended}, reason: CouponReasonExpired},
		{name: "exhausted beats expired", offers: []Offer{ended, used, inactive}, reason: CouponReasonExhausted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateCoupon("winter10", tc.offers, now)
			var couponErr *CouponError
			if !errors.As(err, &couponErr) || couponErr.Reason != tc.reason {
				t.Fatalf("expected %s, got %v", tc.reason, err)
			}
		})
	}
}
