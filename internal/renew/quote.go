// Package renew computes renewal price quotes and client-side payment
// intents. Settlement and confirmation live entirely in the external payment
// system; nothing here touches money.
package renew

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/accountpro/cli/internal/catalog"
)

// ErrInvalidCoupon is returned when no active coupon matches the given code.
var ErrInvalidCoupon = errors.New("coupon code is invalid or inactive")

// CouponService looks up active coupons by code.
type CouponService interface {
	// ActiveByCode returns the active coupons whose code equals the given
	// string. An empty slice means no match.
	ActiveByCode(ctx context.Context, code string) ([]catalog.Coupon, error)
}

// VerifyCoupon resolves a code to an applicable coupon. Matching is exact and
// case-sensitive regardless of how the backend compares strings.
func VerifyCoupon(ctx context.Context, svc CouponService, code string) (*catalog.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInvalidCoupon
	}
	coupons, err := svc.ActiveByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	for i := range coupons {
		if coupons[i].Status && coupons[i].Code == code {
			return &coupons[i], nil
		}
	}
	return nil, ErrInvalidCoupon
}

// Quote is a computed renewal price before any external payment confirmation.
type Quote struct {
	Package       catalog.RenewalPackage
	DeviceCount   int
	OriginalPrice float64
	Discount      float64
	FinalPrice    float64
	Coupon        *catalog.Coupon
}

// BuildQuote prices a package for the chosen device count and optional
// coupon. The final price never goes below zero.
func BuildQuote(pkg catalog.RenewalPackage, deviceCount int, coupon *catalog.Coupon) (*Quote, error) {
	if deviceCount < 1 {
		return nil, fmt.Errorf("device count must be at least 1, got %d", deviceCount)
	}

	q := &Quote{
		Package:       pkg,
		DeviceCount:   deviceCount,
		OriginalPrice: pkg.Price * float64(deviceCount),
		Coupon:        coupon,
	}
	q.FinalPrice = q.OriginalPrice

	if coupon != nil {
		q.Discount = q.OriginalPrice * coupon.Percent / 100
		q.FinalPrice = q.OriginalPrice - q.Discount
		if q.FinalPrice < 0 {
			q.FinalPrice = 0
		}
	}
	return q, nil
}
