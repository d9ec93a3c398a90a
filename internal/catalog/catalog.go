// Package catalog holds the CLI's view of the hosted collections: orders,
// the tool catalog, and coupons.
package catalog

import (
	"encoding/json"
	"time"
)

// Collection and database identifiers of the hosted deployment.
const (
	DatabaseID        = "accountPro"
	OrdersCollection  = "orders"
	ToolsCollection   = "listTool"
	CouponsCollection = "coupon"
)

// Subscription is an order document: a user's paid right to use one tool with
// a device-count quota.
type Subscription struct {
	ID       string  `json:"$id"`
	UserID   string  `json:"userId"`
	ToolID   string  `json:"toolId"`
	ToolName string  `json:"toolName"`
	Price    float64 `json:"price"`
	// Attribute name including the typo is fixed by the hosted collection.
	ExpirationDate time.Time `json:"expriration_date"`
	Status         bool      `json:"status"`
	MaxDevice      int       `json:"max_device"`
	Devices        []string  `json:"devices"`
}

// Expired reports whether the subscription's expiration has passed.
func (s *Subscription) Expired(now time.Time) bool {
	return now.After(s.ExpirationDate)
}

// DeviceLimit returns the subscription's device quota, defaulting to one when
// the attribute is unset.
func (s *Subscription) DeviceLimit() int {
	if s.MaxDevice <= 0 {
		return 1
	}
	return s.MaxDevice
}

// HasDevice reports whether the given device token is already bound.
func (s *Subscription) HasDevice(token string) bool {
	if token == "" {
		return false
	}
	for _, d := range s.Devices {
		if d == token {
			return true
		}
	}
	return false
}

// ToolRecord is a catalog document: connection details for a purchasable tool.
// Cookie holds a serialized session-cookie bundle; Package holds the renewal
// package list, either as a JSON string or as a pre-parsed array.
type ToolRecord struct {
	ID        string          `json:"$id"`
	Name      string          `json:"name"`
	URL       string          `json:"url"`
	Cookie    string          `json:"cookie"`
	Package   json.RawMessage `json:"package,omitempty"`
	MaxDevice int             `json:"max_device"`
	Price     float64         `json:"price"`
	Type      string          `json:"type"`
	Desc      string          `json:"desc"`
	Status    bool            `json:"status"`
}

// Coupon is a discount code document. Only active coupons matching a code
// exactly are applicable.
type Coupon struct {
	ID      string  `json:"$id"`
	Code    string  `json:"code"`
	Percent float64 `json:"percent"`
	Status  bool    `json:"status"`
}
