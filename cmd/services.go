package cmd

import (
	"context"

	"github.com/samber/lo"

	"github.com/accountpro/cli/internal/catalog"
	"github.com/accountpro/cli/pkg/store"
)

// Collections are queried with a fixed page cap; the deployment has no
// pagination beyond it.
const pageCap = 100

// storeOrders serves the orders collection.
type storeOrders struct {
	client *store.Client
	db     string
}

func (s *storeOrders) ListActive(ctx context.Context, userID string) ([]catalog.Subscription, error) {
	list, err := store.ListDocuments[catalog.Subscription](ctx, s.client, s.db, catalog.OrdersCollection,
		store.Equal("userId", userID),
		store.Equal("status", true),
		store.Limit(pageCap),
	)
	if err != nil {
		return nil, err
	}
	return list.Documents, nil
}

func (s *storeOrders) Get(ctx context.Context, orderID string) (*catalog.Subscription, error) {
	return store.GetDocument[catalog.Subscription](ctx, s.client, s.db, catalog.OrdersCollection, orderID)
}

func (s *storeOrders) SetDevices(ctx context.Context, orderID string, devices []string) error {
	_, err := store.UpdateDocument[catalog.Subscription](ctx, s.client, s.db, catalog.OrdersCollection, orderID,
		map[string]any{"devices": devices})
	return err
}

// storeTools serves the tool catalog collection.
type storeTools struct {
	client *store.Client
	db     string
}

func (s *storeTools) Get(ctx context.Context, toolID string) (*catalog.ToolRecord, error) {
	return store.GetDocument[catalog.ToolRecord](ctx, s.client, s.db, catalog.ToolsCollection, toolID)
}

func (s *storeTools) ListByIDs(ctx context.Context, ids []string) ([]catalog.ToolRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	list, err := store.ListDocuments[catalog.ToolRecord](ctx, s.client, s.db, catalog.ToolsCollection,
		store.Equal("$id", lo.ToAnySlice(ids)...),
		store.Limit(pageCap),
	)
	if err != nil {
		return nil, err
	}
	return list.Documents, nil
}

func (s *storeTools) ListForSale(ctx context.Context) ([]catalog.ToolRecord, error) {
	list, err := store.ListDocuments[catalog.ToolRecord](ctx, s.client, s.db, catalog.ToolsCollection,
		store.Equal("status", true),
		store.Select("name", "price", "type"),
		store.Limit(pageCap),
	)
	if err != nil {
		return nil, err
	}
	return list.Documents, nil
}

// storeCoupons serves the coupon collection.
type storeCoupons struct {
	client *store.Client
	db     string
}

func (s *storeCoupons) ActiveByCode(ctx context.Context, code string) ([]catalog.Coupon, error) {
	list, err := store.ListDocuments[catalog.Coupon](ctx, s.client, s.db, catalog.CouponsCollection,
		store.Equal("code", code),
		store.Equal("status", true),
		store.Limit(1),
	)
	if err != nil {
		return nil, err
	}
	return list.Documents, nil
}
