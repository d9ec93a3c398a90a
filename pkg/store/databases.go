package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DocumentList is a page of documents returned by a list query.
type DocumentList[T any] struct {
	Total     int64 `json:"total"`
	Documents []T   `json:"documents"`
}

// ListDocuments queries a collection and decodes each document into T.
func ListDocuments[T any](ctx context.Context, c *Client, databaseID, collectionID string, queries ...Query) (*DocumentList[T], error) {
	values := url.Values{}
	for _, q := range queries {
		values.Add("queries[]", string(q))
	}

	path := fmt.Sprintf("/databases/%s/collections/%s/documents", databaseID, collectionID)
	var list DocumentList[T]
	if err := c.do(ctx, http.MethodGet, path, values, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetDocument fetches a single document by ID.
func GetDocument[T any](ctx context.Context, c *Client, databaseID, collectionID, documentID string) (*T, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents/%s", databaseID, collectionID, documentID)
	var doc T
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpdateDocument patches the given attributes on a document and returns the
// updated document.
func UpdateDocument[T any](ctx context.Context, c *Client, databaseID, collectionID, documentID string, data any) (*T, error) {
	path := fmt.Sprintf("/databases/%s/collections/%s/documents/%s", databaseID, collectionID, documentID)
	body := map[string]any{"data": data}
	var doc T
	if err := c.do(ctx, http.MethodPatch, path, nil, body, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
