package invsdk

import (
	"context"
	"fmt"
	"net/http"
)

// ListProducts returns the products matching filter (nil for all).
// Requires: authenticated session
func (s *Session) ListProducts(ctx context.Context, filter *ProductFilter) ([]Product, error) {
	out, err := sendJSON[[]Product](ctx, s, http.MethodGet, withQuery("/products", filter.Values()), nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetProduct returns one product.
// Requires: authenticated session
func (s *Session) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return sendJSON[Product](ctx, s, http.MethodGet, productPath(id), nil)
}

// CreateProduct adds a product to the catalog.
// Requires: Administrator or Manager
func (s *Session) CreateProduct(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	return sendJSON[Product](ctx, s, http.MethodPost, "/products", req, rolesManage...)
}

// UpdateProduct replaces a product.
// Requires: Administrator or Manager
func (s *Session) UpdateProduct(ctx context.Context, id int64, req *UpdateProductRequest) (*Product, error) {
	return sendJSON[Product](ctx, s, http.MethodPut, productPath(id), req, rolesManage...)
}

// PatchProduct changes the set fields of a product.
// Requires: Administrator or Manager
func (s *Session) PatchProduct(ctx context.Context, id int64, req *PatchProductRequest) (*Product, error) {
	return sendJSON[Product](ctx, s, http.MethodPatch, productPath(id), req, rolesManage...)
}

// DeleteProduct deactivates a product. The row is kept so the ledger still
// resolves.
// Requires: Administrator
func (s *Session) DeleteProduct(ctx context.Context, id int64) error {
	return s.sendNoContent(ctx, http.MethodDelete, productPath(id), rolesAdmin...)
}

func productPath(id int64) string {
	return fmt.Sprintf("/products/%d", id)
}
