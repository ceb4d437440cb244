package invsdk

import (
	"context"
	"fmt"
	"net/http"
)

// ListSuppliers returns every supplier.
// Requires: authenticated session
func (s *Session) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	out, err := sendJSON[[]Supplier](ctx, s, http.MethodGet, "/suppliers", nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetSupplier returns one supplier.
// Requires: authenticated session
func (s *Session) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	return sendJSON[Supplier](ctx, s, http.MethodGet, supplierPath(id), nil)
}

// CreateSupplier registers a supplier.
// Requires: Administrator or Manager
func (s *Session) CreateSupplier(ctx context.Context, req *CreateSupplierRequest) (*Supplier, error) {
	return sendJSON[Supplier](ctx, s, http.MethodPost, "/suppliers", req, rolesManage...)
}

// UpdateSupplier replaces a supplier.
// Requires: Administrator or Manager
func (s *Session) UpdateSupplier(ctx context.Context, id int64, req *UpdateSupplierRequest) (*Supplier, error) {
	return sendJSON[Supplier](ctx, s, http.MethodPut, supplierPath(id), req, rolesManage...)
}

// PatchSupplier changes the set fields of a supplier.
// Requires: Administrator or Manager
func (s *Session) PatchSupplier(ctx context.Context, id int64, req *PatchSupplierRequest) (*Supplier, error) {
	return sendJSON[Supplier](ctx, s, http.MethodPatch, supplierPath(id), req, rolesManage...)
}

// DeleteSupplier removes a supplier. The backend answers 409 (ErrConflict)
// while products or transactions still reference it.
// Requires: Administrator
func (s *Session) DeleteSupplier(ctx context.Context, id int64) error {
	return s.sendNoContent(ctx, http.MethodDelete, supplierPath(id), rolesAdmin...)
}

func supplierPath(id int64) string {
	return fmt.Sprintf("/suppliers/%d", id)
}
