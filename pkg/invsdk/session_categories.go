package invsdk

import (
	"context"
	"fmt"
	"net/http"
)

// ListCategories returns every category.
func (s *Session) ListCategories(ctx context.Context) ([]Category, error) {
	out, err := sendJSON[[]Category](ctx, s, http.MethodGet, "/categories", nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetCategory returns one category.
func (s *Session) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return sendJSON[Category](ctx, s, http.MethodGet, categoryPath(id), nil)
}

// CreateCategory adds a category.
// Requires: Administrator or Manager
func (s *Session) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*Category, error) {
	return sendJSON[Category](ctx, s, http.MethodPost, "/categories", req, rolesManage...)
}

// UpdateCategory replaces a category.
// Requires: Administrator or Manager
func (s *Session) UpdateCategory(ctx context.Context, id int64, req *UpdateCategoryRequest) (*Category, error) {
	return sendJSON[Category](ctx, s, http.MethodPut, categoryPath(id), req, rolesManage...)
}

// PatchCategory changes the set fields of a category.
// Requires: Administrator or Manager
func (s *Session) PatchCategory(ctx context.Context, id int64, req *PatchCategoryRequest) (*Category, error) {
	return sendJSON[Category](ctx, s, http.MethodPatch, categoryPath(id), req, rolesManage...)
}

// DeleteCategory removes a category. The backend answers 409 (ErrConflict)
// while products still reference it.
// Requires: Administrator
func (s *Session) DeleteCategory(ctx context.Context, id int64) error {
	return s.sendNoContent(ctx, http.MethodDelete, categoryPath(id), rolesAdmin...)
}

func categoryPath(id int64) string {
	return fmt.Sprintf("/categories/%d", id)
}
