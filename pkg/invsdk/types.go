package invsdk

import (
	"bytes"
	"fmt"
	"strconv"
)

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse is the backend's error body.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse is returned by POST /users/login and POST /users/refresh.
type TokenResponse struct {
	// AccessToken is the short lived HS256 JWT sent as a bearer token
	AccessToken string `json:"access_token"`

	// RefreshToken is exchanged, together with the access token, for a new pair
	RefreshToken string `json:"refresh_token"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ============================================================================
// Roles
// ============================================================================

// Roles known to the backend.
const (
	RoleAdministrator = "Administrator"
	RoleManager       = "Manager"
	RoleStaff         = "Staff"
)

// Transaction types known to the backend.
const (
	TransactionDelivery = "Delivery"
	TransactionPullOut  = "Pull-out"
	TransactionSale     = "Sale"
	TransactionReturn   = "Return"
)

// ============================================================================
// Flag
// ============================================================================

// Flag is a boolean the backend stores as an SQLite integer. It decodes from
// true/false or 0/1 and always encodes as a JSON boolean.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	return strconv.AppendBool(nil, bool(f)), nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "true", "1":
		*f = true
	case "false", "0", "null":
		*f = false
	default:
		return fmt.Errorf("invsdk: invalid flag %s", data)
	}
	return nil
}

// Ptr returns a pointer to v. Handy for optional filter and patch fields.
func Ptr[T any](v T) *T {
	return &v
}

// ============================================================================
// Products
// ============================================================================

// Product is a catalog entry.
type Product struct {
	ProductID    int64   `json:"product_id"`
	ItemCode     string  `json:"item_code"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	SupplierID   int64   `json:"supplier_id"`
	CategoryID   int64   `json:"category_id"`
	UnitCost     float64 `json:"unit_cost"`
	SellingPrice float64 `json:"selling_price"`
	IsVATExempt  Flag    `json:"is_vat_exempt"`
	StockOnHand  int64   `json:"stock_on_hand"`
	IsActive     Flag    `json:"is_active"`
}

// CreateProductRequest creates a product. Stock starts at zero and only
// moves through transactions.
type CreateProductRequest struct {
	ItemCode     string  `json:"item_code" validate:"required,max=64"`
	Name         string  `json:"name" validate:"required,max=255"`
	Description  *string `json:"description,omitempty"`
	SupplierID   int64   `json:"supplier_id" validate:"required,gt=0"`
	CategoryID   int64   `json:"category_id" validate:"required,gt=0"`
	UnitCost     float64 `json:"unit_cost" validate:"gte=0"`
	SellingPrice float64 `json:"selling_price" validate:"gte=0"`
	IsVATExempt  Flag    `json:"is_vat_exempt"`
}

// UpdateProductRequest replaces every mutable product field.
type UpdateProductRequest struct {
	ItemCode     string  `json:"item_code" validate:"required,max=64"`
	Name         string  `json:"name" validate:"required,max=255"`
	Description  *string `json:"description,omitempty"`
	SupplierID   int64   `json:"supplier_id" validate:"required,gt=0"`
	CategoryID   int64   `json:"category_id" validate:"required,gt=0"`
	UnitCost     float64 `json:"unit_cost" validate:"gte=0"`
	SellingPrice float64 `json:"selling_price" validate:"gte=0"`
	IsVATExempt  Flag    `json:"is_vat_exempt"`
	IsActive     Flag    `json:"is_active"`
	StockOnHand  int64   `json:"stock_on_hand" validate:"gte=0"`
}

// PatchProductRequest changes only the fields that are set.
type PatchProductRequest struct {
	ItemCode     *string  `json:"item_code,omitempty" validate:"omitempty,min=1,max=64"`
	Name         *string  `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description  *string  `json:"description,omitempty"`
	SupplierID   *int64   `json:"supplier_id,omitempty" validate:"omitempty,gt=0"`
	CategoryID   *int64   `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	UnitCost     *float64 `json:"unit_cost,omitempty" validate:"omitempty,gte=0"`
	SellingPrice *float64 `json:"selling_price,omitempty" validate:"omitempty,gte=0"`
	IsVATExempt  *Flag    `json:"is_vat_exempt,omitempty"`
	IsActive     *Flag    `json:"is_active,omitempty"`
}

// ============================================================================
// Suppliers
// ============================================================================

type Supplier struct {
	SupplierID  int64   `json:"supplier_id"`
	Name        string  `json:"name"`
	ContactInfo *string `json:"contact_info"`
}

type CreateSupplierRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	ContactInfo *string `json:"contact_info,omitempty"`
}

type UpdateSupplierRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	ContactInfo string `json:"contact_info"`
}

type PatchSupplierRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	ContactInfo *string `json:"contact_info,omitempty"`
}

// ============================================================================
// Categories
// ============================================================================

type Category struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type UpdateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type PatchCategoryRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
}

// ============================================================================
// Users
// ============================================================================

type User struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsActive Flag   `json:"is_active"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=Administrator Manager Staff"`
}

type UpdateUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=Administrator Manager Staff"`
	IsActive Flag   `json:"is_active"`
}

type PatchUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=1,max=64"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=1"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=Administrator Manager Staff"`
	IsActive *Flag   `json:"is_active,omitempty"`
}

// ============================================================================
// Transactions
// ============================================================================

// Transaction is a ledger entry. Stock on hand is adjusted by the backend
// when a transaction is recorded.
type Transaction struct {
	TransactionID   int64    `json:"transaction_id"`
	ProductID       int64    `json:"product_id"`
	TransactionType string   `json:"transaction_type"`
	Quantity        int64    `json:"quantity"`
	TransactionDate string   `json:"transaction_date"`
	SupplierID      *int64   `json:"supplier_id"`
	UserID          int64    `json:"user_id"`
	Price           *float64 `json:"price"`
}

// CreateTransactionRequest records a transaction. Delivery and Pull-out
// require a supplier. The backend prices Sale and Return from the product's
// selling price, so Price is advisory.
type CreateTransactionRequest struct {
	ProductID       int64    `json:"product_id" validate:"required,gt=0"`
	TransactionType string   `json:"transaction_type" validate:"required,oneof=Delivery Pull-out Sale Return"`
	Quantity        int64    `json:"quantity" validate:"required,gt=0"`
	TransactionDate string   `json:"transaction_date" validate:"required"`
	SupplierID      *int64   `json:"supplier_id,omitempty" validate:"omitempty,gt=0"`
	UserID          int64    `json:"user_id" validate:"required,gt=0"`
	Price           *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}
