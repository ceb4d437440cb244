package invsdk

import (
	"net/url"
	"strconv"
)

// ProductFilter narrows ListProducts. Unset fields are not sent.
type ProductFilter struct {
	CategoryID     *int64
	SupplierID     *int64
	ItemCode       string
	Name           string
	IsActive       *bool
	StockOnHandLTE *int64
	StockOnHandGTE *int64
}

func (f *ProductFilter) Values() url.Values {
	v := url.Values{}
	if f == nil {
		return v
	}
	setInt(v, "category_id", f.CategoryID)
	setInt(v, "supplier_id", f.SupplierID)
	setString(v, "item_code", f.ItemCode)
	setString(v, "name", f.Name)
	setFlag(v, "is_active", f.IsActive)
	setInt(v, "stock_on_hand_lte", f.StockOnHandLTE)
	setInt(v, "stock_on_hand_gte", f.StockOnHandGTE)
	return v
}

// UserFilter narrows ListUsers. Unset fields are not sent.
type UserFilter struct {
	Username string
	Role     string
	IsActive *bool
}

func (f *UserFilter) Values() url.Values {
	v := url.Values{}
	if f == nil {
		return v
	}
	setString(v, "username", f.Username)
	setString(v, "role", f.Role)
	setFlag(v, "is_active", f.IsActive)
	return v
}

// TransactionFilter narrows ListTransactions. Dates are compared as strings
// by the backend, so use the same ISO 8601 layout the ledger stores.
type TransactionFilter struct {
	ProductID       *int64
	TransactionType string
	StartDate       string
	EndDate         string
	UserID          *int64
	SupplierID      *int64
}

func (f *TransactionFilter) Values() url.Values {
	v := url.Values{}
	if f == nil {
		return v
	}
	setInt(v, "product_id", f.ProductID)
	setString(v, "transaction_type", f.TransactionType)
	setString(v, "start_date", f.StartDate)
	setString(v, "end_date", f.EndDate)
	setInt(v, "user_id", f.UserID)
	setInt(v, "supplier_id", f.SupplierID)
	return v
}

// withQuery appends an encoded query string to path when v is not empty.
func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

func setString(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setInt(v url.Values, key string, val *int64) {
	if val != nil {
		v.Set(key, strconv.FormatInt(*val, 10))
	}
}

// setFlag sends booleans as 0/1, which is how the backend stores them.
func setFlag(v url.Values, key string, val *bool) {
	if val == nil {
		return
	}
	if *val {
		v.Set(key, "1")
	} else {
		v.Set(key, "0")
	}
}
