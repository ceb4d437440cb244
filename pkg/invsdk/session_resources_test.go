package invsdk

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder captures the last request and answers with a canned response.
type recorder struct {
	method string
	path   string
	query  string
	body   map[string]any
	status int
	reply  string
}

func (rec *recorder) server(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.body = nil

		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}

		w.WriteHeader(rec.status)
		_, _ = w.Write([]byte(rec.reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProducts(t *testing.T) {
	rec := &recorder{status: http.StatusOK}
	api := NewSDKClient(rec.server(t).URL).Session(&fakeAuth{token: "A", role: RoleManager})
	ctx := context.Background()

	t.Run("list with filter", func(t *testing.T) {
		rec.reply = `[{"product_id":7,"name":"Bolt","is_active":1,"is_vat_exempt":0}]`

		products, err := api.ListProducts(ctx, &ProductFilter{
			CategoryID:     Ptr[int64](2),
			IsActive:       Ptr(true),
			StockOnHandLTE: Ptr[int64](5),
		})
		require.NoError(t, err)
		require.Equal(t, "/products", rec.path)
		require.Equal(t, "category_id=2&is_active=1&stock_on_hand_lte=5", rec.query)
		require.Len(t, products, 1)
		require.True(t, bool(products[0].IsActive))
		require.False(t, bool(products[0].IsVATExempt))
	})

	t.Run("create", func(t *testing.T) {
		rec.status = http.StatusCreated
		rec.reply = `{"product_id":8,"item_code":"B-1","name":"Bolt","is_active":true}`

		p, err := api.CreateProduct(ctx, &CreateProductRequest{
			ItemCode: "B-1", Name: "Bolt", SupplierID: 1, CategoryID: 2, UnitCost: 1.5, SellingPrice: 2,
		})
		require.NoError(t, err)
		require.EqualValues(t, 8, p.ProductID)
		require.Equal(t, http.MethodPost, rec.method)
		require.Equal(t, "B-1", rec.body["item_code"])
		require.Equal(t, false, rec.body["is_vat_exempt"])
	})

	t.Run("create rejects invalid payload locally", func(t *testing.T) {
		rec.path = ""
		_, err := api.CreateProduct(ctx, &CreateProductRequest{Name: "Bolt", UnitCost: -1})

		var valErr *ValidationError
		require.True(t, errors.As(err, &valErr))
		require.Contains(t, valErr.Fields, "item_code")
		require.Contains(t, valErr.Fields, "unit_cost")
		require.Empty(t, rec.path)
	})

	t.Run("patch sends only set fields", func(t *testing.T) {
		rec.status = http.StatusOK
		rec.reply = `{"product_id":8,"name":"Hex bolt"}`

		_, err := api.PatchProduct(ctx, 8, &PatchProductRequest{Name: Ptr("Hex bolt")})
		require.NoError(t, err)
		require.Equal(t, http.MethodPatch, rec.method)
		require.Equal(t, "/products/8", rec.path)
		require.Equal(t, map[string]any{"name": "Hex bolt"}, rec.body)
	})

	t.Run("get not found", func(t *testing.T) {
		rec.status = http.StatusNotFound
		rec.reply = `{"message":"Product not found"}`

		_, err := api.GetProduct(ctx, 99)
		require.ErrorIs(t, err, ErrNotFound)
		require.EqualError(t, err, "Product not found")
	})

	t.Run("manager cannot delete", func(t *testing.T) {
		require.ErrorIs(t, api.DeleteProduct(ctx, 8), ErrInsufficientRole)
	})
}

func TestCategoryDeleteConflict(t *testing.T) {
	rec := &recorder{status: http.StatusConflict, reply: `{"message":"Cannot delete category with associated products."}`}
	api := NewSDKClient(rec.server(t).URL).Session(&fakeAuth{token: "A", role: RoleAdministrator})

	err := api.DeleteCategory(context.Background(), 4)
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, http.MethodDelete, rec.method)
	require.Equal(t, "/categories/4", rec.path)
}

func TestUsers(t *testing.T) {
	rec := &recorder{status: http.StatusOK, reply: `[{"user_id":1,"username":"admin","role":"Administrator","is_active":1}]`}
	api := NewSDKClient(rec.server(t).URL).Session(&fakeAuth{token: "A", role: RoleAdministrator})
	ctx := context.Background()

	users, err := api.ListUsers(ctx, &UserFilter{Role: RoleAdministrator, IsActive: Ptr(false)})
	require.NoError(t, err)
	require.Equal(t, "is_active=0&role=Administrator", rec.query)
	require.Equal(t, "admin", users[0].Username)

	_, err = api.CreateUser(ctx, &CreateUserRequest{Username: "bob", Password: "pw", Role: "Janitor"})
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	require.Contains(t, valErr.Fields["role"], "must be one of")
}

func TestTransactions(t *testing.T) {
	rec := &recorder{status: http.StatusCreated, reply: `{"transaction_id":1,"transaction_type":"Delivery","supplier_id":3}`}
	api := NewSDKClient(rec.server(t).URL).Session(&fakeAuth{token: "A", role: RoleStaff})
	ctx := context.Background()

	t.Run("delivery needs a supplier", func(t *testing.T) {
		_, err := api.CreateTransaction(ctx, &CreateTransactionRequest{
			ProductID: 1, TransactionType: TransactionDelivery, Quantity: 5,
			TransactionDate: "2024-03-01T10:00:00Z", UserID: 1,
		})

		var valErr *ValidationError
		require.True(t, errors.As(err, &valErr))
		require.Equal(t, "supplier_id is required for Delivery transactions", valErr.Fields["supplier_id"])
	})

	t.Run("sale without supplier", func(t *testing.T) {
		_, err := api.CreateTransaction(ctx, &CreateTransactionRequest{
			ProductID: 1, TransactionType: TransactionSale, Quantity: 1,
			TransactionDate: "2024-03-01T10:00:00Z", UserID: 1,
		})
		require.NoError(t, err)
		require.NotContains(t, rec.body, "supplier_id")
	})

	t.Run("list with date range", func(t *testing.T) {
		rec.status = http.StatusOK
		rec.reply = `[]`

		txs, err := api.ListTransactions(ctx, &TransactionFilter{StartDate: "2024-01-01", EndDate: "2024-12-31"})
		require.NoError(t, err)
		require.Empty(t, txs)
		require.Equal(t, "end_date=2024-12-31&start_date=2024-01-01", rec.query)
	})
}

func TestFlag(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{`true`: true, `1`: true, `false`: false, `0`: false, `null`: false} {
		var f Flag
		require.NoError(t, json.Unmarshal([]byte(in), &f), in)
		require.Equal(t, want, bool(f), in)
	}

	var f Flag
	require.Error(t, json.Unmarshal([]byte(`"yes"`), &f))

	out, err := json.Marshal(struct {
		A Flag `json:"a"`
	}{A: true})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":true}`, string(out))
}
