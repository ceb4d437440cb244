package invsdk

import (
	"context"
	"fmt"
	"net/http"
)

// The ledger is append-only: there is no update or delete.

// ListTransactions returns the ledger entries matching filter (nil for all).
// Requires: authenticated session
func (s *Session) ListTransactions(ctx context.Context, filter *TransactionFilter) ([]Transaction, error) {
	out, err := sendJSON[[]Transaction](ctx, s, http.MethodGet, withQuery("/transactions", filter.Values()), nil)
	if err != nil {
		return nil, err
	}
	return *out, nil
}

// GetTransaction returns one ledger entry.
// Requires: authenticated session
func (s *Session) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	return sendJSON[Transaction](ctx, s, http.MethodGet, fmt.Sprintf("/transactions/%d", id), nil)
}

// CreateTransaction records a stock movement.
// Requires: authenticated session
func (s *Session) CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*Transaction, error) {
	return sendJSON[Transaction](ctx, s, http.MethodPost, "/transactions", req)
}
