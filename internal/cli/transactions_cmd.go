package cli

import (
	"context"
	"time"

	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
)

// transactionDateLayout matches what the web client sends: UTC ISO 8601 with
// milliseconds.
const transactionDateLayout = "2006-01-02T15:04:05.000Z07:00"

var transactionHeaders = []string{"ID", "DATE", "TYPE", "PRODUCT", "QTY", "SUPPLIER", "USER", "PRICE"}

func transactionRow(t invsdk.Transaction) []string {
	return []string{
		itoa(t.TransactionID), t.TransactionDate, t.TransactionType, itoa(t.ProductID),
		itoa(t.Quantity), optInt(t.SupplierID), itoa(t.UserID), optMoney(t.Price),
	}
}

func (c *CLI) transactions(ctx context.Context, line, args []string) error {
	action, rest, err := subcommand("transactions", args, "list", "get", "create")
	if err != nil {
		return err
	}

	switch action {
	case "list":
		return c.listTransactions(ctx, line, rest)
	case "get":
		return c.getTransaction(ctx, line, rest)
	default:
		return c.createTransaction(ctx, line, rest)
	}
}

func (c *CLI) listTransactions(ctx context.Context, line, args []string) error {
	f := c.newFlags("transactions list")
	product := f.Int64("product", 0, "only this product id")
	txType := f.String("type", "", "Delivery, Pull-out, Sale or Return")
	start := f.String("from", "", "on or after this date")
	end := f.String("to", "", "on or before this date")
	user := f.Int64("user", 0, "only this user id")
	supplier := f.Int64("supplier", 0, "only this supplier id")

	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	if err := noArgs("transactions list", positional); err != nil {
		return err
	}
	if err := c.enter("/transactions", line); err != nil {
		return err
	}

	txs, err := c.api.ListTransactions(ctx, &invsdk.TransactionFilter{
		ProductID:       f.intPtr("product", *product),
		TransactionType: *txType,
		StartDate:       *start,
		EndDate:         *end,
		UserID:          f.intPtr("user", *user),
		SupplierID:      f.intPtr("supplier", *supplier),
	})
	if err != nil {
		return c.fail("load transactions", err)
	}

	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, transactionRow(t))
	}
	return c.emit(f.json, txs, transactionHeaders, rows)
}

func (c *CLI) getTransaction(ctx context.Context, line, args []string) error {
	f := c.newFlags("transactions get")
	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	id, err := parseID("transactions get", positional)
	if err != nil {
		return err
	}
	if err := c.enter("/transactions/"+itoa(id), line); err != nil {
		return err
	}

	t, err := c.api.GetTransaction(ctx, id)
	if err != nil {
		return c.fail("load transaction", err)
	}
	return c.emit(f.json, t, transactionHeaders, [][]string{transactionRow(*t)})
}

// createTransaction records a stock movement for the logged in user unless
// --user says otherwise. The date defaults to now.
func (c *CLI) createTransaction(ctx context.Context, line, args []string) error {
	f := c.newFlags("transactions create")
	product := f.Int64("product", 0, "product id")
	txType := f.String("type", "", "Delivery, Pull-out, Sale or Return")
	quantity := f.Int64("quantity", 0, "units moved")
	date := f.String("date", "", "ISO 8601 date, defaults to now")
	supplier := f.Int64("supplier", 0, "supplier id, required for Delivery and Pull-out")
	user := f.Int64("user", 0, "user id, defaults to the logged in user")
	price := f.Float64("price", 0, "unit price, the backend prices Sale and Return itself")

	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	if err := noArgs("transactions create", positional); err != nil {
		return err
	}
	if err := c.enter("/transactions/new", line); err != nil {
		return err
	}

	userID := *user
	if !f.isSet("user") {
		if claims, err := c.manager.Claims(); err == nil {
			userID = claims.UserID
		}
	}

	when := *date
	if when == "" {
		when = time.Now().UTC().Format(transactionDateLayout)
	}

	t, err := c.api.CreateTransaction(ctx, &invsdk.CreateTransactionRequest{
		ProductID:       *product,
		TransactionType: *txType,
		Quantity:        *quantity,
		TransactionDate: when,
		SupplierID:      f.intPtr("supplier", *supplier),
		UserID:          userID,
		Price:           f.floatPtr("price", *price),
	})
	if err != nil {
		return c.fail("record transaction", err)
	}

	c.notifier.ReportSuccess("Transaction recorded")
	return c.emit(f.json, t, transactionHeaders, [][]string{transactionRow(*t)})
}
