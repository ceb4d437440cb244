package cli

import (
	"context"

	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
)

var productHeaders = []string{"ID", "ITEM CODE", "NAME", "CATEGORY", "SUPPLIER", "COST", "PRICE", "VAT EXEMPT", "STOCK", "ACTIVE"}

func productRow(p invsdk.Product) []string {
	return []string{
		itoa(p.ProductID), p.ItemCode, p.Name, itoa(p.CategoryID), itoa(p.SupplierID),
		money(p.UnitCost), money(p.SellingPrice), yesNo(p.IsVATExempt), itoa(p.StockOnHand), yesNo(p.IsActive),
	}
}

func (c *CLI) products(ctx context.Context, line, args []string) error {
	action, rest, err := subcommand("products", args, "list", "get", "create", "update", "patch", "delete")
	if err != nil {
		return err
	}

	switch action {
	case "list":
		return c.listProducts(ctx, line, rest)
	case "get":
		return c.getProduct(ctx, line, rest)
	case "create":
		return c.createProduct(ctx, line, rest)
	case "update":
		return c.updateProduct(ctx, line, rest)
	case "patch":
		return c.patchProduct(ctx, line, rest)
	default:
		return c.deleteProduct(ctx, line, rest)
	}
}

func (c *CLI) listProducts(ctx context.Context, line, args []string) error {
	f := c.newFlags("products list")
	category := f.Int64("category", 0, "only this category id")
	supplier := f.Int64("supplier", 0, "only this supplier id")
	itemCode := f.String("item-code", "", "exact item code")
	name := f.String("name", "", "exact name")
	active := f.Bool("active", true, "only active (or, with =false, inactive) products")
	stockLTE := f.Int64("stock-lte", 0, "stock on hand at most")
	stockGTE := f.Int64("stock-gte", 0, "stock on hand at least")

	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	if err := noArgs("products list", positional); err != nil {
		return err
	}
	if err := c.enter("/products", line); err != nil {
		return err
	}

	products, err := c.api.ListProducts(ctx, &invsdk.ProductFilter{
		CategoryID:     f.intPtr("category", *category),
		SupplierID:     f.intPtr("supplier", *supplier),
		ItemCode:       *itemCode,
		Name:           *name,
		IsActive:       f.boolPtr("active", *active),
		StockOnHandLTE: f.intPtr("stock-lte", *stockLTE),
		StockOnHandGTE: f.intPtr("stock-gte", *stockGTE),
	})
	if err != nil {
		return c.fail("load products", err)
	}

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, productRow(p))
	}
	return c.emit(f.json, products, productHeaders, rows)
}

func (c *CLI) getProduct(ctx context.Context, line, args []string) error {
	f := c.newFlags("products get")
	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	id, err := parseID("products get", positional)
	if err != nil {
		return err
	}
	if err := c.enter("/products/"+itoa(id), line); err != nil {
		return err
	}

	p, err := c.api.GetProduct(ctx, id)
	if err != nil {
		return c.fail("load product", err)
	}
	return c.emit(f.json, p, productHeaders, [][]string{productRow(*p)})
}

// productFields are the payload flags shared by create, update and patch.
type productFields struct {
	itemCode, name, description *string
	supplier, category, stock   *int64
	unitCost, sellingPrice      *float64
	vatExempt, active           *bool
}

func newProductFields(f *flags, withState bool) *productFields {
	pf := &productFields{
		itemCode:     f.String("item-code", "", "item code"),
		name:         f.String("name", "", "product name"),
		description:  f.String("description", "", "description"),
		supplier:     f.Int64("supplier", 0, "supplier id"),
		category:     f.Int64("category", 0, "category id"),
		unitCost:     f.Float64("unit-cost", 0, "unit cost"),
		sellingPrice: f.Float64("selling-price", 0, "selling price"),
		vatExempt:    f.Bool("vat-exempt", false, "exempt from VAT"),
	}
	if withState {
		pf.active = f.Bool("active", true, "product is active")
		pf.stock = f.Int64("stock", 0, "stock on hand")
	}
	return pf
}

func (c *CLI) createProduct(ctx context.Context, line, args []string) error {
	f := c.newFlags("products create")
	pf := newProductFields(f, false)
	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	if err := noArgs("products create", positional); err != nil {
		return err
	}
	if err := c.enter("/products/new", line); err != nil {
		return err
	}

	p, err := c.api.CreateProduct(ctx, &invsdk.CreateProductRequest{
		ItemCode:     *pf.itemCode,
		Name:         *pf.name,
		Description:  f.stringPtr("description", *pf.description),
		SupplierID:   *pf.supplier,
		CategoryID:   *pf.category,
		UnitCost:     *pf.unitCost,
		SellingPrice: *pf.sellingPrice,
		IsVATExempt:  invsdk.Flag(*pf.vatExempt),
	})
	if err != nil {
		return c.fail("create product", err)
	}

	c.notifier.ReportSuccess("Product created")
	return c.emit(f.json, p, productHeaders, [][]string{productRow(*p)})
}

// updateProduct replaces the product with its current values overlaid by
// the flags given, the way an edit form submits.
func (c *CLI) updateProduct(ctx context.Context, line, args []string) error {
	f := c.newFlags("products update")
	pf := newProductFields(f, true)
	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	id, err := parseID("products update", positional)
	if err != nil {
		return err
	}
	if err := c.enter("/products/"+itoa(id), line); err != nil {
		return err
	}

	cur, err := c.api.GetProduct(ctx, id)
	if err != nil {
		return c.fail("load product", err)
	}

	req := &invsdk.UpdateProductRequest{
		ItemCode:     overlay(f, "item-code", *pf.itemCode, cur.ItemCode),
		Name:         overlay(f, "name", *pf.name, cur.Name),
		Description:  cur.Description,
		SupplierID:   overlay(f, "supplier", *pf.supplier, cur.SupplierID),
		CategoryID:   overlay(f, "category", *pf.category, cur.CategoryID),
		UnitCost:     overlay(f, "unit-cost", *pf.unitCost, cur.UnitCost),
		SellingPrice: overlay(f, "selling-price", *pf.sellingPrice, cur.SellingPrice),
		IsVATExempt:  overlay(f, "vat-exempt", invsdk.Flag(*pf.vatExempt), cur.IsVATExempt),
		IsActive:     overlay(f, "active", invsdk.Flag(*pf.active), cur.IsActive),
		StockOnHand:  overlay(f, "stock", *pf.stock, cur.StockOnHand),
	}
	if f.isSet("description") {
		req.Description = pf.description
	}

	p, err := c.api.UpdateProduct(ctx, id, req)
	if err != nil {
		return c.fail("update product", err)
	}

	c.notifier.ReportSuccess("Product updated")
	return c.emit(f.json, p, productHeaders, [][]string{productRow(*p)})
}

func (c *CLI) patchProduct(ctx context.Context, line, args []string) error {
	f := c.newFlags("products patch")
	pf := newProductFields(f, true)
	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	id, err := parseID("products patch", positional)
	if err != nil {
		return err
	}
	if f.isSet("stock") {
		return usageErrorf("products patch: stock moves through transactions")
	}
	if f.payloadFlags() == 0 {
		return usageErrorf("products patch: nothing to change")
	}
	if err := c.enter("/products/"+itoa(id), line); err != nil {
		return err
	}

	req := &invsdk.PatchProductRequest{
		ItemCode:     f.stringPtr("item-code", *pf.itemCode),
		Name:         f.stringPtr("name", *pf.name),
		Description:  f.stringPtr("description", *pf.description),
		SupplierID:   f.intPtr("supplier", *pf.supplier),
		CategoryID:   f.intPtr("category", *pf.category),
		UnitCost:     f.floatPtr("unit-cost", *pf.unitCost),
		SellingPrice: f.floatPtr("selling-price", *pf.sellingPrice),
		IsVATExempt:  flagPtr(f.boolPtr("vat-exempt", *pf.vatExempt)),
		IsActive:     flagPtr(f.boolPtr("active", *pf.active)),
	}

	p, err := c.api.PatchProduct(ctx, id, req)
	if err != nil {
		return c.fail("update product", err)
	}

	c.notifier.ReportSuccess("Product updated")
	return c.emit(f.json, p, productHeaders, [][]string{productRow(*p)})
}

func (c *CLI) deleteProduct(ctx context.Context, line, args []string) error {
	f := c.newFlags("products delete")
	positional, err := f.parse(args)
	if err != nil {
		return err
	}
	id, err := parseID("products delete", positional)
	if err != nil {
		return err
	}
	if err := c.enter("/products/"+itoa(id), line); err != nil {
		return err
	}

	if err := c.api.DeleteProduct(ctx, id); err != nil {
		return c.fail("delete product", err)
	}

	c.notifier.ReportSuccess("Product deactivated")
	return nil
}

// overlay picks the flag value when name was given, else the current one.
func overlay[T any](f *flags, name string, flagValue, current T) T {
	if f.isSet(name) {
		return flagValue
	}
	return current
}

func flagPtr(b *bool) *invsdk.Flag {
	if b == nil {
		return nil
	}
	v := invsdk.Flag(*b)
	return &v
}
