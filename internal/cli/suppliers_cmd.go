package cli

import (
	"context"

	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
)

var supplierHeaders = []string{"ID", "NAME", "CONTACT"}

func supplierRow(s invsdk.Supplier) []string {
	return []string{itoa(s.SupplierID), s.Name, optString(s.ContactInfo)}
}

func (c *CLI) suppliers(ctx context.Context, line, args []string) error {
	action, rest, err := subcommand("suppliers", args, "list", "get", "create", "update", "patch", "delete")
	if err != nil {
		return err
	}

	f := c.newFlags("suppliers " + action)
	name := f.String("name", "", "supplier name")
	contact := f.String("contact", "", "contact details")

	positional, err := f.parse(rest)
	if err != nil {
		return err
	}

	if action == "list" || action == "create" {
		if err := noArgs("suppliers "+action, positional); err != nil {
			return err
		}
		path := "/suppliers"
		if action == "create" {
			path = "/suppliers/new"
		}
		if err := c.enter(path, line); err != nil {
			return err
		}

		if action == "list" {
			suppliers, err := c.api.ListSuppliers(ctx)
			if err != nil {
				return c.fail("load suppliers", err)
			}
			rows := make([][]string, 0, len(suppliers))
			for _, s := range suppliers {
				rows = append(rows, supplierRow(s))
			}
			return c.emit(f.json, suppliers, supplierHeaders, rows)
		}

		s, err := c.api.CreateSupplier(ctx, &invsdk.CreateSupplierRequest{
			Name:        *name,
			ContactInfo: f.stringPtr("contact", *contact),
		})
		if err != nil {
			return c.fail("create supplier", err)
		}
		c.notifier.ReportSuccess("Supplier created")
		return c.emit(f.json, s, supplierHeaders, [][]string{supplierRow(*s)})
	}

	id, err := parseID("suppliers "+action, positional)
	if err != nil {
		return err
	}
	if action == "patch" && f.payloadFlags() == 0 {
		return usageErrorf("suppliers patch: nothing to change")
	}
	if err := c.enter("/suppliers/"+itoa(id), line); err != nil {
		return err
	}

	var s *invsdk.Supplier
	switch action {
	case "get":
		if s, err = c.api.GetSupplier(ctx, id); err != nil {
			return c.fail("load supplier", err)
		}

	case "update":
		cur, err := c.api.GetSupplier(ctx, id)
		if err != nil {
			return c.fail("load supplier", err)
		}
		curContact := ""
		if cur.ContactInfo != nil {
			curContact = *cur.ContactInfo
		}
		s, err = c.api.UpdateSupplier(ctx, id, &invsdk.UpdateSupplierRequest{
			Name:        overlay(f, "name", *name, cur.Name),
			ContactInfo: overlay(f, "contact", *contact, curContact),
		})
		if err != nil {
			return c.fail("update supplier", err)
		}
		c.notifier.ReportSuccess("Supplier updated")

	case "patch":
		s, err = c.api.PatchSupplier(ctx, id, &invsdk.PatchSupplierRequest{
			Name:        f.stringPtr("name", *name),
			ContactInfo: f.stringPtr("contact", *contact),
		})
		if err != nil {
			return c.fail("update supplier", err)
		}
		c.notifier.ReportSuccess("Supplier updated")

	case "delete":
		if err := c.api.DeleteSupplier(ctx, id); err != nil {
			return c.fail("delete supplier", err)
		}
		c.notifier.ReportSuccess("Supplier deleted")
		return nil
	}

	return c.emit(f.json, s, supplierHeaders, [][]string{supplierRow(*s)})
}
