package cli

import (
	"context"

	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
)

var categoryHeaders = []string{"ID", "NAME"}

func categoryRow(cat invsdk.Category) []string {
	return []string{itoa(cat.CategoryID), cat.Name}
}

func (c *CLI) categories(ctx context.Context, line, args []string) error {
	action, rest, err := subcommand("categories", args, "list", "get", "create", "update", "patch", "delete")
	if err != nil {
		return err
	}

	f := c.newFlags("categories " + action)
	name := f.String("name", "", "category name")

	positional, err := f.parse(rest)
	if err != nil {
		return err
	}

	switch action {
	case "list":
		if err := noArgs("categories list", positional); err != nil {
			return err
		}
		if err := c.enter("/categories", line); err != nil {
			return err
		}
		categories, err := c.api.ListCategories(ctx)
		if err != nil {
			return c.fail("load categories", err)
		}
		rows := make([][]string, 0, len(categories))
		for _, cat := range categories {
			rows = append(rows, categoryRow(cat))
		}
		return c.emit(f.json, categories, categoryHeaders, rows)

	case "create":
		if err := noArgs("categories create", positional); err != nil {
			return err
		}
		if err := c.enter("/categories/new", line); err != nil {
			return err
		}
		cat, err := c.api.CreateCategory(ctx, &invsdk.CreateCategoryRequest{Name: *name})
		if err != nil {
			return c.fail("create category", err)
		}
		c.notifier.ReportSuccess("Category created")
		return c.emit(f.json, cat, categoryHeaders, [][]string{categoryRow(*cat)})
	}

	id, err := parseID("categories "+action, positional)
	if err != nil {
		return err
	}
	if (action == "update" || action == "patch") && !f.isSet("name") {
		return usageErrorf("categories %s: --name is required", action)
	}
	if err := c.enter("/categories/"+itoa(id), line); err != nil {
		return err
	}

	var cat *invsdk.Category
	switch action {
	case "get":
		if cat, err = c.api.GetCategory(ctx, id); err != nil {
			return c.fail("load category", err)
		}
	case "update":
		if cat, err = c.api.UpdateCategory(ctx, id, &invsdk.UpdateCategoryRequest{Name: *name}); err != nil {
			return c.fail("update category", err)
		}
		c.notifier.ReportSuccess("Category updated")
	case "patch":
		if cat, err = c.api.PatchCategory(ctx, id, &invsdk.PatchCategoryRequest{Name: name}); err != nil {
			return c.fail("update category", err)
		}
		c.notifier.ReportSuccess("Category updated")
	case "delete":
		if err := c.api.DeleteCategory(ctx, id); err != nil {
			return c.fail("delete category", err)
		}
		c.notifier.ReportSuccess("Category deleted")
		return nil
	}

	return c.emit(f.json, cat, categoryHeaders, [][]string{categoryRow(*cat)})
}
