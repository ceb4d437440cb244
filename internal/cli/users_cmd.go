package cli

import (
	"context"

	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
)

var userHeaders = []string{"ID", "USERNAME", "ROLE", "ACTIVE"}

func userRow(u invsdk.User) []string {
	return []string{itoa(u.UserID), u.Username, u.Role, yesNo(u.IsActive)}
}

func (c *CLI) users(ctx context.Context, line, args []string) error {
	action, rest, err := subcommand("users", args, "list", "get", "create", "update", "patch", "delete")
	if err != nil {
		return err
	}

	f := c.newFlags("users " + action)
	username := f.String("username", "", "login name")
	password := f.String("password", "", "password")
	role := f.String("role", "", "Administrator, Manager or Staff")
	active := f.Bool("active", true, "account is active")

	positional, err := f.parse(rest)
	if err != nil {
		return err
	}

	switch action {
	case "list":
		if err := noArgs("users list", positional); err != nil {
			return err
		}
		if err := c.enter("/users", line); err != nil {
			return err
		}
		users, err := c.api.ListUsers(ctx, &invsdk.UserFilter{
			Username: *username,
			Role:     *role,
			IsActive: f.boolPtr("active", *active),
		})
		if err != nil {
			return c.fail("load users", err)
		}
		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, userRow(u))
		}
		return c.emit(f.json, users, userHeaders, rows)

	case "create":
		if err := noArgs("users create", positional); err != nil {
			return err
		}
		if err := c.enter("/users/new", line); err != nil {
			return err
		}
		u, err := c.api.CreateUser(ctx, &invsdk.CreateUserRequest{
			Username: *username,
			Password: *password,
			Role:     *role,
		})
		if err != nil {
			return c.fail("create user", err)
		}
		c.notifier.ReportSuccess("User created")
		return c.emit(f.json, u, userHeaders, [][]string{userRow(*u)})
	}

	id, err := parseID("users "+action, positional)
	if err != nil {
		return err
	}
	if action == "patch" && f.payloadFlags() == 0 {
		return usageErrorf("users patch: nothing to change")
	}
	if err := c.enter("/users/"+itoa(id), line); err != nil {
		return err
	}

	var u *invsdk.User
	switch action {
	case "get":
		if u, err = c.api.GetUser(ctx, id); err != nil {
			return c.fail("load user", err)
		}

	case "update":
		// The backend never returns passwords, so a replace needs a new one
		cur, err := c.api.GetUser(ctx, id)
		if err != nil {
			return c.fail("load user", err)
		}
		u, err = c.api.UpdateUser(ctx, id, &invsdk.UpdateUserRequest{
			Username: overlay(f, "username", *username, cur.Username),
			Password: *password,
			Role:     overlay(f, "role", *role, cur.Role),
			IsActive: overlay(f, "active", invsdk.Flag(*active), cur.IsActive),
		})
		if err != nil {
			return c.fail("update user", err)
		}
		c.notifier.ReportSuccess("User updated")

	case "patch":
		u, err = c.api.PatchUser(ctx, id, &invsdk.PatchUserRequest{
			Username: f.stringPtr("username", *username),
			Password: f.stringPtr("password", *password),
			Role:     f.stringPtr("role", *role),
			IsActive: flagPtr(f.boolPtr("active", *active)),
		})
		if err != nil {
			return c.fail("update user", err)
		}
		c.notifier.ReportSuccess("User updated")

	case "delete":
		if err := c.api.DeleteUser(ctx, id); err != nil {
			return c.fail("delete user", err)
		}
		c.notifier.ReportSuccess("User deactivated")
		return nil
	}

	return c.emit(f.json, u, userHeaders, [][]string{userRow(*u)})
}
