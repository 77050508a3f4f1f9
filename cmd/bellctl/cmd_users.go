package main

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/bell-client/guard"
	"github.com/jrsteele09/bell-client/model"
	"github.com/jrsteele09/bell-client/users"
	"github.com/spf13/cobra"
)

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (admin only)",
	}
	cmd.AddCommand(c.usersListCmd(), c.usersCreateCmd(), c.usersUpdateCmd(), c.usersDeleteCmd())
	return cmd
}

func (c *cli) enterUsers() error {
	if err := c.enter(guard.RouteUsers); err != nil {
		return err
	}
	return c.requireAdmin()
}

func (c *cli) usersListCmd() *cobra.Command {
	var (
		page, pageSize int
		sortSpec       string
		search         string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.enterUsers(); err != nil {
				return err
			}
			store := c.app.Users
			store.UpdatePagination(page, pageSize)
			store.UpdateSort(parseSort(sortSpec)...)
			store.UpdateFilter(users.Filter{Search: search})

			ctx, cancel := c.context(cmd)
			defer cancel()
			result, err := store.FetchUsers(ctx)
			if err != nil {
				return fmt.Errorf("%s", store.Error())
			}
			return renderUsers(c.out, result, store.Pagination().Page)
		},
	}
	cmd.Flags().IntVar(&page, "page", users.DefaultPage, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", users.DefaultPageSize, "accounts per page")
	cmd.Flags().StringVar(&sortSpec, "sort", users.DefaultSortBy, "comma separated fields, prefix with - for descending")
	cmd.Flags().StringVar(&search, "search", "", "match username or email")
	return cmd
}

func (c *cli) usersCreateCmd() *cobra.Command {
	var (
		req  model.CreateUserRequest
		role string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account; it must change its password on first login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.enterUsers(); err != nil {
				return err
			}
			req.Role = model.RoleType(role)
			if req.Password == "" {
				var err error
				if req.Password, err = c.prompt("Initial password", true); err != nil {
					return err
				}
			}
			ctx, cancel := c.context(cmd)
			defer cancel()
			if _, err := c.app.Users.CreateUser(ctx, req); err != nil {
				return fmt.Errorf("%s", c.app.Users.Error())
			}
			fmt.Fprintf(c.out, "Created user %s\n", req.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "account name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password (prompted when omitted)")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "user or admin")
	return cmd
}

func (c *cli) usersUpdateCmd() *cobra.Command {
	var (
		req      model.UpdateUserRequest
		role     string
		inactive bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an account's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.enterUsers(); err != nil {
				return err
			}
			req.Role = model.RoleType(role)
			req.IsActive = !inactive
			ctx, cancel := c.context(cmd)
			defer cancel()
			if _, err := c.app.Users.UpdateUser(ctx, id, req); err != nil {
				return fmt.Errorf("%s", c.app.Users.Error())
			}
			fmt.Fprintf(c.out, "Updated user #%d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "account name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "new password, unchanged when empty")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "user or admin")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "deactivate the account")
	return cmd
}

func (c *cli) usersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.enterUsers(); err != nil {
				return err
			}
			ctx, cancel := c.context(cmd)
			defer cancel()
			if _, err := c.app.Users.DeleteUser(ctx, id); err != nil {
				return fmt.Errorf("%s", c.app.Users.Error())
			}
			fmt.Fprintf(c.out, "Deleted user #%d\n", id)
			return nil
		},
	}
}

// parseSort reads "username,-email" into sort keys.
func parseSort(spec string) []users.SortKey {
	var keys []users.SortKey
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		key := users.SortKey{Field: strings.TrimPrefix(field, "-")}
		key.Desc = key.Field != field
		keys = append(keys, key)
	}
	return keys
}
