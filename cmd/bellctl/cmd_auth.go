package main

import (
	"fmt"
	"time"

	"github.com/jrsteele09/bell-client/guard"
	"github.com/jrsteele09/bell-client/internal/utils"
	"github.com/jrsteele09/bell-client/model"
	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in and keep the session for later commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(guard.RouteLogin); err != nil {
				return err
			}
			username := ""
			if len(args) == 1 {
				username = args[0]
			} else {
				var err error
				if username, err = c.prompt("Username", false); err != nil {
					return err
				}
			}
			if password == "" {
				var err error
				if password, err = c.prompt("Password", true); err != nil {
					return err
				}
			}

			ctx, cancel := c.context(cmd)
			defer cancel()
			data, err := c.app.Auth.Login(ctx, model.LoginRequest{Username: username, Password: password})
			if err != nil {
				return fmt.Errorf("%s", c.app.Auth.Error())
			}
			fmt.Fprintf(c.out, "Logged in as %s (%s)\n", data.User.Username, data.User.Role)
			if data.User.ForcePasswordChange {
				fmt.Fprintln(c.out, "You must change your password before continuing: run 'bellctl passwd'.")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			c.app.Auth.Logout()
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Revalidate the session and show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()
			if !c.app.Auth.CheckAuth(ctx) {
				return fmt.Errorf("not logged in")
			}
			user := utils.Value(c.app.Session.User())
			fmt.Fprintf(c.out, "%s (%s)\n", user.Username, user.Role)
			if user.Email != "" {
				fmt.Fprintf(c.out, "Email: %s\n", user.Email)
			}
			if claims, err := c.app.Session.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
				fmt.Fprintf(c.out, "Session expires: %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
			}
			if user.ForcePasswordChange {
				fmt.Fprintln(c.out, "Password change required")
			}
			return nil
		},
	}
}

func (c *cli) passwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settled, err := c.app.Router.Push(guard.RouteChangePassword)
			if err != nil {
				return err
			}
			if settled.Name != guard.RouteChangePassword && settled.Name != guard.RouteForcePasswordChange {
				return fmt.Errorf("not logged in, run 'bellctl login' first")
			}
			current, err := c.prompt("Current password", true)
			if err != nil {
				return err
			}
			next, err := c.prompt("New password", true)
			if err != nil {
				return err
			}
			confirm, err := c.prompt("Confirm new password", true)
			if err != nil {
				return err
			}
			if next != confirm {
				return fmt.Errorf("passwords do not match")
			}

			ctx, cancel := c.context(cmd)
			defer cancel()
			if _, err := c.app.Auth.ChangePassword(ctx, current, next); err != nil {
				return fmt.Errorf("%s", c.app.Auth.Error())
			}
			fmt.Fprintln(c.out, "Password changed")
			return nil
		},
	}
}

func (c *cli) registerCmd() *cobra.Command {
	var req model.RegisterRequest
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.enter(guard.RouteRegister); err != nil {
				return err
			}
			req.Role = model.RoleType(role)
			if req.Password == "" {
				var err error
				if req.Password, err = c.prompt("Password", true); err != nil {
					return err
				}
			}
			ctx, cancel := c.context(cmd)
			defer cancel()
			resp, err := c.app.Auth.Register(ctx, req)
			if err != nil {
				return fmt.Errorf("%s", c.app.Auth.Error())
			}
			fmt.Fprintf(c.out, "%s: %s\n", resp.Message, resp.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "account name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "user or admin")
	return cmd
}

func (c *cli) forgotPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Ask for a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(guard.RouteForgotPassword); err != nil {
				return err
			}
			ctx, cancel := c.context(cmd)
			defer cancel()
			resp, err := c.app.Auth.ForgotPassword(ctx, args[0])
			if err != nil {
				return fmt.Errorf("%s", c.app.Auth.Error())
			}
			fmt.Fprintln(c.out, resp.Message)
			return nil
		},
	}
}

func (c *cli) resetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <token>",
		Short: "Set a new password with the token from a reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(guard.RouteResetPassword); err != nil {
				return err
			}
			password, err := c.prompt("New password", true)
			if err != nil {
				return err
			}
			ctx, cancel := c.context(cmd)
			defer cancel()
			resp, err := c.app.Auth.ResetPassword(ctx, args[0], password)
			if err != nil {
				return fmt.Errorf("%s", c.app.Auth.Error())
			}
			fmt.Fprintln(c.out, resp.Message)
			return nil
		},
	}
}
