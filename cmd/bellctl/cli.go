package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/bell-client/app"
	"github.com/jrsteele09/bell-client/guard"
	"github.com/jrsteele09/bell-client/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type cli struct {
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	lines   *bufio.Reader
	logger  *zerolog.Logger // nil until configured
	appOpts []app.Option
	app     *app.App
	timeout time.Duration
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{in: in, out: out, errOut: errOut, lines: bufio.NewReader(in), timeout: 30 * time.Second}
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "bellctl",
		Short:         "Manage a bell scheduler from the command line",
		Long:          "bellctl signs in to a bell scheduler server and manages its schedules, users, settings and ring logs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["offline"] == "true" {
				return nil
			}
			return c.open()
		},
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.passwdCmd(),
		c.registerCmd(),
		c.forgotPasswordCmd(),
		c.resetPasswordCmd(),
		c.schedulesCmd(),
		c.usersCmd(),
		c.settingsCmd(),
		c.logsCmd(),
		c.versionCmd(),
	)
	return root
}

// execute runs one command line and releases the app whatever the outcome.
func (c *cli) execute(args []string) error {
	root := c.root()
	root.SetArgs(args)
	err := root.Execute()
	if closeErr := c.close(); err == nil {
		err = closeErr
	}
	return err
}

func (c *cli) open() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.logger == nil {
		level, err := zerolog.ParseLevel(strings.ToLower(cfg.GetLogLevel()))
		if err != nil {
			level = zerolog.InfoLevel
		}
		logger := zerolog.New(zerolog.ConsoleWriter{Out: c.errOut, TimeFormat: time.Kitchen}).Level(level).With().Timestamp().Logger()
		c.logger = &logger
	}
	opts := append([]app.Option{app.WithLogger(*c.logger)}, c.appOpts...)
	a, err := app.New(cfg, opts...)
	if err != nil {
		return err
	}
	a.Session.Restore()
	c.app = a
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.timeout)
}

// enter navigates to route and explains why the guard refused it.
func (c *cli) enter(route string) error {
	settled, err := c.app.Router.Push(route)
	if err != nil {
		return err
	}
	if settled.Name == route {
		return nil
	}
	switch settled.Name {
	case guard.RouteLogin:
		return fmt.Errorf("not logged in, run 'bellctl login' first")
	case guard.RouteForcePasswordChange:
		return fmt.Errorf("a password change is required, run 'bellctl passwd' first")
	case guard.RouteDashboard:
		return fmt.Errorf("already logged in as %s, run 'bellctl logout' first", c.app.Session.Facts().Username)
	}
	return fmt.Errorf("cannot open %s", route)
}

func (c *cli) requireAdmin() error {
	if !c.app.Session.IsAdmin() {
		return fmt.Errorf("this command needs an admin account")
	}
	return nil
}

// prompt asks for a line of input. Secrets are read without echo when
// stdin is a terminal.
func (c *cli) prompt(label string, secret bool) (string, error) {
	fmt.Fprintf(c.errOut, "%s: ", label)
	if f, ok := c.in.(*os.File); ok && secret && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.errOut)
		return string(b), err
	}
	line, err := c.lines.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the bellctl version",
		Annotations: map[string]string{"offline": "true"},
		Args:        cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := config.Load()
			if err != nil {
				cfg = config.New()
			}
			banner := figure.NewFigure(cfg.GetAppName(), "cybermedium", true)
			fmt.Fprintln(c.out, banner.String())
			fmt.Fprintf(c.out, "bellctl %s\n", version)
			return nil
		},
	}
}
