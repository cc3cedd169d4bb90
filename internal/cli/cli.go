// Package cli is the terminal client. Commands share one session store kept
// in the local SQLite state file, so a login survives between invocations.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/config"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/guard"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/localstore"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/models"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/notify"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/session"
	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/validation"
)

// ErrSessionExpired is returned after the API rejected the stored token
var ErrSessionExpired = errors.New("your session has expired, run `homerent login`")

var (
	anyUser          = guard.Requirement{}
	tenantOnly       = guard.Requirement{Role: models.RoleTenant}
	verifiedLandlord = guard.Requirement{Role: models.RoleLandlord, RequireVerifiedLandlord: true}
	adminOnly        = guard.Requirement{Role: models.RoleAdmin}
)

// Options wires the client. Zero fields are filled from the environment.
type Options struct {
	Config *config.Config
	Local  *localstore.Store // opened from Config.CLI.StateDir when nil
	Logger *logrus.Logger
}

// App is the state one invocation works with
type App struct {
	cfg       *config.Config
	logger    *logrus.Logger
	local     *localstore.Store
	ownsLocal bool
	validator *validation.Validator

	store  *session.Store
	toasts notify.Notifier
	out    io.Writer
	in     *bufio.Reader
}

// NewRootCmd builds the homerent command tree
func NewRootCmd(opts Options) *cobra.Command {
	app := &App{
		cfg:       opts.Config,
		local:     opts.Local,
		logger:    opts.Logger,
		validator: validation.New(),
	}

	root := &cobra.Command{
		Use:           "homerent",
		Short:         "HomeRent terminal client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	root.AddCommand(
		app.loginCmd(),
		app.logoutCmd(),
		app.registerCmd(),
		app.verifyOTPCmd(),
		app.resendOTPCmd(),
		app.forgotPasswordCmd(),
		app.resetPasswordCmd(),
		app.whoamiCmd(),
		app.housesCmd(),
		app.bookCmd(),
		app.bookingsCmd(),
		app.rentCmd(),
		app.visitsCmd(),
		app.supportCmd(),
		app.landlordCmd(),
		app.adminCmd(),
	)
	return root
}

func (a *App) open(cmd *cobra.Command) error {
	if a.store != nil {
		return nil
	}

	if a.cfg == nil {
		cfg, err := config.LoadCLI()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	if a.logger == nil {
		a.logger = logrus.New()
		a.logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
		a.logger.SetOutput(cmd.ErrOrStderr())
		level, err := logrus.ParseLevel(a.cfg.Server.LogLevel)
		if err != nil {
			level = logrus.InfoLevel
		}
		// the terminal shows toasts; log lines only matter when debugging
		if level == logrus.InfoLevel {
			level = logrus.WarnLevel
		}
		a.logger.SetLevel(level)
	}

	if a.local == nil {
		local, err := localstore.Open(a.cfg.CLI.StateDir)
		if err != nil {
			return err
		}
		a.local = local
		a.ownsLocal = true
	}

	a.out = cmd.OutOrStdout()
	a.in = bufio.NewReader(cmd.InOrStdin())
	a.toasts = notify.NewPrinter(a.out)

	client := api.NewClient(a.cfg.API.BaseURL, a.cfg.API.Timeout, a.logger)
	a.store = session.New(client, localstore.NewSessionStorage(a.local), session.Options{
		ResendCooldown: a.cfg.Auth.OTPResendCooldown,
		Logger:         a.logger,
		Validator:      a.validator,
	})
	return a.store.Init(cmd.Context())
}

func (a *App) close() error {
	if a.ownsLocal && a.local != nil {
		return a.local.Close()
	}
	return nil
}

// require is a PreRunE that runs the route guard against the stored session.
// The cached user may predate an admin's verification, so a landlord held
// back for it is refreshed once before the decision stands.
func (a *App) require(req guard.Requirement) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := guard.Check(guard.StateOf(a.store), req)

		var denied *guard.DeniedError
		if errors.As(err, &denied) && denied.Decision.Outcome == guard.AwaitingVerification {
			if res := a.store.FetchMe(cmd.Context()); res.Success {
				err = guard.Check(guard.StateOf(a.store), req)
			}
		}
		return err
	}
}

// action runs fn and signs the user out when the API rejected the token
func (a *App) action(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd.Context(), cmd, args)
		if err != nil && a.store.HandleAuthFailure(cmd.Context(), err) {
			return ErrSessionExpired
		}
		return err
	}
}

// result prints an auth result and turns a failure into an error
func (a *App) result(res session.Result) error {
	if !res.Success {
		if len(res.Errors) > 0 {
			return fmt.Errorf("%s: %w", res.Message, res.Errors)
		}
		return errors.New(res.Message)
	}
	if res.Message != "" {
		a.toasts.Success(res.Message)
	}
	return nil
}

// prompt reads one line, used when a secret was not passed as a flag
func (a *App) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) user() *models.User {
	return a.store.User()
}
