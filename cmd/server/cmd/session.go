package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Togather-Foundation/gala/internal/config"
	"github.com/Togather-Foundation/gala/internal/session"
	"github.com/spf13/cobra"
)

type sessionLoginOptions struct {
	email    string
	password string
	token    string
	wait     time.Duration
	refresh  bool
}

func newSessionCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect sign-in and role resolution",
	}

	opts := &sessionLoginOptions{}
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print every session state transition",
		Long: `Sign in with a password (or restore a saved token) and follow the session
resolver as it looks up the profile role. Each state the resolver publishes
is printed on its own line.

The password is read from --password or the GALA_PASSWORD environment variable.

With --refresh the token is re-issued once the first role settles, and the
resolver is followed through the second lookup.

Examples:
  server session login --email curator@example.org
  server session login --token "$TOKEN"
  server session login --token "$TOKEN" --refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.password == "" {
				opts.password = os.Getenv("GALA_PASSWORD")
			}
			if opts.token == "" && (opts.email == "" || opts.password == "") {
				return errors.New("--email and a password, or --token, are required")
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger := config.NewLogger(cfg.Logging)

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			provider := session.NewPasswordProvider(a.authenticator)
			if opts.token != "" {
				if err := provider.Restore(opts.token); err != nil {
					return fmt.Errorf("restore token: %w", err)
				}
			}

			resolver := session.NewResolver(provider, a.repo.Profiles(), session.Options{
				RoleLookupTimeout: cfg.Session.RoleLookupTimeout,
				AdminRole:         cfg.Session.AdminRole,
				Logger:            logger,
			})
			defer resolver.Close()

			var refresh func(context.Context) error
			if opts.refresh {
				refresh = provider.Refresh
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.wait)
			defer cancel()
			return runSessionLogin(ctx, cmd.OutOrStdout(), resolver, opts.email, opts.password, opts.token == "", refresh)
		},
	}
	login.Flags().StringVar(&opts.email, "email", "", "account email")
	login.Flags().StringVar(&opts.password, "password", "", "account password (default: $GALA_PASSWORD)")
	login.Flags().StringVar(&opts.token, "token", "", "restore an existing session token instead of signing in")
	login.Flags().DurationVar(&opts.wait, "wait", 10*time.Second, "how long to wait for the role to settle")
	login.Flags().BoolVar(&opts.refresh, "refresh", false, "re-issue the token after sign-in and wait for the role again")

	cmd.AddCommand(login)
	return cmd
}

// runSessionLogin starts resolver, optionally signs in, and prints each
// published state until a signed-in state settles. A non-nil refresh runs
// after that and the wait repeats for the refreshed session.
func runSessionLogin(ctx context.Context, out io.Writer, resolver *session.Resolver, email, password string, signIn bool, refresh func(context.Context) error) error {
	updates, unsubscribe := resolver.Subscribe()
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for st := range updates {
			fmt.Fprintln(out, describeState(st))
		}
	}()
	finish := func() {
		unsubscribe()
		<-printed
	}

	if err := resolver.Start(ctx); err != nil {
		finish()
		return err
	}

	if signIn {
		if err := resolver.SignIn(ctx, email, password); err != nil {
			finish()
			var authErr *session.AuthError
			if errors.As(err, &authErr) {
				return fmt.Errorf("sign-in failed (%s): %s", authErr.Code, authErr.Message)
			}
			return err
		}
	}

	signedIn := func(st session.State) bool {
		return st.UserPresent() && st.Settled()
	}
	final, err := resolver.WaitFor(ctx, signedIn)
	if err == nil && refresh != nil {
		// Listeners run inside refresh, so the resolver has already left
		// the pre-refresh state when it returns.
		if err := refresh(ctx); err != nil {
			finish()
			return fmt.Errorf("refresh token: %w", err)
		}
		final, err = resolver.WaitFor(ctx, signedIn)
	}
	finish()
	if err != nil {
		return fmt.Errorf("waiting for session: %w (last state: %s)", err, describeState(final))
	}

	fmt.Fprintf(out, "signed in as %s: access=%s admin=%t\n", final.User.Email, final.Access(), final.IsAdmin())
	return nil
}

func describeState(st session.State) string {
	user := "-"
	if st.User != nil {
		user = st.User.Email
		if user == "" {
			user = st.User.ID
		}
	}
	role := st.Role
	if role == "" {
		role = "-"
	}
	return fmt.Sprintf("status=%s user=%s role=%s access=%s admin=%t", st.Status, user, role, st.Access(), st.IsAdmin())
}
