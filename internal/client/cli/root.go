package cli

import (
	"github.com/spf13/cobra"
)

func (a *App) rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "authctl",
		Short:         "Command-line client for the auth API",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.prepare()
		},
	}

	// -c is read by config.LoadConfig before cobra runs; declared here so
	// cobra accepts it.
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (JSON)")
	cmd.PersistentFlags().StringVarP(&a.config.ServerURL, "server", "a", a.config.ServerURL, "Auth API base URL")
	cmd.PersistentFlags().StringVar(&a.config.TokenFile, "token-file", a.config.TokenFile, "Where the access token is stored")

	cmd.AddCommand(a.signupCmd(), a.loginCmd(), a.logoutCmd(), a.meCmd())

	return cmd
}

func (a *App) signupCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Signup(cmd.Context(), name, email)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address (prompted when empty)")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var email string
	var rememberMe bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Login(cmd.Context(), email, rememberMe)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address (prompted when empty)")
	cmd.Flags().BoolVar(&rememberMe, "remember-me", false, "Keep the session for one week")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Logout(cmd.Context())
		},
	}
}

func (a *App) meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Me(cmd.Context())
		},
	}
}
