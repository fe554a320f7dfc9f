// Package cli implements the vantage command line tool on top of the client
// library. Configuration comes from VANTAGE_* environment variables with
// flag overrides.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	vantage "github.com/vantage-bi/vantage-go"
	"github.com/vantage-bi/vantage-go/errors"
)

// Verbose enables raw error output instead of the condensed form.
var Verbose bool

// Config holds the tool configuration, loaded from the environment.
type Config struct {
	ServerURL   string        `env:"VANTAGE_URL"              envDefault:""`
	Site        string        `env:"VANTAGE_SITE"             envDefault:""`
	Username    string        `env:"VANTAGE_USERNAME"         envDefault:""`
	Password    string        `env:"VANTAGE_PASSWORD"         envDefault:""`
	TokenName   string        `env:"VANTAGE_TOKEN_NAME"       envDefault:""`
	TokenSecret string        `env:"VANTAGE_TOKEN_SECRET"     envDefault:""`
	AuthToken   string        `env:"VANTAGE_AUTH_TOKEN"       envDefault:""`
	SiteID      string        `env:"VANTAGE_SITE_ID"          envDefault:""`
	APIVersion  string        `env:"VANTAGE_API_VERSION"      envDefault:"3.6"`
	Timeout     time.Duration `env:"VANTAGE_TIMEOUT"          envDefault:"5m"`
}

// CLI wires the configuration to the command tree.
type CLI struct {
	config Config
	client *vantage.Client

	// keepSession leaves the session open after the command finishes,
	// so the printed token stays usable
	keepSession bool
}

// New creates a CLI over the given configuration.
func New(config Config) *CLI {
	return &CLI{config: config}
}

// NewRootCmd builds the root command with all subcommands attached.
func (c *CLI) NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vantage",
		Short: "Command line tool for Vantage Server",
		Long:  "vantage manages datasources on a Vantage Server: list, inspect, download, publish, and delete.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.connect(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.disconnect(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "enable verbose error output")
	rootCmd.PersistentFlags().StringVar(&c.config.ServerURL, "server", c.config.ServerURL, "server URL")
	rootCmd.PersistentFlags().StringVar(&c.config.Site, "site", c.config.Site, "site content URL")

	rootCmd.AddCommand(
		c.NewSignInCmd(),
		c.NewDatasourcesCmd(),
	)
	return rootCmd
}

// NewSignInCmd builds the signin command. It establishes a session and
// prints the token so later invocations can resume it without credentials.
func (c *CLI) NewSignInCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signin",
		Short: "Sign in and print a resumable session token",
		Run: func(cmd *cobra.Command, args []string) {
			c.keepSession = true
			cmd.Printf("export VANTAGE_AUTH_TOKEN=%s\n", c.client.AuthToken())
			cmd.Printf("export VANTAGE_SITE_ID=%s\n", c.client.SiteID())
		},
	}
}

// connect builds the client and establishes a session. An explicit auth
// token resumes an existing session; otherwise personal access token
// credentials win over username and password.
func (c *CLI) connect(cmd *cobra.Command) error {
	if c.config.ServerURL == "" {
		return errors.NewError("cli", errors.ErrInvalidInput).
			WithMessage("no server URL; set VANTAGE_URL or pass --server")
	}

	client, err := vantage.New(c.config.ServerURL,
		vantage.WithAPIVersion(c.config.APIVersion),
		vantage.WithTimeout(c.config.Timeout),
	)
	if err != nil {
		return err
	}
	c.client = client

	ctx := cmd.Context()
	switch {
	case c.config.AuthToken != "":
		client.UseSession(c.config.AuthToken, c.config.SiteID)
		return nil
	case c.config.TokenName != "" && c.config.TokenSecret != "":
		return client.SignInWithToken(ctx, c.config.TokenName, c.config.TokenSecret, c.config.Site)
	case c.config.Username != "" && c.config.Password != "":
		return client.SignIn(ctx, c.config.Username, c.config.Password, c.config.Site)
	}
	return errors.NewError("cli", errors.ErrInvalidInput).
		WithMessage("no credentials; set VANTAGE_USERNAME/VANTAGE_PASSWORD or VANTAGE_TOKEN_NAME/VANTAGE_TOKEN_SECRET")
}

// disconnect ends sessions this invocation created. Resumed sessions are
// left alone so the token stays valid for later invocations.
func (c *CLI) disconnect(cmd *cobra.Command) error {
	if c.client == nil || c.config.AuthToken != "" || c.keepSession {
		return nil
	}
	return c.client.SignOut(cmd.Context())
}
