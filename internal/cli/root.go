// Package cli holds the teaminbox command tree.
package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/teaminbox/internal/app"
	"github.com/nhle/teaminbox/internal/credential"
	"github.com/nhle/teaminbox/internal/logging"
	"github.com/nhle/teaminbox/internal/model"
	"github.com/nhle/teaminbox/internal/store"
)

var (
	version = "dev"
	commit  = "none"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	email      string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "teaminbox",
		Short: "Team notifications and invitations in your terminal",
		Long: "teaminbox polls your notification feed and lets you accept or " +
			"decline team invitations without leaving the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "path to config file")
	cmd.PersistentFlags().StringVar(&opts.email, "email", "", "viewer email (overrides viewer.email)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "verbose development logging")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newPendingCmd(opts))
	cmd.AddCommand(newInitCmd(opts))
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *rootOptions) (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.email != "" {
		cfg.Viewer.Email = opts.email
	}
	if opts.debug {
		cfg.Log.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w (edit %s)", err, opts.configPath)
	}
	return cfg, nil
}

func runTUI(opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Config{Development: cfg.Log.Development, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	token, err := credential.Token()
	if err != nil {
		log.Warnw("reading API token failed, continuing without one", "error", err)
	}

	s, err := store.NewSessionStore()
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer s.Close()

	svc := app.NewServices(cfg, token, s, log)
	defer svc.Poller.Stop()

	log.Infow("starting teaminbox",
		"viewer", cfg.Viewer.Email,
		"notifications_url", cfg.Services.NotificationsURL,
		"authorization_url", cfg.Services.AuthorizationURL,
	)

	p := tea.NewProgram(app.New(s, svc, cfg.Viewer.Email, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
