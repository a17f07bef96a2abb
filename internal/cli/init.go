package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/teaminbox/internal/model"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var (
		notificationsURL string
		authorizationURL string
		force            bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file for this machine",
		Long: "Write viewer and service settings to the config file. Unset values " +
			"keep their defaults; an existing file is only replaced with --force.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to replace it)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", path, err)
			}

			cfg, err := model.LoadConfig(path)
			if err != nil {
				return err
			}
			if opts.email != "" {
				cfg.Viewer.Email = opts.email
			}
			if notificationsURL != "" {
				cfg.Services.NotificationsURL = notificationsURL
			}
			if authorizationURL != "" {
				cfg.Services.AuthorizationURL = authorizationURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := model.SaveConfig(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&notificationsURL, "notifications-url", "", "notification service base URL")
	cmd.Flags().StringVar(&authorizationURL, "authorization-url", "", "authorization service base URL")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing config file")
	return cmd
}
