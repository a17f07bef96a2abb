package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/teaminbox/internal/credential"
)

// Replaced in tests so the OS keyring is never touched.
var (
	storeToken  = func(tok string) error { return credential.Set(credential.TokenKey, tok) }
	deleteToken = func() error { return credential.Delete(credential.TokenKey) }
)

func newLoginCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store your API token in the system keyring",
		Long: "Store the bearer token used for the notification and authorization " +
			"services. Without --token the token is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok := strings.TrimSpace(token)
			if tok == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "API token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading token: %w", err)
				}
				tok = strings.TrimSpace(line)
			}
			if tok == "" {
				return errors.New("empty token")
			}

			if err := storeToken(tok); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token saved.")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "API token (read from stdin when omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deleteToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
			return nil
		},
	}
}
