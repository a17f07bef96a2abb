package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/teaminbox/internal/credential"
	"github.com/nhle/teaminbox/internal/feed"
	"github.com/nhle/teaminbox/internal/invite"
	appsync "github.com/nhle/teaminbox/internal/sync"
)

type pendingRow struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Title string `json:"title"`
}

func newPendingCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List invitations waiting for your answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			token, err := credential.Token()
			if err != nil {
				return fmt.Errorf("reading API token: %w", err)
			}

			fc := feed.NewClient(cfg.Services.NotificationsURL, token)
			ns, err := appsync.New(fc, appsync.WithFetchTimeout(cfg.FetchTimeout())).
				FetchOnce(cmd.Context())
			if err != nil {
				return err
			}

			// Nothing has been acted on from this process.
			none := invite.NewOverlay()

			var rows []pendingRow
			for _, n := range ns {
				if !invite.IsPendingInvitation(n, cfg.Viewer.Email, none) {
					continue
				}
				tok, err := invite.ResolveToken(n)
				if err != nil {
					// Cannot be answered from here either.
					continue
				}
				rows = append(rows, pendingRow{ID: n.ID, Token: tok, Title: n.Title})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if rows == nil {
					rows = []pendingRow{}
				}
				return enc.Encode(rows)
			}

			if len(rows) == 0 {
				fmt.Fprintln(out, "No pending invitations.")
				return nil
			}

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("ID", "TOKEN", "TITLE")
			for _, r := range rows {
				t.Row(r.ID, r.Token, r.Title)
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
