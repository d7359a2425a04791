package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/credentials"
)

// credentialsCommand creates the credentials command.
func (c *CLI) credentialsCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "credentials [kind]",
		Short: "List stored credentials of one kind",
		Long: `List the credentials of one kind known to the workflow server.

The server is configured with credentials.base_url; responses are cached for
cache.ttl unless --no-cache is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch := c.openCache(ctx, noCache)
			defer ch.Close()

			client, err := c.newCredentialClient(ch)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Fetching %s credentials...", args[0]))
			spinner.Start()
			list, err := client.List(ctx, args[0])
			if err != nil {
				spinner.StopWithError("Lookup failed")
				return err
			}
			spinner.Stop()

			if len(list) == 0 {
				out := newPrinter(cmd.OutOrStdout())
				out.info("No %s credentials", args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), credentialsTable(list))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// credentialsTable renders credentials as id/name rows.
func credentialsTable(list []credentials.Credential) string {
	rows := make([][]string, len(list))
	for i, cr := range list {
		updated := "—"
		if !cr.UpdatedAt.IsZero() {
			updated = cr.UpdatedAt.Format("2006-01-02")
		}
		rows[i] = []string{cr.ID, cr.Name, updated}
	}
	return newTable("ID", "Name", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return tableHeaderStyle
			}
			if col == 0 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
