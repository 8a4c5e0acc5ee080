package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietdv277/cirrus/internal/ui"
	"github.com/vietdv277/cirrus/pkg/provider"
	pkgtypes "github.com/vietdv277/cirrus/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show credentials and authentication status",
	Long: `Display which credentials are in use and verify them against AWS.

Examples:
  cirrus status`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	e, err := newEnv(ctx, ui.NewPrompter())
	if err != nil {
		return err
	}

	set, err := e.regionStore().Load()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Current Status")
	fmt.Fprintln(out, ui.MutedStyle.Render("─────────────────────────────────"))
	fmt.Fprintln(out)

	creds := e.client.Credentials()
	fmt.Fprintf(out, "Config:      %s (%s)\n", ui.HeaderStyle.Render(e.configProfile), e.path)
	fmt.Fprintf(out, "Credentials: %s\n", formatCredentials(creds))
	fmt.Fprintf(out, "Regions:     %s\n", ui.RegionStyle.Render(set.String()))
	fmt.Fprintln(out)

	// Try to get caller identity
	fmt.Fprint(out, "Auth:        ")
	identity, err := e.client.CallerIdentity(ctx)
	if err != nil {
		fmt.Fprintln(out, ui.StoppedStyle.Render("✗ Not authenticated"))
		fmt.Fprintf(out, "             %s\n", ui.MutedStyle.Render(provider.ErrorMessage(err)))
		if creds.Profile != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "To authenticate:")
			fmt.Fprintf(out, "  aws sso login --profile %s\n", creds.Profile)
		}
		return nil
	}

	fmt.Fprintln(out, ui.RunningStyle.Render("✓ Authenticated"))
	fmt.Fprintf(out, "Account:     %s\n", identity.Account)
	fmt.Fprintf(out, "User:        %s\n", identity.UserID)
	if identity.Arn != "" {
		fmt.Fprintf(out, "ARN:         %s\n", ui.MutedStyle.Render(identity.Arn))
	}
	return nil
}

func formatCredentials(creds pkgtypes.Credentials) string {
	if creds.IsZero() {
		return ui.MutedStyle.Render("(SDK default chain)")
	}
	return ui.AWSStyle.Render(creds.String())
}
