package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vietdv277/cirrus/internal/regions"
	"github.com/vietdv277/cirrus/internal/session"
	"github.com/vietdv277/cirrus/internal/ui"
	"github.com/vietdv277/cirrus/pkg/provider"
	pkgtypes "github.com/vietdv277/cirrus/pkg/types"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List EC2 instances",
	Long: `List the EC2 instances of the configured regions, sorted by state then name.

Examples:
  cirrus ls                          # All configured regions
  cirrus ls -r eu-west-1 -r us-east-1`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var lsRegions []string

func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().StringSliceVarP(&lsRegions, "region", "r", nil, "region to list (repeatable, default: configured regions)")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	e, err := newEnv(ctx, ui.NewPrompter())
	if err != nil {
		return err
	}

	set := regions.Normalize(lsRegions)
	if len(set) == 0 {
		if set, err = e.regionStore().Load(); err != nil {
			return err
		}
	}

	var all []pkgtypes.Instance
	for _, region := range set {
		instances, err := e.client.ListInstances(ctx, region)
		if err != nil {
			// Keep going so one unreachable region does not hide the others
			e.logger.Warn("listing failed", zap.String("region", region), zap.Error(err))
			fmt.Fprintln(cmd.ErrOrStderr(), ui.ErrorStyle.Render(region+": "+provider.ErrorMessage(err)))
			continue
		}
		all = append(all, instances...)
	}

	if len(all) == 0 {
		fmt.Fprintln(out, "No EC2 instances found")
		return nil
	}

	session.SortInstances(all)
	ui.PrintInstanceTable(out, all)
	return nil
}
