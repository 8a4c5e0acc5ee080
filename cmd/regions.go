package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietdv277/cirrus/internal/regions"
	"github.com/vietdv277/cirrus/internal/ui"
	"github.com/vietdv277/cirrus/pkg/provider"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Show or change the displayed regions",
	Long: `Show the regions of the active config profile.

Examples:
  cirrus regions                     # List the configured regions
  cirrus regions configure           # Pick among every enabled region
  cirrus regions add eu-west-1
  cirrus regions remove us-west-1`,
	Args: cobra.NoArgs,
	RunE: runRegionsList,
}

var regionsConfigureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Choose regions from the account's enabled regions",
	Args:  cobra.NoArgs,
	RunE:  runRegionsConfigure,
}

var regionsAddCmd = &cobra.Command{
	Use:   "add <region>...",
	Short: "Add regions to the configured set",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRegionsAdd,
}

var regionsRemoveCmd = &cobra.Command{
	Use:   "remove <region>...",
	Short: "Remove regions from the configured set",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRegionsRemove,
}

func init() {
	rootCmd.AddCommand(regionsCmd)
	regionsCmd.AddCommand(regionsConfigureCmd)
	regionsCmd.AddCommand(regionsAddCmd)
	regionsCmd.AddCommand(regionsRemoveCmd)
}

func runRegionsList(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	set, err := e.regionStore().Load()
	if err != nil {
		return err
	}

	ui.PrintRegionList(cmd.OutOrStdout(), set)
	return nil
}

func runRegionsConfigure(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	e, err := newEnv(ctx, ui.NewPrompter())
	if err != nil {
		return err
	}

	store := e.regionStore()
	current, err := store.Load()
	if err != nil {
		return err
	}

	candidates, err := e.client.ListRegions(ctx)
	if err != nil {
		return err
	}

	set, err := store.Reconfigure(e.prompter, candidates, current)
	if errors.Is(err, provider.ErrCancelled) {
		fmt.Fprintln(cmd.OutOrStdout(), "Regions unchanged")
		return nil
	}
	if err != nil {
		return err
	}

	ui.PrintRegionList(cmd.OutOrStdout(), set)
	return nil
}

func runRegionsAdd(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	store := e.regionStore()
	current, err := store.Load()
	if err != nil {
		return err
	}

	set := regions.Normalize(append(current, args...))
	if err := store.Save(set); err != nil {
		return err
	}

	ui.PrintRegionList(cmd.OutOrStdout(), set)
	return nil
}

func runRegionsRemove(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	store := e.regionStore()
	set, err := store.Load()
	if err != nil {
		return err
	}

	for _, region := range args {
		if !set.Contains(region) {
			return fmt.Errorf("%w: region %s is not configured", provider.ErrNotFound, region)
		}
		if set, err = store.Remove(set, region); err != nil {
			return err
		}
	}

	ui.PrintRegionList(cmd.OutOrStdout(), set)
	return nil
}
