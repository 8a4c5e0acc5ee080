package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietdv277/cirrus/internal/aws"
	"github.com/vietdv277/cirrus/internal/config"
	"github.com/vietdv277/cirrus/internal/ui"
	"github.com/vietdv277/cirrus/pkg/provider"
	pkgtypes "github.com/vietdv277/cirrus/pkg/types"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the AWS profile",
	Long: `Manage the AWS profile used by the active config profile.

When run without subcommands, shows an interactive selector to choose a profile.

Examples:
  cirrus profile                    # Interactive profile selector
  cirrus profile ls                 # List all available profiles
  cirrus profile set my-profile     # Set a specific profile`,
	Args: cobra.NoArgs,
	RunE: runProfileInteractive,
}

var profileLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List available AWS profiles",
	Long: `List all available AWS profiles from ~/.aws/credentials and ~/.aws/config.

Examples:
  cirrus profile ls`,
	Args: cobra.NoArgs,
	RunE: runProfileList,
}

var profileSetCmd = &cobra.Command{
	Use:   "set <profile-name>",
	Short: "Set the AWS profile",
	Long: `Set a specific AWS profile for the active config profile.

The profile is saved to ~/.cirrus/config.yaml and used by future cirrus commands.

Examples:
  cirrus profile set my-profile
  cirrus --config-profile work profile set production`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileSet,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileLsCmd)
	profileCmd.AddCommand(profileSetCmd)
}

func runProfileInteractive(cmd *cobra.Command, args []string) error {
	profiles, err := listProfiles(cmd)
	if err != nil || len(profiles) == 0 {
		return err
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	active := activeAWSProfile(e)

	choices := make([]provider.Choice, len(profiles))
	for i, p := range profiles {
		desc := p.Source
		if p.Region != "" {
			desc = p.Region + " · " + p.Source
		}
		title := p.Name
		if p.Name == active {
			title += " (active)"
		}
		choices[i] = provider.Choice{Title: title, Description: desc, Value: p.Name}
	}

	selected, err := ui.NewPrompter().SelectOne("Select an AWS profile:", choices)
	if errors.Is(err, provider.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	return saveAWSProfile(cmd, e, selected)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	profiles, err := listProfiles(cmd)
	if err != nil || len(profiles) == 0 {
		return err
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}

	ui.PrintProfileTable(cmd.OutOrStdout(), profiles, activeAWSProfile(e))
	return nil
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	profileName := args[0]

	// Validate profile exists
	if !aws.ValidateProfile(profileName) {
		return fmt.Errorf("%w: profile %q", provider.ErrNotFound, profileName)
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}

	return saveAWSProfile(cmd, e, profileName)
}

// listProfiles returns the AWS profiles, printing a hint when there are none
func listProfiles(cmd *cobra.Command) ([]pkgtypes.AWSProfile, error) {
	profiles, err := aws.ListProfiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	if len(profiles) == 0 {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "No AWS profiles found")
		fmt.Fprintln(out, "Create profiles in ~/.aws/credentials or ~/.aws/config")
	}
	return profiles, nil
}

func saveAWSProfile(cmd *cobra.Command, e *env, name string) error {
	if err := config.SetAWSProfile(e.path, e.configProfile, name); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Profile set to: %s\n", ui.AWSStyle.Render(name))
	fmt.Fprintf(out, "Saved to: %s (config profile %s)\n", e.path, e.configProfile)
	return nil
}

// activeAWSProfile returns the AWS profile the resolver will be given
func activeAWSProfile(e *env) string {
	return e.credentialSettings().Profile
}
