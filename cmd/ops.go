package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vietdv277/cirrus/internal/aws"
	"github.com/vietdv277/cirrus/internal/operation"
	"github.com/vietdv277/cirrus/internal/ui"
	"github.com/vietdv277/cirrus/pkg/provider"
	pkgtypes "github.com/vietdv277/cirrus/pkg/types"
)

func init() {
	for _, op := range operation.All() {
		rootCmd.AddCommand(newOperationCmd(op))
	}
}

// newOperationCmd builds the non-interactive command for one operation
func newOperationCmd(op operation.Operation) *cobra.Command {
	var (
		region string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   op.String() + " <instance-id>",
		Short: op.Title(),
		Long: fmt.Sprintf(`%s and follow its state until it settles.

Examples:
  cirrus %s i-0abc123 -r us-east-1`, op.Title(), op.String()),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var prompter provider.Prompter = ui.NewPrompter()
			if yes {
				prompter = ui.AssumeYes{Prompter: prompter}
			}
			return runOperation(cmd, op, args[0], region, prompter)
		},
	}

	cmd.Flags().StringVarP(&region, "region", "r", "", "region of the instance")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	_ = cmd.MarkFlagRequired("region")

	return cmd
}

func runOperation(cmd *cobra.Command, op operation.Operation, id, region string, prompter provider.Prompter) error {
	ctx := cmd.Context()

	e, err := newEnv(ctx, prompter)
	if err != nil {
		return err
	}

	inst, err := findInstance(ctx, e.client, region, id)
	if err != nil {
		return err
	}

	orch := operation.New(e.client, prompter,
		operation.WithOutput(cmd.OutOrStdout()),
		operation.WithLogger(e.logger),
	)

	res := orch.Execute(ctx, inst, op)
	if res.Outcome == operation.Failed {
		return fmt.Errorf("%s %s failed: %w", op, id, res.Err)
	}
	return nil
}

// findInstance looks an instance up by id in region
func findInstance(ctx context.Context, client *aws.Client, region, id string) (*pkgtypes.Instance, error) {
	instances, err := client.ListInstances(ctx, region)
	if err != nil {
		return nil, err
	}

	for i := range instances {
		if instances[i].ID == id {
			return &instances[i], nil
		}
	}
	return nil, fmt.Errorf("%w: instance %s in %s", provider.ErrNotFound, id, region)
}
