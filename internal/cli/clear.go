package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newClearCmd(root *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Whiten the panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd.Context(), root)
		},
	}
}

func runClear(ctx context.Context, root *rootOpts) error {
	logger := loggerFromContext(ctx)

	panel, cleanup, err := openPanel(root, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := panel.Clear(ctx); err != nil {
		return err
	}
	logger.Info("panel cleared")
	sleepPanel(ctx, panel, logger)
	return nil
}
