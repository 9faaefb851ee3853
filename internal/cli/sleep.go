package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newSleepCmd(root *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "sleep",
		Short: "Put the panel into deep sleep",
		Long:  `Sleep powers the panel down. The displayed image persists; leaving the panel powered without refreshes can damage it, so run this after stopping the server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSleep(cmd.Context(), root)
		},
	}
}

func runSleep(ctx context.Context, root *rootOpts) error {
	logger := loggerFromContext(ctx)

	panel, cleanup, err := openPanel(root, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	s, ok := panel.(sleeper)
	if !ok {
		logger.Info("simulated display has no sleep mode")
		return nil
	}
	if err := s.Sleep(ctx); err != nil {
		return err
	}
	logger.Info("panel sleeping")
	return nil
}
