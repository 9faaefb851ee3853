package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	epaper "github.com/alchemist-s/e-paper-simulation"
	"github.com/alchemist-s/e-paper-simulation/internal/testpattern"
)

type demoOpts struct {
	frames   int
	interval time.Duration
}

func newDemoCmd(root *rootOpts) *cobra.Command {
	opts := &demoOpts{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Animate a test pattern to exercise partial updates",
		Long:  `Demo renders a moving circle with a frame counter and pushes each frame through the planner, so only the windows around the circle and the text refresh. Run with --sim to watch the snapshots instead of a panel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), root, opts)
		},
	}

	cmd.Flags().IntVar(&opts.frames, "frames", 0, "number of frames to render (0 = until interrupted)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 2*time.Second, "delay between frames")
	return cmd
}

func runDemo(ctx context.Context, root *rootOpts, opts *demoOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	panel, cleanup, err := openPanel(root, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	planner, err := epaper.NewPlanner(root.width, root.height, cfg, logger)
	if err != nil {
		return err
	}
	gen := testpattern.New(root.width, root.height)

	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	for n := 0; opts.frames == 0 || n < opts.frames; n++ {
		frame, err := gen.Frame(n)
		if err != nil {
			return err
		}

		start := time.Now()
		plan, err := planner.Update(ctx, panel, frame)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error("frame update failed", "frame", n, "err", err)
		} else {
			logger.Info("frame displayed",
				"frame", n,
				"kind", plan.Kind,
				"windows", len(plan.Commands),
				"took", time.Since(start).Round(time.Millisecond))
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			break
		}
	}

	logger.Info("demo finished, putting panel to sleep")
	sleepPanel(context.Background(), panel, logger)
	return nil
}
