package cli

import (
	"context"
	"errors"
	"image"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	epaper "github.com/alchemist-s/e-paper-simulation"
	"github.com/alchemist-s/e-paper-simulation/internal/queue"
	"github.com/alchemist-s/e-paper-simulation/internal/server"
)

type serveOpts struct {
	addr       string
	queueDepth int
	clearFirst bool
}

func newServeCmd(root *rootOpts) *cobra.Command {
	opts := &serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Receive frames over HTTP and display them",
		Long:  `Serve starts the HTTP frame receiver and the single display worker. POST a JSON body {"image": "<base64 PNG>"} to / and poll /status for queue state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&opts.queueDepth, "queue-depth", 16, "pending frame buffer size")
	cmd.Flags().BoolVar(&opts.clearFirst, "clear", false, "clear the panel before serving")
	return cmd
}

func runServe(ctx context.Context, root *rootOpts, opts *serveOpts) error {
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

	if opts.clearFirst {
		if err := panel.Clear(ctx); err != nil {
			return err
		}
	}

	planner, err := epaper.NewPlanner(root.width, root.height, cfg, logger)
	if err != nil {
		return err
	}
	proc := queue.New(planner, panel, logger, opts.queueDepth)
	srv := server.New(proc, image.Rect(0, 0, root.width, root.height), logger)

	httpSrv := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := proc.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		logger.Info("listening", "addr", opts.addr)
		err := httpSrv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	sleepPanel(context.Background(), panel, logger)
	return err
}
