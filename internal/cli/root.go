// Package cli implements the epaper command-line interface.
//
// Commands:
//   - serve: run the HTTP frame receiver and the display update worker
//   - demo: animate a moving test pattern to exercise partial updates
//   - clear: whiten the panel
//   - sleep: put the panel into deep sleep
//
// All commands support --verbose for debug logging and --sim to target
// the PNG-snapshot simulator instead of real hardware. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	epaper "github.com/alchemist-s/e-paper-simulation"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version,
// typically injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootOpts holds flags shared by every subcommand.
type rootOpts struct {
	verbose    bool
	configPath string
	sim        bool
	simDir     string
	width      int
	height     int
}

// loadConfig resolves the engine configuration: defaults, optionally
// overridden by a TOML file.
func (o *rootOpts) loadConfig() (epaper.Config, error) {
	if o.configPath == "" {
		return epaper.DefaultConfig(), nil
	}
	return epaper.LoadConfig(o.configPath)
}

// Execute runs the epaper CLI. ctx cancellation (normally SIGINT or
// SIGTERM) stops long-running commands gracefully.
func Execute(ctx context.Context) error {
	opts := &rootOpts{}

	root := &cobra.Command{
		Use:          "epaper",
		Short:        "epaper drives a monochrome e-paper panel with partial updates",
		Long:         `epaper receives frames over HTTP or generates them locally, diffs each one against the last displayed frame and refreshes only the changed, byte-aligned windows of the panel.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("epaper %s\ncommit: %s\nbuilt: %s\n", version, commit, date))

	pf := root.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&opts.configPath, "config", "", "path to a TOML config file")
	pf.BoolVar(&opts.sim, "sim", false, "use the PNG-snapshot simulator instead of hardware")
	pf.StringVar(&opts.simDir, "sim-dir", "simulation_output", "snapshot directory for --sim")
	pf.IntVar(&opts.width, "width", 800, "panel width in pixels")
	pf.IntVar(&opts.height, "height", 480, "panel height in pixels")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newDemoCmd(opts))
	root.AddCommand(newClearCmd(opts))
	root.AddCommand(newSleepCmd(opts))

	return root.ExecuteContext(ctx)
}
