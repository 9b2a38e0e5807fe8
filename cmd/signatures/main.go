// Command signatures composes layered health-coaching answers from the
// command line and serves the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/app"
	"github.com/matthewbaird/signatures/internal/config"
	"github.com/matthewbaird/signatures/internal/logging"
)

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "signatures",
		Short: "Layer condition-aware add-ons onto persona answers",
		Long: `signatures picks a persona answer for a health question and layers
catalog add-on lines onto it from a calculator context: active conditions,
engagement drivers and PREVENT risk scores.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd.Name() == "serve")
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", os.Getenv("SIGNATURES_CONFIG"), "path to YAML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newComposeCmd(c),
		newQuestionsCmd(c),
		newCatalogCmd(c),
		newServeCmd(c),
	)
	return root
}

// init loads config and builds the logger. One-shot commands log at warn
// unless the level was set explicitly.
func (c *cli) init(serving bool) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}
	c.cfg = cfg

	if c.logger == nil {
		logCfg := cfg.Log
		if !serving && !c.verbose && logCfg.Level == config.Default().Log.Level {
			logCfg.Level = "warn"
		}
		logger, err := logging.New(logCfg)
		if err != nil {
			return err
		}
		c.logger = logger
	}
	return nil
}

// build wires the components from the loaded config.
func (c *cli) build(ctx context.Context) (*app.App, error) {
	return app.New(ctx, c.cfg, c.logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
