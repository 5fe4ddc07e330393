package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/screenlate/internal/cli"
	"codeberg.org/snonux/screenlate/internal/logging"
	"codeberg.org/snonux/screenlate/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, flags)
	}

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, flags *cli.Flags) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	logFile := cfg.Log.File
	if cfg.Log.Debug && logFile == "" {
		logFile = logging.DebugFileName(time.Now())
	}
	logger, err := logging.New(cfg.Log.Debug, logFile)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc := processor.NewProcessor(flags, cfg, logger)

	// Handle --list-models flag
	if flags.ListModels {
		return proc.ListModels(ctx)
	}

	if flags.Window == "" && flags.ReplayDir == "" {
		return fmt.Errorf("nothing to translate: pass --window <handle> or --replay <dir>")
	}

	return proc.Run(ctx)
}
