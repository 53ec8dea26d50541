package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"codeberg.org/snonux/describeit/internal/cli"
	"codeberg.org/snonux/describeit/internal/logging"
	"codeberg.org/snonux/describeit/internal/models"
	"codeberg.org/snonux/describeit/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		flags.LoadConfig(viper.GetViper())
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx := cmd.Context()

	logs := logging.NewBuffer(1000)
	log := logging.New(flags.Debug, logs)
	defer func() { _ = log.Sync() }()

	// Handle --list-models flag
	if flags.ListModels {
		lister := models.NewLister(cli.GetOpenAIKey())
		return lister.ListAvailableModels(ctx, os.Stdout)
	}

	engines, err := processor.BuildEngines(ctx, flags, log)
	if err != nil {
		return err
	}

	// Create processor
	proc, err := processor.New(flags, engines, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := proc.Close(); err != nil {
			log.Warn("shutdown incomplete", zap.Error(err))
		}
	}()

	switch {
	case flags.ClearCache:
		return proc.ClearCache(ctx)
	case flags.CacheStats:
		return proc.ShowCacheStats(ctx)
	case flags.CommandsStdin:
		return proc.RunCommands(ctx, args)
	case flags.BatchFile != "":
		return proc.ProcessBatch(ctx)
	case len(args) > 0:
		if err := proc.ProcessFiles(ctx, args); err != nil {
			return err
		}
		fmt.Println("\nDone!")
		return nil
	default:
		// No input provided - launch GUI mode by default
		return proc.RunGUIMode(ctx, logs)
	}
}
