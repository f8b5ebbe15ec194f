// Package main is the entry point for the visor CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "visor",
		Short:        "Reactive visor display driven by a speech recognizer",
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "path to visor.toml (default: search upward from the working directory)")
	root.PersistentFlags().Bool("no-tui", false, "log to stdout instead of showing the dashboard")

	root.AddCommand(
		runCmd(),
		initCmd(),
		deckCmd(),
		logCmd(),
	)

	return root
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()
	return ctx, cancel
}
