package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "rtm-harness",
		Short:        "Real-time messaging engine for exercising rtm clients",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "config.yaml", "config file")

	rootCmd.AddCommand(newServeCommand(), newTokenCommand(), newProbeCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
