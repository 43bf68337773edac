package main

import (
	"net"
	"os"

	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "collabsheet",
		Short:         "Collaborative spreadsheet view host",
		Long:          `Hosts spreadsheet views that evaluate formulas, persist their state and keep each other in sync over a broadcast channel.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one view: HTTP API, evaluation and storage workers, sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(configPath)
			if err != nil {
				return err
			}

			logger, err := NewLogger(config.Log, os.Stderr)
			if err != nil {
				return err
			}

			return RunApp(cmd.Context(), config, logger)
		},
	}

	relayCmd := &cobra.Command{
		Use:   "relay",
		Short: "Serve only the websocket broadcast relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(configPath)
			if err != nil {
				return err
			}

			logger, err := NewLogger(config.Log, os.Stderr)
			if err != nil {
				return err
			}

			listener, err := net.Listen("tcp", config.Listen)
			if err != nil {
				return err
			}

			return RunRelay(cmd.Context(), config, logger, listener)
		},
	}

	rootCmd.AddCommand(serveCmd, relayCmd)

	return rootCmd
}
