// Command channel-console browses and operates the channel pool of a one-api
// style gateway, either as a local JSON console server or one command at a time.
//
//	channel-console serve --config config.yaml
//	channel-console list --page 2
//	channel-console priority 3 10
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"

	configPath string
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "channel-console",
		Short:        "Browse and operate the gateway channel pool",
		Version:      fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(),
		"Path to YAML configuration file (or set CHANNEL_CONSOLE_CONFIG)")

	rootCmd.AddCommand(
		buildServeCmd(),
		buildListCmd(),
		buildSearchCmd(),
		buildSortCmd(),
		buildRowCmd("delete <index>", "Delete a channel", "delete"),
		buildRowCmd("enable <index>", "Enable a channel", "enable"),
		buildRowCmd("disable <index>", "Disable a channel", "disable"),
		buildRowCmd("balance <index>", "Refresh a channel's balance", "refresh-balance"),
		buildValueCmd("priority <index> <value>", "Set a channel's priority", "set-priority"),
		buildValueCmd("weight <index> <value>", "Set a channel's weight", "set-weight"),
		buildTestCmd(),
		buildBulkCmd("test-all", "Start a health test of every channel"),
		buildBulkCmd("test-disabled", "Start a health test of disabled channels"),
		buildBulkCmd("purge-disabled", "Delete every disabled channel"),
		buildDetailCmd(),
		buildOptionsCmd(),
		buildActionsCmd(),
	)
	return rootCmd
}
