package main

import (
	"channel-console/internal/dispatch"

	"github.com/spf13/cobra"
)

func buildServeCmd() *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the console JSON server",
		Long: `Load the first page of channels and serve the console API.

Routes live under /api; Prometheus metrics are served at /metrics.
The server shuts down cleanly on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, debug)
		},
	}
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func buildListCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show a page of channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, page)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page to show (1-based)")
	return cmd
}

func buildSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search channels by keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0])
		},
	}
}

func buildSortCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "sort <key>",
		Short: "Sort the loaded channels by a field (repeat to reverse)",
		Example: `  channel-console sort priority
  channel-console sort response_time --page 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, args[0], page)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Pages to load before sorting")
	return cmd
}

// buildRowCmd creates a command that runs kind against one row of a page.
func buildRowCmd(use, short string, kind dispatch.Kind) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRowAction(cmd, kind, page, args[0], "")
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page the row is on")
	return cmd
}

func buildValueCmd(use, short string, kind dispatch.Kind) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRowAction(cmd, kind, page, args[0], args[1])
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page the row is on")
	return cmd
}

func buildTestCmd() *cobra.Command {
	var (
		page  int
		model string
	)
	cmd := &cobra.Command{
		Use:   "test <index>",
		Short: "Health-test a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, page, args[0], model)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page the row is on")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Test with this model instead of the channel's first")
	return cmd
}

func buildBulkCmd(kind dispatch.Kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(kind),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(cmd, kind)
		},
	}
}

func buildDetailCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "detail [on|off]",
		Short:     "Show or hide the balance column (toggles without an argument)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			state := ""
			if len(args) == 1 {
				state = args[0]
			}
			return runDetail(cmd, state)
		},
	}
}

// buildOptionsCmd creates the "options" command group for gateway-wide settings.
func buildOptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Manage gateway options",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List options",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOptionsList(cmd)
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set an option",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOptionsSet(cmd, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "toggle <key>",
			Short: "Flip an ...Enabled switch",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOptionsToggle(cmd, args[0])
			},
		},
		&cobra.Command{
			Use:   "abilities",
			Short: "Rebuild the gateway's channel model table",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOptionsAbilities(cmd)
			},
		},
	)
	return cmd
}

// buildActionsCmd creates the "actions" command group for the local action journal.
func buildActionsCmd() *cobra.Command {
	var (
		limit      int
		offset     int
		failedOnly bool
		channelID  int
	)
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Show journaled actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActions(cmd, limit, offset, failedOnly, channelID)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Entries to skip")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only failed actions")
	cmd.Flags().IntVar(&channelID, "channel", 0, "Only actions on this channel id")

	var days int
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete journal entries older than --days (0 deletes everything)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActionsCleanup(cmd, days)
		},
	}
	cleanup.Flags().IntVar(&days, "days", 30, "Keep entries newer than this many days")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActionsStats(cmd)
		},
	}
	cmd.AddCommand(cleanup, stats)
	return cmd
}
