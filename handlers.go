package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"channel-console/internal/collection"
	consoleerrors "channel-console/internal/common/errors"
	"channel-console/internal/dispatch"
	logger "channel-console/internal/logger"
	"channel-console/internal/options"
	"channel-console/internal/security"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// openApp builds the App for a command; tests swap it for an in-memory store.
var openApp = func(cmd *cobra.Command) (*App, error) {
	return NewApp(configPath, cmd.ErrOrStderr())
}

func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.cleanup()
	return fn(cmd.Context(), a)
}

func parseIndex(raw string) (int, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, consoleerrors.NewValidationError("index", "row index must be an integer")
	}
	return idx, nil
}

func runServe(cmd *cobra.Command, debug bool) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		if debug {
			a.logger.Logrus().SetLevel(logrus.DebugLevel)
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		a.logger.Info("starting channel console", logrus.Fields{
			"version": version,
			"config":  a.configPath,
			"remote":  a.config.Remote.BaseURL,
		})
		return a.serve(ctx)
	})
}

func runList(cmd *cobra.Command, page int) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		if err := a.openPage(ctx, page); err != nil {
			return err
		}
		return printPage(cmd.OutOrStdout(), a.view.Render())
	})
}

func runSearch(cmd *cobra.Command, keyword string) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		if err := a.view.Search(ctx, keyword); err != nil {
			return err
		}
		return printPage(cmd.OutOrStdout(), a.view.Render())
	})
}

func runSort(cmd *cobra.Command, key string, pages int) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		if err := a.openPage(ctx, pages); err != nil {
			return err
		}
		if err := a.view.Sort(key); err != nil {
			return err
		}
		return printPage(cmd.OutOrStdout(), a.view.Render())
	})
}

func runRowAction(cmd *cobra.Command, kind dispatch.Kind, page int, rawIndex, value string) error {
	idx, err := parseIndex(rawIndex)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *App) error {
		if err := a.openPage(ctx, page); err != nil {
			return err
		}
		if err := a.dispatcher.Run(ctx, kind, idx, value); err != nil {
			return err
		}
		return printPage(cmd.OutOrStdout(), a.view.Render())
	})
}

func runTest(cmd *cobra.Command, page int, rawIndex, model string) error {
	idx, err := parseIndex(rawIndex)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *App) error {
		if err := a.openPage(ctx, page); err != nil {
			return err
		}
		target, err := a.view.Resolve(idx)
		if err != nil {
			return err
		}
		if model != "" {
			if err := a.dispatcher.SwitchTestModel(target, model); err != nil {
				return err
			}
		}
		if err := a.dispatcher.HealthTest(ctx, target); err != nil {
			return err
		}
		return printPage(cmd.OutOrStdout(), a.view.Render())
	})
}

func runBulk(cmd *cobra.Command, kind dispatch.Kind) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		if kind == dispatch.KindPurgeDisabled {
			count, err := a.dispatcher.PurgeDisabled(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d disabled channels\n", count)
			return nil
		}
		return a.dispatcher.RunBulk(ctx, kind)
	})
}

func runDetail(cmd *cobra.Command, state string) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		var show bool
		switch state {
		case "":
			var err error
			if show, err = a.view.ToggleDetail(); err != nil {
				return err
			}
		case "on", "off":
			show = state == "on"
			if err := a.view.SetShowDetail(show); err != nil {
				return err
			}
		default:
			return consoleerrors.NewValidationError("detail", "expected on or off")
		}
		if show {
			fmt.Fprintln(cmd.OutOrStdout(), "detail: on")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "detail: off")
		}
		return nil
	})
}

func runOptionsList(cmd *cobra.Command) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		opts, err := a.options.List(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE")
		var blocks []string
		for _, o := range opts {
			display := options.Display(o)
			if strings.Contains(display, "\n") {
				fmt.Fprintf(w, "%s\t(see below)\n", o.Key)
				blocks = append(blocks, o.Key+":\n"+display)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\n", o.Key, display)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		for _, b := range blocks {
			fmt.Fprintf(out, "\n%s\n", b)
		}
		return nil
	})
}

func runOptionsSet(cmd *cobra.Command, key, value string) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		changed, err := a.options.Set(ctx, key, value)
		if err != nil {
			return err
		}
		if !changed {
			fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged\n", key)
		}
		return nil
	})
}

func runOptionsToggle(cmd *cobra.Command, key string) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		value, err := a.options.Toggle(ctx, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %t\n", key, value)
		return nil
	})
}

func runOptionsAbilities(cmd *cobra.Command) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		return a.options.UpdateAbilities(ctx)
	})
}

func runActions(cmd *cobra.Command, limit, offset int, failedOnly bool, channelID int) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		var (
			actions []*logger.ActionLog
			total   int
			err     error
		)
		if channelID > 0 {
			actions, err = a.logger.GetActionsByChannel(channelID)
			total = len(actions)
		} else {
			actions, total, err = a.logger.GetActions(limit, offset, failedOnly)
		}
		if err != nil {
			return err
		}
		return printActions(cmd.OutOrStdout(), actions, total)
	})
}

func runActionsCleanup(cmd *cobra.Command, days int) error {
	if err := security.ValidateLogDays(days); err != nil {
		return consoleerrors.NewValidationError("days", err.Error())
	}
	return withApp(cmd, func(ctx context.Context, a *App) error {
		deleted, err := a.logger.CleanupLogsByDays(days)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d journal entries\n", deleted)
		return nil
	})
}

func runActionsStats(cmd *cobra.Command) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		stats, err := a.logger.GetStats()
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(stats))
		for k := range stats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, k := range keys {
			fmt.Fprintf(w, "%s\t%v\n", k, stats[k])
		}
		return w.Flush()
	})
}

func printPage(out io.Writer, page collection.Page) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := "#\tID\tNAME\tGROUP\tTYPE\tSTATUS\tRESPONSE\tPRIORITY\tWEIGHT"
	if page.ShowDetail {
		header += "\tBALANCE"
	}
	fmt.Fprintln(w, header+"\tTAGS")
	for _, row := range page.Rows {
		rec := row.Record
		line := fmt.Sprintf("%d\t%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d",
			row.Index, rec.ID, rec.Name, rec.Group, row.TypeLabel.Text, row.StatusLabel.Text,
			row.ResponseTime, rec.Priority, rec.Weight)
		if page.ShowDetail {
			line += "\t" + row.Balance
		}
		fmt.Fprintln(w, line+"\t"+strings.Join(row.Tags, ","))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	footer := fmt.Sprintf("page %d/%d, %d loaded", page.Page, page.TotalPages, page.Loaded)
	if page.Mode == collection.ModeSearching {
		footer += fmt.Sprintf(", search %q", page.Keyword)
	}
	if page.SortedBy != "" {
		footer += ", sorted by " + page.SortedBy
	}
	_, err := fmt.Fprintln(out, footer)
	return err
}

func printActions(out io.Writer, actions []*logger.ActionLog, total int) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tKIND\tCHANNEL\tVALUE\tOUTCOME\tDURATION\tMESSAGE")
	for _, act := range actions {
		channelName := "-"
		if act.ChannelID != 0 {
			channelName = fmt.Sprintf("%d %s", act.ChannelID, act.ChannelName)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			act.Timestamp.Local().Format(time.RFC3339), act.Kind, channelName, act.Value, act.Outcome,
			(time.Duration(act.DurationMs) * time.Millisecond).String(), act.Message)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d of %d\n", len(actions), total)
	return err
}
