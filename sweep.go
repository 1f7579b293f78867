package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

func sweepCmd(c *cli) *cobra.Command {
	var schedule string
	var watch bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Report tasks that went past their due date",
		Long: `Report open tasks whose due date has passed. Each task is reported once
per due date. With a calendar configured the mirrored event is flagged too.

With --watch the sweep keeps running on the configured schedule until
interrupted; --cron overrides the schedule (standard cron syntax or
descriptors such as @hourly).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if a.sweep == nil {
				return fmt.Errorf("overdue table unavailable, see the log")
			}
			out := cmd.OutOrStdout()

			if !watch && schedule == "" {
				return c.sweepOnce(cmd.Context(), a, out, time.Now())
			}
			if schedule == "" {
				schedule = c.cfg.SweepSchedule
			}
			return c.sweepOnSchedule(cmd.Context(), a, out, schedule)
		},
	}
	cmd.Flags().StringVar(&schedule, "cron", "", "keep sweeping on this schedule")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep sweeping on the configured schedule")
	return cmd
}

func (c *cli) sweepOnce(ctx context.Context, a *app, out io.Writer, now time.Time) error {
	entries := a.sweep.Sweep(now)
	for _, e := range entries {
		fmt.Fprintf(out, "Overdue: %s %s (due %s)\n", e.TaskID, e.Title, e.Due.Format(model.DateLayout))

		task, ok := a.tasks.Get(e.TaskID)
		if !ok || a.calendar == nil {
			continue
		}
		if _, err := a.calendar.SyncTask(ctx, task); err != nil {
			logging.Logger.WithField("task", e.TaskID).Warnf("sweep: could not flag calendar event: %v", err)
		}
	}
	logging.Logger.WithField("overdue", len(entries)).Info("sweep finished")
	c.flush()
	return nil
}

func (c *cli) sweepOnSchedule(ctx context.Context, a *app, out io.Writer, schedule string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := scheduler.AddFunc(schedule, func() {
		if err := a.tasks.RefreshAll(ctx); err != nil {
			logging.Logger.Warnf("sweep: refresh failed: %v", err)
			return
		}
		if err := c.sweepOnce(ctx, a, out, time.Now()); err != nil {
			logging.Logger.Warnf("sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	fmt.Fprintf(out, "Sweeping on schedule %q, interrupt to stop\n", schedule)
	if err := c.sweepOnce(ctx, a, out, time.Now()); err != nil {
		return err
	}
	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

func calendarCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Manage the due date calendar mirror",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Mirror every dated task and drop events of tasks no longer on the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if a.calendar == nil {
				return errors.New("calendar mirror is not enabled: set a calendar with 'taskboard config set calendar <name>' and run 'taskboard auth google'")
			}
			report := a.calendar.SyncAll(cmd.Context(), a.tasks.List())
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d, removed %d, failed %d\n", report.Synced, report.Removed, report.Failed)
			if report.Failed > 0 {
				return fmt.Errorf("%d calendar updates failed", report.Failed)
			}
			return nil
		},
	})
	return cmd
}
