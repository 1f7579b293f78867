package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/auth"
	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/github"
	"github.com/harrisonrobin/taskboard/pkg/google"
	"github.com/harrisonrobin/taskboard/pkg/index"
	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/offline"
	"github.com/harrisonrobin/taskboard/pkg/overdue"
	"github.com/harrisonrobin/taskboard/pkg/store"
	"github.com/harrisonrobin/taskboard/pkg/tracker"
	"github.com/harrisonrobin/taskboard/pkg/view"
)

// cli holds what the commands share. In the shell the same value serves
// every line, so the store and board survive between commands.
type cli struct {
	repo    string
	offline bool
	cfg     *config.Config
	app     *app
	// credential is where the tracker token was read from.
	credential auth.Source
}

// app is an opened board.
type app struct {
	tasks    *store.Store
	tips     *store.TipStore
	board    *view.Board
	sweep    *overdue.Table
	events   *index.EventIndex
	calendar *google.CalendarClient
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "A kanban board kept in GitHub issues",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}
	root.PersistentFlags().StringVar(&c.repo, "repo", c.repo, "repository as owner/name (overrides config)")
	root.PersistentFlags().BoolVar(&c.offline, "offline", c.offline, "use the local board file instead of GitHub")

	root.AddCommand(
		boardCmd(c),
		addCmd(c),
		editCmd(c),
		moveCmd(c),
		rmCmd(c),
		showCmd(c),
		commentCmd(c),
		tipCmd(c),
		exportCmd(c),
		sweepCmd(c),
		calendarCmd(c),
		shellCmd(c),
		authCmd(c),
		configCmd(c),
	)
	return root
}

func (c *cli) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.repo != "" {
		cfg.Repository = c.repo
	}
	if c.offline {
		cfg.Backend = config.BackendOffline
	}
	if err := logging.Init(cfg.LogFile, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging to stderr: %v\n", err)
	}
	c.cfg = cfg
	return nil
}

// open builds the store for the configured backend, wires the board and the
// hooks, and loads every task. It is done once per process.
func (c *cli) open(ctx context.Context) (*app, error) {
	if c.app != nil {
		return c.app, nil
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{board: view.NewBoard()}
	var backend store.Backend
	switch c.cfg.Backend {
	case config.BackendOffline:
		s, err := offline.Open(c.cfg.OfflinePath)
		if err != nil {
			return nil, err
		}
		backend = s
	default:
		client, err := c.tracker(ctx)
		if err != nil {
			return nil, err
		}
		backend = store.NewIssueBackend(client)
		a.tips = store.NewTipStore(client)
	}
	a.tasks = store.New(backend, store.WithObserver(view.NewSync(a.board)))

	if path, err := config.Path(overdue.File); err == nil {
		if table, err := overdue.NewTable(path); err != nil {
			logging.Logger.Warnf("overdue table unavailable: %v", err)
		} else {
			a.sweep = table
			a.tasks.Observe(table)
		}
	}
	c.openCalendar(ctx, a)

	if err := a.tasks.RefreshAll(ctx); err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *cli) tracker(ctx context.Context) (tracker.Tracker, error) {
	token, src, err := auth.ResolveToken()
	if err != nil {
		return nil, err
	}
	c.credential = src
	var opts []github.Option
	if c.cfg.APIURL != "" {
		opts = append(opts, github.WithBaseURL(c.cfg.APIURL))
	}
	return github.NewClient(ctx, token, c.cfg.Repository, opts...)
}

// openCalendar attaches the due-date mirror when a calendar is configured and
// Google was authorized before. Failures only disable the mirror.
func (c *cli) openCalendar(ctx context.Context, a *app) {
	if c.cfg.Calendar == "" {
		return
	}
	if !auth.HasGoogleToken() {
		logging.Logger.Warn("calendar configured but Google is not authorized: run 'taskboard auth google'")
		return
	}
	path, err := config.Path(index.File)
	if err != nil {
		logging.Logger.Warnf("event index unavailable: %v", err)
		return
	}
	idx, err := index.Open(path)
	if err != nil {
		logging.Logger.Warnf("event index unavailable: %v", err)
		return
	}
	client, err := google.NewClient(ctx, c.cfg.Calendar, idx)
	if err != nil {
		logging.Logger.Warnf("calendar mirror disabled: %v", err)
		return
	}
	a.events = idx
	a.calendar = client
	a.tasks.Observe(google.NewMirror(client))
}

// flush saves the local hook state.
func (c *cli) flush() {
	if c.app == nil {
		return
	}
	if c.app.sweep != nil {
		if err := c.app.sweep.Save(); err != nil {
			logging.Logger.Warnf("failed to save overdue table: %v", err)
		}
	}
	if c.app.events != nil {
		if err := c.app.events.Save(); err != nil {
			logging.Logger.Warnf("failed to save event index: %v", err)
		}
	}
}

// tipStore returns the tip store, which only exists with the issue tracker.
func (a *app) tipStore() (*store.TipStore, error) {
	if a.tips == nil {
		return nil, fmt.Errorf("tips: %w", store.ErrUnsupported)
	}
	return a.tips, nil
}

// warnMissing reports a stale id as a warning instead of a failure.
func warnMissing(cmd *cobra.Command, id string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		logging.Logger.WithField("id", id).Warn("no such task")
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: no task %s\n", id)
		return nil
	}
	return err
}
