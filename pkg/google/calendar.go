// Package google mirrors tasks with a due date onto a Google Calendar as
// all-day events.
package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/harrisonrobin/taskboard/pkg/index"
	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/model"
)

// CalendarClient keeps one calendar in step with the board.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	index      *index.EventIndex
	now        func() time.Time
}

func NewCalendarClient(srv *calendar.Service, calendarID string, idx *index.EventIndex) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, index: idx, now: time.Now}
}

// SyncTask creates or patches the event for a task. Tasks without a due date
// have their event removed and return nil.
func (c *CalendarClient) SyncTask(ctx context.Context, task model.Task) (*calendar.Event, error) {
	if task.DueDate == "" {
		return nil, c.RemoveTask(ctx, task.ID)
	}
	target, err := EventForTask(task, c.now())
	if err != nil {
		return nil, err
	}

	existing, err := c.findEvent(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("error searching for event: %w", err)
	}

	if existing != nil {
		patch := eventPatch(existing, target)
		if patch == nil {
			c.remember(task.ID, existing.Id)
			return existing, nil
		}
		updated, err := c.srv.Events.Patch(c.calendarID, existing.Id, patch).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("patch event %s: %w", existing.Id, err)
		}
		c.remember(task.ID, updated.Id)
		return updated, nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, target).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	c.remember(task.ID, created.Id)
	logging.Logger.WithFields(logrus.Fields{"task": task.ID, "event": created.Id}).Debug("calendar event created")
	return created, nil
}

// RemoveTask deletes the task's event if there is one.
func (c *CalendarClient) RemoveTask(ctx context.Context, taskID string) error {
	existing, err := c.findEvent(ctx, taskID)
	if err != nil {
		return fmt.Errorf("error searching for event: %w", err)
	}
	if existing != nil {
		err := c.srv.Events.Delete(c.calendarID, existing.Id).Context(ctx).Do()
		if err != nil && !isGone(err) {
			return fmt.Errorf("delete event %s: %w", existing.Id, err)
		}
	}
	if c.index != nil {
		c.index.Forget(taskID)
	}
	return nil
}

// SyncReport counts the outcome of a SyncAll pass.
type SyncReport struct {
	Synced  int
	Removed int
	Failed  int
}

// SyncAll mirrors every task with a due date, then removes the events of
// indexed tasks that are no longer on the board.
func (c *CalendarClient) SyncAll(ctx context.Context, tasks []model.Task) SyncReport {
	var report SyncReport
	live := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		live[task.ID] = true
		if task.DueDate == "" && c.lookup(task.ID) == "" {
			continue
		}
		if _, err := c.SyncTask(ctx, task); err != nil {
			report.Failed++
			logging.Logger.WithField("task", task.ID).Warnf("calendar sync failed: %v", err)
			continue
		}
		report.Synced++
	}

	if c.index == nil {
		return report
	}
	for _, id := range c.index.Orphans(c.calendarID, func(id string) bool { return live[id] }) {
		if err := c.RemoveTask(ctx, id); err != nil {
			report.Failed++
			logging.Logger.WithField("task", id).Warnf("failed to remove orphaned event: %v", err)
			continue
		}
		report.Removed++
	}
	return report
}

// findEvent looks the event up in the local index first and falls back to a
// search on the private task id property.
func (c *CalendarClient) findEvent(ctx context.Context, taskID string) (*calendar.Event, error) {
	if eventID := c.lookup(taskID); eventID != "" {
		event, err := c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
		if err == nil && event.Status != "cancelled" {
			return event, nil
		}
		c.index.Forget(taskID)
	}

	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", TaskIDProperty, taskID)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	for _, event := range events.Items {
		if event.Status != "cancelled" {
			return event, nil
		}
	}
	return nil, nil
}

func (c *CalendarClient) lookup(taskID string) string {
	if c.index == nil {
		return ""
	}
	return c.index.Lookup(c.calendarID, taskID)
}

func (c *CalendarClient) remember(taskID, eventID string) {
	if c.index != nil {
		c.index.Record(c.calendarID, taskID, eventID, c.now())
	}
}

func isGone(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone
	}
	return false
}
