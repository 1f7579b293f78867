package google

import (
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

// TaskIDProperty is the private extended property holding the task id.
const TaskIDProperty = "taskboard_id"

// Calendar color ids per priority (tomato, banana, sage).
var priorityColors = map[model.Priority]string{
	model.PriorityHigh:   "11",
	model.PriorityMedium: "5",
	model.PriorityLow:    "2",
}

// EventForTask converts a task with a due date into an all-day event on that
// date. Done tasks get a "✓" prefix, open tasks past their due day a "!".
func EventForTask(task model.Task, now time.Time) (*calendar.Event, error) {
	if task.DueDate == "" {
		return nil, fmt.Errorf("task %s has no due date", task.ID)
	}
	due, err := time.Parse(model.DateLayout, task.DueDate)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}

	summary := task.Title
	switch {
	case task.Closed():
		summary = "✓ " + task.Title
	case now.Format(model.DateLayout) > task.DueDate:
		summary = "! " + task.Title
	}

	return &calendar.Event{
		Summary:     summary,
		Description: eventDescription(task),
		ColorId:     priorityColors[task.Priority],
		Start:       &calendar.EventDateTime{Date: task.DueDate},
		End:         &calendar.EventDateTime{Date: due.AddDate(0, 0, 1).Format(model.DateLayout)},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{TaskIDProperty: task.ID},
		},
	}, nil
}

func eventDescription(task model.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", task.Status)
	fmt.Fprintf(&b, "Priority: %s\n", task.Priority)
	if task.Assignee != model.AssigneeNone {
		fmt.Fprintf(&b, "Assignee: %s\n", task.Assignee)
	}
	if task.URL != "" {
		fmt.Fprintf(&b, "Issue: %s\n", task.URL)
	}
	if task.Description != "" {
		b.WriteString("\n")
		b.WriteString(task.Description)
		b.WriteString("\n")
	}
	return b.String()
}

// eventPatch returns the fields of target that differ from existing, or nil
// when the event is already up to date.
func eventPatch(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}
	if eventDate(existing.Start) != target.Start.Date || eventDate(existing.End) != target.End.Date {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch
	}
	return nil
}

func eventDate(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	return dt.Date
}
