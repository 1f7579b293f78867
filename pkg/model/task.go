package model

import (
	"fmt"
	"time"
)

// Status is the board column a task lives in.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Statuses lists the columns in board order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

type Assignee string

const (
	AssigneeNone Assignee = ""
	AssigneeSam  Assignee = "sam"
	AssigneeMilo Assignee = "milo"
)

var Assignees = []Assignee{AssigneeSam, AssigneeMilo}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Task is a card on the board.
type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Assignee    Assignee  `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	DueDate     string    `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Priority    Priority  `json:"priority" yaml:"priority"`
	Status      Status    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	// Issue tracker reference; zero in the offline variant.
	Number int    `json:"number,omitempty" yaml:"number,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Closed reports whether the task maps to a closed external record.
func (t Task) Closed() bool {
	return t.Status == StatusDone
}

// Draft holds the user supplied fields of a task that does not exist yet.
type Draft struct {
	Title       string
	Description string
	Assignee    Assignee
	DueDate     string
	Priority    Priority
	Status      Status
}

// Task fills in defaults and returns the draft as a task without identity.
func (d Draft) Task(now time.Time) Task {
	t := Task{
		Title:       d.Title,
		Description: d.Description,
		Assignee:    d.Assignee,
		DueDate:     d.DueDate,
		Priority:    d.Priority,
		Status:      d.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
	return t
}

// Patch is a shallow partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Assignee    *Assignee
	DueDate     *string
	Priority    *Priority
	Status      *Status
}

// Apply merges the patch over t and returns the result.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t
}

func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Assignee == nil &&
		p.DueDate == nil && p.Priority == nil && p.Status == nil
}

const DateLayout = "2006-01-02"

// ParseStatus validates a status name typed by a user.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q (want todo, in-progress or done)", s)
}

// ParseAssignee accepts "sam", "milo", or "none"/"" for unassigned.
func ParseAssignee(s string) (Assignee, error) {
	if s == "" || s == "none" {
		return AssigneeNone, nil
	}
	for _, a := range Assignees {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown assignee %q (want sam, milo or none)", s)
}

func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown priority %q (want low, medium or high)", s)
}

// ParseDueDate accepts YYYY-MM-DD or an empty string to clear the date.
func ParseDueDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("invalid due date %q: %w", s, err)
	}
	return s, nil
}
