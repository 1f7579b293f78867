package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/harrisonrobin/taskboard/pkg/codec"
	"github.com/harrisonrobin/taskboard/pkg/logging"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

// IssueBackend keeps tasks as issues in a tracker.
type IssueBackend struct {
	tracker tracker.Tracker
}

func NewIssueBackend(t tracker.Tracker) *IssueBackend {
	return &IssueBackend{tracker: t}
}

// Fetch merges the open issues with the closed issues carrying the done
// label. Pull requests, tips and tombstoned issues are skipped.
func (b *IssueBackend) Fetch(ctx context.Context) ([]model.Task, error) {
	open, err := b.tracker.ListIssues(ctx, tracker.IssueQuery{State: tracker.StateOpen})
	if err != nil {
		return nil, err
	}
	done, err := b.tracker.ListIssues(ctx, tracker.IssueQuery{
		State:  tracker.StateClosed,
		Labels: []string{codec.StatusLabel(model.StatusDone)},
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(open)+len(done))
	tasks := make([]model.Task, 0, len(open)+len(done))
	for _, issue := range append(open, done...) {
		if issue.IsPullRequest || codec.IsTip(issue) || codec.IsTombstoned(issue) || seen[issue.Number] {
			continue
		}
		seen[issue.Number] = true
		tasks = append(tasks, codec.DecodeTask(issue))
	}
	logging.Logger.WithFields(logrus.Fields{
		"open":  len(open),
		"done":  len(done),
		"tasks": len(tasks),
	}).Debug("fetched issues")
	return tasks, nil
}

// Create opens the issue and, for tasks created straight into done, closes
// it. A failed close is only logged: the done label already carries the status.
func (b *IssueBackend) Create(ctx context.Context, t model.Task) (model.Task, error) {
	req := codec.EncodeTask(t)
	req.State = nil

	issue, err := b.tracker.CreateIssue(ctx, req)
	if err != nil {
		return model.Task{}, err
	}

	if t.Closed() && !issue.Closed() {
		state := tracker.StateClosed
		closed, err := b.tracker.UpdateIssue(ctx, issue.Number, tracker.IssueRequest{State: &state})
		if err != nil {
			logging.Logger.WithField("number", issue.Number).Warnf("could not close new issue: %v", err)
		} else {
			issue = closed
		}
	}
	return codec.DecodeTask(issue), nil
}

func (b *IssueBackend) Update(ctx context.Context, t model.Task) (model.Task, error) {
	number, err := issueNumber(t)
	if err != nil {
		return model.Task{}, err
	}
	issue, err := b.tracker.UpdateIssue(ctx, number, codec.EncodeTask(t))
	if err != nil {
		return model.Task{}, err
	}
	return codec.DecodeTask(issue), nil
}

// Delete closes the issue and replaces its labels with the tombstone; the
// tracker has no physical delete.
func (b *IssueBackend) Delete(ctx context.Context, t model.Task) error {
	number, err := issueNumber(t)
	if err != nil {
		return err
	}
	_, err = b.tracker.UpdateIssue(ctx, number, codec.Tombstone())
	return err
}

func (b *IssueBackend) Comments(ctx context.Context, t model.Task) ([]tracker.Comment, error) {
	number, err := issueNumber(t)
	if err != nil {
		return nil, err
	}
	return b.tracker.ListComments(ctx, number)
}

func (b *IssueBackend) AddComment(ctx context.Context, t model.Task, body string) (tracker.Comment, error) {
	number, err := issueNumber(t)
	if err != nil {
		return tracker.Comment{}, err
	}
	return b.tracker.CreateComment(ctx, number, body)
}

func (b *IssueBackend) Activity(ctx context.Context, t model.Task) ([]tracker.Event, error) {
	number, err := issueNumber(t)
	if err != nil {
		return nil, err
	}
	return b.tracker.ListEvents(ctx, number)
}

func issueNumber(t model.Task) (int, error) {
	if t.Number > 0 {
		return t.Number, nil
	}
	if n, ok := codec.IssueNumber(t.ID); ok {
		return n, nil
	}
	return 0, fmt.Errorf("task %q has no issue number", t.ID)
}
