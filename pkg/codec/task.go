// Package codec converts tasks and tips to and from tracker issues.
//
// Status, assignee and priority travel as labels. Due dates, tip complexity
// and tip references travel as marker lines inside the issue body. Decoding
// never fails: anything that does not match a marker falls back to a default.
package codec

import (
	"strconv"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

// DecodeTask converts an issue into a task.
func DecodeTask(issue tracker.Issue) model.Task {
	description, due := SplitDue(issue.Body)
	return model.Task{
		ID:          IssueID(issue.Number),
		Title:       issue.Title,
		Description: description,
		Assignee:    DecodeAssignee(issue.Labels),
		DueDate:     due,
		Priority:    DecodePriority(issue.Labels),
		Status:      DecodeStatus(issue.Labels, issue.Closed()),
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
		Number:      issue.Number,
		URL:         issue.HTMLURL,
	}
}

// EncodeTask builds the full replacement request for a task.
func EncodeTask(t model.Task) tracker.IssueRequest {
	title := t.Title
	body := JoinDue(t.Description, t.DueDate)
	labels := EncodeLabels(t)
	state := State(t)
	return tracker.IssueRequest{
		Title:  &title,
		Body:   &body,
		Labels: &labels,
		State:  &state,
	}
}

// State derives the issue state from the task status.
func State(t model.Task) string {
	if t.Closed() {
		return tracker.StateClosed
	}
	return tracker.StateOpen
}

// Tombstone is the request that marks an issue deleted. The prior status is
// not preserved.
func Tombstone() tracker.IssueRequest {
	labels := []string{LabelDeleted}
	state := tracker.StateClosed
	return tracker.IssueRequest{Labels: &labels, State: &state}
}

// IssueID is the task id used for an issue number.
func IssueID(number int) string {
	return strconv.Itoa(number)
}

// IssueNumber parses a task id back into an issue number.
func IssueNumber(id string) (int, bool) {
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
