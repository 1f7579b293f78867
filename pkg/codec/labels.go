package codec

import "github.com/harrisonrobin/taskboard/pkg/model"

const (
	assigneePrefix = "assigned:"
	priorityPrefix = "priority:"

	// LabelDeleted is the tombstone put on issues that were deleted from the board.
	LabelDeleted = "deleted"
	// LabelTip marks issues that belong to the tip backlog instead of the board.
	LabelTip = "tip"
	// LabelArchived marks tips that were converted to tasks.
	LabelArchived = "archived"
)

// Decode tables, in precedence order: the first label found wins.
var (
	statusPrecedence = []model.Status{model.StatusDone, model.StatusInProgress, model.StatusTodo}

	assigneePrecedence = []model.Assignee{model.AssigneeSam, model.AssigneeMilo}

	priorityPrecedence = []model.Priority{model.PriorityHigh, model.PriorityLow, model.PriorityMedium}
)

func StatusLabel(s model.Status) string {
	return string(s)
}

func AssigneeLabel(a model.Assignee) string {
	if a == model.AssigneeNone {
		return ""
	}
	return assigneePrefix + string(a)
}

func PriorityLabel(p model.Priority) string {
	return priorityPrefix + string(p)
}

// DecodeStatus picks the task status from a label set. A closed issue is done
// whether or not it carries the done label.
func DecodeStatus(labels []string, closed bool) model.Status {
	if closed {
		return model.StatusDone
	}
	set := labelSet(labels)
	for _, s := range statusPrecedence {
		if set[StatusLabel(s)] {
			return s
		}
	}
	return model.StatusTodo
}

func DecodeAssignee(labels []string) model.Assignee {
	set := labelSet(labels)
	for _, a := range assigneePrecedence {
		if set[AssigneeLabel(a)] {
			return a
		}
	}
	return model.AssigneeNone
}

func DecodePriority(labels []string) model.Priority {
	set := labelSet(labels)
	for _, p := range priorityPrecedence {
		if set[PriorityLabel(p)] {
			return p
		}
	}
	return model.PriorityMedium
}

// EncodeLabels returns the full label set for a task: status, assignee if
// set, then priority.
func EncodeLabels(t model.Task) []string {
	status := t.Status
	if status == "" {
		status = model.StatusTodo
	}
	priority := t.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	labels := []string{StatusLabel(status)}
	if a := AssigneeLabel(t.Assignee); a != "" {
		labels = append(labels, a)
	}
	return append(labels, PriorityLabel(priority))
}

func labelSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}
