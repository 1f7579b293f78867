package codec

import (
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

func DecodeTip(issue tracker.Issue) model.Tip {
	description, complexity, refs := SplitTipBody(issue.Body)
	return model.Tip{
		ID:           IssueID(issue.Number),
		Title:        issue.Title,
		Description:  description,
		Complexity:   complexity,
		References:   refs,
		CommentCount: issue.Comments,
		Archived:     issue.HasLabel(LabelArchived),
		CreatedAt:    issue.CreatedAt,
		UpdatedAt:    issue.UpdatedAt,
		Number:       issue.Number,
		URL:          issue.HTMLURL,
	}
}

// EncodeTip builds the full replacement request for a tip. Archived tips are
// closed, active ones open.
func EncodeTip(t model.Tip) tracker.IssueRequest {
	title := t.Title
	body := JoinTipBody(t.Description, t.Complexity, t.References)
	labels := []string{LabelTip}
	state := tracker.StateOpen
	if t.Archived {
		labels = append(labels, LabelArchived)
		state = tracker.StateClosed
	}
	return tracker.IssueRequest{
		Title:  &title,
		Body:   &body,
		Labels: &labels,
		State:  &state,
	}
}

// IsTombstoned reports whether the issue was deleted from the board.
func IsTombstoned(issue tracker.Issue) bool {
	return issue.HasLabel(LabelDeleted)
}

// IsTip reports whether the issue belongs to the tip backlog.
func IsTip(issue tracker.Issue) bool {
	return issue.HasLabel(LabelTip)
}
