package codec

import (
	"reflect"
	"testing"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

// issueFrom plays the tracker: it applies a request to a fresh issue.
func issueFrom(number int, created time.Time, req tracker.IssueRequest) tracker.Issue {
	issue := tracker.Issue{Number: number, CreatedAt: created, UpdatedAt: created, State: tracker.StateOpen}
	if req.Title != nil {
		issue.Title = *req.Title
	}
	if req.Body != nil {
		issue.Body = *req.Body
	}
	if req.Labels != nil {
		issue.Labels = *req.Labels
	}
	if req.State != nil {
		issue.State = *req.State
	}
	return issue
}

func TestTaskRoundTrip(t *testing.T) {
	created := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	tasks := []model.Task{
		{Title: "Buy milk", Description: "Two litres", Assignee: model.AssigneeSam, DueDate: "2024-03-01", Priority: model.PriorityHigh, Status: model.StatusTodo},
		{Title: "Ship it", Priority: model.PriorityLow, Status: model.StatusInProgress, Assignee: model.AssigneeMilo},
		{Title: "Done thing", Description: "line one\n\nline two", Priority: model.PriorityMedium, Status: model.StatusDone},
		{Title: "Only due", DueDate: "2025-12-31", Priority: model.PriorityMedium, Status: model.StatusTodo},
	}

	for i, want := range tasks {
		want.Number = i + 1
		want.ID = IssueID(want.Number)
		want.CreatedAt = created
		want.UpdatedAt = created

		got := DecodeTask(issueFrom(want.Number, created, EncodeTask(want)))
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round trip %d: expected %+v, got %+v", i, want, got)
		}
	}
}

func TestDueDateBodyIsByteStable(t *testing.T) {
	body := "Buy milk\n\n📅 Due: 2024-03-01"

	description, due := SplitDue(body)
	if description != "Buy milk" {
		t.Errorf("Expected description 'Buy milk', got %q", description)
	}
	if due != "2024-03-01" {
		t.Errorf("Expected due 2024-03-01, got %q", due)
	}
	if again := JoinDue(description, due); again != body {
		t.Errorf("Expected re-encoded body %q, got %q", body, again)
	}
}

func TestSplitDueMalformed(t *testing.T) {
	cases := map[string]struct {
		body, description, due string
	}{
		"no marker":       {"just text", "just text", ""},
		"short year":      {"x\n📅 Due: 24-03-01", "x\n📅 Due: 24-03-01", ""},
		"only marker":     {"📅 Due: 2024-01-02", "", "2024-01-02"},
		"first one wins":  {"a\n📅 Due: 2024-01-02\n📅 Due: 2025-01-02", "a", "2024-01-02"},
		"marker mid body": {"before\n📅 Due: 2024-05-06\nafter", "before\nafter", "2024-05-06"},
		"empty":           {"", "", ""},
		"trailing digit":  {"x\n📅 Due: 2024-03-011", "x\n📅 Due: 2024-03-011", ""},
		"trailing text":   {"x\n📅 Due: 2024-03-01 maybe", "x\n📅 Due: 2024-03-01 maybe", ""},
		"trailing blanks": {"x\n\n📅 Due: 2024-03-01 \t", "x", "2024-03-01"},
		"crlf":            {"x\r\n\r\n📅 Due: 2024-03-01\r\n", "x", "2024-03-01"},
	}
	for name, tc := range cases {
		description, due := SplitDue(tc.body)
		if description != tc.description || due != tc.due {
			t.Errorf("%s: expected (%q, %q), got (%q, %q)", name, tc.description, tc.due, description, due)
		}
	}
}

func TestStatusPrecedence(t *testing.T) {
	cases := []struct {
		labels []string
		closed bool
		want   model.Status
	}{
		{[]string{"done", "in-progress"}, false, model.StatusDone},
		{[]string{"todo", "in-progress"}, false, model.StatusInProgress},
		{[]string{"todo", "done"}, false, model.StatusDone},
		{[]string{"todo"}, false, model.StatusTodo},
		{nil, false, model.StatusTodo},
		{nil, true, model.StatusDone},
		{[]string{"in-progress"}, true, model.StatusDone},
		{[]string{"bug", "priority:high"}, false, model.StatusTodo},
	}
	for _, tc := range cases {
		if got := DecodeStatus(tc.labels, tc.closed); got != tc.want {
			t.Errorf("DecodeStatus(%v, %v): expected %s, got %s", tc.labels, tc.closed, tc.want, got)
		}
	}
}

func TestClosedIssueWithoutStatusLabelIsDone(t *testing.T) {
	task := DecodeTask(tracker.Issue{Number: 7, Title: "Old", State: tracker.StateClosed})
	if task.Status != model.StatusDone {
		t.Errorf("Expected status done, got %s", task.Status)
	}
}

func TestAssigneeAndPriorityDefaults(t *testing.T) {
	task := DecodeTask(tracker.Issue{Number: 1, Title: "x", State: tracker.StateOpen, Labels: []string{"assigned:sam"}})
	if task.Priority != model.PriorityMedium {
		t.Errorf("Expected priority medium, got %s", task.Priority)
	}
	if task.Assignee != model.AssigneeSam {
		t.Errorf("Expected assignee sam, got %q", task.Assignee)
	}

	if got := DecodeAssignee([]string{"assigned:milo", "assigned:sam"}); got != model.AssigneeSam {
		t.Errorf("Expected sam to win over milo, got %q", got)
	}
	if got := DecodeAssignee([]string{"assigned:bob"}); got != model.AssigneeNone {
		t.Errorf("Expected unknown assignee to decode as none, got %q", got)
	}
	if got := DecodePriority([]string{"priority:medium", "priority:low", "priority:high"}); got != model.PriorityHigh {
		t.Errorf("Expected high to win, got %s", got)
	}
	if got := DecodePriority([]string{"priority:medium", "priority:low"}); got != model.PriorityLow {
		t.Errorf("Expected low to win over medium, got %s", got)
	}
}

func TestEncodeTask(t *testing.T) {
	req := EncodeTask(model.Task{Title: "t", Status: model.StatusDone, Priority: model.PriorityLow, Assignee: model.AssigneeMilo})
	wantLabels := []string{"done", "assigned:milo", "priority:low"}
	if !reflect.DeepEqual(*req.Labels, wantLabels) {
		t.Errorf("Expected labels %v, got %v", wantLabels, *req.Labels)
	}
	if *req.State != tracker.StateClosed {
		t.Errorf("Expected closed state, got %s", *req.State)
	}

	req = EncodeTask(model.Task{Title: "t", Status: model.StatusInProgress})
	wantLabels = []string{"in-progress", "priority:medium"}
	if !reflect.DeepEqual(*req.Labels, wantLabels) {
		t.Errorf("Expected labels %v, got %v", wantLabels, *req.Labels)
	}
	if *req.State != tracker.StateOpen {
		t.Errorf("Expected open state, got %s", *req.State)
	}
}

func TestTipBody(t *testing.T) {
	body := "📊 Complexity: 3 points\n\nTry the new parser\nit is faster\n\nhttps://example.com/a\nhttp://example.org/b?x=1"
	description, complexity, refs := SplitTipBody(body)
	if description != "Try the new parser\nit is faster" {
		t.Errorf("unexpected description %q", description)
	}
	if complexity != 3 {
		t.Errorf("Expected complexity 3, got %d", complexity)
	}
	wantRefs := []string{"https://example.com/a", "http://example.org/b?x=1"}
	if !reflect.DeepEqual(refs, wantRefs) {
		t.Errorf("Expected refs %v, got %v", wantRefs, refs)
	}
	if again := JoinTipBody(description, complexity, refs); again != body {
		t.Errorf("Expected %q, got %q", body, again)
	}
}

func TestTipBodyLenient(t *testing.T) {
	description, complexity, refs := SplitTipBody("📊 Complexity: 1 point\nsee https://inline.example.com here\n  https://x.io/y  ")
	if complexity != 1 {
		t.Errorf("Expected complexity 1, got %d", complexity)
	}
	if description != "see https://inline.example.com here" {
		t.Errorf("inline URLs must stay in the description, got %q", description)
	}
	if len(refs) != 1 || refs[0] != "https://x.io/y" {
		t.Errorf("unexpected refs %v", refs)
	}

	description, complexity, _ = SplitTipBody("📊 Complexity: lots")
	if complexity != 0 || description != "📊 Complexity: lots" {
		t.Errorf("malformed complexity should be left alone, got %d %q", complexity, description)
	}

	description, complexity, _ = SplitTipBody("📊 Complexity: 3 pointsy")
	if complexity != 0 || description != "📊 Complexity: 3 pointsy" {
		t.Errorf("trailing text should make the marker malformed, got %d %q", complexity, description)
	}
}

func TestTipRoundTrip(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	want := model.Tip{
		ID: "5", Number: 5, Title: "Idea", Description: "Use a queue",
		Complexity: 5, References: []string{"https://a.example"}, Archived: true,
		CreatedAt: created, UpdatedAt: created,
	}
	got := DecodeTip(issueFrom(5, created, EncodeTip(want)))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}
