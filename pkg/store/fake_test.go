package store

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

// fakeTracker is an in-memory issue tracker.
type fakeTracker struct {
	mu       sync.Mutex
	issues   []tracker.Issue
	next     int
	now      time.Time
	fail     map[string]error
	updates  []tracker.IssueRequest
	comments map[int][]tracker.Comment
	events   map[int][]tracker.Event
}

func newFakeTracker(issues ...tracker.Issue) *fakeTracker {
	f := &fakeTracker{
		next:     100,
		now:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		fail:     make(map[string]error),
		comments: make(map[int][]tracker.Comment),
		events:   make(map[int][]tracker.Event),
	}
	f.issues = append(f.issues, issues...)
	return f
}

func (f *fakeTracker) tick() time.Time {
	f.now = f.now.Add(time.Minute)
	return f.now
}

func (f *fakeTracker) ListIssues(ctx context.Context, q tracker.IssueQuery) ([]tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["list"]; err != nil {
		return nil, err
	}

	var out []tracker.Issue
	for _, issue := range f.issues {
		if q.State != "" && q.State != tracker.StateAll && issue.State != q.State {
			continue
		}
		matches := true
		for _, l := range q.Labels {
			if !issue.HasLabel(l) {
				matches = false
			}
		}
		if matches {
			out = append(out, issue)
		}
	}
	return out, nil
}

func (f *fakeTracker) CreateIssue(ctx context.Context, req tracker.IssueRequest) (tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["create"]; err != nil {
		return tracker.Issue{}, err
	}

	f.next++
	now := f.tick()
	issue := tracker.Issue{
		Number:    f.next,
		State:     tracker.StateOpen,
		CreatedAt: now,
		UpdatedAt: now,
		HTMLURL:   fmt.Sprintf("https://github.com/octo/board/issues/%d", f.next),
	}
	apply(&issue, req)
	f.issues = append(f.issues, issue)
	return issue, nil
}

func (f *fakeTracker) UpdateIssue(ctx context.Context, number int, req tracker.IssueRequest) (tracker.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["update"]; err != nil {
		return tracker.Issue{}, err
	}

	for i := range f.issues {
		if f.issues[i].Number == number {
			f.updates = append(f.updates, req)
			apply(&f.issues[i], req)
			f.issues[i].UpdatedAt = f.tick()
			return f.issues[i], nil
		}
	}
	return tracker.Issue{}, &tracker.RemoteError{Op: "update issue", StatusCode: http.StatusNotFound}
}

func (f *fakeTracker) ListComments(ctx context.Context, number int) ([]tracker.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.comments[number], nil
}

func (f *fakeTracker) CreateComment(ctx context.Context, number int, body string) (tracker.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail["comment"]; err != nil {
		return tracker.Comment{}, err
	}
	c := tracker.Comment{Author: "sam", Body: body, CreatedAt: f.tick()}
	f.comments[number] = append(f.comments[number], c)
	return c, nil
}

func (f *fakeTracker) ListEvents(ctx context.Context, number int) ([]tracker.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[number], nil
}

func (f *fakeTracker) issue(number int) tracker.Issue {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, issue := range f.issues {
		if issue.Number == number {
			return issue
		}
	}
	return tracker.Issue{}
}

func (f *fakeTracker) lastUpdate() tracker.IssueRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[len(f.updates)-1]
}

func apply(issue *tracker.Issue, req tracker.IssueRequest) {
	if req.Title != nil {
		issue.Title = *req.Title
	}
	if req.Body != nil {
		issue.Body = *req.Body
	}
	if req.Labels != nil {
		issue.Labels = append([]string(nil), (*req.Labels)...)
	}
	if req.State != nil {
		issue.State = *req.State
	}
}
