// Package tracker defines what taskboard needs from an issue tracking service.
package tracker

import (
	"context"
	"time"
)

const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateAll    = "all"
)

// Issue is the tracker's view of a task or tip.
type Issue struct {
	Number        int
	Title         string
	Body          string
	Labels        []string
	State         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	HTMLURL       string
	IsPullRequest bool
	Comments      int
}

// HasLabel reports whether the issue carries the label name.
func (i Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}

func (i Issue) Closed() bool {
	return i.State == StateClosed
}

// IssueQuery filters ListIssues. Labels must all be present.
type IssueQuery struct {
	State  string
	Labels []string
}

// IssueRequest is a create or full-replacement update. Nil fields are not sent.
type IssueRequest struct {
	Title  *string
	Body   *string
	Labels *[]string
	State  *string
}

type Comment struct {
	Author    string
	Body      string
	CreatedAt time.Time
}

// Event is one entry of an issue's activity feed.
type Event struct {
	Type      string // labeled, unlabeled, assigned, closed, reopened, ...
	Actor     string
	Label     string
	CreatedAt time.Time
}

// Tracker is implemented by issue tracking clients.
type Tracker interface {
	ListIssues(ctx context.Context, q IssueQuery) ([]Issue, error)
	CreateIssue(ctx context.Context, req IssueRequest) (Issue, error)
	UpdateIssue(ctx context.Context, number int, req IssueRequest) (Issue, error)
	ListComments(ctx context.Context, number int) ([]Comment, error)
	CreateComment(ctx context.Context, number int, body string) (Comment, error)
	ListEvents(ctx context.Context, number int) ([]Event, error)
}
