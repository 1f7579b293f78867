package github

import (
	"context"

	gogithub "github.com/google/go-github/v66/github"

	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

var _ tracker.Tracker = (*Client)(nil)

// ListIssues walks every page of the repository's issues matching q.
// Pull requests are returned too, flagged by IsPullRequest.
func (c *Client) ListIssues(ctx context.Context, q tracker.IssueQuery) ([]tracker.Issue, error) {
	opts := &gogithub.IssueListByRepoOptions{
		State:       q.State,
		Labels:      q.Labels,
		ListOptions: gogithub.ListOptions{PerPage: perPage},
	}

	var out []tracker.Issue
	for {
		batch, err := listPage(c, "list issues", func() ([]*gogithub.Issue, *gogithub.Response, error) {
			return c.gh.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		})
		if err != nil {
			return nil, err
		}
		for _, issue := range batch.items {
			out = append(out, toIssue(issue))
		}
		if batch.next == 0 {
			return out, nil
		}
		opts.Page = batch.next
	}
}

func (c *Client) CreateIssue(ctx context.Context, req tracker.IssueRequest) (tracker.Issue, error) {
	created, err := call(c, "create issue", func() (*gogithub.Issue, *gogithub.Response, error) {
		return c.gh.Issues.Create(ctx, c.owner, c.repo, toRequest(req))
	})
	if err != nil {
		return tracker.Issue{}, err
	}
	return toIssue(created), nil
}

func (c *Client) UpdateIssue(ctx context.Context, number int, req tracker.IssueRequest) (tracker.Issue, error) {
	updated, err := call(c, "update issue", func() (*gogithub.Issue, *gogithub.Response, error) {
		return c.gh.Issues.Edit(ctx, c.owner, c.repo, number, toRequest(req))
	})
	if err != nil {
		return tracker.Issue{}, err
	}
	return toIssue(updated), nil
}

func (c *Client) ListComments(ctx context.Context, number int) ([]tracker.Comment, error) {
	opts := &gogithub.IssueListCommentsOptions{ListOptions: gogithub.ListOptions{PerPage: perPage}}

	var out []tracker.Comment
	for {
		batch, err := listPage(c, "list comments", func() ([]*gogithub.IssueComment, *gogithub.Response, error) {
			return c.gh.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
		})
		if err != nil {
			return nil, err
		}
		for _, comment := range batch.items {
			out = append(out, toComment(comment))
		}
		if batch.next == 0 {
			return out, nil
		}
		opts.Page = batch.next
	}
}

func (c *Client) CreateComment(ctx context.Context, number int, body string) (tracker.Comment, error) {
	created, err := call(c, "create comment", func() (*gogithub.IssueComment, *gogithub.Response, error) {
		return c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, &gogithub.IssueComment{Body: &body})
	})
	if err != nil {
		return tracker.Comment{}, err
	}
	return toComment(created), nil
}

func (c *Client) ListEvents(ctx context.Context, number int) ([]tracker.Event, error) {
	opts := &gogithub.ListOptions{PerPage: perPage}

	var out []tracker.Event
	for {
		batch, err := listPage(c, "list events", func() ([]*gogithub.IssueEvent, *gogithub.Response, error) {
			return c.gh.Issues.ListIssueEvents(ctx, c.owner, c.repo, number, opts)
		})
		if err != nil {
			return nil, err
		}
		for _, event := range batch.items {
			out = append(out, tracker.Event{
				Type:      event.GetEvent(),
				Actor:     event.GetActor().GetLogin(),
				Label:     event.GetLabel().GetName(),
				CreatedAt: event.GetCreatedAt().Time,
			})
		}
		if batch.next == 0 {
			return out, nil
		}
		opts.Page = batch.next
	}
}
