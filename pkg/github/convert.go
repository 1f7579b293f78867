package github

import (
	gogithub "github.com/google/go-github/v66/github"

	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

func toIssue(issue *gogithub.Issue) tracker.Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, l.GetName())
	}
	return tracker.Issue{
		Number:        issue.GetNumber(),
		Title:         issue.GetTitle(),
		Body:          issue.GetBody(),
		Labels:        labels,
		State:         issue.GetState(),
		CreatedAt:     issue.GetCreatedAt().Time,
		UpdatedAt:     issue.GetUpdatedAt().Time,
		HTMLURL:       issue.GetHTMLURL(),
		IsPullRequest: issue.IsPullRequest(),
		Comments:      issue.GetComments(),
	}
}

func toRequest(req tracker.IssueRequest) *gogithub.IssueRequest {
	return &gogithub.IssueRequest{
		Title:  req.Title,
		Body:   req.Body,
		Labels: req.Labels,
		State:  req.State,
	}
}

func toComment(comment *gogithub.IssueComment) tracker.Comment {
	return tracker.Comment{
		Author:    comment.GetUser().GetLogin(),
		Body:      comment.GetBody(),
		CreatedAt: comment.GetCreatedAt().Time,
	}
}
