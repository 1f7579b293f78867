package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(server.Client(), "octo/board", WithBaseURL(server.URL))
	require.NoError(t, err)
	return c
}

func TestListIssuesFollowsPages(t *testing.T) {
	var serverURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/board/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "closed", r.URL.Query().Get("state"))
		assert.Equal(t, "done", r.URL.Query().Get("labels"))

		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"number": 3, "title": "third", "state": "closed", "labels": [{"name": "done"}]}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/board/issues?page=2>; rel="next"`, serverURL))
		fmt.Fprint(w, `[
			{"number": 1, "title": "first", "state": "closed", "labels": [{"name": "done"}, {"name": "priority:high"}], "comments": 2},
			{"number": 2, "title": "a pr", "state": "closed", "pull_request": {"url": "x"}}
		]`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	serverURL = server.URL

	c, err := New(server.Client(), "octo/board", WithBaseURL(server.URL))
	require.NoError(t, err)

	issues, err := c.ListIssues(context.Background(), tracker.IssueQuery{State: tracker.StateClosed, Labels: []string{"done"}})
	require.NoError(t, err)
	require.Len(t, issues, 3)

	assert.Equal(t, 1, issues[0].Number)
	assert.Equal(t, []string{"done", "priority:high"}, issues[0].Labels)
	assert.Equal(t, 2, issues[0].Comments)
	assert.False(t, issues[0].IsPullRequest)
	assert.True(t, issues[1].IsPullRequest)
	assert.Equal(t, "third", issues[2].Title)
}

func TestCreateIssueSendsLabels(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/repos/octo/board/issues", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Buy milk", body["title"])
		assert.Equal(t, []interface{}{"todo", "priority:medium"}, body["labels"])

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number": 42, "title": "Buy milk", "state": "open",
			"html_url": "https://github.com/octo/board/issues/42",
			"labels": [{"name": "todo"}, {"name": "priority:medium"}],
			"created_at": "2024-03-01T10:00:00Z"}`)
	}))

	title := "Buy milk"
	labels := []string{"todo", "priority:medium"}
	issue, err := c.CreateIssue(context.Background(), tracker.IssueRequest{Title: &title, Labels: &labels})
	require.NoError(t, err)
	assert.Equal(t, 42, issue.Number)
	assert.Equal(t, "https://github.com/octo/board/issues/42", issue.HTMLURL)
	assert.Equal(t, 2024, issue.CreatedAt.Year())
}

func TestAuthFailureIsDistinguishable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "Bad credentials"}`)
	}))

	state := tracker.StateClosed
	_, err := c.UpdateIssue(context.Background(), 7, tracker.IssueRequest{State: &state})
	require.Error(t, err)
	assert.True(t, errors.Is(err, tracker.ErrAuthExpired))
	assert.Equal(t, http.StatusUnauthorized, tracker.StatusCode(err))

	var re *tracker.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "Bad credentials", re.Message)
}

func TestRateLimitIsNotAnAuthFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1709287200")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded for user ID 1."}`)
	}))

	_, err := c.ListIssues(context.Background(), tracker.IssueQuery{State: tracker.StateOpen})
	require.Error(t, err)
	assert.False(t, errors.Is(err, tracker.ErrAuthExpired))
	assert.Equal(t, http.StatusForbidden, tracker.StatusCode(err))

	var re *tracker.RemoteError
	require.True(t, errors.As(err, &re))
	assert.True(t, re.RateLimited)
	assert.False(t, re.AuthFailure())
	assert.Contains(t, re.Message, "API rate limit exceeded")
}

func TestForbiddenWithoutRateLimitIsAuthFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "4999")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "Resource not accessible by personal access token"}`)
	}))

	_, err := c.CreateComment(context.Background(), 1, "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tracker.ErrAuthExpired))
}

func TestValidationFailureIsRemoteRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message": "Validation Failed"}`)
	}))

	_, err := c.CreateComment(context.Background(), 1, "")
	require.Error(t, err)
	assert.False(t, errors.Is(err, tracker.ErrAuthExpired))
	assert.Equal(t, http.StatusUnprocessableEntity, tracker.StatusCode(err))
}

func TestListEvents(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/octo/board/issues/9/events", r.URL.Path)
		fmt.Fprint(w, `[
			{"event": "labeled", "actor": {"login": "sam"}, "label": {"name": "in-progress"}, "created_at": "2024-03-01T10:00:00Z"},
			{"event": "closed", "actor": {"login": "milo"}, "created_at": "2024-03-02T10:00:00Z"}
		]`)
	}))

	events, err := c.ListEvents(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, tracker.Event{Type: "labeled", Actor: "sam", Label: "in-progress", CreatedAt: events[0].CreatedAt}, events[0])
	assert.Equal(t, "closed", events[1].Type)
	assert.Equal(t, "", events[1].Label)
}

func TestNewRejectsBadRepository(t *testing.T) {
	for _, repo := range []string{"", "octo", "octo/", "/board", "a/b/c"} {
		_, err := New(http.DefaultClient, repo)
		assert.Error(t, err, repo)
	}
}

func TestNewClientWithoutToken(t *testing.T) {
	_, err := NewClient(context.Background(), "", "octo/board")
	assert.ErrorIs(t, err, tracker.ErrUnauthenticated)
}
