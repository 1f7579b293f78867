package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskboard/pkg/auth"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/tracker"
)

func TestSplitArgs(t *testing.T) {
	cases := []struct {
		line string
		want []string
	}{
		{"board", []string{"board"}},
		{"add  Buy milk", []string{"add", "Buy", "milk"}},
		{`add "Buy milk" --due 2024-03-10`, []string{"add", "Buy milk", "--due", "2024-03-10"}},
		{`comment 4 'it''s done'`, []string{"comment", "4", "its done"}},
		{`add say\ \"hi\"`, []string{"add", `say "hi"`}},
		{`edit 3 --desc ""`, []string{"edit", "3", "--desc", ""}},
	}
	for _, tc := range cases {
		got, err := splitArgs(tc.line)
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}

	_, err := splitArgs(`add "unterminated`)
	assert.Error(t, err)
	_, err = splitArgs(`add trailing\`)
	assert.Error(t, err)
}

func TestPatchFromFlags(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().StringP("title", "t", "", "")
	taskFlags(cmd.Flags())

	require.NoError(t, cmd.Flags().Parse([]string{"--status", "in-progress", "--assignee", "none", "--due", ""}))
	p, err := patchFromFlags(cmd.Flags())
	require.NoError(t, err)

	assert.Nil(t, p.Title)
	assert.Nil(t, p.Priority)
	require.NotNil(t, p.Status)
	assert.Equal(t, model.StatusInProgress, *p.Status)
	require.NotNil(t, p.Assignee)
	assert.Equal(t, model.AssigneeNone, *p.Assignee)
	require.NotNil(t, p.DueDate)
	assert.Equal(t, "", *p.DueDate)

	bad := &cobra.Command{}
	taskFlags(bad.Flags())
	require.NoError(t, bad.Flags().Parse([]string{"--priority", "urgent"}))
	_, err = patchFromFlags(bad.Flags())
	assert.Error(t, err)
}

func TestWriteExport(t *testing.T) {
	doc := export{Tasks: []model.Task{{ID: "1", Title: "Buy milk", Status: model.StatusTodo, Priority: model.PriorityLow}}}

	var js bytes.Buffer
	require.NoError(t, writeExport(&js, "json", doc))
	assert.Contains(t, js.String(), `"title": "Buy milk"`)

	var y bytes.Buffer
	require.NoError(t, writeExport(&y, "yaml", doc))
	assert.Contains(t, y.String(), "title: Buy milk")
	assert.Contains(t, y.String(), "priority: low")

	assert.Error(t, writeExport(&y, "xml", doc))
}

func TestExplainAuthErrors(t *testing.T) {
	isolate(t)
	c := &cli{}
	assert.Contains(t, c.explain(tracker.ErrUnauthenticated), "taskboard auth token")

	require.NoError(t, auth.SaveToken("cached"))
	_, src, err := auth.ResolveToken()
	require.NoError(t, err)
	rejected := fmt.Errorf("update 4: %w", &tracker.RemoteError{Op: "update issue", StatusCode: 401, Message: "Bad credentials"})

	c.credential = src
	msg := c.explain(rejected)
	assert.Contains(t, msg, "Bad credentials")
	assert.Contains(t, msg, "has been removed")
	_, _, err = auth.ResolveToken()
	assert.ErrorIs(t, err, tracker.ErrUnauthenticated)
}

func TestExplainKeepsCacheForEnvToken(t *testing.T) {
	isolate(t)
	require.NoError(t, auth.SaveToken("cached"))
	t.Setenv("TASKBOARD_TOKEN", "stale")
	_, src, err := auth.ResolveToken()
	require.NoError(t, err)

	c := &cli{credential: src}
	msg := c.explain(&tracker.RemoteError{Op: "list issues", StatusCode: 401, Message: "Bad credentials"})
	assert.Contains(t, msg, "$TASKBOARD_TOKEN")
	assert.NotContains(t, msg, "has been removed")

	t.Setenv("TASKBOARD_TOKEN", "")
	tok, _, err := auth.ResolveToken()
	require.NoError(t, err)
	assert.Equal(t, "cached", tok)
}

func TestExplainRateLimitKeepsToken(t *testing.T) {
	isolate(t)
	require.NoError(t, auth.SaveToken("cached"))
	_, src, err := auth.ResolveToken()
	require.NoError(t, err)

	c := &cli{credential: src}
	msg := c.explain(&tracker.RemoteError{Op: "list issues", StatusCode: 403, Message: "API rate limit exceeded", RateLimited: true})
	assert.Contains(t, msg, "rate limit")
	assert.NotContains(t, msg, "has been removed")

	tok, _, err := auth.ResolveToken()
	require.NoError(t, err)
	assert.Equal(t, "cached", tok)
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("TASKBOARD_BACKEND", "offline")
	t.Setenv("TASKBOARD_OFFLINE_PATH", filepath.Join(dir, "board.json"))
	t.Setenv("TASKBOARD_LOG_FILE", filepath.Join(dir, "taskboard.log"))
	t.Setenv("TASKBOARD_CALENDAR", "")
	t.Setenv("TASKBOARD_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	c := &cli{}
	root := newRootCmd(c)
	var out, errOut bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	c.flush()
	return out.String(), errOut.String(), err
}

func TestOfflineCommands(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "", "add", "Buy", "milk", "--due", "2024-03-10", "-p", "high")
	require.NoError(t, err)
	assert.Contains(t, out, "Created task")

	out, _, err = run(t, "", "board")
	require.NoError(t, err)
	assert.Contains(t, out, "To Do (1)")
	assert.Contains(t, out, "Buy milk")

	out, _, err = run(t, "", "export", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "title: Buy milk")
	assert.Contains(t, out, "2024-03-10")

	_, errOut, err := run(t, "", "move", "nope", "done")
	require.NoError(t, err)
	assert.Contains(t, errOut, "no task nope")

	_, _, err = run(t, "", "tip", "list")
	assert.Error(t, err)

	_, _, err = run(t, "", "calendar", "sync")
	assert.ErrorContains(t, err, "not enabled")
}

func TestShellKeepsOneBoard(t *testing.T) {
	isolate(t)

	script := strings.Join([]string{
		`add "Write report" --status in-progress`,
		`add Ship`,
		`rm missing`,
		`add "unterminated`,
		`quit`,
	}, "\n")
	out, errOut, err := run(t, script, "shell")
	require.NoError(t, err)

	assert.Contains(t, out, "In Progress (1)")
	assert.Contains(t, out, "To Do (1)")
	assert.Contains(t, errOut, "no task missing")
	assert.Contains(t, errOut, "unterminated")
}
