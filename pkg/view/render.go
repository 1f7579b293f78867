package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

var columnTitles = map[model.Status]string{
	model.StatusTodo:       "To Do",
	model.StatusInProgress: "In Progress",
	model.StatusDone:       "Done",
}

var priorityColors = map[model.Priority]lipgloss.Color{
	model.PriorityHigh:   lipgloss.Color("203"),
	model.PriorityMedium: lipgloss.Color("221"),
	model.PriorityLow:    lipgloss.Color("114"),
}

// Render draws the board as three columns side by side. width is the total
// terminal width; zero picks a default.
func Render(b *Board, width int) string {
	if width <= 0 {
		width = 120
	}
	colWidth := max(24, width/len(model.Statuses)-3)

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	colStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("239")).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	subStyle := lipgloss.NewStyle().Foreground(muted)
	doneStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Strikethrough(true)

	views := make([]string, 0, len(model.Statuses))
	for _, col := range model.Statuses {
		lines := []string{titleStyle.Render(fmt.Sprintf("%s (%d)", columnTitles[col], b.Count(col))), ""}

		cards := b.Column(col)
		if len(cards) == 0 {
			lines = append(lines, subStyle.Render("(empty)"))
		}
		for i, t := range cards {
			title := truncate(t.Title, colWidth-4)
			if col == model.StatusDone {
				title = doneStyle.Render(title)
			}
			lines = append(lines, title)
			lines = append(lines, subStyle.Render(truncate(cardMeta(t), colWidth-4)))
			if i < len(cards)-1 {
				lines = append(lines, "")
			}
		}
		views = append(views, colStyle.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// RenderTask draws the detail view of a single task.
func RenderTask(t model.Task) string {
	label := lipgloss.NewStyle().Bold(true).Width(10)
	rows := []string{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")).Render(t.Title),
		"",
		label.Render("id") + t.ID,
		label.Render("status") + columnTitles[t.Status],
		label.Render("priority") + lipgloss.NewStyle().Foreground(priorityColors[t.Priority]).Render(string(t.Priority)),
	}
	if t.Assignee != model.AssigneeNone {
		rows = append(rows, label.Render("assignee")+string(t.Assignee))
	}
	if t.DueDate != "" {
		rows = append(rows, label.Render("due")+t.DueDate)
	}
	if !t.CreatedAt.IsZero() {
		rows = append(rows, label.Render("created")+t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if t.URL != "" {
		rows = append(rows, label.Render("url")+t.URL)
	}
	if t.Description != "" {
		rows = append(rows, "", t.Description)
	}
	return strings.Join(rows, "\n")
}

func cardMeta(t model.Task) string {
	parts := []string{"#" + shortID(t.ID)}
	parts = append(parts, string(t.Priority))
	if t.Assignee != model.AssigneeNone {
		parts = append(parts, "@"+string(t.Assignee))
	}
	if t.DueDate != "" {
		parts = append(parts, "due "+t.DueDate)
	}
	return strings.Join(parts, " · ")
}

// shortID keeps offline uuids readable.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
