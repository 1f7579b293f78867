package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/store"
	"github.com/harrisonrobin/taskboard/pkg/view"
)

func boardCmd(c *cli) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.Render(a.board, width))
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 0, "terminal width")
	return cmd
}

// taskFlags registers the editable task fields on a command.
func taskFlags(flags *pflag.FlagSet) {
	flags.StringP("desc", "d", "", "description")
	flags.StringP("assignee", "a", "", "assignee: sam, milo or none")
	flags.String("due", "", "due date YYYY-MM-DD, empty to clear")
	flags.StringP("priority", "p", "", "priority: low, medium or high")
	flags.StringP("status", "s", "", "status: todo, in-progress or done")
}

func draftFromFlags(title string, flags *pflag.FlagSet) (model.Draft, error) {
	d := model.Draft{Title: title}
	p, err := patchFromFlags(flags)
	if err != nil {
		return d, err
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Assignee != nil {
		d.Assignee = *p.Assignee
	}
	if p.DueDate != nil {
		d.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		d.Priority = *p.Priority
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	return d, nil
}

// patchFromFlags builds a patch from the flags the user actually passed.
func patchFromFlags(flags *pflag.FlagSet) (model.Patch, error) {
	var p model.Patch
	value := func(name string) (string, bool) {
		if f := flags.Lookup(name); f != nil && flags.Changed(name) {
			return f.Value.String(), true
		}
		return "", false
	}

	if v, ok := value("title"); ok {
		p.Title = &v
	}
	if v, ok := value("desc"); ok {
		p.Description = &v
	}
	if v, ok := value("assignee"); ok {
		a, err := model.ParseAssignee(v)
		if err != nil {
			return p, err
		}
		p.Assignee = &a
	}
	if v, ok := value("due"); ok {
		due, err := model.ParseDueDate(v)
		if err != nil {
			return p, err
		}
		p.DueDate = &due
	}
	if v, ok := value("priority"); ok {
		pr, err := model.ParsePriority(v)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	if v, ok := value("status"); ok {
		st, err := model.ParseStatus(v)
		if err != nil {
			return p, err
		}
		p.Status = &st
	}
	return p, nil
}

func addCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := draftFromFlags(strings.Join(args, " "), cmd.Flags())
			if err != nil {
				return err
			}
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			task, err := a.tasks.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s in %s\n", task.ID, task.Status)
			return nil
		},
	}
	taskFlags(cmd.Flags())
	return cmd
}

func editCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := patchFromFlags(cmd.Flags())
			if err != nil {
				return err
			}
			if p.Empty() {
				return fmt.Errorf("nothing to change: pass at least one field flag")
			}
			return c.update(cmd, args[0], p)
		},
	}
	cmd.Flags().StringP("title", "t", "", "title")
	taskFlags(cmd.Flags())
	return cmd
}

func moveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <status>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := model.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return c.update(cmd, args[0], model.Patch{Status: &status})
		},
	}
}

func (c *cli) update(cmd *cobra.Command, id string, p model.Patch) error {
	a, err := c.open(cmd.Context())
	if err != nil {
		return err
	}
	task, changed, err := a.tasks.Update(cmd.Context(), id, p)
	if err != nil {
		return warnMissing(cmd, id, err)
	}
	if changed {
		fmt.Fprintf(cmd.OutOrStdout(), "Moved task %s to %s\n", task.ID, task.Status)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", task.ID)
	}
	return nil
}

func rmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if _, ok := a.tasks.Get(args[0]); !ok {
				return warnMissing(cmd, args[0], store.ErrNotFound)
			}
			if err := a.tasks.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}
}

func showCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its comments and activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			task, ok := a.tasks.Get(args[0])
			if !ok {
				return warnMissing(cmd, args[0], store.ErrNotFound)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, view.RenderTask(task))

			comments, err := a.tasks.Comments(cmd.Context(), task.ID)
			if err != nil {
				if errors.Is(err, store.ErrUnsupported) {
					return nil
				}
				return err
			}
			if len(comments) > 0 {
				fmt.Fprintln(out, "\nComments:")
				for _, cm := range comments {
					fmt.Fprintf(out, "  %s  %s: %s\n", cm.CreatedAt.Local().Format("2006-01-02 15:04"), cm.Author, cm.Body)
				}
			}

			events, err := a.tasks.Activity(cmd.Context(), task.ID)
			if err != nil {
				return err
			}
			if len(events) > 0 {
				fmt.Fprintln(out, "\nActivity:")
				for _, ev := range events {
					line := fmt.Sprintf("  %s  %s %s", ev.CreatedAt.Local().Format("2006-01-02 15:04"), ev.Actor, ev.Type)
					if ev.Label != "" {
						line += " " + ev.Label
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}
}

func commentCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <id> <text>",
		Short: "Comment on a task",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := a.tasks.AddComment(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
				return warnMissing(cmd, args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Commented on task %s\n", args[0])
			return nil
		},
	}
}
