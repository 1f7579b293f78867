package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/store"
)

func tipCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tip",
		Short: "Manage the idea backlog",
	}
	cmd.AddCommand(tipListCmd(c), tipAddCmd(c), tipEditCmd(c), tipConvertCmd(c), tipRmCmd(c))
	return cmd
}

// openTips opens the board and loads the tips.
func (c *cli) openTips(cmd *cobra.Command) (*app, *store.TipStore, error) {
	a, err := c.open(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	tips, err := a.tipStore()
	if err != nil {
		return nil, nil, err
	}
	if err := tips.Refresh(cmd.Context()); err != nil {
		return nil, nil, err
	}
	return a, tips, nil
}

func tipListCmd(c *cli) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tips, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tips, err := c.openTips(cmd)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPOINTS\tCOMMENTS\tSTATE")
			for _, t := range tips.List(all) {
				state := "active"
				if t.Archived {
					state = "archived"
				}
				points := "-"
				if t.Complexity > 0 {
					points = fmt.Sprint(t.Complexity)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", t.ID, t.Title, points, t.CommentCount, state)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include archived tips")
	return cmd
}

func tipFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("desc", "d", "", "description")
	cmd.Flags().IntP("complexity", "c", 0, "complexity in points")
	cmd.Flags().StringSliceP("ref", "r", nil, "reference URL, repeatable")
}

func tipAddCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a tip",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := tipPatchFromFlags(cmd)
			if err != nil {
				return err
			}
			_, tips, err := c.openTips(cmd)
			if err != nil {
				return err
			}
			tip, err := tips.Create(cmd.Context(), p.Apply(model.Tip{Title: strings.Join(args, " ")}))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tip %s\n", tip.ID)
			return nil
		},
	}
	tipFlags(cmd)
	return cmd
}

func tipEditCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a tip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := tipPatchFromFlags(cmd)
			if err != nil {
				return err
			}
			_, tips, err := c.openTips(cmd)
			if err != nil {
				return err
			}
			if _, err := tips.Update(cmd.Context(), args[0], p); err != nil {
				return warnMissing(cmd, args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated tip %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringP("title", "t", "", "title")
	tipFlags(cmd)
	return cmd
}

func tipPatchFromFlags(cmd *cobra.Command) (model.TipPatch, error) {
	var p model.TipPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		p.Title = &v
	}
	if flags.Changed("desc") {
		v, _ := flags.GetString("desc")
		p.Description = &v
	}
	if flags.Changed("complexity") {
		v, _ := flags.GetInt("complexity")
		if v < 0 {
			return p, fmt.Errorf("complexity must not be negative")
		}
		p.Complexity = &v
	}
	if flags.Changed("ref") {
		refs, _ := flags.GetStringSlice("ref")
		for _, r := range refs {
			if !strings.HasPrefix(r, "http://") && !strings.HasPrefix(r, "https://") {
				return p, fmt.Errorf("reference %q is not an http(s) URL", r)
			}
		}
		p.References = append([]string{}, refs...)
	}
	return p, nil
}

func tipConvertCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <id>",
		Short: "Turn a tip into a task and archive it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, tips, err := c.openTips(cmd)
			if err != nil {
				return err
			}
			task, err := tips.Convert(cmd.Context(), args[0], a.tasks)
			if err != nil {
				return warnMissing(cmd, args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Converted tip %s to task %s\n", args[0], task.ID)
			return nil
		},
	}
}

func tipRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a tip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, tips, err := c.openTips(cmd)
			if err != nil {
				return err
			}
			if err := tips.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted tip %s\n", args[0])
			return nil
		},
	}
}
