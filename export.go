package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

type export struct {
	Tasks []model.Task `json:"tasks" yaml:"tasks"`
	Tips  []model.Tip  `json:"tips,omitempty" yaml:"tips,omitempty"`
}

func exportCmd(c *cli) *cobra.Command {
	var format string
	var withTips bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the board as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			doc := export{Tasks: a.tasks.List()}
			if withTips {
				tips, err := a.tipStore()
				if err != nil {
					return err
				}
				if err := tips.Refresh(cmd.Context()); err != nil {
					return err
				}
				doc.Tips = tips.List(true)
			}
			return writeExport(cmd.OutOrStdout(), format, doc)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "json or yaml")
	cmd.Flags().BoolVar(&withTips, "tips", false, "include tips")
	return cmd
}

func writeExport(w io.Writer, format string, doc export) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want json or yaml)", format)
}
