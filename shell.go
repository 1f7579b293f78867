package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/view"
)

// mutating commands redraw the board after they ran.
var mutating = map[string]bool{
	"add": true, "edit": true, "move": true, "rm": true, "delete": true, "tip": true,
}

func shellCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands against one loaded board",
		Long: `Start an interactive session. The board is loaded once; every command
after that patches it in place instead of reloading it. Type 'help' for the
command list, 'refresh' to reload from the backend and 'quit' to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
			fmt.Fprintln(out, view.Render(a.board, 0))

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "taskboard> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				words, err := splitArgs(line)
				if err != nil {
					fmt.Fprintln(errOut, "Error:", err)
					continue
				}

				switch words[0] {
				case "quit", "exit":
					return nil
				case "shell":
					fmt.Fprintln(errOut, "Error: already in a shell")
					continue
				case "refresh":
					if err := a.tasks.RefreshAll(cmd.Context()); err != nil {
						fmt.Fprintln(errOut, "Error:", c.explain(err))
						continue
					}
					fmt.Fprintln(out, view.Render(a.board, 0))
					continue
				}

				sub := newRootCmd(c)
				sub.SetArgs(words)
				sub.SetIn(cmd.InOrStdin())
				sub.SetOut(out)
				sub.SetErr(errOut)
				if err := sub.ExecuteContext(cmd.Context()); err != nil {
					fmt.Fprintln(errOut, "Error:", c.explain(err))
					continue
				}
				if mutating[words[0]] {
					fmt.Fprintln(out, view.Render(a.board, 0))
				}
				c.flush()
			}
		},
	}
}

// splitArgs splits a shell line into words. Single and double quotes group
// words and a backslash escapes the next character.
func splitArgs(line string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, fmt.Errorf("trailing backslash")
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}
