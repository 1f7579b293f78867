package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/auth"
	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/google"
)

func authCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage credentials",
	}

	token := &cobra.Command{
		Use:   "token <token>",
		Short: "Cache a GitHub token for the board repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.SaveToken(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token saved")
			return nil
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the cached GitHub and Google tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.Clear(); err != nil {
				return err
			}
			if err := auth.ForgetGoogleToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cached tokens removed")
			return nil
		},
	}

	googleAuth := &cobra.Command{
		Use:   "google",
		Short: "Authorize the due-date calendar mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.ForgetGoogleToken(); err != nil {
				return err
			}
			if _, err := auth.GoogleClient(cmd.Context(), google.Scopes); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Google authorization saved")
			return nil
		},
	}

	cmd.AddCommand(token, logout, googleAuth)
	return cmd
}

func configCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(c.cfg)
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting in the config file",
		Long: `Change a setting in the config file. Keys: backend, repository, apiUrl,
calendar, offlinePath, logFile, logLevel, sweepSchedule.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Environment overrides must not leak into the file.
			cfg, err := config.LoadFile()
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("error saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(show, set)
	return cmd
}
