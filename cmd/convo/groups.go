package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thinkwright/convo/internal/config"
	"github.com/thinkwright/convo/internal/store"
)

const regroupHint = `run "convo import" to regroup the indexed conversations`

func newGroupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage title rules that assign conversations to groups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List group rules in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if len(cfg.Groups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no group rules")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GROUP\tPATTERN")
			for _, g := range cfg.Groups {
				fmt.Fprintf(tw, "%s\t%s\n", g.Name, g.Pattern)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME PATTERN",
		Short: "Add a rule: titles matching PATTERN (a glob) join group NAME",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, pattern := args[0], args[1]
			if _, err := store.NewGrouper([]config.GroupRule{{Name: name, Pattern: pattern}}); err != nil {
				return err
			}
			cfg := config.Load()
			if !cfg.AddGroup(name, pattern) {
				return fmt.Errorf("pattern already configured: %s", pattern)
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added group %s (%s); %s\n", name, pattern, regroupHint)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove NAME",
		Short: "Remove every rule of group NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if !cfg.RemoveGroup(args[0]) {
				return fmt.Errorf("group not found in config: %s", args[0])
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed group %s; %s\n", args[0], regroupHint)
			return nil
		},
	})

	return cmd
}
