package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/related/internal/config"
	"github.com/Paintersrp/related/internal/related"
	"github.com/Paintersrp/related/internal/state"
)

func NewCmdQuery(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Manage named queries",
		Long: heredoc.Doc(`
			Named queries store selector options under a name so they can be
			reused with "related pages --query <name>".
		`),
	}

	cmd.AddCommand(
		newCmdQueryList(s),
		newCmdQueryAdd(s),
		newCmdQueryRemove(s),
	)

	return cmd
}

func newCmdQueryList(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List named queries of the active workspace",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := s.Config.ActiveWorkspace()
			if err != nil {
				return err
			}

			names := ws.QueryNames()
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No queries configured")
				return nil
			}

			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, formatBag(ws.Queries[name]))
			}
			return nil
		},
	}
}

func newCmdQueryAdd(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "add [name] [key=value...]",
		Short: "Store a named query",
		Example: heredoc.Doc(`
			related query add docs start=/docs depth=1
			related query add all-go items=go visibleonly=false
		`),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bag, err := parseBag(args[1:])
			if err != nil {
				return err
			}

			if err := s.Config.AddQuery(args[0], bag); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved query %q\n", strings.TrimSpace(args[0]))
			return nil
		},
	}
}

func newCmdQueryRemove(s *state.State) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [name]",
		Short: "Delete a named query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.Config.RemoveQuery(args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed query %q\n", args[0])
			return nil
		},
	}
}

func parseBag(pairs []string) (config.QueryBag, error) {
	bag := make(config.QueryBag, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid option %q: expected key=value", pair)
		}
		if !related.IsOptionKey(key) {
			return nil, fmt.Errorf("unknown query option %q", key)
		}
		bag[strings.ToLower(key)] = strings.TrimSpace(value)
	}
	return bag, nil
}

func formatBag(bag config.QueryBag) string {
	keys := lo.Keys(bag)
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, bag[key]))
	}
	return strings.Join(parts, " ")
}
