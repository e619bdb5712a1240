/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package tags

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/related/internal/related"
	"github.com/Paintersrp/related/internal/state"
	"github.com/Paintersrp/related/internal/views"
)

func NewCmdTags(s *state.State) *cobra.Command {
	var (
		field  string
		order  string
		all    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Count keyword usage across the vault",
		Long: heredoc.Doc(`
			Counts how many pages list each keyword in the given field. The
			field defaults to the one configured for the workspace.
		`),
		Example: heredoc.Doc(`
			related tags
			related tags --field keywords --order asc
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order = strings.ToLower(strings.TrimSpace(order))
			if order != "desc" && order != "asc" {
				return fmt.Errorf("invalid order %q: expected desc or asc", order)
			}

			if !cmd.Flags().Changed("field") {
				field = defaultField(s)
			}

			tree, err := s.Snapshot()
			if err != nil {
				return err
			}

			counts := tree.KeywordCounts(field, !all)
			if order == "asc" {
				slices.Reverse(counts)
			}

			if asJSON {
				return views.WriteJSON(cmd.OutOrStdout(), counts)
			}
			views.NewPrinter(cmd.OutOrStdout()).Tags(field, counts)
			return nil
		},
	}

	cmd.Flags().StringVarP(&field, "field", "f", related.DefaultField, "Keyword field to count")
	cmd.Flags().StringVarP(&order, "order", "o", "desc", "Sort order by count: desc or asc")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include hidden pages")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print counts as JSON")

	return cmd
}

func defaultField(s *state.State) string {
	if s.Workspace == nil {
		return related.DefaultField
	}
	opts, err := s.Workspace.RelatedOptions("")
	if err != nil {
		return related.DefaultField
	}
	return related.NewOptions(opts...).Field
}
