package tree

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/related/internal/content"
	"github.com/Paintersrp/related/internal/state"
	"github.com/Paintersrp/related/internal/views"
)

type pageRecord struct {
	UID     string `json:"uid"`
	Depth   int    `json:"depth"`
	Visible bool   `json:"visible"`
	Path    string `json:"path"`
}

func NewCmdTree(s *state.State) *cobra.Command {
	var (
		all    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the page index of the vault",
		Long: heredoc.Doc(`
			Prints every page in the order used for selection: depth first,
			with a directory's index note ahead of its children.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tree, err := s.Snapshot()
			if err != nil {
				return err
			}

			pages := make([]*content.Page, 0, tree.Len())
			for _, p := range tree.Pages() {
				if all || p.IsVisible() {
					pages = append(pages, p)
				}
			}

			if asJSON {
				records := make([]pageRecord, 0, len(pages))
				for _, p := range pages {
					records = append(records, pageRecord{
						UID:     p.UID(),
						Depth:   p.Depth(),
						Visible: p.IsVisible(),
						Path:    p.Rel(),
					})
				}
				return views.WriteJSON(cmd.OutOrStdout(), records)
			}

			views.NewPrinter(cmd.OutOrStdout()).Tree(pages)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include hidden pages")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print pages as JSON")

	return cmd
}
