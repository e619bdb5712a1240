package root

import (
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Paintersrp/related/internal/constants"
	"github.com/Paintersrp/related/internal/logging"
	"github.com/Paintersrp/related/internal/state"
	"github.com/Paintersrp/related/pkg/cmd/initialize"
	"github.com/Paintersrp/related/pkg/cmd/pages"
	"github.com/Paintersrp/related/pkg/cmd/query"
	"github.com/Paintersrp/related/pkg/cmd/tags"
	"github.com/Paintersrp/related/pkg/cmd/tree"
	"github.com/Paintersrp/related/pkg/cmd/workspace"
)

func NewCmdRoot(s *state.State) (*cobra.Command, error) {
	var workspaceName string

	cmd := &cobra.Command{
		Use:     "related",
		Short:   "Find notes that share keywords with the one you are reading.",
		Version: constants.Version,
		Long: heredoc.Doc(`
			related reads a markdown vault as a tree of pages and lists the pages
			whose keyword field (Tags by default) overlaps with an active note.

			  related init ~/notes
			  related pages docs/intro --depth 1
		`),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if name := strings.TrimSpace(workspaceName); name != "" {
				if err := s.UseWorkspace(name); err != nil {
					return err
				}
			}

			logger, err := logging.New(viper.GetString("log_level"))
			if err != nil {
				return err
			}
			s.SetLogger(logger)
			s.Logger.Debug("workspace ready",
				zap.String("workspace", s.WorkspaceName),
				zap.String("vault", s.Vault))
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = s.Logger.Sync()
		},
	}

	cmd.PersistentFlags().
		StringVarP(&workspaceName, "workspace", "W", "", "Workspace to use for this command")
	cmd.PersistentFlags().
		String("log-level", "", "Log level: error, warn, info or debug")
	viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.AddCommand(
		initialize.NewCmdInit(s),
		pages.NewCmdPages(s),
		tags.NewCmdTags(s),
		tree.NewCmdTree(s),
		workspace.NewCmdWorkspace(s),
		query.NewCmdQuery(s),
	)

	return cmd, nil
}
