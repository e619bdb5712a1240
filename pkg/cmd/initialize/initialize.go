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
package initialize

import (
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/related/internal/state"
)

func NewCmdInit(s *state.State) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init [vault]",
		Aliases: []string{"i", "initialize"},
		Short:   "Point the active workspace at a vault",
		Long: heredoc.Doc(`
			Creates the config file when missing and stores the vault directory
			for the active workspace. Use --workspace to configure another one.
		`),
		Example: "related init ~/notes",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.Config.SetVault(args[0]); err != nil {
				return err
			}
			if err := s.UseWorkspace(s.Config.CurrentWorkspace); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Workspace %q now uses vault %s\n", s.WorkspaceName, s.Vault)
			return nil
		},
	}

	return cmd
}
