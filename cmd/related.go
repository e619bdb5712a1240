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
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/related/internal/config"
	"github.com/Paintersrp/related/internal/state"
	"github.com/Paintersrp/related/pkg/cmd/root"
)

func Execute() {
	s, err := state.NewState()
	if s == nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	// A missing vault only matters to commands that read the tree; those
	// report it themselves.
	var initErr *config.ConfigInitError
	if err != nil && !errors.As(err, &initErr) && !errors.Is(err, state.ErrNoVault) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	rootCmd, rootErr := root.NewCmdRoot(s)
	cobra.CheckErr(rootErr)

	execErr := rootCmd.Execute()
	if closeErr := s.Close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, "Error:", closeErr)
	}
	if execErr != nil {
		os.Exit(1)
	}
}
