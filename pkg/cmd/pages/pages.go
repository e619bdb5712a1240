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
package pages

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Paintersrp/related/internal/fzf"
	"github.com/Paintersrp/related/internal/related"
	"github.com/Paintersrp/related/internal/state"
	"github.com/Paintersrp/related/internal/views"
)

type options struct {
	all         bool
	start       string
	depth       int
	field       string
	items       []string
	query       string
	json        bool
	showOptions bool
	watch       bool
}

func NewCmdPages(s *state.State) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:     "pages [active note]",
		Aliases: []string{"p", "related"},
		Short:   "List pages sharing keywords with the active note",
		Long: heredoc.Doc(`
			Selects every page whose keyword field shares at least one value with
			the active note. The active note may be given as a uid, a
			vault-relative path or an absolute path. Without one, a fuzzy finder
			over the vault's notes picks it when running in a terminal.

			Defaults come from the "related" section of the workspace config,
			then from a named query when --query is set, then from flags.
		`),
		Example: heredoc.Doc(`
			related pages docs/intro
			related pages
			related pages docs/intro --start /docs --depth 1
			related pages notes/go.md --items go,cli --all --json
		`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(cmd, s, o)
			if err != nil {
				return err
			}

			active, err := activeNote(s, args, opts, o)
			if err != nil {
				return err
			}

			if o.watch {
				return watch(cmd, s, active, opts, o)
			}
			return run(cmd, s, active, opts, o)
		},
	}

	cmd.Flags().BoolVarP(&o.all, "all", "a", false, "Include hidden pages")
	cmd.Flags().StringVar(&o.start, "start", "", "Only consider pages whose uid contains this path")
	cmd.Flags().IntVarP(&o.depth, "depth", "d", 0, "Maximum levels below --start (0 means unlimited)")
	cmd.Flags().StringVarP(&o.field, "field", "f", "", "Keyword field to compare (default Tags)")
	cmd.Flags().StringSliceVarP(&o.items, "items", "i", nil, "Keywords to search for instead of the active note's")
	cmd.Flags().StringVarP(&o.query, "query", "q", "", "Named query from the workspace config")
	cmd.Flags().BoolVar(&o.json, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&o.showOptions, "options", false, "Print the resolved options before the results")
	cmd.Flags().BoolVarP(&o.watch, "watch", "w", false, "Re-run whenever the vault changes")

	return cmd
}

// resolveOptions layers workspace defaults, the named query and any flags
// that were set explicitly.
func resolveOptions(cmd *cobra.Command, s *state.State, o *options) (related.Options, error) {
	var opts []related.Option
	if s.Workspace != nil {
		base, err := s.Workspace.RelatedOptions(o.query)
		if err != nil {
			return related.Options{}, err
		}
		opts = append(opts, base...)
	} else if o.query != "" {
		return related.Options{}, fmt.Errorf("query %q does not exist", o.query)
	}

	flags := cmd.Flags()
	if flags.Changed("all") {
		opts = append(opts, related.WithVisibleOnly(!o.all))
	}
	if flags.Changed("start") {
		opts = append(opts, related.WithStartPath(o.start))
	}
	if flags.Changed("depth") {
		if o.depth < 0 {
			return related.Options{}, fmt.Errorf("depth cannot be negative: %d", o.depth)
		}
		opts = append(opts, related.WithDepth(o.depth))
	}
	if flags.Changed("field") {
		opts = append(opts, related.WithField(o.field))
	}
	if flags.Changed("items") {
		opts = append(opts, related.WithItems(trimItems(o.items)...))
	}
	opts = append(opts, related.WithLogger(s.Logger))

	return related.NewOptions(opts...), nil
}

var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var pickNote = func(finder *fzf.FuzzyFinder) (string, error) {
	return finder.Run("")
}

// activeNote returns the note given on the command line, or lets the user
// pick one when stdin is a terminal.
func activeNote(s *state.State, args []string, opts related.Options, o *options) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if !stdinIsTerminal() {
		return "", errors.New("an active note is required when stdin is not a terminal")
	}

	tree, err := s.Snapshot()
	if err != nil {
		return "", err
	}
	finder := fzf.NewFuzzyFinder(tree, opts.Field, "Select the active note")
	finder.All = o.all
	return pickNote(finder)
}

func trimItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func run(cmd *cobra.Command, s *state.State, active string, opts related.Options, o *options) error {
	tree, err := s.Snapshot()
	if err != nil {
		return err
	}

	view, err := tree.WithActive(active)
	if err != nil {
		return err
	}

	res := related.Select(view, related.WithOptions(opts))
	records := views.Records(view, res, opts.Field)

	out := cmd.OutOrStdout()
	if o.json {
		return views.WriteJSON(out, records)
	}

	p := views.NewPrinter(out)
	if o.showOptions {
		p.Options(res.Options())
	}
	uid, _ := tree.Resolve(active)
	p.Pages(uid, records)
	return nil
}

func watch(cmd *cobra.Command, s *state.State, active string, opts related.Options, o *options) error {
	if s.Tree == nil {
		return state.ErrNoVault
	}

	w, err := state.NewVaultWatcher(s.Vault)
	if err != nil {
		return err
	}
	defer w.Close()

	changed := make(chan struct{}, 1)
	w.OnChange(func(rel string) {
		s.Tree.QueueUpdate(rel)
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	w.OnError(func(err error) {
		s.HandleWatchError(err)
		if errors.Is(err, fsnotify.ErrEventOverflow) {
			select {
			case changed <- struct{}{}:
			default:
			}
		}
	})

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
	defer stop()

	go func() {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			s.Logger.Warn("vault watcher stopped", zap.Error(err))
		}
	}()

	p := views.NewPrinter(cmd.OutOrStdout())
	for {
		if err := run(cmd, s, active, opts, o); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		p.Status(s.TreeStatus())

		select {
		case <-ctx.Done():
			return nil
		case <-changed:
		}
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
