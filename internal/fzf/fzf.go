package fzf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/Paintersrp/related/internal/content"
	"github.com/Paintersrp/related/internal/related"
)

// ErrNoSelection is returned when the finder is closed without a pick.
var ErrNoSelection = errors.New("no note selected")

var find = fuzzyfinder.Find

// FuzzyFinder picks an active note from the pages of a content tree.
type FuzzyFinder struct {
	Header string
	// Field is the keyword field shown next to each title.
	Field string
	// All includes hidden pages in the candidates.
	All   bool
	pages []*content.Page
}

func NewFuzzyFinder(tree *content.Tree, field, header string) *FuzzyFinder {
	f := &FuzzyFinder{Header: header, Field: field}
	if tree != nil {
		f.pages = tree.Pages()
	}
	return f
}

// Run opens the finder and returns the uid of the chosen page.
func (f *FuzzyFinder) Run(query string) (string, error) {
	candidates := f.candidates()
	if len(candidates) == 0 {
		return "", fmt.Errorf("no notes to choose from")
	}

	options := []fuzzyfinder.Option{
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i < 0 || i >= len(candidates) {
				return ""
			}
			return f.preview(candidates[i])
		}),
	}
	if query != "" {
		options = append(options, fuzzyfinder.WithQuery(query))
	}
	if f.Header != "" {
		options = append(options, fuzzyfinder.WithHeader(f.Header))
	}

	idx, err := find(candidates, func(i int) string {
		return f.Label(candidates[i])
	}, options...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", ErrNoSelection
		}
		return "", fmt.Errorf("select note: %w", err)
	}
	if idx < 0 || idx >= len(candidates) {
		return "", ErrNoSelection
	}
	return candidates[idx].UID(), nil
}

func (f *FuzzyFinder) candidates() []*content.Page {
	out := make([]*content.Page, 0, len(f.pages))
	for _, p := range f.pages {
		if f.All || p.IsVisible() {
			out = append(out, p)
		}
	}
	return out
}

// Label formats a page as "title (uid) [field: keywords]".
func (f *FuzzyFinder) Label(p *content.Page) string {
	title := p.Title()
	if title == "" {
		title = p.UID()
	}

	var b strings.Builder
	b.WriteString(title)
	if title != p.UID() {
		fmt.Fprintf(&b, " (%s)", p.UID())
	}

	field := f.field()
	if keywords := strings.TrimSpace(p.Field(field)); keywords != "" {
		fmt.Fprintf(&b, " [%s: %s]", field, keywords)
	} else {
		fmt.Fprintf(&b, " [No %s]", strings.ToLower(field))
	}
	return b.String()
}

func (f *FuzzyFinder) preview(p *content.Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\nuid:  %s\npath: %s\n", p.Title(), p.UID(), p.Rel())
	if v := p.Field(f.field()); v != "" {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToLower(f.field()), v)
	}
	return b.String()
}

func (f *FuzzyFinder) field() string {
	if strings.TrimSpace(f.Field) == "" {
		return related.DefaultField
	}
	return f.Field
}
