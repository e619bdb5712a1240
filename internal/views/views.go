package views

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Paintersrp/related/internal/content"
	"github.com/Paintersrp/related/internal/related"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true)
	uidStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0AF"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
	hiddenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AA5500")).
			Italic(true)
	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0AF")).
			Bold(true)
)

// PageRecord is the serialised form of a selected page.
type PageRecord struct {
	UID      string   `json:"uid"`
	Title    string   `json:"title"`
	Depth    int      `json:"depth"`
	Path     string   `json:"path"`
	Keywords []string `json:"keywords"`
}

// Records converts a selection result into page records, reading keywords
// from field.
func Records(tree *content.Tree, res *related.Result, field string) []PageRecord {
	pages := res.Pages()
	out := make([]PageRecord, 0, len(pages))
	for _, p := range pages {
		rec := PageRecord{
			UID:      p.UID(),
			Depth:    p.Depth(),
			Keywords: tree.SplitKeywords(p.Field(field)),
		}
		if rec.Keywords == nil {
			rec.Keywords = []string{}
		}
		if cp, ok := tree.Page(p.UID()); ok {
			rec.Title = cp.Title()
			rec.Path = cp.Rel()
		}
		out = append(out, rec)
	}
	return out
}

// Printer writes human readable output, styled only when the destination is
// a terminal.
type Printer struct {
	w      io.Writer
	styled bool
}

func NewPrinter(w io.Writer) *Printer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return &Printer{w: w, styled: styled}
}

func (p *Printer) Styled() bool { return p.styled }

func (p *Printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

// Pages prints one line per related page.
func (p *Printer) Pages(active string, records []PageRecord) {
	if len(records) == 0 {
		fmt.Fprintf(p.w, "No pages related to %s\n", active)
		return
	}

	fmt.Fprintf(p.w, "%s %s\n", p.render(titleStyle, "Related to"), p.render(uidStyle, active))
	for _, rec := range records {
		line := fmt.Sprintf("  %s", p.render(uidStyle, rec.UID))
		if rec.Title != "" {
			line += "  " + rec.Title
		}
		if len(rec.Keywords) > 0 {
			line += "  " + p.render(mutedStyle, "["+strings.Join(rec.Keywords, ", ")+"]")
		}
		fmt.Fprintln(p.w, line)
	}
}

// Tree prints the page index with one indented line per page.
func (p *Printer) Tree(pages []*content.Page) {
	if len(pages) == 0 {
		fmt.Fprintln(p.w, "No pages found")
		return
	}

	for _, page := range pages {
		indent := strings.Repeat("  ", max(page.Depth()-1, 0))
		line := indent + p.render(uidStyle, page.UID())
		if !page.IsVisible() {
			line += " " + p.render(hiddenStyle, "(hidden)")
		}
		fmt.Fprintln(p.w, line)
	}
}

// Tags prints keyword counts in the given order.
func (p *Printer) Tags(field string, counts []content.KeywordCount) {
	if len(counts) == 0 {
		fmt.Fprintf(p.w, "No values found for %s\n", field)
		return
	}

	width := 0
	for _, c := range counts {
		width = max(width, len(c.Keyword))
	}
	for _, c := range counts {
		fmt.Fprintf(p.w, "%-*s  %s\n", width, c.Keyword, p.render(countStyle, fmt.Sprint(c.Count)))
	}
}

// Options prints the resolved selector options.
func (p *Printer) Options(o related.Options) {
	fmt.Fprintln(p.w, p.render(mutedStyle, related.FormatOptions(o)))
}

// Status prints a single muted status line.
func (p *Printer) Status(line string) {
	if line == "" {
		return
	}
	fmt.Fprintln(p.w, p.render(mutedStyle, line))
}

// WriteJSON encodes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
