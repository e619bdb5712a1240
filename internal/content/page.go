package content

import (
	"strings"
	"time"
)

// Page is a single note of the vault.
type Page struct {
	uid     string
	path    string
	rel     string
	depth   int
	title   string
	fields  map[string]string
	hidden  bool
	visible bool
	active  bool
	modTime time.Time
}

func (p *Page) UID() string { return p.uid }

// Depth is the number of segments in the page uid; top-level notes have
// depth 1.
func (p *Page) Depth() int { return p.depth }

func (p *Page) IsActive() bool { return p.active }

// IsVisible reports whether the page and all of its ancestors are visible.
func (p *Page) IsVisible() bool { return p.visible }

// Field returns the raw value of a front matter field. Names are matched
// case-insensitively; missing fields yield "".
func (p *Page) Field(name string) string {
	if p.fields == nil {
		return ""
	}
	return p.fields[strings.ToLower(strings.TrimSpace(name))]
}

// Fields returns a copy of all front matter fields.
func (p *Page) Fields() map[string]string {
	out := make(map[string]string, len(p.fields))
	for k, v := range p.fields {
		out[k] = v
	}
	return out
}

func (p *Page) Title() string { return p.title }

// Path is the absolute location of the note on disk.
func (p *Page) Path() string { return p.path }

// Rel is the vault-relative path of the note using forward slashes.
func (p *Page) Rel() string { return p.rel }

func (p *Page) ModTime() time.Time { return p.modTime }

func (p *Page) clone() *Page {
	c := *p
	return &c
}
