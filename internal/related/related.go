// Package related selects the pages of a content tree that share keywords
// with the active page.
package related

import (
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Page is the view of a content page the selector needs. Field lookups are
// expected to be case-insensitive on the name.
type Page interface {
	UID() string
	Depth() int
	IsActive() bool
	IsVisible() bool
	Field(name string) string
}

// Provider exposes a materialized page index. The index must not change
// while a selection is running.
type Provider interface {
	// Index returns every page, or only visible pages, in canonical order.
	Index(visibleOnly bool) []Page
	// ActivePage returns the current page or nil.
	ActivePage() Page
	// SplitKeywords tokenizes a raw field value.
	SplitKeywords(raw string) []string
}

// Select scans the provider's index once and collects the pages related to
// the active page.
func Select(p Provider, opts ...Option) *Result {
	o := NewOptions(opts...)
	res := &Result{
		byUID: make(map[string]Page),
	}

	if p == nil {
		res.opts = o
		return res
	}

	if len(o.Items) == 0 {
		if active := p.ActivePage(); active != nil {
			o.Items = p.SplitKeywords(active.Field(o.Field))
		}
	}
	res.opts = o

	items := make(map[string]struct{}, len(o.Items))
	for _, item := range o.Items {
		items[item] = struct{}{}
	}

	var (
		startPath = strings.ToLower(o.StartPath)
		maxDepth  = strings.Count(o.StartPath, "/") + o.Depth
	)

	for _, page := range p.Index(o.VisibleOnly) {
		if page == nil || page.IsActive() {
			continue
		}

		if startPath != "" && !strings.Contains(strings.ToLower("/"+page.UID()), startPath) {
			continue
		}

		if o.Depth != 0 && page.Depth() > maxDepth {
			continue
		}

		if !intersects(p.SplitKeywords(page.Field(o.Field)), items) {
			continue
		}

		res.add(page)
	}

	if o.logger != nil {
		o.logger.Debug("related pages selected",
			zap.Bool("visible_only", o.VisibleOnly),
			zap.String("start_path", o.StartPath),
			zap.Int("depth", o.Depth),
			zap.String("field", o.Field),
			zap.Strings("items", o.Items),
			zap.Int("matches", res.Count()),
		)
	}

	return res
}

func intersects(keywords []string, items map[string]struct{}) bool {
	if len(items) == 0 {
		return false
	}
	for _, kw := range keywords {
		if _, ok := items[kw]; ok {
			return true
		}
	}
	return false
}

// Result holds the pages found by a selection pass in index order.
type Result struct {
	opts  Options
	pages []Page
	byUID map[string]Page
}

func (r *Result) add(p Page) {
	uid := p.UID()
	if _, exists := r.byUID[uid]; exists {
		return
	}
	r.byUID[uid] = p
	r.pages = append(r.pages, p)
}

// Pages returns the matched pages in the order they were encountered.
func (r *Result) Pages() []Page {
	if r == nil {
		return nil
	}
	return append([]Page(nil), r.pages...)
}

// Lookup returns the matched page with the given uid.
func (r *Result) Lookup(uid string) (Page, bool) {
	if r == nil {
		return nil, false
	}
	p, ok := r.byUID[uid]
	return p, ok
}

// Count reports how many pages matched.
func (r *Result) Count() int {
	if r == nil {
		return 0
	}
	return len(r.pages)
}

// Options returns the resolved options, including derived items.
func (r *Result) Options() Options {
	if r == nil {
		return DefaultOptions()
	}
	o := r.opts
	o.Items = append([]string(nil), r.opts.Items...)
	o.logger = nil
	return o
}

// UIDs returns the matched uids in result order, or nil when nothing matched.
func (r *Result) UIDs() []string {
	if r == nil || len(r.pages) == 0 {
		return nil
	}
	return lo.Map(r.pages, func(p Page, _ int) string {
		return p.UID()
	})
}

// String renders the matched uids as a readable list.
func (r *Result) String() string {
	return formatList(r.UIDs())
}
