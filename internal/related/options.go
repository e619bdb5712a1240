package related

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const (
	DefaultVisibleOnly = true
	DefaultField       = "Tags"
)

// Options configures a single selection pass. The zero value is not the
// default configuration; use DefaultOptions or NewOptions.
type Options struct {
	VisibleOnly bool     `json:"visible_only" yaml:"visibleonly"`
	StartPath   string   `json:"start_path"   yaml:"startpath"`
	Depth       int      `json:"depth"        yaml:"depth"`
	Field       string   `json:"field"        yaml:"field"`
	Items       []string `json:"items"        yaml:"items"`

	logger *zap.Logger
}

// Option mutates an Options value during construction.
type Option func(*Options)

func DefaultOptions() Options {
	return Options{
		VisibleOnly: DefaultVisibleOnly,
		Field:       DefaultField,
	}
}

// NewOptions applies opts on top of the defaults.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if strings.TrimSpace(o.Field) == "" {
		o.Field = DefaultField
	}
	if o.Depth < 0 {
		o.Depth = 0
	}
	return o
}

func WithVisibleOnly(v bool) Option {
	return func(o *Options) { o.VisibleOnly = v }
}

func WithStartPath(p string) Option {
	return func(o *Options) { o.StartPath = p }
}

func WithDepth(d int) Option {
	return func(o *Options) { o.Depth = d }
}

func WithField(f string) Option {
	return func(o *Options) { o.Field = f }
}

// WithItems sets the keywords to search for. An empty list leaves the
// keywords to be derived from the active page.
func WithItems(items ...string) Option {
	return func(o *Options) {
		if len(items) == 0 {
			o.Items = nil
			return
		}
		o.Items = lo.Uniq(items)
	}
}

// WithLogger attaches a logger that receives a debug record per pass.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// WithOptions copies every field of base, replacing whatever was set before.
func WithOptions(base Options) Option {
	return func(o *Options) {
		logger := o.logger
		*o = base
		o.Items = append([]string(nil), base.Items...)
		if o.logger == nil {
			o.logger = logger
		}
	}
}

// optionKeys maps lower-cased option bag keys to the field they set. The
// older StartURI spelling is still accepted.
var optionKeys = map[string]string{
	"visibleonly":  "visibleonly",
	"visible_only": "visibleonly",
	"startpath":    "startpath",
	"start_path":   "startpath",
	"starturi":     "startpath",
	"start":        "startpath",
	"depth":        "depth",
	"field":        "field",
	"items":        "items",
	"keywords":     "items",
}

// IsOptionKey reports whether key names a selector option.
func IsOptionKey(key string) bool {
	_, ok := optionKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// OptionsFromMap decodes a loose option bag. Keys are matched
// case-insensitively, unknown keys are ignored and values that cannot be
// converted leave the corresponding default in place.
func OptionsFromMap(bag map[string]any) []Option {
	keys := make([]string, 0, len(bag))
	for key := range bag {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	opts := make([]Option, 0, len(bag))
	for _, key := range keys {
		raw := bag[key]
		target, ok := optionKeys[strings.ToLower(strings.TrimSpace(key))]
		if !ok || raw == nil {
			continue
		}

		switch target {
		case "visibleonly":
			if v, err := cast.ToBoolE(raw); err == nil {
				opts = append(opts, WithVisibleOnly(v))
			}
		case "startpath":
			if v, err := cast.ToStringE(raw); err == nil {
				opts = append(opts, WithStartPath(v))
			}
		case "depth":
			if v, err := cast.ToIntE(raw); err == nil && v >= 0 {
				opts = append(opts, WithDepth(v))
			}
		case "field":
			if v, err := cast.ToStringE(raw); err == nil && strings.TrimSpace(v) != "" {
				opts = append(opts, WithField(v))
			}
		case "items":
			if items := bagItems(raw); len(items) > 0 {
				opts = append(opts, WithItems(items...))
			}
		}
	}
	return opts
}

func bagItems(raw any) []string {
	if s, ok := raw.(string); ok {
		parts := strings.Split(s, ",")
		items := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		return items
	}

	items, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil
	}
	return items
}

// FormatOptions renders the resolved options for debugging output.
func FormatOptions(o Options) string {
	var b strings.Builder
	b.WriteString("Options (\n")
	fmt.Fprintf(&b, "  [VisibleOnly] => %t\n", o.VisibleOnly)
	fmt.Fprintf(&b, "  [StartPath] => %q\n", o.StartPath)
	fmt.Fprintf(&b, "  [Depth] => %d\n", o.Depth)
	fmt.Fprintf(&b, "  [Field] => %s\n", o.Field)
	fmt.Fprintf(&b, "  [Items] => %s\n", formatList(o.Items))
	b.WriteString(")")
	return b.String()
}

func formatList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
