package related

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOptionsDefaults(t *testing.T) {
	o := NewOptions()

	assert.True(t, o.VisibleOnly)
	assert.Equal(t, "", o.StartPath)
	assert.Equal(t, 0, o.Depth)
	assert.Equal(t, "Tags", o.Field)
	assert.Empty(t, o.Items)
}

func TestNewOptionsNormalizesInvalidValues(t *testing.T) {
	o := NewOptions(WithField("  "), WithDepth(-3))

	assert.Equal(t, DefaultField, o.Field)
	assert.Equal(t, 0, o.Depth)
}

func TestOptionsFromMap(t *testing.T) {
	tests := []struct {
		name string
		bag  map[string]any
		want Options
	}{
		{
			name: "empty bag keeps defaults",
			bag:  nil,
			want: DefaultOptions(),
		},
		{
			name: "capitalised option names",
			bag: map[string]any{
				"VisibleOnly": false,
				"StartURI":    "/blog",
				"Depth":       "1",
				"Field":       "Keywords",
				"Items":       []any{"go", "cli"},
			},
			want: Options{
				VisibleOnly: false,
				StartPath:   "/blog",
				Depth:       1,
				Field:       "Keywords",
				Items:       []string{"go", "cli"},
			},
		},
		{
			name: "snake case and comma separated items",
			bag: map[string]any{
				"visible_only": "true",
				"start_path":   "/docs",
				"items":        "a, b,,c",
			},
			want: Options{
				VisibleOnly: true,
				StartPath:   "/docs",
				Field:       DefaultField,
				Items:       []string{"a", "b", "c"},
			},
		},
		{
			name: "bad values fall back to defaults",
			bag: map[string]any{
				"depth":       "deep",
				"visibleonly": "perhaps",
				"field":       "",
				"unknown":     42,
			},
			want: DefaultOptions(),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := NewOptions(OptionsFromMap(tt.bag)...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithOptionsCopiesItems(t *testing.T) {
	base := NewOptions(WithItems("a"), WithDepth(2))
	o := NewOptions(WithOptions(base))
	o.Items[0] = "changed"

	assert.Equal(t, "a", base.Items[0])
	assert.Equal(t, 2, o.Depth)
}

func TestWithItemsKeepsFirstOccurrence(t *testing.T) {
	o := NewOptions(WithItems("go", "cli", "go", "yaml", "cli"))
	assert.Equal(t, []string{"go", "cli", "yaml"}, o.Items)

	o = NewOptions(WithItems("go"), WithItems())
	assert.Nil(t, o.Items)
}

func TestFormatOptions(t *testing.T) {
	o := NewOptions(WithStartPath("/docs"), WithItems("go", "cli"))

	want := "Options (\n" +
		"  [VisibleOnly] => true\n" +
		"  [StartPath] => \"/docs\"\n" +
		"  [Depth] => 0\n" +
		"  [Field] => Tags\n" +
		"  [Items] => [\"go\", \"cli\"]\n" +
		")"
	assert.Equal(t, want, FormatOptions(o))
}
