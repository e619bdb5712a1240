package content

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

var frontMatterRe = regexp.MustCompile(`(?ms)\A---\s*\n(.*?)\n---\s*(?:\n|\z)`)

func splitFrontMatter(data []byte) ([]byte, []byte) {
	loc := frontMatterRe.FindSubmatchIndex(data)
	if len(loc) < 4 {
		return nil, data
	}
	return data[loc[2]:loc[3]], data[loc[1]:]
}

// parseFrontMatter decodes the YAML block into raw string fields keyed by
// lower-cased name. Sequences are joined with joiner so the tokenizer can
// split them again.
func parseFrontMatter(fm []byte, joiner string) (map[string]string, error) {
	fields := make(map[string]string)
	if len(bytes.TrimSpace(fm)) == 0 {
		return fields, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(fm, &doc); err != nil {
		return nil, err
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return fields, nil
	}

	mapping := doc.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return fields, nil
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := strings.ToLower(strings.TrimSpace(mapping.Content[i].Value))
		if key == "" {
			continue
		}
		fields[key] = flattenYAMLValue(mapping.Content[i+1], joiner)
	}

	return fields, nil
}

func flattenYAMLValue(node *yaml.Node, joiner string) string {
	switch node.Kind {
	case yaml.SequenceNode:
		vals := make([]string, 0, len(node.Content))
		for _, child := range node.Content {
			if child.Kind == yaml.ScalarNode && child.Value != "" {
				vals = append(vals, child.Value)
			}
		}
		return strings.Join(vals, joiner)
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return ""
		}
		return node.Value
	case yaml.AliasNode:
		if node.Alias != nil {
			return flattenYAMLValue(node.Alias, joiner)
		}
	}
	return ""
}

// firstHeading returns the text of the first markdown heading in body.
func firstHeading(body []byte) string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(body))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			title = strings.TrimSpace(string(heading.Text(body)))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

func isFalse(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "false", "no", "off", "0":
		return true
	}
	return false
}

func isTrue(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "on", "1":
		return true
	}
	return false
}
