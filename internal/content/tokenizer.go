package content

import "strings"

const DefaultSeparator = ","

// Tokenizer splits raw field values into keywords.
type Tokenizer struct {
	Separator string
}

func (t Tokenizer) separator() string {
	if t.Separator == "" {
		return DefaultSeparator
	}
	return t.Separator
}

// Split breaks raw on the separator, trims each token and drops empty and
// repeated tokens. Token order follows the raw value.
func (t Tokenizer) Split(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, t.separator())
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}

// joiner is used when a YAML list is flattened into a raw value.
func (t Tokenizer) joiner() string {
	return t.separator() + " "
}
