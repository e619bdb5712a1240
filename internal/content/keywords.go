package content

import "sort"

// KeywordCount is the number of pages that list a keyword in a field.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// KeywordCounts tallies the keywords of field across the tree. Results are
// ordered by count, highest first, then by keyword.
func (t *Tree) KeywordCounts(field string, visibleOnly bool) []KeywordCount {
	counts := make(map[string]int)
	for _, p := range t.Index(visibleOnly) {
		for _, kw := range t.SplitKeywords(p.Field(field)) {
			counts[kw]++
		}
	}

	out := make([]KeywordCount, 0, len(counts))
	for kw, n := range counts {
		out = append(out, KeywordCount{Keyword: kw, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}
