package search

import "strings"

// BuildQuery composes a boolean query from term groups: the terms of each
// group are joined with OR, and the groups with AND. A non-empty extra
// clause is appended as one more AND operand. Blank terms and empty groups
// are skipped, so BuildQuery(nil, "") is "".
//
//	BuildQuery([][]string{{"autonomous ship*", "unmanned ship*"}, {"training"}}, "IMO")
//	// (autonomous ship* OR unmanned ship*) AND (training) AND (IMO)
func BuildQuery(groups [][]string, extra string) string {
	parts := make([]string, 0, len(groups)+1)
	for _, group := range groups {
		terms := make([]string, 0, len(group))
		for _, term := range group {
			if term = strings.TrimSpace(term); term != "" {
				terms = append(terms, term)
			}
		}
		if len(terms) > 0 {
			parts = append(parts, "("+strings.Join(terms, " OR ")+")")
		}
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		parts = append(parts, "("+extra+")")
	}
	return strings.Join(parts, " AND ")
}

// SplitGroup splits one serialized term group on "|".
func SplitGroup(raw string) []string {
	return strings.Split(raw, "|")
}
