package search

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggest ranks username's recent queries against a partially typed input,
// for history autocomplete. An empty input returns the full history.
func (s *Session) Suggest(username, input string) []string {
	history := s.History(username)
	if input == "" {
		return history
	}

	matches := fuzzy.RankFindFold(input, history)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Target)
	}
	return out
}
