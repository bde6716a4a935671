package store

import (
	"strings"

	"github.com/arcanaland/spellbook/internal/card"
	"github.com/sahilm/fuzzy"
)

// Filter selects cards for Search. Empty fields match everything.
type Filter struct {
	// Name matches when it is a substring of the card name, ignoring case.
	Name string `schema:"name"`
	// Type and Color must equal the card's type and color, ignoring case.
	Type  string `schema:"type"`
	Color string `schema:"color"`
	// Keyword must be one of the card's keywords, ignoring case.
	Keyword string `schema:"keyword"`
}

// Match reports whether cd satisfies every field of the filter.
func (f Filter) Match(cd card.Card) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(cd.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Type != "" && !strings.EqualFold(f.Type, cd.Type) {
		return false
	}
	if f.Color != "" && !strings.EqualFold(f.Color, cd.Color) {
		return false
	}
	if f.Keyword != "" {
		found := false
		for _, kw := range cd.Keywords {
			if strings.EqualFold(f.Keyword, kw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Search returns the cards matching f, in document order.
func (s *Store) Search(f Filter) ([]card.Card, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	matches := []card.Card{}
	for _, cd := range all {
		if f.Match(cd) {
			matches = append(matches, cd)
		}
	}
	return matches, nil
}

// Suggest returns up to limit card names resembling name, best first. It is
// meant for hints after a failed lookup; lookups themselves are exact.
func (s *Store) Suggest(name string, limit int) []string {
	s.mu.Lock()
	names := s.coll.Names()
	s.mu.Unlock()

	matches := fuzzy.Find(strings.ToLower(name), lowered(names))
	out := make([]string, 0, limit)
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, names[m.Index])
	}
	return out
}

func lowered(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToLower(n)
	}
	return out
}
