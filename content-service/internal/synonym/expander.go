package synonym

import (
	"sort"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/lexicon"
)

// Expander expands query words to their equivalents in both directions.
// The reverse index is derived once so reverse lookups do not scan the
// dictionary.
type Expander struct {
	forward map[string][]string
	reverse map[string][]string
}

// New builds an expander from canonical term -> synonyms.
func New(dict map[string][]string) *Expander {
	e := &Expander{
		forward: make(map[string][]string, len(dict)),
		reverse: make(map[string][]string),
	}

	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		canonical := lexicon.NormalizeQuery(k)
		for _, syn := range dict[k] {
			syn = lexicon.NormalizeQuery(syn)
			e.forward[canonical] = append(e.forward[canonical], syn)
			e.reverse[syn] = append(e.reverse[syn], canonical)
		}
	}
	return e
}

// NewDefault builds an expander from lexicon.Synonyms.
func NewDefault() *Expander {
	return New(lexicon.Synonyms)
}

// Expand returns every word of query plus its synonyms and canonical terms,
// deduplicated, in first-seen order.
func (e *Expander) Expand(query string) []string {
	words := lexicon.Words(query)
	seen := make(map[string]bool, len(words)*2)
	result := make([]string, 0, len(words)*2)

	add := func(terms ...string) {
		for _, t := range terms {
			if !seen[t] {
				seen[t] = true
				result = append(result, t)
			}
		}
	}

	for _, w := range words {
		add(w)
		add(e.forward[w]...)
		add(e.reverse[w]...)
	}
	return result
}

// Synonyms returns the listed synonyms of a canonical term.
func (e *Expander) Synonyms(term string) []string {
	return e.forward[lexicon.NormalizeQuery(term)]
}

// Canonicals returns the canonical terms that list term as a synonym.
func (e *Expander) Canonicals(term string) []string {
	return e.reverse[lexicon.NormalizeQuery(term)]
}
