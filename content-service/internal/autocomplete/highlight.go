package autocomplete

import (
	"unicode"
)

// Segment is a run of suggestion text. Match marks runs equal to the query,
// ignoring case.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// Highlight splits text into segments around every case-insensitive
// occurrence of query. Text without a match comes back as one segment.
func Highlight(text, query string) []Segment {
	q := lowerRunes(query)
	if len(q) == 0 || text == "" {
		return []Segment{{Text: text}}
	}

	src := []rune(text)
	low := lowerRunes(text)

	var segs []Segment
	start := 0
	for i := 0; i+len(q) <= len(low); {
		if !runesEqual(low[i:i+len(q)], q) {
			i++
			continue
		}
		if i > start {
			segs = append(segs, Segment{Text: string(src[start:i])})
		}
		segs = append(segs, Segment{Text: string(src[i : i+len(q)]), Match: true})
		i += len(q)
		start = i
	}
	if start < len(src) {
		segs = append(segs, Segment{Text: string(src[start:])})
	}
	return segs
}

// lowerRunes lowercases rune by rune so indexes line up with []rune(s).
func lowerRunes(s string) []rune {
	r := []rune(s)
	for i := range r {
		r[i] = unicode.ToLower(r[i])
	}
	return r
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
