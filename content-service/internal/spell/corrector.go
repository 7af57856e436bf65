package spell

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/lexicon"
)

const (
	// DefaultThreshold is the similarity a dictionary word must exceed.
	DefaultThreshold = 0.7
	// DefaultMinWordLength is the shortest word that is corrected.
	DefaultMinWordLength = 3
	// DefaultCacheSize bounds the per-word memo.
	DefaultCacheSize = 1024
)

// wordMatch is a memoized per-word outcome. Empty corrected means no match.
type wordMatch struct {
	corrected string
}

// Corrector maps query words to the closest domain word.
type Corrector struct {
	words     []string
	threshold float64
	minLen    int
	cache     *lru.Cache[string, wordMatch]
}

// Option configures a Corrector.
type Option func(*Corrector)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(t float64) Option {
	return func(c *Corrector) { c.threshold = t }
}

// WithCacheSize overrides DefaultCacheSize. Sizes below 1 fall back to the default.
func WithCacheSize(size int) Option {
	return func(c *Corrector) {
		if size > 0 {
			c.cache, _ = lru.New[string, wordMatch](size)
		}
	}
}

// New creates a corrector over words. The slice order decides ties.
func New(words []string, opts ...Option) *Corrector {
	cache, _ := lru.New[string, wordMatch](DefaultCacheSize)
	c := &Corrector{
		words:     words,
		threshold: DefaultThreshold,
		minLen:    DefaultMinWordLength,
		cache:     cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDefault creates a corrector over lexicon.DomainWords.
func NewDefault(opts ...Option) *Corrector {
	return New(lexicon.DomainWords, opts...)
}

// Correct replaces every word of query that is close enough to a domain
// word. Words shorter than three letters pass through unchanged.
func (c *Corrector) Correct(query string) domain.CorrectionResult {
	words := lexicon.Words(query)
	result := domain.CorrectionResult{Suggestions: []domain.WordCorrection{}}

	out := make([]string, len(words))
	for i, word := range words {
		out[i] = word
		corrected, ok := c.correctWord(word)
		if !ok {
			continue
		}
		out[i] = corrected
		result.Suggestions = append(result.Suggestions, domain.WordCorrection{
			Original:  word,
			Corrected: corrected,
		})
	}

	result.Corrected = strings.Join(out, " ")
	result.HasCorrection = len(result.Suggestions) > 0
	return result
}

func (c *Corrector) correctWord(word string) (string, bool) {
	if len([]rune(word)) < c.minLen {
		return "", false
	}

	if m, ok := c.cache.Get(word); ok {
		return m.corrected, m.corrected != ""
	}

	best := ""
	bestDistance := -1
	for _, candidate := range c.words {
		distance := lexicon.LevenshteinDistance(word, candidate)
		longest := max(len([]rune(word)), len([]rune(candidate)))
		similarity := 1 - float64(distance)/float64(longest)
		if similarity <= c.threshold {
			continue
		}
		// strict less-than keeps the first word on ties
		if bestDistance < 0 || distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}

	if best == word {
		best = ""
	}
	c.cache.Add(word, wordMatch{corrected: best})
	return best, best != ""
}
