package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/adapter"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/cache"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/lexicon"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/spell"
	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/synonym"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
)

// SearchConfig tunes the search service.
type SearchConfig struct {
	DefaultLimit   int
	MaxLimit       int
	ExpandSynonyms bool
	Autocorrect    bool
	SearchTTL      time.Duration
	SuggestTTL     time.Duration
	SuggestLimit   int
	SuggestPerKind int
	MinChars       int
}

func (c *SearchConfig) withDefaults() {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 12
	}
	if c.MaxLimit < c.DefaultLimit {
		c.MaxLimit = c.DefaultLimit
	}
	if c.SuggestLimit <= 0 {
		c.SuggestLimit = 8
	}
	if c.SuggestPerKind <= 0 {
		c.SuggestPerKind = 3
	}
	if c.MinChars <= 0 {
		c.MinChars = 2
	}
}

type searchServiceImpl struct {
	adapters  []adapter.EntityAdapter
	cache     cache.SearchCache
	gen       *cache.Generation
	corrector *spell.Corrector
	expander  *synonym.Expander
	cfg       SearchConfig
	sf        singleflight.Group
}

// NewSearchService creates a new search service. adapters must be in
// presentation order. gen is the generation bumped by the invalidator of
// searchCache; nil means nothing invalidates it.
func NewSearchService(
	adapters []adapter.EntityAdapter,
	searchCache cache.SearchCache,
	gen *cache.Generation,
	corrector *spell.Corrector,
	expander *synonym.Expander,
	cfg SearchConfig,
) SearchService {
	cfg.withDefaults()
	if gen == nil {
		gen = &cache.Generation{}
	}
	return &searchServiceImpl{
		adapters:  adapters,
		cache:     searchCache,
		gen:       gen,
		corrector: corrector,
		expander:  expander,
		cfg:       cfg,
	}
}

func (s *searchServiceImpl) normalizeOptions(opts domain.SearchOptions) domain.SearchOptions {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = s.cfg.DefaultLimit
	}
	if opts.Limit > s.cfg.MaxLimit {
		opts.Limit = s.cfg.MaxLimit
	}
	return opts
}

func (s *searchServiceImpl) SearchAll(ctx context.Context, query string, opts domain.SearchOptions) (*domain.AggregatedSearchResult, error) {
	opts = s.normalizeOptions(opts)

	term := lexicon.NormalizeQuery(query)
	if term == "" {
		return domain.NewAggregatedSearchResult("", opts.Page, opts.Limit), nil
	}

	expanded := s.expander.Expand(term)
	var alternates []string
	if s.cfg.ExpandSynonyms {
		alternates = expanded
	}

	cacheKey := s.cache.BuildKey(cache.TypeSearch, term, opts.Page, opts.Limit)

	v, err := s.shared(ctx, cacheKey, func(ctx context.Context) (interface{}, error) {
		gen := s.gen.Load()
		cached, err := s.cache.GetResult(ctx, cacheKey)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Msg("cache get error")
		}

		perKind := ceilDiv(opts.Limit, len(s.adapters))
		results, failed := s.fanOut(ctx, domain.ListOptions{
			Page:          opts.Page,
			Limit:         perKind,
			Search:        term,
			Terms:         alternates,
			PublishedOnly: true,
			SortBy:        domain.SortNewest,
		})

		resp := domain.NewAggregatedSearchResult(term, opts.Page, opts.Limit)
		resp.ExpandedTerms = expanded
		for i, a := range s.adapters {
			r := results[i]
			resp.Items[a.Kind()] = r.Data
			resp.Total += len(r.Data)
			if r.TotalPages > opts.Page {
				resp.HasMore = true
			}
		}

		// A partial result would hide the recovered adapter until expiry.
		if !failed {
			s.asyncSet(ctx, cacheKey, gen, func(ctx context.Context) error {
				return s.cache.SetResult(ctx, cacheKey, resp, s.cfg.SearchTTL)
			})
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.AggregatedSearchResult), nil
}

// shared runs fn once per key across concurrent callers. fn runs detached
// from the cancellation of any single caller; a caller whose ctx ends stops
// waiting without affecting the others.
func (s *searchServiceImpl) shared(ctx context.Context, key string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	work := context.WithoutCancel(ctx)
	ch := s.sf.DoChan(key, func() (interface{}, error) {
		return fn(work)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// fanOut queries every adapter concurrently. A failing adapter contributes
// an empty result; failed reports whether any did.
func (s *searchServiceImpl) fanOut(ctx context.Context, opts domain.ListOptions) (results []*domain.ListResult, failed bool) {
	results = make([]*domain.ListResult, len(s.adapters))
	errs := make([]error, len(s.adapters))

	var g errgroup.Group
	for i, a := range s.adapters {
		g.Go(func() error {
			r, err := a.GetAll(ctx, opts)
			if err != nil || r == nil {
				errs[i] = err
				r = domain.EmptyListResult()
			}
			if r.Data == nil {
				r.Data = []domain.Item{}
			}
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	l := log.Ctx(ctx)
	for i, err := range errs {
		if err != nil {
			failed = true
			l.Warn().
				Err(err).
				Str(log.FieldEntity, string(s.adapters[i].Kind())).
				Str(log.FieldQuery, opts.Search).
				Msg("entity search failed, using empty result")
		}
	}
	return results, failed
}

func (s *searchServiceImpl) GetSuggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	term := lexicon.NormalizeQuery(query)
	if len([]rune(term)) < s.cfg.MinChars {
		return []domain.Suggestion{}, nil
	}
	if limit <= 0 {
		limit = s.cfg.SuggestLimit
	}

	cacheKey := s.cache.BuildKey(cache.TypeSuggest, term, 1, limit)

	v, err := s.shared(ctx, cacheKey, func(ctx context.Context) (interface{}, error) {
		gen := s.gen.Load()
		cached, err := s.cache.GetSuggestions(ctx, cacheKey)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Msg("cache get error")
		}

		results, failed := s.fanOut(ctx, domain.ListOptions{
			Page:          1,
			Limit:         s.cfg.SuggestPerKind,
			Search:        term,
			PublishedOnly: true,
			SortBy:        domain.SortNewest,
		})

		suggestions := make([]domain.Suggestion, 0, limit)
		for i, a := range s.adapters {
			for _, item := range results[i].Data {
				if len(suggestions) == limit {
					break
				}
				suggestions = append(suggestions, domain.Suggestion{
					Text: item.Title,
					Type: a.Kind(),
					URL:  item.URL(),
					ID:   item.ID,
				})
			}
		}

		if !failed {
			s.asyncSet(ctx, cacheKey, gen, func(ctx context.Context) error {
				return s.cache.SetSuggestions(ctx, cacheKey, suggestions, s.cfg.SuggestTTL)
			})
		}
		return suggestions, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]domain.Suggestion), nil
}

func (s *searchServiceImpl) CorrectSpelling(query string) domain.CorrectionResult {
	return s.corrector.Correct(query)
}

func (s *searchServiceImpl) ExpandSynonyms(query string) []string {
	return s.expander.Expand(query)
}

func (s *searchServiceImpl) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	query := lexicon.NormalizeQuery(req.Query)
	resp := &domain.SearchResponse{Query: query}

	autocorrect := s.cfg.Autocorrect
	if req.Autocorrect != nil {
		autocorrect = *req.Autocorrect
	}

	if query != "" && autocorrect {
		correction := s.CorrectSpelling(query)
		if correction.HasCorrection {
			l := log.Ctx(ctx)
			l.Debug().
				Str(log.FieldQuery, query).
				Str("corrected", correction.Corrected).
				Msg("query autocorrected")
			resp.Query = correction.Corrected
			resp.Correction = &correction
		}
	}

	result, err := s.SearchAll(ctx, resp.Query, domain.SearchOptions{Page: req.Page, Limit: req.Limit})
	if err != nil {
		return nil, err
	}
	resp.Result = result
	return resp, nil
}

// asyncSet stores a value computed from data read at generation gen. Nothing
// is stored once an invalidation has run since then, and a value that raced
// an invalidation is removed again.
func (s *searchServiceImpl) asyncSet(ctx context.Context, key string, gen uint64, set func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(log.Detached(ctx), 2*time.Second)
		defer cancel()
		l := log.Ctx(ctx)

		if s.gen.Load() != gen {
			l.Debug().Str(log.FieldCacheKey, key).Msg("cache invalidated during fetch, not storing")
			return
		}
		if err := set(ctx); err != nil {
			l.Warn().Err(err).Str(log.FieldCacheKey, key).Msg("cache set error")
			return
		}
		if s.gen.Load() != gen {
			if err := s.cache.Delete(ctx, key); err != nil {
				l.Warn().Err(err).Str(log.FieldCacheKey, key).Msg("cache delete error")
			}
		}
	}()
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
