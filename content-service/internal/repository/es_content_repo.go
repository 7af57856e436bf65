package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/domain"
)

// ESContentRepository reads content from per-kind Elasticsearch indexes
// named "<prefix>-<kind>". Writes go to the relational store and reach the
// indexes through CDC.
type ESContentRepository struct {
	client      *elasticsearch.Client
	indexPrefix string
}

// NewESContentRepository creates a new Elasticsearch-based content reader.
func NewESContentRepository(client *elasticsearch.Client, indexPrefix string) *ESContentRepository {
	return &ESContentRepository{
		client:      client,
		indexPrefix: indexPrefix,
	}
}

func (r *ESContentRepository) index(kind domain.EntityKind) string {
	if r.indexPrefix == "" {
		return kind.Table()
	}
	return r.indexPrefix + "-" + kind.Table()
}

func buildQuery(opts domain.ListOptions, publishedOnly bool) map[string]interface{} {
	boolQuery := map[string]interface{}{}

	if publishedOnly {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"published": true}},
		}
	}

	if terms := searchTerms(opts); len(terms) > 0 {
		should := make([]interface{}, 0, len(terms)*2)
		for _, t := range terms {
			t = strings.ToLower(t)
			should = append(should,
				map[string]interface{}{
					"match_phrase_prefix": map[string]interface{}{"title": t},
				},
				map[string]interface{}{
					"wildcard": map[string]interface{}{
						"title.keyword": map[string]interface{}{
							"value":            wildcardPattern(t),
							"case_insensitive": true,
						},
					},
				},
			)
		}
		boolQuery["should"] = should
		boolQuery["minimum_should_match"] = 1
	}

	if len(boolQuery) == 0 {
		return map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	return map[string]interface{}{"bool": boolQuery}
}

func sortClause(sort domain.SortBy) []interface{} {
	switch sort {
	case domain.SortOldest:
		return []interface{}{map[string]interface{}{"created_at": "asc"}}
	case domain.SortPopular:
		return []interface{}{
			map[string]interface{}{"view_count": "desc"},
			map[string]interface{}{"created_at": "desc"},
		}
	case domain.SortTitle:
		return []interface{}{map[string]interface{}{"title.keyword": "asc"}}
	default:
		return []interface{}{map[string]interface{}{"created_at": "desc"}}
	}
}

// GetAll lists one page of items matching opts.
func (r *ESContentRepository) GetAll(ctx context.Context, kind domain.EntityKind, opts domain.ListOptions) (*domain.ListResult, error) {
	opts.Normalize(defaultPageSize)

	body := map[string]interface{}{
		"from":             opts.Offset(),
		"size":             opts.Limit,
		"track_total_hits": true,
		"query":            buildQuery(opts, opts.PublishedOnly),
		"sort":             sortClause(opts.SortBy),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index(kind)),
		r.client.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", kind, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var result esResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	items := make([]domain.Item, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var item domain.Item
		if err := json.Unmarshal(hit.Source, &item); err != nil {
			continue
		}
		item.Kind = kind
		items = append(items, item)
	}

	total := result.Hits.Total.Value
	return &domain.ListResult{
		Data:       items,
		Total:      total,
		TotalPages: domain.TotalPages(total, opts.Limit),
	}, nil
}

// Count counts documents in the kind's index.
func (r *ESContentRepository) Count(ctx context.Context, kind domain.EntityKind, publishedOnly bool) (int64, error) {
	data, err := json.Marshal(map[string]interface{}{
		"query": buildQuery(domain.ListOptions{}, publishedOnly),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := r.client.Count(
		r.client.Count.WithContext(ctx),
		r.client.Count.WithIndex(r.index(kind)),
		r.client.Count.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", kind, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var result struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Count, nil
}

// esResponse is the generic Elasticsearch search response structure.
type esResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}
