package cache

// Keys of the process-wide TTL cache used by the page and stats services.
const (
	pageKeyPrefix = "page:"
	PageListKey   = "page:list"
	StatsKey      = "stats"
)

// PageKey is the TTL cache key of a page looked up by slug.
func PageKey(slug string) string {
	return pageKeyPrefix + slug
}
