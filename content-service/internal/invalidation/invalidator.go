package invalidation

import (
	"context"

	"github.com/NoviyantoPutraR/cms-pemkot/content-service/internal/cache"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/pubsub"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/ttlcache"
)

// KindPage is the event kind of static page writes. KindAll is used by
// full flushes.
const (
	KindPage = "page"
	KindAll  = "all"
)

// Invalidator drops every cache entry a write could have made stale and
// tells the other instances to do the same.
type Invalidator struct {
	store     *ttlcache.Cache
	search    cache.SearchCache
	publisher pubsub.Publisher
	source    string
	gen       cache.Generation
}

// New creates an invalidator. publisher may be nil when running alone.
// source identifies this instance so its own events are not applied twice.
func New(store *ttlcache.Cache, search cache.SearchCache, publisher pubsub.Publisher, source string) *Invalidator {
	return &Invalidator{
		store:     store,
		search:    search,
		publisher: publisher,
		source:    source,
	}
}

// Source is the instance id stamped on published events.
func (i *Invalidator) Source() string {
	return i.source
}

// Generation advances on every search cache invalidation applied here,
// local or remote.
func (i *Invalidator) Generation() *cache.Generation {
	return &i.gen
}

// ContentChanged must be called after every content write of kind.
func (i *Invalidator) ContentChanged(ctx context.Context, kind, eventType, id string) {
	i.Apply(ctx, kind, id)
	i.publish(ctx, kind, eventType, id)
}

// PageChanged must be called after every page write.
func (i *Invalidator) PageChanged(ctx context.Context, eventType, slug string) {
	i.Apply(ctx, KindPage, slug)
	i.publish(ctx, KindPage, eventType, slug)
}

// FlushAll drops every cached entry here and on every other instance.
func (i *Invalidator) FlushAll(ctx context.Context) {
	i.Apply(ctx, KindAll, "")
	i.publish(ctx, KindAll, pubsub.EventCacheFlushed, "")
}

// Apply performs the local deletes for a change to kind without publishing.
func (i *Invalidator) Apply(ctx context.Context, kind, key string) {
	l := log.Ctx(ctx)

	switch kind {
	case KindPage:
		i.store.Delete(cache.PageKey(key), cache.PageListKey)
		return
	case KindAll:
		i.store.Clear()
	default:
		i.store.Delete(cache.StatsKey)
	}

	i.gen.Bump()
	for _, typ := range []string{cache.TypeSearch, cache.TypeSuggest} {
		if err := i.search.DeletePrefix(ctx, i.search.KeyPrefix(typ)); err != nil {
			l.Warn().Err(err).Str(log.FieldCacheKey, i.search.KeyPrefix(typ)).Msg("cache invalidation failed")
		}
	}
	l.Debug().Str(log.FieldEntity, kind).Msg("caches invalidated")
}

func (i *Invalidator) publish(ctx context.Context, kind, eventType, key string) {
	if i.publisher == nil {
		return
	}
	l := log.Ctx(ctx)

	event, err := pubsub.NewEvent(eventType, kind, key, nil)
	if err != nil {
		l.Warn().Err(err).Msg("failed to build invalidation event")
		return
	}
	event.Source = i.source

	if err := i.publisher.Publish(ctx, pubsub.ContentChangedChannel(kind), event); err != nil {
		l.Warn().Err(err).Str(log.FieldEntity, kind).Msg("failed to publish invalidation event")
	}
}
