package invalidation

import (
	"context"
	"fmt"

	"github.com/NoviyantoPutraR/cms-pemkot/pkg/log"
	"github.com/NoviyantoPutraR/cms-pemkot/pkg/pubsub"
)

// Listen applies invalidation events published by other instances until
// ctx is done. It returns once the subscription is established; events are
// handled in a background goroutine.
func Listen(ctx context.Context, sub pubsub.Subscriber, inv *Invalidator) (<-chan struct{}, error) {
	events, err := sub.SubscribePattern(ctx, pubsub.PatternContentChanged)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to content changes: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		l := log.L()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Source == inv.Source() {
					continue
				}
				l.Debug().
					Str(log.FieldEntity, ev.Kind).
					Str("event_type", ev.Type).
					Str("source", ev.Source).
					Msg("applying remote invalidation")
				inv.Apply(ctx, ev.Kind, ev.Key)
			}
		}
	}()

	return done, nil
}
