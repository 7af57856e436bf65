package pubsub

import (
	"fmt"
	"strings"
)

// Channel naming for content change notifications.
const (
	// ChannelContentChanged carries writes to one entity kind ("berita", "page", ...).
	ChannelContentChanged = "content:%s:changed"

	// PatternContentChanged matches every content change channel.
	PatternContentChanged = "content:*:changed"
)

// Event types carried on content channels.
const (
	EventContentCreated = "content_created"
	EventContentUpdated = "content_updated"
	EventContentDeleted = "content_deleted"
	EventCacheFlushed   = "cache_flushed"
)

// ContentChangedChannel returns the channel name for writes to kind.
func ContentChangedChannel(kind string) string {
	return fmt.Sprintf(ChannelContentChanged, kind)
}

// KindFromChannel extracts the entity kind from a content channel name.
func KindFromChannel(channel string) (string, error) {
	parts := strings.Split(channel, ":")
	if len(parts) != 3 || parts[0] != "content" || parts[2] != "changed" || parts[1] == "" {
		return "", fmt.Errorf("invalid channel format: %s", channel)
	}
	return parts[1], nil
}
