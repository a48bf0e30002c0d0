// Package feed provides the sources of rename events consumed by the event loop.
package feed

import (
	"context"
	"fmt"

	"morph-bang/internal/config"
	morphfs "morph-bang/internal/fs"
	"morph-bang/internal/morph"
)

// NewFeedFromConfig creates an EventFeed watching root based on the feed config type.
func NewFeedFromConfig(ctx context.Context, cfg config.FeedConfig, root string, binaries map[string]string) (morph.EventFeed, error) {
	switch cfg.Type {
	case "inotifywait", "":
		return NewInotifyFeed(ctx, binaries["inotifywait"], root)
	case "fsnotify":
		return NewFSNotifyFeed(root, morphfs.NewIgnoreMatcher(cfg.Ignore))
	default:
		return nil, fmt.Errorf("unknown feed type: %q", cfg.Type)
	}
}

// Compile-time checks that the feeds implement morph.EventFeed interface
var (
	_ morph.EventFeed = (*LineFeed)(nil)
	_ morph.EventFeed = (*InotifyFeed)(nil)
	_ morph.EventFeed = (*FSNotifyFeed)(nil)
)
