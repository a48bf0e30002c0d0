package morph

// EventFeed delivers absolute paths of entries moved into the watched tree.
// Events are delivered in order; Errors carries read failures that do not end the feed.
// Both channels are closed when the feed ends.
type EventFeed interface {
	Events() <-chan string
	Errors() <-chan error
	Close() error
}
