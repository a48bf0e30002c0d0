package morph

import "context"

// Run consumes feed until ctx is cancelled or the feed ends. Events are handled
// strictly one at a time in delivery order. Per-event failures and feed read
// errors are logged and never stop the loop.
func (s *Service) Run(ctx context.Context, feed EventFeed) error {
	events := feed.Events()
	errs := feed.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil

		case path, ok := <-events:
			if !ok {
				return nil
			}
			s.locks.Prune()
			if err := s.Handle(ctx, path); err != nil {
				s.logger.Error("morph-bang error", "path", path, "error", err)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			s.logger.Warn("event feed read error", "error", err)
		}
	}
}
