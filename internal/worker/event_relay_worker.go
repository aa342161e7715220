package worker

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/service"
)

// StartEventRelay subscribes the relay to domain events and runs it until ctx is cancelled.
// The returned channel is closed once queued events have been flushed.
func StartEventRelay(ctx context.Context, relay *service.EventRelay) <-chan struct{} {
	done := make(chan struct{})
	if relay == nil {
		close(done)
		return done
	}
	relay.RegisterHandlers()
	go func() {
		defer close(done)
		relay.Run(ctx)
	}()
	return done
}
