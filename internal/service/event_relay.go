package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/observability"
)

const (
	defaultRelayBuffer  = 256
	relayPublishTimeout = 5 * time.Second
)

var errRelayQueueFull = errors.New("event relay queue full")

// EventRelay forwards every dispatched domain event to the broker. Dispatch only enqueues;
// Run performs the broker round-trips off the request path.
type EventRelay struct {
	dispatcher events.Dispatcher
	publisher  events.Publisher
	logger     *zap.Logger
	queue      chan events.Event
}

// NewEventRelay creates the relay. buffer bounds the number of undelivered events.
func NewEventRelay(dispatcher events.Dispatcher, publisher events.Publisher, logger *zap.Logger, buffer int) *EventRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = defaultRelayBuffer
	}
	return &EventRelay{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		queue:      make(chan events.Event, buffer),
	}
}

// RegisterHandlers subscribes to every event type.
func (r *EventRelay) RegisterHandlers() {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.SubscribeAll(r.enqueue)
}

func (r *EventRelay) enqueue(_ context.Context, event events.Event) error {
	select {
	case r.queue <- event:
		return nil
	default:
		observability.EventsRelayedTotal.WithLabelValues("dropped").Inc()
		r.logger.Warn("dropping event", zap.String("type", string(event.Type)), zap.String("id", event.ID))
		return errRelayQueueFull
	}
}

// Run delivers queued events until ctx is done, then flushes what is already queued. ctx only
// stops the loop; each publish gets its own deadline so events picked up during shutdown still go out.
func (r *EventRelay) Run(ctx context.Context) {
	for {
		select {
		case event := <-r.queue:
			r.deliver(event)
		case <-ctx.Done():
			r.flush()
			return
		}
	}
}

func (r *EventRelay) flush() {
	for {
		select {
		case event := <-r.queue:
			r.deliver(event)
		default:
			return
		}
	}
}

func (r *EventRelay) deliver(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
	defer cancel()

	body, err := json.Marshal(event)
	if err != nil {
		observability.EventsRelayedTotal.WithLabelValues("encode_error").Inc()
		r.logger.Error("encode event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}
	if err := r.publisher.Publish(ctx, string(event.Type), body); err != nil {
		observability.EventsRelayedTotal.WithLabelValues("failed").Inc()
		r.logger.Warn("relay event",
			zap.String("type", string(event.Type)),
			zap.String("id", event.ID),
			zap.Error(err))
		return
	}
	observability.EventsRelayedTotal.WithLabelValues("published").Inc()
	r.logger.Debug("event relayed", zap.String("type", string(event.Type)), zap.String("subject_id", event.SubjectID))
}
