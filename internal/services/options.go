package services

import (
	"context"
	"log/slog"

	"expensetracker/internal/amqp"
	applog "expensetracker/internal/log"
)

// EventPublisher delivers domain events. *amqp.Client implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, msg *amqp.EventMessage) error
}

// Option configures the optional collaborators of a service.
type Option func(*options)

type options struct {
	logger *applog.Logger
	events EventPublisher
}

// WithLogger sets the logger; services default to slog.Default().
func WithLogger(l *applog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEvents sets the publisher notified after successful mutations.
func WithEvents(p EventPublisher) Option {
	return func(o *options) { o.events = p }
}

func buildOptions(component string, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = applog.FromSlog(slog.Default(), component)
	} else {
		o.logger = o.logger.WithComponent(component)
	}
	return o
}

// publish sends msg when a publisher is configured. Failures are logged
// and never fail the mutation that has already been stored.
func (o options) publish(ctx context.Context, msg *amqp.EventMessage) {
	if o.events == nil {
		o.logger.DebugContext(ctx, "AMQP client not available, skipping event", applog.FieldEventType, msg.Type)
		return
	}
	if err := o.events.PublishEvent(ctx, msg); err != nil {
		o.logger.ErrorContext(ctx, "Failed to publish event",
			applog.FieldEventType, msg.Type,
			"entity_id", msg.EntityID,
			applog.FieldError, err)
	}
}
