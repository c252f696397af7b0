// Package eventBus fans committed ledger events out to in-process subscribers.
// Publishers and consumers only share the types in eventBusTypes.
package eventBus

import (
	"github.com/Layr-Labs/rewards-ledger/pkg/eventBus/eventBusTypes"
	"go.uber.org/zap"
)

// EventBus delivers published events to every registered consumer.
// It keeps the consumer list and never blocks a publisher on a slow consumer.
type EventBus struct {
	// consumers is a mutex guarded list of event consumers
	consumers *eventBusTypes.ConsumerList
	// logger is used for logging subscriptions and deliveries
	logger *zap.Logger
}

var _ eventBusTypes.IEventBus = (*EventBus)(nil)

// NewEventBus creates an EventBus with the provided logger.
// It starts with no consumers.
func NewEventBus(l *zap.Logger) *EventBus {
	return &EventBus{
		consumers: eventBusTypes.NewConsumerList(),
		logger:    l,
	}
}

// Subscribe registers a consumer to receive ledger events.
// Events arrive on the consumer's channel.
func (eb *EventBus) Subscribe(consumer *eventBusTypes.Consumer) {
	eb.consumers.Add(consumer)
	eb.logger.Sugar().Debugw("Subscribed consumer", zap.String("consumerId", string(consumer.Id)))
}

// Unsubscribe removes a consumer from the event bus.
// The consumer receives nothing published afterwards.
func (eb *EventBus) Unsubscribe(consumer *eventBusTypes.Consumer) {
	eb.consumers.Remove(consumer)
	eb.logger.Sugar().Infow("Unsubscribed consumer", zap.String("consumerId", string(consumer.Id)))
}

// Publish offers event to every consumer without blocking.
// A consumer whose context is done, or whose channel is full or nil, misses the event.
func (eb *EventBus) Publish(event *eventBusTypes.Event) {
	eb.logger.Sugar().Debugw("Publishing event", zap.String("eventName", string(event.Name)))
	for _, consumer := range eb.consumers.GetAll() {
		if consumer.Context != nil && consumer.Context.Err() != nil {
			continue
		}
		if consumer.Channel != nil {
			select {
			case consumer.Channel <- event:
				eb.logger.Sugar().Debugw("Published event to consumer",
					zap.String("consumerId", string(consumer.Id)),
					zap.String("eventName", event.Name.String()),
				)
			default:
				eb.logger.Sugar().Debugw("No receiver available, or channel is full",
					zap.String("consumerId", string(consumer.Id)),
					zap.String("eventName", event.Name.String()),
				)
			}
		} else {
			eb.logger.Sugar().Debugw("Consumer channel is nil", zap.String("consumerId", string(consumer.Id)))
		}
	}
}
