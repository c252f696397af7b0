package eventBus

import (
	"context"
	"testing"

	"github.com/Layr-Labs/rewards-ledger/pkg/eventBus/eventBusTypes"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newConsumer(ctx context.Context, id string, size int) *eventBusTypes.Consumer {
	return &eventBusTypes.Consumer{
		Id:      eventBusTypes.ConsumerId(id),
		Context: ctx,
		Channel: make(chan *eventBusTypes.Event, size),
	}
}

func Test_EventBus(t *testing.T) {
	event := &eventBusTypes.Event{
		Name: eventBusTypes.Event_LedgerEvent,
		Data: &eventBusTypes.LedgerEventData{Kind: 1, KindName: "Claimed"},
	}

	t.Run("Should deliver to subscribed consumers until they unsubscribe", func(t *testing.T) {
		eb := NewEventBus(zap.NewNop())
		consumer := newConsumer(context.Background(), "a", 2)
		eb.Subscribe(consumer)

		eb.Publish(event)
		assert.Len(t, consumer.Channel, 1)
		assert.Equal(t, event, <-consumer.Channel)

		eb.Unsubscribe(consumer)
		eb.Publish(event)
		assert.Len(t, consumer.Channel, 0)
	})
	t.Run("Should drop events for full or cancelled consumers", func(t *testing.T) {
		eb := NewEventBus(zap.NewNop())
		full := newConsumer(context.Background(), "full", 1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cancelled := newConsumer(ctx, "cancelled", 1)
		eb.Subscribe(full)
		eb.Subscribe(cancelled)
		eb.Subscribe(&eventBusTypes.Consumer{Id: "nil-channel"})

		eb.Publish(event)
		eb.Publish(event)
		assert.Len(t, full.Channel, 1)
		assert.Len(t, cancelled.Channel, 0)
	})
}
