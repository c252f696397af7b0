// Package eventBusTypes holds the event, consumer and bus types shared by
// publishers and subscribers.
package eventBusTypes

import (
	"context"
	"sync"
)

type EventName string

func (en *EventName) String() string {
	return string(*en)
}

var (
	// Event_LedgerEvent carries a committed ledger result log.
	Event_LedgerEvent EventName = "ledger_event"
)

type Event struct {
	Name EventName
	Data any
}

type ConsumerId string

type Consumer struct {
	Id      ConsumerId
	Context context.Context
	Channel chan *Event
}

// ConsumerList is a mutex guarded list of consumers.
type ConsumerList struct {
	mu        sync.Mutex
	consumers []*Consumer
}

func NewConsumerList() *ConsumerList {
	return &ConsumerList{
		consumers: make([]*Consumer, 0),
	}
}

func (cl *ConsumerList) Add(consumer *Consumer) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.consumers = append(cl.consumers, consumer)
}

// Remove drops the consumer with the same Id.
func (cl *ConsumerList) Remove(consumer *Consumer) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	for i, c := range cl.consumers {
		if c.Id == consumer.Id {
			cl.consumers = append(cl.consumers[:i], cl.consumers[i+1:]...)
			break
		}
	}
}

// GetAll returns a snapshot of the consumers.
func (cl *ConsumerList) GetAll() []*Consumer {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	out := make([]*Consumer, len(cl.consumers))
	copy(out, cl.consumers)
	return out
}

type IEventBus interface {
	Subscribe(consumer *Consumer)
	Unsubscribe(consumer *Consumer)
	// Publish never blocks on a slow consumer.
	Publish(event *Event)
}

// LedgerEventData is the payload of Event_LedgerEvent.
type LedgerEventData struct {
	Kind     uint8
	KindName string
	// Payload is the encoded event, header included.
	Payload []byte
}
