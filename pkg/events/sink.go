package events

import (
	"errors"

	"github.com/Layr-Labs/rewards-ledger/pkg/eventBus/eventBusTypes"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

// Sink receives encoded events once their mutation has been committed. An
// error from Emit is reported but never undoes the mutation.
type Sink interface {
	Emit(kind Kind, payload []byte) error
}

// EventBusSink publishes every event to an in-process event bus.
type EventBusSink struct {
	bus eventBusTypes.IEventBus
}

func NewEventBusSink(bus eventBusTypes.IEventBus) *EventBusSink {
	return &EventBusSink{bus: bus}
}

func (s *EventBusSink) Emit(kind Kind, payload []byte) error {
	if s.bus == nil {
		return errors.New("event bus is nil")
	}
	s.bus.Publish(&eventBusTypes.Event{
		Name: eventBusTypes.Event_LedgerEvent,
		Data: &eventBusTypes.LedgerEventData{
			Kind:     uint8(kind),
			KindName: kind.String(),
			Payload:  payload,
		},
	})
	return nil
}

type LoggingSink struct {
	logger *zap.Logger
}

func NewLoggingSink(l *zap.Logger) *LoggingSink {
	return &LoggingSink{logger: l}
}

func (s *LoggingSink) Emit(kind Kind, payload []byte) error {
	s.logger.Sugar().Infow("Ledger event",
		zap.String("kind", kind.String()),
		zap.String("payload", hexutil.Encode(payload)),
	)
	return nil
}

// MultiSink emits to every sink and joins their errors.
type MultiSink []Sink

func (m MultiSink) Emit(kind Kind, payload []byte) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(kind, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
