package messaging

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"
)

var ErrInvalidPayload = errors.New("payload is not valid JSON")

type BrokerAdapter struct {
	broker Broker
	logger zerolog.Logger
}

func NewBrokerAdapter(broker Broker, logger zerolog.Logger) MessageBroker {
	return &BrokerAdapter{broker: broker, logger: logger}
}

func (a *BrokerAdapter) Publish(ctx context.Context, topic string, payload []byte) error {
	if !json.Valid(payload) {
		return ErrInvalidPayload
	}
	return a.broker.Publish(ctx, topic, json.RawMessage(payload))
}

func (a *BrokerAdapter) Close() error {
	return a.broker.Close()
}

// Subscribe runs handler for every message until ctx is done. Handler
// errors are logged and do not stop the subscription.
func (a *BrokerAdapter) Subscribe(ctx context.Context, topic string, handler func([]byte) error) error {
	msgChan, err := a.broker.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgChan {
			if err := handler(msg); err != nil {
				a.logger.Error().Err(err).Str("topic", topic).Msg("message handler failed")
				continue
			}
		}
	}()

	return nil
}
