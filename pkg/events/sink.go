package events

import (
	"context"
	"encoding/json"
)

// Handler processes one delivered event.
type Handler func(ctx context.Context, event Event) error

type Logger interface {
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
}

// AuditHandler writes every event to log.
func AuditHandler(log Logger) Handler {
	return func(_ context.Context, event Event) error {
		log.Info("EVENTS", event.EventType(), map[string]interface{}{
			"data":        event.Payload(),
			"occurred_at": event.Timestamp(),
		})
		return nil
	}
}

// Decode turns an envelope back into an event.
func Decode(data []byte) (BaseEvent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return BaseEvent{}, err
	}
	return BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}, nil
}

// Consume feeds every event on the bus to handle until ctx is done or the bus closes.
func Consume(ctx context.Context, bus *Bus, log Logger, handle Handler) error {
	messages, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			event, err := Decode(msg.Payload)
			if err != nil {
				log.Warn("EVENTS", "Dropping malformed event", map[string]interface{}{"error": err.Error()})
				msg.Ack()
				continue
			}
			if err := handle(msg.Context(), event); err != nil {
				log.Warn("EVENTS", "Event handler failed", map[string]interface{}{"type": event.Type, "error": err.Error()})
			}
			msg.Ack()
		}
	}()

	return nil
}
