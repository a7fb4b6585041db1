package realtime

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
)

const DefaultBusChannel = "fantasy:events"

// Bus is the cross-instance pub/sub transport, implemented by the Redis signal bus.
type Bus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// BusSink publishes every event on one bus channel. Each instance's relay
// feeds it back into its own hub, this instance included.
type BusSink struct {
	bus     Bus
	channel string
}

func NewBusSink(bus Bus, channel string) *BusSink {
	if channel == "" {
		channel = DefaultBusChannel
	}
	return &BusSink{bus: bus, channel: channel}
}

func (s *BusSink) Deliver(ctx context.Context, _ string, payload []byte) error {
	return s.bus.Publish(ctx, s.channel, payload)
}

type topicHeader struct {
	Topic string `json:"topic"`
}

// Relay copies bus messages into the hub until ctx ends or the subscription
// closes.
func Relay(ctx context.Context, bus Bus, channel string, hub *Hub, logger *logging.Logger) error {
	if logger == nil {
		logger = logging.Default()
	}
	if channel == "" {
		channel = DefaultBusChannel
	}

	messages, err := bus.Subscribe(ctx, channel)
	if err != nil {
		return err
	}
	logger.Info("realtime relay subscribed", "channel", channel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case payload, ok := <-messages:
			if !ok {
				logger.Warn("realtime relay subscription closed", "channel", channel)
				return nil
			}
			var header topicHeader
			if err := sonic.Unmarshal(payload, &header); err != nil || header.Topic == "" {
				logger.Warn("realtime relay skipped malformed event", "channel", channel)
				continue
			}
			_ = hub.Deliver(ctx, header.Topic, payload)
		}
	}
}
