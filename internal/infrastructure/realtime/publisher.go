package realtime

import (
	"context"
	"sync/atomic"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

// Sink receives encoded events: the local hub, or the Redis bus when several
// API instances serve websocket clients.
type Sink interface {
	Deliver(ctx context.Context, topic string, payload []byte) error
}

type PublisherConfig struct {
	Buffer int
}

// Publisher is the usecase.Broadcaster. Publish only enqueues; Run encodes and
// hands events to the sink. Events that do not fit the buffer are dropped.
type Publisher struct {
	sink    Sink
	events  chan usecase.Event
	dropped atomic.Int64
	logger  *logging.Logger
}

var _ usecase.Broadcaster = (*Publisher)(nil)

func NewPublisher(sink Sink, cfg PublisherConfig, logger *logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1024
	}
	return &Publisher{
		sink:   sink,
		events: make(chan usecase.Event, cfg.Buffer),
		logger: logger.Named("realtime.publisher"),
	}
}

func (p *Publisher) Publish(ctx context.Context, event usecase.Event) {
	select {
	case p.events <- event:
	default:
		total := p.dropped.Add(1)
		p.logger.WarnContext(ctx, "broadcast buffer full, event dropped",
			"type", event.Type,
			"topic", event.Topic,
			"dropped_total", total,
		)
	}
}

func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Run drains the buffer until ctx ends.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-p.events:
			p.deliver(ctx, event)
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event usecase.Event) {
	payload, err := sonic.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "encode realtime event failed", "type", event.Type, "topic", event.Topic, "error", err)
		return
	}
	if err := p.sink.Deliver(ctx, event.Topic, payload); err != nil {
		p.logger.WarnContext(ctx, "deliver realtime event failed", "type", event.Type, "topic", event.Topic, "error", err)
	}
}
