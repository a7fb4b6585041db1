// Package feed consumes live score batches from the AMQP score feed and hands
// them to the ingestion worker.
package feed

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
	"github.com/streadway/amqp"
)

type Ingestor interface {
	IngestScores(ctx context.Context, batch usecase.ScoreBatch) (usecase.IngestResult, error)
}

type ConsumerConfig struct {
	URL            string
	Exchange       string
	Queue          string
	RoutingKey     string
	Prefetch       int
	ReconnectDelay time.Duration
	HandleTimeout  time.Duration
}

// Disposition is what happened to a delivery.
type Disposition string

const (
	DispositionAck     Disposition = "ack"
	DispositionReject  Disposition = "reject"
	DispositionRequeue Disposition = "requeue"
)

// Consumer acks a delivery only after the whole batch is ingested. Batches that
// can never succeed are rejected without requeue; the rest go back on the queue.
type Consumer struct {
	cfg      ConsumerConfig
	ingestor Ingestor
	logger   *logging.Logger
}

func NewConsumer(cfg ConsumerConfig, ingestor Ingestor, logger *logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Exchange == "" {
		cfg.Exchange = "cricket.scores"
	}
	if cfg.Queue == "" {
		cfg.Queue = "fantasy.score-ingestion"
	}
	if cfg.RoutingKey == "" {
		cfg.RoutingKey = "scores.#"
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 16
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.HandleTimeout <= 0 {
		cfg.HandleTimeout = 30 * time.Second
	}
	return &Consumer{cfg: cfg, ingestor: ingestor, logger: logger.Named("feed")}
}

// Run consumes until ctx ends, reconnecting after broker failures.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.logger.WarnContext(ctx, "score feed disconnected, reconnecting",
			"error", err,
			"delay", c.cfg.ReconnectDelay.String(),
		)

		timer := time.NewTimer(c.cfg.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.DialConfig(c.cfg.URL, amqp.Config{
		Heartbeat: 30 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		return errors.Wrap(err, "feed: dial amqp")
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "feed: open channel")
	}
	defer channel.Close()

	if err := channel.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return errors.Wrap(err, "feed: set qos")
	}
	if err := channel.ExchangeDeclare(c.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "feed: declare exchange %s", c.cfg.Exchange)
	}
	queue, err := channel.QueueDeclare(c.cfg.Queue, true, false, false, false, nil)
	if err != nil {
		return errors.Wrapf(err, "feed: declare queue %s", c.cfg.Queue)
	}
	if err := channel.QueueBind(queue.Name, c.cfg.RoutingKey, c.cfg.Exchange, false, nil); err != nil {
		return errors.Wrapf(err, "feed: bind queue %s", queue.Name)
	}

	deliveries, err := channel.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrapf(err, "feed: consume %s", queue.Name)
	}
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	c.logger.InfoContext(ctx, "score feed consuming",
		"exchange", c.cfg.Exchange,
		"queue", queue.Name,
		"routing_key", c.cfg.RoutingKey,
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("feed: connection closed")
			}
			return errors.Wrap(amqpErr, "feed: connection closed")
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("feed: delivery channel closed")
			}
			c.Handle(ctx, delivery)
		}
	}
}

// Handle processes one delivery and settles it with the broker.
func (c *Consumer) Handle(ctx context.Context, delivery amqp.Delivery) Disposition {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HandleTimeout)
	defer cancel()

	disposition, err := c.process(ctx, delivery.Body)

	var ackErr error
	switch disposition {
	case DispositionAck:
		ackErr = delivery.Ack(false)
	case DispositionReject:
		c.logger.WarnContext(ctx, "score batch rejected",
			"message_id", delivery.MessageId,
			"routing_key", delivery.RoutingKey,
			"error", err,
		)
		ackErr = delivery.Reject(false)
	default:
		c.logger.WarnContext(ctx, "score batch requeued",
			"message_id", delivery.MessageId,
			"routing_key", delivery.RoutingKey,
			"error", err,
		)
		ackErr = delivery.Nack(false, true)
	}
	if ackErr != nil {
		c.logger.ErrorContext(ctx, "settle delivery failed", "disposition", disposition, "error", ackErr)
	}
	return disposition
}

func (c *Consumer) process(ctx context.Context, body []byte) (Disposition, error) {
	batch, err := DecodeScoreMessage(body, "")
	if err != nil {
		return DispositionReject, err
	}

	result, err := c.ingestor.IngestScores(ctx, batch)
	if err != nil {
		if permanent(err) {
			return DispositionReject, err
		}
		return DispositionRequeue, err
	}

	c.logger.DebugContext(ctx, "score batch ingested",
		"match_id", result.MatchID,
		"players_updated", result.PlayersUpdated,
		"contests_updated", result.ContestsUpdated,
	)
	return DispositionAck, nil
}

func permanent(err error) bool {
	return errors.Is(err, usecase.ErrInvalidInput) ||
		errors.Is(err, usecase.ErrNotFound) ||
		errors.Is(err, usecase.ErrConflict) ||
		errors.Is(err, ErrMalformedMessage)
}
