package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photowatermark/internal/config"
)

// fetchBackoff is the pause after a fetch that failed all retries.
const fetchBackoff = 500 * time.Millisecond

// jobHandler defines the interface for handling export job messages.
type jobHandler interface {
	Handle(ctx context.Context, msg kafka.Message) error
}

// Consumer reads export jobs from Kafka and hands them to the job handler.
type Consumer struct {
	client     *wbfkafka.Consumer
	jobHandler jobHandler
	topic      string
	strategy   retry.Strategy
}

// New creates a new Consumer.
// - cfg: Kafka configuration struct
// - s: retry strategy
// - jh: handler for export job messages
func New(cfg *config.Kafka, s retry.Strategy, jh jobHandler) *Consumer {
	return &Consumer{
		client:     wbfkafka.NewConsumer(cfg.Brokers, cfg.Topic, cfg.GroupID),
		jobHandler: jh,
		topic:      cfg.Topic,
		strategy:   s,
	}
}

// Consume continuously fetches messages from Kafka, processes them using the handler,
// and commits offsets after successful processing. It stops gracefully on context
// cancellation and closes the underlying client.
func (c *Consumer) Consume(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		if err := c.client.Close(); err != nil {
			zlog.Logger.Err(err).Msg("failed to close consumer")
			return
		}
		zlog.Logger.Info().Msg("consumer closed")
	}()

	zlog.Logger.Info().
		Str("topic", c.topic).
		Msg("starting consumer")

	for {
		// Exit if context is canceled (graceful shutdown).
		if ctx.Err() != nil {
			zlog.Logger.Info().Msg("shutdown signal received, stopping consumer")
			return
		}

		// Fetch a message from Kafka with retries.
		var msg kafka.Message
		err := retry.Do(func() error {
			var fetchErr error
			msg, fetchErr = c.client.Fetch(ctx)
			return fetchErr
		}, c.strategy)

		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			zlog.Logger.Err(err).Msg("failed to fetch message")
			select {
			case <-ctx.Done():
			case <-time.After(fetchBackoff):
			}
			continue
		}

		if err := c.jobHandler.Handle(ctx, msg); err != nil {
			zlog.Logger.Err(err).
				Str("message", string(msg.Value)).
				Msg("failed to process export job")
			continue
		}

		// Commit the message with retries.
		err = retry.Do(func() error {
			return c.client.Commit(ctx, msg)
		}, c.strategy)
		if err != nil {
			zlog.Logger.Err(err).Msg("failed to commit message after retries")
			continue
		}

		zlog.Logger.Info().
			Int64("offset", msg.Offset).
			Str("key", string(msg.Key)).
			Msg("message handled successfully")
	}
}
