package producer

import (
	"context"
	"encoding/json"
	"fmt"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"

	"github.com/aliskhannn/photowatermark/internal/config"
	"github.com/aliskhannn/photowatermark/internal/model"
)

// Producer publishes export jobs to Kafka.
type Producer struct {
	client   *wbfkafka.Producer
	strategy retry.Strategy
}

// New creates a new Producer.
// - cfg: Kafka configuration struct
// - s: retry strategy
func New(cfg *config.Kafka, s retry.Strategy) *Producer {
	return &Producer{
		client:   wbfkafka.NewProducer(cfg.Brokers, cfg.Topic),
		strategy: s,
	}
}

// Produce serializes the job to JSON and sends it to Kafka.
// The job ID is used as the message key for partitioning and ordering.
func (p *Producer) Produce(ctx context.Context, job model.ExportJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal export job: %w", err)
	}

	key := []byte(job.ID.String())

	if err = p.client.SendWithRetry(ctx, p.strategy, key, data); err != nil {
		return fmt.Errorf("failed to send export job: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying Kafka writer.
func (p *Producer) Close() error {
	return p.client.Close()
}
