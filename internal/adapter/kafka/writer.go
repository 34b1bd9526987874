package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-radar/internal/config"
	"github.com/couchcryptid/storm-radar/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes snapshot summaries to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured snapshot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSnapshotTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishSnapshot writes one summary message for resp.
func (w *Writer) PublishSnapshot(ctx context.Context, resp domain.Response) error {
	msg, err := serializeToMessage(domain.Summarize(resp))
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write snapshot event: %w", err)
	}
	w.logger.Debug("snapshot event published", "topic", w.writer.Topic, "points", resp.Metadata.TotalPoints)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a summary into a Kafka message keyed by its
// generation time, so events for one snapshot land on one partition.
func serializeToMessage(s domain.SnapshotSummary) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot summary: %w", err)
	}
	generatedAt := s.GeneratedAt.UTC().Format(time.RFC3339)
	return kafkago.Message{
		Key:   []byte(generatedAt),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "data_source", Value: []byte(s.DataSource)},
			{Key: "generated_at", Value: []byte(generatedAt)},
		},
	}, nil
}
