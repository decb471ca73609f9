package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/pv-monitoring-etl/internal/config"
	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
	"github.com/goccy/go-json"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes day summaries to the sink topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes day summaries in a single WriteMessages
// call. Summaries are keyed by date so reprocessed days land on one partition.
func (w *Writer) LoadBatch(ctx context.Context, summaries []domain.DaySummary) error {
	if len(summaries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(summaries))
	for i := range summaries {
		msg, err := serializeToMessage(summaries[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d summaries: %w", len(msgs), err)
	}
	w.logger.Debug("published day summaries", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a DaySummary into a Kafka message.
func serializeToMessage(s domain.DaySummary) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize day summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.Date),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "date", Value: []byte(s.Date)},
			{Key: "coefficient", Value: []byte(strconv.FormatFloat(s.Coefficient, 'f', -1, 64))},
			{Key: "processed_at", Value: []byte(s.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
