package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes a compact page event per record, keyed by URL.
type KafkaSink struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaSink creates a sink writing to topic on brokers.
func NewKafkaSink(brokers []string, topic string, logger *slog.Logger) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	if topic == "" {
		return nil, errors.New("no kafka topic configured")
	}
	return NewKafkaSinkWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: false,
	}, logger), nil
}

// NewKafkaSinkWithWriter builds a sink around a custom writer (tests).
func NewKafkaSinkWithWriter(writer messageWriter, logger *slog.Logger) *KafkaSink {
	return &KafkaSink{
		writer: writer,
		logger: logger.With("component", "kafka_sink"),
	}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Store(ctx context.Context, rec *types.PageRecord) error {
	payload, err := json.Marshal(NewIndexRow(rec))
	if err != nil {
		return &types.StorageError{Backend: "kafka", Op: "encode", Err: err}
	}

	msg := kafka.Message{
		Key:   []byte(rec.URL),
		Value: payload,
		Time:  time.Now().UTC(),
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return &types.StorageError{Backend: "kafka", Op: "publish", Err: err}
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
