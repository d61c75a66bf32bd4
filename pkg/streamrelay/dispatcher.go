package streamrelay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/sanchitrk/payment-stream-service/pkg/tracing"
)

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Dispatcher forwards stream records to Kafka, one topic per source stream.
type Dispatcher struct {
	log      *slog.Logger
	producer Producer
	topics   map[string]string
}

func NewDispatcher(log *slog.Logger, producer Producer, topics map[string]string) *Dispatcher {
	return &Dispatcher{log: log, producer: producer, topics: topics}
}

func (d *Dispatcher) Dispatch(ctx context.Context, rec Record) error {
	topic, ok := d.topics[rec.Stream]
	if !ok {
		return fmt.Errorf("no topic mapped for stream %s", rec.Stream)
	}

	payload, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}

	headers := []kafka.Header{
		{Key: "stream", Value: []byte(rec.Stream)},
		{Key: "record_id", Value: []byte(rec.ID)},
	}
	if tp := rec.Field(tracing.TraceparentKey); tp != "" {
		headers = append(headers, kafka.Header{Key: tracing.TraceparentKey, Value: []byte(tp)})
	}

	// key by order so one order's events stay in partition order
	key := rec.Field("orderId")
	if key == "" {
		key = rec.ID
	}

	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   payload,
		Headers: headers,
	}
	if err := d.producer.WriteMessages(ctx, msg); err != nil {
		d.log.Error("relay dispatch failed", "stream", rec.Stream, "record_id", rec.ID, "err", err)
		return err
	}
	d.log.Info("relay dispatched", "stream", rec.Stream, "record_id", rec.ID, "topic", topic)
	return nil
}
