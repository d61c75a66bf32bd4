// Package stream appends payment events to bounded Redis streams.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/sanchitrk/payment-stream-service/pkg/fieldmap"
	"github.com/sanchitrk/payment-stream-service/pkg/streamid"
	"github.com/sanchitrk/payment-stream-service/pkg/tracing"
)

// IDKey is the reserved field carrying the generated identifier inside the
// stored record, so every record is self-describing independent of the log's
// own ordering key.
const IDKey = "id"

// DefaultMaxLen bounds a stream to its three most recent entries unless
// configured otherwise.
const DefaultMaxLen = 3

// PublishError reports that the log rejected an append or the connection
// failed. It is distinct from a payment-processing failure so callers can
// tell "payment failed" from "event bus unavailable".
type PublishError struct {
	Stream string
	Err    error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to stream %s: %v", e.Stream, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Appender is the slice of the Redis client the publisher needs.
type Appender interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// Publisher appends field-mapped records to named streams, assigning each a
// generated identifier and trimming the stream to at most maxLen entries.
type Publisher struct {
	log    *slog.Logger
	rdb    Appender
	gen    *streamid.Generator
	maxLen int64
	approx bool
}

func NewPublisher(log *slog.Logger, rdb Appender, gen *streamid.Generator, maxLen int64, approx bool) *Publisher {
	if maxLen < 1 {
		maxLen = DefaultMaxLen
	}
	return &Publisher{log: log, rdb: rdb, gen: gen, maxLen: maxLen, approx: approx}
}

// Publish encodes payload, assigns the next identifier, and appends the
// record. It returns the identifier the log acknowledged.
func (p *Publisher) Publish(ctx context.Context, stream string, payload any) (streamid.ID, error) {
	if stream == "" {
		return streamid.ID{}, &PublishError{Stream: stream, Err: errors.New("stream name must not be empty")}
	}

	fields, err := fieldmap.Encode(payload)
	if err != nil {
		return streamid.ID{}, err
	}

	id, err := p.gen.Next()
	if err != nil {
		return streamid.ID{}, &PublishError{Stream: stream, Err: err}
	}
	fields[IDKey] = id.String()
	fields = tracing.InjectFieldMap(ctx, fields)

	res, err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     id.String(),
		MaxLen: p.maxLen,
		Approx: p.approx,
		Values: flatten(fields),
	}).Result()
	if err != nil {
		p.log.Error("stream append failed", "stream", stream, "record_id", id.String(), "err", err)
		return streamid.ID{}, &PublishError{Stream: stream, Err: err}
	}

	assigned, err := streamid.Parse(res)
	if err != nil {
		return streamid.ID{}, &PublishError{Stream: stream, Err: fmt.Errorf("log returned malformed id %q: %w", res, err)}
	}

	p.log.Info("published stream record", "stream", stream, "record_id", res)
	return assigned, nil
}

// flatten renders composite field values as JSON strings; stream entries only
// hold scalar field values.
func flatten(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch v.(type) {
		case nil:
			out[k] = ""
		case string, bool, int, int64, float64, json.Number:
			out[k] = v
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				out[k] = fmt.Sprint(v)
				continue
			}
			out[k] = string(raw)
		}
	}
	return out
}
