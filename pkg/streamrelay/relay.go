package streamrelay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanchitrk/payment-stream-service/pkg/idempotency"
	"github.com/sanchitrk/payment-stream-service/pkg/tracing"
)

const readCount = 100

// StreamReader is the slice of the Redis client the relay needs.
type StreamReader interface {
	XRead(ctx context.Context, a *redis.XReadArgs) *redis.XStreamSliceCmd
}

// Relay tails a fixed set of streams from the beginning, keeping a per-stream
// cursor of the last delivered record. Restarting resets the cursor; the
// idempotency store suppresses the replayed duplicates.
type Relay struct {
	log      *slog.Logger
	rdb      StreamReader
	dispatch *Dispatcher
	idem     *idempotency.Store
	relayID  string
	streams  []string
	cursors  map[string]string
	block    time.Duration
}

func NewRelay(log *slog.Logger, rdb StreamReader, dispatch *Dispatcher, idem *idempotency.Store, relayID string, streams []string, block time.Duration) *Relay {
	cursors := make(map[string]string, len(streams))
	for _, s := range streams {
		cursors[s] = "0"
	}
	if block <= 0 {
		block = 2 * time.Second
	}
	return &Relay{
		log:      log,
		rdb:      rdb,
		dispatch: dispatch,
		idem:     idem,
		relayID:  relayID,
		streams:  streams,
		cursors:  cursors,
		block:    block,
	}
}

// Run polls until the context is canceled.
func (r *Relay) Run(ctx context.Context) error {
	r.log.Info("relay starting", "relay_id", r.relayID, "streams", r.streams)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("relay stopping", "relay_id", r.relayID)
			return nil
		default:
		}

		if err := r.poll(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			r.log.Error("relay poll failed", "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(r.block):
			}
		}
	}
}

// poll blocks for one XREAD round and delivers whatever arrived.
func (r *Relay) poll(ctx context.Context) error {
	res, err := r.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: r.streamArgs(),
		Count:   readCount,
		Block:   r.block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// block timeout, nothing new
			return nil
		}
		return err
	}

	for _, str := range res {
		for _, msg := range str.Messages {
			if err := r.deliver(ctx, str.Stream, msg); err != nil {
				// cursor stays before this record so the next poll retries it
				return err
			}
			r.cursors[str.Stream] = msg.ID
		}
	}
	return nil
}

func (r *Relay) deliver(ctx context.Context, stream string, msg redis.XMessage) error {
	key := r.idem.Key(stream, msg.ID)
	seen, err := r.idem.Seen(ctx, key)
	if err != nil {
		// deliver anyway: a duplicate beats a lost record
		r.log.Error("dedup check failed", "stream", stream, "record_id", msg.ID, "err", err)
	}
	if seen {
		r.log.Info("duplicate record skipped", "stream", stream, "record_id", msg.ID)
		return nil
	}

	msgCtx := tracing.ExtractFieldMap(ctx, msg.Values)
	rec := Record{Stream: stream, ID: msg.ID, Fields: msg.Values}
	if err := r.dispatch.Dispatch(msgCtx, rec); err != nil {
		r.log.Error("record delivery failed", "stream", stream, "record_id", msg.ID, "err", err)
		return err
	}

	// mark only after Kafka acknowledged the write; a failed mark can at
	// worst produce a duplicate, never a lost record
	if err := r.idem.Mark(ctx, key); err != nil {
		r.log.Error("dedup mark failed", "stream", stream, "record_id", msg.ID, "err", err)
	}
	return nil
}

// streamArgs renders the XREAD Streams argument: names first, then the
// matching cursors.
func (r *Relay) streamArgs() []string {
	args := make([]string, 0, 2*len(r.streams))
	args = append(args, r.streams...)
	for _, s := range r.streams {
		args = append(args, r.cursors[s])
	}
	return args
}
