package streamrelay

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanchitrk/payment-stream-service/pkg/idempotency"
)

type fakeReader struct {
	batches [][]redis.XStream
	args    []*redis.XReadArgs
}

func (f *fakeReader) XRead(_ context.Context, a *redis.XReadArgs) *redis.XStreamSliceCmd {
	f.args = append(f.args, a)
	if len(f.batches) == 0 {
		return redis.NewXStreamSliceCmdResult(nil, redis.Nil)
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return redis.NewXStreamSliceCmdResult(batch, nil)
}

type fakeProducer struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

// fakeDedup answers Exists and SetNX like Redis would, backed by a plain set.
type fakeDedup struct {
	keys map[string]struct{}
}

func (f *fakeDedup) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeDedup) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	if f.keys == nil {
		f.keys = make(map[string]struct{})
	}
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = struct{}{}
	return redis.NewBoolResult(true, nil)
}

func entry(id, orderID string) redis.XMessage {
	return redis.XMessage{ID: id, Values: map[string]any{
		"id":      id,
		"orderId": orderID,
	}}
}

func newTestRelay(reader StreamReader, producer Producer) *Relay {
	return newTestRelayWith(reader, producer, &fakeDedup{})
}

func newTestRelayWith(reader StreamReader, producer Producer, dedup idempotency.Client) *Relay {
	log := slog.New(slog.DiscardHandler)
	dispatch := NewDispatcher(log, producer, map[string]string{
		"PAYMENT_SUCCESS": "payment.success.events",
		"PAYMENT_FAILED":  "payment.failed.events",
	})
	idem := idempotency.NewStore(dedup, time.Minute)
	return NewRelay(log, reader, dispatch, idem, "relay-test", []string{"PAYMENT_SUCCESS", "PAYMENT_FAILED"}, time.Second)
}

func TestPoll_DispatchesRecordsToMappedTopics(t *testing.T) {
	reader := &fakeReader{batches: [][]redis.XStream{{
		{Stream: "PAYMENT_SUCCESS", Messages: []redis.XMessage{entry("1700000000000-0", "ORD1")}},
		{Stream: "PAYMENT_FAILED", Messages: []redis.XMessage{entry("1700000000000-1", "ORD2")}},
	}}}
	producer := &fakeProducer{}
	relay := newTestRelay(reader, producer)

	require.NoError(t, relay.poll(context.Background()))

	require.Len(t, producer.msgs, 2)
	assert.Equal(t, "payment.success.events", producer.msgs[0].Topic)
	assert.Equal(t, []byte("ORD1"), producer.msgs[0].Key)
	assert.Equal(t, "payment.failed.events", producer.msgs[1].Topic)

	var recordID string
	for _, h := range producer.msgs[0].Headers {
		if h.Key == "record_id" {
			recordID = string(h.Value)
		}
	}
	assert.Equal(t, "1700000000000-0", recordID)
}

func TestPoll_AdvancesCursors(t *testing.T) {
	reader := &fakeReader{batches: [][]redis.XStream{{
		{Stream: "PAYMENT_SUCCESS", Messages: []redis.XMessage{
			entry("1700000000000-0", "ORD1"),
			entry("1700000000000-1", "ORD1"),
		}},
	}}}
	relay := newTestRelay(reader, &fakeProducer{})

	require.NoError(t, relay.poll(context.Background()))
	require.NoError(t, relay.poll(context.Background()))

	require.Len(t, reader.args, 2)
	assert.Equal(t, []string{"PAYMENT_SUCCESS", "PAYMENT_FAILED", "0", "0"}, reader.args[0].Streams)
	assert.Equal(t, []string{"PAYMENT_SUCCESS", "PAYMENT_FAILED", "1700000000000-1", "0"}, reader.args[1].Streams)
}

func TestPoll_SkipsDuplicateRecords(t *testing.T) {
	// the same record shows up twice, e.g. after a cursor reset
	dup := entry("1700000000000-0", "ORD1")
	reader := &fakeReader{batches: [][]redis.XStream{
		{{Stream: "PAYMENT_SUCCESS", Messages: []redis.XMessage{dup}}},
		{{Stream: "PAYMENT_SUCCESS", Messages: []redis.XMessage{dup}}},
	}}
	producer := &fakeProducer{}
	relay := newTestRelay(reader, producer)

	require.NoError(t, relay.poll(context.Background()))
	require.NoError(t, relay.poll(context.Background()))

	assert.Len(t, producer.msgs, 1, "duplicate record must be suppressed")
}

func TestPoll_FailedDispatchHoldsCursor(t *testing.T) {
	rec := entry("1700000000000-0", "ORD1")
	reader := &fakeReader{batches: [][]redis.XStream{
		{{Stream: "PAYMENT_SUCCESS", Messages: []redis.XMessage{rec}}},
		{{Stream: "PAYMENT_SUCCESS", Messages: []redis.XMessage{rec}}},
	}}
	producer := &fakeProducer{err: errors.New("broker unreachable")}
	relay := newTestRelay(reader, producer)

	require.Error(t, relay.poll(context.Background()))

	producer.err = nil
	require.NoError(t, relay.poll(context.Background()))

	require.Len(t, reader.args, 2)
	assert.Equal(t, []string{"PAYMENT_SUCCESS", "PAYMENT_FAILED", "0", "0"}, reader.args[1].Streams,
		"cursor must not advance past an undelivered record")
	require.Len(t, producer.msgs, 1)
	assert.Equal(t, []byte("ORD1"), producer.msgs[0].Key)
}

func TestPoll_FailedDispatchIsRedeliveredAfterRestart(t *testing.T) {
	rec := entry("1700000000000-0", "ORD1")
	dedup := &fakeDedup{}

	broken := &fakeProducer{err: errors.New("broker unreachable")}
	relay := newTestRelayWith(&fakeReader{batches: [][]redis.XStream{
		{{Stream: "PAYMENT_SUCCESS", Messages: []redis.XMessage{rec}}},
	}}, broken, dedup)
	require.Error(t, relay.poll(context.Background()))
	assert.Empty(t, broken.msgs)

	// a restarted relay re-reads from the beginning against the same store
	healthy := &fakeProducer{}
	restarted := newTestRelayWith(&fakeReader{batches: [][]redis.XStream{
		{{Stream: "PAYMENT_SUCCESS", Messages: []redis.XMessage{rec}}},
	}}, healthy, dedup)
	require.NoError(t, restarted.poll(context.Background()))

	require.Len(t, healthy.msgs, 1, "a record whose dispatch failed must still be delivered on replay")
	assert.Equal(t, "payment.success.events", healthy.msgs[0].Topic)
}

func TestPoll_BlockTimeoutIsNotAnError(t *testing.T) {
	reader := &fakeReader{}
	relay := newTestRelay(reader, &fakeProducer{})

	require.NoError(t, relay.poll(context.Background()))
}

func TestDispatch_UnmappedStream(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	dispatch := NewDispatcher(log, &fakeProducer{}, map[string]string{})

	err := dispatch.Dispatch(context.Background(), Record{Stream: "UNKNOWN", ID: "1-0"})
	require.Error(t, err)
}

func TestRecord_Field(t *testing.T) {
	rec := Record{Fields: map[string]any{"orderId": "ORD1", "count": 2, "none": nil}}
	assert.Equal(t, "ORD1", rec.Field("orderId"))
	assert.Equal(t, "2", rec.Field("count"))
	assert.Equal(t, "", rec.Field("none"))
	assert.Equal(t, "", rec.Field("missing"))
}
