// Package streamid issues the record identifiers used as stream entry keys.
// An identifier is "<millis>-<seq>": epoch milliseconds plus a per-millisecond
// sequence counter. Identifiers from one Generator are unique and
// monotonically increasing, even when the wall clock moves backward.
package streamid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const (
	// seqBits leaves 44 bits for the millisecond timestamp, which holds
	// until the year 2527.
	seqBits     = 20
	maxSeq      = 1<<seqBits - 1
	maxAttempts = 1000
)

// ErrExhausted is returned when the generator cannot produce another
// identifier: either the CAS retry budget was spent under contention or the
// per-millisecond sequence overflowed.
var ErrExhausted = errors.New("streamid: identifier space exhausted")

// ID is a parsed stream record identifier.
type ID struct {
	Millis int64
	Seq    int64
}

func (id ID) String() string {
	return strconv.FormatInt(id.Millis, 10) + "-" + strconv.FormatInt(id.Seq, 10)
}

// Compare orders IDs first by millisecond, then by sequence.
func (id ID) Compare(other ID) int {
	if id.Millis != other.Millis {
		if id.Millis < other.Millis {
			return -1
		}
		return 1
	}
	if id.Seq != other.Seq {
		if id.Seq < other.Seq {
			return -1
		}
		return 1
	}
	return 0
}

// Parse reads an identifier in "<millis>-<seq>" form.
func Parse(s string) (ID, error) {
	millisPart, seqPart, ok := strings.Cut(s, "-")
	if !ok {
		return ID{}, fmt.Errorf("streamid: malformed identifier %q", s)
	}
	millis, err := strconv.ParseInt(millisPart, 10, 64)
	if err != nil || millis < 0 {
		return ID{}, fmt.Errorf("streamid: malformed identifier %q: bad millis", s)
	}
	seq, err := strconv.ParseInt(seqPart, 10, 64)
	if err != nil || seq < 0 {
		return ID{}, fmt.Errorf("streamid: malformed identifier %q: bad sequence", s)
	}
	return ID{Millis: millis, Seq: seq}, nil
}

// Generator hands out identifiers to any number of concurrent callers. The
// last issued (millis, seq) pair is packed into a single atomic word so each
// successful CAS publishes a strictly larger value.
type Generator struct {
	state atomic.Uint64
	now   func() int64
}

// New returns a Generator backed by the system clock.
func New() *Generator {
	return NewWithClock(func() int64 { return time.Now().UnixMilli() })
}

// NewWithClock returns a Generator reading the current epoch millisecond from
// now. Used by tests to simulate clock stalls and regressions.
func NewWithClock(now func() int64) *Generator {
	return &Generator{now: now}
}

// Next returns the next identifier. Within one millisecond the sequence
// counts up from 0; when the clock advances the sequence resets; when the
// clock moves backward the previous millisecond is kept and the sequence
// keeps counting, trading timestamp fidelity for monotonicity.
func (g *Generator) Next() (ID, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		old := g.state.Load()
		lastMillis := int64(old >> seqBits)
		lastSeq := int64(old & maxSeq)
		now := g.now()

		var millis, seq int64
		switch {
		case now > lastMillis:
			millis, seq = now, 0
		case now == lastMillis:
			millis, seq = now, lastSeq+1
		default:
			millis, seq = lastMillis, lastSeq+1
		}
		if seq > maxSeq {
			return ID{}, fmt.Errorf("sequence overflow at %d: %w", millis, ErrExhausted)
		}
		next := uint64(millis)<<seqBits | uint64(seq)
		if g.state.CompareAndSwap(old, next) {
			return ID{Millis: millis, Seq: seq}, nil
		}
	}
	return ID{}, fmt.Errorf("retry budget spent after %d attempts: %w", maxAttempts, ErrExhausted)
}
