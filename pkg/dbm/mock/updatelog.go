package mock

import (
	"sync"
	"time"

	"github.com/Ratio1/dbm_sdk_go/internal/wire"
)

// update is one entry of the replication log.
type update struct {
	timestamp int64
	dbm       int32
	op        wire.ReplicateOp
	key       []byte
	value     []byte
}

// updateLog records every mutation with a strictly increasing millisecond
// timestamp. Readers block on wake, which is closed and replaced on each
// append.
type updateLog struct {
	mu      sync.Mutex
	entries []update
	last    int64
	wake    chan struct{}
	limit   int
}

func newUpdateLog(limit int) *updateLog {
	return &updateLog{wake: make(chan struct{}), limit: limit}
}

func (l *updateLog) append(dbm int32, op wire.ReplicateOp, key, value []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := time.Now().UnixMilli()
	if ts <= l.last {
		ts = l.last + 1
	}
	l.last = ts
	l.entries = append(l.entries, update{
		timestamp: ts,
		dbm:       dbm,
		op:        op,
		key:       append([]byte(nil), key...),
		value:     append([]byte(nil), value...),
	})
	if l.limit > 0 && len(l.entries) > l.limit {
		l.entries = append([]update(nil), l.entries[len(l.entries)-l.limit:]...)
	}
	close(l.wake)
	l.wake = make(chan struct{})
}

// since returns the entries stamped at or after ts, and a channel closed on
// the next append.
func (l *updateLog) since(ts int64) ([]update, <-chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []update
	for i, e := range l.entries {
		if e.timestamp >= ts {
			out = append(out, l.entries[i:]...)
			break
		}
	}
	return out, l.wake
}

func (l *updateLog) latest() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}
