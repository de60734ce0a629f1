package mock

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"sync"

	"github.com/google/btree"
	"github.com/zeebo/blake3"

	"github.com/Ratio1/dbm_sdk_go/internal/wire"
)

// Class selects how a mock database orders its records.
type Class int

const (
	// ClassTree keeps records in key order and supports every cursor move.
	ClassTree Class = iota
	// ClassHash keeps records in hash order. Reverse moves and bounded jumps
	// are not implemented and Jump needs an exact key.
	ClassHash
)

func (c Class) String() string {
	if c == ClassHash {
		return "HashDBM"
	}
	return "TreeDBM"
}

// Ordered reports whether the class iterates in key order.
func (c Class) Ordered() bool {
	return c == ClassTree
}

// Status codes as they travel on the wire.
const (
	codeSuccess           int32 = 0
	codeNotImplemented    int32 = 3
	codeInvalidArgument   int32 = 5
	codeNotFound          int32 = 7
	codeInfeasible        int32 = 9
	codeDuplication       int32 = 10
	recordOverheadInBytes       = 16
	rebuildThreshold            = 1024
)

type record struct {
	order []byte
	key   []byte
	value []byte
}

type database struct {
	index int32
	class Class
	log   *updateLog

	mu       sync.RWMutex
	tree     *btree.BTreeG[record]
	removals int
}

func newDatabase(index int32, class Class, log *updateLog) *database {
	return &database{
		index: index,
		class: class,
		log:   log,
		tree: btree.NewG(16, func(a, b record) bool {
			return bytes.Compare(a.order, b.order) < 0
		}),
	}
}

// orderKey is the btree key of a record key. Hash databases prefix the key
// with part of its BLAKE3 digest, which scatters neighbouring keys.
func (db *database) orderKey(key []byte) []byte {
	if db.class.Ordered() {
		return key
	}
	sum := blake3.Sum256(key)
	return append(sum[:8:8], key...)
}

func (db *database) newRecord(key, value []byte) record {
	k := append([]byte(nil), key...)
	return record{order: db.orderKey(k), key: k, value: append([]byte(nil), value...)}
}

// "locked" helpers below expect db.mu to be held.

func (db *database) lookupLocked(key []byte) (record, bool) {
	return db.tree.Get(record{order: db.orderKey(key)})
}

func (db *database) putLocked(key, value []byte) {
	r := db.newRecord(key, value)
	db.tree.ReplaceOrInsert(r)
	db.log.append(db.index, wire.ReplicateSet, r.key, r.value)
}

func (db *database) deleteLocked(key []byte) bool {
	if _, ok := db.tree.Delete(record{order: db.orderKey(key)}); !ok {
		return false
	}
	db.removals++
	db.log.append(db.index, wire.ReplicateRemove, key, nil)
	return true
}

func (db *database) get(key []byte) ([]byte, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	r, ok := db.lookupLocked(key)
	return r.value, ok
}

func (db *database) set(key, value []byte, overwrite bool) int32 {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.lookupLocked(key); ok && !overwrite {
		return codeDuplication
	}
	db.putLocked(key, value)
	return codeSuccess
}

func (db *database) setMulti(records []*wire.BytesPair, overwrite bool) int32 {
	db.mu.Lock()
	defer db.mu.Unlock()
	code := codeSuccess
	for _, r := range records {
		if _, ok := db.lookupLocked(r.First); ok && !overwrite {
			code = codeDuplication
			continue
		}
		db.putLocked(r.First, r.Second)
	}
	return code
}

func (db *database) remove(key []byte) int32 {
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.deleteLocked(key) {
		return codeNotFound
	}
	return codeSuccess
}

// removeMulti removes nothing unless every key exists.
func (db *database) removeMulti(keys [][]byte) int32 {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, k := range keys {
		if _, ok := db.lookupLocked(k); !ok {
			return codeNotFound
		}
	}
	for _, k := range keys {
		db.deleteLocked(k)
	}
	return codeSuccess
}

func (db *database) appendValue(key, value, delim []byte) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.appendLocked(key, value, delim)
}

func (db *database) appendLocked(key, value, delim []byte) {
	r, ok := db.lookupLocked(key)
	if !ok {
		db.putLocked(key, value)
		return
	}
	joined := make([]byte, 0, len(r.value)+len(delim)+len(value))
	joined = append(joined, r.value...)
	joined = append(joined, delim...)
	joined = append(joined, value...)
	db.putLocked(key, joined)
}

func (db *database) appendMulti(records []*wire.BytesPair, delim []byte) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, r := range records {
		db.appendLocked(r.First, r.Second, delim)
	}
}

func matches(r record, found, wantExist bool, wantValue []byte) bool {
	if !wantExist {
		return !found
	}
	return found && bytes.Equal(r.value, wantValue)
}

func (db *database) compareExchange(req *wire.CompareExchangeRequest) int32 {
	db.mu.Lock()
	defer db.mu.Unlock()
	r, found := db.lookupLocked(req.Key)
	if !matches(r, found, req.ExpectedExistence, req.ExpectedValue) {
		return codeInfeasible
	}
	if req.DesiredExistence {
		db.putLocked(req.Key, req.DesiredValue)
	} else if found {
		db.deleteLocked(req.Key)
	}
	return codeSuccess
}

func (db *database) compareExchangeMulti(expected, desired []*wire.RecordState) int32 {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, e := range expected {
		r, found := db.lookupLocked(e.Key)
		if !matches(r, found, e.Existence, e.Value) {
			return codeInfeasible
		}
	}
	for _, d := range desired {
		if d.Existence {
			db.putLocked(d.Key, d.Value)
		} else {
			db.deleteLocked(d.Key)
		}
	}
	return codeSuccess
}

// increment treats the record as a big-endian signed integer. An increment
// of math.MinInt64 only reads the current value.
func (db *database) increment(key []byte, inc, init int64) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	current := init
	r, found := db.lookupLocked(key)
	if found {
		current = decodeInt(r.value)
	}
	if inc == math.MinInt64 {
		return current
	}
	current += inc
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(current))
	db.putLocked(key, buf[:])
	return current
}

func decodeInt(b []byte) int64 {
	if len(b) > 8 {
		b = b[len(b)-8:]
	}
	var buf [8]byte
	if len(b) > 0 && b[0]&0x80 != 0 && len(b) < 8 {
		for i := range buf {
			buf[i] = 0xff
		}
	}
	copy(buf[8-len(b):], b)
	return int64(binary.BigEndian.Uint64(buf[:]))
}

func (db *database) count() int64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return int64(db.tree.Len())
}

func (db *database) fileSize() int64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	var size int64
	db.tree.Ascend(func(r record) bool {
		size += int64(len(r.key) + len(r.value) + recordOverheadInBytes)
		return true
	})
	return size
}

func (db *database) clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.tree.Clear(false)
	db.removals = 0
	db.log.append(db.index, wire.ReplicateClear, nil, nil)
}

func (db *database) rebuild() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.removals = 0
}

func (db *database) shouldBeRebuilt() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.removals > rebuildThreshold && db.removals > db.tree.Len()
}

func (db *database) properties() []*wire.StringPair {
	count := db.count()
	size := db.fileSize()
	return []*wire.StringPair{
		{First: "class", Second: db.class.String()},
		{First: "num_records", Second: strconv.FormatInt(count, 10)},
		{First: "file_size", Second: strconv.FormatInt(size, 10)},
		{First: "healthy", Second: "true"},
	}
}

// keys returns every key in iteration order.
func (db *database) keys() [][]byte {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([][]byte, 0, db.tree.Len())
	db.tree.Ascend(func(r record) bool {
		out = append(out, r.key)
		return true
	})
	return out
}
