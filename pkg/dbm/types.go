package dbm

import "github.com/Ratio1/dbm_sdk_go/internal/wire"

// KeyValue is one record in a batch write. Keys and values are binary-safe.
type KeyValue struct {
	Key   string
	Value string
}

// Optional is a value that may be absent. It distinguishes an absent record
// from a record holding the empty string.
type Optional struct {
	value   string
	present bool
}

// Present wraps an existing value.
func Present(value string) Optional {
	return Optional{value: value, present: true}
}

// Absent denotes a missing record.
func Absent() Optional {
	return Optional{}
}

func (o Optional) IsPresent() bool {
	return o.present
}

// Value returns the wrapped value and whether it is present.
func (o Optional) Value() (string, bool) {
	return o.value, o.present
}

// RecordState is an expected or desired record for CompareExchangeMulti.
type RecordState struct {
	Key   string
	Value Optional
}

// ReplicationOp is the kind of update in a ReplicationEvent.
type ReplicationOp = wire.ReplicateOp

const (
	ReplicationNoop   = wire.ReplicateNoop
	ReplicationSet    = wire.ReplicateSet
	ReplicationRemove = wire.ReplicateRemove
	ReplicationClear  = wire.ReplicateClear
)

// ReplicationEvent is one entry of a server's update log.
type ReplicationEvent struct {
	Timestamp int64
	ServerID  int32
	DBMIndex  int32
	Op        ReplicationOp
	Key       []byte
	Value     []byte
}

func toBytesPairs(records []KeyValue) []*wire.BytesPair {
	out := make([]*wire.BytesPair, len(records))
	for i, r := range records {
		out[i] = &wire.BytesPair{First: []byte(r.Key), Second: []byte(r.Value)}
	}
	return out
}

func toRecordStates(records []RecordState) []*wire.RecordState {
	out := make([]*wire.RecordState, len(records))
	for i, r := range records {
		v, ok := r.Value.Value()
		out[i] = &wire.RecordState{Key: []byte(r.Key), Existence: ok, Value: []byte(v)}
	}
	return out
}
