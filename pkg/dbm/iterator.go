package dbm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Ratio1/dbm_sdk_go/internal/bridge"
	"github.com/Ratio1/dbm_sdk_go/internal/wire"
)

// Iterator is a cursor over the records of one database. It owns a single
// Iterate stream for its whole life. An Iterator must not be used by two
// goroutines at once; distinct iterators are independent.
type Iterator struct {
	dbm    *RemoteDBM
	id     uuid.UUID
	bridge *bridge.Bridge[*wire.IterateRequest, *wire.IterateResponse]
	log    logrus.FieldLogger
}

// MakeIterator opens a cursor stream. The stream lives until Close, the
// connection timeout, or the end of ctx, whichever comes first.
func (d *RemoteDBM) MakeIterator(ctx context.Context) (*Iterator, *Status) {
	s, st := d.session()
	if st != nil {
		return nil, st
	}
	sctx, cancel := s.context(ctx)
	stream, err := s.stub.Iterate(sctx)
	if err != nil {
		cancel()
		return nil, networkStatus(err)
	}
	it := &Iterator{
		dbm:    d,
		id:     uuid.New(),
		bridge: bridge.New[*wire.IterateRequest, *wire.IterateResponse](stream, cancel),
	}
	it.log = s.logger.WithField("iterator", it.id.String())
	it.log.Debug("iterator opened")
	return it, NewStatus(Success)
}

// Close ends the stream. It is idempotent and safe on a nil Iterator.
func (it *Iterator) Close() {
	if it == nil || it.bridge == nil || it.bridge.Closed() {
		return
	}
	it.bridge.Close()
	it.log.Debug("iterator closed")
}

func (it *Iterator) String() string {
	if it == nil {
		return "Iterator: <nil>"
	}
	state := "connected"
	if it.bridge == nil || it.bridge.Closed() {
		state = "not connected"
	}
	return fmt.Sprintf("Iterator: %s: %s", it.id, state)
}

func (it *Iterator) call(req *wire.IterateRequest) (*wire.IterateResponse, *Status) {
	if it == nil || it.bridge == nil {
		return nil, NewStatus(PreconditionError, "not opened iterator")
	}
	req.DBMIndex, _ = it.dbm.cursorState()
	resp, err := it.bridge.Call(req)
	if errors.Is(err, bridge.ErrClosed) {
		return nil, NewStatus(PreconditionError, "closed iterator")
	}
	if err != nil {
		return nil, networkStatus(err)
	}
	return resp, fromProto(resp.GetStatus())
}

func (it *Iterator) op(op wire.IterateOp) *Status {
	_, st := it.call(&wire.IterateRequest{Operation: op})
	return st
}

// First moves to the first record. An empty database is not an error.
func (it *Iterator) First() *Status {
	return it.op(wire.IterateFirst)
}

// Last moves to the last record. Unordered databases answer
// NOT_IMPLEMENTED_ERROR.
func (it *Iterator) Last() *Status {
	return it.op(wire.IterateLast)
}

// Jump moves to key, or to the first key after it on ordered databases.
// Unordered databases require an exact match.
func (it *Iterator) Jump(key string) *Status {
	_, st := it.call(&wire.IterateRequest{Operation: wire.IterateJump, Key: []byte(key)})
	return st
}

// JumpLower moves to the last record before key, or at key when inclusive.
// Finding nothing leaves the cursor unpositioned without failing.
func (it *Iterator) JumpLower(key string, inclusive bool) *Status {
	_, st := it.call(&wire.IterateRequest{
		Operation:     wire.IterateJumpLower,
		Key:           []byte(key),
		JumpInclusive: inclusive,
	})
	return st
}

// JumpUpper moves to the first record after key, or at key when inclusive.
func (it *Iterator) JumpUpper(key string, inclusive bool) *Status {
	_, st := it.call(&wire.IterateRequest{
		Operation:     wire.IterateJumpUpper,
		Key:           []byte(key),
		JumpInclusive: inclusive,
	})
	return st
}

// Next advances the cursor. It fails only when the cursor is unpositioned.
func (it *Iterator) Next() *Status {
	return it.op(wire.IterateNext)
}

// Previous moves the cursor back. It fails only when the cursor is
// unpositioned.
func (it *Iterator) Previous() *Status {
	return it.op(wire.IteratePrevious)
}

// Get returns the current record, or NOT_FOUND_ERROR when unpositioned.
func (it *Iterator) Get() (key, value []byte, st *Status) {
	resp, st := it.call(&wire.IterateRequest{Operation: wire.IterateGet})
	if !st.IsOK() {
		return nil, nil, st
	}
	return nonNil(resp.Key), nonNil(resp.Value), st
}

// GetStr is Get with the connection encoding applied.
func (it *Iterator) GetStr() (key, value string, st *Status) {
	k, v, st := it.Get()
	if !st.IsOK() {
		return "", "", st
	}
	_, enc := it.dbm.cursorState()
	return decodeText(enc, k), decodeText(enc, v), st
}

// GetKey returns the current key without transferring the value.
func (it *Iterator) GetKey() ([]byte, *Status) {
	resp, st := it.call(&wire.IterateRequest{Operation: wire.IterateGet, OmitValue: true})
	if !st.IsOK() {
		return nil, st
	}
	return nonNil(resp.Key), st
}

// GetKeyStr is GetKey with the connection encoding applied.
func (it *Iterator) GetKeyStr() (string, *Status) {
	k, st := it.GetKey()
	if !st.IsOK() {
		return "", st
	}
	_, enc := it.dbm.cursorState()
	return decodeText(enc, k), st
}

// GetValue returns the current value without transferring the key.
func (it *Iterator) GetValue() ([]byte, *Status) {
	resp, st := it.call(&wire.IterateRequest{Operation: wire.IterateGet, OmitKey: true})
	if !st.IsOK() {
		return nil, st
	}
	return nonNil(resp.Value), st
}

// GetValueStr is GetValue with the connection encoding applied.
func (it *Iterator) GetValueStr() (string, *Status) {
	v, st := it.GetValue()
	if !st.IsOK() {
		return "", st
	}
	_, enc := it.dbm.cursorState()
	return decodeText(enc, v), st
}

// Set replaces the value of the current record.
func (it *Iterator) Set(value string) *Status {
	_, st := it.call(&wire.IterateRequest{Operation: wire.IterateSet, Value: []byte(value)})
	return st
}

// Remove deletes the current record and moves to the next one.
func (it *Iterator) Remove() *Status {
	return it.op(wire.IterateRemove)
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
