package dbm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Ratio1/dbm_sdk_go/internal/bridge"
	"github.com/Ratio1/dbm_sdk_go/internal/wire"
)

// Pipeline sends single-record operations over one Stream call, saving the
// per-call setup of unary requests. Like Iterator it carries one request at
// a time and is not safe for concurrent use.
type Pipeline struct {
	dbm    *RemoteDBM
	bridge *bridge.Bridge[*wire.StreamRequest, *wire.StreamResponse]
	log    logrus.FieldLogger
}

// MakePipeline opens a Stream call.
func (d *RemoteDBM) MakePipeline(ctx context.Context) (*Pipeline, *Status) {
	s, st := d.session()
	if st != nil {
		return nil, st
	}
	sctx, cancel := s.context(ctx)
	stream, err := s.stub.Stream(sctx)
	if err != nil {
		cancel()
		return nil, networkStatus(err)
	}
	p := &Pipeline{
		dbm:    d,
		bridge: bridge.New[*wire.StreamRequest, *wire.StreamResponse](stream, cancel),
		log:    s.logger.WithField("pipeline", uuid.NewString()),
	}
	p.log.Debug("pipeline opened")
	return p, NewStatus(Success)
}

// Close ends the stream. It is idempotent and safe on a nil Pipeline.
func (p *Pipeline) Close() {
	if p == nil || p.bridge == nil || p.bridge.Closed() {
		return
	}
	p.bridge.Close()
	p.log.Debug("pipeline closed")
}

func (p *Pipeline) call(req *wire.StreamRequest) (*wire.StreamResponse, *Status) {
	if p == nil || p.bridge == nil {
		return nil, NewStatus(PreconditionError, "not opened pipeline")
	}
	resp, err := p.bridge.Call(req)
	if errors.Is(err, bridge.ErrClosed) {
		return nil, NewStatus(PreconditionError, "closed pipeline")
	}
	if err != nil {
		return nil, networkStatus(err)
	}
	return resp, nil
}

func (p *Pipeline) index() int32 {
	i, _ := p.dbm.cursorState()
	return i
}

func mismatch() *Status {
	return NewStatus(BrokenDataError, "mismatched stream response")
}

// Echo round-trips message through the stream.
func (p *Pipeline) Echo(message string) (string, *Status) {
	resp, st := p.call(&wire.StreamRequest{Echo: &wire.EchoRequest{Message: message}})
	if st != nil {
		return "", st
	}
	if resp.Echo == nil {
		return "", mismatch()
	}
	return resp.Echo.Echo, NewStatus(Success)
}

// Get returns the value of key.
func (p *Pipeline) Get(key string) ([]byte, *Status) {
	resp, st := p.call(&wire.StreamRequest{Get: &wire.GetRequest{DBMIndex: p.index(), Key: []byte(key)}})
	if st != nil {
		return nil, st
	}
	if resp.Get == nil {
		return nil, mismatch()
	}
	if st := fromProto(resp.Get.GetStatus()); !st.IsOK() {
		return nil, st
	}
	return nonNil(resp.Get.Value), NewStatus(Success)
}

// Set stores value under key.
func (p *Pipeline) Set(key, value string, overwrite bool) *Status {
	resp, st := p.call(&wire.StreamRequest{Set: &wire.SetRequest{
		DBMIndex:  p.index(),
		Key:       []byte(key),
		Value:     []byte(value),
		Overwrite: overwrite,
	}})
	if st != nil {
		return st
	}
	if resp.Set == nil {
		return mismatch()
	}
	return fromProto(resp.Set.GetStatus())
}

// Remove deletes key.
func (p *Pipeline) Remove(key string) *Status {
	resp, st := p.call(&wire.StreamRequest{Remove: &wire.RemoveRequest{DBMIndex: p.index(), Key: []byte(key)}})
	if st != nil {
		return st
	}
	if resp.Remove == nil {
		return mismatch()
	}
	return fromProto(resp.Remove.GetStatus())
}

// Append appends value to the record at key.
func (p *Pipeline) Append(key, value, delim string) *Status {
	resp, st := p.call(&wire.StreamRequest{Append: &wire.AppendRequest{
		DBMIndex: p.index(),
		Key:      []byte(key),
		Value:    []byte(value),
		Delim:    []byte(delim),
	}})
	if st != nil {
		return st
	}
	if resp.Append == nil {
		return mismatch()
	}
	return fromProto(resp.Append.GetStatus())
}

// CompareExchange behaves like RemoteDBM.CompareExchange.
func (p *Pipeline) CompareExchange(key string, expected, desired Optional) *Status {
	ev, eok := expected.Value()
	dv, dok := desired.Value()
	resp, st := p.call(&wire.StreamRequest{CompareExchange: &wire.CompareExchangeRequest{
		DBMIndex:          p.index(),
		Key:               []byte(key),
		ExpectedExistence: eok,
		ExpectedValue:     []byte(ev),
		DesiredExistence:  dok,
		DesiredValue:      []byte(dv),
	}})
	if st != nil {
		return st
	}
	if resp.CompareExchange == nil {
		return mismatch()
	}
	return fromProto(resp.CompareExchange.GetStatus())
}

// Increment behaves like RemoteDBM.Increment.
func (p *Pipeline) Increment(key string, inc, init int64) (int64, *Status) {
	resp, st := p.call(&wire.StreamRequest{Increment: &wire.IncrementRequest{
		DBMIndex:  p.index(),
		Key:       []byte(key),
		Increment: inc,
		Initial:   init,
	}})
	if st != nil {
		return 0, st
	}
	if resp.Increment == nil {
		return 0, mismatch()
	}
	if st := fromProto(resp.Increment.GetStatus()); !st.IsOK() {
		return 0, st
	}
	return resp.Increment.Value, NewStatus(Success)
}
