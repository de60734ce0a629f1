package dbm

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/Ratio1/dbm_sdk_go/internal/wire"
)

// Replicator reads the update log of the server.
type Replicator struct {
	stream wire.ReplicateClient
	cancel context.CancelFunc
}

// Replicate subscribes to updates with a timestamp of at least
// minTimestamp. serverID identifies the subscriber to the server; waitTime
// bounds how long the server waits for new updates before ending the stream.
func (d *RemoteDBM) Replicate(ctx context.Context, minTimestamp int64, serverID int32, waitTime time.Duration) (*Replicator, *Status) {
	s, st := d.session()
	if st != nil {
		return nil, st
	}
	sctx, cancel := s.context(ctx)
	stream, err := s.stub.Replicate(sctx, &wire.ReplicateRequest{
		MinTimestamp: minTimestamp,
		ServerID:     serverID,
		WaitTime:     waitTime.Seconds(),
	})
	if err != nil {
		cancel()
		return nil, networkStatus(err)
	}
	return &Replicator{stream: stream, cancel: cancel}, NewStatus(Success)
}

// Next returns the next update. The end of the stream yields
// NOT_FOUND_ERROR.
func (r *Replicator) Next() (*ReplicationEvent, *Status) {
	if r == nil || r.stream == nil {
		return nil, NewStatus(PreconditionError, "not opened replicator")
	}
	resp, err := r.stream.Recv()
	if errors.Is(err, io.EOF) {
		return nil, NewStatus(NotFoundError, "end of stream")
	}
	if err != nil {
		return nil, networkStatus(err)
	}
	if st := fromProto(resp.GetStatus()); !st.IsOK() {
		return nil, st
	}
	return &ReplicationEvent{
		Timestamp: resp.Timestamp,
		ServerID:  resp.ServerID,
		DBMIndex:  resp.DBMIndex,
		Op:        resp.OpType,
		Key:       resp.Key,
		Value:     resp.Value,
	}, NewStatus(Success)
}

// Close abandons the stream. It is safe to call repeatedly.
func (r *Replicator) Close() {
	if r == nil || r.cancel == nil {
		return
	}
	r.cancel()
}
