// Package bridge turns a duplex stream into a synchronous request/response
// API. A pump goroutine pulls requests out of a single-slot mailbox and writes
// them to the outgoing half; Call deposits one request and blocks on exactly
// one response from the incoming half.
package bridge

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ratio1/dbm_sdk_go/internal/mailbox"
)

// ErrClosed is returned by Call after Close.
var ErrClosed = errors.New("bridge: closed")

// closeGrace bounds how long Close waits for a graceful half-close before
// cancelling the stream.
const closeGrace = 500 * time.Millisecond

// Stream is the subset of a bidirectional gRPC stream used by the bridge.
type Stream[Req, Resp any] interface {
	Send(Req) error
	Recv() (Resp, error)
	CloseSend() error
}

// Bridge serialises calls over one stream. It is not safe for concurrent
// Calls: at most one request may be in flight.
type Bridge[Req, Resp any] struct {
	stream Stream[Req, Resp]
	box    *mailbox.Mailbox[Req]
	cancel context.CancelFunc
	done   chan struct{}

	closed    atomic.Bool
	closeOnce sync.Once
}

// New starts the pump for stream. cancel must abort the stream's context; it
// is invoked when sending fails and on Close.
func New[Req, Resp any](stream Stream[Req, Resp], cancel context.CancelFunc) *Bridge[Req, Resp] {
	if cancel == nil {
		cancel = func() {}
	}
	b := &Bridge[Req, Resp]{
		stream: stream,
		box:    mailbox.New[Req](),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go b.pump()
	return b
}

func (b *Bridge[Req, Resp]) pump() {
	defer close(b.done)
	for {
		req, ok := b.box.Wait()
		if !ok {
			_ = b.stream.CloseSend()
			return
		}
		if err := b.stream.Send(req); err != nil && !errors.Is(err, io.EOF) {
			// io.EOF means the stream already ended and Recv reports why.
			// Anything else leaves Recv waiting for a reply that never comes.
			b.cancel()
		}
	}
}

// Call sends req and returns the matching response.
func (b *Bridge[Req, Resp]) Call(req Req) (Resp, error) {
	if b.closed.Load() {
		var zero Resp
		return zero, ErrClosed
	}
	b.box.Deposit(req)
	resp, err := b.stream.Recv()
	b.box.Clear()
	return resp, err
}

// Close terminates the pump and the stream. It never blocks longer than the
// grace period plus stream cancellation, and is safe to call repeatedly.
func (b *Bridge[Req, Resp]) Close() {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		b.box.Close()
		select {
		case <-b.done:
		case <-time.After(closeGrace):
		}
		b.cancel()
		<-b.done
	})
}

// Closed reports whether Close was called.
func (b *Bridge[Req, Resp]) Closed() bool {
	return b.closed.Load()
}
