package mock

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Ratio1/dbm_sdk_go/internal/wire"
)

// BufnetTarget is the dial target to pair with Bufconn.Dialer.
const BufnetTarget = "passthrough:///bufnet"

const bufconnSize = 1 << 20

// NewGRPCServer returns a grpc.Server with s registered. The wire codec is
// forced on every call.
func (s *Server) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ForceServerCodec(wire.Codec{})}, opts...)
	gs := grpc.NewServer(opts...)
	wire.RegisterServer(gs, s)
	return gs
}

// Serve blocks serving lis until the listener fails or ctx ends.
func (s *Server) Serve(ctx context.Context, lis net.Listener, opts ...grpc.ServerOption) error {
	gs := s.NewGRPCServer(opts...)
	stop := context.AfterFunc(ctx, gs.GracefulStop)
	defer stop()
	s.log.WithField("address", lis.Addr().String()).Info("mock dbm serving")
	return gs.Serve(lis)
}

// Bufconn serves a Server over an in-process listener.
type Bufconn struct {
	lis *bufconn.Listener
	gs  *grpc.Server
}

// NewBufconn starts serving s in memory. Close stops it.
func (s *Server) NewBufconn(opts ...grpc.ServerOption) *Bufconn {
	b := &Bufconn{lis: bufconn.Listen(bufconnSize), gs: s.NewGRPCServer(opts...)}
	go func() {
		_ = b.gs.Serve(b.lis)
	}()
	return b
}

// Dialer connects to the in-process listener whatever the address.
func (b *Bufconn) Dialer() func(context.Context, string) (net.Conn, error) {
	return func(ctx context.Context, _ string) (net.Conn, error) {
		return b.lis.DialContext(ctx)
	}
}

// Close stops the server and drops open streams.
func (b *Bufconn) Close() {
	b.gs.Stop()
	_ = b.lis.Close()
}
