package rpcx

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
)

// Metrics counts client calls per method and outcome.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	streams  *prometheus.CounterVec
}

// NewMetrics registers the client collectors on reg. Collectors that are
// already registered, e.g. by another client sharing reg, are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dbm_client_calls_total",
			Help: "Unary calls issued to the DBM service.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dbm_client_call_duration_seconds",
			Help:    "Latency of unary calls to the DBM service.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"method"}),
		streams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dbm_client_streams_total",
			Help: "Streams opened to the DBM service.",
		}, []string{"method", "code"}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.calls, err = register(reg, m.calls); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.streams, err = register(reg, m.streams); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// UnaryClientInterceptor records count and latency of every unary call.
func (m *Metrics) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		name := shortMethod(method)
		m.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		m.calls.WithLabelValues(name, outcome(err)).Inc()
		return err
	}
}

// StreamClientInterceptor counts stream openings.
func (m *Metrics) StreamClientInterceptor() grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		s, err := streamer(ctx, desc, cc, method, opts...)
		m.streams.WithLabelValues(shortMethod(method), outcome(err)).Inc()
		return s, err
	}
}

func outcome(err error) string {
	if err == nil {
		return "OK"
	}
	return CodeName(Normalize(err).Code)
}

func shortMethod(full string) string {
	if i := strings.LastIndexByte(full, '/'); i >= 0 {
		return full[i+1:]
	}
	return full
}
