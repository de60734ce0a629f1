// Package rpcx opens gRPC channels to a DBM server and waits for them to
// become usable, with bounded retry on transport failures.
package rpcx

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
)

var (
	// ErrConnectTimeout is returned when the channel is not ready before the
	// context deadline.
	ErrConnectTimeout = errors.New("rpcx: connection timeout")
	// ErrConnectFailed is returned once the transport failed MaxRetries times.
	ErrConnectFailed = errors.New("rpcx: connection failed")
)

// PollPolicy controls how long Open keeps trying after transport failures.
type PollPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Jitter     float64
}

// DefaultPollPolicy retries three times and gives up on the fourth transport
// failure.
var DefaultPollPolicy = PollPolicy{
	MaxRetries: 3,
	BaseDelay:  100 * time.Millisecond,
	MaxDelay:   time.Second,
	Jitter:     0.2,
}

// Option configures Open.
type Option func(*config)

type config struct {
	poll        PollPolicy
	dialer      func(context.Context, string) (net.Conn, error)
	compression string
	metrics     *Metrics
	logger      logrus.FieldLogger
	extra       []grpc.DialOption
}

// WithPollPolicy overrides the retry policy used while waiting for READY.
func WithPollPolicy(p PollPolicy) Option {
	return func(c *config) {
		c.poll = p
	}
}

// WithDialer replaces the network dialer, e.g. with a bufconn listener.
func WithDialer(d func(context.Context, string) (net.Conn, error)) Option {
	return func(c *config) {
		if d != nil {
			c.dialer = d
		}
	}
}

// WithCompression compresses every outgoing message with the named
// compressor ("zstd" or "gzip"). An empty name disables compression.
func WithCompression(name string) Option {
	return func(c *config) {
		c.compression = strings.ToLower(strings.TrimSpace(name))
	}
}

// WithMetrics installs the client interceptors of m.
func WithMetrics(m *Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for connection progress.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDialOptions appends raw gRPC dial options.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *config) {
		c.extra = append(c.extra, opts...)
	}
}

// Open creates a channel to target and blocks until it is READY. On every
// failure path the channel is closed before returning. Errors are
// ErrConnectTimeout, ErrConnectFailed or a construction error.
func Open(ctx context.Context, target string, opts ...Option) (*grpc.ClientConn, error) {
	cfg := config{poll: DefaultPollPolicy, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.poll.MaxRetries <= 0 {
		cfg.poll.MaxRetries = DefaultPollPolicy.MaxRetries
	}
	if strings.TrimSpace(target) == "" {
		return nil, errors.New("rpcx: target address is required")
	}

	dialOpts, err := cfg.dialOptions()
	if err != nil {
		return nil, err
	}
	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("rpcx: dial %s: %w", target, err)
	}

	log := cfg.logger.WithField("address", target)
	if err := WaitReady(ctx, conn, cfg.poll, log); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func (c *config) dialOptions() ([]grpc.DialOption, error) {
	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if c.dialer != nil {
		opts = append(opts, grpc.WithContextDialer(c.dialer))
	}
	switch c.compression {
	case "", "none", "identity":
	case "zstd", "gzip":
		opts = append(opts, grpc.WithDefaultCallOptions(grpc.UseCompressor(c.compression)))
	default:
		return nil, fmt.Errorf("rpcx: unsupported compression %q", c.compression)
	}
	if c.metrics != nil {
		opts = append(opts,
			grpc.WithChainUnaryInterceptor(c.metrics.UnaryClientInterceptor()),
			grpc.WithChainStreamInterceptor(c.metrics.StreamClientInterceptor()),
		)
	}
	return append(opts, c.extra...), nil
}

// Conn is the part of *grpc.ClientConn that WaitReady observes.
type Conn interface {
	GetState() connectivity.State
	WaitForStateChange(ctx context.Context, source connectivity.State) bool
	Connect()
	ResetConnectBackoff()
}

// WaitReady polls conn until it is READY. Each TRANSIENT_FAILURE counts as
// one retry until MaxRetries are used up: the channel is asked to reconnect immediately and given one
// backoff period to leave the failed state. SHUTDOWN is terminal.
func WaitReady(ctx context.Context, conn Conn, policy PollPolicy, log logrus.FieldLogger) error {
	backoff := NewBackoff(policy.BaseDelay, policy.MaxDelay, policy.Jitter)
	retries := 0
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			log.WithField("retries", retries).Debug("channel ready")
			return nil
		case connectivity.Idle:
			conn.Connect()
		case connectivity.Shutdown:
			return ErrConnectFailed
		case connectivity.TransientFailure:
			if retries >= policy.MaxRetries {
				log.WithField("retries", retries).Warn("giving up on channel")
				return ErrConnectFailed
			}
			retries++
			log.WithField("retries", retries).Warn("channel failed, retrying")
			conn.ResetConnectBackoff()
			// pick_first stays in TRANSIENT_FAILURE until READY, so a
			// failure that outlasts the backoff counts as the next retry.
			waitChange(ctx, conn, state, backoff.ForAttempt(retries-1))
			if ctx.Err() != nil {
				return ErrConnectTimeout
			}
			continue
		}
		if !conn.WaitForStateChange(ctx, state) {
			return ErrConnectTimeout
		}
	}
}

func waitChange(ctx context.Context, conn Conn, state connectivity.State, d time.Duration) bool {
	wctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return conn.WaitForStateChange(wctx, state)
}
