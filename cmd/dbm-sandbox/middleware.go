package main

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type failConfig struct {
	rate float64
	code codes.Code
}

func parseFailConfig(raw string) (failConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return failConfig{}, nil
	}
	cfg := failConfig{code: codes.Unavailable}
	parts := strings.Split(raw, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keyVal := strings.SplitN(part, "=", 2)
		if len(keyVal) != 2 {
			return failConfig{}, fmt.Errorf("invalid fail segment %q", part)
		}
		val := strings.TrimSpace(keyVal[1])
		switch strings.TrimSpace(keyVal[0]) {
		case "rate":
			rate, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return failConfig{}, err
			}
			if rate < 0 || rate > 1 {
				return failConfig{}, fmt.Errorf("fail rate %v outside [0,1]", rate)
			}
			cfg.rate = rate
		case "code":
			raw := val
			if _, err := strconv.Atoi(val); err != nil {
				raw = strconv.Quote(strings.ToUpper(val))
			}
			if err := cfg.code.UnmarshalJSON([]byte(raw)); err != nil {
				return failConfig{}, err
			}
		default:
			return failConfig{}, fmt.Errorf("unknown fail key %q", keyVal[0])
		}
	}
	return cfg, nil
}

// middleware delays and fails requests before they reach the mock, and
// counts what it served.
type middleware struct {
	delay    time.Duration
	fail     failConfig
	log      logrus.FieldLogger
	requests *prometheus.CounterVec
	injected *prometheus.CounterVec
	roll     func() float64
}

func newMiddleware(delay time.Duration, fail failConfig, reg prometheus.Registerer, log logrus.FieldLogger) *middleware {
	m := &middleware{
		delay: delay,
		fail:  fail,
		log:   log,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dbm_sandbox_requests_total",
			Help: "Requests served by the sandbox.",
		}, []string{"method", "code"}),
		injected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dbm_sandbox_injected_failures_total",
			Help: "Requests failed on purpose.",
		}, []string{"method"}),
		roll: rand.Float64,
	}
	reg.MustRegister(m.requests, m.injected)
	return m
}

func (m *middleware) before(ctx context.Context, method string) error {
	m.log.WithField("method", method).Debug("exec request")
	if m.delay > 0 {
		t := time.NewTimer(m.delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return status.FromContextError(ctx.Err()).Err()
		}
	}
	if m.fail.rate > 0 && m.roll() < m.fail.rate {
		m.injected.WithLabelValues(method).Inc()
		return status.Error(m.fail.code, "failure injected")
	}
	return nil
}

func (m *middleware) done(method string, err error) {
	m.requests.WithLabelValues(method, status.Code(err).String()).Inc()
}

func (m *middleware) unary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if err := m.before(ctx, info.FullMethod); err != nil {
		m.done(info.FullMethod, err)
		return nil, err
	}
	resp, err := handler(ctx, req)
	m.done(info.FullMethod, err)
	return resp, err
}

func (m *middleware) stream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	if err := m.before(ss.Context(), info.FullMethod); err != nil {
		m.done(info.FullMethod, err)
		return err
	}
	err := handler(srv, ss)
	m.done(info.FullMethod, err)
	return err
}
