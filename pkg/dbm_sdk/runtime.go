package dbm_sdk

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Ratio1/dbm_sdk_go/internal/devseed"
	"github.com/Ratio1/dbm_sdk_go/pkg/dbm"
	"github.com/Ratio1/dbm_sdk_go/pkg/dbm/mock"
)

const (
	envMode     = "DBM_RUNTIME_MODE"
	envAddress  = "DBM_ADDRESS"
	envMockSeed = "DBM_MOCK_SEED"
	envMockDBMs = "DBM_MOCK_DBMS"
	modeAuto    = "auto"
	modeGRPC    = "grpc"
	modeMock    = "mock"

	mockConnectTimeout = 5 * time.Second
)

// NewFromEnv returns a connected client, the resolved mode ("grpc" or
// "mock") and a function releasing the client and, in mock mode, the
// in-process server.
func NewFromEnv(ctx context.Context, opts ...dbm.Option) (*dbm.RemoteDBM, string, func() error, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(envMode)))
	address := strings.TrimSpace(os.Getenv(envAddress))

	switch mode {
	case "", modeAuto:
		if address != "" {
			return newGRPCClient(ctx, opts)
		}
		return newMockClient(ctx, opts)
	case modeGRPC:
		if address == "" {
			return nil, "", nil, fmt.Errorf("dbm_sdk: grpc mode requires %s", envAddress)
		}
		return newGRPCClient(ctx, opts)
	case modeMock:
		return newMockClient(ctx, opts)
	default:
		return nil, "", nil, fmt.Errorf("dbm_sdk: unsupported %s value %q", envMode, mode)
	}
}

func newGRPCClient(ctx context.Context, opts []dbm.Option) (*dbm.RemoteDBM, string, func() error, error) {
	d, err := dbm.NewFromEnv(ctx, opts...)
	if err != nil {
		return nil, "", nil, fmt.Errorf("dbm_sdk: init grpc client: %w", err)
	}
	return d, modeGRPC, d.Close, nil
}

func newMockClient(ctx context.Context, opts []dbm.Option) (*dbm.RemoteDBM, string, func() error, error) {
	classes, err := parseClasses(os.Getenv(envMockDBMs))
	if err != nil {
		return nil, "", nil, err
	}
	srv := mock.New(mock.WithDBMs(classes...))
	if path := strings.TrimSpace(os.Getenv(envMockSeed)); path != "" {
		records, err := devseed.LoadSeed(path)
		if err != nil {
			return nil, "", nil, fmt.Errorf("dbm_sdk: load mock seed: %w", err)
		}
		if err := srv.Seed(records); err != nil {
			return nil, "", nil, fmt.Errorf("dbm_sdk: apply mock seed: %w", err)
		}
	}

	bc := srv.NewBufconn()
	d, err := dbm.New(append(opts, dbm.WithDialer(bc.Dialer()))...)
	if err != nil {
		bc.Close()
		return nil, "", nil, fmt.Errorf("dbm_sdk: init mock client: %w", err)
	}
	if err := d.Connect(ctx, mock.BufnetTarget, mockConnectTimeout).Err(); err != nil {
		bc.Close()
		return nil, "", nil, fmt.Errorf("dbm_sdk: connect mock: %w", err)
	}
	closeFn := func() error {
		defer bc.Close()
		return d.Close()
	}
	return d, modeMock, closeFn, nil
}

// parseClasses reads a comma separated list of "tree" and "hash".
func parseClasses(raw string) ([]mock.Class, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []mock.Class
	for _, part := range strings.Split(raw, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "tree":
			out = append(out, mock.ClassTree)
		case "hash":
			out = append(out, mock.ClassHash)
		default:
			return nil, fmt.Errorf("dbm_sdk: unsupported %s entry %q", envMockDBMs, part)
		}
	}
	return out, nil
}
