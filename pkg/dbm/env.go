package dbm

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envAddress     = "DBM_ADDRESS"
	envTimeout     = "DBM_TIMEOUT"
	envIndex       = "DBM_INDEX"
	envEncoding    = "DBM_ENCODING"
	envCompression = "DBM_COMPRESSION"

	// DefaultAddress is the port the server listens on out of the box.
	DefaultAddress = "localhost:1978"
)

// Config holds connection settings read from the environment.
type Config struct {
	Address     string
	Timeout     time.Duration
	DBMIndex    int32
	Encoding    string
	Compression string
}

// ConfigFromEnv reads DBM_ADDRESS, DBM_TIMEOUT (seconds or a Go duration,
// negative for unlimited), DBM_INDEX, DBM_ENCODING and DBM_COMPRESSION.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Address:     strings.TrimSpace(os.Getenv(envAddress)),
		Timeout:     -1,
		Encoding:    strings.TrimSpace(os.Getenv(envEncoding)),
		Compression: strings.TrimSpace(os.Getenv(envCompression)),
	}
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	if raw := strings.TrimSpace(os.Getenv(envTimeout)); raw != "" {
		d, err := parseTimeout(raw)
		if err != nil {
			return Config{}, fmt.Errorf("dbm: invalid %s: %w", envTimeout, err)
		}
		cfg.Timeout = d
	}
	if raw := strings.TrimSpace(os.Getenv(envIndex)); raw != "" {
		i, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return Config{}, fmt.Errorf("dbm: invalid %s: %w", envIndex, err)
		}
		cfg.DBMIndex = int32(i)
	}
	return cfg, nil
}

func parseTimeout(raw string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs < 0 {
			return -1, nil
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(raw)
}

// Open connects using cfg and applies its index and encoding.
func Open(ctx context.Context, cfg Config, opts ...Option) (*RemoteDBM, error) {
	if cfg.Compression != "" {
		opts = append([]Option{WithCompression(cfg.Compression)}, opts...)
	}
	d, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := d.Connect(ctx, cfg.Address, cfg.Timeout).Err(); err != nil {
		return nil, err
	}
	if cfg.DBMIndex != 0 {
		d.SetDBMIndex(cfg.DBMIndex)
	}
	if cfg.Encoding != "" {
		d.SetEncoding(cfg.Encoding)
	}
	return d, nil
}

// NewFromEnv is Open with ConfigFromEnv.
func NewFromEnv(ctx context.Context, opts ...Option) (*RemoteDBM, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return Open(ctx, cfg, opts...)
}
