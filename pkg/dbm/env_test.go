package dbm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ratio1/dbm_sdk_go/pkg/dbm"
	"github.com/Ratio1/dbm_sdk_go/pkg/dbm/mock"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"DBM_ADDRESS", "DBM_TIMEOUT", "DBM_INDEX", "DBM_ENCODING", "DBM_COMPRESSION"} {
		t.Setenv(k, "")
	}
	cfg, err := dbm.ConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, dbm.DefaultAddress, cfg.Address)
	require.Equal(t, time.Duration(-1), cfg.Timeout)
	require.EqualValues(t, 0, cfg.DBMIndex)
}

func TestConfigFromEnvValues(t *testing.T) {
	t.Setenv("DBM_ADDRESS", "db:2000")
	t.Setenv("DBM_TIMEOUT", "1.5")
	t.Setenv("DBM_INDEX", "2")
	t.Setenv("DBM_ENCODING", "utf-8")
	t.Setenv("DBM_COMPRESSION", "zstd")
	cfg, err := dbm.ConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, dbm.Config{
		Address:     "db:2000",
		Timeout:     1500 * time.Millisecond,
		DBMIndex:    2,
		Encoding:    "utf-8",
		Compression: "zstd",
	}, cfg)

	t.Setenv("DBM_TIMEOUT", "250ms")
	cfg, err = dbm.ConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, cfg.Timeout)

	t.Setenv("DBM_TIMEOUT", "-3")
	cfg, err = dbm.ConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, time.Duration(-1), cfg.Timeout)
}

func TestConfigFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("DBM_TIMEOUT", "soon")
	_, err := dbm.ConfigFromEnv()
	require.ErrorContains(t, err, "DBM_TIMEOUT")

	t.Setenv("DBM_TIMEOUT", "")
	t.Setenv("DBM_INDEX", "first")
	_, err = dbm.ConfigFromEnv()
	require.ErrorContains(t, err, "DBM_INDEX")
}

func TestOpenAppliesConfig(t *testing.T) {
	srv := mock.New(mock.WithLogger(quietLogger()), mock.WithDBMs(mock.ClassTree, mock.ClassHash))
	bc := srv.NewBufconn()
	defer bc.Close()

	d, err := dbm.Open(context.Background(), dbm.Config{
		Address:  mock.BufnetTarget,
		Timeout:  5 * time.Second,
		DBMIndex: 1,
	}, dbm.WithDialer(bc.Dialer()), dbm.WithLogger(quietLogger()))
	require.NoError(t, err)
	defer d.Close()

	props, st := d.Inspect(context.Background())
	requireCode(t, dbm.Success, st)
	require.Equal(t, "HashDBM", props["class"])
}
