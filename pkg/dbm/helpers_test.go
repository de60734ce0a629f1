package dbm_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/Ratio1/dbm_sdk_go/pkg/dbm"
	"github.com/Ratio1/dbm_sdk_go/pkg/dbm/mock"
)

func quietLogger() *logrus.Logger {
	l, _ := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return l
}

// startMock serves a fresh mock over bufconn and returns a client connected
// to it.
func startMock(t *testing.T, mockOpts []mock.Option, opts ...dbm.Option) (*mock.Server, *dbm.RemoteDBM) {
	t.Helper()
	srv := mock.New(append([]mock.Option{mock.WithLogger(quietLogger())}, mockOpts...)...)
	bc := srv.NewBufconn()
	t.Cleanup(bc.Close)

	opts = append([]dbm.Option{dbm.WithLogger(quietLogger()), dbm.WithDialer(bc.Dialer())}, opts...)
	d, err := dbm.New(opts...)
	require.NoError(t, err)
	require.True(t, d.Connect(context.Background(), mock.BufnetTarget, 5*time.Second).IsOK())
	t.Cleanup(func() { _ = d.Close() })
	return srv, d
}

func requireCode(t *testing.T, want dbm.StatusCode, st *dbm.Status) {
	t.Helper()
	require.Equal(t, want, st.GetCode(), st.String())
}
