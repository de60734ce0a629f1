package dbm_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ratio1/dbm_sdk_go/pkg/dbm"
	"github.com/Ratio1/dbm_sdk_go/pkg/dbm/mock"
)

func TestReplicate(t *testing.T) {
	_, d := startMock(t, []mock.Option{mock.WithServerID(1), mock.WithDBMs(mock.ClassTree, mock.ClassTree)})
	ctx := context.Background()
	require.True(t, d.Set(ctx, "a", "1", true).IsOK())
	d.SetDBMIndex(1)
	require.True(t, d.Set(ctx, "b", "2", true).IsOK())
	require.True(t, d.Clear(ctx).IsOK())

	r, st := d.Replicate(ctx, 0, 2, 20*time.Millisecond)
	requireCode(t, dbm.Success, st)
	defer r.Close()

	ev, st := r.Next()
	requireCode(t, dbm.Success, st)
	require.Equal(t, dbm.ReplicationNoop, ev.Op)
	require.EqualValues(t, 1, ev.ServerID)

	var events []*dbm.ReplicationEvent
	for {
		ev, st := r.Next()
		if st.GetCode() == dbm.NotFoundError {
			break
		}
		requireCode(t, dbm.Success, st)
		events = append(events, ev)
	}
	require.Len(t, events, 3)
	require.Equal(t, dbm.ReplicationSet, events[0].Op)
	require.EqualValues(t, 0, events[0].DBMIndex)
	require.Equal(t, "a", string(events[0].Key))
	require.EqualValues(t, 1, events[1].DBMIndex)
	require.Equal(t, dbm.ReplicationClear, events[2].Op)

	// Resume from the last timestamp seen.
	r2, st := d.Replicate(ctx, events[2].Timestamp, 2, 0)
	requireCode(t, dbm.Success, st)
	defer r2.Close()
	_, st = r2.Next()
	requireCode(t, dbm.Success, st)
	ev, st = r2.Next()
	requireCode(t, dbm.Success, st)
	require.Equal(t, dbm.ReplicationClear, ev.Op)
	_, st = r2.Next()
	requireCode(t, dbm.NotFoundError, st)
}

func TestReplicateSelfIsRejected(t *testing.T) {
	_, d := startMock(t, []mock.Option{mock.WithServerID(3)})
	r, st := d.Replicate(context.Background(), 0, 3, 0)
	requireCode(t, dbm.Success, st)
	defer r.Close()
	_, st = r.Next()
	requireCode(t, dbm.NetworkError, st)
}

func TestChangeMaster(t *testing.T) {
	srv, d := startMock(t, nil)
	requireCode(t, dbm.Success, d.ChangeMaster(context.Background(), "db1:1978", 5))
	master, skew := srv.Master()
	require.Equal(t, "db1:1978", master)
	require.EqualValues(t, 5, skew)
}
