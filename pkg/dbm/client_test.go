package dbm_test

import (
	"context"
	"fmt"
	"math"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ratio1/dbm_sdk_go/internal/rpcx"
	"github.com/Ratio1/dbm_sdk_go/pkg/dbm"
	"github.com/Ratio1/dbm_sdk_go/pkg/dbm/mock"
)

func TestBasicOperations(t *testing.T) {
	_, d := startMock(t, []mock.Option{mock.WithDBMs(mock.ClassTree, mock.ClassHash)})
	ctx := context.Background()

	echo, st := d.Echo(ctx, "hello")
	requireCode(t, dbm.Success, st)
	require.Equal(t, "hello", echo)

	for _, index := range []int32{0, 1} {
		t.Run(fmt.Sprintf("dbm%d", index), func(t *testing.T) {
			requireCode(t, dbm.Success, d.SetDBMIndex(index))
			requireCode(t, dbm.Success, d.Clear(ctx))

			requireCode(t, dbm.Success, d.Set(ctx, "one", "ichi", false))
			requireCode(t, dbm.DuplicationError, d.Set(ctx, "one", "first", false))
			requireCode(t, dbm.Success, d.Set(ctx, "two", "ni", true))
			requireCode(t, dbm.Success, d.Set(ctx, "three", "san", true))
			requireCode(t, dbm.Success, d.SetMulti(ctx, true, dbm.KeyValue{Key: "four", Value: "shi"}, dbm.KeyValue{Key: "five", Value: "go"}))

			v, st := d.GetStr(ctx, "one")
			requireCode(t, dbm.Success, st)
			require.Equal(t, "ichi", v)
			_, st = d.Get(ctx, "nowhere")
			requireCode(t, dbm.NotFoundError, st)

			count, st := d.Count(ctx)
			requireCode(t, dbm.Success, st)
			require.EqualValues(t, 5, count)
			size, st := d.FileSize(ctx)
			requireCode(t, dbm.Success, st)
			require.Greater(t, size, int64(0))

			records, st := d.GetMultiStr(ctx, "one", "two", "nowhere")
			requireCode(t, dbm.NotFoundError, st)
			require.Equal(t, map[string]string{"one": "ichi", "two": "ni"}, records)

			requireCode(t, dbm.Success, d.Remove(ctx, "one"))
			requireCode(t, dbm.NotFoundError, d.Remove(ctx, "one"))
			requireCode(t, dbm.NotFoundError, d.RemoveMulti(ctx, "two", "one"))
			requireCode(t, dbm.Success, d.RemoveMulti(ctx, "two", "three"))
			count, _ = d.Count(ctx)
			require.EqualValues(t, 2, count)

			requireCode(t, dbm.Success, d.Append(ctx, "four", "yon", ":"))
			requireCode(t, dbm.Success, d.AppendMulti(ctx, ",", dbm.KeyValue{Key: "five", Value: "itsutsu"}, dbm.KeyValue{Key: "six", Value: "roku"}))
			v, _ = d.GetStr(ctx, "four")
			require.Equal(t, "shi:yon", v)
			v, _ = d.GetStr(ctx, "five")
			require.Equal(t, "go,itsutsu", v)
			v, _ = d.GetStr(ctx, "six")
			require.Equal(t, "roku", v)

			requireCode(t, dbm.Success, d.CompareExchange(ctx, "cx", dbm.Absent(), dbm.Present("a")))
			requireCode(t, dbm.InfeasibleError, d.CompareExchange(ctx, "cx", dbm.Absent(), dbm.Present("b")))
			requireCode(t, dbm.Success, d.CompareExchange(ctx, "cx", dbm.Present("a"), dbm.Present("")))
			v, st = d.GetStr(ctx, "cx")
			requireCode(t, dbm.Success, st)
			require.Equal(t, "", v)
			requireCode(t, dbm.Success, d.CompareExchange(ctx, "cx", dbm.Present(""), dbm.Absent()))
			_, st = d.Get(ctx, "cx")
			requireCode(t, dbm.NotFoundError, st)

			requireCode(t, dbm.Success, d.CompareExchangeMulti(ctx,
				[]dbm.RecordState{{Key: "six", Value: dbm.Present("roku")}, {Key: "seven", Value: dbm.Absent()}},
				[]dbm.RecordState{{Key: "six", Value: dbm.Absent()}, {Key: "seven", Value: dbm.Present("shichi")}}))
			requireCode(t, dbm.InfeasibleError, d.CompareExchangeMulti(ctx,
				[]dbm.RecordState{{Key: "six", Value: dbm.Present("roku")}},
				[]dbm.RecordState{{Key: "six", Value: dbm.Absent()}}))
			v, _ = d.GetStr(ctx, "seven")
			require.Equal(t, "shichi", v)

			n, st := d.Increment(ctx, "num", 5, 100)
			requireCode(t, dbm.Success, st)
			require.EqualValues(t, 105, n)
			n, _ = d.Increment(ctx, "num", -5, 100)
			require.EqualValues(t, 100, n)
			n, _ = d.Increment(ctx, "num", math.MinInt64, 0)
			require.EqualValues(t, 100, n)
			raw, _ := d.Get(ctx, "num")
			require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 100}, raw)

			requireCode(t, dbm.Success, d.Rebuild(ctx, map[string]string{"num_buckets": "1000"}))
			tobe, st := d.ShouldBeRebuilt(ctx)
			requireCode(t, dbm.Success, st)
			require.False(t, tobe)
			requireCode(t, dbm.Success, d.Synchronize(ctx, false, nil))
		})
	}
}

func TestInspect(t *testing.T) {
	_, d := startMock(t, []mock.Option{mock.WithDBMs(mock.ClassTree, mock.ClassHash)})
	ctx := context.Background()
	require.True(t, d.Set(ctx, "k", "v", true).IsOK())

	props, st := d.Inspect(ctx)
	requireCode(t, dbm.Success, st)
	require.Equal(t, "TreeDBM", props["class"])
	require.Equal(t, "1", props["num_records"])

	d.SetDBMIndex(-1)
	props, st = d.Inspect(ctx)
	requireCode(t, dbm.Success, st)
	require.Equal(t, "2", props["num_dbms"])
	require.Equal(t, mock.Version, props["version"])
}

func TestSearch(t *testing.T) {
	_, d := startMock(t, nil)
	ctx := context.Background()
	for i := 1; i <= 100; i++ {
		require.True(t, d.Set(ctx, fmt.Sprint(i), fmt.Sprint(i*i), true).IsOK())
	}
	keys, st := d.SearchStr(ctx, "contain", "1", 0)
	requireCode(t, dbm.Success, st)
	require.Len(t, keys, 20)
	keys, _ = d.SearchStr(ctx, "begin", "1", 0)
	require.Len(t, keys, 12)
	keys, _ = d.SearchStr(ctx, "end", "1", 0)
	require.Len(t, keys, 10)
	keys, _ = d.SearchStr(ctx, "regex", "^\\d+1$", 0)
	require.Len(t, keys, 9)
	keys, _ = d.SearchStr(ctx, "regex", "^\\d+1$", 5)
	require.Len(t, keys, 5)
	keys, _ = d.SearchStr(ctx, "edit", "1", 0)
	require.Len(t, keys, 100)
	require.Equal(t, "1", keys[0])
	keys, _ = d.SearchStr(ctx, "editbin", "100", 2)
	require.Equal(t, []string{"100", "10"}, keys)

	_, st = d.SearchStr(ctx, "bogus", "x", 0)
	requireCode(t, dbm.InvalidArgumentError, st)
}

func TestOutOfRangeIndex(t *testing.T) {
	_, d := startMock(t, nil)
	requireCode(t, dbm.Success, d.SetDBMIndex(5))
	st := d.Set(context.Background(), "k", "v", true)
	requireCode(t, dbm.InvalidArgumentError, st)
	require.Contains(t, st.Message, "out of range")

	_, st = d.Inspect(context.Background())
	requireCode(t, dbm.NetworkError, st)
	require.Contains(t, st.Message, "INVALID_ARGUMENT")
}

func TestPreconditionsWithoutConnection(t *testing.T) {
	d, err := dbm.New(dbm.WithLogger(quietLogger()))
	require.NoError(t, err)
	ctx := context.Background()

	st := d.Set(ctx, "k", "v", true)
	requireCode(t, dbm.PreconditionError, st)
	require.Equal(t, "not opened connection", st.Message)
	_, st = d.Get(ctx, "k")
	requireCode(t, dbm.PreconditionError, st)
	_, st = d.Echo(ctx, "x")
	requireCode(t, dbm.PreconditionError, st)
	_, st = d.MakeIterator(ctx)
	requireCode(t, dbm.PreconditionError, st)
	_, st = d.MakePipeline(ctx)
	requireCode(t, dbm.PreconditionError, st)
	requireCode(t, dbm.PreconditionError, d.SetDBMIndex(1))
	requireCode(t, dbm.PreconditionError, d.SetEncoding("utf-8"))
	requireCode(t, dbm.PreconditionError, d.Disconnect())
	require.NoError(t, d.Close())
	require.Equal(t, "RemoteDBM: : not connected", d.String())
}

func TestConnectWithoutTimeout(t *testing.T) {
	srv := mock.New(mock.WithLogger(quietLogger()))
	bc := srv.NewBufconn()
	t.Cleanup(bc.Close)
	d, err := dbm.New(dbm.WithLogger(quietLogger()), dbm.WithDialer(bc.Dialer()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	requireCode(t, dbm.Success, d.Connect(context.Background(), mock.BufnetTarget, 0))
	ctx := context.Background()
	requireCode(t, dbm.Success, d.Set(ctx, "k", "v", true))
	got, st := d.GetStr(ctx, "k")
	requireCode(t, dbm.Success, st)
	require.Equal(t, "v", got)
}

func TestConnectLifecycle(t *testing.T) {
	_, d := startMock(t, nil)
	require.True(t, d.Connected())
	require.Equal(t, "RemoteDBM: "+mock.BufnetTarget+": connected", d.String())

	st := d.Connect(context.Background(), mock.BufnetTarget, time.Second)
	requireCode(t, dbm.PreconditionError, st)
	require.Equal(t, "opened connection", st.Message)

	requireCode(t, dbm.Success, d.SetDBMIndex(3))
	requireCode(t, dbm.Success, d.Disconnect())
	require.False(t, d.Connected())
	requireCode(t, dbm.PreconditionError, d.Disconnect())
}

func TestConnectTimeoutLeavesClientUnconnected(t *testing.T) {
	dialer := func(ctx context.Context, _ string) (net.Conn, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	d, err := dbm.New(dbm.WithLogger(quietLogger()), dbm.WithDialer(dialer))
	require.NoError(t, err)

	start := time.Now()
	st := d.Connect(context.Background(), "passthrough:///silent", 200*time.Millisecond)
	requireCode(t, dbm.PreconditionError, st)
	require.Equal(t, "connection timeout", st.Message)
	require.Less(t, time.Since(start), 5*time.Second)
	require.False(t, d.Connected())
}

func TestConnectFailsAfterRetries(t *testing.T) {
	dialer := func(context.Context, string) (net.Conn, error) {
		return nil, fmt.Errorf("refused")
	}
	d, err := dbm.New(
		dbm.WithLogger(quietLogger()),
		dbm.WithDialer(dialer),
		dbm.WithPollPolicy(rpcx.PollPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}),
	)
	require.NoError(t, err)

	st := d.Connect(context.Background(), "passthrough:///refused", 10*time.Second)
	requireCode(t, dbm.PreconditionError, st)
	require.Equal(t, "connection failed", st.Message)
	require.False(t, d.Connected())
}

func TestUnsupportedCompression(t *testing.T) {
	d, err := dbm.New(dbm.WithLogger(quietLogger()), dbm.WithCompression("lz4"))
	require.NoError(t, err)
	st := d.Connect(context.Background(), "localhost:1", time.Second)
	requireCode(t, dbm.NetworkError, st)
	require.False(t, d.Connected())
}

func TestCompressedCalls(t *testing.T) {
	for _, name := range []string{"zstd", "gzip"} {
		t.Run(name, func(t *testing.T) {
			_, d := startMock(t, nil, dbm.WithCompression(name))
			ctx := context.Background()
			value := string(make([]byte, 4096))
			requireCode(t, dbm.Success, d.Set(ctx, "big", value, true))
			got, st := d.GetStr(ctx, "big")
			requireCode(t, dbm.Success, st)
			require.Equal(t, value, got)
		})
	}
}

func TestCallTimeoutBoundsRequests(t *testing.T) {
	_, d := startMock(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := d.Set(ctx, "k", "v", true)
	requireCode(t, dbm.NetworkError, st)
	require.Contains(t, st.Message, "CANCELLED")
}
