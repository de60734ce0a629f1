package mock_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/Ratio1/dbm_sdk_go/internal/devseed"
	"github.com/Ratio1/dbm_sdk_go/internal/wire"
	"github.com/Ratio1/dbm_sdk_go/pkg/dbm/mock"
)

func startServer(t *testing.T, opts ...mock.Option) (*mock.Server, wire.Client) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	srv := mock.New(append([]mock.Option{mock.WithLogger(logger)}, opts...)...)
	bc := srv.NewBufconn()
	t.Cleanup(bc.Close)

	conn, err := grpc.NewClient(mock.BufnetTarget,
		grpc.WithContextDialer(bc.Dialer()),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return srv, wire.NewClient(conn)
}

func TestInspectServerAndDatabases(t *testing.T) {
	_, c := startServer(t, mock.WithDBMs(mock.ClassTree, mock.ClassHash), mock.WithServerID(9))
	ctx := context.Background()

	resp, err := c.Inspect(ctx, &wire.InspectRequest{DBMIndex: -1})
	require.NoError(t, err)
	props := map[string]string{}
	for _, r := range resp.Records {
		props[r.First] = r.Second
	}
	require.Equal(t, mock.Version, props["version"])
	require.Equal(t, "2", props["num_dbms"])
	require.Equal(t, "9", props["server_id"])

	resp, err = c.Inspect(ctx, &wire.InspectRequest{DBMIndex: 1})
	require.NoError(t, err)
	require.Contains(t, resp.Records, &wire.StringPair{First: "class", Second: "HashDBM"})

	_, err = c.Inspect(ctx, &wire.InspectRequest{DBMIndex: 2})
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestIndexOutOfRange(t *testing.T) {
	_, c := startServer(t)
	resp, err := c.Get(context.Background(), &wire.GetRequest{DBMIndex: 3, Key: []byte("k")})
	require.NoError(t, err)
	require.EqualValues(t, 5, resp.GetStatus().Code)
	require.Equal(t, "dbm_index is out of range", resp.GetStatus().Message)
}

func TestSeed(t *testing.T) {
	srv, c := startServer(t, mock.WithDBMs(mock.ClassTree, mock.ClassTree))
	require.NoError(t, srv.Seed([]devseed.Record{
		{Key: "a", Value: "1"},
		{DBM: 1, Key: "b", ValueB64: "AAE="},
	}))
	require.Error(t, srv.Seed([]devseed.Record{{DBM: 4, Key: "x"}}))

	ctx := context.Background()
	resp, err := c.Get(ctx, &wire.GetRequest{DBMIndex: 1, Key: []byte("b")})
	require.NoError(t, err)
	require.Equal(t, []byte{0, 1}, resp.Value)

	resp, err = c.Get(ctx, &wire.GetRequest{DBMIndex: 0, Key: []byte("a"), OmitValue: true})
	require.NoError(t, err)
	require.EqualValues(t, 0, resp.GetStatus().Code)
	require.Nil(t, resp.Value)
}

func TestGetMultiReportsMissingKeys(t *testing.T) {
	_, c := startServer(t)
	ctx := context.Background()
	_, err := c.Set(ctx, &wire.SetRequest{Key: []byte("a"), Value: []byte("1"), Overwrite: true})
	require.NoError(t, err)

	resp, err := c.GetMulti(ctx, &wire.GetMultiRequest{Keys: [][]byte{[]byte("a"), []byte("b")}})
	require.NoError(t, err)
	require.EqualValues(t, 7, resp.GetStatus().Code)
	require.Len(t, resp.Records, 1)
	require.Equal(t, []byte("a"), resp.Records[0].First)
}

func TestStreamHonoursOmitResponse(t *testing.T) {
	_, c := startServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream, err := c.Stream(ctx)
	require.NoError(t, err)

	require.NoError(t, stream.Send(&wire.StreamRequest{
		Set:          &wire.SetRequest{Key: []byte("k"), Value: []byte("v"), Overwrite: true},
		OmitResponse: true,
	}))
	require.NoError(t, stream.Send(&wire.StreamRequest{Get: &wire.GetRequest{Key: []byte("k")}}))
	resp, err := stream.Recv()
	require.NoError(t, err)
	require.NotNil(t, resp.Get)
	require.Equal(t, []byte("v"), resp.Get.Value)

	require.NoError(t, stream.Send(&wire.StreamRequest{Echo: &wire.EchoRequest{Message: "hi"}}))
	resp, err = stream.Recv()
	require.NoError(t, err)
	require.Equal(t, "hi", resp.Echo.Echo)

	require.NoError(t, stream.CloseSend())
	_, err = stream.Recv()
	require.ErrorIs(t, err, io.EOF)
}

func TestIterateResetsOnIndexChange(t *testing.T) {
	srv, c := startServer(t, mock.WithDBMs(mock.ClassTree, mock.ClassTree))
	require.NoError(t, srv.Seed([]devseed.Record{{Key: "a"}, {DBM: 1, Key: "z"}}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream, err := c.Iterate(ctx)
	require.NoError(t, err)

	call := func(req *wire.IterateRequest) *wire.IterateResponse {
		require.NoError(t, stream.Send(req))
		resp, err := stream.Recv()
		require.NoError(t, err)
		return resp
	}
	require.EqualValues(t, 0, call(&wire.IterateRequest{Operation: wire.IterateFirst}).GetStatus().Code)
	require.Equal(t, []byte("a"), call(&wire.IterateRequest{Operation: wire.IterateGet}).Key)

	resp := call(&wire.IterateRequest{DBMIndex: 1, Operation: wire.IterateGet})
	require.EqualValues(t, 7, resp.GetStatus().Code)
	call(&wire.IterateRequest{DBMIndex: 1, Operation: wire.IterateFirst})
	require.Equal(t, []byte("z"), call(&wire.IterateRequest{DBMIndex: 1, Operation: wire.IterateGet}).Key)

	resp = call(&wire.IterateRequest{DBMIndex: 7, Operation: wire.IterateFirst})
	require.EqualValues(t, 5, resp.GetStatus().Code)
}

func TestReplicateSendsBacklogThenEnds(t *testing.T) {
	_, c := startServer(t, mock.WithServerID(1))
	ctx := context.Background()
	_, err := c.Set(ctx, &wire.SetRequest{Key: []byte("a"), Value: []byte("1"), Overwrite: true})
	require.NoError(t, err)
	_, err = c.Remove(ctx, &wire.RemoveRequest{Key: []byte("a")})
	require.NoError(t, err)

	stream, err := c.Replicate(ctx, &wire.ReplicateRequest{ServerID: 2, WaitTime: 0.05})
	require.NoError(t, err)

	var events []*wire.ReplicateResponse
	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		events = append(events, resp)
	}
	require.Len(t, events, 3)
	require.Equal(t, wire.ReplicateNoop, events[0].OpType)
	require.EqualValues(t, 1, events[0].ServerID)
	require.Equal(t, wire.ReplicateSet, events[1].OpType)
	require.Equal(t, []byte("1"), events[1].Value)
	require.Equal(t, wire.ReplicateRemove, events[2].OpType)
	require.Greater(t, events[2].Timestamp, events[1].Timestamp)
}

func TestReplicateWaitsForNewUpdates(t *testing.T) {
	_, c := startServer(t)
	ctx := context.Background()
	stream, err := c.Replicate(ctx, &wire.ReplicateRequest{ServerID: 2, WaitTime: 5})
	require.NoError(t, err)
	first, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, wire.ReplicateNoop, first.OpType)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = c.Clear(context.Background(), &wire.ClearRequest{})
	}()
	next, err := stream.Recv()
	require.NoError(t, err)
	require.Equal(t, wire.ReplicateClear, next.OpType)
}

func TestReplicateRejectsSelf(t *testing.T) {
	_, c := startServer(t, mock.WithServerID(4))
	stream, err := c.Replicate(context.Background(), &wire.ReplicateRequest{ServerID: 4})
	require.NoError(t, err)
	_, err = stream.Recv()
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestChangeMaster(t *testing.T) {
	srv, c := startServer(t)
	resp, err := c.ChangeMaster(context.Background(), &wire.ChangeMasterRequest{Master: "10.0.0.1:1978", TimestampSkew: 30})
	require.NoError(t, err)
	require.EqualValues(t, 0, resp.GetStatus().Code)
	master, skew := srv.Master()
	require.Equal(t, "10.0.0.1:1978", master)
	require.EqualValues(t, 30, skew)
}
