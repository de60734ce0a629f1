// Package mock implements the DBM gRPC service in memory. It backs the
// package tests, the sandbox command and the "mock" runtime mode.
package mock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Ratio1/dbm_sdk_go/internal/devseed"
	"github.com/Ratio1/dbm_sdk_go/internal/wire"
)

// Version is reported by Inspect on the server itself.
const Version = "0.1.0-mock"

const defaultLogLimit = 1 << 16

// Server is an in-memory DBM service.
type Server struct {
	id       int32
	log      logrus.FieldLogger
	classes  []Class
	logLimit int

	updates *updateLog
	dbs     []*database

	mu     sync.Mutex
	master string
	skew   int64
}

var _ wire.Server = (*Server)(nil)

// Option configures a Server.
type Option func(*Server)

// WithDBMs creates one database per class, in index order.
func WithDBMs(classes ...Class) Option {
	return func(s *Server) {
		if len(classes) > 0 {
			s.classes = append([]Class(nil), classes...)
		}
	}
}

// WithServerID sets the id announced on replication streams.
func WithServerID(id int32) Option {
	return func(s *Server) {
		s.id = id
	}
}

// WithLogger sets the request logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithUpdateLogLimit caps how many updates are kept for replication.
func WithUpdateLogLimit(n int) Option {
	return func(s *Server) {
		s.logLimit = n
	}
}

// New creates a server with a single ordered database unless WithDBMs says
// otherwise.
func New(opts ...Option) *Server {
	s := &Server{
		id:       1,
		log:      logrus.StandardLogger(),
		classes:  []Class{ClassTree},
		logLimit: defaultLogLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.updates = newUpdateLog(s.logLimit)
	s.dbs = make([]*database, len(s.classes))
	for i, c := range s.classes {
		s.dbs[i] = newDatabase(int32(i), c, s.updates)
	}
	return s
}

// Seed stores records as plain sets. Each record names its database.
func (s *Server) Seed(records []devseed.Record) error {
	for _, r := range records {
		db, st := s.dbm(r.DBM)
		if st != nil {
			return fmt.Errorf("mock dbm: seed key %q: %s", r.Key, st.Message)
		}
		value, err := r.Bytes()
		if err != nil {
			return err
		}
		db.set([]byte(r.Key), value, true)
	}
	return nil
}

// Master returns the address recorded by ChangeMaster and its skew.
func (s *Server) Master() (string, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.master, s.skew
}

func (s *Server) dbm(index int32) (*database, *wire.StatusProto) {
	if index < 0 || int(index) >= len(s.dbs) {
		return nil, &wire.StatusProto{Code: codeInvalidArgument, Message: "dbm_index is out of range"}
	}
	return s.dbs[index], nil
}

func statusOf(code int32) *wire.StatusProto {
	switch code {
	case codeSuccess:
		return &wire.StatusProto{}
	case codeNotFound:
		return &wire.StatusProto{Code: code, Message: "no such record"}
	case codeDuplication:
		return &wire.StatusProto{Code: code, Message: "the record exists"}
	case codeInfeasible:
		return &wire.StatusProto{Code: code, Message: "mismatching"}
	}
	return &wire.StatusProto{Code: code}
}

func (s *Server) Echo(_ context.Context, req *wire.EchoRequest) (*wire.EchoResponse, error) {
	return &wire.EchoResponse{Echo: req.Message}, nil
}

// Inspect describes one database, or the server when the index is -1.
func (s *Server) Inspect(_ context.Context, req *wire.InspectRequest) (*wire.InspectResponse, error) {
	if req.DBMIndex < 0 {
		master, _ := s.Master()
		return &wire.InspectResponse{Records: []*wire.StringPair{
			{First: "version", Second: Version},
			{First: "num_dbms", Second: strconv.Itoa(len(s.dbs))},
			{First: "server_id", Second: strconv.Itoa(int(s.id))},
			{First: "master", Second: master},
		}}, nil
	}
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return nil, status.Error(codes.InvalidArgument, st.Message)
	}
	return &wire.InspectResponse{Records: db.properties()}, nil
}

func (s *Server) Get(_ context.Context, req *wire.GetRequest) (*wire.GetResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.GetResponse{Status: st}, nil
	}
	value, ok := db.get(req.Key)
	if !ok {
		return &wire.GetResponse{Status: statusOf(codeNotFound)}, nil
	}
	resp := &wire.GetResponse{Status: statusOf(codeSuccess)}
	if !req.OmitValue {
		resp.Value = value
	}
	return resp, nil
}

// GetMulti answers with the records found. Missing keys turn the status into
// NOT_FOUND without dropping the others.
func (s *Server) GetMulti(_ context.Context, req *wire.GetMultiRequest) (*wire.GetMultiResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.GetMultiResponse{Status: st}, nil
	}
	resp := &wire.GetMultiResponse{Status: statusOf(codeSuccess)}
	for _, k := range req.Keys {
		v, ok := db.get(k)
		if !ok {
			resp.Status = statusOf(codeNotFound)
			continue
		}
		resp.Records = append(resp.Records, &wire.BytesPair{First: k, Second: v})
	}
	return resp, nil
}

func (s *Server) Set(_ context.Context, req *wire.SetRequest) (*wire.SetResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.SetResponse{Status: st}, nil
	}
	return &wire.SetResponse{Status: statusOf(db.set(req.Key, req.Value, req.Overwrite))}, nil
}

func (s *Server) SetMulti(_ context.Context, req *wire.SetMultiRequest) (*wire.SetMultiResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.SetMultiResponse{Status: st}, nil
	}
	return &wire.SetMultiResponse{Status: statusOf(db.setMulti(req.Records, req.Overwrite))}, nil
}

func (s *Server) Remove(_ context.Context, req *wire.RemoveRequest) (*wire.RemoveResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.RemoveResponse{Status: st}, nil
	}
	return &wire.RemoveResponse{Status: statusOf(db.remove(req.Key))}, nil
}

func (s *Server) RemoveMulti(_ context.Context, req *wire.RemoveMultiRequest) (*wire.RemoveMultiResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.RemoveMultiResponse{Status: st}, nil
	}
	return &wire.RemoveMultiResponse{Status: statusOf(db.removeMulti(req.Keys))}, nil
}

func (s *Server) Append(_ context.Context, req *wire.AppendRequest) (*wire.AppendResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.AppendResponse{Status: st}, nil
	}
	db.appendValue(req.Key, req.Value, req.Delim)
	return &wire.AppendResponse{Status: statusOf(codeSuccess)}, nil
}

func (s *Server) AppendMulti(_ context.Context, req *wire.AppendMultiRequest) (*wire.AppendMultiResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.AppendMultiResponse{Status: st}, nil
	}
	db.appendMulti(req.Records, req.Delim)
	return &wire.AppendMultiResponse{Status: statusOf(codeSuccess)}, nil
}

func (s *Server) CompareExchange(_ context.Context, req *wire.CompareExchangeRequest) (*wire.CompareExchangeResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.CompareExchangeResponse{Status: st}, nil
	}
	return &wire.CompareExchangeResponse{Status: statusOf(db.compareExchange(req))}, nil
}

func (s *Server) Increment(_ context.Context, req *wire.IncrementRequest) (*wire.IncrementResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.IncrementResponse{Status: st}, nil
	}
	v := db.increment(req.Key, req.Increment, req.Initial)
	return &wire.IncrementResponse{Status: statusOf(codeSuccess), Value: v}, nil
}

func (s *Server) CompareExchangeMulti(_ context.Context, req *wire.CompareExchangeMultiRequest) (*wire.CompareExchangeMultiResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.CompareExchangeMultiResponse{Status: st}, nil
	}
	return &wire.CompareExchangeMultiResponse{Status: statusOf(db.compareExchangeMulti(req.Expected, req.Desired))}, nil
}

func (s *Server) Count(_ context.Context, req *wire.CountRequest) (*wire.CountResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.CountResponse{Status: st}, nil
	}
	return &wire.CountResponse{Status: statusOf(codeSuccess), Value: db.count()}, nil
}

func (s *Server) GetFileSize(_ context.Context, req *wire.GetFileSizeRequest) (*wire.GetFileSizeResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.GetFileSizeResponse{Status: st}, nil
	}
	return &wire.GetFileSizeResponse{Status: statusOf(codeSuccess), Value: db.fileSize()}, nil
}

func (s *Server) Clear(_ context.Context, req *wire.ClearRequest) (*wire.ClearResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.ClearResponse{Status: st}, nil
	}
	db.clear()
	return &wire.ClearResponse{Status: statusOf(codeSuccess)}, nil
}

func (s *Server) Rebuild(_ context.Context, req *wire.RebuildRequest) (*wire.RebuildResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.RebuildResponse{Status: st}, nil
	}
	db.rebuild()
	s.log.WithFields(logrus.Fields{"dbm": req.DBMIndex, "params": len(req.Params)}).Debug("rebuilt")
	return &wire.RebuildResponse{Status: statusOf(codeSuccess)}, nil
}

func (s *Server) ShouldBeRebuilt(_ context.Context, req *wire.ShouldBeRebuiltRequest) (*wire.ShouldBeRebuiltResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.ShouldBeRebuiltResponse{Status: st}, nil
	}
	return &wire.ShouldBeRebuiltResponse{Status: statusOf(codeSuccess), Tobe: db.shouldBeRebuilt()}, nil
}

// Synchronize has nothing to flush; it only validates the index.
func (s *Server) Synchronize(_ context.Context, req *wire.SynchronizeRequest) (*wire.SynchronizeResponse, error) {
	if _, st := s.dbm(req.DBMIndex); st != nil {
		return &wire.SynchronizeResponse{Status: st}, nil
	}
	s.log.WithFields(logrus.Fields{"dbm": req.DBMIndex, "hard": req.Hard}).Debug("synchronized")
	return &wire.SynchronizeResponse{Status: statusOf(codeSuccess)}, nil
}

func (s *Server) Search(_ context.Context, req *wire.SearchRequest) (*wire.SearchResponse, error) {
	db, st := s.dbm(req.DBMIndex)
	if st != nil {
		return &wire.SearchResponse{Status: st}, nil
	}
	matched, st := db.search(req.Mode, req.Pattern, int(req.Capacity))
	return &wire.SearchResponse{Status: st, Matched: matched}, nil
}

func (s *Server) ChangeMaster(_ context.Context, req *wire.ChangeMasterRequest) (*wire.ChangeMasterResponse, error) {
	s.mu.Lock()
	s.master = req.Master
	s.skew = req.TimestampSkew
	s.mu.Unlock()
	s.log.WithFields(logrus.Fields{"master": req.Master, "skew": req.TimestampSkew}).Info("master changed")
	return &wire.ChangeMasterResponse{Status: statusOf(codeSuccess)}, nil
}

// Stream serves pipelined single-record calls in arrival order.
func (s *Server) Stream(stream wire.StreamServer) error {
	ctx := stream.Context()
	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		resp, err := s.dispatch(ctx, req)
		if err != nil {
			return err
		}
		if req.OmitResponse {
			continue
		}
		if err := stream.Send(resp); err != nil {
			return err
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req *wire.StreamRequest) (*wire.StreamResponse, error) {
	resp := &wire.StreamResponse{}
	var err error
	switch {
	case req.Echo != nil:
		resp.Echo, err = s.Echo(ctx, req.Echo)
	case req.Get != nil:
		resp.Get, err = s.Get(ctx, req.Get)
	case req.Set != nil:
		resp.Set, err = s.Set(ctx, req.Set)
	case req.Remove != nil:
		resp.Remove, err = s.Remove(ctx, req.Remove)
	case req.Append != nil:
		resp.Append, err = s.Append(ctx, req.Append)
	case req.CompareExchange != nil:
		resp.CompareExchange, err = s.CompareExchange(ctx, req.CompareExchange)
	case req.Increment != nil:
		resp.Increment, err = s.Increment(ctx, req.Increment)
	default:
		return nil, status.Error(codes.InvalidArgument, "empty stream request")
	}
	return resp, err
}

// Iterate keeps one cursor per stream. Switching the database index resets
// it.
func (s *Server) Iterate(stream wire.IterateServer) error {
	cur := &cursor{}
	index := int32(-1)
	for {
		req, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		var resp *wire.IterateResponse
		if db, st := s.dbm(req.DBMIndex); st != nil {
			resp = &wire.IterateResponse{Status: st}
		} else {
			if req.DBMIndex != index {
				cur.reset(db)
				index = req.DBMIndex
			}
			resp = cur.apply(req)
		}
		if err := stream.Send(resp); err != nil {
			return err
		}
	}
}

// Replicate sends a NOOP carrying the server id, then every update at or
// after MinTimestamp. Once caught up it waits up to WaitTime seconds for
// another update and ends the stream when none arrives.
func (s *Server) Replicate(req *wire.ReplicateRequest, stream wire.ReplicateServer) error {
	if req.ServerID == s.id {
		return status.Error(codes.InvalidArgument, "self replication")
	}
	log := s.log.WithFields(logrus.Fields{"client": req.ServerID, "min_timestamp": req.MinTimestamp})
	log.Debug("replication started")

	if err := stream.Send(&wire.ReplicateResponse{
		Status:    statusOf(codeSuccess),
		Timestamp: s.updates.latest(),
		ServerID:  s.id,
		OpType:    wire.ReplicateNoop,
	}); err != nil {
		return err
	}

	ctx := stream.Context()
	wait := time.Duration(req.WaitTime * float64(time.Second))
	next := req.MinTimestamp
	for {
		batch, wake := s.updates.since(next)
		for _, u := range batch {
			if err := stream.Send(&wire.ReplicateResponse{
				Status:    statusOf(codeSuccess),
				Timestamp: u.timestamp,
				ServerID:  s.id,
				DBMIndex:  u.dbm,
				OpType:    u.op,
				Key:       u.key,
				Value:     u.value,
			}); err != nil {
				return err
			}
			next = u.timestamp + 1
		}
		if len(batch) > 0 {
			continue
		}
		if wait <= 0 {
			log.Debug("replication caught up")
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-wake:
			timer.Stop()
		case <-timer.C:
			log.Debug("replication idle, closing")
			return nil
		case <-ctx.Done():
			timer.Stop()
			return status.FromContextError(ctx.Err()).Err()
		}
	}
}
