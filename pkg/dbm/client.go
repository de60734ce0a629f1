package dbm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"google.golang.org/grpc"

	"github.com/Ratio1/dbm_sdk_go/internal/rpcx"
	"github.com/Ratio1/dbm_sdk_go/internal/wire"
)

// unlimitedTimeout stands in for a negative connect timeout.
const unlimitedTimeout = time.Duration(1<<27) * time.Second

// Option configures a RemoteDBM.
type Option func(*options)

type options struct {
	logger      logrus.FieldLogger
	registerer  prometheus.Registerer
	compression string
	dialer      func(context.Context, string) (net.Conn, error)
	dialOpts    []grpc.DialOption
	poll        rpcx.PollPolicy
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics registers client call metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithCompression compresses requests with "zstd" or "gzip".
func WithCompression(name string) Option {
	return func(o *options) {
		o.compression = name
	}
}

// WithDialer replaces the network dialer used by the channel.
func WithDialer(d func(context.Context, string) (net.Conn, error)) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithDialOptions appends raw gRPC dial options.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) {
		o.dialOpts = append(o.dialOpts, opts...)
	}
}

// WithPollPolicy overrides the retry policy applied while connecting.
func WithPollPolicy(p rpcx.PollPolicy) Option {
	return func(o *options) {
		o.poll = p
	}
}

// RemoteDBM is a connection to a database server. Connect and Disconnect
// must not race with each other or with other calls; everything else is
// safe for concurrent use.
type RemoteDBM struct {
	opts    options
	metrics *rpcx.Metrics

	mu           sync.RWMutex
	conn         *grpc.ClientConn
	stub         wire.Client
	address      string
	timeout      time.Duration
	dbmIndex     int32
	encodingName string
	encoding     encoding.Encoding
}

// New returns an unconnected RemoteDBM.
func New(opts ...Option) (*RemoteDBM, error) {
	o := options{logger: logrus.StandardLogger(), poll: rpcx.DefaultPollPolicy}
	for _, opt := range opts {
		opt(&o)
	}
	d := &RemoteDBM{opts: o}
	if o.registerer != nil {
		m, err := rpcx.NewMetrics(o.registerer)
		if err != nil {
			return nil, fmt.Errorf("dbm: register metrics: %w", err)
		}
		d.metrics = m
	}
	return d, nil
}

// Connect opens a channel to address and waits until it is usable. A zero or
// negative timeout means no practical limit; the timeout also bounds every
// later call on the connection.
func (d *RemoteDBM) Connect(ctx context.Context, address string, timeout time.Duration) *Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn != nil {
		return NewStatus(PreconditionError, "opened connection")
	}
	if timeout <= 0 {
		timeout = unlimitedTimeout
	}
	log := d.opts.logger.WithFields(logrus.Fields{"address": address, "timeout": timeout})
	log.Debug("connecting")

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	conn, err := rpcx.Open(cctx, address, d.dialOptions(log)...)
	switch {
	case errors.Is(err, rpcx.ErrConnectTimeout):
		return NewStatus(PreconditionError, "connection timeout")
	case errors.Is(err, rpcx.ErrConnectFailed):
		return NewStatus(PreconditionError, "connection failed")
	case err != nil:
		return networkStatus(err)
	}

	d.conn = conn
	d.stub = wire.NewClient(conn)
	d.address = address
	d.timeout = timeout
	d.dbmIndex = 0
	d.encodingName = ""
	d.encoding = nil
	log.Info("connected")
	return NewStatus(Success)
}

func (d *RemoteDBM) dialOptions(log logrus.FieldLogger) []rpcx.Option {
	opts := []rpcx.Option{
		rpcx.WithPollPolicy(d.opts.poll),
		rpcx.WithLogger(log),
		rpcx.WithCompression(d.opts.compression),
		rpcx.WithDialOptions(d.opts.dialOpts...),
	}
	if d.opts.dialer != nil {
		opts = append(opts, rpcx.WithDialer(d.opts.dialer))
	}
	if d.metrics != nil {
		opts = append(opts, rpcx.WithMetrics(d.metrics))
	}
	return opts
}

// Disconnect closes the channel. Local state is cleared even when closing
// fails; that failure is reported as NETWORK_ERROR.
func (d *RemoteDBM) Disconnect() *Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return notConnected()
	}
	err := d.conn.Close()
	d.conn = nil
	d.stub = nil
	d.encodingName = ""
	d.encoding = nil
	d.dbmIndex = 0
	d.opts.logger.WithField("address", d.address).Info("disconnected")
	if err != nil {
		return networkStatus(err)
	}
	return NewStatus(Success)
}

// Close disconnects if connected. It is safe to call repeatedly.
func (d *RemoteDBM) Close() error {
	if !d.Connected() {
		return nil
	}
	return d.Disconnect().Err()
}

// Connected reports whether a channel is open.
func (d *RemoteDBM) Connected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.conn != nil
}

// SetDBMIndex selects the database addressed by later calls. The index is
// not validated locally.
func (d *RemoteDBM) SetDBMIndex(index int32) *Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return notConnected()
	}
	d.dbmIndex = index
	return NewStatus(Success)
}

// SetEncoding sets the charset of text returned by the ...Str variants.
// Unknown names are accepted and pass bytes through unchanged.
func (d *RemoteDBM) SetEncoding(name string) *Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return notConnected()
	}
	enc, ok := resolveEncoding(name)
	if !ok {
		d.opts.logger.WithField("encoding", name).Warn("unknown encoding, using identity")
	}
	d.encodingName = name
	d.encoding = enc
	return NewStatus(Success)
}

func (d *RemoteDBM) String() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	state := "not connected"
	if d.conn != nil {
		state = "connected"
	}
	return fmt.Sprintf("RemoteDBM: %s: %s", d.address, state)
}

// session is a snapshot of the connection state for one call.
type session struct {
	stub     wire.Client
	timeout  time.Duration
	dbmIndex int32
	encoding encoding.Encoding
	logger   logrus.FieldLogger
}

func (d *RemoteDBM) session() (*session, *Status) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.conn == nil {
		return nil, notConnected()
	}
	return &session{
		stub:     d.stub,
		timeout:  d.timeout,
		dbmIndex: d.dbmIndex,
		encoding: d.encoding,
		logger:   d.opts.logger,
	}, nil
}

// cursorState returns what an open cursor borrows from its connection.
func (d *RemoteDBM) cursorState() (int32, encoding.Encoding) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dbmIndex, d.encoding
}

func (s *session) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, s.timeout)
}

// unary runs one request/response exchange and folds transport errors and
// the embedded status into a single *Status.
func unary[Resp interface{ GetStatus() *wire.StatusProto }](ctx context.Context, d *RemoteDBM, call func(context.Context, *session) (Resp, error)) (Resp, *Status) {
	var zero Resp
	s, st := d.session()
	if st != nil {
		return zero, st
	}
	cctx, cancel := s.context(ctx)
	defer cancel()
	resp, err := call(cctx, s)
	if err != nil {
		return zero, networkStatus(err)
	}
	return resp, fromProto(resp.GetStatus())
}

// Echo sends message to the server and returns the echoed text.
func (d *RemoteDBM) Echo(ctx context.Context, message string) (string, *Status) {
	s, st := d.session()
	if st != nil {
		return "", st
	}
	cctx, cancel := s.context(ctx)
	defer cancel()
	resp, err := s.stub.Echo(cctx, &wire.EchoRequest{Message: message})
	if err != nil {
		return "", networkStatus(err)
	}
	return resp.Echo, NewStatus(Success)
}

// Inspect returns the property bag of the current database. With the index
// set to -1 it describes the server itself.
func (d *RemoteDBM) Inspect(ctx context.Context) (map[string]string, *Status) {
	s, st := d.session()
	if st != nil {
		return nil, st
	}
	cctx, cancel := s.context(ctx)
	defer cancel()
	resp, err := s.stub.Inspect(cctx, &wire.InspectRequest{DBMIndex: s.dbmIndex})
	if err != nil {
		return nil, networkStatus(err)
	}
	props := make(map[string]string, len(resp.Records))
	for _, r := range resp.Records {
		props[r.First] = r.Second
	}
	return props, NewStatus(Success)
}

// Get returns the value of key. A missing key yields NOT_FOUND_ERROR.
func (d *RemoteDBM) Get(ctx context.Context, key string) ([]byte, *Status) {
	resp, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.GetResponse, error) {
		return s.stub.Get(ctx, &wire.GetRequest{DBMIndex: s.dbmIndex, Key: []byte(key)})
	})
	if !st.IsOK() {
		return nil, st
	}
	if resp.Value == nil {
		return []byte{}, st
	}
	return resp.Value, st
}

// GetStr is Get with the connection encoding applied.
func (d *RemoteDBM) GetStr(ctx context.Context, key string) (string, *Status) {
	v, st := d.Get(ctx, key)
	if !st.IsOK() {
		return "", st
	}
	_, enc := d.cursorState()
	return decodeText(enc, v), st
}

// GetMulti returns the records found among keys. Missing keys are omitted.
func (d *RemoteDBM) GetMulti(ctx context.Context, keys ...string) (map[string][]byte, *Status) {
	resp, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.GetMultiResponse, error) {
		req := &wire.GetMultiRequest{DBMIndex: s.dbmIndex, Keys: make([][]byte, len(keys))}
		for i, k := range keys {
			req.Keys[i] = []byte(k)
		}
		return s.stub.GetMulti(ctx, req)
	})
	if resp == nil {
		return nil, st
	}
	out := make(map[string][]byte, len(resp.Records))
	for _, r := range resp.Records {
		out[string(r.First)] = r.Second
	}
	return out, st
}

// GetMultiStr is GetMulti with the connection encoding applied to values.
func (d *RemoteDBM) GetMultiStr(ctx context.Context, keys ...string) (map[string]string, *Status) {
	records, st := d.GetMulti(ctx, keys...)
	if records == nil {
		return nil, st
	}
	_, enc := d.cursorState()
	out := make(map[string]string, len(records))
	for k, v := range records {
		out[decodeText(enc, []byte(k))] = decodeText(enc, v)
	}
	return out, st
}

// Set stores value under key. Without overwrite an existing record yields
// DUPLICATION_ERROR and is left untouched.
func (d *RemoteDBM) Set(ctx context.Context, key, value string, overwrite bool) *Status {
	_, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.SetResponse, error) {
		return s.stub.Set(ctx, &wire.SetRequest{
			DBMIndex:  s.dbmIndex,
			Key:       []byte(key),
			Value:     []byte(value),
			Overwrite: overwrite,
		})
	})
	return st
}

// SetMulti stores several records in one call.
func (d *RemoteDBM) SetMulti(ctx context.Context, overwrite bool, records ...KeyValue) *Status {
	_, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.SetMultiResponse, error) {
		return s.stub.SetMulti(ctx, &wire.SetMultiRequest{
			DBMIndex:  s.dbmIndex,
			Records:   toBytesPairs(records),
			Overwrite: overwrite,
		})
	})
	return st
}

// Remove deletes key. A missing key yields NOT_FOUND_ERROR.
func (d *RemoteDBM) Remove(ctx context.Context, key string) *Status {
	_, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.RemoveResponse, error) {
		return s.stub.Remove(ctx, &wire.RemoveRequest{DBMIndex: s.dbmIndex, Key: []byte(key)})
	})
	return st
}

// RemoveMulti deletes several keys. The call fails with NOT_FOUND_ERROR
// without removing anything if one of them is missing.
func (d *RemoteDBM) RemoveMulti(ctx context.Context, keys ...string) *Status {
	_, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.RemoveMultiResponse, error) {
		req := &wire.RemoveMultiRequest{DBMIndex: s.dbmIndex, Keys: make([][]byte, len(keys))}
		for i, k := range keys {
			req.Keys[i] = []byte(k)
		}
		return s.stub.RemoveMulti(ctx, req)
	})
	return st
}

// Append adds value to the end of the record at key, separated by delim
// when the record already exists.
func (d *RemoteDBM) Append(ctx context.Context, key, value, delim string) *Status {
	_, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.AppendResponse, error) {
		return s.stub.Append(ctx, &wire.AppendRequest{
			DBMIndex: s.dbmIndex,
			Key:      []byte(key),
			Value:    []byte(value),
			Delim:    []byte(delim),
		})
	})
	return st
}

// AppendMulti appends to several records in one call.
func (d *RemoteDBM) AppendMulti(ctx context.Context, delim string, records ...KeyValue) *Status {
	_, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.AppendMultiResponse, error) {
		return s.stub.AppendMulti(ctx, &wire.AppendMultiRequest{
			DBMIndex: s.dbmIndex,
			Records:  toBytesPairs(records),
			Delim:    []byte(delim),
		})
	})
	return st
}

// CompareExchange installs desired only if the record currently matches
// expected. An absent expected means the record must not exist; an absent
// desired removes it. A mismatch yields INFEASIBLE_ERROR.
func (d *RemoteDBM) CompareExchange(ctx context.Context, key string, expected, desired Optional) *Status {
	_, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.CompareExchangeResponse, error) {
		ev, eok := expected.Value()
		dv, dok := desired.Value()
		return s.stub.CompareExchange(ctx, &wire.CompareExchangeRequest{
			DBMIndex:          s.dbmIndex,
			Key:               []byte(key),
			ExpectedExistence: eok,
			ExpectedValue:     []byte(ev),
			DesiredExistence:  dok,
			DesiredValue:      []byte(dv),
		})
	})
	return st
}

// Increment adds inc to the numeric record at key, creating it from init
// when missing, and returns the new value.
func (d *RemoteDBM) Increment(ctx context.Context, key string, inc, init int64) (int64, *Status) {
	resp, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.IncrementResponse, error) {
		return s.stub.Increment(ctx, &wire.IncrementRequest{
			DBMIndex:  s.dbmIndex,
			Key:       []byte(key),
			Increment: inc,
			Initial:   init,
		})
	})
	if !st.IsOK() {
		return 0, st
	}
	return resp.Value, st
}

// CompareExchangeMulti applies desired atomically if every expected state
// holds.
func (d *RemoteDBM) CompareExchangeMulti(ctx context.Context, expected, desired []RecordState) *Status {
	_, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.CompareExchangeMultiResponse, error) {
		return s.stub.CompareExchangeMulti(ctx, &wire.CompareExchangeMultiRequest{
			DBMIndex: s.dbmIndex,
			Expected: toRecordStates(expected),
			Desired:  toRecordStates(desired),
		})
	})
	return st
}

// Count returns the number of records.
func (d *RemoteDBM) Count(ctx context.Context) (int64, *Status) {
	resp, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.CountResponse, error) {
		return s.stub.Count(ctx, &wire.CountRequest{DBMIndex: s.dbmIndex})
	})
	if !st.IsOK() {
		return 0, st
	}
	return resp.Value, st
}

// FileSize returns the size of the database file on the server.
func (d *RemoteDBM) FileSize(ctx context.Context) (int64, *Status) {
	resp, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.GetFileSizeResponse, error) {
		return s.stub.GetFileSize(ctx, &wire.GetFileSizeRequest{DBMIndex: s.dbmIndex})
	})
	if !st.IsOK() {
		return 0, st
	}
	return resp.Value, st
}

// Clear removes every record.
func (d *RemoteDBM) Clear(ctx context.Context) *Status {
	_, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.ClearResponse, error) {
		return s.stub.Clear(ctx, &wire.ClearRequest{DBMIndex: s.dbmIndex})
	})
	return st
}

// Rebuild reorganises the database with optional tuning parameters.
func (d *RemoteDBM) Rebuild(ctx context.Context, params map[string]string) *Status {
	_, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.RebuildResponse, error) {
		return s.stub.Rebuild(ctx, &wire.RebuildRequest{DBMIndex: s.dbmIndex, Params: toStringPairs(params)})
	})
	return st
}

// ShouldBeRebuilt reports whether the server recommends a rebuild.
func (d *RemoteDBM) ShouldBeRebuilt(ctx context.Context) (bool, *Status) {
	resp, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.ShouldBeRebuiltResponse, error) {
		return s.stub.ShouldBeRebuilt(ctx, &wire.ShouldBeRebuiltRequest{DBMIndex: s.dbmIndex})
	})
	if !st.IsOK() {
		return false, st
	}
	return resp.Tobe, st
}

// Synchronize flushes the database to storage; hard also syncs the device.
func (d *RemoteDBM) Synchronize(ctx context.Context, hard bool, params map[string]string) *Status {
	_, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.SynchronizeResponse, error) {
		return s.stub.Synchronize(ctx, &wire.SynchronizeRequest{
			DBMIndex: s.dbmIndex,
			Hard:     hard,
			Params:   toStringPairs(params),
		})
	})
	return st
}

// Search returns keys matching pattern under mode ("contain", "begin",
// "end", "regex", "edit" or "editbin"). A capacity of 0 means no limit.
func (d *RemoteDBM) Search(ctx context.Context, mode, pattern string, capacity int) ([][]byte, *Status) {
	resp, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.SearchResponse, error) {
		return s.stub.Search(ctx, &wire.SearchRequest{
			DBMIndex: s.dbmIndex,
			Mode:     mode,
			Pattern:  []byte(pattern),
			Capacity: int32(capacity),
		})
	})
	if !st.IsOK() {
		return nil, st
	}
	if resp.Matched == nil {
		return [][]byte{}, st
	}
	return resp.Matched, st
}

// SearchStr is Search with the connection encoding applied.
func (d *RemoteDBM) SearchStr(ctx context.Context, mode, pattern string, capacity int) ([]string, *Status) {
	keys, st := d.Search(ctx, mode, pattern, capacity)
	if !st.IsOK() {
		return nil, st
	}
	_, enc := d.cursorState()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = decodeText(enc, k)
	}
	return out, st
}

// ChangeMaster points a replica server at a new master.
func (d *RemoteDBM) ChangeMaster(ctx context.Context, master string, timestampSkew int64) *Status {
	_, st := unary(ctx, d, func(ctx context.Context, s *session) (*wire.ChangeMasterResponse, error) {
		return s.stub.ChangeMaster(ctx, &wire.ChangeMasterRequest{Master: master, TimestampSkew: timestampSkew})
	})
	return st
}

func toStringPairs(params map[string]string) []*wire.StringPair {
	if len(params) == 0 {
		return nil
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*wire.StringPair, len(keys))
	for i, k := range keys {
		out[i] = &wire.StringPair{First: k, Second: params[k]}
	}
	return out
}
