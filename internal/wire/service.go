package wire

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "tkrzw_rpc.DBMService"

// Full method names.
const (
	MethodEcho                 = "/" + ServiceName + "/Echo"
	MethodInspect              = "/" + ServiceName + "/Inspect"
	MethodGet                  = "/" + ServiceName + "/Get"
	MethodGetMulti             = "/" + ServiceName + "/GetMulti"
	MethodSet                  = "/" + ServiceName + "/Set"
	MethodSetMulti             = "/" + ServiceName + "/SetMulti"
	MethodRemove               = "/" + ServiceName + "/Remove"
	MethodRemoveMulti          = "/" + ServiceName + "/RemoveMulti"
	MethodAppend               = "/" + ServiceName + "/Append"
	MethodAppendMulti          = "/" + ServiceName + "/AppendMulti"
	MethodCompareExchange      = "/" + ServiceName + "/CompareExchange"
	MethodIncrement            = "/" + ServiceName + "/Increment"
	MethodCompareExchangeMulti = "/" + ServiceName + "/CompareExchangeMulti"
	MethodCount                = "/" + ServiceName + "/Count"
	MethodGetFileSize          = "/" + ServiceName + "/GetFileSize"
	MethodClear                = "/" + ServiceName + "/Clear"
	MethodRebuild              = "/" + ServiceName + "/Rebuild"
	MethodShouldBeRebuilt      = "/" + ServiceName + "/ShouldBeRebuilt"
	MethodSynchronize          = "/" + ServiceName + "/Synchronize"
	MethodSearch               = "/" + ServiceName + "/Search"
	MethodStream               = "/" + ServiceName + "/Stream"
	MethodIterate              = "/" + ServiceName + "/Iterate"
	MethodReplicate            = "/" + ServiceName + "/Replicate"
	MethodChangeMaster         = "/" + ServiceName + "/ChangeMaster"
)

// Client is the client API of the DBM service.
type Client interface {
	Echo(ctx context.Context, in *EchoRequest, opts ...grpc.CallOption) (*EchoResponse, error)
	Inspect(ctx context.Context, in *InspectRequest, opts ...grpc.CallOption) (*InspectResponse, error)
	Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error)
	GetMulti(ctx context.Context, in *GetMultiRequest, opts ...grpc.CallOption) (*GetMultiResponse, error)
	Set(ctx context.Context, in *SetRequest, opts ...grpc.CallOption) (*SetResponse, error)
	SetMulti(ctx context.Context, in *SetMultiRequest, opts ...grpc.CallOption) (*SetMultiResponse, error)
	Remove(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*RemoveResponse, error)
	RemoveMulti(ctx context.Context, in *RemoveMultiRequest, opts ...grpc.CallOption) (*RemoveMultiResponse, error)
	Append(ctx context.Context, in *AppendRequest, opts ...grpc.CallOption) (*AppendResponse, error)
	AppendMulti(ctx context.Context, in *AppendMultiRequest, opts ...grpc.CallOption) (*AppendMultiResponse, error)
	CompareExchange(ctx context.Context, in *CompareExchangeRequest, opts ...grpc.CallOption) (*CompareExchangeResponse, error)
	Increment(ctx context.Context, in *IncrementRequest, opts ...grpc.CallOption) (*IncrementResponse, error)
	CompareExchangeMulti(ctx context.Context, in *CompareExchangeMultiRequest, opts ...grpc.CallOption) (*CompareExchangeMultiResponse, error)
	Count(ctx context.Context, in *CountRequest, opts ...grpc.CallOption) (*CountResponse, error)
	GetFileSize(ctx context.Context, in *GetFileSizeRequest, opts ...grpc.CallOption) (*GetFileSizeResponse, error)
	Clear(ctx context.Context, in *ClearRequest, opts ...grpc.CallOption) (*ClearResponse, error)
	Rebuild(ctx context.Context, in *RebuildRequest, opts ...grpc.CallOption) (*RebuildResponse, error)
	ShouldBeRebuilt(ctx context.Context, in *ShouldBeRebuiltRequest, opts ...grpc.CallOption) (*ShouldBeRebuiltResponse, error)
	Synchronize(ctx context.Context, in *SynchronizeRequest, opts ...grpc.CallOption) (*SynchronizeResponse, error)
	Search(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (*SearchResponse, error)
	Stream(ctx context.Context, opts ...grpc.CallOption) (StreamClient, error)
	Iterate(ctx context.Context, opts ...grpc.CallOption) (IterateClient, error)
	Replicate(ctx context.Context, in *ReplicateRequest, opts ...grpc.CallOption) (ReplicateClient, error)
	ChangeMaster(ctx context.Context, in *ChangeMasterRequest, opts ...grpc.CallOption) (*ChangeMasterResponse, error)
}

type client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a stub calling the service over cc. Every call forces
// Codec, so cc needs no codec configuration of its own.
func NewClient(cc grpc.ClientConnInterface) Client {
	return &client{cc: cc}
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
}

func invoke[T any, PT interface {
	*T
	Message
}](ctx context.Context, cc grpc.ClientConnInterface, method string, in Message, opts []grpc.CallOption) (PT, error) {
	out := PT(new(T))
	if err := cc.Invoke(ctx, method, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) Echo(ctx context.Context, in *EchoRequest, opts ...grpc.CallOption) (*EchoResponse, error) {
	return invoke[EchoResponse](ctx, c.cc, MethodEcho, in, opts)
}

func (c *client) Inspect(ctx context.Context, in *InspectRequest, opts ...grpc.CallOption) (*InspectResponse, error) {
	return invoke[InspectResponse](ctx, c.cc, MethodInspect, in, opts)
}

func (c *client) Get(ctx context.Context, in *GetRequest, opts ...grpc.CallOption) (*GetResponse, error) {
	return invoke[GetResponse](ctx, c.cc, MethodGet, in, opts)
}

func (c *client) GetMulti(ctx context.Context, in *GetMultiRequest, opts ...grpc.CallOption) (*GetMultiResponse, error) {
	return invoke[GetMultiResponse](ctx, c.cc, MethodGetMulti, in, opts)
}

func (c *client) Set(ctx context.Context, in *SetRequest, opts ...grpc.CallOption) (*SetResponse, error) {
	return invoke[SetResponse](ctx, c.cc, MethodSet, in, opts)
}

func (c *client) SetMulti(ctx context.Context, in *SetMultiRequest, opts ...grpc.CallOption) (*SetMultiResponse, error) {
	return invoke[SetMultiResponse](ctx, c.cc, MethodSetMulti, in, opts)
}

func (c *client) Remove(ctx context.Context, in *RemoveRequest, opts ...grpc.CallOption) (*RemoveResponse, error) {
	return invoke[RemoveResponse](ctx, c.cc, MethodRemove, in, opts)
}

func (c *client) RemoveMulti(ctx context.Context, in *RemoveMultiRequest, opts ...grpc.CallOption) (*RemoveMultiResponse, error) {
	return invoke[RemoveMultiResponse](ctx, c.cc, MethodRemoveMulti, in, opts)
}

func (c *client) Append(ctx context.Context, in *AppendRequest, opts ...grpc.CallOption) (*AppendResponse, error) {
	return invoke[AppendResponse](ctx, c.cc, MethodAppend, in, opts)
}

func (c *client) AppendMulti(ctx context.Context, in *AppendMultiRequest, opts ...grpc.CallOption) (*AppendMultiResponse, error) {
	return invoke[AppendMultiResponse](ctx, c.cc, MethodAppendMulti, in, opts)
}

func (c *client) CompareExchange(ctx context.Context, in *CompareExchangeRequest, opts ...grpc.CallOption) (*CompareExchangeResponse, error) {
	return invoke[CompareExchangeResponse](ctx, c.cc, MethodCompareExchange, in, opts)
}

func (c *client) Increment(ctx context.Context, in *IncrementRequest, opts ...grpc.CallOption) (*IncrementResponse, error) {
	return invoke[IncrementResponse](ctx, c.cc, MethodIncrement, in, opts)
}

func (c *client) CompareExchangeMulti(ctx context.Context, in *CompareExchangeMultiRequest, opts ...grpc.CallOption) (*CompareExchangeMultiResponse, error) {
	return invoke[CompareExchangeMultiResponse](ctx, c.cc, MethodCompareExchangeMulti, in, opts)
}

func (c *client) Count(ctx context.Context, in *CountRequest, opts ...grpc.CallOption) (*CountResponse, error) {
	return invoke[CountResponse](ctx, c.cc, MethodCount, in, opts)
}

func (c *client) GetFileSize(ctx context.Context, in *GetFileSizeRequest, opts ...grpc.CallOption) (*GetFileSizeResponse, error) {
	return invoke[GetFileSizeResponse](ctx, c.cc, MethodGetFileSize, in, opts)
}

func (c *client) Clear(ctx context.Context, in *ClearRequest, opts ...grpc.CallOption) (*ClearResponse, error) {
	return invoke[ClearResponse](ctx, c.cc, MethodClear, in, opts)
}

func (c *client) Rebuild(ctx context.Context, in *RebuildRequest, opts ...grpc.CallOption) (*RebuildResponse, error) {
	return invoke[RebuildResponse](ctx, c.cc, MethodRebuild, in, opts)
}

func (c *client) ShouldBeRebuilt(ctx context.Context, in *ShouldBeRebuiltRequest, opts ...grpc.CallOption) (*ShouldBeRebuiltResponse, error) {
	return invoke[ShouldBeRebuiltResponse](ctx, c.cc, MethodShouldBeRebuilt, in, opts)
}

func (c *client) Synchronize(ctx context.Context, in *SynchronizeRequest, opts ...grpc.CallOption) (*SynchronizeResponse, error) {
	return invoke[SynchronizeResponse](ctx, c.cc, MethodSynchronize, in, opts)
}

func (c *client) Search(ctx context.Context, in *SearchRequest, opts ...grpc.CallOption) (*SearchResponse, error) {
	return invoke[SearchResponse](ctx, c.cc, MethodSearch, in, opts)
}

func (c *client) ChangeMaster(ctx context.Context, in *ChangeMasterRequest, opts ...grpc.CallOption) (*ChangeMasterResponse, error) {
	return invoke[ChangeMasterResponse](ctx, c.cc, MethodChangeMaster, in, opts)
}

// StreamClient is the client half of the Stream call.
type StreamClient interface {
	Send(*StreamRequest) error
	Recv() (*StreamResponse, error)
	grpc.ClientStream
}

type streamClient struct {
	grpc.ClientStream
}

func (c *client) Stream(ctx context.Context, opts ...grpc.CallOption) (StreamClient, error) {
	s, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], MethodStream, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return &streamClient{s}, nil
}

func (x *streamClient) Send(m *StreamRequest) error {
	return x.ClientStream.SendMsg(m)
}

func (x *streamClient) Recv() (*StreamResponse, error) {
	m := new(StreamResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// IterateClient is the client half of the Iterate call.
type IterateClient interface {
	Send(*IterateRequest) error
	Recv() (*IterateResponse, error)
	grpc.ClientStream
}

type iterateClient struct {
	grpc.ClientStream
}

func (c *client) Iterate(ctx context.Context, opts ...grpc.CallOption) (IterateClient, error) {
	s, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[1], MethodIterate, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	return &iterateClient{s}, nil
}

func (x *iterateClient) Send(m *IterateRequest) error {
	return x.ClientStream.SendMsg(m)
}

func (x *iterateClient) Recv() (*IterateResponse, error) {
	m := new(IterateResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ReplicateClient is the client half of the Replicate call.
type ReplicateClient interface {
	Recv() (*ReplicateResponse, error)
	grpc.ClientStream
}

type replicateClient struct {
	grpc.ClientStream
}

func (c *client) Replicate(ctx context.Context, in *ReplicateRequest, opts ...grpc.CallOption) (ReplicateClient, error) {
	s, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[2], MethodReplicate, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &replicateClient{s}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

func (x *replicateClient) Recv() (*ReplicateResponse, error) {
	m := new(ReplicateResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Server is the server API of the DBM service.
type Server interface {
	Echo(context.Context, *EchoRequest) (*EchoResponse, error)
	Inspect(context.Context, *InspectRequest) (*InspectResponse, error)
	Get(context.Context, *GetRequest) (*GetResponse, error)
	GetMulti(context.Context, *GetMultiRequest) (*GetMultiResponse, error)
	Set(context.Context, *SetRequest) (*SetResponse, error)
	SetMulti(context.Context, *SetMultiRequest) (*SetMultiResponse, error)
	Remove(context.Context, *RemoveRequest) (*RemoveResponse, error)
	RemoveMulti(context.Context, *RemoveMultiRequest) (*RemoveMultiResponse, error)
	Append(context.Context, *AppendRequest) (*AppendResponse, error)
	AppendMulti(context.Context, *AppendMultiRequest) (*AppendMultiResponse, error)
	CompareExchange(context.Context, *CompareExchangeRequest) (*CompareExchangeResponse, error)
	Increment(context.Context, *IncrementRequest) (*IncrementResponse, error)
	CompareExchangeMulti(context.Context, *CompareExchangeMultiRequest) (*CompareExchangeMultiResponse, error)
	Count(context.Context, *CountRequest) (*CountResponse, error)
	GetFileSize(context.Context, *GetFileSizeRequest) (*GetFileSizeResponse, error)
	Clear(context.Context, *ClearRequest) (*ClearResponse, error)
	Rebuild(context.Context, *RebuildRequest) (*RebuildResponse, error)
	ShouldBeRebuilt(context.Context, *ShouldBeRebuiltRequest) (*ShouldBeRebuiltResponse, error)
	Synchronize(context.Context, *SynchronizeRequest) (*SynchronizeResponse, error)
	Search(context.Context, *SearchRequest) (*SearchResponse, error)
	Stream(StreamServer) error
	Iterate(IterateServer) error
	Replicate(*ReplicateRequest, ReplicateServer) error
	ChangeMaster(context.Context, *ChangeMasterRequest) (*ChangeMasterResponse, error)
}

// RegisterServer attaches srv to s. The server must be created with
// grpc.ForceServerCodec(Codec{}).
func RegisterServer(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req any, PReq interface {
	*Req
	Message
}, Resp any](method string, call func(Server, context.Context, PReq) (Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(Server)
		if interceptor == nil {
			resp, err := call(s, ctx, in)
			return resp, err
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			resp, err := call(s, ctx, req.(PReq))
			return resp, err
		}
		return interceptor(ctx, in, info, handler)
	}
}

// StreamServer is the server half of the Stream call.
type StreamServer interface {
	Send(*StreamResponse) error
	Recv() (*StreamRequest, error)
	grpc.ServerStream
}

type streamServer struct {
	grpc.ServerStream
}

func (x *streamServer) Send(m *StreamResponse) error {
	return x.ServerStream.SendMsg(m)
}

func (x *streamServer) Recv() (*StreamRequest, error) {
	m := new(StreamRequest)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// IterateServer is the server half of the Iterate call.
type IterateServer interface {
	Send(*IterateResponse) error
	Recv() (*IterateRequest, error)
	grpc.ServerStream
}

type iterateServer struct {
	grpc.ServerStream
}

func (x *iterateServer) Send(m *IterateResponse) error {
	return x.ServerStream.SendMsg(m)
}

func (x *iterateServer) Recv() (*IterateRequest, error) {
	m := new(IterateRequest)
	if err := x.ServerStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ReplicateServer is the server half of the Replicate call.
type ReplicateServer interface {
	Send(*ReplicateResponse) error
	grpc.ServerStream
}

type replicateServer struct {
	grpc.ServerStream
}

func (x *replicateServer) Send(m *ReplicateResponse) error {
	return x.ServerStream.SendMsg(m)
}

// ServiceDesc describes the DBM service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Echo", Handler: unary(MethodEcho, Server.Echo)},
		{MethodName: "Inspect", Handler: unary(MethodInspect, Server.Inspect)},
		{MethodName: "Get", Handler: unary(MethodGet, Server.Get)},
		{MethodName: "GetMulti", Handler: unary(MethodGetMulti, Server.GetMulti)},
		{MethodName: "Set", Handler: unary(MethodSet, Server.Set)},
		{MethodName: "SetMulti", Handler: unary(MethodSetMulti, Server.SetMulti)},
		{MethodName: "Remove", Handler: unary(MethodRemove, Server.Remove)},
		{MethodName: "RemoveMulti", Handler: unary(MethodRemoveMulti, Server.RemoveMulti)},
		{MethodName: "Append", Handler: unary(MethodAppend, Server.Append)},
		{MethodName: "AppendMulti", Handler: unary(MethodAppendMulti, Server.AppendMulti)},
		{MethodName: "CompareExchange", Handler: unary(MethodCompareExchange, Server.CompareExchange)},
		{MethodName: "Increment", Handler: unary(MethodIncrement, Server.Increment)},
		{MethodName: "CompareExchangeMulti", Handler: unary(MethodCompareExchangeMulti, Server.CompareExchangeMulti)},
		{MethodName: "Count", Handler: unary(MethodCount, Server.Count)},
		{MethodName: "GetFileSize", Handler: unary(MethodGetFileSize, Server.GetFileSize)},
		{MethodName: "Clear", Handler: unary(MethodClear, Server.Clear)},
		{MethodName: "Rebuild", Handler: unary(MethodRebuild, Server.Rebuild)},
		{MethodName: "ShouldBeRebuilt", Handler: unary(MethodShouldBeRebuilt, Server.ShouldBeRebuilt)},
		{MethodName: "Synchronize", Handler: unary(MethodSynchronize, Server.Synchronize)},
		{MethodName: "Search", Handler: unary(MethodSearch, Server.Search)},
		{MethodName: "ChangeMaster", Handler: unary(MethodChangeMaster, Server.ChangeMaster)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName: "Stream",
			Handler: func(srv any, stream grpc.ServerStream) error {
				return srv.(Server).Stream(&streamServer{stream})
			},
			ServerStreams: true,
			ClientStreams: true,
		},
		{
			StreamName: "Iterate",
			Handler: func(srv any, stream grpc.ServerStream) error {
				return srv.(Server).Iterate(&iterateServer{stream})
			},
			ServerStreams: true,
			ClientStreams: true,
		},
		{
			StreamName: "Replicate",
			Handler: func(srv any, stream grpc.ServerStream) error {
				in := new(ReplicateRequest)
				if err := stream.RecvMsg(in); err != nil {
					return err
				}
				return srv.(Server).Replicate(in, &replicateServer{stream})
			},
			ServerStreams: true,
		},
	},
	Metadata: "tkrzw_rpc.proto",
}
