package alarm

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name, also used by the
// health service.
const ServiceName = "workalarm.v1.AlarmService"

// Full method names.
const (
	GetSettingsFullMethod = "/" + ServiceName + "/GetSettings"
	EnableFullMethod      = "/" + ServiceName + "/Enable"
	DisableFullMethod     = "/" + ServiceName + "/Disable"
	UpdateRuleFullMethod  = "/" + ServiceName + "/UpdateRule"
	PreviewFullMethod     = "/" + ServiceName + "/Preview"
	CatchUpFullMethod     = "/" + ServiceName + "/CatchUp"
)

// AlarmServiceServer is the server API of the alarm service.
type AlarmServiceServer interface {
	GetSettings(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	Enable(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	Disable(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	UpdateRule(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Preview(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.ListValue, error)
	CatchUp(ctx context.Context, req *durationpb.Duration) (*structpb.ListValue, error)
}

// AlarmServiceDesc describes the alarm service for grpc.Server.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var AlarmServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSettings", Handler: handler[emptypb.Empty](GetSettingsFullMethod, AlarmServiceServer.GetSettings)},
		{MethodName: "Enable", Handler: handler[emptypb.Empty](EnableFullMethod, AlarmServiceServer.Enable)},
		{MethodName: "Disable", Handler: handler[emptypb.Empty](DisableFullMethod, AlarmServiceServer.Disable)},
		{MethodName: "UpdateRule", Handler: handler[structpb.Struct](UpdateRuleFullMethod, AlarmServiceServer.UpdateRule)},
		{MethodName: "Preview", Handler: handler[wrapperspb.Int32Value](PreviewFullMethod, AlarmServiceServer.Preview)},
		{MethodName: "CatchUp", Handler: handler[durationpb.Duration](CatchUpFullMethod, AlarmServiceServer.CatchUp)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "workalarm/v1/alarm.proto",
}

// RegisterAlarmServiceServer registers srv on the gRPC server.
func RegisterAlarmServiceServer(s grpc.ServiceRegistrar, srv AlarmServiceServer) {
	s.RegisterService(&AlarmServiceDesc, srv)
}

// handler decodes the request into a fresh *T and dispatches it through the
// optional interceptor.
func handler[T any, Req interface {
	*T
	proto.Message
}, Resp proto.Message](
	fullMethod string,
	call func(AlarmServiceServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := Req(new(T))
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(AlarmServiceServer)

		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(Req)

			return call(server, ctx, typed)
		})
	}
}

// AlarmServiceClient is the client API of the alarm service.
type AlarmServiceClient interface {
	GetSettings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Enable(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Disable(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateRule(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Preview(ctx context.Context, in *wrapperspb.Int32Value, opts ...grpc.CallOption) (*structpb.ListValue, error)
	CatchUp(ctx context.Context, in *durationpb.Duration, opts ...grpc.CallOption) (*structpb.ListValue, error)
}

type alarmServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmServiceClient creates a client over the connection.
//
//nolint:ireturn // Mirrors the shape of generated gRPC clients.
func NewAlarmServiceClient(cc grpc.ClientConnInterface) AlarmServiceClient {
	return &alarmServiceClient{cc: cc}
}

func (c *alarmServiceClient) GetSettings(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, GetSettingsFullMethod, in, opts)
}

func (c *alarmServiceClient) Enable(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, EnableFullMethod, in, opts)
}

func (c *alarmServiceClient) Disable(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, DisableFullMethod, in, opts)
}

func (c *alarmServiceClient) UpdateRule(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, UpdateRuleFullMethod, in, opts)
}

func (c *alarmServiceClient) Preview(
	ctx context.Context,
	in *wrapperspb.Int32Value,
	opts ...grpc.CallOption,
) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, PreviewFullMethod, in, opts)
}

func (c *alarmServiceClient) CatchUp(
	ctx context.Context,
	in *durationpb.Duration,
	opts ...grpc.CallOption,
) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, CatchUpFullMethod, in, opts)
}

func invoke[T any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in proto.Message,
	opts []grpc.CallOption,
) (*T, error) {
	out := new(T)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
